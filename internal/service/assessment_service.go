package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
)

var ErrQuestionnaireNotFound = errors.New("questionnaire not found")

type AssessmentService struct {
	api APIClient
	log logging.Logger
}

func NewAssessmentService(api APIClient, log logging.Logger) *AssessmentService {
	return &AssessmentService{
		api: api,
		log: log.With("component", "assessment_service"),
	}
}

func (s *AssessmentService) ListQuestionnaires(ctx context.Context, token string) ([]domain.Questionnaire, error) {
	var raw json.RawMessage
	if err := s.api.Call(ctx, "/api/questionnaires", bearer(token), &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.Questionnaire](raw)
}

func (s *AssessmentService) GetQuestionnaire(ctx context.Context, token string, id string) (*domain.Questionnaire, error) {
	var raw json.RawMessage
	if err := s.api.Call(ctx, "/api/questionnaires/"+url.PathEscape(id), bearer(token), &raw); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %w", ErrQuestionnaireNotFound, err)
		}
		return nil, err
	}
	return decodeOne[domain.Questionnaire](raw)
}

// SubmitQuestionnaire loads the questionnaire, checks the answers against it
// and only then submits. Incomplete answers never reach the backend.
func (s *AssessmentService) SubmitQuestionnaire(ctx context.Context, token string, id string, sub domain.QuestionnaireSubmission) (*domain.QuestionnaireResult, error) {
	q, err := s.GetQuestionnaire(ctx, token, id)
	if err != nil {
		return nil, err
	}

	if err := ValidateAnswers(q, sub.Answers); err != nil {
		return nil, apiclient.NewValidationError(err)
	}

	var result domain.QuestionnaireResult
	err = s.api.Call(ctx, "/api/questionnaires/"+url.PathEscape(id)+"/submit", apiclient.Request{
		Method: http.MethodPost,
		Token:  token,
		Body:   sub,
	}, &result)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "questionnaire submitted", "questionnaire_id", id, "answers", len(sub.Answers))
	return &result, nil
}

// ValidateAnswers checks that every required question is answered, that
// answers only refer to known questions, and that choices are valid options.
func ValidateAnswers(q *domain.Questionnaire, answers []domain.Answer) error {
	questions := make(map[domain.ID]domain.Question, len(q.Questions))
	for _, question := range q.Questions {
		questions[question.ID] = question
	}

	given := make(map[domain.ID][]string, len(answers))
	for _, a := range answers {
		question, ok := questions[a.QuestionID]
		if !ok {
			return fmt.Errorf("unknown question %q", a.QuestionID)
		}
		if _, dup := given[a.QuestionID]; dup {
			return fmt.Errorf("question %q answered more than once", a.QuestionID)
		}
		values := nonBlank(a.Values)
		if err := checkValues(question, values); err != nil {
			return err
		}
		given[a.QuestionID] = values
	}

	var missing []string
	for _, question := range q.Questions {
		if question.Required && len(given[question.ID]) == 0 {
			missing = append(missing, question.ID.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("please answer all required questions (missing: %s)", strings.Join(missing, ", "))
	}
	return nil
}

func checkValues(q domain.Question, values []string) error {
	if len(values) == 0 {
		return nil
	}

	switch q.Type {
	case domain.QuestionSingleChoice, domain.QuestionScale:
		if len(values) > 1 {
			return fmt.Errorf("question %q takes a single answer", q.ID)
		}
	case domain.QuestionText:
		return nil
	}

	if len(q.Options) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		allowed[o.Value] = struct{}{}
	}
	for _, v := range values {
		if _, ok := allowed[v]; !ok {
			return fmt.Errorf("%q is not an option for question %q", v, q.ID)
		}
	}
	return nil
}

func nonBlank(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *AssessmentService) PCL5Questions(ctx context.Context, token string) ([]domain.PCL5Question, error) {
	var raw json.RawMessage
	if err := s.api.Call(ctx, "/api/pcl5/questions", bearer(token), &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.PCL5Question](raw)
}

func (s *AssessmentService) PCL5Assessments(ctx context.Context, token string) ([]domain.PCL5Assessment, error) {
	var raw json.RawMessage
	if err := s.api.Call(ctx, "/api/pcl5/assessments", bearer(token), &raw); err != nil {
		return nil, err
	}
	return decodeList[domain.PCL5Assessment](raw)
}

// SubmitPCL5 requires one score in range for every checklist item.
func (s *AssessmentService) SubmitPCL5(ctx context.Context, token string, sub domain.PCL5Submission) (*domain.PCL5Assessment, error) {
	questions, err := s.PCL5Questions(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := ValidatePCL5(questions, sub.Responses); err != nil {
		return nil, apiclient.NewValidationError(err)
	}

	var raw json.RawMessage
	err = s.api.Call(ctx, "/api/pcl5/assessments", apiclient.Request{
		Method: http.MethodPost,
		Token:  token,
		Body:   sub,
	}, &raw)
	if err != nil {
		return nil, err
	}

	assessment, err := decodeOne[domain.PCL5Assessment](raw)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "pcl5 submitted", "assessment_id", assessment.ID, "total_score", assessment.TotalScore)
	return assessment, nil
}

// ValidatePCL5 checks completeness and the 0 to 4 score range.
func ValidatePCL5(questions []domain.PCL5Question, responses []domain.PCL5Response) error {
	known := make(map[domain.ID]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}

	seen := make(map[domain.ID]struct{}, len(responses))
	for _, r := range responses {
		if _, ok := known[r.QuestionID]; !ok {
			return fmt.Errorf("unknown question %q", r.QuestionID)
		}
		if _, dup := seen[r.QuestionID]; dup {
			return fmt.Errorf("question %q answered more than once", r.QuestionID)
		}
		if r.Score < domain.PCL5MinScore || r.Score > domain.PCL5MaxScore {
			return fmt.Errorf("score for question %q must be between %d and %d", r.QuestionID, domain.PCL5MinScore, domain.PCL5MaxScore)
		}
		seen[r.QuestionID] = struct{}{}
	}

	if len(seen) != len(known) {
		return fmt.Errorf("please answer all %d questions (%d answered)", len(known), len(seen))
	}
	return nil
}
