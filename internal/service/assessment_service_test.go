package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jutt16/right2thrive-sub001/internal/domain"
	"github.com/jutt16/right2thrive-sub001/internal/logging"
	"github.com/jutt16/right2thrive-sub001/pkg/apiclient"
)

const moodQuestionnaire = `{"data":{"id":3,"title":"Mood","questions":[
	{"id":1,"text":"How are you?","type":"single_choice","required":true,"options":[{"value":"good","label":"Good"},{"value":"bad","label":"Bad"}]},
	{"id":2,"text":"Anything else?","type":"text","required":false}
]}}`

func newAssessmentService(t *testing.T) (*AssessmentService, *backend) {
	t.Helper()
	b, client := newBackend(t)
	return NewAssessmentService(client, logging.Nop()), b
}

func TestAssessmentService_SubmitQuestionnaire(t *testing.T) {
	s, b := newAssessmentService(t)
	b.handle("/api/questionnaires/3", http.StatusOK, moodQuestionnaire)
	b.handle("/api/questionnaires/3/submit", http.StatusOK, `{"success":true,"submission_id":11,"tokens_awarded":2}`)

	res, err := s.SubmitQuestionnaire(ctx, "tok", "3", domain.QuestionnaireSubmission{
		Answers: []domain.Answer{{QuestionID: "1", Values: []string{"good"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ID("11"), res.SubmissionID)
	assert.Equal(t, 1, b.count("/api/questionnaires/3/submit"))
}

func TestAssessmentService_SubmitIncompleteMakesNoSubmitCall(t *testing.T) {
	s, b := newAssessmentService(t)
	b.handle("/api/questionnaires/3", http.StatusOK, moodQuestionnaire)

	_, err := s.SubmitQuestionnaire(ctx, "tok", "3", domain.QuestionnaireSubmission{
		Answers: []domain.Answer{{QuestionID: "2", Values: []string{"nothing"}}},
	})
	assert.ErrorIs(t, err, apiclient.ErrValidation)
	assert.Contains(t, apiclient.Message(err, ""), "missing: 1")
	assert.Zero(t, b.count("/api/questionnaires/3/submit"))
}

func TestAssessmentService_QuestionnaireNotFound(t *testing.T) {
	s, b := newAssessmentService(t)
	b.handle("/api/questionnaires/99", http.StatusNotFound, `{"message":"Not found"}`)

	_, err := s.GetQuestionnaire(ctx, "tok", "99")
	assert.ErrorIs(t, err, ErrQuestionnaireNotFound)
}

func TestValidateAnswers(t *testing.T) {
	q := &domain.Questionnaire{Questions: []domain.Question{
		{ID: "1", Type: domain.QuestionSingleChoice, Required: true, Options: []domain.QuestionOption{{Value: "a"}, {Value: "b"}}},
		{ID: "2", Type: domain.QuestionMultiChoice, Options: []domain.QuestionOption{{Value: "x"}, {Value: "y"}}},
		{ID: "3", Type: domain.QuestionText, Required: true},
	}}

	tests := []struct {
		name    string
		answers []domain.Answer
		wantErr bool
	}{
		{"complete", []domain.Answer{{QuestionID: "1", Values: []string{"a"}}, {QuestionID: "3", Values: []string{"fine"}}}, false},
		{"multi choice", []domain.Answer{{QuestionID: "1", Values: []string{"b"}}, {QuestionID: "2", Values: []string{"x", "y"}}, {QuestionID: "3", Values: []string{"ok"}}}, false},
		{"blank required", []domain.Answer{{QuestionID: "1", Values: []string{"a"}}, {QuestionID: "3", Values: []string{"  "}}}, true},
		{"missing required", []domain.Answer{{QuestionID: "1", Values: []string{"a"}}}, true},
		{"two values for single choice", []domain.Answer{{QuestionID: "1", Values: []string{"a", "b"}}, {QuestionID: "3", Values: []string{"ok"}}}, true},
		{"unknown option", []domain.Answer{{QuestionID: "1", Values: []string{"z"}}, {QuestionID: "3", Values: []string{"ok"}}}, true},
		{"unknown question", []domain.Answer{{QuestionID: "9", Values: []string{"a"}}}, true},
		{"duplicate answer", []domain.Answer{{QuestionID: "1", Values: []string{"a"}}, {QuestionID: "1", Values: []string{"b"}}, {QuestionID: "3", Values: []string{"ok"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnswers(q, tt.answers)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePCL5(t *testing.T) {
	questions := []domain.PCL5Question{{ID: "1", Number: 1}, {ID: "2", Number: 2}}

	assert.NoError(t, ValidatePCL5(questions, []domain.PCL5Response{{QuestionID: "1", Score: 0}, {QuestionID: "2", Score: 4}}))
	assert.Error(t, ValidatePCL5(questions, []domain.PCL5Response{{QuestionID: "1", Score: 0}}))
	assert.Error(t, ValidatePCL5(questions, []domain.PCL5Response{{QuestionID: "1", Score: 5}, {QuestionID: "2", Score: 1}}))
	assert.Error(t, ValidatePCL5(questions, []domain.PCL5Response{{QuestionID: "1", Score: -1}, {QuestionID: "2", Score: 1}}))
	assert.Error(t, ValidatePCL5(questions, []domain.PCL5Response{{QuestionID: "1", Score: 1}, {QuestionID: "1", Score: 1}}))
}

func TestAssessmentService_SubmitPCL5(t *testing.T) {
	s, b := newAssessmentService(t)
	b.handle("/api/pcl5/questions", http.StatusOK, `{"questions":[{"id":1,"number":1,"text":"Q1"},{"id":2,"number":2,"text":"Q2"}]}`)
	b.mux.HandleFunc("/api/pcl5/assessments", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			_, _ = w.Write([]byte(`{"data":{"id":4,"total_score":6,"severity":"minimal"}}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":4,"total_score":6}]`))
	})

	_, err := s.SubmitPCL5(ctx, "tok", domain.PCL5Submission{Responses: []domain.PCL5Response{{QuestionID: "1", Score: 2}}})
	assert.ErrorIs(t, err, apiclient.ErrValidation)

	assessment, err := s.SubmitPCL5(ctx, "tok", domain.PCL5Submission{Responses: []domain.PCL5Response{
		{QuestionID: "1", Score: 2},
		{QuestionID: "2", Score: 4},
	}})
	require.NoError(t, err)
	assert.Equal(t, 6, assessment.TotalScore)

	history, err := s.PCL5Assessments(ctx, "tok")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
