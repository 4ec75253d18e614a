package domain

import "time"

// QuestionType enumerates the answer widgets a questionnaire may use.
type QuestionType string

const (
	QuestionSingleChoice QuestionType = "single_choice"
	QuestionMultiChoice  QuestionType = "multiple_choice"
	QuestionScale        QuestionType = "scale"
	QuestionText         QuestionType = "text"
)

// Questionnaire is an assessment form served by the backend.
type Questionnaire struct {
	ID          ID         `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions,omitempty"`
}

// Question is one item of a questionnaire.
type Question struct {
	ID       ID               `json:"id"`
	Text     string           `json:"text"`
	Type     QuestionType     `json:"type"`
	Required bool             `json:"required"`
	Options  []QuestionOption `json:"options,omitempty"`
}

// QuestionOption is a selectable answer.
type QuestionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Answer is a user's response to one question. Values holds a single entry
// for every type except multiple choice.
type Answer struct {
	QuestionID ID       `json:"question_id"`
	Values     []string `json:"values"`
}

// QuestionnaireSubmission is the body of POST /api/questionnaires/:id/submit.
type QuestionnaireSubmission struct {
	Answers []Answer `json:"answers"`
}

// QuestionnaireResult mirrors the submit response.
type QuestionnaireResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	SubmissionID  ID     `json:"submission_id,omitempty"`
	Score         *int   `json:"score,omitempty"`
	TokensAwarded int    `json:"tokens_awarded,omitempty"`
}

// PCL5MinScore and PCL5MaxScore bound a single PCL-5 item response.
const (
	PCL5MinScore = 0
	PCL5MaxScore = 4
)

// PCL5Question is one of the checklist items.
type PCL5Question struct {
	ID     ID     `json:"id"`
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// PCL5Response is the score given to one PCL-5 item.
type PCL5Response struct {
	QuestionID ID  `json:"question_id"`
	Score      int `json:"score"`
}

// PCL5Submission is the body of POST /api/pcl5/assessments.
type PCL5Submission struct {
	Responses []PCL5Response `json:"responses"`
}

// PCL5Assessment is a scored checklist as stored by the backend.
type PCL5Assessment struct {
	ID         ID        `json:"id"`
	TotalScore int       `json:"total_score"`
	Severity   string    `json:"severity,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
