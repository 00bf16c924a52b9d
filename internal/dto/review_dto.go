package dto

import (
	"time"

	"github.com/haimtran/sdq-assistant/internal/model"
)

// SubmitTestRequest triggers the explicit submit action for a test instance.
type SubmitTestRequest struct {
	TestID string `json:"test_id" binding:"required"`
}

type SubmitTestResponse struct {
	Message          string `json:"message"`
	AlreadySubmitted bool   `json:"already_submitted"`
	ReviewCreated    bool   `json:"review_created"`
}

// ReviewStatusResponse tells a respondent where the combined review stands:
// waiting (not all roles submitted), pending (awaiting psychologist), or
// reviewed. The summary is only populated once reviewed.
type ReviewStatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Summary string `json:"summary,omitempty"`
}

// ReviewSummaryDTO is one row in the psychologist's pending/completed lists.
type ReviewSummaryDTO struct {
	ChildID    string     `json:"child_id"`
	ChildName  string     `json:"child_name"`
	CreatedAt  time.Time  `json:"created_at"`
	ReviewedBy *string    `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// TestInstanceDTO exposes one respondent's completed run inside a review.
type TestInstanceDTO struct {
	TestID         string               `json:"test_id"`
	RespondentRole model.RespondentRole `json:"respondent_role"`
	Submitted      bool                 `json:"submitted"`
	Scores         *model.ScoreReport   `json:"scores,omitempty"`
	Answers        []AnswerDTO          `json:"answers,omitempty"`
	Utterances     []UtteranceDTO       `json:"utterances,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

type AnswerDTO struct {
	QuestionIndex  int            `json:"question_index"`
	QuestionText   string         `json:"question_text"`
	SelectedOption model.Category `json:"selected_option"`
}

// UtteranceDTO is one raw respondent message captured during the dialogue,
// shown to the reviewer alongside the confirmed answers.
type UtteranceDTO struct {
	QuestionIndex int    `json:"question_index"`
	Text          string `json:"text"`
}

// TestHistoryDTO replays one test's recorded progress: where the dialogue
// stands, whether it was submitted, and the confirmed answer ledger.
type TestHistoryDTO struct {
	TestID         string               `json:"test_id"`
	ChildID        string               `json:"child_id"`
	RespondentRole model.RespondentRole `json:"respondent_role"`
	Position       int                  `json:"position"`
	Submitted      bool                 `json:"submitted"`
	Answers        []AnswerDTO          `json:"answers"`
}

// FullReviewDTO is the psychologist-facing view of one child's aggregate.
type FullReviewDTO struct {
	ChildID            string                                      `json:"child_id"`
	ChildName          string                                      `json:"child_name"`
	Age                int                                         `json:"age"`
	TestIDs            map[model.RespondentRole]string             `json:"test_ids"`
	Scores             map[model.RespondentRole]*model.ScoreReport `json:"scores"`
	GeneratedSummary   string                                      `json:"generated_summary"`
	PsychologistReview string                                      `json:"psychologist_review,omitempty"`
	Status             model.ReviewStatus                          `json:"status"`
	Tests              []TestInstanceDTO                           `json:"tests,omitempty"`
}

// SubmitReviewRequest carries the psychologist's verdict.
type SubmitReviewRequest struct {
	ChildID            string `json:"child_id" binding:"required"`
	PsychologistReview string `json:"psychologist_review" binding:"required"`
	ReviewerID         string `json:"reviewer_id" binding:"required"`
}

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
