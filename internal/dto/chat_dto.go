package dto

import "github.com/haimtran/sdq-assistant/internal/model"

// ChatTurn is one message of the per-request conversation history. The
// dialogue engine is stateless between requests; clients replay the recent
// turns each time.
type ChatTurn struct {
	Role    string `json:"role" binding:"required"` // "user" or "assistant"
	Content string `json:"content" binding:"required"`
}

// StartChatRequest creates or resumes a test instance for one respondent.
// Role and email are always required; identity is never silently defaulted.
// Exactly one of ChildID (self-report) or ChildCode (parent/teacher using the
// sharing code) must be provided.
type StartChatRequest struct {
	ChildID        string               `json:"child_id"`
	ChildCode      string               `json:"child_code"`
	RespondentRole model.RespondentRole `json:"respondent_role" binding:"required"`
	Email          string               `json:"email" binding:"required"`
}

type StartChatResponse struct {
	TestID         string               `json:"test_id"`
	ChildID        string               `json:"child_id"`
	ChildName      string               `json:"child_name"`
	Age            int                  `json:"age"`
	RespondentRole model.RespondentRole `json:"respondent_role"`
	Message        string               `json:"message"`
	QuestionIndex  int                  `json:"question_index"`
	Resumed        bool                 `json:"resumed"`
}

// RespondRequest carries one respondent turn for an in-flight test.
type RespondRequest struct {
	TestID      string     `json:"test_id" binding:"required"`
	ChatHistory []ChatTurn `json:"chat_history" binding:"required,dive"`
}

// ConfirmOptionRequest explicitly confirms a selected option for the current
// question, bypassing intent classification.
type ConfirmOptionRequest struct {
	TestID         string `json:"test_id" binding:"required"`
	QuestionIndex  int    `json:"question_index"`
	SelectedOption string `json:"selected_option" binding:"required"`
}

// DialogueTurn is the single tagged result shape for every dialogue outcome,
// so call sites handle one structure instead of per-path response maps.
type DialogueTurn struct {
	TestID          string `json:"test_id"`
	Message         string `json:"message"`
	QuestionIndex   int    `json:"question_index"`
	Completed       bool   `json:"completed"`
	SuggestedOption string `json:"suggested_option,omitempty"`
}
