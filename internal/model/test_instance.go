package model

import (
	"time"

	"gorm.io/gorm"
)

// RespondentRole identifies which of the three perspectives a TestInstance
// captures. All three must submit before a review is assembled.
type RespondentRole string

const (
	RoleChild   RespondentRole = "child"
	RoleParent  RespondentRole = "parent"
	RoleTeacher RespondentRole = "teacher"
)

// RequiredRoles are the roles that must all submit before the review
// aggregate for a child is created.
var RequiredRoles = []RespondentRole{RoleChild, RoleParent, RoleTeacher}

func (r RespondentRole) Valid() bool {
	return r == RoleChild || r == RoleParent || r == RoleTeacher
}

// Dialogue position sentinels. Positions 0..N-1 are the current question;
// N means every question has been answered.
const PositionNotStarted = -1

// TestInstance is one respondent's run through the questionnaire about one
// child. Position only moves forward, and only when an answer is confirmed.
// Submitted flips false->true exactly once; the record is never deleted.
type TestInstance struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	TestID            string         `json:"test_id" gorm:"not null;uniqueIndex"`
	ChildID           string         `json:"child_id" gorm:"not null;index"`
	RespondentRole    RespondentRole `json:"respondent_role" gorm:"not null;index"`
	RespondentEmail   string         `json:"respondent_email" gorm:"not null"`
	Age               int            `json:"age" gorm:"not null"` // snapshot at start, selects the question band
	ChildName         string         `json:"child_name" gorm:"not null"`
	Position          int            `json:"position" gorm:"not null;default:-1"`
	PendingSuggestion Category       `json:"pending_suggestion,omitempty"` // proposed but unconfirmed option
	Submitted         bool           `json:"submitted" gorm:"not null;default:false;index"`
	Scores            *ScoreReport   `json:"scores,omitempty" gorm:"serializer:json"`
	Answers           []AnswerRecord `json:"answers,omitempty" gorm:"foreignKey:TestInstanceID"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// AnswerRecord is one confirmed entry in the append-only answer ledger.
type AnswerRecord struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	TestInstanceID uint           `json:"test_instance_id" gorm:"not null;index"`
	QuestionIndex  int            `json:"question_index" gorm:"not null"`
	QuestionText   string         `json:"question_text" gorm:"type:text;not null"`
	SelectedOption Category       `json:"selected_option" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// UtteranceFingerprint is a best-effort audit record of what the respondent
// actually typed, with an optional embedding for later review tooling. It is
// written outside the dialogue transaction and never blocks a turn.
type UtteranceFingerprint struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	TestInstanceID uint           `json:"test_instance_id" gorm:"not null;index"`
	QuestionIndex  int            `json:"question_index" gorm:"not null"`
	Text           string         `json:"text" gorm:"type:text;not null"`
	Embedding      []float32      `json:"embedding,omitempty" gorm:"serializer:json"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
