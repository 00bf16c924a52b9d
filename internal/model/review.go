package model

import (
	"time"

	"gorm.io/gorm"
)

// ReviewStatus tracks the one-way pending -> reviewed lifecycle.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusReviewed ReviewStatus = "reviewed"
)

// ScoreReport is the deterministic output of scoring one test instance.
// Recomputable at any time from the answer ledger alone. Missing indices
// simply contribute nothing, so a partial test scores partially.
type ScoreReport struct {
	TestID           string         `json:"test_id"`
	TotalScore       int            `json:"total_score"`
	ResponseCount    int            `json:"response_count"`
	SubscaleScores   map[string]int `json:"subscale_scores"`
	MaxPossibleScore int            `json:"max_possible_score"`
	CalculatedAt     time.Time      `json:"calculated_at"`
}

// ReviewAggregate is the single cross-respondent record per child. The unique
// index on ChildID is the race guard: concurrent submissions race on an
// insert-if-absent and the loser refreshes instead. Once Status is reviewed
// the record is frozen against further aggregation.
type ReviewAggregate struct {
	ID                 uint                            `gorm:"primarykey" json:"id"`
	ChildID            string                          `json:"child_id" gorm:"not null;uniqueIndex"`
	ChildTestID        string                          `json:"child_test_id"`
	ParentTestID       string                          `json:"parent_test_id"`
	TeacherTestID      string                          `json:"teacher_test_id"`
	Scores             map[RespondentRole]*ScoreReport `json:"scores" gorm:"serializer:json"`
	GeneratedSummary   string                          `json:"generated_summary" gorm:"type:text"`
	PsychologistReview string                          `json:"psychologist_review" gorm:"type:text"`
	Status             ReviewStatus                    `json:"status" gorm:"not null;default:'pending';index"`
	ReviewedBy         *string                         `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time                      `json:"reviewed_at,omitempty"`
	CreatedAt          time.Time                       `json:"created_at"`
	UpdatedAt          time.Time                       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt                  `gorm:"index" json:"-"`
}
