package model

import (
	"time"

	"gorm.io/gorm"
)

// Child is the subject being assessed. Registered once; the sharing code lets
// a parent or teacher start their own test about the same child.
type Child struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	ChildID   string         `json:"child_id" gorm:"not null;uniqueIndex"`
	Name      string         `json:"name" gorm:"not null"`
	Age       int            `json:"age" gorm:"not null"`
	Gender    string         `json:"gender,omitempty"`
	Code      string         `json:"code" gorm:"not null;uniqueIndex"` // sharing code
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
