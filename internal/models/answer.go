package models

import "github.com/google/uuid"

// Answer is the persisted result of scoring one submitted answer. Rows are
// written together with their attempt and never mutated afterwards.
type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	AttemptID  uuid.UUID `gorm:"type:uuid;not null;index" json:"attempt_id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id"`
	OptionID   uuid.UUID `gorm:"type:uuid;not null" json:"option_id"`
	IsCorrect  bool      `gorm:"not null" json:"is_correct"`
}
