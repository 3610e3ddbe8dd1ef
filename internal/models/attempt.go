package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuizAttempt struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	District    string       `gorm:"size:100;not null;index" json:"district"`
	AgeGroup    string       `gorm:"size:10;not null;index" json:"age_group"`
	Gender      string       `gorm:"size:20;not null" json:"gender"`
	Score       int          `gorm:"not null" json:"score"`
	Percentage  float64      `gorm:"not null" json:"percentage"`
	Passed      bool         `gorm:"not null" json:"passed"`
	Answers     []Answer     `gorm:"foreignKey:AttemptID;constraint:OnDelete:CASCADE" json:"answers,omitempty"`
	Certificate *Certificate `gorm:"foreignKey:AttemptID" json:"certificate,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

func (a *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

var AgeGroups = []string{"18-25", "26-40", "41-50", "50+"}

var Genders = []string{"Male", "Female", "Other", "Prefer not to say"}

func ValidAgeGroup(v string) bool { return contains(AgeGroups, v) }

func ValidGender(v string) bool { return contains(Genders, v) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
