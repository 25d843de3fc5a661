package models

import (
	"time"

	"gorm.io/datatypes"
)

// Attempt is the immutable record of one completed quiz run by one
// identity. Records are append-only; UserAnswers maps question index
// (as a string key, matching the stored document schema) to the
// selected option and covers only answered indices.
type Attempt struct {
	ID             string            `json:"id" gorm:"primaryKey;size:36"`
	UserID         string            `json:"userId" gorm:"not null;size:255;index"`
	QuizID         string            `json:"quizId" gorm:"not null;size:36;index"`
	Score          int               `json:"score" gorm:"not null" validate:"min=0"`
	TotalQuestions int               `json:"totalQuestions" gorm:"not null" validate:"min=0"`
	UserAnswers    datatypes.JSONMap `json:"userAnswers" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"createdAt"`
}

func (Attempt) TableName() string {
	return "attempts"
}
