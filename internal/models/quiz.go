package models

import (
	"gorm.io/datatypes"
)

// Quiz is associated with a course by foreign key. The schema permits
// several quizzes per course; lookups surface the first match only.
type Quiz struct {
	ID       string `json:"id" gorm:"primaryKey;size:36"`
	CourseID string `json:"courseId" gorm:"not null;size:36;index"`
	Title    string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
}

func (Quiz) TableName() string {
	return "quizzes"
}

// DefaultQuestionTimer is applied when a question has no explicit
// per-question time limit.
const DefaultQuestionTimer = 30

// Question belongs to one quiz and is sequenced by Order ascending.
// Order values should be unique within a quiz but are not enforced;
// duplicates fall back to a stable tiebreak by ID.
type Question struct {
	ID            string                      `json:"id" gorm:"primaryKey;size:36"`
	QuizID        string                      `json:"quizId" gorm:"not null;size:36;index"`
	Order         int                         `json:"order" gorm:"column:question_order;not null" validate:"min=0"`
	QuestionText  string                      `json:"questionText" gorm:"type:text;not null" validate:"required"`
	Options       datatypes.JSONSlice[string] `json:"options" gorm:"type:jsonb" validate:"required,min=2"`
	CorrectAnswer string                      `json:"correctAnswer" gorm:"not null" validate:"required"`
	Timer         int                         `json:"timer" gorm:"default:0" validate:"min=0,max=3600"`
}

func (Question) TableName() string {
	return "questions"
}

// TimerOrDefault returns the per-question time limit in seconds.
func (q Question) TimerOrDefault() int {
	if q.Timer <= 0 {
		return DefaultQuestionTimer
	}
	return q.Timer
}
