package models

import (
	"time"
)

// Lesson belongs to exactly one course. CreatedAt is nullable because
// legacy records imported from the previous deployment may lack it;
// ordering sorts those last.
type Lesson struct {
	ID        string     `json:"id" gorm:"primaryKey;size:36"`
	CourseID  string     `json:"courseId" gorm:"not null;size:36;index"`
	Title     string     `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Content   string     `json:"content" gorm:"type:text" validate:"required"`
	CreatedAt *time.Time `json:"createdAt"`
}

func (Lesson) TableName() string {
	return "lessons"
}
