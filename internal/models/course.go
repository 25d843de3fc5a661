package models

import (
	"time"
)

// Course is created by a teacher; the owner is permanent.
type Course struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Title       string    `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string    `json:"description" gorm:"type:text" validate:"required,max=2000"`
	OwnerID     string    `json:"ownerId" gorm:"not null;size:255;index"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Course) TableName() string {
	return "courses"
}
