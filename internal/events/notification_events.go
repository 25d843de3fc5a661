package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of notification events.
type EventType string

const (
	// Content events
	EventCourseCreated EventType = "course.created"
	EventLessonCreated EventType = "lesson.created"

	// Attempt events
	EventAttemptCompleted EventType = "attempt.completed"
)

// NotificationEvent is the base event structure for all notification events.
type NotificationEvent struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

// NewNotificationEvent stamps an event with id, source and time.
func NewNotificationEvent(eventType EventType, data interface{}) *NotificationEvent {
	return &NotificationEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "edu-platform-backend",
		Version:   "1.0",
		Data:      data,
	}
}

type CourseCreatedEvent struct {
	CourseID    string `json:"course_id"`
	CourseTitle string `json:"course_title"`
	OwnerID     string `json:"owner_id"`
}

type LessonCreatedEvent struct {
	LessonID    string `json:"lesson_id"`
	CourseID    string `json:"course_id"`
	LessonTitle string `json:"lesson_title"`
}

type AttemptCompletedEvent struct {
	AttemptID      string `json:"attempt_id"`
	UserID         string `json:"user_id"`
	QuizID         string `json:"quiz_id"`
	QuizTitle      string `json:"quiz_title"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
}
