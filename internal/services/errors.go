package services

import (
	"errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("unauthorized access")
	ErrForbidden    = errors.New("forbidden - insufficient permissions")
	ErrWriteFailed  = errors.New("write operation failed")

	// Course specific errors
	ErrCourseNotFound = errors.New("course not found")
	ErrNotCourseOwner = errors.New("caller does not own this course")

	// Quiz specific errors
	ErrQuizNotFound = errors.New("quiz not found")

	// Quiz session specific errors
	ErrQuizSessionNotFound  = errors.New("quiz session not found")
	ErrQuizSessionCompleted = errors.New("quiz session already completed")
)

// IsNotFound reports whether err belongs to the not-found family, which
// renders as a terminal "not found" state rather than an error toast.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCourseNotFound) ||
		errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrQuizSessionNotFound)
}

// IsForbidden reports whether err is an authorization failure.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotCourseOwner)
}
