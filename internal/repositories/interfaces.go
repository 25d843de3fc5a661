package repositories

import (
	"context"

	"github.com/edu-platform/backend/internal/models"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context) ([]*models.Profile, error)
}

type CourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id string) (*models.Course, error)
	List(ctx context.Context) ([]*models.Course, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Course, error)
}

type LessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) error
	ListByCourse(ctx context.Context, courseID string) ([]*models.Lesson, error)
	// Subscribe delivers the current full lesson list for the course on
	// every change, starting with the current state. The stream closes
	// when ctx is cancelled; the handle is tied 1:1 to the course id.
	Subscribe(ctx context.Context, courseID string) (<-chan []*models.Lesson, error)
}

type QuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id string) (*models.Quiz, error)
	// FirstByCourse returns the first quiz associated with the course,
	// or nil when none exists. Additional matches are not disambiguated.
	FirstByCourse(ctx context.Context, courseID string) (*models.Quiz, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	// ListByQuiz returns questions ordered by their explicit order field
	// ascending, id as tiebreak.
	ListByQuiz(ctx context.Context, quizID string) ([]*models.Question, error)
}

type AttemptRepository interface {
	// Create appends a new attempt record. Attempts are never updated
	// or deleted.
	Create(ctx context.Context, attempt *models.Attempt) error
	ListByUser(ctx context.Context, userID string) ([]*models.Attempt, error)
	ListByQuiz(ctx context.Context, quizID string) ([]*models.Attempt, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Attempt, error)
}

// Repository aggregates access to all record families.
type Repository interface {
	Profile() ProfileRepository
	Course() CourseRepository
	Lesson() LessonRepository
	Quiz() QuizRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
}
