package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/edu-platform/backend/internal/events"
	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/repositories"
	"github.com/edu-platform/backend/internal/utils"
)

// Caller identifies the authenticated principal invoking an operation,
// with its resolved role. Authorization is enforced here, at the
// service boundary, not left to the calling page.
type Caller struct {
	ID   string
	Role models.UserRole
}

type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"required,max=2000"`
}

type CreateLessonRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required"`
}

type ContentService interface {
	CreateCourse(ctx context.Context, caller Caller, req *CreateCourseRequest) (*models.Course, error)
	ListCourses(ctx context.Context) ([]*models.Course, error)
	ListCoursesByOwner(ctx context.Context, ownerID string) ([]*models.Course, error)
	GetCourse(ctx context.Context, id string) (*models.Course, error)

	CreateLesson(ctx context.Context, caller Caller, courseID string, req *CreateLessonRequest) (*models.Lesson, error)
	ListLessons(ctx context.Context, courseID string) ([]*models.Lesson, error)
	SubscribeLessons(ctx context.Context, courseID string) (<-chan []*models.Lesson, error)

	QuizByCourse(ctx context.Context, courseID string) (*models.Quiz, error)
	ListQuestions(ctx context.Context, quizID string) ([]*models.Question, error)

	ListAttemptsByUser(ctx context.Context, userID string) ([]*models.Attempt, error)
	ListRecentAttempts(ctx context.Context, limit int) ([]*models.Attempt, error)

	ListProfiles(ctx context.Context, caller Caller) ([]*models.Profile, error)
}

type contentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *utils.Validator
}

func NewContentService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, validator *utils.Validator) ContentService {
	return &contentService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// ===== COURSES =====

func (s *contentService) CreateCourse(ctx context.Context, caller Caller, req *CreateCourseRequest) (*models.Course, error) {
	if caller.Role != models.RoleTeacher {
		return nil, ErrForbidden
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	course := &models.Course{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     caller.ID,
		CreatedAt:   time.Now(),
	}

	if err := s.repo.Course().Create(ctx, course); err != nil {
		s.logger.Error("Course creation failed",
			"owner_id", caller.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	s.logger.Info("Course created",
		"course_id", course.ID, "owner_id", caller.ID)

	s.publishEvent(ctx, events.EventCourseCreated, events.CourseCreatedEvent{
		CourseID:    course.ID,
		CourseTitle: course.Title,
		OwnerID:     course.OwnerID,
	})

	return course, nil
}

func (s *contentService) ListCourses(ctx context.Context) ([]*models.Course, error) {
	return s.repo.Course().List(ctx)
}

func (s *contentService) ListCoursesByOwner(ctx context.Context, ownerID string) ([]*models.Course, error) {
	return s.repo.Course().ListByOwner(ctx, ownerID)
}

func (s *contentService) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.Course().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// ===== LESSONS =====

func (s *contentService) CreateLesson(ctx context.Context, caller Caller, courseID string, req *CreateLessonRequest) (*models.Lesson, error) {
	course, err := s.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	// Ownership and role are checked here, server-side. The page-level
	// check remains a UX shortcut only.
	if caller.Role != models.RoleTeacher {
		return nil, ErrForbidden
	}
	if course.OwnerID != caller.ID {
		return nil, ErrNotCourseOwner
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	lesson := &models.Lesson{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: &now,
	}

	if err := s.repo.Lesson().Create(ctx, lesson); err != nil {
		s.logger.Error("Lesson creation failed",
			"course_id", courseID, "owner_id", caller.ID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	s.logger.Info("Lesson created",
		"lesson_id", lesson.ID, "course_id", courseID)

	s.publishEvent(ctx, events.EventLessonCreated, events.LessonCreatedEvent{
		LessonID:    lesson.ID,
		CourseID:    lesson.CourseID,
		LessonTitle: lesson.Title,
	})

	return lesson, nil
}

func (s *contentService) ListLessons(ctx context.Context, courseID string) ([]*models.Lesson, error) {
	lessons, err := s.repo.Lesson().ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	SortLessons(lessons)
	return lessons, nil
}

func (s *contentService) SubscribeLessons(ctx context.Context, courseID string) (<-chan []*models.Lesson, error) {
	raw, err := s.repo.Lesson().Subscribe(ctx, courseID)
	if err != nil {
		return nil, err
	}

	out := make(chan []*models.Lesson, 1)
	go func() {
		defer close(out)
		for lessons := range raw {
			SortLessons(lessons)
			select {
			case out <- lessons:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// ===== QUIZZES =====

func (s *contentService) QuizByCourse(ctx context.Context, courseID string) (*models.Quiz, error) {
	quiz, err := s.repo.Quiz().FirstByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}
	return quiz, nil
}

func (s *contentService) ListQuestions(ctx context.Context, quizID string) ([]*models.Question, error) {
	questions, err := s.repo.Question().ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	SortQuestions(questions)
	return questions, nil
}

// ===== ATTEMPTS =====

func (s *contentService) ListAttemptsByUser(ctx context.Context, userID string) ([]*models.Attempt, error) {
	return s.repo.Attempt().ListByUser(ctx, userID)
}

func (s *contentService) ListRecentAttempts(ctx context.Context, limit int) ([]*models.Attempt, error) {
	return s.repo.Attempt().ListRecent(ctx, limit)
}

// ===== PROFILES =====

func (s *contentService) ListProfiles(ctx context.Context, caller Caller) ([]*models.Profile, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.repo.Profile().List(ctx)
}

func (s *contentService) publishEvent(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishNotificationEvent(ctx, events.NewNotificationEvent(eventType, data)); err != nil {
		s.logger.Warn("Failed to publish notification event",
			"event_type", string(eventType), "error", err)
	}
}

// SortLessons orders lessons by creation timestamp ascending. Records
// without a timestamp sort last; id breaks ties either way.
func SortLessons(lessons []*models.Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		a, b := lessons[i], lessons[j]
		switch {
		case a.CreatedAt == nil && b.CreatedAt == nil:
			return a.ID < b.ID
		case a.CreatedAt == nil:
			return false
		case b.CreatedAt == nil:
			return true
		case a.CreatedAt.Equal(*b.CreatedAt):
			return a.ID < b.ID
		default:
			return a.CreatedAt.Before(*b.CreatedAt)
		}
	})
}

// SortQuestions orders questions by the explicit order field ascending,
// stable by id for duplicate orders.
func SortQuestions(questions []*models.Question) {
	sort.SliceStable(questions, func(i, j int) bool {
		a, b := questions[i], questions[j]
		if a.Order == b.Order {
			return a.ID < b.ID
		}
		return a.Order < b.Order
	})
}
