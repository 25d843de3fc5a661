package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edu-platform/backend/internal/events"
	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/utils"
)

func newTestContentService(repo *fakeRepository, publisher events.EventPublisher) ContentService {
	return NewContentService(repo, publisher, testLogger(), utils.NewValidator())
}

func TestContentService_CreateCourse(t *testing.T) {
	ctx := context.Background()

	t.Run("teacher creates a course", func(t *testing.T) {
		repo := newFakeRepository()
		publisher := events.NewMockEventPublisher(testLogger())
		svc := newTestContentService(repo, publisher)

		course, err := svc.CreateCourse(ctx, Caller{ID: "teacher-1", Role: models.RoleTeacher}, &CreateCourseRequest{
			Title:       "Algebra",
			Description: "Linear equations",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, course.ID)
		assert.Equal(t, "teacher-1", course.OwnerID)

		published := publisher.GetPublishedEvents()
		require.Len(t, published, 1)
		assert.Equal(t, events.EventCourseCreated, published[0].Type)
	})

	t.Run("non-teacher roles are rejected", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestContentService(repo, nil)

		for _, role := range []models.UserRole{models.RoleStudent, models.RoleParent, models.RoleAdmin, models.RoleUnresolved} {
			_, err := svc.CreateCourse(ctx, Caller{ID: "user-1", Role: role}, &CreateCourseRequest{
				Title:       "Algebra",
				Description: "Linear equations",
			})
			assert.ErrorIs(t, err, ErrForbidden, "role %q", role)
		}
	})

	t.Run("invalid payload is rejected", func(t *testing.T) {
		repo := newFakeRepository()
		svc := newTestContentService(repo, nil)

		_, err := svc.CreateCourse(ctx, Caller{ID: "teacher-1", Role: models.RoleTeacher}, &CreateCourseRequest{})
		require.Error(t, err)
	})
}

func TestContentService_ListCoursesByOwner(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestContentService(repo, nil)

	for _, owner := range []string{"teacher-1", "teacher-2", "teacher-1"} {
		_, err := svc.CreateCourse(ctx, Caller{ID: owner, Role: models.RoleTeacher}, &CreateCourseRequest{
			Title:       "Course",
			Description: "Description",
		})
		require.NoError(t, err)
	}

	mine, err := svc.ListCoursesByOwner(ctx, "teacher-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, course := range mine {
		assert.Equal(t, "teacher-1", course.OwnerID)
	}

	all, err := svc.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestContentService_CreateLesson(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (ContentService, *models.Course) {
		repo := newFakeRepository()
		svc := newTestContentService(repo, nil)
		course, err := svc.CreateCourse(ctx, Caller{ID: "teacher-1", Role: models.RoleTeacher}, &CreateCourseRequest{
			Title:       "Algebra",
			Description: "Linear equations",
		})
		require.NoError(t, err)
		return svc, course
	}

	t.Run("owner adds a lesson", func(t *testing.T) {
		svc, course := setup(t)

		lesson, err := svc.CreateLesson(ctx, Caller{ID: "teacher-1", Role: models.RoleTeacher}, course.ID, &CreateLessonRequest{
			Title:   "Lesson 1",
			Content: "Intro",
		})
		require.NoError(t, err)
		assert.Equal(t, course.ID, lesson.CourseID)
		require.NotNil(t, lesson.CreatedAt)
	})

	t.Run("other teachers cannot add lessons", func(t *testing.T) {
		svc, course := setup(t)

		_, err := svc.CreateLesson(ctx, Caller{ID: "teacher-2", Role: models.RoleTeacher}, course.ID, &CreateLessonRequest{
			Title:   "Lesson 1",
			Content: "Intro",
		})
		assert.ErrorIs(t, err, ErrNotCourseOwner)
	})

	t.Run("students cannot add lessons", func(t *testing.T) {
		svc, course := setup(t)

		_, err := svc.CreateLesson(ctx, Caller{ID: "student-1", Role: models.RoleStudent}, course.ID, &CreateLessonRequest{
			Title:   "Lesson 1",
			Content: "Intro",
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown course", func(t *testing.T) {
		svc, _ := setup(t)

		_, err := svc.CreateLesson(ctx, Caller{ID: "teacher-1", Role: models.RoleTeacher}, "missing", &CreateLessonRequest{
			Title:   "Lesson 1",
			Content: "Intro",
		})
		assert.ErrorIs(t, err, ErrCourseNotFound)
	})
}

func TestContentService_ListLessonsOrdering(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestContentService(repo, nil)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	at := func(offset int) *time.Time {
		ts := base.Add(time.Duration(offset) * time.Minute)
		return &ts
	}

	// Inserted out of order; one legacy record has no timestamp.
	lessons := []*models.Lesson{
		{ID: "l3", CourseID: "course-1", Title: "Third", Content: "c", CreatedAt: at(3)},
		{ID: "l1", CourseID: "course-1", Title: "First", Content: "c", CreatedAt: at(1)},
		{ID: "l4", CourseID: "course-1", Title: "Legacy", Content: "c", CreatedAt: nil},
		{ID: "l2", CourseID: "course-1", Title: "Second", Content: "c", CreatedAt: at(2)},
	}
	for _, lesson := range lessons {
		require.NoError(t, repo.lessons.Create(ctx, lesson))
	}

	ordered, err := svc.ListLessons(ctx, "course-1")
	require.NoError(t, err)

	ids := make([]string, 0, len(ordered))
	for _, lesson := range ordered {
		ids = append(ids, lesson.ID)
	}
	assert.Equal(t, []string{"l1", "l2", "l3", "l4"}, ids)
}

func TestSortLessons_Tiebreaks(t *testing.T) {
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	lessons := []*models.Lesson{
		{ID: "b", CreatedAt: &ts},
		{ID: "a", CreatedAt: &ts},
		{ID: "d"},
		{ID: "c"},
	}

	SortLessons(lessons)

	ids := []string{lessons[0].ID, lessons[1].ID, lessons[2].ID, lessons[3].ID}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
}

func TestContentService_SubscribeLessons(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := newFakeRepository()
	svc := newTestContentService(repo, nil)

	updates, err := svc.SubscribeLessons(ctx, "course-1")
	require.NoError(t, err)

	// First delivery carries the current (empty) state.
	select {
	case initial := <-updates:
		assert.Empty(t, initial)
	case <-time.After(time.Second):
		t.Fatal("no initial delivery")
	}

	ts := time.Now()
	require.NoError(t, repo.lessons.Create(ctx, &models.Lesson{
		ID: "l1", CourseID: "course-1", Title: "First", Content: "c", CreatedAt: &ts,
	}))

	select {
	case next := <-updates:
		require.Len(t, next, 1)
		assert.Equal(t, "l1", next[0].ID)
	case <-time.After(time.Second):
		t.Fatal("no delivery after change")
	}
}

func TestContentService_QuizByCourse(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestContentService(repo, nil)

	t.Run("no quiz", func(t *testing.T) {
		_, err := svc.QuizByCourse(ctx, "course-1")
		assert.ErrorIs(t, err, ErrQuizNotFound)
	})

	t.Run("first match by id", func(t *testing.T) {
		require.NoError(t, repo.quizzes.Create(ctx, &models.Quiz{ID: "q2", CourseID: "course-1", Title: "Second"}))
		require.NoError(t, repo.quizzes.Create(ctx, &models.Quiz{ID: "q1", CourseID: "course-1", Title: "First"}))

		quiz, err := svc.QuizByCourse(ctx, "course-1")
		require.NoError(t, err)
		assert.Equal(t, "q1", quiz.ID)
	})
}

func TestContentService_ListQuestionsOrdering(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestContentService(repo, nil)

	questions := []*models.Question{
		{ID: "q-b", QuizID: "quiz-1", Order: 1, QuestionText: "x", CorrectAnswer: "A"},
		{ID: "q-a", QuizID: "quiz-1", Order: 1, QuestionText: "x", CorrectAnswer: "A"},
		{ID: "q-c", QuizID: "quiz-1", Order: 0, QuestionText: "x", CorrectAnswer: "A"},
	}
	for _, q := range questions {
		require.NoError(t, repo.questions.Create(ctx, q))
	}

	ordered, err := svc.ListQuestions(ctx, "quiz-1")
	require.NoError(t, err)

	ids := []string{ordered[0].ID, ordered[1].ID, ordered[2].ID}
	assert.Equal(t, []string{"q-c", "q-a", "q-b"}, ids)
}

func TestContentService_ListProfiles(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	svc := newTestContentService(repo, nil)

	require.NoError(t, repo.profiles.Create(ctx, &models.Profile{ID: "u1", Email: "a@example.com", Role: models.RoleStudent}))

	t.Run("admin only", func(t *testing.T) {
		_, err := svc.ListProfiles(ctx, Caller{ID: "u1", Role: models.RoleTeacher})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("admin sees all", func(t *testing.T) {
		profiles, err := svc.ListProfiles(ctx, Caller{ID: "admin-1", Role: models.RoleAdmin})
		require.NoError(t, err)
		assert.Len(t, profiles, 1)
	})
}
