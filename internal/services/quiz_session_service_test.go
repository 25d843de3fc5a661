package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/edu-platform/backend/internal/auth"
	"github.com/edu-platform/backend/internal/models"
)

func seedQuiz(t *testing.T, repo *fakeRepository) *models.Quiz {
	t.Helper()
	ctx := context.Background()

	quiz := &models.Quiz{ID: "quiz-1", CourseID: "course-1", Title: "Quiz"}
	require.NoError(t, repo.quizzes.Create(ctx, quiz))

	// Inserted out of order to exercise the sequencing.
	questions := []*models.Question{
		{ID: "q2", QuizID: quiz.ID, Order: 1, QuestionText: "second", Options: datatypes.JSONSlice[string]{"A", "B"}, CorrectAnswer: "B", Timer: 30},
		{ID: "q1", QuizID: quiz.ID, Order: 0, QuestionText: "first", Options: datatypes.JSONSlice[string]{"A", "B"}, CorrectAnswer: "A", Timer: 30},
	}
	for _, q := range questions {
		require.NoError(t, repo.questions.Create(ctx, q))
	}
	return quiz
}

func TestQuizSessionService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepository()
	seedQuiz(t, repo)
	svc := NewQuizSessionService(repo, nil, testLogger())
	defer svc.CloseAll()

	identity := &auth.Identity{ID: "user-1", Email: "student@example.com"}

	sessionID, snap, err := svc.Start(ctx, identity, "quiz-1")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, QuizStatusInProgress, snap.Status)
	assert.Equal(t, "first", snap.QuestionText)
	assert.Equal(t, 2, snap.TotalQuestions)

	snap, err = svc.Select(sessionID, "A")
	require.NoError(t, err)
	assert.Equal(t, "A", snap.SelectedOption)

	snap, err = svc.Advance(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.QuestionIndex)
	assert.Equal(t, "second", snap.QuestionText)
	assert.Empty(t, snap.SelectedOption)

	snap, err = svc.Advance(sessionID)
	require.NoError(t, err)
	assert.Equal(t, QuizStatusCompleted, snap.Status)
	assert.Equal(t, 1, snap.Score)

	// Completed sessions stay readable until closed.
	snap, err = svc.Snapshot(sessionID)
	require.NoError(t, err)
	assert.Equal(t, QuizStatusCompleted, snap.Status)

	recorded := repo.attempts.all()
	require.Len(t, recorded, 1)
	assert.Equal(t, "user-1", recorded[0].UserID)
	assert.Equal(t, 1, recorded[0].Score)
	assert.Equal(t, 2, recorded[0].TotalQuestions)

	svc.Close(sessionID)
	_, err = svc.Snapshot(sessionID)
	assert.ErrorIs(t, err, ErrQuizSessionNotFound)
}

func TestQuizSessionService_UnknownQuiz(t *testing.T) {
	repo := newFakeRepository()
	svc := NewQuizSessionService(repo, nil, testLogger())
	defer svc.CloseAll()

	sessionID, snap, err := svc.Start(context.Background(), nil, "missing")
	require.NoError(t, err)
	assert.Empty(t, sessionID)
	assert.Equal(t, QuizStatusNotFound, snap.Status)
}

func TestQuizSessionService_UnknownSession(t *testing.T) {
	repo := newFakeRepository()
	svc := NewQuizSessionService(repo, nil, testLogger())
	defer svc.CloseAll()

	_, err := svc.Snapshot("missing")
	assert.ErrorIs(t, err, ErrQuizSessionNotFound)

	_, err = svc.Select("missing", "A")
	assert.ErrorIs(t, err, ErrQuizSessionNotFound)

	_, err = svc.Advance("missing")
	assert.ErrorIs(t, err, ErrQuizSessionNotFound)
}
