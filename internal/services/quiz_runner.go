package services

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/edu-platform/backend/internal/auth"
	"github.com/edu-platform/backend/internal/events"
	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/repositories"
)

type QuizStatus string

const (
	QuizStatusLoading    QuizStatus = "loading"
	QuizStatusInProgress QuizStatus = "inProgress"
	QuizStatusCompleted  QuizStatus = "completed"
	QuizStatusNotFound   QuizStatus = "notFound"
)

// RunnerSnapshot is the state a client sees. The correct answer never
// leaves the runner.
type RunnerSnapshot struct {
	Status         QuizStatus `json:"status"`
	QuizID         string     `json:"quizId,omitempty"`
	QuizTitle      string     `json:"quizTitle,omitempty"`
	QuestionIndex  int        `json:"questionIndex"`
	TotalQuestions int        `json:"totalQuestions"`
	QuestionText   string     `json:"questionText,omitempty"`
	Options        []string   `json:"options,omitempty"`
	TimeLeft       int        `json:"timeLeft"`
	SelectedOption string     `json:"selectedOption,omitempty"`
	Score          int        `json:"score"`
}

// QuizRunner sequences one quiz run: it applies per-question time
// limits, records selections, computes the final score and persists an
// Attempt on completion when an identity is present.
//
// The countdown is epoch-guarded: every exit from inProgress and every
// index change stops the pending timer and bumps the epoch, so a stale
// tick can never act against a since-changed question.
type QuizRunner struct {
	mu        sync.Mutex
	status    QuizStatus
	quiz      *models.Quiz
	questions []*models.Question
	index     int
	timeLeft  int
	answers   map[int]string
	score     int

	identity *auth.Identity
	tick     time.Duration
	timer    *time.Timer
	epoch    int

	attempts  repositories.AttemptRepository
	publisher events.EventPublisher
	logger    *slog.Logger
}

// NewQuizRunner starts a run over the given quiz. A nil quiz yields the
// terminal notFound state. tick is the countdown interval; production
// callers pass time.Second.
func NewQuizRunner(
	identity *auth.Identity,
	quiz *models.Quiz,
	questions []*models.Question,
	attempts repositories.AttemptRepository,
	publisher events.EventPublisher,
	logger *slog.Logger,
	tick time.Duration,
) *QuizRunner {
	r := &QuizRunner{
		status:    QuizStatusLoading,
		quiz:      quiz,
		questions: questions,
		answers:   make(map[int]string),
		identity:  identity,
		tick:      tick,
		attempts:  attempts,
		publisher: publisher,
		logger:    logger,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if quiz == nil {
		r.status = QuizStatusNotFound
		return r
	}

	r.status = QuizStatusInProgress
	r.index = 0
	if len(questions) > 0 {
		r.timeLeft = questions[0].TimerOrDefault()
		r.scheduleLocked()
	} else {
		// A quiz without questions completes immediately with score 0.
		r.completeLocked()
	}
	return r
}

func (r *QuizRunner) scheduleLocked() {
	epoch := r.epoch
	r.timer = time.AfterFunc(r.tick, func() { r.onTick(epoch) })
}

func (r *QuizRunner) cancelTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.epoch++
}

func (r *QuizRunner) onTick(epoch int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if epoch != r.epoch || r.status != QuizStatusInProgress {
		return
	}

	r.timeLeft--
	if r.timeLeft <= 0 {
		// Running out of time is the same transition as an explicit
		// "next" with whatever is currently selected.
		r.advanceLocked()
		return
	}
	r.scheduleLocked()
}

// Select records the option chosen for the current question. Selecting
// again overwrites; selecting nothing before advancing is permitted.
func (r *QuizRunner) Select(option string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != QuizStatusInProgress {
		return ErrQuizSessionCompleted
	}
	r.answers[r.index] = option
	return nil
}

// Advance moves to the next question or completes the run.
func (r *QuizRunner) Advance() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != QuizStatusInProgress {
		return ErrQuizSessionCompleted
	}
	r.advanceLocked()
	return nil
}

func (r *QuizRunner) advanceLocked() {
	r.cancelTimerLocked()

	next := r.index + 1
	if next < len(r.questions) {
		r.index = next
		r.timeLeft = r.questions[next].TimerOrDefault()
		r.scheduleLocked()
		return
	}
	r.completeLocked()
}

func (r *QuizRunner) completeLocked() {
	r.cancelTimerLocked()

	score := 0
	for i, q := range r.questions {
		if answer, ok := r.answers[i]; ok && answer == q.CorrectAnswer {
			score++
		}
	}
	r.score = score
	r.status = QuizStatusCompleted

	// No identity: the run still completes and shows its score locally,
	// but nothing is persisted.
	if r.identity == nil {
		return
	}

	userAnswers := make(datatypes.JSONMap, len(r.answers))
	for i, answer := range r.answers {
		userAnswers[strconv.Itoa(i)] = answer
	}

	attempt := &models.Attempt{
		ID:             uuid.NewString(),
		UserID:         r.identity.ID,
		QuizID:         r.quiz.ID,
		Score:          score,
		TotalQuestions: len(r.questions),
		UserAnswers:    userAnswers,
		CreatedAt:      time.Now(),
	}

	ctx := context.Background()
	if err := r.attempts.Create(ctx, attempt); err != nil {
		// The score is still shown; the record is lost and the failure
		// surfaced through logs only, matching the attempt write's
		// fire-and-forget contract.
		r.logger.Error("Failed to save attempt",
			"quiz_id", r.quiz.ID, "user_id", r.identity.ID, "error", err)
		return
	}

	r.logger.Info("Attempt recorded",
		"attempt_id", attempt.ID,
		"quiz_id", r.quiz.ID,
		"score", score,
		"total_questions", attempt.TotalQuestions)

	if r.publisher != nil {
		event := events.NewNotificationEvent(events.EventAttemptCompleted, events.AttemptCompletedEvent{
			AttemptID:      attempt.ID,
			UserID:         attempt.UserID,
			QuizID:         attempt.QuizID,
			QuizTitle:      r.quiz.Title,
			Score:          attempt.Score,
			TotalQuestions: attempt.TotalQuestions,
		})
		if err := r.publisher.PublishNotificationEvent(ctx, event); err != nil {
			r.logger.Warn("Failed to publish attempt completed event",
				"attempt_id", attempt.ID, "error", err)
		}
	}
}

// Close cancels the pending timer. Safe to call in any state.
func (r *QuizRunner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelTimerLocked()
}

// Snapshot returns the client-visible state of the run.
func (r *QuizRunner) Snapshot() *RunnerSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := &RunnerSnapshot{
		Status:         r.status,
		QuestionIndex:  r.index,
		TotalQuestions: len(r.questions),
		TimeLeft:       r.timeLeft,
		Score:          r.score,
	}
	if r.quiz != nil {
		snap.QuizID = r.quiz.ID
		snap.QuizTitle = r.quiz.Title
	}
	if r.status == QuizStatusInProgress && r.index < len(r.questions) {
		question := r.questions[r.index]
		snap.QuestionText = question.QuestionText
		snap.Options = question.Options
		snap.SelectedOption = r.answers[r.index]
	}
	return snap
}
