package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/edu-platform/backend/internal/auth"
	"github.com/edu-platform/backend/internal/events"
	"github.com/edu-platform/backend/internal/repositories"
)

const (
	// sessionTTL bounds the total lifetime of a quiz session. Completed
	// sessions stay readable until closed or swept so clients can fetch
	// their final score.
	sessionTTL    = time.Hour
	sweepInterval = time.Minute
)

// QuizSessionService manages live quiz runs keyed by session id.
type QuizSessionService interface {
	Start(ctx context.Context, identity *auth.Identity, quizID string) (string, *RunnerSnapshot, error)
	Snapshot(sessionID string) (*RunnerSnapshot, error)
	Select(sessionID, option string) (*RunnerSnapshot, error)
	Advance(sessionID string) (*RunnerSnapshot, error)
	Close(sessionID string)
	CloseAll()
}

type sessionEntry struct {
	runner  *QuizRunner
	started time.Time
}

type quizSessionService struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	stop     chan struct{}
	stopOnce sync.Once

	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewQuizSessionService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger) QuizSessionService {
	s := &quizSessionService{
		sessions:  make(map[string]*sessionEntry),
		stop:      make(chan struct{}),
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
	go s.sweep()
	return s
}

// sweep evicts sessions past their TTL.
func (s *quizSessionService) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-sessionTTL)

			s.mu.Lock()
			var expired []*QuizRunner
			for id, entry := range s.sessions {
				if entry.started.Before(cutoff) {
					expired = append(expired, entry.runner)
					delete(s.sessions, id)
				}
			}
			s.mu.Unlock()

			for _, runner := range expired {
				runner.Close()
			}
			if len(expired) > 0 {
				s.logger.Info("Expired quiz sessions", "count", len(expired))
			}
		case <-s.stop:
			return
		}
	}
}

func (s *quizSessionService) Start(ctx context.Context, identity *auth.Identity, quizID string) (string, *RunnerSnapshot, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// Terminal notFound state, no session retained.
			return "", &RunnerSnapshot{Status: QuizStatusNotFound}, nil
		}
		return "", nil, err
	}

	questions, err := s.repo.Question().ListByQuiz(ctx, quizID)
	if err != nil {
		return "", nil, err
	}
	SortQuestions(questions)

	runner := NewQuizRunner(identity, quiz, questions, s.repo.Attempt(), s.publisher, s.logger, time.Second)

	sessionID := uuid.NewString()
	s.mu.Lock()
	s.sessions[sessionID] = &sessionEntry{runner: runner, started: time.Now()}
	s.mu.Unlock()

	s.logger.Info("Quiz session started",
		"session_id", sessionID,
		"quiz_id", quizID,
		"questions", len(questions))

	return sessionID, runner.Snapshot(), nil
}

func (s *quizSessionService) runner(sessionID string) (*QuizRunner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrQuizSessionNotFound
	}
	return entry.runner, nil
}

func (s *quizSessionService) Snapshot(sessionID string) (*RunnerSnapshot, error) {
	runner, err := s.runner(sessionID)
	if err != nil {
		return nil, err
	}
	return runner.Snapshot(), nil
}

func (s *quizSessionService) Select(sessionID, option string) (*RunnerSnapshot, error) {
	runner, err := s.runner(sessionID)
	if err != nil {
		return nil, err
	}
	if err := runner.Select(option); err != nil {
		return nil, err
	}
	return runner.Snapshot(), nil
}

func (s *quizSessionService) Advance(sessionID string) (*RunnerSnapshot, error) {
	runner, err := s.runner(sessionID)
	if err != nil {
		return nil, err
	}
	if err := runner.Advance(); err != nil {
		return nil, err
	}
	return runner.Snapshot(), nil
}

func (s *quizSessionService) Close(sessionID string) {
	s.mu.Lock()
	entry, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if ok {
		entry.runner.Close()
	}
}

func (s *quizSessionService) CloseAll() {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*sessionEntry)
	s.mu.Unlock()

	for _, entry := range sessions {
		entry.runner.Close()
	}
}
