package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/repositories"
)

var errNotFound = gorm.ErrRecordNotFound

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeRepository is an in-memory Repository for service tests.
type fakeRepository struct {
	profiles  *fakeProfileRepo
	courses   *fakeCourseRepo
	lessons   *fakeLessonRepo
	quizzes   *fakeQuizRepo
	questions *fakeQuestionRepo
	attempts  *fakeAttemptRepo
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		profiles:  &fakeProfileRepo{byID: make(map[string]*models.Profile)},
		courses:   &fakeCourseRepo{byID: make(map[string]*models.Course)},
		lessons:   &fakeLessonRepo{},
		quizzes:   &fakeQuizRepo{byID: make(map[string]*models.Quiz)},
		questions: &fakeQuestionRepo{},
		attempts:  &fakeAttemptRepo{},
	}
}

func (f *fakeRepository) Profile() repositories.ProfileRepository   { return f.profiles }
func (f *fakeRepository) Course() repositories.CourseRepository     { return f.courses }
func (f *fakeRepository) Lesson() repositories.LessonRepository     { return f.lessons }
func (f *fakeRepository) Quiz() repositories.QuizRepository         { return f.quizzes }
func (f *fakeRepository) Question() repositories.QuestionRepository { return f.questions }
func (f *fakeRepository) Attempt() repositories.AttemptRepository   { return f.attempts }

type fakeProfileRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Profile
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[profile.ID] = profile
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.byID[id]
	if !ok {
		return nil, errNotFound
	}
	return profile, nil
}

func (r *fakeProfileRepo) List(_ context.Context) ([]*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Profile, 0, len(r.byID))
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

type fakeCourseRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.Course
	listed []*models.Course
}

func (r *fakeCourseRepo) Create(_ context.Context, course *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[course.ID] = course
	r.listed = append(r.listed, course)
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id string) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.byID[id]
	if !ok {
		return nil, errNotFound
	}
	return course, nil
}

func (r *fakeCourseRepo) List(_ context.Context) ([]*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Course(nil), r.listed...), nil
}

func (r *fakeCourseRepo) ListByOwner(_ context.Context, ownerID string) ([]*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Course
	for _, c := range r.listed {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeLessonRepo struct {
	mu      sync.Mutex
	lessons []*models.Lesson
	subs    []chan []*models.Lesson
}

func (r *fakeLessonRepo) Create(_ context.Context, lesson *models.Lesson) error {
	r.mu.Lock()
	r.lessons = append(r.lessons, lesson)
	subs := append([]chan []*models.Lesson(nil), r.subs...)
	snapshot := r.byCourseLocked(lesson.CourseID)
	r.mu.Unlock()

	for _, ch := range subs {
		ch <- snapshot
	}
	return nil
}

func (r *fakeLessonRepo) byCourseLocked(courseID string) []*models.Lesson {
	var out []*models.Lesson
	for _, l := range r.lessons {
		if l.CourseID == courseID {
			out = append(out, l)
		}
	}
	return out
}

func (r *fakeLessonRepo) ListByCourse(_ context.Context, courseID string) ([]*models.Lesson, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byCourseLocked(courseID), nil
}

func (r *fakeLessonRepo) Subscribe(ctx context.Context, courseID string) (<-chan []*models.Lesson, error) {
	ch := make(chan []*models.Lesson, 16)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	ch <- r.byCourseLocked(courseID)
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

type fakeQuizRepo struct {
	mu     sync.Mutex
	byID   map[string]*models.Quiz
	listed []*models.Quiz
}

func (r *fakeQuizRepo) Create(_ context.Context, quiz *models.Quiz) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[quiz.ID] = quiz
	r.listed = append(r.listed, quiz)
	return nil
}

func (r *fakeQuizRepo) GetByID(_ context.Context, id string) (*models.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	quiz, ok := r.byID[id]
	if !ok {
		return nil, errNotFound
	}
	return quiz, nil
}

func (r *fakeQuizRepo) FirstByCourse(_ context.Context, courseID string) (*models.Quiz, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first *models.Quiz
	for _, q := range r.listed {
		if q.CourseID != courseID {
			continue
		}
		if first == nil || q.ID < first.ID {
			first = q
		}
	}
	return first, nil
}

type fakeQuestionRepo struct {
	mu        sync.Mutex
	questions []*models.Question
}

func (r *fakeQuestionRepo) Create(_ context.Context, question *models.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions = append(r.questions, question)
	return nil
}

func (r *fakeQuestionRepo) ListByQuiz(_ context.Context, quizID string) ([]*models.Question, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Question
	for _, q := range r.questions {
		if q.QuizID == quizID {
			out = append(out, q)
		}
	}
	return out, nil
}

type fakeAttemptRepo struct {
	mu        sync.Mutex
	attempts  []*models.Attempt
	createErr error
}

func (r *fakeAttemptRepo) Create(_ context.Context, attempt *models.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *fakeAttemptRepo) ListByUser(_ context.Context, userID string) ([]*models.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Attempt
	for _, a := range r.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) ListByQuiz(_ context.Context, quizID string) ([]*models.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Attempt
	for _, a := range r.attempts {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAttemptRepo) ListRecent(_ context.Context, limit int) ([]*models.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]*models.Attempt(nil), r.attempts...)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *fakeAttemptRepo) all() []*models.Attempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Attempt(nil), r.attempts...)
}
