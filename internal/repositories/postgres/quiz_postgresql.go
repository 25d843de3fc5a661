package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/edu-platform/backend/internal/events"
	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/repositories"
)

type QuizPostgreSQL struct {
	db  *gorm.DB
	bus *events.ChangeBus
}

func NewQuizPostgreSQL(db *gorm.DB, bus *events.ChangeBus) repositories.QuizRepository {
	return &QuizPostgreSQL{db: db, bus: bus}
}

func (q *QuizPostgreSQL) Create(ctx context.Context, quiz *models.Quiz) error {
	if err := q.db.WithContext(ctx).Create(quiz).Error; err != nil {
		return err
	}
	return q.bus.NotifyChanged(events.QuizzesTopic(quiz.CourseID))
}

func (q *QuizPostgreSQL) GetByID(ctx context.Context, id string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).First(&quiz, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (q *QuizPostgreSQL) FirstByCourse(ctx context.Context, courseID string) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := q.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("id ASC").
		First(&quiz).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &quiz, nil
}

type QuestionPostgreSQL struct {
	db *gorm.DB
}

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Create(question).Error
}

func (q *QuestionPostgreSQL) ListByQuiz(ctx context.Context, quizID string) ([]*models.Question, error) {
	var questions []*models.Question
	// Duplicate order values are not enforced away; id keeps the
	// sequence stable.
	if err := q.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("question_order ASC, id ASC").
		Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}
