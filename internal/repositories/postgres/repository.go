package postgres

import (
	"gorm.io/gorm"

	"github.com/edu-platform/backend/internal/events"
	"github.com/edu-platform/backend/internal/repositories"
)

type repository struct {
	profile  repositories.ProfileRepository
	course   repositories.CourseRepository
	lesson   repositories.LessonRepository
	quiz     repositories.QuizRepository
	question repositories.QuestionRepository
	attempt  repositories.AttemptRepository
}

// NewRepository builds the PostgreSQL-backed repository aggregate. The
// change bus carries the live-subscription surface; repositories that
// mutate subscribed collections notify it after each committed write.
func NewRepository(db *gorm.DB, bus *events.ChangeBus) repositories.Repository {
	return &repository{
		profile:  NewProfilePostgreSQL(db),
		course:   NewCoursePostgreSQL(db),
		lesson:   NewLessonPostgreSQL(db, bus),
		quiz:     NewQuizPostgreSQL(db, bus),
		question: NewQuestionPostgreSQL(db),
		attempt:  NewAttemptPostgreSQL(db),
	}
}

func (r *repository) Profile() repositories.ProfileRepository   { return r.profile }
func (r *repository) Course() repositories.CourseRepository     { return r.course }
func (r *repository) Lesson() repositories.LessonRepository     { return r.lesson }
func (r *repository) Quiz() repositories.QuizRepository         { return r.quiz }
func (r *repository) Question() repositories.QuestionRepository { return r.question }
func (r *repository) Attempt() repositories.AttemptRepository   { return r.attempt }
