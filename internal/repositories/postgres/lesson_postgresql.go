package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/edu-platform/backend/internal/events"
	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/repositories"
)

type LessonPostgreSQL struct {
	db  *gorm.DB
	bus *events.ChangeBus
}

func NewLessonPostgreSQL(db *gorm.DB, bus *events.ChangeBus) repositories.LessonRepository {
	return &LessonPostgreSQL{db: db, bus: bus}
}

func (l *LessonPostgreSQL) Create(ctx context.Context, lesson *models.Lesson) error {
	if err := l.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return err
	}
	return l.bus.NotifyChanged(events.LessonsTopic(lesson.CourseID))
}

func (l *LessonPostgreSQL) ListByCourse(ctx context.Context, courseID string) ([]*models.Lesson, error) {
	var lessons []*models.Lesson
	// Legacy records may lack a creation timestamp; they sort last.
	if err := l.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at ASC NULLS LAST, id ASC").
		Find(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (l *LessonPostgreSQL) Subscribe(ctx context.Context, courseID string) (<-chan []*models.Lesson, error) {
	signals, err := l.bus.Changes(ctx, events.LessonsTopic(courseID))
	if err != nil {
		return nil, err
	}

	out := make(chan []*models.Lesson, 1)

	// Deliver the current state first, then the full result set on
	// every change, in arrival order.
	initial, err := l.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	out <- initial

	go func() {
		defer close(out)
		for range signals {
			lessons, err := l.ListByCourse(ctx, courseID)
			if err != nil {
				// The consumer keeps its previous snapshot; the next
				// change re-queries.
				continue
			}
			select {
			case out <- lessons:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
