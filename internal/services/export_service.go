package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/repositories"
)

// ExportService produces teacher-facing attempt reports.
type ExportService interface {
	// ExportQuizAttempts renders all attempts for a quiz as an xlsx
	// workbook. Only the owning teacher may export.
	ExportQuizAttempts(ctx context.Context, caller Caller, quizID string) ([]byte, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) ExportQuizAttempts(ctx context.Context, caller Caller, quizID string) ([]byte, error) {
	quiz, err := s.repo.Quiz().GetByID(ctx, quizID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}

	course, err := s.repo.Course().GetByID(ctx, quiz.CourseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	if caller.Role != models.RoleTeacher {
		return nil, ErrForbidden
	}
	if course.OwnerID != caller.ID {
		return nil, ErrNotCourseOwner
	}

	attempts, err := s.repo.Attempt().ListByQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	headers := []string{"Attempt ID", "User ID", "Score", "Total Questions", "Completed At"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write export header: %w", err)
		}
	}

	for row, attempt := range attempts {
		values := []interface{}{
			attempt.ID,
			attempt.UserID,
			attempt.Score,
			attempt.TotalQuestions,
			attempt.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write export row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render export: %w", err)
	}

	s.logger.Info("Exported quiz attempts",
		"quiz_id", quizID,
		"attempts", len(attempts),
		"requested_by", caller.ID)

	return buf.Bytes(), nil
}
