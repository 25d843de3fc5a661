package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edu-platform/backend/internal/services"
	"github.com/edu-platform/backend/internal/utils"
)

type QuizHandler struct {
	content  services.ContentService
	sessions services.QuizSessionService
	export   services.ExportService
	logger   utils.Logger
}

func NewQuizHandler(
	content services.ContentService,
	sessions services.QuizSessionService,
	export services.ExportService,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		content:  content,
		sessions: sessions,
		export:   export,
		logger:   logger,
	}
}

// GetCourseQuiz returns the quiz attached to a course, if any.
func (h *QuizHandler) GetCourseQuiz(c *gin.Context) {
	quiz, err := h.content.QuizByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

type answerRequest struct {
	Option string `json:"option" binding:"required"`
}

// StartSession opens a live run of a quiz. The session works for
// anonymous callers too; only signed-in runs record an attempt on
// completion.
func (h *QuizHandler) StartSession(c *gin.Context) {
	_, identity := callerFrom(c)

	sessionID, snapshot, err := h.sessions.Start(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if sessionID == "" {
		c.JSON(http.StatusNotFound, gin.H{"session": snapshot})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": sessionID,
		"session":   snapshot,
	})
}

// GetSession returns the current state of a quiz session.
func (h *QuizHandler) GetSession(c *gin.Context) {
	snapshot, err := h.sessions.Snapshot(c.Param("sid"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snapshot})
}

// Answer records the caller's selection for the current question.
// Re-selecting overwrites the previous choice.
func (h *QuizHandler) Answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body."})
		return
	}

	snapshot, err := h.sessions.Select(c.Param("sid"), req.Option)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snapshot})
}

// Next advances the session to the following question, or completes it
// on the last one.
func (h *QuizHandler) Next(c *gin.Context) {
	snapshot, err := h.sessions.Advance(c.Param("sid"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": snapshot})
}

// CloseSession discards a quiz session and stops its timer.
func (h *QuizHandler) CloseSession(c *gin.Context) {
	h.sessions.Close(c.Param("sid"))
	c.Status(http.StatusNoContent)
}

// ExportAttempts streams an xlsx report of all attempts for a quiz to
// the owning teacher.
func (h *QuizHandler) ExportAttempts(c *gin.Context) {
	caller, _ := callerFrom(c)

	data, err := h.export.ExportQuizAttempts(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	filename := fmt.Sprintf("quiz-attempts-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ListMyAttempts returns the caller's attempt history, newest first.
func (h *QuizHandler) ListMyAttempts(c *gin.Context) {
	caller, _ := callerFrom(c)

	attempts, err := h.content.ListAttemptsByUser(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}
