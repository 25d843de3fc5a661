package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/services"
	"github.com/edu-platform/backend/internal/utils"
)

type CourseHandler struct {
	content services.ContentService
	logger  utils.Logger
}

func NewCourseHandler(content services.ContentService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{content: content, logger: logger}
}

// CreateCourse creates a course owned by the calling teacher.
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	caller, _ := callerFrom(c)

	var req services.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body."})
		return
	}

	course, err := h.content.CreateCourse(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// ListCourses lists all courses, or only the caller's own with ?mine=true.
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var (
		courses []*models.Course
		err     error
	)
	if c.Query("mine") == "true" {
		caller, _ := callerFrom(c)
		courses, err = h.content.ListCoursesByOwner(c.Request.Context(), caller.ID)
	} else {
		courses, err = h.content.ListCourses(c.Request.Context())
	}
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// GetCourse returns a course with its lessons and, when one exists, the
// id of its quiz.
func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID := c.Param("id")

	course, err := h.content.GetCourse(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	lessons, err := h.content.ListLessons(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := gin.H{
		"course":  course,
		"lessons": lessons,
	}

	quiz, err := h.content.QuizByCourse(c.Request.Context(), courseID)
	if err == nil {
		resp["quizId"] = quiz.ID
	} else if !services.IsNotFound(err) {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateLesson appends a lesson to a course the caller owns.
func (h *CourseHandler) CreateLesson(c *gin.Context) {
	caller, _ := callerFrom(c)
	courseID := c.Param("id")

	var req services.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body."})
		return
	}

	lesson, err := h.content.CreateLesson(c.Request.Context(), caller, courseID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, lesson)
}

// ListLessons returns the ordered lessons of a course.
func (h *CourseHandler) ListLessons(c *gin.Context) {
	courseID := c.Param("id")

	if _, err := h.content.GetCourse(c.Request.Context(), courseID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	lessons, err := h.content.ListLessons(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}

// StreamLessons streams the ordered lesson list over SSE. The first
// event carries the current list; every change to the course's lessons
// pushes a fresh one. The stream ends when the client disconnects.
func (h *CourseHandler) StreamLessons(c *gin.Context) {
	courseID := c.Param("id")

	if _, err := h.content.GetCourse(c.Request.Context(), courseID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	updates, err := h.content.SubscribeLessons(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case lessons, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("lessons", lessons)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
