package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edu-platform/backend/internal/services"
	"github.com/edu-platform/backend/internal/utils"
)

const recentAttemptsLimit = 50

type DashboardHandler struct {
	content services.ContentService
	logger  utils.Logger
}

func NewDashboardHandler(content services.ContentService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{content: content, logger: logger}
}

// Home is the public landing page.
func (h *DashboardHandler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":      "home",
		"login":     "/auth/login",
		"dashboard": "/dashboard",
	})
}

// Student sees every course plus their own attempt history.
func (h *DashboardHandler) Student(c *gin.Context) {
	caller, _ := callerFrom(c)

	courses, err := h.content.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	attempts, err := h.content.ListAttemptsByUser(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":     "student",
		"courses":  courses,
		"attempts": attempts,
	})
}

// Teacher sees only the courses they own.
func (h *DashboardHandler) Teacher(c *gin.Context) {
	caller, _ := callerFrom(c)

	courses, err := h.content.ListCoursesByOwner(c.Request.Context(), caller.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":    "teacher",
		"courses": courses,
	})
}

// Parent gets a read-only course catalogue.
func (h *DashboardHandler) Parent(c *gin.Context) {
	courses, err := h.content.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":    "parent",
		"courses": courses,
	})
}

// Admin sees all profiles, all courses and recent attempts.
func (h *DashboardHandler) Admin(c *gin.Context) {
	caller, _ := callerFrom(c)

	profiles, err := h.content.ListProfiles(c.Request.Context(), caller)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	courses, err := h.content.ListCourses(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	attempts, err := h.content.ListRecentAttempts(c.Request.Context(), recentAttemptsLimit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":     "admin",
		"profiles": profiles,
		"courses":  courses,
		"attempts": attempts,
	})
}
