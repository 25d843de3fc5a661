package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edu-platform/backend/internal/auth"
	apperrors "github.com/edu-platform/backend/internal/errors"
	"github.com/edu-platform/backend/internal/guard"
	"github.com/edu-platform/backend/internal/services"
	"github.com/edu-platform/backend/internal/session"
	"github.com/edu-platform/backend/internal/utils"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Back    string      `json:"back,omitempty"`
}

// SuccessResponse represents a success response.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// HealthCheck responds to liveness probes.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// callerFrom builds the service-layer caller from the request session.
func callerFrom(c *gin.Context) (services.Caller, *auth.Identity) {
	snap := guard.SnapshotFrom(c)
	if snap.Identity == nil {
		return services.Caller{}, nil
	}
	return services.Caller{ID: snap.Identity.ID, Role: snap.Role}, snap.Identity
}

// respondError maps service errors onto the response taxonomy: auth
// failures are user-facing and retryable, lookup anomalies route to a
// safe page without leaking detail, write failures surface inline, and
// not-found renders a terminal state with a way back.
func respondError(c *gin.Context, logger utils.Logger, err error) {
	var validationErrs apperrors.ValidationErrors
	switch {
	case errors.As(err, &validationErrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed.",
			Details: validationErrs,
		})

	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid email or password."})

	case errors.Is(err, auth.ErrEmailInUse):
		c.JSON(http.StatusConflict, ErrorResponse{Message: "This email is already in use."})

	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrSessionNotFound):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required."})

	case errors.Is(err, session.ErrProfileNotFound):
		// Anomaly: authenticated identity without a profile. Logged at
		// resolution time; the caller only learns it is not authorized.
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Not authorized.", Back: guard.PathHome})

	case services.IsForbidden(err):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: "Not authorized.", Back: guard.PathDispatch})

	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Not found.", Back: guard.PathDispatch})

	case errors.Is(err, services.ErrWriteFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: "Failed to save. Please try again."})

	default:
		logger.LogError(err, "Unhandled error", "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Internal server error."})
	}
}
