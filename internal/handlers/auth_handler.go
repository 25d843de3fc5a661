package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edu-platform/backend/internal/auth"
	"github.com/edu-platform/backend/internal/guard"
	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/repositories"
	"github.com/edu-platform/backend/internal/session"
	"github.com/edu-platform/backend/internal/utils"
)

type AuthHandler struct {
	provider auth.Provider
	tokens   *auth.TokenStore
	profiles repositories.ProfileRepository
	resolver *session.RoleResolver
	logger   utils.Logger
	validate *utils.Validator
}

func NewAuthHandler(
	provider auth.Provider,
	tokens *auth.TokenStore,
	profiles repositories.ProfileRepository,
	resolver *session.RoleResolver,
	logger utils.Logger,
	validate *utils.Validator,
) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		tokens:   tokens,
		profiles: profiles,
		resolver: resolver,
		logger:   logger,
		validate: validate,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type federatedRequest struct {
	Token string `json:"token" validate:"required"`
}

type sessionResponse struct {
	Token    string          `json:"token"`
	Identity *auth.Identity  `json:"identity"`
	Role     models.UserRole `json:"role"`
}

// Signup registers a new account with the auth provider and creates its
// Profile with the default self-service role.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body."})
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	identity, err := h.provider.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	profile := &models.Profile{
		ID:        identity.ID,
		Email:     identity.Email,
		Role:      models.RoleStudent,
		CreatedAt: time.Now(),
	}
	if err := h.profiles.Create(c.Request.Context(), profile); err != nil {
		// The account exists at the provider but has no role record;
		// the session store will flag it as unresolved until repaired.
		h.logger.LogError(err, "Profile creation failed after signup",
			"identity_id", identity.ID)
		respondError(c, h.logger, err)
		return
	}

	token, err := h.tokens.Issue(c.Request.Context(), identity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse{
		Token:    token,
		Identity: identity,
		Role:     profile.Role,
	})
}

// Login signs in with email and password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body."})
		return
	}
	if err := h.validate.Validate(&req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	identity, err := h.provider.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.issueSession(c, identity)
}

// Federated signs in with a provider-issued token from a federated
// flow; a first login provisions the Profile with the default role.
func (h *AuthHandler) Federated(c *gin.Context) {
	var req federatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body."})
		return
	}

	identity, isNew, err := h.provider.FederatedSignIn(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if isNew {
		h.ensureProfile(c, identity)
	} else if _, err := h.profiles.GetByID(c.Request.Context(), identity.ID); repositories.IsNotFoundError(err) {
		// Provider reported an existing account with no Profile yet.
		h.ensureProfile(c, identity)
	}

	h.issueSession(c, identity)
}

// Logout revokes the server session and signs out of the provider.
func (h *AuthHandler) Logout(c *gin.Context) {
	snap := guard.SnapshotFrom(c)
	if token := bearerToken(c); token != "" {
		if err := h.tokens.Revoke(c.Request.Context(), token); err != nil {
			h.logger.Warn("Failed to revoke session token", "error", err)
		}
	}
	if snap.Identity != nil {
		if err := h.provider.SignOut(c.Request.Context(), snap.Identity.ID); err != nil {
			h.logger.Warn("Provider sign-out failed", "error", err)
		}
	}
	c.Status(http.StatusNoContent)
}

// LoginPage is the login entry point for signed-out sessions; signed-in
// ones never reach it (RedirectAuthenticated fires first).
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":   "login",
		"signup": "/auth/signup",
	})
}

func (h *AuthHandler) issueSession(c *gin.Context, identity *auth.Identity) {
	token, err := h.tokens.Issue(c.Request.Context(), identity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	role, err := h.resolver.Resolve(c.Request.Context(), identity.ID)
	if err != nil {
		// Unresolved role still gets a session; guards keep it away
		// from role-gated pages.
		role = models.RoleUnresolved
	}

	c.JSON(http.StatusOK, sessionResponse{
		Token:    token,
		Identity: identity,
		Role:     role,
	})
}

func (h *AuthHandler) ensureProfile(c *gin.Context, identity *auth.Identity) {
	profile := &models.Profile{
		ID:        identity.ID,
		Email:     identity.Email,
		Role:      models.RoleStudent,
		CreatedAt: time.Now(),
	}
	if err := h.profiles.Create(c.Request.Context(), profile); err != nil {
		h.logger.LogError(err, "Profile provisioning failed on federated login",
			"identity_id", identity.ID)
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// NewSessionSnapshotFunc resolves per-request session snapshots from
// the bearer token. Resolution is synchronous, so a snapshot is never
// in the loading state here; the streaming session store covers the
// subscription path.
func NewSessionSnapshotFunc(tokens *auth.TokenStore, resolver *session.RoleResolver, logger utils.Logger) func(c *gin.Context) session.Snapshot {
	return func(c *gin.Context) session.Snapshot {
		token := bearerToken(c)
		if token == "" {
			return session.Snapshot{}
		}

		identity, err := tokens.Resolve(c.Request.Context(), token)
		if err != nil {
			if err != auth.ErrSessionNotFound {
				logger.Warn("Session token resolution failed", "error", err)
			}
			return session.Snapshot{}
		}

		role, err := resolver.Resolve(c.Request.Context(), identity.ID)
		if err != nil {
			role = models.RoleUnresolved
		}

		return session.Snapshot{Identity: identity, Role: role}
	}
}
