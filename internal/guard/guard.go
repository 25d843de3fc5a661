package guard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/session"
	"github.com/edu-platform/backend/internal/utils"
)

// Canonical entry points.
const (
	PathHome     = "/"
	PathLogin    = "/auth/login"
	PathDispatch = "/dashboard"
)

const snapshotKey = "session_snapshot"

// DashboardPathForRole maps a resolved role to its dashboard entry
// point. Unresolved roles map to the public home.
func DashboardPathForRole(role models.UserRole) string {
	switch role {
	case models.RoleStudent:
		return "/dashboard/student"
	case models.RoleTeacher:
		return "/dashboard/teacher"
	case models.RoleParent:
		return "/dashboard/parent"
	case models.RoleAdmin:
		return "/dashboard/admin"
	default:
		return PathHome
	}
}

// SnapshotFunc resolves the session snapshot for a request.
type SnapshotFunc func(c *gin.Context) session.Snapshot

// Guard gates role-gated routes on session state. It enforces both
// layers of the access model: the coarse redirects on the canonical
// entry points and the per-page role check.
type Guard struct {
	snapshot SnapshotFunc
	logger   utils.Logger
}

func New(snapshot SnapshotFunc, logger utils.Logger) *Guard {
	return &Guard{snapshot: snapshot, logger: logger}
}

// LoadSession resolves the snapshot once per request and stores it in
// the Gin context for downstream middleware and handlers.
func (g *Guard) LoadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(snapshotKey, g.snapshot(c))
		c.Next()
	}
}

// SnapshotFrom returns the snapshot placed by LoadSession.
func SnapshotFrom(c *gin.Context) session.Snapshot {
	if v, ok := c.Get(snapshotKey); ok {
		if snap, ok := v.(session.Snapshot); ok {
			return snap
		}
	}
	return session.Snapshot{}
}

// RequireIdentity protects a role-gated page: while the session is
// still loading nothing gated is served, and an absent identity is
// redirected to the login entry point.
func (g *Guard) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := SnapshotFrom(c)
		if snap.Loading {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "session loading"})
			return
		}
		if snap.Identity == nil {
			c.Redirect(http.StatusFound, PathLogin)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireRole is the per-page enforcement: a session whose role does
// not match is sent back to the dispatch entry point, which re-routes
// it correctly.
func (g *Guard) RequireRole(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := SnapshotFrom(c)
		if snap.Loading {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "session loading"})
			return
		}
		if snap.Identity == nil {
			c.Redirect(http.StatusFound, PathLogin)
			c.Abort()
			return
		}
		if snap.Role != role {
			g.logger.Info("Role mismatch on gated page",
				"identity_id", snap.Identity.ID,
				"have", string(snap.Role),
				"want", string(role),
				"path", c.Request.URL.Path)
			c.Redirect(http.StatusFound, PathDispatch)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RedirectAuthenticated sends an already signed-in session from the
// login entry point to the dispatch entry point.
func (g *Guard) RedirectAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := SnapshotFrom(c)
		if !snap.Loading && snap.Identity != nil {
			c.Redirect(http.StatusFound, PathDispatch)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Dispatch implements the role dispatch entry point: it resolves the
// session's role to the matching dashboard, unresolved roles to the
// public home, and missing identities to login.
func (g *Guard) Dispatch() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := SnapshotFrom(c)
		if snap.Loading {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "session loading"})
			return
		}
		if snap.Identity == nil {
			c.Redirect(http.StatusFound, PathLogin)
			c.Abort()
			return
		}
		c.Redirect(http.StatusFound, DashboardPathForRole(snap.Role))
		c.Abort()
	}
}

// Authenticate is the API-surface variant of RequireIdentity: JSON
// clients get status codes instead of redirects.
func (g *Guard) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := SnapshotFrom(c)
		if snap.Loading {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"message": "session loading"})
			return
		}
		if snap.Identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "authentication required"})
			return
		}
		c.Next()
	}
}
