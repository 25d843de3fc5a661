package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/edu-platform/backend/internal/cache"
	"github.com/edu-platform/backend/internal/models"
	"github.com/edu-platform/backend/internal/repositories"
)

// ErrProfileNotFound signals the anomaly of an authenticated identity
// with no Profile record. Profile creation is tied to account creation,
// so this should not occur in correct operation.
var ErrProfileNotFound = errors.New("profile not found for identity")

const (
	roleCachePrefix = "profile:role:"
	roleCacheTTL    = time.Minute
)

// RoleResolver maps an identity id to a role via a point read of the
// Profile record, with an optional read-through cache in front.
type RoleResolver struct {
	profiles repositories.ProfileRepository
	cache    cache.CacheService
	logger   *slog.Logger
}

func NewRoleResolver(profiles repositories.ProfileRepository, cacheService cache.CacheService, logger *slog.Logger) *RoleResolver {
	return &RoleResolver{
		profiles: profiles,
		cache:    cacheService,
		logger:   logger,
	}
}

// Resolve returns the role recorded for the identity. A missing Profile
// yields ErrProfileNotFound and is logged as anomalous, never silently
// defaulted.
func (r *RoleResolver) Resolve(ctx context.Context, identityID string) (models.UserRole, error) {
	if r.cache != nil {
		var cached models.UserRole
		if err := r.cache.Get(ctx, roleCachePrefix+identityID, &cached); err == nil && cached.Valid() {
			return cached, nil
		}
	}

	profile, err := r.profiles.GetByID(ctx, identityID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			r.logger.Warn("No profile for authenticated identity",
				"identity_id", identityID)
			return models.RoleUnresolved, ErrProfileNotFound
		}
		return models.RoleUnresolved, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, roleCachePrefix+identityID, profile.Role, roleCacheTTL); err != nil {
			r.logger.Warn("Failed to cache resolved role",
				"identity_id", identityID, "error", err)
		}
	}

	return profile.Role, nil
}
