package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/edu-platform/backend/internal/auth"
	"github.com/edu-platform/backend/internal/models"
)

// Snapshot is the session state visible to guards and pages: the
// current identity (nil when signed out), its resolved role
// (RoleUnresolved when missing or not yet known) and whether the first
// identity event is still being processed.
type Snapshot struct {
	Identity *auth.Identity
	Role     models.UserRole
	Loading  bool
}

// Store wraps the auth provider's identity-change stream and keeps the
// current identity together with its resolved role. Loading stays true
// until the first change event, including "no identity", has been
// fully processed, profile fetch included.
type Store struct {
	mu          sync.Mutex
	snap        Snapshot
	resolver    *RoleResolver
	unsubscribe func()
	logger      *slog.Logger
}

func NewStore(provider auth.Provider, resolver *RoleResolver, logger *slog.Logger) *Store {
	s := &Store{
		snap:     Snapshot{Loading: true},
		resolver: resolver,
		logger:   logger,
	}
	s.unsubscribe = provider.Subscribe(s.onChange)
	return s
}

func (s *Store) onChange(identity *auth.Identity) {
	var role models.UserRole

	if identity != nil {
		resolved, err := s.resolver.Resolve(context.Background(), identity.ID)
		if err != nil {
			// Unresolved role: downstream guards treat the identity as
			// authorized for nothing role-gated. Must not break
			// navigation.
			s.logger.Warn("Role resolution failed, treating as unresolved",
				"identity_id", identity.ID, "error", err)
			resolved = models.RoleUnresolved
		}
		role = resolved
	}

	s.mu.Lock()
	s.snap = Snapshot{Identity: identity, Role: role, Loading: false}
	s.mu.Unlock()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Close releases the identity-change subscription.
func (s *Store) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}
