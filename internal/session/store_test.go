package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"gorm.io/gorm"

	"github.com/edu-platform/backend/internal/auth"
	"github.com/edu-platform/backend/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubProvider lets tests drive the identity-change stream by hand.
type stubProvider struct {
	fn func(*auth.Identity)
}

func (p *stubProvider) SignIn(context.Context, string, string) (*auth.Identity, error) {
	return nil, nil
}
func (p *stubProvider) SignUp(context.Context, string, string) (*auth.Identity, error) {
	return nil, nil
}
func (p *stubProvider) FederatedSignIn(context.Context, string) (*auth.Identity, bool, error) {
	return nil, false, nil
}
func (p *stubProvider) SignOut(context.Context, string) error { return nil }

func (p *stubProvider) Subscribe(fn func(*auth.Identity)) func() {
	p.fn = fn
	return func() { p.fn = nil }
}

func (p *stubProvider) emit(identity *auth.Identity) {
	if p.fn != nil {
		p.fn(identity)
	}
}

type stubProfileRepo struct {
	profiles map[string]*models.Profile
	err      error
}

func (r *stubProfileRepo) Create(_ context.Context, profile *models.Profile) error {
	r.profiles[profile.ID] = profile
	return nil
}

func (r *stubProfileRepo) GetByID(_ context.Context, id string) (*models.Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	profile, ok := r.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return profile, nil
}

func (r *stubProfileRepo) List(_ context.Context) ([]*models.Profile, error) {
	return nil, nil
}

func TestStore_LoadingUntilFirstEvent(t *testing.T) {
	provider := &stubProvider{}
	resolver := NewRoleResolver(&stubProfileRepo{profiles: map[string]*models.Profile{}}, nil, discardLogger())

	store := NewStore(provider, resolver, discardLogger())
	defer store.Close()

	snap := store.Snapshot()
	if !snap.Loading {
		t.Fatal("expected loading before first identity event")
	}

	// The first event, "no identity", ends the loading phase.
	provider.emit(nil)

	snap = store.Snapshot()
	if snap.Loading {
		t.Error("expected loading cleared after first event")
	}
	if snap.Identity != nil {
		t.Errorf("expected no identity, got %+v", snap.Identity)
	}
	if snap.Role != models.RoleUnresolved {
		t.Errorf("expected unresolved role, got %q", snap.Role)
	}
}

func TestStore_RoleMatchesProfile(t *testing.T) {
	provider := &stubProvider{}
	profiles := &stubProfileRepo{profiles: map[string]*models.Profile{
		"user-1": {ID: "user-1", Email: "t@example.com", Role: models.RoleTeacher},
	}}
	resolver := NewRoleResolver(profiles, nil, discardLogger())

	store := NewStore(provider, resolver, discardLogger())
	defer store.Close()

	provider.emit(&auth.Identity{ID: "user-1", Email: "t@example.com"})

	snap := store.Snapshot()
	if snap.Loading {
		t.Fatal("expected loading cleared")
	}
	if snap.Identity == nil || snap.Identity.ID != "user-1" {
		t.Fatalf("unexpected identity: %+v", snap.Identity)
	}
	if snap.Role != models.RoleTeacher {
		t.Errorf("expected teacher role, got %q", snap.Role)
	}
}

func TestStore_MissingProfileYieldsUnresolved(t *testing.T) {
	provider := &stubProvider{}
	resolver := NewRoleResolver(&stubProfileRepo{profiles: map[string]*models.Profile{}}, nil, discardLogger())

	store := NewStore(provider, resolver, discardLogger())
	defer store.Close()

	provider.emit(&auth.Identity{ID: "ghost"})

	snap := store.Snapshot()
	if snap.Identity == nil {
		t.Fatal("identity should be kept even without a profile")
	}
	if snap.Role != models.RoleUnresolved {
		t.Errorf("expected unresolved role, got %q", snap.Role)
	}
}

func TestStore_ResolveFailureYieldsUnresolved(t *testing.T) {
	provider := &stubProvider{}
	resolver := NewRoleResolver(&stubProfileRepo{err: errors.New("storage down")}, nil, discardLogger())

	store := NewStore(provider, resolver, discardLogger())
	defer store.Close()

	provider.emit(&auth.Identity{ID: "user-1"})

	snap := store.Snapshot()
	if snap.Loading {
		t.Error("resolution failure must still end loading")
	}
	if snap.Role != models.RoleUnresolved {
		t.Errorf("expected unresolved role, got %q", snap.Role)
	}
}

func TestStore_SignOutClearsIdentity(t *testing.T) {
	provider := &stubProvider{}
	profiles := &stubProfileRepo{profiles: map[string]*models.Profile{
		"user-1": {ID: "user-1", Role: models.RoleStudent},
	}}
	resolver := NewRoleResolver(profiles, nil, discardLogger())

	store := NewStore(provider, resolver, discardLogger())
	defer store.Close()

	provider.emit(&auth.Identity{ID: "user-1"})
	provider.emit(nil)

	snap := store.Snapshot()
	if snap.Identity != nil {
		t.Errorf("expected identity cleared, got %+v", snap.Identity)
	}
	if snap.Role != models.RoleUnresolved {
		t.Errorf("expected unresolved role after sign-out, got %q", snap.Role)
	}
}

func TestRoleResolver_MissingProfileError(t *testing.T) {
	resolver := NewRoleResolver(&stubProfileRepo{profiles: map[string]*models.Profile{}}, nil, discardLogger())

	role, err := resolver.Resolve(context.Background(), "ghost")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if role != models.RoleUnresolved {
		t.Errorf("expected unresolved role, got %q", role)
	}
}
