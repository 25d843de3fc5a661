package auth

import (
	"context"
	"errors"
	"sync"
)

// Identity is an authenticated principal issued by the external auth
// service. It is read-only to this system.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

var (
	// ErrInvalidCredentials is returned when email/password sign-in fails.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailInUse is returned when signing up with an already registered email.
	ErrEmailInUse = errors.New("email already in use")
	// ErrInvalidToken is returned when a federated token cannot be verified.
	ErrInvalidToken = errors.New("invalid identity token")
)

// Provider abstracts the external auth service. Implementations must
// broadcast every identity change (sign-in, sign-up, sign-out) to all
// subscribers; a nil identity means "signed out".
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	// FederatedSignIn verifies a provider-issued token from a federated
	// flow. The boolean reports whether the account was just created.
	FederatedSignIn(ctx context.Context, rawToken string) (*Identity, bool, error)
	SignOut(ctx context.Context, identityID string) error
	// Subscribe registers an identity-change callback. The current state
	// is delivered immediately; the returned function unsubscribes.
	Subscribe(fn func(*Identity)) func()
}

// changeHub implements the identity-change stream shared by provider
// implementations. Subscribers receive the current state on subscribe,
// then every subsequent change.
type changeHub struct {
	mu      sync.Mutex
	nextID  int
	current *Identity
	subs    map[int]func(*Identity)
}

func newChangeHub() *changeHub {
	return &changeHub{subs: make(map[int]func(*Identity))}
}

func (h *changeHub) Subscribe(fn func(*Identity)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn
	current := h.current
	h.mu.Unlock()

	// Mirror the provider's stream contract: the first event fires
	// immediately with the current state, including "no identity".
	fn(current)

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

func (h *changeHub) Publish(identity *Identity) {
	h.mu.Lock()
	h.current = identity
	fns := make([]func(*Identity), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}
