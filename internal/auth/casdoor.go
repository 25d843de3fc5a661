package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/google/uuid"

	"github.com/edu-platform/backend/internal/config"
)

// newAccountWindow bounds how recently a Casdoor user must have been
// created for a federated sign-in to count as a first login. Casdoor
// does not expose an explicit first-login flag.
const newAccountWindow = time.Minute

// CasdoorProvider implements Provider against a Casdoor deployment.
type CasdoorProvider struct {
	client *casdoorsdk.Client
	org    string
	app    string
	hub    *changeHub
	logger *slog.Logger
}

func NewCasdoorProvider(cfg config.CasdoorConfig, logger *slog.Logger) *CasdoorProvider {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)

	return &CasdoorProvider{
		client: client,
		org:    cfg.Organization,
		app:    cfg.Application,
		hub:    newChangeHub(),
		logger: logger,
	}
}

func (p *CasdoorProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	user, err := p.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("auth provider lookup failed: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	user.Password = password
	ok, err := p.client.CheckUserPassword(user)
	if err != nil {
		p.logger.Warn("Password check against auth provider failed", "error", err)
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	identity := &Identity{ID: user.Id, Email: user.Email}
	p.hub.Publish(identity)
	return identity, nil
}

func (p *CasdoorProvider) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	existing, err := p.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("auth provider lookup failed: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	user := &casdoorsdk.User{
		Owner:             p.org,
		Name:              email,
		Id:                uuid.NewString(),
		Email:             email,
		Password:          password,
		CreatedTime:       time.Now().Format(time.RFC3339),
		SignupApplication: p.app,
	}

	ok, err := p.client.AddUser(user)
	if err != nil {
		return nil, fmt.Errorf("auth provider signup failed: %w", err)
	}
	if !ok {
		return nil, ErrEmailInUse
	}

	identity := &Identity{ID: user.Id, Email: user.Email}
	p.hub.Publish(identity)
	return identity, nil
}

func (p *CasdoorProvider) FederatedSignIn(ctx context.Context, rawToken string) (*Identity, bool, error) {
	claims, err := p.client.ParseJwtToken(rawToken)
	if err != nil {
		return nil, false, ErrInvalidToken
	}

	identity := &Identity{ID: claims.User.Id, Email: claims.User.Email}

	isNew := false
	if created, err := time.Parse(time.RFC3339, claims.User.CreatedTime); err == nil {
		isNew = time.Since(created) < newAccountWindow
	}

	p.hub.Publish(identity)
	return identity, isNew, nil
}

func (p *CasdoorProvider) SignOut(ctx context.Context, identityID string) error {
	p.hub.Publish(nil)
	return nil
}

func (p *CasdoorProvider) Subscribe(fn func(*Identity)) func() {
	return p.hub.Subscribe(fn)
}
