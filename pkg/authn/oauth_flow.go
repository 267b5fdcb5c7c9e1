package authn

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/tenantkit/tenantkit/pkg/identity"
)

// OAuth2Flow drives one provider's federated login end to end: Start issues
// the authorization redirect URL with a one-time state token, Callback burns
// the state, exchanges the code and resolves the provider identity into a
// tenant-scoped token.
type OAuth2Flow struct {
	adapter  ProviderAdapter
	provider *OAuth2Provider
	states   StateStore
	stateTTL time.Duration
}

// FlowOption configures an OAuth2 flow.
type FlowOption func(*OAuth2Flow)

// WithStateTTL bounds how long an issued state token stays redeemable.
func WithStateTTL(ttl time.Duration) FlowOption {
	return func(f *OAuth2Flow) {
		if ttl > 0 {
			f.stateTTL = ttl
		}
	}
}

// NewOAuth2Flow creates a flow for one provider adapter. The default state
// TTL is ten minutes.
func NewOAuth2Flow(adapter ProviderAdapter, provider *OAuth2Provider, states StateStore, opts ...FlowOption) *OAuth2Flow {
	f := &OAuth2Flow{
		adapter:  adapter,
		provider: provider,
		states:   states,
		stateTTL: 10 * time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ProviderID returns the adapter's registration id, e.g. "google".
func (f *OAuth2Flow) ProviderID() string {
	return f.adapter.ProviderID()
}

// Start generates and stores a state token and returns the provider
// authorization URL to redirect the user to.
func (f *OAuth2Flow) Start(ctx context.Context) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := f.states.Store(ctx, state, time.Now().Add(f.stateTTL)); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}

	url, err := f.adapter.AuthURL(state)
	if err != nil {
		return "", fmt.Errorf("build auth url: %w", err)
	}
	return url, nil
}

// Callback completes the login after the provider redirects back. The state
// is consumed first, so a forged or replayed callback fails before any code
// exchange. Returns ErrInvalidState, ErrInvalidCode,
// ErrOAuth2EmailNotProvided or the loader errors for an unmatched email.
func (f *OAuth2Flow) Callback(ctx context.Context, code, state string) (*identity.OAuth2Token, error) {
	if err := f.states.Consume(ctx, state); err != nil {
		if errors.Is(err, ErrInvalidState) {
			return nil, err
		}
		return nil, fmt.Errorf("validate state: %w", err)
	}

	profile, err := f.adapter.ResolveProfile(ctx, code)
	if err != nil {
		if errors.Is(err, ErrInvalidCode) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve provider profile: %w", err)
	}

	pending := &identity.OAuth2PendingToken{
		Provider: f.adapter.ProviderID(),
		Subject:  profile.Subject,
	}
	return f.provider.BuildTenantToken(ctx, pending, profile.Email, nil)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
