package authn

import (
	"context"

	"github.com/google/uuid"

	"github.com/tenantkit/tenantkit/pkg/identity"
)

// ProviderProfile is the minimal profile an OAuth2 provider adapter resolves
// for a completed authorization code exchange.
type ProviderProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
}

// ProviderAdapter abstracts one OAuth2/OIDC provider. Adapters own the
// provider-specific endpoints and claim shapes; the core flow only sees the
// resolved profile.
type ProviderAdapter interface {
	ProviderID() string
	AuthURL(state string) (string, error)
	ResolveProfile(ctx context.Context, code string) (ProviderProfile, error)
}

// OAuth2Provider completes federated logins: it turns a pending OAuth2 token
// plus the provider-reported email into a fully resolved tenant token.
type OAuth2Provider struct {
	loader *DetailsLoader
}

// NewOAuth2Provider creates an OAuth2 token provider over the given loader.
func NewOAuth2Provider(loader *DetailsLoader) *OAuth2Provider {
	return &OAuth2Provider{loader: loader}
}

// BuildTenantToken matches the provider email to a local user and builds the
// replacement token carrying the resolved tenant and role set. An empty email
// is fatal for the login attempt: without it the federated identity cannot be
// matched to anyone.
func (p *OAuth2Provider) BuildTenantToken(ctx context.Context, pending *identity.OAuth2PendingToken, email string, desiredTenantID *uuid.UUID) (*identity.OAuth2Token, error) {
	if email == "" {
		return nil, ErrOAuth2EmailNotProvided
	}

	details, err := p.loader.Load(ctx, email, desiredTenantID)
	if err != nil {
		return nil, err
	}

	return &identity.OAuth2Token{
		Provider:    pending.Provider,
		Subject:     pending.Subject,
		User:        details.User,
		Tenant:      details.Tenant,
		Authorities: details.Authorities,
	}, nil
}
