package authn

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tenantkit/tenantkit/pkg/identity"
)

// PasswordAuthenticator handles session/password login.
type PasswordAuthenticator struct {
	storage PasswordStorage
	loader  *DetailsLoader
}

// NewPasswordAuthenticator creates a password authenticator.
func NewPasswordAuthenticator(storage PasswordStorage, loader *DetailsLoader) *PasswordAuthenticator {
	return &PasswordAuthenticator{storage: storage, loader: loader}
}

// Authenticate verifies the credentials and builds a password token for the
// user's default tenant. Returns ErrBadCredentials on a failed verification
// and ErrEmailNotVerified for accounts that never confirmed their address.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, password string) (*identity.PasswordToken, error) {
	if password == "" {
		return nil, ErrBadCredentials
	}

	ok, err := a.storage.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, ErrBadCredentials
	}

	return a.buildToken(ctx, email, nil)
}

// Reauthenticate rebuilds a password token for an already verified user with
// the tenant pinned. Used by the tenant switch, which has checked membership
// beforehand; credentials are not verified again.
func (a *PasswordAuthenticator) Reauthenticate(ctx context.Context, email string, desiredTenantID uuid.UUID) (*identity.PasswordToken, error) {
	return a.buildToken(ctx, email, &desiredTenantID)
}

func (a *PasswordAuthenticator) buildToken(ctx context.Context, email string, desiredTenantID *uuid.UUID) (*identity.PasswordToken, error) {
	details, err := a.loader.Load(ctx, email, desiredTenantID)
	if err != nil {
		return nil, err
	}
	if !details.User.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &identity.PasswordToken{
		User:        details.User,
		Tenant:      details.Tenant,
		Authorities: details.Authorities,
	}, nil
}
