package authn

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/tenantkit/tenantkit/pkg/identity"
)

// SwitchResult reports the outcome of a tenant switch.
type SwitchResult int

const (
	// SwitchNotAllowed means the user does not belong to the desired tenant.
	// No side effect took place.
	SwitchNotAllowed SwitchResult = iota
	// SwitchChanged means the active token now carries the desired tenant.
	SwitchChanged
)

// TenantSwitcher re-derives the active token for a different tenant the
// current user belongs to.
type TenantSwitcher struct {
	storage DetailsStorage
	loader  *DetailsLoader
}

// NewTenantSwitcher creates a tenant switcher.
func NewTenantSwitcher(storage DetailsStorage, loader *DetailsLoader) *TenantSwitcher {
	return &TenantSwitcher{storage: storage, loader: loader}
}

// Switch swaps the active token for one carrying desiredTenantID.
//
// Membership is verified first: switching to a tenant the user does not
// belong to returns SwitchNotAllowed and leaves the active token untouched.
// The replacement token is of the same variant family as the current one and
// is installed with a single holder swap, so a concurrent reader on the same
// logical session never observes a half-updated identity.
//
// Panics with identity.ErrUnknownAuthenticationToken when the active token is
// neither password nor OAuth2 based; those are the only re-derivable families.
func (s *TenantSwitcher) Switch(ctx context.Context, desiredTenantID uuid.UUID) (SwitchResult, error) {
	user, err := identity.CurrentUser(ctx)
	if err != nil {
		return SwitchNotAllowed, err
	}

	tenantIDs, err := s.storage.ListTenantIDs(ctx, user.ID)
	if err != nil {
		return SwitchNotAllowed, fmt.Errorf("list tenants of user: %w", err)
	}
	if !slices.Contains(tenantIDs, desiredTenantID) {
		return SwitchNotAllowed, nil
	}

	details, err := s.loader.Load(ctx, user.Email, &desiredTenantID)
	if err != nil {
		return SwitchNotAllowed, err
	}

	holder, ok := identity.HolderFromContext(ctx)
	if !ok {
		return SwitchNotAllowed, identity.ErrNoAuthenticatedUser
	}

	switch tok := holder.Token().(type) {
	case *identity.PasswordToken:
		holder.Replace(&identity.PasswordToken{
			User:        details.User,
			Tenant:      details.Tenant,
			Authorities: details.Authorities,
		})
	case *identity.OAuth2Token:
		holder.Replace(&identity.OAuth2Token{
			Provider:    tok.Provider,
			Subject:     tok.Subject,
			User:        details.User,
			Tenant:      details.Tenant,
			Authorities: details.Authorities,
		})
	default:
		panic(identity.ErrUnknownAuthenticationToken)
	}

	return SwitchChanged, nil
}
