package authn

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tenantkit/tenantkit/pkg/identity"
)

// Details is everything needed to build an authentication token for a user in
// one specific tenant.
type Details struct {
	User        identity.AuthenticatedUser
	Tenant      identity.AuthenticatedTenant
	Authorities []string // ROLE_ prefixed
}

// DetailsLoader resolves a user's tenant and role set at login, OAuth2
// callback and tenant-switch time.
type DetailsLoader struct {
	storage DetailsStorage
}

// NewDetailsLoader creates a loader over the given storage.
func NewDetailsLoader(storage DetailsStorage) *DetailsLoader {
	return &DetailsLoader{storage: storage}
}

// Load looks up the user by email, picks a tenant and loads the role set for
// that exact membership.
//
// When desiredTenantID is nil the first tenant by membership insertion order
// is used, so repeated calls against the same data pick the same tenant.
// Returns ErrUserNotFound, ErrNoTenantFound or ErrNoRolesFound respectively
// when a step comes up empty; an empty role set is rejected rather than
// returned, a membership must always carry at least one role.
func (l *DetailsLoader) Load(ctx context.Context, email string, desiredTenantID *uuid.UUID) (*Details, error) {
	user, err := l.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load user by email: %w", err)
	}

	var tenantID uuid.UUID
	if desiredTenantID != nil {
		tenantID = *desiredTenantID
	} else {
		tenantIDs, err := l.storage.ListTenantIDs(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("list tenants of user: %w", err)
		}
		if len(tenantIDs) == 0 {
			return nil, ErrNoTenantFound
		}
		tenantID = tenantIDs[0]
	}

	roles, err := l.storage.ListRoles(ctx, user.ID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list roles of user in tenant: %w", err)
	}
	if len(roles) == 0 {
		return nil, ErrNoRolesFound
	}

	authorities := make([]string, len(roles))
	for i, role := range roles {
		authorities[i] = identity.RolePrefix + role
	}

	return &Details{
		User:        *user,
		Tenant:      identity.AuthenticatedTenant{ID: tenantID},
		Authorities: authorities,
	}, nil
}
