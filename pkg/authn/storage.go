package authn

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tenantkit/tenantkit/pkg/identity"
)

// DetailsStorage provides the user and membership reads the loader needs.
type DetailsStorage interface {
	// GetUserByEmail returns ErrUserNotFound when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*identity.AuthenticatedUser, error)

	// ListTenantIDs returns the tenants the user belongs to, ordered by
	// membership insertion so the default-tenant pick is deterministic.
	ListTenantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)

	// ListRoles returns the role names (unprefixed) granted to the user in
	// the given tenant.
	ListRoles(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error)
}

// PasswordStorage verifies credentials. Hash comparison is delegated to a
// database routine, the application never sees password hashes.
type PasswordStorage interface {
	VerifyPassword(ctx context.Context, email, password string) (bool, error)
}

// APIKeyStorage resolves inbound API keys to tenants.
type APIKeyStorage interface {
	// FindTenantIDByAPIKey returns ErrInvalidAPIKey when no tenant owns the key.
	FindTenantIDByAPIKey(ctx context.Context, key string) (uuid.UUID, error)
}

// TenantAPIKey is a tenant's API key record.
type TenantAPIKey struct {
	ID        uuid.UUID
	Key       string
	TenantID  uuid.UUID
	CreatedAt time.Time
}

// APIKeyAdminStorage manages API key records for APIKeyService.
type APIKeyAdminStorage interface {
	// GetAPIKeyByTenant returns nil, nil when the tenant has no key yet.
	GetAPIKeyByTenant(ctx context.Context, tenantID uuid.UUID) (*TenantAPIKey, error)
	InsertAPIKey(ctx context.Context, key string, tenantID uuid.UUID) (*TenantAPIKey, error)
	DeleteAPIKeysByTenant(ctx context.Context, tenantID uuid.UUID) error
}
