package authn

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"

	"github.com/tenantkit/tenantkit/pkg/identity"
)

// Roles allowed to manage the tenant's API key.
const (
	RoleOwner = "OWNER"
	RoleAdmin = "ADMIN"
)

const apiKeyLength = 48

// KeyCache caches API key to tenant resolutions to keep the hot path off the
// database. Implementations must treat entries as invalidatable at any time.
type KeyCache interface {
	Get(ctx context.Context, key string) (uuid.UUID, bool)
	Set(ctx context.Context, key string, tenantID uuid.UUID) error
	Delete(ctx context.Context, key string) error
}

// NoOpKeyCache disables caching, useful for testing or when caching is unwanted.
type NoOpKeyCache struct{}

func (NoOpKeyCache) Get(ctx context.Context, key string) (uuid.UUID, bool) { return uuid.UUID{}, false }
func (NoOpKeyCache) Set(ctx context.Context, key string, tenantID uuid.UUID) error { return nil }
func (NoOpKeyCache) Delete(ctx context.Context, key string) error                  { return nil }

// APIKeyAuthenticator resolves inbound API keys to tenant tokens. An API key
// authenticates a tenant, not a person, so the resulting token has no user
// and no authorities.
type APIKeyAuthenticator struct {
	storage APIKeyStorage
	cache   KeyCache
}

// NewAPIKeyAuthenticator creates an API key authenticator. A nil cache
// disables caching.
func NewAPIKeyAuthenticator(storage APIKeyStorage, cache KeyCache) *APIKeyAuthenticator {
	if cache == nil {
		cache = NoOpKeyCache{}
	}
	return &APIKeyAuthenticator{storage: storage, cache: cache}
}

// Authenticate resolves the key to its owning tenant. Returns ErrInvalidAPIKey
// for empty or unrecognized keys.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, key string) (*identity.APIKeyToken, error) {
	if key == "" {
		return nil, ErrInvalidAPIKey
	}

	if tenantID, ok := a.cache.Get(ctx, key); ok {
		return a.token(tenantID, key), nil
	}

	tenantID, err := a.storage.FindTenantIDByAPIKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrInvalidAPIKey) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve api key: %w", err)
	}

	_ = a.cache.Set(ctx, key, tenantID) // cache miss is never fatal

	return a.token(tenantID, key), nil
}

func (a *APIKeyAuthenticator) token(tenantID uuid.UUID, key string) *identity.APIKeyToken {
	digest := sha256.Sum256([]byte(key))
	return &identity.APIKeyToken{
		Tenant:    identity.AuthenticatedTenant{ID: tenantID},
		KeyDigest: hex.EncodeToString(digest[:]),
	}
}

// APIKeyService manages the current tenant's API key. Both operations are
// gated to OWNER and ADMIN roles.
type APIKeyService struct {
	storage APIKeyAdminStorage
	cache   KeyCache
}

// NewAPIKeyService creates an API key management service. A nil cache
// disables invalidation.
func NewAPIKeyService(storage APIKeyAdminStorage, cache KeyCache) *APIKeyService {
	if cache == nil {
		cache = NoOpKeyCache{}
	}
	return &APIKeyService{storage: storage, cache: cache}
}

// GetOrCreate returns the current tenant's API key, creating one if none
// exists yet.
func (s *APIKeyService) GetOrCreate(ctx context.Context) (*TenantAPIKey, error) {
	tenantID, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.storage.GetAPIKeyByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load api key: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	key, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}
	return s.storage.InsertAPIKey(ctx, key, tenantID)
}

// Reset deletes the tenant's key and issues a fresh one. The old key stops
// working immediately.
func (s *APIKeyService) Reset(ctx context.Context) (*TenantAPIKey, error) {
	tenantID, err := s.authorize(ctx)
	if err != nil {
		return nil, err
	}

	// The old key must be looked up before deletion so its cache entry can be
	// dropped; a failed lookup aborts the reset rather than leaving a revoked
	// key resolvable until the cache TTL expires.
	old, err := s.storage.GetAPIKeyByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load api key: %w", err)
	}
	if old != nil {
		_ = s.cache.Delete(ctx, old.Key)
	}
	if err := s.storage.DeleteAPIKeysByTenant(ctx, tenantID); err != nil {
		return nil, fmt.Errorf("delete api key: %w", err)
	}

	key, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}
	return s.storage.InsertAPIKey(ctx, key, tenantID)
}

func (s *APIKeyService) authorize(ctx context.Context) (uuid.UUID, error) {
	tenant, ok := identity.CurrentTenant(ctx)
	if !ok {
		return uuid.UUID{}, ErrNoAuthenticatedTenant
	}
	if !identity.HasRole(ctx, RoleOwner) && !identity.HasRole(ctx, RoleAdmin) {
		return uuid.UUID{}, ErrOperationDenied
	}
	return tenant.ID, nil
}

const apiKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func generateAPIKey() (string, error) {
	buf := make([]byte, apiKeyLength)
	alphabetLen := big.NewInt(int64(len(apiKeyAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		buf[i] = apiKeyAlphabet[n.Int64()]
	}
	return string(buf), nil
}
