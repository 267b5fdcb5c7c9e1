package authn_test

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/tenantkit/tenantkit/pkg/authn"
	"github.com/tenantkit/tenantkit/pkg/identity"
)

type mockDetailsStorage struct {
	mock.Mock
}

func (m *mockDetailsStorage) GetUserByEmail(ctx context.Context, email string) (*identity.AuthenticatedUser, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*identity.AuthenticatedUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDetailsStorage) ListTenantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, userID)
	if ids := args.Get(0); ids != nil {
		return ids.([]uuid.UUID), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDetailsStorage) ListRoles(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID, tenantID)
	if roles := args.Get(0); roles != nil {
		return roles.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPasswordStorage struct {
	mock.Mock
}

func (m *mockPasswordStorage) VerifyPassword(ctx context.Context, email, password string) (bool, error) {
	args := m.Called(ctx, email, password)
	return args.Bool(0), args.Error(1)
}

type mockAPIKeyStorage struct {
	mock.Mock
}

func (m *mockAPIKeyStorage) FindTenantIDByAPIKey(ctx context.Context, key string) (uuid.UUID, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

type mockAPIKeyAdminStorage struct {
	mock.Mock
}

func (m *mockAPIKeyAdminStorage) GetAPIKeyByTenant(ctx context.Context, tenantID uuid.UUID) (*authn.TenantAPIKey, error) {
	args := m.Called(ctx, tenantID)
	if k := args.Get(0); k != nil {
		return k.(*authn.TenantAPIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPIKeyAdminStorage) InsertAPIKey(ctx context.Context, key string, tenantID uuid.UUID) (*authn.TenantAPIKey, error) {
	args := m.Called(ctx, key, tenantID)
	if k := args.Get(0); k != nil {
		return k.(*authn.TenantAPIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPIKeyAdminStorage) DeleteAPIKeysByTenant(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

// memoryKeyCache is a map-backed KeyCache for exercising cache interplay
// without Redis.
type memoryKeyCache struct {
	mu      sync.Mutex
	entries map[string]uuid.UUID
}

func newMemoryKeyCache() *memoryKeyCache {
	return &memoryKeyCache{entries: make(map[string]uuid.UUID)}
}

func (c *memoryKeyCache) Get(ctx context.Context, key string) (uuid.UUID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.entries[key]
	return id, ok
}

func (c *memoryKeyCache) Set(ctx context.Context, key string, tenantID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = tenantID
	return nil
}

func (c *memoryKeyCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
