package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkit/tenantkit/pkg/identity"
)

func testUser() identity.AuthenticatedUser {
	return identity.AuthenticatedUser{
		ID:            uuid.New(),
		Email:         "jane@example.com",
		Name:          "Jane",
		EmailVerified: true,
		CreatedAt:     time.Now(),
	}
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	user := testUser()
	tenant := identity.AuthenticatedTenant{ID: uuid.New()}

	tests := []struct {
		name     string
		token    identity.Token
		wantUser bool
	}{
		{"password token resolves user", &identity.PasswordToken{User: user, Tenant: tenant}, true},
		{"oauth2 token resolves user", &identity.OAuth2Token{Provider: "google", Subject: "sub", User: user, Tenant: tenant}, true},
		{"pending oauth2 token has no user", &identity.OAuth2PendingToken{Provider: "google", Subject: "sub"}, false},
		{"api key token has no user", &identity.APIKeyToken{Tenant: tenant}, false},
		{"anonymous token has no user", &identity.AnonymousToken{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := identity.WithToken(context.Background(), tt.token)
			got, err := identity.CurrentUser(ctx)
			if tt.wantUser {
				require.NoError(t, err)
				assert.Equal(t, user.ID, got.ID)
				assert.Equal(t, user.Email, got.Email)
			} else {
				require.ErrorIs(t, err, identity.ErrNoAuthenticatedUser)
				assert.Nil(t, got)
			}
		})
	}

	t.Run("empty context is anonymous", func(t *testing.T) {
		t.Parallel()

		_, err := identity.CurrentUser(context.Background())
		require.ErrorIs(t, err, identity.ErrNoAuthenticatedUser)
	})
}

func TestCurrentTenant(t *testing.T) {
	t.Parallel()

	user := testUser()
	tenant := identity.AuthenticatedTenant{ID: uuid.New()}

	tests := []struct {
		name       string
		token      identity.Token
		wantTenant bool
	}{
		{"password token resolves tenant", &identity.PasswordToken{User: user, Tenant: tenant}, true},
		{"oauth2 token resolves tenant", &identity.OAuth2Token{User: user, Tenant: tenant}, true},
		{"api key token resolves tenant", &identity.APIKeyToken{Tenant: tenant}, true},
		{"pending oauth2 token has no tenant yet", &identity.OAuth2PendingToken{}, false},
		{"anonymous token has no tenant", &identity.AnonymousToken{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := identity.WithToken(context.Background(), tt.token)
			got, ok := identity.CurrentTenant(ctx)
			assert.Equal(t, tt.wantTenant, ok)
			if tt.wantTenant {
				require.NotNil(t, got)
				assert.Equal(t, tenant.ID, got.ID)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestGrantedRoles(t *testing.T) {
	t.Parallel()

	t.Run("strips role prefix", func(t *testing.T) {
		t.Parallel()

		ctx := identity.WithToken(context.Background(), &identity.PasswordToken{
			User:        testUser(),
			Tenant:      identity.AuthenticatedTenant{ID: uuid.New()},
			Authorities: []string{"ROLE_OWNER", "ROLE_ADMIN"},
		})
		assert.ElementsMatch(t, []string{"OWNER", "ADMIN"}, identity.GrantedRoles(ctx))
	})

	t.Run("ignores non-role authorities", func(t *testing.T) {
		t.Parallel()

		ctx := identity.WithToken(context.Background(), &identity.PasswordToken{
			Authorities: []string{"SCOPE_read", "ROLE_MEMBER"},
		})
		assert.Equal(t, []string{"MEMBER"}, identity.GrantedRoles(ctx))
	})

	t.Run("empty for anonymous", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, identity.GrantedRoles(context.Background()))
	})
}

func TestHasRole(t *testing.T) {
	t.Parallel()

	t.Run("matches granted role", func(t *testing.T) {
		t.Parallel()

		ctx := identity.WithToken(context.Background(), &identity.PasswordToken{
			Authorities: []string{"ROLE_OWNER"},
		})
		assert.True(t, identity.HasRole(ctx, "OWNER"))
		assert.False(t, identity.HasRole(ctx, "ADMIN"))
	})

	t.Run("always false for anonymous", func(t *testing.T) {
		t.Parallel()

		assert.False(t, identity.HasRole(context.Background(), "OWNER"))
	})

	t.Run("always false for api key tokens", func(t *testing.T) {
		t.Parallel()

		ctx := identity.WithToken(context.Background(), &identity.APIKeyToken{
			Tenant: identity.AuthenticatedTenant{ID: uuid.New()},
		})
		assert.False(t, identity.HasRole(ctx, "OWNER"))
	})
}
