package authn_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenantkit/tenantkit/pkg/authn"
	"github.com/tenantkit/tenantkit/pkg/identity"
)

func TestOAuth2BuildTenantToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	userID := uuid.New()
	tenantID := uuid.New()
	pending := &identity.OAuth2PendingToken{Provider: "google", Subject: "sub-123"}

	newStorage := func() *mockDetailsStorage {
		storage := new(mockDetailsStorage)
		storage.On("GetUserByEmail", ctx, "jane@example.com").Return(&identity.AuthenticatedUser{
			ID:            userID,
			Email:         "jane@example.com",
			EmailVerified: true,
		}, nil).Maybe()
		storage.On("ListTenantIDs", ctx, userID).Return([]uuid.UUID{tenantID}, nil).Maybe()
		storage.On("ListRoles", ctx, userID, tenantID).Return([]string{"MEMBER"}, nil).Maybe()
		return storage
	}

	t.Run("builds a full token from the pending one", func(t *testing.T) {
		t.Parallel()

		provider := authn.NewOAuth2Provider(authn.NewDetailsLoader(newStorage()))
		tok, err := provider.BuildTenantToken(ctx, pending, "jane@example.com", nil)
		require.NoError(t, err)

		assert.Equal(t, "google", tok.Provider)
		assert.Equal(t, "sub-123", tok.Subject)
		assert.Equal(t, userID, tok.User.ID)
		assert.Equal(t, tenantID, tok.Tenant.ID)
		assert.Equal(t, []string{"ROLE_MEMBER"}, tok.Authorities)
	})

	t.Run("empty provider email fails the login", func(t *testing.T) {
		t.Parallel()

		provider := authn.NewOAuth2Provider(authn.NewDetailsLoader(newStorage()))
		_, err := provider.BuildTenantToken(ctx, pending, "", nil)
		assert.ErrorIs(t, err, authn.ErrOAuth2EmailNotProvided)
	})

	t.Run("provider email unknown locally", func(t *testing.T) {
		t.Parallel()

		storage := new(mockDetailsStorage)
		storage.On("GetUserByEmail", ctx, "stranger@example.com").Return(nil, authn.ErrUserNotFound)

		provider := authn.NewOAuth2Provider(authn.NewDetailsLoader(storage))
		_, err := provider.BuildTenantToken(ctx, pending, "stranger@example.com", nil)
		assert.ErrorIs(t, err, authn.ErrUserNotFound)
	})
}
