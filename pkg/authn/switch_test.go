package authn_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tenantkit/tenantkit/pkg/authn"
	"github.com/tenantkit/tenantkit/pkg/identity"
)

func TestTenantSwitch(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	homeTenant := uuid.New()
	otherTenant := uuid.New()
	user := identity.AuthenticatedUser{ID: userID, Email: "jane@example.com", EmailVerified: true}

	newStorage := func() *mockDetailsStorage {
		storage := new(mockDetailsStorage)
		storage.On("ListTenantIDs", mock.Anything, userID).Return([]uuid.UUID{homeTenant, otherTenant}, nil).Maybe()
		storage.On("GetUserByEmail", mock.Anything, "jane@example.com").Return(&user, nil).Maybe()
		storage.On("ListRoles", mock.Anything, userID, otherTenant).Return([]string{"MEMBER"}, nil).Maybe()
		return storage
	}

	newSwitcher := func(storage *mockDetailsStorage) *authn.TenantSwitcher {
		return authn.NewTenantSwitcher(storage, authn.NewDetailsLoader(storage))
	}

	t.Run("switch rebuilds a password token for the desired tenant", func(t *testing.T) {
		t.Parallel()

		holder := identity.NewHolder(&identity.PasswordToken{
			User:        user,
			Tenant:      identity.AuthenticatedTenant{ID: homeTenant},
			Authorities: []string{"ROLE_OWNER"},
		})
		ctx := identity.WithHolder(context.Background(), holder)

		result, err := newSwitcher(newStorage()).Switch(ctx, otherTenant)
		require.NoError(t, err)
		require.Equal(t, authn.SwitchChanged, result)

		tok, ok := holder.Token().(*identity.PasswordToken)
		require.True(t, ok, "switch must stay within the token family")
		assert.Equal(t, otherTenant, tok.Tenant.ID)
		assert.Equal(t, []string{"ROLE_MEMBER"}, tok.Authorities, "roles come from the new tenant")
		assert.Equal(t, user, tok.User)
	})

	t.Run("switch preserves oauth2 provenance", func(t *testing.T) {
		t.Parallel()

		holder := identity.NewHolder(&identity.OAuth2Token{
			Provider:    "google",
			Subject:     "sub-123",
			User:        user,
			Tenant:      identity.AuthenticatedTenant{ID: homeTenant},
			Authorities: []string{"ROLE_OWNER"},
		})
		ctx := identity.WithHolder(context.Background(), holder)

		result, err := newSwitcher(newStorage()).Switch(ctx, otherTenant)
		require.NoError(t, err)
		require.Equal(t, authn.SwitchChanged, result)

		tok, ok := holder.Token().(*identity.OAuth2Token)
		require.True(t, ok)
		assert.Equal(t, "google", tok.Provider)
		assert.Equal(t, "sub-123", tok.Subject)
		assert.Equal(t, otherTenant, tok.Tenant.ID)
	})

	t.Run("non-member tenant is refused without side effects", func(t *testing.T) {
		t.Parallel()

		before := &identity.PasswordToken{
			User:        user,
			Tenant:      identity.AuthenticatedTenant{ID: homeTenant},
			Authorities: []string{"ROLE_OWNER"},
		}
		holder := identity.NewHolder(before)
		ctx := identity.WithHolder(context.Background(), holder)

		storage := newStorage()
		result, err := newSwitcher(storage).Switch(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, authn.SwitchNotAllowed, result)
		assert.Same(t, before, holder.Token(), "refused switch leaves the active token untouched")
		storage.AssertNotCalled(t, "ListRoles", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("anonymous caller cannot switch", func(t *testing.T) {
		t.Parallel()

		_, err := newSwitcher(newStorage()).Switch(context.Background(), otherTenant)
		assert.ErrorIs(t, err, identity.ErrNoAuthenticatedUser)
	})
}
