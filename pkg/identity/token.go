package identity

import (
	"time"

	"github.com/google/uuid"
)

// RolePrefix is the convention prefix carried by every authority string,
// e.g. "ROLE_ADMIN". GrantedRoles strips it when reporting role names.
const RolePrefix = "ROLE_"

// AuthenticatedTenant identifies the tenant whose data the current request may
// access. Immutable once constructed.
type AuthenticatedTenant struct {
	ID uuid.UUID
}

// AuthenticatedUser represents the human principal behind a request. API key
// authentication has no user, only a tenant.
type AuthenticatedUser struct {
	ID                uuid.UUID
	Email             string
	Name              string
	EmailVerified     bool
	CreatedAt         time.Time
	PreferredLocale   string // optional, empty when the user never picked one
	PreferredTimezone string // optional
}

// Token is the closed set of authentication token variants. Only types in this
// package satisfy it, so resolver dispatch over the concrete variants is
// exhaustive and adding a variant is a compile-visible change.
type Token interface {
	sealedToken()
}

// PasswordToken is the result of a session/password login. The tenant is a
// typed field, not an untyped details side channel.
type PasswordToken struct {
	User        AuthenticatedUser
	Tenant      AuthenticatedTenant
	Authorities []string
}

// OAuth2Token is the result of a completed federated login: the provider
// identity has been matched to a local user and a tenant has been resolved.
type OAuth2Token struct {
	Provider    string // registration id, e.g. "google"
	Subject     string // provider-side user identifier
	User        AuthenticatedUser
	Tenant      AuthenticatedTenant
	Authorities []string
}

// OAuth2PendingToken represents a federated login still in progress: the
// provider authenticated someone, but no local user or tenant is resolved yet.
type OAuth2PendingToken struct {
	Provider string
	Subject  string
}

// APIKeyToken authenticates a tenant via an API key. It carries no user and no
// authorities, so role checks on API key requests always deny.
type APIKeyToken struct {
	Tenant    AuthenticatedTenant
	KeyDigest string
}

// AnonymousToken is the unauthenticated state.
type AnonymousToken struct{}

func (*PasswordToken) sealedToken()      {}
func (*OAuth2Token) sealedToken()        {}
func (*OAuth2PendingToken) sealedToken() {}
func (*APIKeyToken) sealedToken()        {}
func (*AnonymousToken) sealedToken()     {}
