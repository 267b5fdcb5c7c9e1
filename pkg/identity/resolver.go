package identity

import (
	"context"
	"strings"
)

// CurrentUser resolves the user behind the active token. Returns
// ErrNoAuthenticatedUser when the request is anonymous, mid-OAuth2, or
// authenticated by an API key, all of which legitimately carry no user.
//
// Panics with ErrUnknownAuthenticationToken on a variant outside the closed
// set; that is a programming error, not a recoverable condition.
func CurrentUser(ctx context.Context) (*AuthenticatedUser, error) {
	switch tok := TokenFromContext(ctx).(type) {
	case *PasswordToken:
		user := tok.User
		return &user, nil
	case *OAuth2Token:
		user := tok.User
		return &user, nil
	case *OAuth2PendingToken, *APIKeyToken, *AnonymousToken:
		return nil, ErrNoAuthenticatedUser
	default:
		panic(ErrUnknownAuthenticationToken)
	}
}

// CurrentTenant resolves the tenant behind the active token. Returns false
// when the variant legitimately has no tenant yet (anonymous, pending OAuth2);
// that is a normal state, not an error.
func CurrentTenant(ctx context.Context) (*AuthenticatedTenant, bool) {
	switch tok := TokenFromContext(ctx).(type) {
	case *PasswordToken:
		tenant := tok.Tenant
		return &tenant, true
	case *OAuth2Token:
		tenant := tok.Tenant
		return &tenant, true
	case *APIKeyToken:
		tenant := tok.Tenant
		return &tenant, true
	case *OAuth2PendingToken, *AnonymousToken:
		return nil, false
	default:
		panic(ErrUnknownAuthenticationToken)
	}
}

// Authorities returns the raw authority set of the active token, prefix
// included. Empty for variants that carry none.
func Authorities(ctx context.Context) []string {
	switch tok := TokenFromContext(ctx).(type) {
	case *PasswordToken:
		return tok.Authorities
	case *OAuth2Token:
		return tok.Authorities
	case *OAuth2PendingToken, *APIKeyToken, *AnonymousToken:
		return nil
	default:
		panic(ErrUnknownAuthenticationToken)
	}
}

// GrantedRoles returns the role names granted to the active token, with the
// ROLE_ prefix stripped. Empty slice, not an error, when none are granted.
func GrantedRoles(ctx context.Context) []string {
	authorities := Authorities(ctx)
	roles := make([]string, 0, len(authorities))
	for _, a := range authorities {
		if strings.HasPrefix(a, RolePrefix) {
			roles = append(roles, strings.TrimPrefix(a, RolePrefix))
		}
	}
	return roles
}

// HasRole reports whether the active token carries the given role (without
// prefix). Always false for anonymous and API key requests, never an error.
func HasRole(ctx context.Context, role string) bool {
	for _, granted := range GrantedRoles(ctx) {
		if granted == role {
			return true
		}
	}
	return false
}
