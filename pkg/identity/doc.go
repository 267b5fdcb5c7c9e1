// Package identity models the authentication result that governs an in-flight
// request and resolves "who is making this call" for the rest of the system.
//
// The package is built around three core concepts:
//
// 1. Token - a closed set of authentication token variants (password login,
// OAuth2 login, pending OAuth2 login, API key, anonymous)
// 2. Holder - the per-request cell carrying the currently active token
// 3. Resolver functions - CurrentUser, CurrentTenant, HasRole and GrantedRoles,
// which dispatch over the active token variant
//
// There is deliberately no process-global security context. The active token
// travels with the request through context.Context, so concurrent requests from
// different users and tenants never share mutable identity state, and tests can
// inject a fake identity directly:
//
//	ctx := identity.WithToken(r.Context(), &identity.PasswordToken{
//		User:   user,
//		Tenant: identity.AuthenticatedTenant{ID: tenantID},
//	})
//
// # Token Variants
//
// The set of variants is sealed: only types in this package satisfy the Token
// interface. Each variant answers two capability queries, resolving the current
// user and the current tenant. API key tokens authenticate a tenant, not a
// person, so they have a tenant but no user. Pending OAuth2 and anonymous
// tokens legitimately have neither; that absence is a normal state, distinct
// from an error.
//
// Tokens are immutable once constructed. Re-authentication (login, OAuth2
// callback, tenant switch) builds a new token and swaps it into the Holder in a
// single atomic operation, never mutating a live token in place.
//
// # Error Handling
//
//   - ErrNoAuthenticatedUser: the active token has no user; expected for
//     anonymous, pending OAuth2 and API key requests
//   - ErrUnknownAuthenticationToken: a token variant the resolver does not
//     recognize; a programming error surfaced as a panic, never silently
//     defaulted
package identity
