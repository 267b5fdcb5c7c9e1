// Package authn builds authentication tokens from the supported inbound
// mechanisms and keeps them consistent with tenant membership data.
//
// Three mechanisms produce tokens:
//
//   - PasswordAuthenticator verifies credentials (delegated to a database
//     routine) and yields an identity.PasswordToken
//   - OAuth2Provider completes a federated login by matching the provider
//     email to a local user, yielding an identity.OAuth2Token
//   - APIKeyAuthenticator resolves the X-API-Key header to a tenant, yielding
//     an identity.APIKeyToken
//
// All three feed through DetailsLoader, which loads the user, picks or pins a
// tenant, and loads the role set for that exact (user, tenant) membership.
// TenantSwitcher re-runs the loader for a different tenant the user belongs to
// and swaps the replacement token into the active-identity holder atomically.
//
// Storage is expressed as small per-consumer interfaces so services can be
// tested against mocks; PGStorage implements them all on top of pgx.
package authn
