package authn

import "errors"

// Details loading errors. Surfaced as authentication failures, never silently
// defaulted.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrNoTenantFound = errors.New("no tenant found for user")
	// ErrNoRolesFound indicates a membership row without any role, which is a
	// data integrity violation, not a valid "no access" state.
	ErrNoRolesFound = errors.New("no roles found for user and tenant")
)

// Login errors.
var (
	ErrBadCredentials   = errors.New("bad credentials")
	ErrEmailNotVerified = errors.New("email not verified")
)

// OAuth2 errors.
var (
	ErrOAuth2EmailNotProvided = errors.New("email attribute not provided by oauth2 provider")
	ErrInvalidCode            = errors.New("invalid oauth2 authorization code")
	ErrInvalidState           = errors.New("invalid or expired oauth2 state")
)

// API key errors.
var (
	ErrInvalidAPIKey         = errors.New("invalid api key")
	ErrNoAuthenticatedTenant = errors.New("no authenticated tenant")
	ErrOperationDenied       = errors.New("operation denied for current role")
)
