package identity

import "errors"

var (
	// ErrNoAuthenticatedUser is returned when the active token has no user.
	// Expected for anonymous, pending OAuth2 and API key authentication.
	ErrNoAuthenticatedUser = errors.New("no authenticated user in context")

	// ErrUnknownAuthenticationToken indicates a token variant the resolver
	// does not recognize. This is a programming error (a new variant was added
	// without updating the dispatch) and is raised as a panic.
	ErrUnknownAuthenticationToken = errors.New("unknown authentication token")
)
