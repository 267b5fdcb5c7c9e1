package tenantdb

import "errors"

var (
	// ErrAcquireFailed is returned when the underlying pool cannot provide a
	// connection.
	ErrAcquireFailed = errors.New("failed to acquire connection from pool")

	// ErrSessionStampFailed is returned when the tenant/user session
	// parameters could not be set on a freshly acquired connection. The
	// connection is discarded, never handed to the caller.
	ErrSessionStampFailed = errors.New("failed to set session identity on connection")

	// ErrCannotCreateTransaction is returned when a transaction could not be
	// started with its full business context. The transaction is rolled back,
	// it never proceeds with partial context.
	ErrCannotCreateTransaction = errors.New("cannot create transaction with business context")
)
