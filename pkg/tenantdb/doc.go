// Package tenantdb hands out PostgreSQL connections that carry the current
// tenant and user as database session parameters, so row-level-security
// policies can enforce multi-tenant isolation on every statement.
//
// The package wraps a pgx connection pool. On every checkout the active
// identity is resolved from the request context and stamped onto the raw
// connection via set_config before the caller sees it; on release the
// parameters are cleared before the connection goes back to the pool. The
// same physical connection therefore never leaks one request's tenant context
// into the next borrower.
//
//	pool := tenantdb.New(pgxPool)
//
//	conn, err := pool.Acquire(ctx)
//	if err != nil {
//		return err
//	}
//	defer conn.Release()
//	rows, err := conn.Query(ctx, "SELECT * FROM projects") // RLS-filtered
//
// The failure contract is asymmetric on purpose. A failed stamp aborts the
// acquisition and discards the physical connection: running the caller's
// queries under missing or stale tenant context would be a silent cross-tenant
// read, so the provider fails closed. A failed clear on release is logged and
// the release proceeds: the connection is already out of the caller's hands
// and the pool will validate or discard it, so cleanup degrades gracefully
// instead of failing completed work.
//
// For transaction-per-unit-of-work code paths, Propagator stamps registered
// context properties at transaction begin with transaction-local scope
// (set_config(..., true)), which PostgreSQL clears automatically at
// commit or rollback.
//
// SQL reads the stamped values through current_setting, e.g.
// current_setting('session.tenant.id', true). Statements issued outside this
// package (maintenance jobs) see no parameters and must be exempted at the
// policy level.
package tenantdb
