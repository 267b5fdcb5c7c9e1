// Package pg bootstraps the PostgreSQL layer: a pgx connection pool with
// retry on startup, goose schema migrations, a health check closure, and
// error classification helpers.
//
// The pool returned by Connect is the raw, identity-unaware pool. Request
// handling code should not use it directly; wrap it with tenantdb.New so that
// every checked-out connection carries the tenant/user session parameters
// consumed by row-level-security policies. The raw pool remains appropriate
// for maintenance jobs and migrations, which run outside any tenant context
// and are exempted at the policy level.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	db := tenantdb.New(pool, tenantdb.WithLogger(log))
package pg
