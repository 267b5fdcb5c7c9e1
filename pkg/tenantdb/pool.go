package tenantdb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tenantkit/tenantkit/pkg/identity"
)

// Session parameter keys consumed by row-level-security policy predicates via
// current_setting. Values are string-encoded UUIDs.
const (
	SessionTenantID = "session.tenant.id"
	SessionUserID   = "session.user.id"
)

// execQuerier is the subset of connection behavior the stamp/clear statements
// need. Satisfied by *pgxpool.Conn and pgx.Tx.
type execQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// stampTarget is a freshly acquired connection that can be stamped or, on
// stamp failure, destroyed so it never returns to the pool.
type stampTarget interface {
	execQuerier
	destroy() error
}

// clearTarget is a connection about to be released, whose session parameters
// should be wiped if it is still alive.
type clearTarget interface {
	execQuerier
	isClosed() bool
}

// poolConn adapts *pgxpool.Conn to the lifecycle seams above.
type poolConn struct {
	*pgxpool.Conn
}

func (c poolConn) destroy() error {
	// Hijack removes the connection from the pool's bookkeeping; closing it
	// guarantees the pool never re-lends a half-stamped session.
	return c.Hijack().Close(context.Background())
}

func (c poolConn) isClosed() bool {
	return c.Conn.Conn().IsClosed()
}

// Pool wraps a pgx connection pool so that every connection it hands out
// carries the active identity as session parameters.
type Pool struct {
	pool *pgxpool.Pool
	prop *Propagator
	log  *slog.Logger
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the logger used for cleanup warnings and stamp debugging.
func WithLogger(log *slog.Logger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// WithPropagator sets the transaction context propagator applied at every
// transaction begin.
func WithPropagator(prop *Propagator) Option {
	return func(p *Pool) {
		p.prop = prop
	}
}

// New wraps the given pgx pool. Without options it logs nowhere and applies
// the default identity propagator to transactions.
func New(pool *pgxpool.Pool, opts ...Option) *Pool {
	p := &Pool{
		pool: pool,
		prop: NewIdentityPropagator(),
		log:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Acquire checks a connection out of the pool with the current identity
// stamped as session parameters. The stamp completes before Acquire returns:
// no caller query can ever run ahead of its tenant context.
//
// On stamp failure the physical connection is discarded and the error is
// propagated; the caller never receives a connection with partial or unknown
// session state.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	raw, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, errors.Join(ErrAcquireFailed, err)
	}

	tenantID, userID := resolveSessionIdentity(ctx)
	if err := stampSession(ctx, poolConn{raw}, tenantID, userID, p.log); err != nil {
		return nil, err
	}

	return &Conn{Conn: raw, log: p.log}, nil
}

// WithConnection acquires a stamped connection, runs fn with it, and releases
// it afterwards regardless of the outcome.
func (p *Pool) WithConnection(ctx context.Context, fn func(ctx context.Context, conn *Conn) error) error {
	conn, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(ctx, conn)
}

// resolveSessionIdentity extracts the stampable identity from the request
// context. A missing user is a normal state (API-key-only access, anonymous
// paths), so ErrNoAuthenticatedUser is swallowed here rather than propagated.
func resolveSessionIdentity(ctx context.Context) (tenantID, userID string) {
	if tenant, ok := identity.CurrentTenant(ctx); ok {
		tenantID = tenant.ID.String()
	}
	if user, err := identity.CurrentUser(ctx); err == nil {
		userID = user.ID.String()
	}
	return tenantID, userID
}

// stampSession sets each present identity value as a session parameter using
// bound arguments. Any failure destroys the connection (the close error is
// joined onto the original) and returns ErrSessionStampFailed.
func stampSession(ctx context.Context, conn stampTarget, tenantID, userID string, log *slog.Logger) error {
	if tenantID == "" && userID == "" {
		return nil
	}

	stamp := func(key, value string) error {
		if value == "" {
			return nil
		}
		if _, err := conn.Exec(ctx, "SELECT set_config($1, $2, false)", key, value); err != nil {
			return err
		}
		log.DebugContext(ctx, "set session parameter", slog.String("key", key), slog.String("value", value))
		return nil
	}

	var err error
	if err = stamp(SessionTenantID, tenantID); err == nil {
		err = stamp(SessionUserID, userID)
	}
	if err != nil {
		if closeErr := conn.destroy(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return errors.Join(ErrSessionStampFailed, err)
	}
	return nil
}

// clearSession wipes both session parameters with a single best-effort
// statement. Failures are logged, never returned: the physical release must
// happen regardless, and the pool revalidates the connection anyway.
func clearSession(conn clearTarget, log *slog.Logger) {
	if conn.isClosed() {
		return
	}
	// Background context: the request context may already be canceled by the
	// time the connection is released.
	_, err := conn.Exec(context.Background(),
		"SELECT set_config($1, '', false), set_config($2, '', false)",
		SessionTenantID, SessionUserID)
	if err != nil {
		log.Warn("failed to clear session parameters on connection release", slog.Any("error", err))
	}
}

// Conn is a pooled connection whose Release clears the stamped session
// parameters before handing the physical connection back. Every other
// operation delegates to the embedded pgx connection unchanged.
type Conn struct {
	*pgxpool.Conn

	log      *slog.Logger
	released atomic.Bool
}

// Release wipes the session parameters and returns the connection to the
// pool. Safe to call more than once; only the first call has effect.
func (c *Conn) Release() {
	if c.released.Swap(true) {
		return
	}
	clearSession(poolConn{c.Conn}, c.log)
	c.Conn.Release()
}
