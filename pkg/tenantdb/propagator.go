package tenantdb

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/tenantkit/tenantkit/pkg/identity"
)

// Supplier computes the value of one business-context property. It is called
// fresh at every transaction begin; returning false means the property has no
// value for this transaction and is skipped.
type Supplier func(ctx context.Context) (string, bool)

// Propagator stamps named business-context properties onto the database
// session at transaction begin, with transaction-local scope. PostgreSQL
// clears local settings automatically when the transaction ends, commit or
// rollback alike, so there is no explicit cleanup on this path.
//
// The registry is safe for concurrent use: register suppliers during
// composition, or later if a component comes up after startup.
type Propagator struct {
	mu        sync.RWMutex
	suppliers map[string]Supplier
}

// NewPropagator creates an empty propagator.
func NewPropagator() *Propagator {
	return &Propagator{suppliers: make(map[string]Supplier)}
}

// NewIdentityPropagator creates a propagator pre-loaded with the tenant and
// user identity suppliers.
func NewIdentityPropagator() *Propagator {
	p := NewPropagator()
	p.Register(SessionTenantID, TenantIDSupplier())
	p.Register(SessionUserID, UserIDSupplier())
	return p
}

// Register adds or replaces a property supplier. PostgreSQL only allows
// ordinary users to set parameters with a qualified name, so the key must
// contain a dot (e.g. "session.environment").
func (p *Propagator) Register(key string, supplier Supplier) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.suppliers[key] = supplier
}

// apply evaluates every registered supplier and stamps each produced value
// with transaction-local scope. Keys are applied in sorted order so failures
// are reproducible. The first error aborts: the transaction must not proceed
// with partial context.
func (p *Propagator) apply(ctx context.Context, tx execQuerier, log *slog.Logger) error {
	p.mu.RLock()
	keys := make([]string, 0, len(p.suppliers))
	for key := range p.suppliers {
		keys = append(keys, key)
	}
	suppliers := make(map[string]Supplier, len(p.suppliers))
	for key, s := range p.suppliers {
		suppliers[key] = s
	}
	p.mu.RUnlock()
	sort.Strings(keys)

	for _, key := range keys {
		value, ok := suppliers[key](ctx)
		if !ok {
			continue
		}
		if _, err := tx.Exec(ctx, "SELECT set_config($1, $2, true)", key, value); err != nil {
			return err
		}
		log.DebugContext(ctx, "set transaction parameter", slog.String("key", key), slog.String("value", value))
	}
	return nil
}

// TenantIDSupplier supplies the current tenant id, absent when the active
// token has no tenant yet.
func TenantIDSupplier() Supplier {
	return func(ctx context.Context) (string, bool) {
		if tenant, ok := identity.CurrentTenant(ctx); ok {
			return tenant.ID.String(), true
		}
		return "", false
	}
}

// UserIDSupplier supplies the current user id, absent for API key and
// anonymous access.
func UserIDSupplier() Supplier {
	return func(ctx context.Context) (string, bool) {
		if user, err := identity.CurrentUser(ctx); err == nil {
			return user.ID.String(), true
		}
		return "", false
	}
}

// Begin starts a transaction with the default options.
func (p *Pool) Begin(ctx context.Context) (pgx.Tx, error) {
	return p.BeginTx(ctx, pgx.TxOptions{})
}

// BeginTx starts a transaction and stamps the registered business-context
// properties onto it before returning. On stamp failure the transaction is
// rolled back and ErrCannotCreateTransaction is returned wrapping the cause.
func (p *Pool) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	tx, err := p.pool.BeginTx(ctx, opts)
	if err != nil {
		return nil, errors.Join(ErrCannotCreateTransaction, err)
	}

	if p.prop != nil {
		if err := p.prop.apply(ctx, tx, p.log); err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, rbErr)
			}
			return nil, errors.Join(ErrCannotCreateTransaction, err)
		}
	}

	return tx, nil
}
