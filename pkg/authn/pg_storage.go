package authn

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tenantkit/tenantkit/pkg/identity"
	"github.com/tenantkit/tenantkit/pkg/pg"
)

// Querier abstracts pgx query methods so the storage works with pool
// connections and transactions alike.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGStorage implements all authn storage interfaces on top of PostgreSQL.
// Password verification is delegated to the verify_password database routine,
// hashes never cross the wire.
type PGStorage struct {
	db Querier
}

// NewPGStorage creates a PostgreSQL-backed storage.
func NewPGStorage(db Querier) *PGStorage {
	return &PGStorage{db: db}
}

func (s *PGStorage) GetUserByEmail(ctx context.Context, email string) (*identity.AuthenticatedUser, error) {
	var user identity.AuthenticatedUser
	err := s.db.QueryRow(ctx, `
		SELECT id, email, name, email_verified, created_at,
		       COALESCE(preferred_locale, ''), COALESCE(preferred_timezone, '')
		FROM app_user
		WHERE email = $1`, email).
		Scan(&user.ID, &user.Email, &user.Name, &user.EmailVerified, &user.CreatedAt,
			&user.PreferredLocale, &user.PreferredTimezone)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return &user, nil
}

func (s *PGStorage) ListTenantIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(ctx, `
		SELECT tenant_id
		FROM tenant_member
		WHERE user_id = $1
		GROUP BY tenant_id
		ORDER BY MIN(created_at)`, userID)
	if err != nil {
		return nil, fmt.Errorf("query tenant memberships: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
}

func (s *PGStorage) ListRoles(ctx context.Context, userID, tenantID uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(ctx, `
		SELECT role
		FROM tenant_member
		WHERE user_id = $1 AND tenant_id = $2`, userID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query membership roles: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *PGStorage) VerifyPassword(ctx context.Context, email, password string) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `SELECT verify_password($1, $2)`, email, password).Scan(&ok)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("verify password routine: %w", err)
	}
	return ok, nil
}

func (s *PGStorage) FindTenantIDByAPIKey(ctx context.Context, key string) (uuid.UUID, error) {
	var tenantID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT tenant_id FROM tenant_api_key WHERE api_key = $1`, key).Scan(&tenantID)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return uuid.UUID{}, ErrInvalidAPIKey
		}
		return uuid.UUID{}, fmt.Errorf("query api key: %w", err)
	}
	return tenantID, nil
}

func (s *PGStorage) GetAPIKeyByTenant(ctx context.Context, tenantID uuid.UUID) (*TenantAPIKey, error) {
	var key TenantAPIKey
	err := s.db.QueryRow(ctx, `
		SELECT id, api_key, tenant_id, created_at
		FROM tenant_api_key
		WHERE tenant_id = $1`, tenantID).
		Scan(&key.ID, &key.Key, &key.TenantID, &key.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("query tenant api key: %w", err)
	}
	return &key, nil
}

func (s *PGStorage) InsertAPIKey(ctx context.Context, key string, tenantID uuid.UUID) (*TenantAPIKey, error) {
	var rec TenantAPIKey
	err := s.db.QueryRow(ctx, `
		INSERT INTO tenant_api_key (api_key, tenant_id)
		VALUES ($1, $2)
		RETURNING id, api_key, tenant_id, created_at`, key, tenantID).
		Scan(&rec.ID, &rec.Key, &rec.TenantID, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert tenant api key: %w", err)
	}
	return &rec, nil
}

func (s *PGStorage) DeleteAPIKeysByTenant(ctx context.Context, tenantID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM tenant_api_key WHERE tenant_id = $1`, tenantID); err != nil {
		return fmt.Errorf("delete tenant api keys: %w", err)
	}
	return nil
}

var (
	_ DetailsStorage     = (*PGStorage)(nil)
	_ PasswordStorage    = (*PGStorage)(nil)
	_ APIKeyStorage      = (*PGStorage)(nil)
	_ APIKeyAdminStorage = (*PGStorage)(nil)
)
