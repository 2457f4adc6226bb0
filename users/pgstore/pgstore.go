package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-db-admin/internal/utils"
	"github.com/jrsteele09/go-db-admin/users"
)

// Schema creates the dashboard account table. Secrets are stored as NULL when absent.
const Schema = `CREATE TABLE IF NOT EXISTS admin_users (
	id               TEXT PRIMARY KEY,
	username         TEXT NOT NULL UNIQUE,
	password_hash    TEXT NOT NULL,
	is_active        BOOLEAN NOT NULL DEFAULT TRUE,
	is_2fa_enabled   BOOLEAN NOT NULL DEFAULT TRUE,
	has_setup_2fa    BOOLEAN NOT NULL DEFAULT FALSE,
	is_2fa_verified  BOOLEAN NOT NULL DEFAULT FALSE,
	secret_2fa       TEXT,
	temp_secret_2fa  TEXT,
	last_login_at    TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const selectColumns = `id, username, password_hash, is_active, is_2fa_enabled, has_setup_2fa,
	is_2fa_verified, secret_2fa, temp_secret_2fa, last_login_at, created_at`

const uniqueViolation = "23505"

// Store is a PostgreSQL StatusStore. Every write is a single statement or a
// row-locking transaction, so concurrent writes for one user serialize in the database.
type Store struct {
	pool *pgxpool.Pool
}

var _ users.StatusStore = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool for databaseURL and verifies connectivity.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("[pgstore Connect] pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("[pgstore Connect] ping: %w", err)
	}
	return pool, nil
}

// Migrate applies Schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("[pgstore Migrate] %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*users.User, error) {
	q := `SELECT ` + selectColumns + ` FROM admin_users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	q := `SELECT ` + selectColumns + ` FROM admin_users WHERE username = $1`
	return scanUser(s.pool.QueryRow(ctx, q, users.NormalizeUsername(username)))
}

func (s *Store) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.Username = users.NormalizeUsername(user.Username)

	q := `INSERT INTO admin_users (id, username, password_hash, is_active, is_2fa_enabled, has_setup_2fa,
		is_2fa_verified, secret_2fa, temp_secret_2fa, last_login_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.pool.Exec(ctx, q,
		user.ID, user.Username, user.PasswordHash, user.IsActive, user.Is2FAEnabled, user.HasSetup2FA,
		user.Is2FAVerified, utils.NilIfZero(user.Secret2FA), utils.NilIfZero(user.TempSecret2FA),
		utils.NilIfZero(user.LastLoginAt), user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return users.ErrUsernameTaken
		}
		return fmt.Errorf("[pgstore Create] %w", err)
	}
	return nil
}

func (s *Store) SetTempSecret(ctx context.Context, id, secret string) error {
	return s.execOne(ctx, `UPDATE admin_users SET temp_secret_2fa = $2 WHERE id = $1`, id, utils.NilIfZero(secret))
}

// PromoteTempSecret locks the row, checks the provisional secret is still the
// verified one and commits it in the same transaction.
func (s *Store) PromoteTempSecret(ctx context.Context, id, tempSecret string, at time.Time) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var current *string
		err := tx.QueryRow(ctx, `SELECT temp_secret_2fa FROM admin_users WHERE id = $1 FOR UPDATE`, id).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return users.ErrNotFound
			}
			return fmt.Errorf("[pgstore PromoteTempSecret] select: %w", err)
		}
		if tempSecret == "" || current == nil || *current != tempSecret {
			return users.ErrTempSecretChanged
		}

		_, err = tx.Exec(ctx, `UPDATE admin_users
			SET secret_2fa = temp_secret_2fa, temp_secret_2fa = NULL,
				has_setup_2fa = TRUE, is_2fa_verified = TRUE, last_login_at = $2
			WHERE id = $1`, id, at)
		if err != nil {
			return fmt.Errorf("[pgstore PromoteTempSecret] update: %w", err)
		}
		return nil
	})
}

func (s *Store) MarkVerified(ctx context.Context, id string, at time.Time) error {
	return s.execOne(ctx, `UPDATE admin_users SET is_2fa_verified = TRUE, last_login_at = $2 WHERE id = $1`, id, at)
}

func (s *Store) ClearVerified(ctx context.Context, id string) error {
	return s.execOne(ctx, `UPDATE admin_users SET is_2fa_verified = FALSE WHERE id = $1`, id)
}

func (s *Store) SetTwoFactorEnabled(ctx context.Context, id string, enabled bool) error {
	return s.execOne(ctx, `UPDATE admin_users SET is_2fa_enabled = $2 WHERE id = $1`, id, enabled)
}

func (s *Store) ResetTwoFactor(ctx context.Context, id string) error {
	return s.execOne(ctx, `UPDATE admin_users
		SET secret_2fa = NULL, temp_secret_2fa = NULL, has_setup_2fa = FALSE, is_2fa_verified = FALSE
		WHERE id = $1`, id)
}

func (s *Store) execOne(ctx context.Context, q string, args ...any) error {
	tag, err := s.pool.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("[pgstore] %w", err)
	}
	if tag.RowsAffected() == 0 {
		return users.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	u := &users.User{}
	var secret, tempSecret *string
	var lastLogin *time.Time
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsActive, &u.Is2FAEnabled, &u.HasSetup2FA,
		&u.Is2FAVerified, &secret, &tempSecret, &lastLogin, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("[pgstore scanUser] %w", err)
	}
	u.Secret2FA = utils.Value(secret)
	u.TempSecret2FA = utils.Value(tempSecret)
	u.LastLoginAt = utils.Value(lastLogin)
	return u, nil
}
