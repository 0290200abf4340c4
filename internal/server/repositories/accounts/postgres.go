package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/filmood/keygate/internal/common"
	"github.com/filmood/keygate/internal/dbx"
	"github.com/filmood/keygate/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// uniqueViolation is the PostgreSQL error code for unique constraint
// violations (class 23, integrity constraint violation).
const uniqueViolation = "23505"

// Create inserts a new account row. A unique violation on key_hash maps to
// common.ErrorConflict and leaves the existing row untouched.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (id, key_hash, display_name, date_of_birth, gender, purpose)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.KeyHash, account.DisplayName,
		account.DateOfBirth, account.Gender, account.Purpose,
	).Scan(&account.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, common.ErrorConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

// GetByKeyHash returns the account owning keyHash, or common.ErrorNotFound.
func (r *PostgresRepository) GetByKeyHash(ctx context.Context, keyHash string) (*models.Account, error) {
	query := `
		SELECT id, key_hash, display_name, date_of_birth, gender, purpose, created_at, last_login_at
		FROM accounts
		WHERE key_hash = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, keyHash))
}

// GetByID returns the account with the given id, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	query := `
		SELECT id, key_hash, display_name, date_of_birth, gender, purpose, created_at, last_login_at
		FROM accounts
		WHERE id = $1
	`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id))
}

// TouchLastLogin stamps last_login_at with the database clock.
func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id string) error {
	query := `
		UPDATE accounts
		SET last_login_at = now()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID, &account.KeyHash, &account.DisplayName,
		&account.DateOfBirth, &account.Gender, &account.Purpose,
		&account.CreatedAt, &account.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}
