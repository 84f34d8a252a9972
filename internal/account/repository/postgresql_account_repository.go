// Package repository provides data persistence implementations for account entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/pklabs/keygate/internal/account/domain"
	"github.com/pklabs/keygate/internal/database"

	apperrors "github.com/pklabs/keygate/internal/errors"
)

// PostgreSQLAccountRepository handles account persistence for PostgreSQL
type PostgreSQLAccountRepository struct {
	db *sql.DB
}

// NewPostgreSQLAccountRepository creates a new PostgreSQLAccountRepository
func NewPostgreSQLAccountRepository(db *sql.DB) *PostgreSQLAccountRepository {
	return &PostgreSQLAccountRepository{
		db: db,
	}
}

// Create inserts a new account
func (r *PostgreSQLAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO accounts (id, login, email, display_name, capabilities, is_active, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW())`

	_, err := querier.ExecContext(ctx, query,
		account.ID, account.Login, account.Email, account.DisplayName,
		joinCapabilities(account.Capabilities), account.IsActive,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrAccountAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create account")
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *PostgreSQLAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, login, email, display_name, capabilities, is_active, created_at
			  FROM accounts WHERE id = $1`

	return scanAccount(querier.QueryRowContext(ctx, query, id), "failed to get account by id")
}

// GetByLogin retrieves an account by login
func (r *PostgreSQLAccountRepository) GetByLogin(ctx context.Context, login string) (*domain.Account, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, login, email, display_name, capabilities, is_active, created_at
			  FROM accounts WHERE login = $1`

	return scanAccount(querier.QueryRowContext(ctx, query, login), "failed to get account by login")
}

// GetByEmail retrieves an account by email
func (r *PostgreSQLAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, login, email, display_name, capabilities, is_active, created_at
			  FROM accounts WHERE email = $1`

	return scanAccount(querier.QueryRowContext(ctx, query, email), "failed to get account by email")
}

// rowScanner abstracts *sql.Row for shared scan logic
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, wrapMsg string) (*domain.Account, error) {
	var account domain.Account
	var capabilities string

	err := row.Scan(
		&account.ID, &account.Login, &account.Email, &account.DisplayName,
		&capabilities, &account.IsActive, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(err, wrapMsg)
	}

	account.Capabilities = splitCapabilities(capabilities)
	return &account, nil
}

// joinCapabilities serializes the capability list for storage as a single column
func joinCapabilities(capabilities []string) string {
	return strings.Join(capabilities, ",")
}

func splitCapabilities(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
