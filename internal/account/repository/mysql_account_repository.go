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

// MySQLAccountRepository handles account persistence for MySQL
type MySQLAccountRepository struct {
	db *sql.DB
}

// NewMySQLAccountRepository creates a new MySQLAccountRepository
func NewMySQLAccountRepository(db *sql.DB) *MySQLAccountRepository {
	return &MySQLAccountRepository{
		db: db,
	}
}

// Create inserts a new account
func (r *MySQLAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO accounts (id, login, email, display_name, capabilities, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, NOW())`

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := account.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	_, err = querier.ExecContext(ctx, query,
		uuidBytes, account.Login, account.Email, account.DisplayName,
		joinCapabilities(account.Capabilities), account.IsActive,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrAccountAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create account")
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *MySQLAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, login, email, display_name, capabilities, is_active, created_at
			  FROM accounts WHERE id = ?`

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	return scanMySQLAccount(querier.QueryRowContext(ctx, query, uuidBytes), "failed to get account by id")
}

// GetByLogin retrieves an account by login
func (r *MySQLAccountRepository) GetByLogin(ctx context.Context, login string) (*domain.Account, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, login, email, display_name, capabilities, is_active, created_at
			  FROM accounts WHERE login = ?`

	return scanMySQLAccount(querier.QueryRowContext(ctx, query, login), "failed to get account by login")
}

// GetByEmail retrieves an account by email
func (r *MySQLAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, login, email, display_name, capabilities, is_active, created_at
			  FROM accounts WHERE email = ?`

	return scanMySQLAccount(querier.QueryRowContext(ctx, query, email), "failed to get account by email")
}

func scanMySQLAccount(row rowScanner, wrapMsg string) (*domain.Account, error) {
	var account domain.Account
	var idBytes []byte
	var capabilities string

	err := row.Scan(
		&idBytes, &account.Login, &account.Email, &account.DisplayName,
		&capabilities, &account.IsActive, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(err, wrapMsg)
	}

	// Convert bytes back to UUID
	if err := account.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	account.Capabilities = splitCapabilities(capabilities)
	return &account, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
