// Package repository provides data persistence implementations for API keys.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/pklabs/keygate/internal/apikey/domain"
	"github.com/pklabs/keygate/internal/database"

	apperrors "github.com/pklabs/keygate/internal/errors"
)

// PostgreSQLKeyRepository handles API key persistence for PostgreSQL
type PostgreSQLKeyRepository struct {
	db *sql.DB
}

// NewPostgreSQLKeyRepository creates a new PostgreSQLKeyRepository
func NewPostgreSQLKeyRepository(db *sql.DB) *PostgreSQLKeyRepository {
	return &PostgreSQLKeyRepository{
		db: db,
	}
}

const postgresKeyColumns = `id, owner_login, owner_email, token_value, revoked, created_at, updated_at`

// CreateOrRotate inserts a key for the owner, or replaces the token value in
// place when the owner already has one. Rotation refreshes created_at, so a
// rotated key counts as new for newest-first listings. The revoked flag of an
// existing row is left untouched, so rotating a revoked key yields a key that
// is still revoked. Returns the stored row.
func (r *PostgreSQLKeyRepository) CreateOrRotate(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO api_keys (id, owner_login, owner_email, token_value, revoked, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
			  ON CONFLICT (owner_login) DO UPDATE
			  SET token_value = EXCLUDED.token_value, owner_email = EXCLUDED.owner_email, created_at = NOW(), updated_at = NOW()
			  RETURNING ` + postgresKeyColumns

	var stored domain.APIKey
	err := querier.QueryRowContext(ctx, query, key.ID, key.OwnerLogin, key.OwnerEmail, key.TokenValue).Scan(
		&stored.ID, &stored.OwnerLogin, &stored.OwnerEmail, &stored.TokenValue,
		&stored.Revoked, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		// The conflict target is owner_login, so a unique violation here means
		// the token value itself collided with another row.
		if isPostgreSQLUniqueViolation(err) {
			return nil, domain.ErrKeyAlreadyExists
		}
		return nil, apperrors.Wrap(err, "failed to create or rotate api key")
	}

	return &stored, nil
}

// GetByValue retrieves a key by its exact token value. The lookup is
// case-sensitive: PostgreSQL compares text byte-wise by default.
func (r *PostgreSQLKeyRepository) GetByValue(ctx context.Context, value string) (*domain.APIKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresKeyColumns + ` FROM api_keys WHERE token_value = $1`

	return scanKey(querier.QueryRowContext(ctx, query, value), "failed to get api key by value")
}

// GetByOwner retrieves the key bound to the given owner login
func (r *PostgreSQLKeyRepository) GetByOwner(ctx context.Context, ownerLogin string) (*domain.APIKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresKeyColumns + ` FROM api_keys WHERE owner_login = $1`

	return scanKey(querier.QueryRowContext(ctx, query, ownerLogin), "failed to get api key by owner")
}

// List retrieves keys ordered by creation time, newest first
func (r *PostgreSQLKeyRepository) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresKeyColumns + ` FROM api_keys
			  ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	defer rows.Close()

	return collectKeys(rows)
}

// Search retrieves keys whose token value, owner login, or owner email
// contains the given substring, ordered by creation time, newest first
func (r *PostgreSQLKeyRepository) Search(ctx context.Context, term string, offset, limit int) ([]*domain.APIKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + postgresKeyColumns + ` FROM api_keys
			  WHERE token_value LIKE $1 OR owner_login LIKE $1 OR owner_email LIKE $1
			  ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, likePattern(term), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to search api keys")
	}
	defer rows.Close()

	return collectKeys(rows)
}

// SetRevoked updates the revoked flag of a key
func (r *PostgreSQLKeyRepository) SetRevoked(ctx context.Context, id uuid.UUID, revoked bool) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE api_keys SET revoked = $1, updated_at = NOW() WHERE id = $2`

	result, err := querier.ExecContext(ctx, query, revoked, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to update api key revocation")
	}
	return checkAffected(result)
}

// Delete removes a key permanently
func (r *PostgreSQLKeyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM api_keys WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete api key")
	}
	return checkAffected(result)
}

// rowScanner abstracts *sql.Row for shared scan logic
type rowScanner interface {
	Scan(dest ...any) error
}

func scanKey(row rowScanner, wrapMsg string) (*domain.APIKey, error) {
	var key domain.APIKey

	err := row.Scan(
		&key.ID, &key.OwnerLogin, &key.OwnerEmail, &key.TokenValue,
		&key.Revoked, &key.CreatedAt, &key.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, wrapMsg)
	}

	return &key, nil
}

func collectKeys(rows *sql.Rows) ([]*domain.APIKey, error) {
	keys := []*domain.APIKey{}
	for rows.Next() {
		var key domain.APIKey
		err := rows.Scan(
			&key.ID, &key.OwnerLogin, &key.OwnerEmail, &key.TokenValue,
			&key.Revoked, &key.CreatedAt, &key.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan api key row")
		}
		keys = append(keys, &key)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate api key rows")
	}
	return keys, nil
}

func checkAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrKeyNotFound
	}
	return nil
}

// likePattern wraps a search term for substring matching, escaping LIKE
// metacharacters so user input cannot widen the match.
func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}
