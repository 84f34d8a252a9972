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

// MySQLKeyRepository handles API key persistence for MySQL
type MySQLKeyRepository struct {
	db        *sql.DB
	txManager database.TxManager
}

// NewMySQLKeyRepository creates a new MySQLKeyRepository
func NewMySQLKeyRepository(db *sql.DB) *MySQLKeyRepository {
	return &MySQLKeyRepository{
		db:        db,
		txManager: database.NewTxManager(db),
	}
}

const mysqlKeyColumns = `id, owner_login, owner_email, token_value, revoked, created_at, updated_at`

// CreateOrRotate inserts a key for the owner, or replaces the token value in
// place when the owner already has one. Rotation refreshes created_at, so a
// rotated key counts as new for newest-first listings. The revoked flag of an
// existing row is left untouched. Returns the stored row.
//
// MySQL has no RETURNING, so this updates first, inserts on a miss, and reads
// the row back, all inside one transaction. ON DUPLICATE KEY UPDATE is
// deliberately avoided: it would also fire on a token value collision and
// overwrite another owner's row.
func (r *MySQLKeyRepository) CreateOrRotate(ctx context.Context, key *domain.APIKey) (*domain.APIKey, error) {
	var stored *domain.APIKey

	err := r.txManager.WithTx(ctx, func(ctx context.Context) error {
		querier := database.GetTx(ctx, r.db)

		updateQuery := `UPDATE api_keys SET token_value = ?, owner_email = ?, created_at = NOW(), updated_at = NOW()
						WHERE owner_login = ?`

		result, err := querier.ExecContext(ctx, updateQuery, key.TokenValue, key.OwnerEmail, key.OwnerLogin)
		if err != nil {
			if isMySQLUniqueViolation(err) {
				return domain.ErrKeyAlreadyExists
			}
			return apperrors.Wrap(err, "failed to rotate api key")
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return apperrors.Wrap(err, "failed to read affected rows")
		}

		if affected == 0 {
			uuidBytes, err := key.ID.MarshalBinary()
			if err != nil {
				return apperrors.Wrap(err, "failed to marshal UUID")
			}

			insertQuery := `INSERT INTO api_keys (id, owner_login, owner_email, token_value, revoked, created_at, updated_at)
							VALUES (?, ?, ?, ?, FALSE, NOW(), NOW())`

			if _, err := querier.ExecContext(ctx, insertQuery, uuidBytes, key.OwnerLogin, key.OwnerEmail, key.TokenValue); err != nil {
				if isMySQLUniqueViolation(err) {
					return domain.ErrKeyAlreadyExists
				}
				return apperrors.Wrap(err, "failed to create api key")
			}
		}

		stored, err = r.GetByOwner(ctx, key.OwnerLogin)
		return err
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// GetByValue retrieves a key by its exact token value. The binary collation
// forces a case-sensitive comparison regardless of the column default.
func (r *MySQLKeyRepository) GetByValue(ctx context.Context, value string) (*domain.APIKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM api_keys
			  WHERE token_value = ? COLLATE utf8mb4_bin`

	return scanMySQLKey(querier.QueryRowContext(ctx, query, value), "failed to get api key by value")
}

// GetByOwner retrieves the key bound to the given owner login
func (r *MySQLKeyRepository) GetByOwner(ctx context.Context, ownerLogin string) (*domain.APIKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM api_keys WHERE owner_login = ?`

	return scanMySQLKey(querier.QueryRowContext(ctx, query, ownerLogin), "failed to get api key by owner")
}

// List retrieves keys ordered by creation time, newest first
func (r *MySQLKeyRepository) List(ctx context.Context, offset, limit int) ([]*domain.APIKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM api_keys
			  ORDER BY created_at DESC LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list api keys")
	}
	defer rows.Close()

	return collectMySQLKeys(rows)
}

// Search retrieves keys whose token value, owner login, or owner email
// contains the given substring, ordered by creation time, newest first
func (r *MySQLKeyRepository) Search(ctx context.Context, term string, offset, limit int) ([]*domain.APIKey, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + mysqlKeyColumns + ` FROM api_keys
			  WHERE token_value LIKE ? OR owner_login LIKE ? OR owner_email LIKE ?
			  ORDER BY created_at DESC LIMIT ? OFFSET ?`

	pattern := likePattern(term)
	rows, err := querier.QueryContext(ctx, query, pattern, pattern, pattern, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to search api keys")
	}
	defer rows.Close()

	return collectMySQLKeys(rows)
}

// SetRevoked updates the revoked flag of a key
func (r *MySQLKeyRepository) SetRevoked(ctx context.Context, id uuid.UUID, revoked bool) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE api_keys SET revoked = ?, updated_at = NOW() WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, revoked, uuidBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to update api key revocation")
	}
	return checkAffected(result)
}

// Delete removes a key permanently
func (r *MySQLKeyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `DELETE FROM api_keys WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, uuidBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete api key")
	}
	return checkAffected(result)
}

func scanMySQLKey(row rowScanner, wrapMsg string) (*domain.APIKey, error) {
	var key domain.APIKey
	var idBytes []byte

	err := row.Scan(
		&idBytes, &key.OwnerLogin, &key.OwnerEmail, &key.TokenValue,
		&key.Revoked, &key.CreatedAt, &key.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrKeyNotFound
		}
		return nil, apperrors.Wrap(err, wrapMsg)
	}

	// Convert bytes back to UUID
	if err := key.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	return &key, nil
}

func collectMySQLKeys(rows *sql.Rows) ([]*domain.APIKey, error) {
	keys := []*domain.APIKey{}
	for rows.Next() {
		var key domain.APIKey
		var idBytes []byte
		err := rows.Scan(
			&idBytes, &key.OwnerLogin, &key.OwnerEmail, &key.TokenValue,
			&key.Revoked, &key.CreatedAt, &key.UpdatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan api key row")
		}
		if err := key.ID.UnmarshalBinary(idBytes); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
		}
		keys = append(keys, &key)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate api key rows")
	}
	return keys, nil
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
