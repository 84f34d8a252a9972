package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pklabs/keygate/internal/apikey/domain"
	"github.com/pklabs/keygate/internal/testutil"

	apperrors "github.com/pklabs/keygate/internal/errors"
)

const keyColumnList = "id, owner_login, owner_email, token_value, revoked, created_at, updated_at"

func keyColumns() []string {
	return []string{"id", "owner_login", "owner_email", "token_value", "revoked", "created_at", "updated_at"}
}

func TestPostgreSQLKeyRepository_CreateOrRotate(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())
	key := &domain.APIKey{
		ID:         id,
		OwnerLogin: "jdoe",
		OwnerEmail: "jdoe@example.com",
		TokenValue: "pkl_token",
	}

	rows := sqlmock.NewRows(keyColumns()).
		AddRow(id, "jdoe", "jdoe@example.com", "pkl_token", false, time.Now(), time.Now())

	mock.ExpectQuery(`INSERT INTO api_keys`).
		WithArgs(id, "jdoe", "jdoe@example.com", "pkl_token").
		WillReturnRows(rows)

	stored, err := repo.CreateOrRotate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, id, stored.ID)
	assert.Equal(t, "pkl_token", stored.TokenValue)
	assert.False(t, stored.Revoked)
}

func TestPostgreSQLKeyRepository_CreateOrRotate_PreservesRevoked(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	existingID := uuid.Must(uuid.NewV7())
	key := &domain.APIKey{
		ID:         uuid.Must(uuid.NewV7()),
		OwnerLogin: "jdoe",
		OwnerEmail: "jdoe@example.com",
		TokenValue: "pkl_rotated",
	}

	// Upsert hits the existing row: its id and revoked flag survive rotation
	rows := sqlmock.NewRows(keyColumns()).
		AddRow(existingID, "jdoe", "jdoe@example.com", "pkl_rotated", true, time.Now(), time.Now())

	mock.ExpectQuery(`INSERT INTO api_keys`).
		WithArgs(key.ID, "jdoe", "jdoe@example.com", "pkl_rotated").
		WillReturnRows(rows)

	stored, err := repo.CreateOrRotate(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, existingID, stored.ID)
	assert.True(t, stored.Revoked)
	assert.Equal(t, "pkl_rotated", stored.TokenValue)
}

func TestPostgreSQLKeyRepository_CreateOrRotate_RefreshesCreatedAt(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	key := &domain.APIKey{
		ID:         uuid.Must(uuid.NewV7()),
		OwnerLogin: "jdoe",
		OwnerEmail: "jdoe@example.com",
		TokenValue: "pkl_rotated",
	}

	rows := sqlmock.NewRows(keyColumns()).
		AddRow(key.ID, "jdoe", "jdoe@example.com", "pkl_rotated", false, time.Now(), time.Now())

	// A rotated key must surface in newest-first listings, so the conflict
	// branch has to reset created_at alongside the token value.
	mock.ExpectQuery(`DO UPDATE\s+SET token_value = EXCLUDED.token_value, owner_email = EXCLUDED.owner_email, created_at = NOW\(\), updated_at = NOW\(\)`).
		WithArgs(key.ID, "jdoe", "jdoe@example.com", "pkl_rotated").
		WillReturnRows(rows)

	_, err := repo.CreateOrRotate(ctx, key)
	require.NoError(t, err)
}

func TestPostgreSQLKeyRepository_CreateOrRotate_TokenCollision(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	key := &domain.APIKey{
		ID:         uuid.Must(uuid.NewV7()),
		OwnerLogin: "jdoe",
		OwnerEmail: "jdoe@example.com",
		TokenValue: "pkl_taken",
	}

	mock.ExpectQuery(`INSERT INTO api_keys`).
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "api_keys_token_value_key"`))

	stored, err := repo.CreateOrRotate(ctx, key)
	assert.Nil(t, stored)
	assert.ErrorIs(t, err, domain.ErrKeyAlreadyExists)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestPostgreSQLKeyRepository_GetByValue(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())
	rows := sqlmock.NewRows(keyColumns()).
		AddRow(id, "jdoe", "jdoe@example.com", "pkl_token", false, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT ` + keyColumnList + ` FROM api_keys WHERE token_value`).
		WithArgs("pkl_token").
		WillReturnRows(rows)

	key, err := repo.GetByValue(ctx, "pkl_token")
	require.NoError(t, err)
	assert.Equal(t, id, key.ID)
	assert.Equal(t, "jdoe", key.OwnerLogin)
}

func TestPostgreSQLKeyRepository_GetByValue_NotFound(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT ` + keyColumnList + ` FROM api_keys WHERE token_value`).
		WithArgs("pkl_missing").
		WillReturnRows(sqlmock.NewRows(keyColumns()))

	key, err := repo.GetByValue(ctx, "pkl_missing")
	assert.Nil(t, key)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestPostgreSQLKeyRepository_GetByOwner(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())
	rows := sqlmock.NewRows(keyColumns()).
		AddRow(id, "jdoe", "jdoe@example.com", "pkl_token", false, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT ` + keyColumnList + ` FROM api_keys WHERE owner_login`).
		WithArgs("jdoe").
		WillReturnRows(rows)

	key, err := repo.GetByOwner(ctx, "jdoe")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", key.OwnerLogin)
}

func TestPostgreSQLKeyRepository_List(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows(keyColumns()).
		AddRow(uuid.Must(uuid.NewV7()), "new", "new@example.com", "pkl_b", false, time.Now(), time.Now()).
		AddRow(uuid.Must(uuid.NewV7()), "old", "old@example.com", "pkl_a", true, time.Now().Add(-time.Hour), time.Now())

	mock.ExpectQuery(`SELECT ` + keyColumnList + ` FROM api_keys\s+ORDER BY created_at DESC`).
		WithArgs(50, 0).
		WillReturnRows(rows)

	keys, err := repo.List(ctx, 0, 50)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "new", keys[0].OwnerLogin)
	assert.Equal(t, "old", keys[1].OwnerLogin)
}

func TestPostgreSQLKeyRepository_List_Empty(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT ` + keyColumnList + ` FROM api_keys\s+ORDER BY created_at DESC`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(keyColumns()))

	keys, err := repo.List(ctx, 0, 50)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.NotNil(t, keys)
}

func TestPostgreSQLKeyRepository_Search(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows(keyColumns()).
		AddRow(uuid.Must(uuid.NewV7()), "jdoe", "jdoe@example.com", "pkl_abc", false, time.Now(), time.Now())

	mock.ExpectQuery(`SELECT `+keyColumnList+` FROM api_keys\s+WHERE token_value LIKE \$1 OR owner_login LIKE \$1 OR owner_email LIKE \$1`).
		WithArgs("%abc%", 50, 0).
		WillReturnRows(rows)

	keys, err := repo.Search(ctx, "abc", 0, 50)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "pkl_abc", keys[0].TokenValue)
}

func TestPostgreSQLKeyRepository_Search_MatchesEmail(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows(keyColumns()).
		AddRow(uuid.Must(uuid.NewV7()), "jdoe", "jdoe@example.com", "pkl_abc", false, time.Now(), time.Now())

	mock.ExpectQuery(`OR owner_email LIKE \$1`).
		WithArgs("%example.com%", 50, 0).
		WillReturnRows(rows)

	keys, err := repo.Search(ctx, "example.com", 0, 50)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "jdoe@example.com", keys[0].OwnerEmail)
}

func TestPostgreSQLKeyRepository_Search_EscapesPattern(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT ` + keyColumnList + ` FROM api_keys\s+WHERE token_value LIKE`).
		WithArgs(`%a\%b\_c%`, 50, 0).
		WillReturnRows(sqlmock.NewRows(keyColumns()))

	_, err := repo.Search(ctx, "a%b_c", 0, 50)
	assert.NoError(t, err)
}

func TestPostgreSQLKeyRepository_SetRevoked(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(`UPDATE api_keys SET revoked`).
		WithArgs(true, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetRevoked(ctx, id, true)
	assert.NoError(t, err)
}

func TestPostgreSQLKeyRepository_SetRevoked_NotFound(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(`UPDATE api_keys SET revoked`).
		WithArgs(false, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetRevoked(ctx, id, false)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestPostgreSQLKeyRepository_Delete(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(`DELETE FROM api_keys WHERE id`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(ctx, id)
	assert.NoError(t, err)
}

func TestPostgreSQLKeyRepository_Delete_NotFound(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewPostgreSQLKeyRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(`DELETE FROM api_keys WHERE id`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(ctx, id)
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%abc%", likePattern("abc"))
	assert.Equal(t, `%a\%b%`, likePattern("a%b"))
	assert.Equal(t, `%a\_b%`, likePattern("a_b"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}
