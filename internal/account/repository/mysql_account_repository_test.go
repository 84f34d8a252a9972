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

	"github.com/pklabs/keygate/internal/account/domain"
	"github.com/pklabs/keygate/internal/testutil"
)

func TestMySQLAccountRepository_Create(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewMySQLAccountRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())
	idBytes, err := id.MarshalBinary()
	require.NoError(t, err)

	account := &domain.Account{
		ID:           id,
		Login:        "jdoe",
		Email:        "jdoe@example.com",
		DisplayName:  "John Doe",
		Capabilities: []string{"read"},
		IsActive:     true,
	}

	mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(idBytes, account.Login, account.Email, account.DisplayName, "read", true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(ctx, account)
	assert.NoError(t, err)
}

func TestMySQLAccountRepository_Create_Duplicate(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewMySQLAccountRepository(db)
	ctx := context.Background()

	account := &domain.Account{
		ID:    uuid.Must(uuid.NewV7()),
		Login: "jdoe",
		Email: "jdoe@example.com",
	}

	mock.ExpectExec(`INSERT INTO accounts`).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'jdoe' for key 'accounts.login'"))

	err := repo.Create(ctx, account)
	assert.ErrorIs(t, err, domain.ErrAccountAlreadyExists)
}

func TestMySQLAccountRepository_GetByID(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewMySQLAccountRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())
	idBytes, err := id.MarshalBinary()
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "login", "email", "display_name", "capabilities", "is_active", "created_at"}).
		AddRow(idBytes, "jdoe", "jdoe@example.com", "John Doe", "read,manage_keys", true, time.Now())

	mock.ExpectQuery(`SELECT id, login, email, display_name, capabilities, is_active, created_at`).
		WithArgs(idBytes).
		WillReturnRows(rows)

	account, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, account.ID)
	assert.Equal(t, []string{"read", "manage_keys"}, account.Capabilities)
}

func TestMySQLAccountRepository_GetByLogin_NotFound(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewMySQLAccountRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT id, login, email, display_name, capabilities, is_active, created_at`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "login", "email", "display_name", "capabilities", "is_active", "created_at"}))

	account, err := repo.GetByLogin(ctx, "missing")
	assert.Nil(t, account)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestMySQLAccountRepository_GetByEmail(t *testing.T) {
	db, mock := testutil.SetupMockDB(t)
	repo := NewMySQLAccountRepository(db)
	ctx := context.Background()

	id := uuid.Must(uuid.NewV7())
	idBytes, err := id.MarshalBinary()
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"id", "login", "email", "display_name", "capabilities", "is_active", "created_at"}).
		AddRow(idBytes, "jdoe", "jdoe@example.com", "John Doe", "", true, time.Now())

	mock.ExpectQuery(`SELECT id, login, email, display_name, capabilities, is_active, created_at`).
		WithArgs("jdoe@example.com").
		WillReturnRows(rows)

	account, err := repo.GetByEmail(ctx, "jdoe@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, account.ID)
	assert.Equal(t, "jdoe@example.com", account.Email)
}
