package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/event-manager/internal/models"
)

func TestRegisterUser_Success(t *testing.T) {
	storage, mock := newMockStorage(t)

	user := models.User{
		UID:          "new-uid",
		Username:     "gopher",
		Email:        "gopher@example.com",
		PasswordHash: "hashed",
		Role:         "user",
	}
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(user.UID, user.Username, user.Email, user.PasswordHash,
			user.Role, user.IsActive, user.IsVerified).
		WillReturnRows(sqlmock.NewRows([]string{"uid"}).AddRow("new-uid"))

	uid, err := storage.RegisterUser(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, "new-uid", uid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := storage.RegisterUser(context.Background(), models.User{Email: "gopher@example.com"})

	assert.ErrorIs(t, err, ErrUserExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUser_OtherErrorIsNotUserExists(t *testing.T) {
	storage, mock := newMockStorage(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := storage.RegisterUser(context.Background(), models.User{Email: "gopher@example.com"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
