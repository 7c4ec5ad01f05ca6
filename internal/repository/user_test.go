package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbusdrive/nimbus/internal/model"
)

var userColumns = []string{"id", "email", "name", "password_hash", "avatar_url", "email_verified_at", "created_at"}

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("UNIQUE constraint failed: users.email"))

	err := repo.Create(&model.User{ID: "user-1", Email: "a@example.com", Name: "A"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepositoryByEmail(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)
	hash := "bcrypt-hash"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM users WHERE email = $1`)).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("user-1", "a@example.com", "A", hash, nil, nil, time.Now()))

	user, err := repo.ByEmail("a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.True(t, user.HasPassword())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM users WHERE email = $1`)).
		WithArgs("missing@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err = repo.ByEmail("missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
