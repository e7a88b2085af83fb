package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avelez/agripredict-web/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateUserHashesPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.CreateUser("Alice", "a@x.com", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Empty(t, user.PasswordHash, "hash must not be returned to the caller")

	var stored string
	require.NoError(t, db.QueryRow("SELECT password_hash FROM users WHERE id = ?", user.ID).Scan(&stored))
	assert.NotEqual(t, "secret", stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("secret")))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.CreateUser("Alice", "a@x.com", "secret")
	require.NoError(t, err)

	_, err = svc.CreateUser("Bob", "a@x.com", "other")
	require.ErrorIs(t, err, ErrEmailTaken)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 1, count, "duplicate signup must not create a second user")
}

func TestAuthenticateUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	created, err := svc.CreateUser("Alice", "a@x.com", "secret")
	require.NoError(t, err)

	user, err := svc.AuthenticateUser("a@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.AuthenticateUser("a@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.AuthenticateUser("nobody@x.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown email must fail identically to a wrong password")
}

func TestGetUserByID(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	created, err := svc.CreateUser("Alice", "a@x.com", "secret")
	require.NoError(t, err)

	user, err := svc.GetUserByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = svc.GetUserByID("missing")
	assert.Error(t, err)
}
