package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	sessions := NewSessionService(db)

	user, err := users.CreateUser("Alice", "a@x.com", "secret")
	require.NoError(t, err)

	session, err := sessions.CreateSession(user.ID, user.Name, time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, user.ID, session.UserID)
	assert.Equal(t, "Alice", session.UserName)

	got, err := sessions.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	require.NoError(t, sessions.DeleteSession(session.ID))
	_, err = sessions.GetSession(session.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestExpiredSessionIsInvisible(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	sessions := NewSessionService(db)

	user, err := users.CreateUser("Alice", "a@x.com", "secret")
	require.NoError(t, err)

	expired, err := sessions.CreateSession(user.ID, user.Name, -time.Hour)
	require.NoError(t, err)

	_, err = sessions.GetSession(expired.ID)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDeleteExpiredSessions(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	sessions := NewSessionService(db)

	user, err := users.CreateUser("Alice", "a@x.com", "secret")
	require.NoError(t, err)

	_, err = sessions.CreateSession(user.ID, user.Name, -time.Hour)
	require.NoError(t, err)
	live, err := sessions.CreateSession(user.ID, user.Name, time.Hour)
	require.NoError(t, err)

	removed, err := sessions.DeleteExpiredSessions()
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	_, err = sessions.GetSession(live.ID)
	assert.NoError(t, err, "live session must survive the purge")
}
