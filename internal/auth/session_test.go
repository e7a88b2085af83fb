package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelez/agripredict-web/internal/models"
	"github.com/avelez/agripredict-web/internal/services"
)

// fakeSessionService keeps sessions in a map; enough for middleware tests.
type fakeSessionService struct {
	store map[string]models.Session
}

func newFakeSessionService() *fakeSessionService {
	return &fakeSessionService{store: map[string]models.Session{}}
}

func (f *fakeSessionService) CreateSession(userID, userName string, ttl time.Duration) (models.Session, error) {
	session := models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		UserName:  userName,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	f.store[session.ID] = session
	return session, nil
}

func (f *fakeSessionService) GetSession(id string) (models.Session, error) {
	session, ok := f.store[id]
	if !ok || time.Now().After(session.ExpiresAt) {
		return models.Session{}, services.ErrNoSession
	}
	return session, nil
}

func (f *fakeSessionService) DeleteSession(id string) error {
	delete(f.store, id)
	return nil
}

func (f *fakeSessionService) DeleteExpiredSessions() (int64, error) { return 0, nil }

func okHandler(t *testing.T, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthRedirectsWithoutSession(t *testing.T) {
	m := NewManager(newFakeSessionService(), time.Hour, false)

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	m.RequireAuth(okHandler(t, &called)).ServeHTTP(rec, req)

	assert.False(t, called, "protected handler must not run")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireAuthPassesSessionThroughContext(t *testing.T) {
	svc := newFakeSessionService()
	m := NewManager(svc, time.Hour, false)
	session, err := svc.CreateSession("u1", "Alice", time.Hour)
	require.NoError(t, err)

	var got models.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := FromContext(r.Context())
		require.True(t, ok)
		got = s
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	rec := httptest.NewRecorder()
	m.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "Alice", got.UserName)
}

func TestRequireAuthRejectsExpiredSession(t *testing.T) {
	svc := newFakeSessionService()
	m := NewManager(svc, time.Hour, false)
	session, err := svc.CreateSession("u1", "Alice", -time.Minute)
	require.NoError(t, err)

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	rec := httptest.NewRecorder()
	m.RequireAuth(okHandler(t, &called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestRequireGuestRedirectsLoggedInUsers(t *testing.T) {
	svc := newFakeSessionService()
	m := NewManager(svc, time.Hour, false)
	session, err := svc.CreateSession("u1", "Alice", time.Hour)
	require.NoError(t, err)

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session.ID})
	rec := httptest.NewRecorder()
	m.RequireGuest(okHandler(t, &called)).ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestRequireGuestAllowsAnonymous(t *testing.T) {
	m := NewManager(newFakeSessionService(), time.Hour, false)

	var called bool
	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	rec := httptest.NewRecorder()
	m.RequireGuest(okHandler(t, &called)).ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIssueSetsCookieAndClearExpiresIt(t *testing.T) {
	svc := newFakeSessionService()
	m := NewManager(svc, time.Hour, false)

	rec := httptest.NewRecorder()
	session, err := m.Issue(rec, "u1", "Alice")
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, session.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookies[0])
	rec2 := httptest.NewRecorder()
	m.Clear(rec2, req)

	_, err = svc.GetSession(session.ID)
	assert.ErrorIs(t, err, services.ErrNoSession, "Clear must destroy the stored session")

	cleared := rec2.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Less(t, cleared[0].MaxAge, 0)
}
