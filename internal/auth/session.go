package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avelez/agripredict-web/internal/models"
	"github.com/avelez/agripredict-web/internal/services"
)

// SessionCookie is the name of the cookie carrying the opaque session ID.
const SessionCookie = "agripredict_session"

type contextKey string

// sessionKey is the context key for the current session.
const sessionKey = contextKey("session")

// Manager issues, resolves, and destroys cookie-backed login sessions.
type Manager struct {
	sessions services.SessionServiceProvider
	ttl      time.Duration
	secure   bool // set the Secure flag on cookies (production)
}

// NewManager creates a session Manager.
func NewManager(sessions services.SessionServiceProvider, ttl time.Duration, secure bool) *Manager {
	return &Manager{sessions: sessions, ttl: ttl, secure: secure}
}

// Issue creates a session for the user and sets the session cookie.
func (m *Manager) Issue(w http.ResponseWriter, userID, userName string) (models.Session, error) {
	session, err := m.sessions.CreateSession(userID, userName, m.ttl)
	if err != nil {
		return models.Session{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
	return session, nil
}

// Clear destroys the session record (if any) and expires the cookie. The
// redirect after logout happens regardless of the destroy outcome, so the
// store error is only logged.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := m.sessions.DeleteSession(cookie.Value); err != nil {
			log.Error().Err(err).Msg("Failed to destroy session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	})
}

// Current resolves the request's session cookie to a live session.
func (m *Manager) Current(r *http.Request) (models.Session, bool) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return models.Session{}, false
	}

	session, err := m.sessions.GetSession(cookie.Value)
	if err != nil {
		if !errors.Is(err, services.ErrNoSession) {
			log.Error().Err(err).Msg("Failed to look up session")
		}
		return models.Session{}, false
	}
	return session, true
}

// RequireAuth gates a route to authenticated users. Requests without a live
// session are redirected to the login page; the session is passed down via
// context for handlers.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := m.Current(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireGuest keeps logged-in users off the signup and login pages.
func (m *Manager) RequireGuest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.Current(r); ok {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FromContext retrieves the session stored by RequireAuth.
func FromContext(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(sessionKey).(models.Session)
	return session, ok
}
