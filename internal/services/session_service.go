package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/avelez/agripredict-web/internal/models"
)

// ErrNoSession is returned when a session is missing or expired.
var ErrNoSession = errors.New("session not found")

// SessionServiceProvider defines the interface for session services.
type SessionServiceProvider interface {
	CreateSession(userID, userName string, ttl time.Duration) (models.Session, error)
	GetSession(id string) (models.Session, error)
	DeleteSession(id string) error
	DeleteExpiredSessions() (int64, error)
}

// SessionService stores login sessions in the database, keyed by the opaque
// identifier carried in the session cookie.
type SessionService struct {
	db *sql.DB
}

// NewSessionService creates a new SessionService.
func NewSessionService(db *sql.DB) *SessionService {
	return &SessionService{db: db}
}

// CreateSession persists a new session for a user.
func (s *SessionService) CreateSession(userID, userName string, ttl time.Duration) (models.Session, error) {
	created := now()
	session := models.Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		UserName:  userName,
		CreatedAt: created,
		ExpiresAt: created.Add(ttl),
	}

	_, err := s.db.Exec("INSERT INTO sessions (id, user_id, user_name, created_at, expires_at) VALUES (?, ?, ?, ?, ?)",
		session.ID, session.UserID, session.UserName, session.CreatedAt, session.ExpiresAt)
	if err != nil {
		return models.Session{}, err
	}
	return session, nil
}

// GetSession retrieves a session by ID. Expired sessions are treated as
// missing; the background cleaner removes the rows later.
func (s *SessionService) GetSession(id string) (models.Session, error) {
	var session models.Session
	row := s.db.QueryRow("SELECT id, user_id, user_name, created_at, expires_at FROM sessions WHERE id = ?", id)
	err := row.Scan(&session.ID, &session.UserID, &session.UserName, &session.CreatedAt, &session.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, ErrNoSession
		}
		return models.Session{}, err
	}
	if !session.ExpiresAt.After(time.Now().UTC()) {
		return models.Session{}, ErrNoSession
	}
	return session, nil
}

// DeleteSession removes a session, logging the user out.
func (s *SessionService) DeleteSession(id string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	return err
}

// DeleteExpiredSessions purges sessions past their expiry and reports how
// many rows were removed.
func (s *SessionService) DeleteExpiredSessions() (int64, error) {
	res, err := s.db.Exec("DELETE FROM sessions WHERE expires_at <= ?", time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
