package monitoring

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/avelez/agripredict-web/internal/services"
)

// cleanSchedule controls how often expired sessions are purged. Sessions are
// already invisible to lookups once past expiry; this only reclaims rows.
const cleanSchedule = "@every 15m"

// SessionCleaner periodically purges expired sessions from the store.
type SessionCleaner struct {
	sessions services.SessionServiceProvider
	ticker   *time.Ticker
	done     chan bool
}

// NewSessionCleaner creates a new SessionCleaner.
func NewSessionCleaner(sessions services.SessionServiceProvider) *SessionCleaner {
	return &SessionCleaner{
		sessions: sessions,
		done:     make(chan bool),
	}
}

// Run starts the cleanup loop. It blocks until Stop is called.
func (sc *SessionCleaner) Run() {
	schedule, err := cron.ParseStandard(cleanSchedule)
	if err != nil {
		log.Error().Err(err).Str("schedule", cleanSchedule).Msg("SessionCleaner: invalid schedule")
		return
	}

	log.Info().Msg("Starting background session cleaner...")

	// Run once immediately on start
	sc.purge()

	for {
		next := schedule.Next(time.Now())
		sc.ticker = time.NewTicker(time.Until(next))
		select {
		case <-sc.done:
			sc.ticker.Stop()
			log.Info().Msg("Stopping background session cleaner.")
			return
		case <-sc.ticker.C:
			sc.ticker.Stop()
			sc.purge()
		}
	}
}

// Stop halts the cleanup loop.
func (sc *SessionCleaner) Stop() {
	sc.done <- true
}

func (sc *SessionCleaner) purge() {
	removed, err := sc.sessions.DeleteExpiredSessions()
	if err != nil {
		log.Error().Err(err).Msg("SessionCleaner: failed to purge expired sessions")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("SessionCleaner: purged expired sessions")
	}
}
