package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/avelez/agripredict-web/internal/auth"
	"github.com/avelez/agripredict-web/internal/services"
	"github.com/avelez/agripredict-web/internal/web"
)

// recentEventLimit caps the activity list on the dashboard.
const recentEventLimit = 10

// DashboardHandler renders the report history.
type DashboardHandler struct {
	reports  services.ReportServiceProvider
	events   services.EventServiceProvider
	renderer *web.Renderer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(reports services.ReportServiceProvider, events services.EventServiceProvider, renderer *web.Renderer) *DashboardHandler {
	return &DashboardHandler{reports: reports, events: events, renderer: renderer}
}

// Dashboard lists the current user's reports, most recent first, plus their
// recent activity.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	reports, err := h.reports.GetReportsByUser(session.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", session.UserID).Msg("Failed to load reports")
		http.Error(w, "Failed to load reports", http.StatusInternalServerError)
		return
	}

	events, err := h.events.GetRecentEventsForUser(session.UserID, recentEventLimit)
	if err != nil {
		// Activity is a nice-to-have; the dashboard still renders without it.
		log.Warn().Err(err).Str("user_id", session.UserID).Msg("Failed to load recent events")
	}

	h.renderer.Render(w, r, "dashboard", map[string]any{
		"CurrentUser": session.UserName,
		"Reports":     reports,
		"Events":      events,
	})
}
