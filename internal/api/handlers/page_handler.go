package handlers

import (
	"net/http"

	"github.com/avelez/agripredict-web/internal/auth"
	"github.com/avelez/agripredict-web/internal/web"
)

// PageHandler serves the public pages.
type PageHandler struct {
	renderer *web.Renderer
	sessions *auth.Manager
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(renderer *web.Renderer, sessions *auth.Manager) *PageHandler {
	return &PageHandler{renderer: renderer, sessions: sessions}
}

// Landing renders the public landing page. It is reachable both logged in
// and out, so the session is resolved directly rather than via a guard.
func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	currentUser := ""
	if session, ok := h.sessions.Current(r); ok {
		currentUser = session.UserName
	}
	h.renderer.Render(w, r, "landing", map[string]any{"CurrentUser": currentUser})
}
