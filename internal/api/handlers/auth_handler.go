package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/avelez/agripredict-web/internal/auth"
	"github.com/avelez/agripredict-web/internal/services"
	"github.com/avelez/agripredict-web/internal/web"
)

// User-facing messages. Both login failure paths must render the identical
// text so the response does not reveal whether the email exists.
const (
	msgEmailTaken         = "Email already used."
	msgSignupFailed       = "Signup failed."
	msgInvalidCredentials = "Invalid credentials."
	msgLoginFailed        = "Login failed."
	msgFieldsRequired     = "All fields are required."
)

// AuthHandler handles signup, login, and logout.
type AuthHandler struct {
	users    services.UserServiceProvider
	events   services.EventServiceProvider
	sessions *auth.Manager
	renderer *web.Renderer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, events services.EventServiceProvider, sessions *auth.Manager, renderer *web.Renderer) *AuthHandler {
	return &AuthHandler{users: users, events: events, sessions: sessions, renderer: renderer}
}

// SignupForm renders the signup page.
func (h *AuthHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "signup", nil)
}

// Signup creates an account and logs the new user in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, r, "signup", map[string]any{"Error": msgSignupFailed})
		return
	}

	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if name == "" || email == "" || password == "" {
		h.renderer.Render(w, r, "signup", map[string]any{"Error": msgFieldsRequired})
		return
	}

	user, err := h.users.CreateUser(name, email, password)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			h.renderer.Render(w, r, "signup", map[string]any{"Error": msgEmailTaken})
			return
		}
		log.Error().Err(err).Str("email", email).Msg("Failed to create user")
		h.renderer.Render(w, r, "signup", map[string]any{"Error": msgSignupFailed})
		return
	}

	if _, err := h.sessions.Issue(w, user.ID, user.Name); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create session after signup")
		h.renderer.Render(w, r, "signup", map[string]any{"Error": msgSignupFailed})
		return
	}

	if err := h.events.CreateEvent("user.signup", "info", "Account created", &user.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to record signup event")
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, "login", nil)
}

// Login authenticates a user and establishes a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.Render(w, r, "login", map[string]any{"Error": msgLoginFailed})
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.users.AuthenticateUser(email, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", email).Msg("Failed authentication attempt")
			h.renderer.Render(w, r, "login", map[string]any{"Error": msgInvalidCredentials})
			return
		}
		log.Error().Err(err).Msg("Authentication lookup failed")
		h.renderer.Render(w, r, "login", map[string]any{"Error": msgLoginFailed})
		return
	}

	if _, err := h.sessions.Issue(w, user.ID, user.Name); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create session after login")
		h.renderer.Render(w, r, "login", map[string]any{"Error": msgLoginFailed})
		return
	}

	if err := h.events.CreateEvent("user.login", "info", "Logged in", &user.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to record login event")
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// Logout destroys the session and returns to the landing page. The redirect
// happens regardless of the destroy outcome.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if session, ok := auth.FromContext(r.Context()); ok {
		if err := h.events.CreateEvent("user.logout", "info", "Logged out", &session.UserID); err != nil {
			log.Warn().Err(err).Msg("Failed to record logout event")
		}
	}
	h.sessions.Clear(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}
