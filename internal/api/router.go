package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/avelez/agripredict-web/internal/api/handlers"
	"github.com/avelez/agripredict-web/internal/auth"
	"github.com/avelez/agripredict-web/internal/prediction"
	"github.com/avelez/agripredict-web/internal/services"
	"github.com/avelez/agripredict-web/internal/web"
)

// NewRouter creates and configures a new Chi router. CSRF protection is
// layered on top in main so tests can exercise routes directly.
func NewRouter(
	renderer *web.Renderer,
	sessions *auth.Manager,
	users services.UserServiceProvider,
	reports services.ReportServiceProvider,
	events services.EventServiceProvider,
	predictor *prediction.Client,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	pageHandler := handlers.NewPageHandler(renderer, sessions)
	authHandler := handlers.NewAuthHandler(users, events, sessions, renderer)
	dashboardHandler := handlers.NewDashboardHandler(reports, events, renderer)
	predictionHandler := handlers.NewPredictionHandler(predictor, reports, events, renderer)

	r.Get("/", pageHandler.Landing)

	// Guest-only pages: logged-in users are bounced to the dashboard
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireGuest)
		r.Get("/signup", authHandler.SignupForm)
		r.Post("/signup", authHandler.Signup)
		r.Get("/login", authHandler.LoginForm)
		r.Post("/login", authHandler.Login)
	})

	// Authenticated pages
	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireAuth)
		r.Get("/logout", authHandler.Logout)
		r.Get("/dashboard", dashboardHandler.Dashboard)
		r.Get("/expert", predictionHandler.ExpertForm)
		r.Post("/expert", predictionHandler.Expert)
		r.Get("/basic", predictionHandler.BasicForm)
		r.Post("/basic", predictionHandler.Basic)
	})

	return r
}
