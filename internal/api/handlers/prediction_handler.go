package handlers

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/avelez/agripredict-web/internal/auth"
	"github.com/avelez/agripredict-web/internal/models"
	"github.com/avelez/agripredict-web/internal/prediction"
	"github.com/avelez/agripredict-web/internal/services"
	"github.com/avelez/agripredict-web/internal/web"
)

// weatherStandIn mirrors the figures shown on the result page. These are
// fixed stand-ins, not live sensor data; a real weather integration would
// replace them (the OPENWEATHER_KEY config slot is reserved for it).
type weatherStandIn struct {
	Temp        int
	Humidity    int
	Description string
}

var (
	expertWeather = weatherStandIn{Temp: 28, Humidity: 50, Description: "Auto"}
	basicWeather  = weatherStandIn{Temp: 30, Humidity: 40, Description: "Auto"}
)

// Stand-in soil figures shown only on the basic result page.
const (
	basicPH         = 7
	basicNitrogen   = 50
	basicPhosphorus = 30
	basicPotassium  = 20
)

// PredictionHandler runs the expert and basic prediction flows.
type PredictionHandler struct {
	predictor *prediction.Client
	reports   services.ReportServiceProvider
	events    services.EventServiceProvider
	renderer  *web.Renderer
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predictor *prediction.Client, reports services.ReportServiceProvider, events services.EventServiceProvider, renderer *web.Renderer) *PredictionHandler {
	return &PredictionHandler{predictor: predictor, reports: reports, events: events, renderer: renderer}
}

// ExpertForm renders the expert input form.
func (h *PredictionHandler) ExpertForm(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	h.renderer.Render(w, r, "expert", map[string]any{"CurrentUser": session.UserName})
}

// BasicForm renders the basic input form.
func (h *PredictionHandler) BasicForm(w http.ResponseWriter, r *http.Request) {
	session, _ := auth.FromContext(r.Context())
	h.renderer.Render(w, r, "basic", map[string]any{"CurrentUser": session.UserName})
}

// Expert forwards the form to the expert endpoint and records a report.
func (h *PredictionHandler) Expert(w http.ResponseWriter, r *http.Request) {
	h.predict(w, r, prediction.ModeExpert, "city", "Expert mode error.")
}

// Basic forwards the form to the basic endpoint and records a report.
func (h *PredictionHandler) Basic(w http.ResponseWriter, r *http.Request) {
	h.predict(w, r, prediction.ModeBasic, "district", "Basic mode error.")
}

// predict is the shared flow: forward the whole form body, extract the
// prediction triple, persist a report, render the result. A failed or
// malformed external call surfaces the plain-text failure message and
// persists nothing.
func (h *PredictionHandler) predict(w http.ResponseWriter, r *http.Request, mode, cityField, failureMsg string) {
	session, ok := auth.FromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Error().Err(err).Str("mode", mode).Msg("Failed to parse prediction form")
		plainTextError(w, failureMsg)
		return
	}
	input := formValues(r)

	output, err := h.predictor.Predict(r.Context(), mode, input)
	if err != nil {
		log.Error().Err(err).Str("mode", mode).Str("user_id", session.UserID).Msg("Prediction call failed")
		h.recordEvent("prediction."+mode+".fail", "error", "Prediction failed", session.UserID)
		plainTextError(w, failureMsg)
		return
	}

	if _, err := h.reports.CreateReport(session.UserID, input[cityField], mode, input, output); err != nil {
		log.Error().Err(err).Str("mode", mode).Str("user_id", session.UserID).Msg("Failed to persist report")
		plainTextError(w, failureMsg)
		return
	}

	h.recordEvent("prediction."+mode, "info", "Prediction: "+output.Prediction, session.UserID)
	h.renderResult(w, r, session.UserName, mode, input, output)
}

func (h *PredictionHandler) renderResult(w http.ResponseWriter, r *http.Request, userName, mode string, input map[string]string, output models.PredictionOutput) {
	data := map[string]any{
		"CurrentUser": userName,
		"Mode":        mode,
		"Input":       input,
		"Prediction":  output.Prediction,
		"Confidence":  output.Confidence,
		"Message":     output.Message,
	}
	if mode == prediction.ModeBasic {
		data["Weather"] = basicWeather
		data["PH"] = basicPH
		data["Nitrogen"] = basicNitrogen
		data["Phosphorus"] = basicPhosphorus
		data["Potassium"] = basicPotassium
	} else {
		data["Weather"] = expertWeather
	}
	h.renderer.Render(w, r, "result", data)
}

func (h *PredictionHandler) recordEvent(eventType, level, message, userID string) {
	if err := h.events.CreateEvent(eventType, level, message, &userID); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}

// formValues flattens the posted form into the schema-free input payload,
// keeping the first value for repeated keys and dropping the CSRF token.
func formValues(r *http.Request) map[string]string {
	input := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if key == "gorilla.csrf.Token" || len(values) == 0 {
			continue
		}
		input[key] = values[0]
	}
	return input
}

func plainTextError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = w.Write([]byte(msg))
}
