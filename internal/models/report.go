package models

import "time"

// PredictionOutput is the triple returned by the external prediction service.
type PredictionOutput struct {
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

// Report is an immutable record of one prediction request and its result.
type Report struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	City      string            `json:"city"` // city for expert mode, district for basic
	Mode      string            `json:"mode"` // "expert" or "basic"
	Input     map[string]string `json:"input"`
	Output    PredictionOutput  `json:"output"`
	CreatedAt time.Time         `json:"createdAt"`
}
