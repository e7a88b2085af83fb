// Package prediction holds the client for the external model-serving
// service. The service is consumed as a black box: the submitted form is
// forwarded as-is and only the {prediction, confidence, message} triple is
// read back.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avelez/agripredict-web/internal/models"
)

// Modes supported by the prediction service, one endpoint each.
const (
	ModeExpert = "expert"
	ModeBasic  = "basic"
)

// ErrMalformedResponse is returned when the service answers without the
// required prediction/confidence/message fields.
var ErrMalformedResponse = errors.New("prediction service returned an unexpected response shape")

// Client calls the external prediction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a prediction client. The timeout bounds the whole call;
// a slow or absent service must not hold requests open indefinitely.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Predict forwards the submitted form fields to the mode's endpoint and
// extracts the prediction triple from the response.
func (c *Client) Predict(ctx context.Context, mode string, input map[string]string) (models.PredictionOutput, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return models.PredictionOutput{}, fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/predict-%s", c.baseURL, mode)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.PredictionOutput{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.PredictionOutput{}, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.PredictionOutput{}, fmt.Errorf("prediction service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Prediction *string  `json:"prediction"`
		Confidence *float64 `json:"confidence"`
		Message    *string  `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return models.PredictionOutput{}, fmt.Errorf("decode response: %w", ErrMalformedResponse)
	}
	if payload.Prediction == nil || payload.Confidence == nil || payload.Message == nil {
		return models.PredictionOutput{}, ErrMalformedResponse
	}

	return models.PredictionOutput{
		Prediction: *payload.Prediction,
		Confidence: *payload.Confidence,
		Message:    *payload.Message,
	}, nil
}
