package services

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/avelez/agripredict-web/internal/models"
)

// ReportServiceProvider defines the interface for report services.
type ReportServiceProvider interface {
	CreateReport(userID, city, mode string, input map[string]string, output models.PredictionOutput) (models.Report, error)
	GetReportsByUser(userID string) ([]models.Report, error)
}

// ReportService provides business logic for prediction reports.
type ReportService struct {
	db *sql.DB
}

// NewReportService creates a new ReportService.
func NewReportService(db *sql.DB) *ReportService {
	return &ReportService{db: db}
}

// CreateReport persists one prediction request/response pair. Reports are
// immutable; there is no update or delete path.
func (s *ReportService) CreateReport(userID, city, mode string, input map[string]string, output models.PredictionOutput) (models.Report, error) {
	report := models.Report{
		ID:        uuid.New().String(),
		UserID:    userID,
		City:      city,
		Mode:      mode,
		Input:     input,
		Output:    output,
		CreatedAt: now(),
	}

	inputJSON, err := json.Marshal(report.Input)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to encode report input: %w", err)
	}
	outputJSON, err := json.Marshal(report.Output)
	if err != nil {
		return models.Report{}, fmt.Errorf("failed to encode report output: %w", err)
	}

	_, err = s.db.Exec("INSERT INTO reports (id, user_id, city, mode, input_json, output_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		report.ID, report.UserID, report.City, report.Mode, string(inputJSON), string(outputJSON), report.CreatedAt)
	if err != nil {
		return models.Report{}, err
	}
	return report, nil
}

// GetReportsByUser retrieves all reports owned by a user, most recent first.
func (s *ReportService) GetReportsByUser(userID string) ([]models.Report, error) {
	// rowid breaks ties between reports created within the same second
	rows, err := s.db.Query("SELECT id, user_id, city, mode, input_json, output_json, created_at FROM reports WHERE user_id = ? ORDER BY created_at DESC, rowid DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var report models.Report
		var inputJSON, outputJSON string
		if err := rows.Scan(&report.ID, &report.UserID, &report.City, &report.Mode, &inputJSON, &outputJSON, &report.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(inputJSON), &report.Input); err != nil {
			return nil, fmt.Errorf("failed to decode input for report %s: %w", report.ID, err)
		}
		if err := json.Unmarshal([]byte(outputJSON), &report.Output); err != nil {
			return nil, fmt.Errorf("failed to decode output for report %s: %w", report.ID, err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
