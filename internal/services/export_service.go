package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/msseason/ai-grant-finder/internal/models"
	"github.com/msseason/ai-grant-finder/internal/repositories"
)

// ExportResult holds a generated export file, returned inline rather than
// written to disk.
type ExportResult struct {
	FileName        string
	FileContent     string
	RecordsExported int
}

// ExportService generates CSV exports of a user's applications.
type ExportService interface {
	ExportApplicationsCSV(ctx context.Context, userID uuid.UUID) (*ExportResult, error)
}

type exportService struct {
	appRepo repositories.ApplicationRepository
}

func NewExportService(appRepo repositories.ApplicationRepository) ExportService {
	return &exportService{appRepo: appRepo}
}

func (e *exportService) ExportApplicationsCSV(ctx context.Context, userID uuid.UUID) (*ExportResult, error) {
	apps, err := e.appRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applications: %w", err)
	}

	content, err := generateApplicationsCSV(apps)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	fileName := fmt.Sprintf("applications_export_%s.csv", time.Now().Format("2006-01-02"))

	return &ExportResult{
		FileName:        fileName,
		FileContent:     content,
		RecordsExported: len(apps),
	}, nil
}

func generateApplicationsCSV(apps []*models.Application) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Grant Name",
		"Provider",
		"Amount",
		"Status",
		"Deadline",
		"Award Amount",
		"Assigned To",
		"Notes",
		"Submitted Date",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, app := range apps {
		record := []string{
			app.GrantName,
			app.Provider,
			fmt.Sprintf("%.2f", app.Amount),
			app.Status,
			app.Deadline.Format("2006-01-02"),
			nullFloatToString(app.AwardAmount),
			nullToEmpty(app.AssignedTo),
			nullToEmpty(app.Notes),
			nullDateToString(app.SubmittedDate),
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return sb.String(), nil
}

func nullToEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullFloatToString(f *float64) string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *f)
}

func nullDateToString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
