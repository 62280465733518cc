package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
)

const (
	dateLayout      = "2006-01-02"
	batchesRange    = "Batches!A2:L"
	treatmentsRange = "Treatments!A2:J"
	reportsRange    = "Reports!A:H"
)

// Source reads batch and treatment collections kept in a farm spreadsheet.
// Rows that cannot be parsed are skipped.
type Source struct {
	repo   Repository
	logger *zap.Logger
}

// NewSource builds a spreadsheet-backed inventory source.
func NewSource(repo Repository, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{repo: repo, logger: logger}
}

// ListBatches parses the Batches sheet. Columns: batch ID, breed, hatch date,
// days old, location, live count, isolated count, mortality rate, FCR,
// status, medication active, withdrawal end date.
func (s *Source) ListBatches(ctx context.Context) ([]models.Batch, error) {
	rows, err := s.repo.ReadRange(ctx, batchesRange)
	if err != nil {
		return nil, fmt.Errorf("load batches range: %w", err)
	}

	batches := make([]models.Batch, 0, len(rows))
	for i, row := range rows {
		b, err := parseBatch(row)
		if err != nil {
			s.logger.Debug("skip batch row", zap.Int("row", i+2), zap.Error(err))
			continue
		}
		batches = append(batches, b)
	}
	return batches, nil
}

// ListTreatments parses the Treatments sheet. Columns: case ID, flock ID,
// symptoms (comma separated), medication, dosage, isolation date, recovery
// date, mortality date, withdrawal days, status.
func (s *Source) ListTreatments(ctx context.Context) ([]models.TreatmentRecord, error) {
	rows, err := s.repo.ReadRange(ctx, treatmentsRange)
	if err != nil {
		return nil, fmt.Errorf("load treatments range: %w", err)
	}

	records := make([]models.TreatmentRecord, 0, len(rows))
	for i, row := range rows {
		r, err := parseTreatment(row)
		if err != nil {
			s.logger.Debug("skip treatment row", zap.Int("row", i+2), zap.Error(err))
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// AppendReport writes a one-line summary of a daily health report.
func (s *Source) AppendReport(ctx context.Context, report models.FlockHealthReport) error {
	efficiency := ""
	if report.StaffEfficiency != nil {
		efficiency = strconv.FormatFloat(*report.StaffEfficiency, 'f', 1, 64)
	}
	values := []interface{}{
		report.Date.Format(dateLayout),
		report.Batches,
		report.LiveBirds,
		report.HealthyBirds,
		report.ActiveIsolations,
		strings.Join(report.UnderTreatment, ", "),
		strings.Join(report.MortalityAlerts, ", "),
		efficiency,
	}
	return s.repo.WriteRow(ctx, reportsRange, values)
}

func parseBatch(row []interface{}) (models.Batch, error) {
	if len(row) < 6 {
		return models.Batch{}, fmt.Errorf("expected at least 6 columns, got %d", len(row))
	}

	id := cell(row, 0)
	if id == "" {
		return models.Batch{}, fmt.Errorf("empty batch id")
	}

	live, err := parseInt(cell(row, 5))
	if err != nil {
		return models.Batch{}, fmt.Errorf("live count: %w", err)
	}

	b := models.Batch{
		BatchID:   id,
		Breed:     cell(row, 1),
		Location:  cell(row, 4),
		LiveCount: live,
		Status:    models.BatchActive,
	}

	if v := cell(row, 2); v != "" {
		if b.HatchDate, err = parseDate(v); err != nil {
			return models.Batch{}, fmt.Errorf("hatch date: %w", err)
		}
	}
	if v := cell(row, 3); v != "" {
		if b.DaysOld, err = parseInt(v); err != nil {
			return models.Batch{}, fmt.Errorf("days old: %w", err)
		}
	}
	if v := cell(row, 6); v != "" {
		if b.IsolatedCount, err = parseInt(v); err != nil {
			return models.Batch{}, fmt.Errorf("isolated count: %w", err)
		}
	}
	if v := cell(row, 7); v != "" {
		if b.MortalityRate, err = parseFloat(strings.TrimSuffix(v, "%")); err != nil {
			return models.Batch{}, fmt.Errorf("mortality rate: %w", err)
		}
	}
	if v := cell(row, 8); v != "" {
		if b.FCR, err = parseFloat(v); err != nil {
			return models.Batch{}, fmt.Errorf("fcr: %w", err)
		}
	}
	if v := cell(row, 9); v != "" {
		if b.Status, err = parseBatchStatus(v); err != nil {
			return models.Batch{}, fmt.Errorf("status: %w", err)
		}
	}
	b.MedicationActive = parseBool(cell(row, 10))
	if v := cell(row, 11); v != "" {
		end, err := parseDate(v)
		if err != nil {
			return models.Batch{}, fmt.Errorf("withdrawal end date: %w", err)
		}
		b.WithdrawalEndDate = &end
	}

	return b, nil
}

func parseTreatment(row []interface{}) (models.TreatmentRecord, error) {
	if len(row) < 2 {
		return models.TreatmentRecord{}, fmt.Errorf("expected at least 2 columns, got %d", len(row))
	}

	r := models.TreatmentRecord{
		CaseID:          cell(row, 0),
		FlockID:         cell(row, 1),
		MedicationGiven: cell(row, 3),
		Dosage:          cell(row, 4),
		Status:          models.BirdIsolated,
	}
	if r.CaseID == "" {
		return models.TreatmentRecord{}, fmt.Errorf("empty case id")
	}

	for _, s := range strings.Split(cell(row, 2), ",") {
		if s = strings.TrimSpace(s); s != "" {
			r.Symptoms = append(r.Symptoms, s)
		}
	}

	var err error
	if v := cell(row, 5); v != "" {
		if r.IsolationDate, err = parseDate(v); err != nil {
			return models.TreatmentRecord{}, fmt.Errorf("isolation date: %w", err)
		}
	}
	if r.RecoveryDate, err = parseOptionalDate(cell(row, 6)); err != nil {
		return models.TreatmentRecord{}, fmt.Errorf("recovery date: %w", err)
	}
	if r.MortalityDate, err = parseOptionalDate(cell(row, 7)); err != nil {
		return models.TreatmentRecord{}, fmt.Errorf("mortality date: %w", err)
	}
	if v := cell(row, 8); v != "" {
		if r.WithdrawalPeriodDays, err = parseInt(v); err != nil {
			return models.TreatmentRecord{}, fmt.Errorf("withdrawal days: %w", err)
		}
	}

	if v := cell(row, 9); v != "" {
		status, err := parseBirdStatus(v)
		if err != nil {
			return models.TreatmentRecord{}, err
		}
		r.Status = status
	}

	return r, nil
}

func parseBatchStatus(v string) (models.BatchStatus, error) {
	for _, s := range []models.BatchStatus{models.BatchActive, models.BatchClosed} {
		if strings.EqualFold(v, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown batch status %q", v)
}

func parseBirdStatus(v string) (models.BirdStatus, error) {
	for _, s := range []models.BirdStatus{models.BirdHealthy, models.BirdIsolated, models.BirdRecovered, models.BirdDead} {
		if strings.EqualFold(v, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown bird status %q", v)
}

func cell(row []interface{}, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[idx]))
}

func parseDate(str string) (time.Time, error) {
	if str == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if len(str) > 10 {
		str = str[:10]
	}
	return time.Parse(dateLayout, str)
}

func parseOptionalDate(str string) (*time.Time, error) {
	if str == "" {
		return nil, nil
	}
	t, err := parseDate(str)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseInt(str string) (int, error) {
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.Atoi(strings.ReplaceAll(str, ",", ""))
}

func parseFloat(str string) (float64, error) {
	if str == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	return strconv.ParseFloat(str, 64)
}

func parseBool(str string) bool {
	switch strings.ToLower(str) {
	case "true", "yes", "y", "1", "x":
		return true
	}
	return false
}
