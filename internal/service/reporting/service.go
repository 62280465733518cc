package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	"github.com/MagetoJ/AviTrack/internal/service/inventory"
	"github.com/MagetoJ/AviTrack/internal/service/staff"
)

const (
	dateLayout       = "2006-01-02"
	efficiencyWindow = 24 * time.Hour
)

// InventorySnapshotter derives the inventory at a given instant.
type InventorySnapshotter interface {
	SnapshotAt(ctx context.Context, now time.Time) (inventory.Result, error)
}

// StaffReporter aggregates staff punctuality.
type StaffReporter interface {
	Report(ctx context.Context, since time.Time) (staff.Report, error)
}

// Service builds the daily flock health digest.
type Service struct {
	inventory InventorySnapshotter
	staff     StaffReporter
	logger    *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(inv InventorySnapshotter, staffSvc StaffReporter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{inventory: inv, staff: staffSvc, logger: logger}
}

// BuildDailyReport summarises the flock as of now and the staff efficiency
// over the preceding 24 hours.
func (s *Service) BuildDailyReport(ctx context.Context, now time.Time) (models.FlockHealthReport, error) {
	var (
		res inventory.Result
		eff staff.Report
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		res, err = s.inventory.SnapshotAt(gctx, now)
		if err != nil {
			return fmt.Errorf("inventory snapshot: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		eff, err = s.staff.Report(gctx, now.Add(-efficiencyWindow))
		if err != nil {
			return fmt.Errorf("staff efficiency: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.FlockHealthReport{}, err
	}

	report := models.FlockHealthReport{
		Date:            now,
		Batches:         len(res.Batches),
		UnderTreatment:  []string{},
		SlaughterReady:  []string{},
		Overdrawn:       append([]string{}, res.Overdrawn...),
		UnmatchedCases:  append([]string{}, res.Unmatched...),
		MortalityAlerts: []string{},
		StaffEfficiency: eff.Overall.Ptr(),
		CreatedAt:       now,
	}

	for _, b := range res.Batches {
		report.LiveBirds += b.LiveCount
		report.HealthyBirds += b.HealthyCount
		report.ActiveIsolations += b.ActiveIsolations

		if b.MedicationStatus == models.MedicationUnderTreatment {
			report.UnderTreatment = append(report.UnderTreatment, b.BatchID)
		}
		if b.SlaughterReady {
			report.SlaughterReady = append(report.SlaughterReady, b.BatchID)
		}
		if level := inventory.AlertLevelFor(b.MortalityRate); level.Alerting() {
			report.MortalityAlerts = append(report.MortalityAlerts,
				fmt.Sprintf("%s %.2f%% (%s)", b.BatchID, b.MortalityRate, level))
		}
	}

	s.logger.Info("daily report built",
		zap.Int("batches", report.Batches),
		zap.Int("alerts", len(report.MortalityAlerts)))
	return report, nil
}

// FormatDigest renders a report as a plain-text message.
func FormatDigest(r models.FlockHealthReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "AviTrack flock health %s\n", r.Date.Format(dateLayout))
	fmt.Fprintf(&b, "Batches: %d | Live: %d | Healthy: %d | Isolated: %d\n",
		r.Batches, r.LiveBirds, r.HealthyBirds, r.ActiveIsolations)

	if r.StaffEfficiency != nil {
		fmt.Fprintf(&b, "Staff efficiency: %.1f%%\n", *r.StaffEfficiency)
	} else {
		b.WriteString("Staff efficiency: no check-ins\n")
	}

	writeList(&b, "Under treatment", r.UnderTreatment)
	writeList(&b, "Ready for slaughter", r.SlaughterReady)
	writeList(&b, "Mortality alerts", r.MortalityAlerts)
	writeList(&b, "Overdrawn batches", r.Overdrawn)
	writeList(&b, "Unmatched cases", r.UnmatchedCases)

	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
