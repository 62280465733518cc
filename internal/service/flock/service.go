package flock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	"github.com/MagetoJ/AviTrack/internal/service/inventory"
)

var (
	// ErrBatchNotFound indicates an entry references a batch that does not exist.
	ErrBatchNotFound = errors.New("batch not found")
	// ErrBatchExists indicates a batch ID is already taken.
	ErrBatchExists = errors.New("batch already exists")
	// ErrCaseNotFound indicates an unknown treatment case.
	ErrCaseNotFound = errors.New("treatment case not found")
	// ErrInvalidEntry indicates an entry is inconsistent with the batch state.
	ErrInvalidEntry = errors.New("invalid entry")
	// ErrNotSlaughterReady indicates the batch is still in withdrawal or has no healthy birds.
	ErrNotSlaughterReady = errors.New("batch not slaughter ready")
)

const day = 24 * time.Hour

// Store persists flock entities and field entries.
type Store interface {
	GetBatch(ctx context.Context, batchID string) (models.Batch, error)
	CreateBatch(ctx context.Context, batch models.Batch) error
	// ApplyBatchDelta changes batch counters atomically. It returns
	// models.ErrConflict when the delta's guards fail against the stored batch.
	ApplyBatchDelta(ctx context.Context, batchID string, delta models.BatchDelta) (models.Batch, error)
	GetTreatment(ctx context.Context, caseID string) (models.TreatmentRecord, error)
	ListTreatmentsByFlock(ctx context.Context, flockID string) ([]models.TreatmentRecord, error)
	SaveTreatments(ctx context.Context, records []models.TreatmentRecord) error
	UpdateTreatment(ctx context.Context, record models.TreatmentRecord) error
	SaveDailyEntry(ctx context.Context, entry models.DailyEntry) error
	SaveSlaughter(ctx context.Context, entry models.SlaughterEntry) error
}

// Service applies field entries from shed staff to batches.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// NewService wires a flock service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return "TR-" + uuid.NewString() },
	}
}

// CreateBatch registers a new active batch.
func (s *Service) CreateBatch(ctx context.Context, in models.BatchInput) (models.Batch, error) {
	if _, err := s.store.GetBatch(ctx, in.BatchID); err == nil {
		return models.Batch{}, fmt.Errorf("%w: %s", ErrBatchExists, in.BatchID)
	} else if !errors.Is(err, models.ErrNotFound) {
		return models.Batch{}, fmt.Errorf("lookup batch %s: %w", in.BatchID, err)
	}

	now := s.now()
	if in.HatchDate.After(now) {
		return models.Batch{}, fmt.Errorf("%w: hatch date in the future", ErrInvalidEntry)
	}

	batch := models.Batch{
		BatchID:      in.BatchID,
		Breed:        in.Breed,
		HatchDate:    in.HatchDate,
		DaysOld:      int(now.Sub(in.HatchDate) / day),
		Location:     in.HouseLocation,
		InitialCount: in.InitialCount,
		LiveCount:    in.InitialCount,
		Status:       models.BatchActive,
	}

	if err := s.store.CreateBatch(ctx, batch); err != nil {
		return models.Batch{}, fmt.Errorf("create batch: %w", err)
	}

	s.logger.Info("batch created", zap.String("batch_id", batch.BatchID), zap.Int("live_count", batch.LiveCount))
	return batch, nil
}

// Isolate moves sick birds into the sick bay, opening one treatment case per
// bird, and extends the batch withdrawal window. Only healthy birds can be
// isolated.
func (s *Service) Isolate(ctx context.Context, in models.SickBirdEntry) ([]models.TreatmentRecord, error) {
	if in.Count < 1 {
		return nil, fmt.Errorf("%w: at least one bird must be isolated", ErrInvalidEntry)
	}
	if in.WithdrawalPeriodDays < 0 {
		return nil, fmt.Errorf("%w: negative withdrawal period", ErrInvalidEntry)
	}

	now := s.now()
	derived, err := s.derive(ctx, in.BatchID, now)
	if err != nil {
		return nil, err
	}
	if in.Count > derived.HealthyCount {
		return nil, fmt.Errorf("%w: cannot isolate %d birds, %d healthy", ErrInvalidEntry, in.Count, derived.HealthyCount)
	}

	end := WithdrawalEnd(now, in.WithdrawalPeriodDays)
	delta := models.BatchDelta{
		Isolated:        in.Count,
		MinAvailable:    in.Count,
		WithdrawalEnd:   &end,
		StartMedication: true,
	}
	batch, err := s.apply(ctx, in.BatchID, delta)
	if err != nil {
		return nil, err
	}

	symptoms := splitSymptoms(in.Symptoms)
	records := make([]models.TreatmentRecord, 0, in.Count)
	for i := 0; i < in.Count; i++ {
		records = append(records, models.TreatmentRecord{
			CaseID:               s.newID(),
			FlockID:              batch.BatchID,
			Symptoms:             append([]string(nil), symptoms...),
			MedicationGiven:      in.MedicationName,
			Dosage:               in.Dosage,
			IsolationDate:        now,
			WithdrawalPeriodDays: in.WithdrawalPeriodDays,
			Status:               models.BirdIsolated,
		})
	}

	if err := s.store.SaveTreatments(ctx, records); err != nil {
		s.revert(ctx, batch.BatchID, delta)
		return nil, fmt.Errorf("save treatments: %w", err)
	}

	s.logger.Info("birds isolated",
		zap.String("batch_id", batch.BatchID),
		zap.Int("count", in.Count),
		zap.String("medication", in.MedicationName),
		zap.Timep("withdrawal_end", batch.WithdrawalEndDate))
	return records, nil
}

// ResolveCase closes an isolated case as recovered or dead.
func (s *Service) ResolveCase(ctx context.Context, caseID string, outcome models.BirdStatus) (models.TreatmentRecord, error) {
	if outcome != models.BirdRecovered && outcome != models.BirdDead {
		return models.TreatmentRecord{}, fmt.Errorf("%w: outcome must be Recovered or Dead", ErrInvalidEntry)
	}

	record, err := s.store.GetTreatment(ctx, caseID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.TreatmentRecord{}, fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
		}
		return models.TreatmentRecord{}, fmt.Errorf("lookup case %s: %w", caseID, err)
	}
	if record.Status != models.BirdIsolated {
		return models.TreatmentRecord{}, fmt.Errorf("%w: case %s is %s", ErrInvalidEntry, caseID, record.Status)
	}

	now := s.now()
	record.Status = outcome
	if outcome == models.BirdDead {
		record.MortalityDate = &now
	} else {
		record.RecoveryDate = &now
	}

	if err := s.store.UpdateTreatment(ctx, record); err != nil {
		return models.TreatmentRecord{}, fmt.Errorf("update case: %w", err)
	}

	// The batch may be gone; the case itself is still closed.
	batch, err := s.store.GetBatch(ctx, record.FlockID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		s.logger.Warn("resolved case references unknown batch", zap.String("case_id", caseID), zap.String("flock_id", record.FlockID))
		return record, nil
	case err != nil:
		return models.TreatmentRecord{}, fmt.Errorf("lookup batch %s: %w", record.FlockID, err)
	}

	delta := models.BatchDelta{Isolated: -1}
	if outcome == models.BirdDead && batch.LiveCount > 0 {
		delta.Live = -1
		delta.Dead = 1
	}
	if _, err := s.apply(ctx, batch.BatchID, delta); err != nil {
		return models.TreatmentRecord{}, err
	}

	return record, nil
}

// RecordDailyEntry stores a daily log and deducts reported deaths from the batch.
func (s *Service) RecordDailyEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error) {
	batch, err := s.batch(ctx, entry.BatchID)
	if err != nil {
		return models.DailyEntry{}, err
	}

	delta := models.BatchDelta{Live: -entry.MortalityCount, Dead: entry.MortalityCount}
	if _, ok := batch.Apply(delta); !ok || entry.MortalityCount < 0 {
		return models.DailyEntry{}, fmt.Errorf("%w: mortality %d exceeds live count %d", ErrInvalidEntry, entry.MortalityCount, batch.LiveCount)
	}
	if entry.MortalityCount > 0 && entry.MortalityReason == "" {
		entry.MortalityReason = models.ReasonUnknown
	}

	if entry.MortalityCount > 0 {
		if _, err := s.apply(ctx, batch.BatchID, delta); err != nil {
			return models.DailyEntry{}, err
		}
	}

	if err := s.store.SaveDailyEntry(ctx, entry); err != nil {
		if entry.MortalityCount > 0 {
			s.revert(ctx, batch.BatchID, delta)
		}
		return models.DailyEntry{}, fmt.Errorf("save daily entry: %w", err)
	}

	return entry, nil
}

// RecordSlaughter sends healthy birds to processing once the batch has
// cleared its withdrawal period.
func (s *Service) RecordSlaughter(ctx context.Context, entry models.SlaughterEntry) (models.SlaughterEntry, error) {
	if entry.DressedWeight > entry.LiveWeightKg {
		return models.SlaughterEntry{}, fmt.Errorf("%w: dressed weight exceeds live weight", ErrInvalidEntry)
	}

	now := s.now()
	derived, err := s.derive(ctx, entry.BatchID, now)
	if err != nil {
		return models.SlaughterEntry{}, err
	}
	if !derived.SlaughterReady {
		return models.SlaughterEntry{}, fmt.Errorf("%w: %s", ErrNotSlaughterReady, entry.BatchID)
	}
	if entry.HeadCount > derived.HealthyCount {
		return models.SlaughterEntry{}, fmt.Errorf("%w: head count %d exceeds %d healthy birds", ErrInvalidEntry, entry.HeadCount, derived.HealthyCount)
	}

	if entry.Date.IsZero() {
		entry.Date = now
	}

	delta := models.BatchDelta{
		Live:           -entry.HeadCount,
		MinAvailable:   entry.HeadCount,
		CloseWhenEmpty: derived.ActiveIsolations == 0,
	}
	if _, err := s.apply(ctx, entry.BatchID, delta); err != nil {
		return models.SlaughterEntry{}, err
	}

	if err := s.store.SaveSlaughter(ctx, entry); err != nil {
		s.revert(ctx, entry.BatchID, delta)
		return models.SlaughterEntry{}, fmt.Errorf("save slaughter: %w", err)
	}

	s.logger.Info("slaughter recorded", zap.String("batch_id", entry.BatchID), zap.Int("head_count", entry.HeadCount))
	return entry, nil
}

// WithdrawalEnd returns the moment a medication withdrawal period expires.
func WithdrawalEnd(isolation time.Time, days int) time.Time {
	return isolation.AddDate(0, 0, days)
}

func (s *Service) batch(ctx context.Context, batchID string) (models.Batch, error) {
	batch, err := s.store.GetBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.Batch{}, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
		}
		return models.Batch{}, fmt.Errorf("lookup batch %s: %w", batchID, err)
	}
	return batch, nil
}

// derive loads a batch with its cases and computes its inventory row.
func (s *Service) derive(ctx context.Context, batchID string, now time.Time) (models.BatchInventory, error) {
	batch, err := s.batch(ctx, batchID)
	if err != nil {
		return models.BatchInventory{}, err
	}
	treatments, err := s.store.ListTreatmentsByFlock(ctx, batchID)
	if err != nil {
		return models.BatchInventory{}, fmt.Errorf("load treatments: %w", err)
	}
	return inventory.Calculate([]models.Batch{batch}, treatments, now).Batches[0], nil
}

func (s *Service) apply(ctx context.Context, batchID string, delta models.BatchDelta) (models.Batch, error) {
	batch, err := s.store.ApplyBatchDelta(ctx, batchID, delta)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.Batch{}, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	case errors.Is(err, models.ErrConflict):
		return models.Batch{}, fmt.Errorf("%w: batch %s no longer has enough birds", ErrInvalidEntry, batchID)
	case err != nil:
		return models.Batch{}, fmt.Errorf("update batch %s: %w", batchID, err)
	}
	return batch, nil
}

// revert undoes an applied delta after a later write failed.
func (s *Service) revert(ctx context.Context, batchID string, delta models.BatchDelta) {
	if _, err := s.store.ApplyBatchDelta(ctx, batchID, delta.Inverse()); err != nil {
		s.logger.Error("failed to revert batch counters", zap.String("batch_id", batchID), zap.Error(err))
	}
}

func splitSymptoms(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' || r == '\n' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
