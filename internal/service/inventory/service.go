package inventory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
)

// Source supplies the raw batch and treatment collections.
type Source interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
	ListTreatments(ctx context.Context) ([]models.TreatmentRecord, error)
}

// Recorder receives data-quality figures for every derivation.
type Recorder interface {
	ObserveDerivation(batches, unmatched, overdrawn int)
}

// Service loads snapshots from a Source and derives inventory from them.
type Service struct {
	source   Source
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new inventory service. recorder may be nil.
func NewService(source Source, recorder Recorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:   source,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// Snapshot derives inventory for the current moment.
func (s *Service) Snapshot(ctx context.Context) (Result, error) {
	return s.SnapshotAt(ctx, s.now())
}

// SnapshotAt derives inventory as of now. Batches and treatments are loaded
// concurrently.
func (s *Service) SnapshotAt(ctx context.Context, now time.Time) (Result, error) {
	var (
		batches    []models.Batch
		treatments []models.TreatmentRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		batches, err = s.source.ListBatches(gctx)
		if err != nil {
			return fmt.Errorf("load batches: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		treatments, err = s.source.ListTreatments(gctx)
		if err != nil {
			return fmt.Errorf("load treatments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := Calculate(batches, treatments, now)

	if len(res.Unmatched) > 0 {
		s.logger.Warn("isolated treatment cases reference unknown batches",
			zap.Strings("case_ids", res.Unmatched))
	}
	if len(res.Overdrawn) > 0 {
		s.logger.Warn("batches with more isolations than live birds",
			zap.Strings("batch_ids", res.Overdrawn))
	}
	if s.recorder != nil {
		s.recorder.ObserveDerivation(len(res.Batches), len(res.Unmatched), len(res.Overdrawn))
	}

	return res, nil
}
