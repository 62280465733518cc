package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	"github.com/MagetoJ/AviTrack/internal/service/reporting"
	"github.com/MagetoJ/AviTrack/internal/service/whatsapp"
)

const jobTimeout = 2 * time.Minute

// ReportBuilder produces the daily flock health report.
type ReportBuilder interface {
	BuildDailyReport(ctx context.Context, now time.Time) (models.FlockHealthReport, error)
}

// ReportSink persists a built report somewhere (MongoDB, a spreadsheet tab).
type ReportSink func(ctx context.Context, report models.FlockHealthReport) error

// Options configures a Scheduler.
type Options struct {
	Schedule  string
	Location  *time.Location
	Recipient string
}

// Scheduler runs the daily flock health digest.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	recipient string
	builder   ReportBuilder
	sinks     []ReportSink
	messaging whatsapp.MessagingService
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler creates a new scheduler instance. A nil messaging service
// disables the outbound digest.
func NewScheduler(opts Options, builder ReportBuilder, messaging whatsapp.MessagingService, logger *zap.Logger, sinks ...ReportSink) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		schedule:  opts.Schedule,
		recipient: opts.Recipient,
		builder:   builder,
		sinks:     sinks,
		messaging: messaging,
		logger:    logger,
		now:       func() time.Time { return time.Now().In(loc) },
	}
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runDailyReport); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("daily report failed", zap.Error(err))
	}
}

// RunOnce builds, stores and sends one report. Sink and delivery failures
// are logged so one broken destination does not block the others.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	s.logger.Info("generating daily report")

	report, err := s.builder.BuildDailyReport(ctx, s.now())
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	for i, sink := range s.sinks {
		if err := sink(ctx, report); err != nil {
			s.logger.Error("failed to store daily report", zap.Int("sink", i), zap.Error(err))
		}
	}

	if s.messaging == nil || s.recipient == "" {
		return nil
	}

	req := models.OutboundMessageRequest{
		To:      s.recipient,
		Message: reporting.FormatDigest(report),
	}
	if err := s.messaging.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send daily report", zap.Error(err))
	} else {
		s.logger.Info("daily report sent successfully")
	}
	return nil
}
