package staff

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
)

// ErrUnknownStaff indicates a check-in for someone not on the roster.
var ErrUnknownStaff = errors.New("unknown staff member")

// Store persists roster and check-in data.
type Store interface {
	GetStaff(ctx context.Context, id string) (models.Staff, error)
	SaveCheckIn(ctx context.Context, checkIn models.CheckIn) error
	ListCheckIns(ctx context.Context, since time.Time) ([]models.CheckIn, error)
}

// MemberEfficiency is one worker's punctuality figure.
type MemberEfficiency struct {
	StaffID    string            `json:"staff_id"`
	CheckIns   int               `json:"check_ins"`
	Efficiency models.Percentage `json:"efficiency"`
}

// Report aggregates punctuality over a window.
type Report struct {
	Since   time.Time          `json:"since"`
	Overall models.Percentage  `json:"overall"`
	Members []MemberEfficiency `json:"members"`
}

// Service records check-ins and reports staff efficiency.
type Service struct {
	store  Store
	grace  time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a staff service.
func NewService(store Store, grace time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, grace: grace, logger: logger, now: time.Now}
}

// RecordCheckIn classifies and stores a check-in. A zero At means now.
func (s *Service) RecordCheckIn(ctx context.Context, in models.CheckInInput) (models.CheckIn, error) {
	if _, err := s.store.GetStaff(ctx, in.StaffID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.CheckIn{}, fmt.Errorf("%w: %s", ErrUnknownStaff, in.StaffID)
		}
		return models.CheckIn{}, fmt.Errorf("lookup staff %s: %w", in.StaffID, err)
	}

	at := in.At
	if at.IsZero() {
		at = s.now()
	}

	checkIn := models.CheckIn{
		StaffID:   in.StaffID,
		ShiftDate: in.ShiftStart,
		At:        at,
		Status:    ClassifyCheckIn(at, in.ShiftStart, s.grace),
	}

	if err := s.store.SaveCheckIn(ctx, checkIn); err != nil {
		return models.CheckIn{}, fmt.Errorf("save check-in: %w", err)
	}

	s.logger.Debug("check-in recorded",
		zap.String("staff_id", checkIn.StaffID),
		zap.String("status", checkIn.Status))
	return checkIn, nil
}

// Report computes overall and per-member efficiency for check-ins since the given time.
func (s *Service) Report(ctx context.Context, since time.Time) (Report, error) {
	checkIns, err := s.store.ListCheckIns(ctx, since)
	if err != nil {
		return Report{}, fmt.Errorf("load check-ins: %w", err)
	}

	byStaff := make(map[string][]models.CheckIn)
	for _, c := range checkIns {
		byStaff[c.StaffID] = append(byStaff[c.StaffID], c)
	}

	members := make([]MemberEfficiency, 0, len(byStaff))
	for id, list := range byStaff {
		members = append(members, MemberEfficiency{
			StaffID:    id,
			CheckIns:   len(list),
			Efficiency: Efficiency(list),
		})
	}
	sort.Slice(members, func(i, j int) bool { return members[i].StaffID < members[j].StaffID })

	return Report{
		Since:   since,
		Overall: Efficiency(checkIns),
		Members: members,
	}, nil
}
