package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	"github.com/MagetoJ/AviTrack/internal/service/staff"
)

const defaultEfficiencyDays = 7

var errInvalidDays = errors.New("days must be a positive integer")

// StaffService records check-ins and reports punctuality.
type StaffService interface {
	RecordCheckIn(ctx context.Context, in models.CheckInInput) (models.CheckIn, error)
	Report(ctx context.Context, since time.Time) (staff.Report, error)
}

// StaffHandler serves check-ins and the efficiency report.
type StaffHandler struct {
	svc    StaffService
	logger *zap.Logger
	now    func() time.Time
}

// NewStaffHandler constructs the staff HTTP adapter.
func NewStaffHandler(svc StaffService, logger *zap.Logger) *StaffHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StaffHandler{svc: svc, logger: logger, now: time.Now}
}

// CheckIn records a worker arriving for a shift.
func (h *StaffHandler) CheckIn(c *gin.Context) {
	var in models.CheckInInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	checkIn, err := h.svc.RecordCheckIn(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, "failed to record check-in", err)
		return
	}
	c.JSON(http.StatusCreated, checkIn)
}

// Efficiency reports punctuality since ?since (RFC3339) or over the last ?days days.
func (h *StaffHandler) Efficiency(c *gin.Context) {
	since, err := h.window(c)
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}

	report, err := h.svc.Report(c.Request.Context(), since)
	if err != nil {
		respondError(c, h.logger, "failed to compute efficiency", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *StaffHandler) window(c *gin.Context) (time.Time, error) {
	if raw := c.Query("since"); raw != "" {
		return time.Parse(time.RFC3339, raw)
	}

	days := defaultEfficiencyDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return time.Time{}, errInvalidDays
		}
		days = n
	}
	return h.now().AddDate(0, 0, -days), nil
}
