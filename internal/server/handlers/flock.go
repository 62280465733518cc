package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	"github.com/MagetoJ/AviTrack/internal/session"
)

// FlockService mutates batches and their treatment cases.
type FlockService interface {
	CreateBatch(ctx context.Context, in models.BatchInput) (models.Batch, error)
	Isolate(ctx context.Context, in models.SickBirdEntry) ([]models.TreatmentRecord, error)
	ResolveCase(ctx context.Context, caseID string, outcome models.BirdStatus) (models.TreatmentRecord, error)
	RecordDailyEntry(ctx context.Context, entry models.DailyEntry) (models.DailyEntry, error)
	RecordSlaughter(ctx context.Context, entry models.SlaughterEntry) (models.SlaughterEntry, error)
}

// FlockHandler accepts shed worker entries.
type FlockHandler struct {
	svc    FlockService
	logger *zap.Logger
}

// NewFlockHandler constructs the flock HTTP adapter.
func NewFlockHandler(svc FlockService, logger *zap.Logger) *FlockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlockHandler{svc: svc, logger: logger}
}

// CreateBatch registers a new batch.
func (h *FlockHandler) CreateBatch(c *gin.Context) {
	var in models.BatchInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	batch, err := h.svc.CreateBatch(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, "failed to create batch", err)
		return
	}
	c.JSON(http.StatusCreated, batch)
}

// DailyEntry records feed, water and mortality for a batch.
func (h *FlockHandler) DailyEntry(c *gin.Context) {
	var entry models.DailyEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	entry.RecordedBy = recorder(c)

	saved, err := h.svc.RecordDailyEntry(c.Request.Context(), entry)
	if err != nil {
		respondError(c, h.logger, "failed to record daily entry", err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// Quarantine isolates sick birds.
func (h *FlockHandler) Quarantine(c *gin.Context) {
	var in models.SickBirdEntry
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	records, err := h.svc.Isolate(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, "failed to isolate birds", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"cases": records})
}

type resolveRequest struct {
	Outcome models.BirdStatus `json:"outcome" binding:"required,oneof=Recovered Dead"`
}

// ResolveCase closes a sick-bay case.
func (h *FlockHandler) ResolveCase(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	record, err := h.svc.ResolveCase(c.Request.Context(), c.Param("caseId"), req.Outcome)
	if err != nil {
		respondError(c, h.logger, "failed to resolve case", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Slaughter records birds sent to processing.
func (h *FlockHandler) Slaughter(c *gin.Context) {
	var entry models.SlaughterEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	entry.RecordedBy = recorder(c)

	saved, err := h.svc.RecordSlaughter(c.Request.Context(), entry)
	if err != nil {
		respondError(c, h.logger, "failed to record slaughter", err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func recorder(c *gin.Context) string {
	if s, ok := session.FromContext(c.Request.Context()); ok {
		return s.UserID
	}
	return ""
}
