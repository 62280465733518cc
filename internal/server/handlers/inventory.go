package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	"github.com/MagetoJ/AviTrack/internal/service/export"
	"github.com/MagetoJ/AviTrack/internal/service/inventory"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InventoryService derives the current inventory.
type InventoryService interface {
	Snapshot(ctx context.Context) (inventory.Result, error)
}

// BatchLister lists stored batches.
type BatchLister interface {
	ListBatches(ctx context.Context) ([]models.Batch, error)
}

// InventoryHandler serves derived inventory views.
type InventoryHandler struct {
	svc     InventoryService
	batches BatchLister
	logger  *zap.Logger
}

// NewInventoryHandler constructs the inventory HTTP adapter.
func NewInventoryHandler(svc InventoryService, batches BatchLister, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, batches: batches, logger: logger}
}

// Get returns every batch with its derived health figures.
func (h *InventoryHandler) Get(c *gin.Context) {
	res, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to derive inventory", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Export streams the derived inventory as an XLSX workbook.
func (h *InventoryHandler) Export(c *gin.Context) {
	res, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to derive inventory", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteInventory(&buf, res); err != nil {
		respondError(c, h.logger, "failed to export inventory", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="inventory-%s.xlsx"`, time.Now().Format("2006-01-02")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListBatches returns the stored batches without derivation.
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	batches, err := h.batches.ListBatches(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to list batches", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": batches})
}
