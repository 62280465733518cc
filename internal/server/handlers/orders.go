package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	"github.com/MagetoJ/AviTrack/internal/session"
)

// OrderService places customer orders.
type OrderService interface {
	Place(ctx context.Context, customerID string, in models.OrderInput) (models.Order, error)
}

// OrderHandler accepts customer orders.
type OrderHandler struct {
	svc    OrderService
	logger *zap.Logger
}

// NewOrderHandler constructs the order HTTP adapter.
func NewOrderHandler(svc OrderService, logger *zap.Logger) *OrderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderHandler{svc: svc, logger: logger}
}

// Place creates an order for the session's customer. Admins order on behalf
// of a customer through ?customer_id.
func (h *OrderHandler) Place(c *gin.Context) {
	var in models.OrderInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	s, _ := session.FromContext(c.Request.Context())
	customerID := s.UserID
	if s.Role == models.RoleAdmin {
		customerID = c.Query("customer_id")
		if customerID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "customer_id is required"})
			return
		}
	}

	order, err := h.svc.Place(c.Request.Context(), customerID, in)
	if err != nil {
		respondError(c, h.logger, "failed to place order", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}
