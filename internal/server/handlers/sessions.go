package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/domain/models"
	"github.com/MagetoJ/AviTrack/internal/session"
)

// Directory resolves user IDs to known staff members and customers.
type Directory interface {
	GetStaff(ctx context.Context, id string) (models.Staff, error)
	GetCustomer(ctx context.Context, id string) (models.Customer, error)
}

// SessionHandler issues and revokes sessions.
type SessionHandler struct {
	directory Directory
	manager   *session.Manager
	logger    *zap.Logger
}

// NewSessionHandler constructs the session HTTP adapter.
func NewSessionHandler(directory Directory, manager *session.Manager, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{directory: directory, manager: manager, logger: logger}
}

type sessionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// Create issues a session for a registered staff member or customer.
func (h *SessionHandler) Create(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()

	member, err := h.directory.GetStaff(ctx, req.UserID)
	if err == nil {
		c.JSON(http.StatusCreated, h.manager.Issue(member.ID, member.Name, member.Role))
		return
	}
	if !errors.Is(err, models.ErrNotFound) {
		respondError(c, h.logger, "failed to look up user", err)
		return
	}

	customer, err := h.directory.GetCustomer(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown user"})
			return
		}
		respondError(c, h.logger, "failed to look up user", err)
		return
	}
	c.JSON(http.StatusCreated, h.manager.Issue(customer.ID, customer.Name, models.RoleCustomer))
}

// Delete revokes the caller's session.
func (h *SessionHandler) Delete(c *gin.Context) {
	if s, ok := session.FromContext(c.Request.Context()); ok {
		h.manager.Revoke(s.Token)
	}
	c.Status(http.StatusNoContent)
}
