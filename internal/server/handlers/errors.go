package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MagetoJ/AviTrack/internal/service/flock"
	"github.com/MagetoJ/AviTrack/internal/service/orders"
	"github.com/MagetoJ/AviTrack/internal/service/staff"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, flock.ErrBatchNotFound),
		errors.Is(err, flock.ErrCaseNotFound),
		errors.Is(err, staff.ErrUnknownStaff),
		errors.Is(err, orders.ErrUnknownCustomer):
		return http.StatusNotFound
	case errors.Is(err, flock.ErrBatchExists):
		return http.StatusConflict
	case errors.Is(err, flock.ErrInvalidEntry),
		errors.Is(err, orders.ErrEmptyOrder),
		errors.Is(err, orders.ErrInvalidItem):
		return http.StatusBadRequest
	case errors.Is(err, flock.ErrNotSlaughterReady),
		errors.Is(err, orders.ErrCreditLimitExceeded):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the mapped status. Internal errors are logged and
// their details hidden from the client.
func respondError(c *gin.Context, logger *zap.Logger, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(msg, zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}

	logger.Warn(msg, zap.Error(err), zap.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}
