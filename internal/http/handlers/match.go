package handlers

import (
	"errors"
	"net/http"

	"gesture_rps/internal/logger"
	"gesture_rps/internal/match"

	"github.com/gin-gonic/gin"
)

// GetMatch returns the current presentation snapshot.
func (h *Handler) GetMatch(c *gin.Context) {
	c.JSON(http.StatusOK, h.Match.Snapshot())
}

// StartMatch begins a best-of-five match. Only allowed from idle.
func (h *Handler) StartMatch(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.Match.Start(ctx); err != nil {
		switch {
		case errors.Is(err, match.ErrMatchInProgress):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.WithContext(ctx).Error("start match failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "orchestrator unavailable"})
		}
		return
	}

	c.JSON(http.StatusOK, h.Match.Snapshot())
}

// ResetMatch abandons the match from any phase.
func (h *Handler) ResetMatch(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.Match.Reset(ctx); err != nil {
		logger.WithContext(ctx).Error("reset match failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "orchestrator unavailable"})
		return
	}

	c.JSON(http.StatusOK, h.Match.Snapshot())
}
