package handlers

import (
	"io"
	"net/http"

	"gesture_rps/internal/domain"
	"gesture_rps/internal/gesture"
	"gesture_rps/internal/http/middleware"
	"gesture_rps/internal/logger"

	"github.com/gin-gonic/gin"
)

const maxGestureBody = 4 << 10

// PostGesture ingests one classifier event:
// {"type":"gesture_detected","gesture":"Rock"} or a bare label.
// Whether the match uses it is up to the orchestrator, so a valid move
// is always 202.
func (h *Handler) PostGesture(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxGestureBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read body"})
		return
	}

	label, err := gesture.ParsePayload(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, ok := domain.ParseMove(label); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown gesture: " + label})
		return
	}

	source := "http"
	if sub := c.GetString(middleware.FeedSubjectKey); sub != "" {
		source = "http:" + sub
	}

	published := h.Gestures.Publish(label, source)
	logger.WithContext(c.Request.Context()).Debug("gesture ingested",
		"gesture", label, "source", source, "debounced", !published)

	c.JSON(http.StatusAccepted, gin.H{
		"gesture":   label,
		"debounced": !published,
	})
}
