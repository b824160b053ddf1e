// Package gesture carries classified hand-gesture events from the vision
// pipeline to whoever subscribes (the match orchestrator).
package gesture

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// EventName is the name the classifier emits gestures under.
const EventName = "gesture_detected"

var ErrBadPayload = errors.New("bad gesture payload")

// Event is one gesture notification. Label is the classifier's raw label;
// validating it is the subscriber's job.
type Event struct {
	Label  string    `json:"gesture"`
	Source string    `json:"source,omitempty"`
	At     time.Time `json:"at"`
}

// Subscriber receives gesture notifications and connectivity changes.
// Calls must not block.
type Subscriber interface {
	OnGesture(Event)
	OnStatus(connected bool)
}

// Channel is a push-based gesture source.
type Channel interface {
	Subscribe(Subscriber) (unsubscribe func())
	Connected() bool
}

// Payload is the wire shape: {"type":"gesture_detected","gesture":"Rock"}.
type Payload struct {
	Type    string `json:"type,omitempty"`
	Gesture string `json:"gesture"`
}

// ParsePayload accepts a JSON payload or a bare label ("Rock").
func ParsePayload(data []byte) (string, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return "", ErrBadPayload
	}

	if !strings.HasPrefix(raw, "{") {
		return raw, nil
	}

	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return "", errors.Join(ErrBadPayload, err)
	}
	if p.Type != "" && p.Type != EventName {
		return "", ErrBadPayload
	}
	if strings.TrimSpace(p.Gesture) == "" {
		return "", ErrBadPayload
	}
	return p.Gesture, nil
}
