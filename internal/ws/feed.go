package ws

import (
	"log/slog"
	"strconv"
	"sync/atomic"

	"gesture_rps/internal/domain"
	"gesture_rps/internal/gesture"
	"gesture_rps/internal/logger"
)

const feedName = "ws"

// Feed accepts classifier connections and publishes their gestures on the bus.
// Labels are validated here so malformed ones get an error frame back.
type Feed struct {
	bus *gesture.Bus
	log *slog.Logger
	seq atomic.Int64
}

func NewFeed(bus *gesture.Bus) *Feed {
	return &Feed{bus: bus, log: logger.With("component", "gesture_feed")}
}

func (f *Feed) nextID() string {
	return "feed-" + strconv.FormatInt(f.seq.Add(1), 10)
}

func (f *Feed) HandleMessage(c *Client, raw []byte) {
	label, err := gesture.ParsePayload(raw)
	if err != nil {
		f.log.Warn("malformed gesture frame", "client", c.ID, "error", err)
		c.Enqueue(errorMessage("malformed gesture payload"))
		return
	}

	if _, ok := domain.ParseMove(label); !ok {
		f.log.Warn("unknown gesture label", "client", c.ID, "label", label)
		c.Enqueue(errorMessage("unknown gesture: " + label))
		return
	}

	published := f.bus.Publish(label, feedName)
	c.Enqueue(encode(Message{Type: MsgAck, Payload: AckPayload{Gesture: label, Debounced: !published}}))
}
