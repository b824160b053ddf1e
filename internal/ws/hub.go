package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"gesture_rps/internal/logger"
	"gesture_rps/internal/match"
)

const commandTimeout = 5 * time.Second

// Controller is the part of the orchestrator the presentation layer may use.
type Controller interface {
	Start(ctx context.Context) error
	Reset(ctx context.Context) error
	Snapshot() match.Snapshot
}

// Hub keeps the presentation sockets, pushes every match snapshot to all of
// them and turns their start/reset messages into orchestrator commands.
type Hub struct {
	ctrl Controller
	log  *slog.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
	seq     int64
}

func NewHub(ctrl Controller) *Hub {
	return &Hub{
		ctrl:    ctrl,
		log:     logger.With("component", "presentation_hub"),
		clients: make(map[*Client]struct{}),
	}
}

// Broadcast sends snap to every connected client. Safe to use as a match.Observer.
func (h *Hub) Broadcast(snap match.Snapshot) {
	data := encode(Message{Type: MsgState, Payload: snap})

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.Enqueue(data)
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) nextID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	return "view-" + strconv.FormatInt(h.seq, 10)
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Info("client connected", "client", c.ID, "clients", n)

	c.Enqueue(encode(Message{Type: MsgReady}))
	c.Enqueue(encode(Message{Type: MsgState, Payload: h.ctrl.Snapshot()}))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	h.log.Info("client disconnected", "client", c.ID, "clients", n)
}

// HandleMessage processes one frame from a presentation client.
func (h *Hub) HandleMessage(c *Client, raw []byte) {
	var msg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.log.Warn("bad message", "client", c.ID, "error", err)
		c.Enqueue(errorMessage("invalid message"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	switch msg.Type {
	case MsgStart:
		err = h.ctrl.Start(ctx)
	case MsgReset:
		err = h.ctrl.Reset(ctx)
	case MsgPing:
		c.Enqueue(encode(Message{Type: MsgPong}))
		return
	default:
		c.Enqueue(errorMessage("unknown message type: " + msg.Type))
		return
	}

	if err != nil {
		if !errors.Is(err, match.ErrMatchInProgress) {
			h.log.Error("command failed", "client", c.ID, "command", msg.Type, "error", err)
		}
		c.Enqueue(errorMessage(err.Error()))
	}
	// on success the new state reaches everyone through Broadcast
}
