package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	readLimit  = 4096
	sendBuffer = 64
)

// Client is one websocket connection with its own writer goroutine.
// onMessage is called from the reader goroutine for every text frame.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	onMessage func(c *Client, msg []byte)
	log       *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(id string, conn *websocket.Conn, log *slog.Logger, onMessage func(*Client, []byte)) *Client {
	return &Client{
		ID:        id,
		Conn:      conn,
		Send:      make(chan []byte, sendBuffer),
		onMessage: onMessage,
		log:       log.With("client", id),
		done:      make(chan struct{}),
	}
}

// Run starts the writer and blocks in the reader until the connection drops.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// Enqueue queues msg without blocking. A client that cannot keep up loses the message.
func (c *Client) Enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.Send <- msg:
		return true
	default:
		c.log.Warn("send buffer full, dropping message")
		return false
	}
}

//read
func (c *Client) readPump() {
	defer c.close()

	c.Conn.SetReadLimit(readLimit)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", "error", err)
			}
			return
		}
		c.log.Debug("received", "bytes", len(msg))
		if c.onMessage != nil {
			c.onMessage(c, msg)
		}
	}
}

//write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn("write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.Conn.Close()
	})
}
