package ws

import (
	"net/http"

	"gesture_rps/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// upgrader checks Origin against allowedOrigin. Non-browser clients send
// no Origin; allowBare lets them through.
func upgrader(allowedOrigin string, allowBare bool) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if allowedOrigin == "" || (allowBare && origin == "") {
				return true
			}
			return origin == allowedOrigin
		},
	}
}

// ServePresentation upgrades a browser connection and attaches it to the hub.
func ServePresentation(hub *Hub, allowedOrigin string) gin.HandlerFunc {
	up := upgrader(allowedOrigin, false)
	return func(c *gin.Context) {
		conn, err := up.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(hub.nextID(), conn, hub.log, hub.HandleMessage)
		hub.register(client)
		go func() {
			defer hub.unregister(client)
			client.Run()
		}()
	}
}

// ServeFeed upgrades a classifier connection. The bus reports connected
// for as long as the socket is open.
func ServeFeed(feed *Feed, allowedOrigin string) gin.HandlerFunc {
	up := upgrader(allowedOrigin, true)
	return func(c *gin.Context) {
		conn, err := up.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(feed.nextID(), conn, feed.log, feed.HandleMessage)
		detach := feed.bus.Attach(feedName)
		go func() {
			defer detach()
			client.Run()
		}()
	}
}
