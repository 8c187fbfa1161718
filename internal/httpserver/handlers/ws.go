package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/logger"
)

// WebSocket upgrades app instances onto the message bus. The connection
// outlives the request context, so it is bound to the hub only.
func WebSocket(d deps.Deps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     sameOrigin(d),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			d.Logger.Debug("websocket upgrade failed", logger.Error(err))
			return
		}
		conn.SetReadLimit(64 << 10)
		d.Hub.Serve(context.Background(), conn)
	}
}

// sameOrigin accepts browsers loading the app from this server or from the
// configured shell origin. Clients without an Origin header are accepted.
func sameOrigin(d deps.Deps) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return d.Origin != nil && strings.EqualFold(u.Host, d.Origin.Host)
	}
}
