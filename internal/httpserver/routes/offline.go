package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linktree/internal/httpserver/mw"
)

func init() { RegisterRoot(registerOffline) }

// registerOffline mounts the message bus and the app shell. The shell
// catch-all matches last.
func registerOffline(r chi.Router, d deps.Deps) {
	guarded := r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))
	guarded.Get("/ws", handlers.WebSocket(d))
	guarded.Handle("/*", handlers.Offline(d))
}
