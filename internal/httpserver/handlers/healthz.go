package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/version"
)

type healthzResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	version.Info
}

// Healthz is the liveness probe. It never touches storage.
func Healthz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthzResponse{
			Status:        "ok",
			UptimeSeconds: d.Now().Sub(d.StartTime).Seconds(),
			Info:          d.Build,
		})
	}
}
