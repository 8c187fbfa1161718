package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/logger"
	"github.com/MrSnakeDoc/linktree/internal/offline"
)

type connectivityRequest struct {
	Online *bool `json:"online"`
}

type connectivityResponse struct {
	Online     bool            `json:"online"`
	Changed    bool            `json:"changed,omitempty"`
	Controller *offline.Status `json:"controller,omitempty"`
	Clients    int             `json:"clients"`
	Controlled int             `json:"controlled"`
}

func connectivity(ctx context.Context, d deps.Deps) connectivityResponse {
	res := connectivityResponse{Online: d.Sync.Online()}
	res.Clients, res.Controlled = d.Hub.Stats()

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if st, err := d.Controller.Status(ctx); err == nil {
		res.Controller = &st
	}
	return res
}

// Connectivity reports the online state, the controller state and the
// number of connected app instances.
func Connectivity(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, connectivity(r.Context(), d))
	}
}

// SetConnectivity records an online/offline transition. Going back online
// flushes deferred sync tags.
func SetConnectivity(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req connectivityRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		if req.Online == nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid online: required", Field: "online"})
			return
		}

		changed := d.Sync.SetOnline(*req.Online)
		if changed {
			d.Logger.Info("connectivity changed", logger.Bool("online", *req.Online))
		}

		res := connectivity(r.Context(), d)
		res.Changed = changed
		writeJSON(w, http.StatusOK, res)
	}
}
