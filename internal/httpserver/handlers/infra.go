package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/offline"
	"github.com/MrSnakeDoc/linktree/internal/version"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Mode   string `json:"mode,omitempty"`
	Links  *int   `json:"links,omitempty"`
	Groups *int   `json:"groups,omitempty"`
	Impact string `json:"impact,omitempty"`
	Error  string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Backend    string                     `json:"backend"`
	Build      version.Info               `json:"build"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports per-component health and the overall mode.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		links, groups := len(d.Tree.Links()), len(d.Tree.Groups())
		clients, controlled := d.Hub.Stats()

		components := map[string]componentStatus{
			"tree": {
				OK:     true,
				Links:  &links,
				Groups: &groups,
			},
			"storage":    checkStorage(r.Context(), d),
			"controller": checkController(d),
			"hub": {
				OK:   true,
				Mode: formatClients(clients, controlled),
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Backend:    d.Backend,
			Build:      d.Build,
			Components: components,
		})
	}
}

func formatClients(clients, controlled int) string {
	if clients == 0 {
		return "no-clients"
	}
	if controlled < clients {
		return "partially-controlled"
	}
	return "controlled"
}

// determineMode: storage down is critical, an inactive controller only
// means the shell is served straight from the origin.
func determineMode(components map[string]componentStatus) string {
	if s, ok := components["storage"]; ok && !s.OK {
		return "critical"
	}
	if c, ok := components["controller"]; ok && !c.OK {
		return "degraded"
	}
	return "offline-ready"
}

func checkStorage(ctx context.Context, d deps.Deps) componentStatus {
	if d.Storage == nil {
		return componentStatus{
			OK:     true,
			Mode:   d.Backend,
			Impact: "data-lost-on-restart",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := d.Storage.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   d.Backend,
			Impact: "mutations-failing",
			Error:  "unreachable",
		}
	}
	return componentStatus{OK: true, Mode: d.Backend}
}

func checkController(d deps.Deps) componentStatus {
	state := d.Controller.State()
	if state != offline.StateActivated {
		return componentStatus{
			OK:     false,
			Mode:   string(state),
			Impact: "no-offline-fallback",
		}
	}
	return componentStatus{OK: true, Mode: string(state)}
}
