package deps

import (
	"context"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/bgsync"
	"github.com/MrSnakeDoc/linktree/internal/hub"
	"github.com/MrSnakeDoc/linktree/internal/logger"
	"github.com/MrSnakeDoc/linktree/internal/offline"
	"github.com/MrSnakeDoc/linktree/internal/tree"
	"github.com/MrSnakeDoc/linktree/internal/version"
)

// Pinger is a persistence backend that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Build          version.Info
	TimeNow        func() time.Time      // for testing, defaults to time.Now
	AllowedHosts   []string              // Host headers allowed to access the server
	AllowedCIDRS   []string              // IPs allowed to access healthz/readyz/reload endpoints
	TrustProxy     bool                  // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RequestTimeout time.Duration         // per-request timeout on API routes
	RateLimit      int                   // API requests per minute per client IP, 0 = disabled
	Backend        string                // persistence backend name
	Storage        Pinger                // persistence health (nil for the memory backend)
	Tree           *tree.Store           // links and groups
	Sync           *bgsync.Orchestrator  // connectivity state and sync topics
	Controller     *offline.Controller   // offline cache controller
	Hub            *hub.Hub              // connected app instances
	Origin         *url.URL              // app shell upstream
	ImportTrigger  chan struct{}         // manual homepage import (nil if import disabled)
}

// Now returns the configured clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
