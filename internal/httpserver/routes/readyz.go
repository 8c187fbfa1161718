package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/linktree/internal/httpserver/mw"
)

func init() { RegisterRoot(registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	guarded := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))
	guarded.Get("/healthz", handlers.Healthz(d))
	guarded.Get("/readyz", handlers.Readyz(d))
	guarded.Get("/infra", handlers.Infra(d))
}
