package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/httpserver/handlers"
)

func init() { Register(registerTree) }

func registerTree(r chi.Router, d deps.Deps) {
	r.Get("/api/tree", handlers.Tree(d))
	r.Post("/api/drop", handlers.Drop(d))
	r.Get("/api/export", handlers.Export(d))
	r.Post("/api/import", handlers.Import(d))
	r.Delete("/api/data", handlers.Clear(d))
	r.Get("/api/connectivity", handlers.Connectivity(d))
	r.Post("/api/connectivity", handlers.SetConnectivity(d))
}
