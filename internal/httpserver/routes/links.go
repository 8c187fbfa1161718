package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/httpserver/handlers"
)

func init() { Register(registerLinks) }

func registerLinks(r chi.Router, d deps.Deps) {
	r.Get("/api/links", handlers.ListLinks(d))
	r.Post("/api/links", handlers.CreateLink(d))
	r.Get("/api/links/search", handlers.SearchLinks(d))
	r.Get("/api/links/{id}", handlers.GetLink(d))
	r.Patch("/api/links/{id}", handlers.UpdateLink(d))
	r.Delete("/api/links/{id}", handlers.DeleteLink(d))
	r.Post("/api/links/{id}/move", handlers.MoveLink(d))
}
