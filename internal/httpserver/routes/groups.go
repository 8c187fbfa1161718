package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/httpserver/handlers"
)

func init() { Register(registerGroups) }

func registerGroups(r chi.Router, d deps.Deps) {
	r.Get("/api/groups", handlers.ListGroups(d))
	r.Post("/api/groups", handlers.CreateGroup(d))
	r.Get("/api/groups/{id}", handlers.GetGroup(d))
	r.Get("/api/groups/{id}/descendants", handlers.GroupDescendants(d))
	r.Patch("/api/groups/{id}", handlers.UpdateGroup(d))
	r.Delete("/api/groups/{id}", handlers.DeleteGroup(d))
	r.Post("/api/groups/{id}/move", handlers.MoveGroup(d))
}
