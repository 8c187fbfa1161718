package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// Scope selects the router a registrar is mounted on.
type Scope int

const (
	// ScopeAPI routes get the request timeout, host guard and rate limit.
	ScopeAPI Scope = iota
	// ScopeRoot routes only get the global middlewares. Long-lived
	// connections and proxied traffic live here.
	ScopeRoot
)

type entry struct {
	scope Scope
	reg   Registrar
	mws   []Middleware
}

var registry []entry

// Register an API registrar with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{scope: ScopeAPI, reg: reg, mws: mws})
}

// RegisterRoot registers a registrar outside the API middleware chain.
func RegisterRoot(reg Registrar, mws ...Middleware) {
	registry = append(registry, entry{scope: ScopeRoot, reg: reg, mws: mws})
}

// Called once from server.New()
func RegisterAll(root, api chi.Router, d deps.Deps) {
	for _, e := range registry {
		r := api
		if e.scope == ScopeRoot {
			r = root
		}
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		sub := r.With(e.mws...) // apply per-route middlewares
		e.reg(sub, d)
	}
}
