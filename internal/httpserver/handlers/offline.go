package handlers

import (
	"errors"
	"net/http"
	"net/http/httputil"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/logger"
	"github.com/MrSnakeDoc/linktree/internal/offline"
)

// Offline serves the app shell through the offline controller. Requests
// the controller does not take are proxied to the origin untouched.
func Offline(d deps.Deps) http.HandlerFunc {
	proxy := httputil.NewSingleHostReverseProxy(d.Origin)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		d.Logger.Warn("origin unreachable",
			logger.String("path", r.URL.Path),
			logger.Error(err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := d.Controller.Handle(r.Context(), r)
		if errors.Is(err, offline.ErrBypass) {
			proxy.ServeHTTP(w, r)
			return
		}
		if err != nil {
			d.Logger.Debug("offline fetch failed",
				logger.String("path", r.URL.Path),
				logger.Error(err))
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
			return
		}
		if err := resp.Serve(w); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}
