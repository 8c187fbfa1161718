package handlers

import (
	"fmt"
	"net/http"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/logger"
	"github.com/MrSnakeDoc/linktree/internal/tree"
)

// Export downloads both collections as a backup document.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc := d.Tree.Export()
		filename := fmt.Sprintf("link-drvo-backup-%s.json", doc.ExportDate.Format("2006-01-02"))
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		writeJSON(w, http.StatusOK, doc)
	}
}

// Import replaces both collections with an uploaded backup.
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc tree.ImportDocument
		if err := decodeJSON(w, r, &doc); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		res, err := d.Tree.Import(r.Context(), doc)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		d.Logger.Info("backup imported",
			logger.Int("links", res.Links),
			logger.Int("groups", res.Groups),
			logger.Int("dropped", res.Dropped))
		writeJSON(w, http.StatusOK, res)
	}
}

// Clear removes every link and group.
func Clear(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Tree.Clear(r.Context()); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		d.Logger.Warn("all data cleared", logger.String("remote_ip", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	}
}
