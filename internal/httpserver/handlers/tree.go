package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/tree"
)

type dropRequest struct {
	tree.DropPayload
	TargetGroupID string `json:"targetGroupId,omitempty"`
}

// Tree serves the fully nested view.
func Tree(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, d.Tree.Snapshot())
	}
}

// Drop applies a drag payload onto a target group.
func Drop(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dropRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		res, err := d.Tree.Drop(r.Context(), req.DropPayload, req.TargetGroupID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		status := http.StatusOK
		if res.Link != nil {
			status = http.StatusCreated
		}
		writeJSON(w, status, res)
	}
}
