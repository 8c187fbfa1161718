package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linktree/internal/domain"
	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
)

type createGroupRequest struct {
	domain.GroupInput
	ParentGroupID string `json:"parentGroupId,omitempty"`
}

type groupResponse struct {
	domain.Group
	Path string `json:"path"`
}

type descendantsResponse struct {
	IDs []string `json:"ids"`
}

// ListGroups returns every group, the top-level ones with ?top=true, or
// the direct children of ?parentId=.
func ListGroups(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("parentId") != "":
			writeJSON(w, http.StatusOK, d.Tree.Subgroups(q.Get("parentId")))
		case q.Get("top") == "true":
			writeJSON(w, http.StatusOK, d.Tree.TopLevelGroups())
		default:
			writeJSON(w, http.StatusOK, d.Tree.Groups())
		}
	}
}

// GetGroup returns one group with its display path.
func GetGroup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		g, ok := d.Tree.Group(id)
		if !ok {
			writeError(w, d.Logger, domain.NotFoundError{Kind: "group", ID: id})
			return
		}
		writeJSON(w, http.StatusOK, groupResponse{Group: g, Path: d.Tree.GroupPath(id)})
	}
}

// GroupDescendants lists the group id and every id below it.
func GroupDescendants(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, descendantsResponse{IDs: d.Tree.DescendantIDs(chi.URLParam(r, "id"))})
	}
}

// CreateGroup adds a group, optionally under parentGroupId.
func CreateGroup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGroupRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		g, err := d.Tree.AddGroup(r.Context(), req.GroupInput, req.ParentGroupID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}

// UpdateGroup merges the given fields; a cycle-creating parent is a 400.
func UpdateGroup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.GroupPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		g, err := d.Tree.EditGroup(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

// DeleteGroup removes the group with its whole subtree and reports which
// links were moved to the root.
func DeleteGroup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Tree.DeleteGroup(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// MoveGroup answers moved=false when the move would create a cycle.
func MoveGroup(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		moved, err := d.Tree.MoveGroup(r.Context(), chi.URLParam(r, "id"), req.GroupID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, moveResponse{Moved: moved})
	}
}
