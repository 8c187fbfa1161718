package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/linktree/internal/domain"
	"github.com/MrSnakeDoc/linktree/internal/httpserver/deps"
	"github.com/MrSnakeDoc/linktree/internal/logger"
)

type moveRequest struct {
	// GroupID is the target group; empty moves to the root.
	GroupID string `json:"groupId"`
}

type moveResponse struct {
	Moved bool `json:"moved"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

// ListLinks returns every link, or the links of ?groupId=, or the
// ungrouped links with ?ungrouped=true.
func ListLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("groupId") != "":
			writeJSON(w, http.StatusOK, d.Tree.LinksOf(q.Get("groupId")))
		case q.Get("ungrouped") == "true":
			writeJSON(w, http.StatusOK, d.Tree.UngroupedLinks())
		default:
			writeJSON(w, http.StatusOK, d.Tree.Links())
		}
	}
}

// GetLink returns one link or 404.
func GetLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		l, ok := d.Tree.Link(id)
		if !ok {
			writeError(w, d.Logger, domain.NotFoundError{Kind: "link", ID: id})
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// CreateLink adds a link and answers 201 with it.
func CreateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in domain.LinkInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		l, err := d.Tree.AddLink(r.Context(), in)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, l)
	}
}

// UpdateLink merges the given fields into an existing link.
func UpdateLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.LinkPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		l, err := d.Tree.EditLink(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, l)
	}
}

// DeleteLink is idempotent: deleting an unknown id answers deleted=false.
func DeleteLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deleted, err := d.Tree.DeleteLink(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
	}
}

// MoveLink reparents a link; an empty groupId moves it to the root.
func MoveLink(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, d.Logger, err)
			return
		}
		moved, err := d.Tree.MoveLink(r.Context(), chi.URLParam(r, "id"), req.GroupID)
		if err != nil {
			writeError(w, d.Logger, err)
			return
		}
		writeJSON(w, http.StatusOK, moveResponse{Moved: moved})
	}
}

type searchResult struct {
	Link  domain.Link `json:"link"`
	Score float64     `json:"score"`
	Path  string      `json:"path,omitempty"`
}

// SearchLinks ranks links against ?q= by title and hostname. ?limit=
// caps the result count.
func SearchLinks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("q"))
		if query == "" {
			writeJSON(w, http.StatusOK, []searchResult{})
			return
		}

		candidates := d.Tree.Search(query)
		if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit < len(candidates) {
			candidates = candidates[:limit]
		}

		out := make([]searchResult, 0, len(candidates))
		for _, c := range candidates {
			out = append(out, searchResult{
				Link:  c.Link,
				Score: c.Score,
				Path:  d.Tree.GroupPath(c.Link.GroupID),
			})
		}

		d.Logger.Debug("search request",
			logger.String("query", query),
			logger.Int("results", len(out)))
		writeJSON(w, http.StatusOK, out)
	}
}
