package post

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"Chorus/internal/core/posts"
)

// GetHandler handles post retrieval and listing requests
type GetHandler struct {
	service posts.Service
}

// NewGetHandler creates a new handler for reading posts
func NewGetHandler(service posts.Service) *GetHandler {
	return &GetHandler{service: service}
}

// HandleGet handles single post retrieval
// GET /posts/{id}
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}

// HandleList handles post listing with optional filters
// GET /posts
// GET /posts?isFlagged=0|1
// GET /posts?postedBy=username
// GET /posts?tags=a,b,c&inclusive=true|false
//
// Filters are mutually exclusive; the flag filter wins over the author
// filter, which wins over the tag filter.
func (h *GetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	if raw := query.Get("isFlagged"); raw != "" {
		flag, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "InvalidRequest", "isFlagged must be 0 or 1")
			return
		}
		list, err := h.service.ListFlagged(ctx, flag)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	if author := query.Get("postedBy"); author != "" {
		list, err := h.service.ListByAuthor(ctx, author)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	if raw := query.Get("tags"); raw != "" {
		tags := splitTags(raw)
		inclusive := true
		if rawInc := query.Get("inclusive"); rawInc != "" {
			parsed, err := strconv.ParseBool(rawInc)
			if err != nil {
				writeError(w, http.StatusBadRequest, "InvalidRequest", "inclusive must be true or false")
				return
			}
			inclusive = parsed
		}
		list, err := h.service.FilterByTags(ctx, tags, inclusive)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}

	list, err := h.service.ListAll(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func splitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
