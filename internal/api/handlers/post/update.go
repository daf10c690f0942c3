package post

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Chorus/internal/api/middleware"
	"Chorus/internal/core/posts"
)

// UpdateHandler handles post update and moderation-flag requests
type UpdateHandler struct {
	service posts.Service
}

// NewUpdateHandler creates a new handler for updating posts
func NewUpdateHandler(service posts.Service) *UpdateHandler {
	return &UpdateHandler{service: service}
}

// UpdatePostInput is the request body for patching a post. Absent fields
// are left untouched; which present fields are honoured depends on the
// requester's relationship to the post.
type UpdatePostInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Score       *int    `json:"score,omitempty"`
	Flag        *int    `json:"flag,omitempty"`
}

// HandleUpdate handles post update requests
// PATCH /posts/{id}
func (h *UpdateHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 100*1024)

	var input UpdatePostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	identity, ok := middleware.GetIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	attrs, err := h.service.UpdatePost(r.Context(), chi.URLParam(r, "id"), identity, posts.UpdatePatch{
		Title:       input.Title,
		Description: input.Description,
		Score:       input.Score,
		Flag:        input.Flag,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, attrs)
}
