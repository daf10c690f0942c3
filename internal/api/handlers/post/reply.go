package post

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Chorus/internal/api/middleware"
	"Chorus/internal/core/posts"
)

// ReplyHandler handles reply creation, retrieval, and deletion
type ReplyHandler struct {
	service posts.Service
}

// NewReplyHandler creates a new handler for replies
func NewReplyHandler(service posts.Service) *ReplyHandler {
	return &ReplyHandler{service: service}
}

// CreateReplyInput is the request body for creating a reply
type CreateReplyInput struct {
	Description string `json:"description"`
}

// HandleCreate handles reply creation requests
// POST /posts/{id}/replies
func (h *ReplyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 100*1024)

	var input CreateReplyInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	identity, ok := middleware.GetIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	reply, err := h.service.CreateReply(r.Context(), chi.URLParam(r, "id"), identity.Username, input.Description)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reply)
}

// HandleGet handles single reply retrieval
// GET /posts/{id}/replies/{replyID}
func (h *ReplyHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	reply, err := h.service.GetReply(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "replyID"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reply)
}

// HandleDelete handles reply deletion requests
// DELETE /posts/{id}/replies/{replyID}
func (h *ReplyHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	err := h.service.DeleteReply(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "replyID"), identity)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
