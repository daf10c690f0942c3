package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"Chorus/internal/core/users"
)

// GetHandler handles account lookup requests
type GetHandler struct {
	service users.Service
}

// NewGetHandler creates a new handler for reading accounts
func NewGetHandler(service users.Service) *GetHandler {
	return &GetHandler{service: service}
}

// HandleGet handles account retrieval by id
// GET /users/{id}
func (h *GetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, found)
}

// HandleGetByUsername handles account retrieval by username
// GET /users/by-username/{username}
func (h *GetHandler) HandleGetByUsername(w http.ResponseWriter, r *http.Request) {
	found, err := h.service.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, found)
}
