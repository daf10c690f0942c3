package user

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Chorus/internal/api/middleware"
	"Chorus/internal/core/users"
)

// ManageHandler handles role changes and account deletion
type ManageHandler struct {
	service users.Service
}

// NewManageHandler creates a new handler for account management
func NewManageHandler(service users.Service) *ManageHandler {
	return &ManageHandler{service: service}
}

// UpdateRoleInput is the request body for changing an account's role
type UpdateRoleInput struct {
	Role string `json:"role"`
}

// HandleUpdateRole handles role change requests
// PATCH /users/{id}/role
func (h *ManageHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4*1024)

	var input UpdateRoleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	identity, ok := middleware.GetIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.UpdateRole(r.Context(), id, input.Role, identity); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"itemID": id, "role": input.Role})
}

// HandleDelete handles account deletion requests
// DELETE /users/{id}
func (h *ManageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), identity); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
