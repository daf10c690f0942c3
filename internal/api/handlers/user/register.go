package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"Chorus/internal/core/users"
)

// RegisterHandler handles account creation requests
type RegisterHandler struct {
	service users.Service
}

// NewRegisterHandler creates a new handler for registering accounts
func NewRegisterHandler(service users.Service) *RegisterHandler {
	return &RegisterHandler{service: service}
}

// HandleRegister handles account creation requests
// POST /users
//
// New accounts always get the user role; roles are only changed through
// the admin-gated role endpoint.
func (h *RegisterHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10*1024)

	var input users.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	input.Role = ""

	created, err := h.service.Register(r.Context(), input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// LoginHandler handles credential exchange requests
type LoginHandler struct {
	service users.Service
}

// NewLoginHandler creates a new handler for logins
func NewLoginHandler(service users.Service) *LoginHandler {
	return &LoginHandler{service: service}
}

// HandleLogin handles login requests
// POST /users/login
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10*1024)

	var input users.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	resp, err := h.service.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "InvalidCredentials", err.Error())
			return
		}
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
