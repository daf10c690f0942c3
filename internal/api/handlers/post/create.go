package post

import (
	"encoding/json"
	"net/http"

	"Chorus/internal/api/middleware"
	"Chorus/internal/core/posts"
)

// CreateHandler handles post creation requests
type CreateHandler struct {
	service posts.Service
}

// NewCreateHandler creates a new handler for creating posts
func NewCreateHandler(service posts.Service) *CreateHandler {
	return &CreateHandler{service: service}
}

// CreatePostInput is the request body for creating a post
type CreatePostInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Song        string   `json:"song"`
	Score       *int     `json:"score"`
	Tags        []string `json:"tags,omitempty"`
}

// HandleCreate handles post creation requests
// POST /posts
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 100*1024)

	var input CreatePostInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	identity, ok := middleware.GetIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	created, err := h.service.CreatePost(r.Context(), posts.CreatePostRequest{
		PostedBy:    identity.Username,
		Title:       input.Title,
		Description: input.Description,
		Song:        input.Song,
		Score:       input.Score,
		Tags:        input.Tags,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}
