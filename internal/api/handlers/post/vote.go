package post

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"Chorus/internal/api/middleware"
	"Chorus/internal/core/posts"
)

// VoteHandler handles like/dislike requests
type VoteHandler struct {
	service posts.Service
}

// NewVoteHandler creates a new handler for voting on posts
func NewVoteHandler(service posts.Service) *VoteHandler {
	return &VoteHandler{service: service}
}

// VoteInput is the request body for casting a vote
type VoteInput struct {
	Like *bool `json:"like"`
}

// HandleVote handles vote requests
// POST /posts/{id}/vote
//
// A first vote is recorded as-is; a vote opposite to the caller's
// existing one replaces it; repeating the same vote is a conflict.
func (h *VoteHandler) HandleVote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4*1024)

	var input VoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}
	if input.Like == nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "like must be provided in body")
		return
	}

	identity, ok := middleware.GetIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	outcome, err := h.service.Vote(r.Context(), chi.URLParam(r, "id"), identity.Username, *input.Like)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}
