package user

import (
	"encoding/json"
	"log"
	"net/http"

	"Chorus/internal/core/users"
	"Chorus/internal/itemstore"
)

// errorResponse represents a standardized JSON error response
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError writes a JSON error response with the given status code
func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorResponse{
		Error:   errorType,
		Message: message,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// handleServiceError maps service-layer errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case users.IsValidationError(err):
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())

	case users.IsNotFound(err):
		writeError(w, http.StatusNotFound, "NotFound", err.Error())

	case users.IsForbidden(err):
		writeError(w, http.StatusForbidden, "Forbidden", "You do not have permission to perform this action")

	case users.IsConflict(err):
		writeError(w, http.StatusConflict, "Conflict", err.Error())

	case itemstore.IsStoreError(err):
		log.Printf("Store error in user handler: %v", err)
		writeError(w, http.StatusBadGateway, "StorageUnavailable", "The item store is unavailable")

	default:
		log.Printf("Unexpected error in user handler: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}
