package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ternarybob/responsum/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError maps a service error kind onto an HTTP status and
// writes the standard error response.
func WriteServiceError(w http.ResponseWriter, err error) error {
	return WriteError(w, statusFor(err), err.Error())
}

// statusFor classifies a service error into an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConfig), errors.Is(err, models.ErrLoad):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, models.ErrEmbedding), errors.Is(err, models.ErrLLM):
		return http.StatusBadGateway
	case errors.Is(err, models.ErrStoreCorrupt), errors.Is(err, models.ErrContextBuild):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
