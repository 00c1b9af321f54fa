// internal/server/handlers/respond.go

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// OwnerHeader carries the authenticated owner, resolved by the gateway in front of the API
const OwnerHeader = "X-Owner-ID"

// Common errors
var (
	ErrMissingOwner = errors.New("missing owner")
)

// ownerID returns the owner making the request
func ownerID(r *http.Request) (string, error) {
	owner := r.Header.Get(OwnerHeader)
	if owner == "" {
		return "", ErrMissingOwner
	}
	return owner, nil
}

// Helper for JSON responses
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Failed to marshal response"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper for error responses
func respondWithError(w http.ResponseWriter, code int, message string) {
	response := map[string]string{"error": message}

	jsonResponse, _ := json.Marshal(response)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(jsonResponse)
}

// fail writes an error response, logging server errors with the request ID
func fail(logger *zap.Logger, w http.ResponseWriter, r *http.Request, code int, message string, err error) {
	if err != nil && code >= http.StatusInternalServerError {
		logger.Error(message,
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	respondWithError(w, code, message)
}
