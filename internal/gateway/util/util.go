// ============================================================================
// internal/gateway/util/util.go
// JSON response helpers and service-error → HTTP mapping
// ============================================================================

package util

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"acadsys/internal/apperr"
)

// StatusLocked is the HTTP status for a refused login during lockout
const StatusLocked = 423

// JSONResponse structure for successful responses
type JSONResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// JSONError structure for error responses
type JSONError struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// WriteJSON is a helper to write JSON responses
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	var response interface{}
	if responseMap, ok := payload.(map[string]interface{}); ok && responseMap["success"] != nil {
		response = payload
	} else {
		response = JSONResponse{Success: true, Data: payload}
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error writing JSON response: %v", err)
	}
}

// WriteJSONError is a helper to write standardized error JSON responses
func WriteJSONError(w http.ResponseWriter, status int, code, message string) {
	log.Printf("HTTP Error %d [%s]: %s", status, code, message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResponse := JSONError{
		Success: false,
		Code:    code,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Printf("Error writing JSON error response: %v", err)
	}
}

// HandleServiceError maps typed service errors to HTTP responses. Validation
// failures surface their specific message verbatim; anything untyped stays
// an opaque 500.
func HandleServiceError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	message := apperr.MessageOf(err)

	switch code {
	case apperr.CodeInvalidArgument, apperr.CodeInvalidWeight, apperr.CodeInvalidScore,
		apperr.CodeInvalidTimeRange, apperr.CodeWeightSumExceeded:
		WriteJSONError(w, http.StatusBadRequest, string(code), message)
	case apperr.CodeUnauthorized:
		WriteJSONError(w, http.StatusUnauthorized, string(code), message)
	case apperr.CodeForbidden:
		WriteJSONError(w, http.StatusForbidden, string(code), message)
	case apperr.CodeNotFound:
		WriteJSONError(w, http.StatusNotFound, string(code), message)
	case apperr.CodeScheduleConflict, apperr.CodeAlreadyExists:
		WriteJSONError(w, http.StatusConflict, string(code), message)
	case apperr.CodeAccountLocked:
		WriteJSONError(w, StatusLocked, string(code), message)
	default:
		log.Printf("Internal error: %v", err)
		WriteJSONError(w, http.StatusInternalServerError, string(apperr.CodeInternal), "internal server error")
	}
}

// ExtractToken extracts the token from the Authorization header (Bearer <token>)
func ExtractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}
