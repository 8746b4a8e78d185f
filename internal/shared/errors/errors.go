package errors

import (
	"encoding/json"
	"net/http"
	"strings"
)

// ErrorResponse represents the canonical error envelope returned by Aquascape APIs.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// CodeFor derives the envelope code from an HTTP status, e.g. 404 -> "not_found".
func CodeFor(status int) string {
	return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

// Write renders an ErrorResponse with the given status.
func Write(w http.ResponseWriter, status int, message string) {
	WriteWithRequestID(w, status, message, "")
}

// WriteWithRequestID renders an ErrorResponse carrying the request identifier.
func WriteWithRequestID(w http.ResponseWriter, status int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Code: CodeFor(status), Message: message, RequestID: requestID})
}
