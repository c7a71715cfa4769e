package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"scorecard/internal/platform/apperror"
)

type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

// FailError maps a domain error onto the envelope. Internal errors are logged
// and reported without their message.
func FailError(w http.ResponseWriter, err error, requestID string) {
	FailErrorWithDetails(w, err, nil, requestID)
}

func FailErrorWithDetails(w http.ResponseWriter, err error, details map[string]any, requestID string) {
	code := apperror.GetCode(err)
	status := apperror.HTTPStatus(code)
	message := err.Error()
	if code == apperror.CodeInternal {
		slog.Error("request failed", "err", err, "requestId", requestID)
		message = "internal error"
	}
	if field := apperror.FieldOf(err); field != "" {
		if details == nil {
			details = map[string]any{}
		}
		details["field"] = field
	}
	FailWithDetails(w, status, string(code), message, details, requestID)
}
