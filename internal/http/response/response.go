// Package response writes the API envelope for handlers that sit outside
// huma: multipart uploads, picture files, XML exports and middleware
// rejections.
package response

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"log/slog"
	"net/http"

	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
)

// Version is the envelope format version sent as "v".
const Version = 1

// Envelope is a successful response.
type Envelope struct {
	Version int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorEnvelope is a failed response.
type ErrorEnvelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// JSON writes data wrapped in an Envelope with the given status code.
func JSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	writeJSON(w, status, Envelope{Version: Version, Success: true, Data: data}, logger)
}

// Success writes a 200 OK envelope.
func Success(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusOK, data, logger)
}

// Created writes a 201 Created envelope.
func Created(w http.ResponseWriter, data any, logger *slog.Logger) {
	JSON(w, http.StatusCreated, data, logger)
}

// ErrorCode writes an ErrorEnvelope with an explicit status and code.
func ErrorCode(w http.ResponseWriter, status int, code domainerrors.Code, message string, details any, logger *slog.Logger) {
	writeJSON(w, status, ErrorEnvelope{
		Version: Version,
		Code:    string(code),
		Message: message,
		Details: details,
	}, logger)
}

// BadRequest writes a 400 VALIDATION error.
func BadRequest(w http.ResponseWriter, message string, logger *slog.Logger) {
	ErrorCode(w, http.StatusBadRequest, domainerrors.CodeValidation, message, nil, logger)
}

// NotFound writes a 404 NOT_FOUND error.
func NotFound(w http.ResponseWriter, message string, logger *slog.Logger) {
	ErrorCode(w, http.StatusNotFound, domainerrors.CodeNotFound, message, nil, logger)
}

// TooManyRequests writes a 429 error.
func TooManyRequests(w http.ResponseWriter, message string, logger *slog.Logger) {
	ErrorCode(w, http.StatusTooManyRequests, "RATE_LIMITED", message, nil, logger)
}

// HandleError writes the response for err. Domain errors keep their code
// and status; anything else is logged and becomes a 500.
func HandleError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var de *domainerrors.Error
	if errors.As(err, &de) {
		if de.Code == domainerrors.CodeInternal && logger != nil {
			logger.Error("request failed", "error", err)
		}
		ErrorCode(w, de.HTTPStatus(), de.Code, de.Message, de.Details, logger)
		return
	}

	if logger != nil {
		logger.Error("unhandled error", "error", err)
	}
	ErrorCode(w, http.StatusInternalServerError, domainerrors.CodeInternal, "internal server error", nil, logger)
}

// XML writes v as an XML document.
func XML(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(status)

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		return
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil && logger != nil {
		logger.Error("failed to encode XML response", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil && logger != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}
