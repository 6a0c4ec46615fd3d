// Package response implements the JSON envelope every API endpoint
// returns:
//
//	{"status": "success", "data": ...}        2xx
//	{"status": "fail", "message": "..."}      4xx
//	{"status": "error", "message": "..."}     5xx
package response

import (
	"encoding/json"
	"net/http"

	"mahberhub/internal/contextutils"
	"mahberhub/internal/services"
	"mahberhub/internal/validation"

	"go.uber.org/zap"
)

// Writer renders envelopes and logs failures
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a response writer
func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

type successEnvelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

type failureEnvelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

// Success writes a 2xx envelope
func (w *Writer) Success(rw http.ResponseWriter, r *http.Request, code int, data interface{}) {
	writeJSON(rw, r, code, successEnvelope{Status: "success", Data: data})
}

// Created writes a 201 envelope
func (w *Writer) Created(rw http.ResponseWriter, r *http.Request, data interface{}) {
	w.Success(rw, r, http.StatusCreated, data)
}

// Fail writes a 4xx envelope with a client-facing message
func (w *Writer) Fail(rw http.ResponseWriter, r *http.Request, code int, message string) {
	writeJSON(rw, r, code, failureEnvelope{Status: "fail", Message: message})
}

// Error writes a 5xx envelope. The internal error is logged, never
// surfaced to the client.
func (w *Writer) Error(rw http.ResponseWriter, r *http.Request, err error) {
	w.logger.Error("request failed",
		zap.Error(err),
		zap.String("request_id", contextutils.GetRequestID(r.Context())),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	writeJSON(rw, r, http.StatusInternalServerError, failureEnvelope{
		Status:  "error",
		Message: "internal server error",
	})
}

// FromError maps a service error to the right envelope. Validation
// errors carry their per-field details; unknown errors are masked.
func (w *Writer) FromError(rw http.ResponseWriter, r *http.Request, err error) {
	if verrs, ok := err.(validation.ValidationErrors); ok {
		writeJSON(rw, r, http.StatusBadRequest, failureEnvelope{
			Status:  "fail",
			Message: "validation failed",
			Errors:  verrs,
		})
		return
	}

	var svcErr *services.ServiceError
	if services.AsServiceError(err, &svcErr) {
		if svcErr.StatusCode >= 500 {
			w.logger.Error("service error",
				zap.Error(svcErr),
				zap.String("request_id", contextutils.GetRequestID(r.Context())),
				zap.String("path", r.URL.Path),
			)
			writeJSON(rw, r, svcErr.StatusCode, failureEnvelope{
				Status:  "error",
				Message: "internal server error",
			})
			return
		}
		writeJSON(rw, r, svcErr.StatusCode, failureEnvelope{
			Status:  "fail",
			Message: svcErr.Message,
		})
		return
	}

	w.Error(rw, r, err)
}

func writeJSON(rw http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	if requestID := contextutils.GetRequestID(r.Context()); requestID != "" {
		rw.Header().Set("X-Request-ID", requestID)
	}
	rw.WriteHeader(code)
	_ = json.NewEncoder(rw).Encode(payload)
}
