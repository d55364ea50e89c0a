package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON and writeError so the API has one
// JSON shape for successes and one for failures:
//
//	{"error": "not_found", "message": "user not found with id abc123", "detail": "..."}
//
// "detail" repeats "message" for clients that read FastAPI-style errors.

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sakif/my-applications/internal/apperror"
	"github.com/sakif/my-applications/internal/logger"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
	Detail  string `json:"detail"`
}

// writeJSON sends a JSON response with the given status code. Encoding
// failures are logged with the request's logger. Headers must be
// set before WriteHeader; anything after it is ignored.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already sent, all we can do is log
			logger.FromRequest(r).Error().Err(err).Msg("failed to encode JSON response")
		}
	}
}

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order; the first sentinel found in the chain
// decides the status.
var errorMappings = []errorMapping{
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperror.ErrForbidden, http.StatusForbidden, "forbidden"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrConflict, http.StatusConflict, "conflict"},
	{apperror.ErrTooLarge, http.StatusRequestEntityTooLarge, "payload_too_large"},
	{apperror.ErrTimeout, http.StatusGatewayTimeout, "timeout"},
	{apperror.ErrUpstream, http.StatusBadGateway, "upstream_error"},
	{apperror.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
}

// writeError maps a domain error to the appropriate HTTP status code and
// sends it. Errors that are not an *apperror.AppError become a generic 500;
// the raw error is logged but never sent, it may contain SQL or file paths.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, m := range errorMappings {
			if errors.Is(appErr, m.target) {
				if m.status >= http.StatusInternalServerError {
					log.Warn().Err(err).Int("status", m.status).Msg("request failed")
				}
				writeJSON(w, r, m.status, ErrorResponse{
					Error:   m.code,
					Message: appErr.Message,
					Detail:  appErr.Message,
				})
				return
			}
		}
	}

	log.Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
	writeJSON(w, r, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
		Detail:  "An internal error occurred",
	})
}

// decodeJSON reads a single JSON object from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("body", "Request body is required")
		case errors.As(err, &maxErr):
			return apperror.TooLarge("body", "Request body too large")
		default:
			return apperror.ValidationFailed("body", "Invalid JSON body")
		}
	}
	return nil
}
