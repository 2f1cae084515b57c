// Package respond standardises how handlers and middleware write JSON bodies
// and errors.
//
// CONSISTENT ERROR FORMAT:
// Every error response has the same shape, the one the mobile client parses:
//
//	{"error": "recipe not found"}
//
// WHY A SEPARATE PACKAGE (not helpers inside handler)?
// The access guard and the rate limiter in internal/middleware reject requests
// before any handler runs, and they must produce exactly the same body. Both
// layers import this package, so there is one mapping from error to status.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/recipe-share/internal/apperror"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// MessageBody is the JSON shape of update/delete confirmations.
type MessageBody struct {
	Message string `json:"message"`
}

// JSON sends v as a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set BEFORE the body is written. Once Encode calls
// w.Write(), the headers are on the wire and later changes are ignored.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// Headers are already sent, all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// Message sends {"message": msg} with status 200.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, MessageBody{Message: msg})
}

// Status maps an error to its HTTP status code.
//
//	ErrValidation, ErrConflict → 400
//	ErrUnauthorized            → 401
//	ErrForbidden               → 403
//	ErrNotFound                → 404
//	ErrRateLimited             → 429
//	anything else              → 500
//
// Conflict is a 400, not a 409: the mobile client only distinguishes
// "request rejected" from "not found" and shows the message as-is.
//
// errors.Is() walks the whole Unwrap chain, so a service that returns
// fmt.Errorf("creating recipe: %w", apperror.NotFound("user")) still maps to 404.
func Status(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as {"error": "..."} with the status from Status.
//
// NEVER expose internal error details to the client: a raw driver error can
// contain SQL, file paths or hostnames. Unclassified errors are logged in
// full and the client only gets a generic message.
func Error(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := Status(err)

	var appErr *apperror.AppError
	if status == http.StatusInternalServerError || !errors.As(err, &appErr) {
		if logger != nil {
			logger.Error("request failed", slog.String("error", err.Error()))
		}
		JSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal server error"})
		return
	}

	JSON(w, status, ErrorBody{Error: appErr.Message})
}
