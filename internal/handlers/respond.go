package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clipstream/backend/internal/logging"
	"github.com/clipstream/backend/internal/repositories"
	"github.com/clipstream/backend/internal/views"
)

// envelope is the uniform response wrapper of the API. Every endpoint,
// success or failure, responds with this shape.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// apiError carries a domain failure and the HTTP status it maps to.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func badRequest(message string) *apiError {
	return &apiError{status: http.StatusBadRequest, message: message}
}

func unauthorized(message string) *apiError {
	return &apiError{status: http.StatusUnauthorized, message: message}
}

func forbidden(message string) *apiError {
	return &apiError{status: http.StatusForbidden, message: message}
}

func notFound(message string) *apiError {
	return &apiError{status: http.StatusNotFound, message: message}
}

func conflict(message string) *apiError {
	return &apiError{status: http.StatusConflict, message: message}
}

func tooManyRequests(message string) *apiError {
	return &apiError{status: http.StatusTooManyRequests, message: message}
}

// respond writes a success envelope.
func respond(ctx context.Context, w http.ResponseWriter, status int, data any, message string) {
	writeEnvelope(ctx, w, envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// respondError maps a failure onto the envelope. Typed apiErrors keep their
// status; repository and view sentinels get their conventional codes; every
// other failure is an internal error with its detail kept out of the body.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, views.ErrScopeNotFound):
		apiErr = notFound("resource not found")
	case errors.Is(err, repositories.ErrConflict):
		apiErr = conflict("resource already exists")
	default:
		logging.FromContext(ctx).Error("request failed", "error", err)
		apiErr = &apiError{status: http.StatusInternalServerError, message: "internal server error"}
	}

	writeEnvelope(ctx, w, envelope{
		StatusCode: apiErr.status,
		Message:    apiErr.message,
		Success:    false,
	})
}

func writeEnvelope(ctx context.Context, w http.ResponseWriter, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(env.StatusCode)

	if err := json.NewEncoder(w).Encode(env); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", env.StatusCode, "error", err)
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case env.StatusCode >= http.StatusInternalServerError:
		logger.Error("request failed", "status", env.StatusCode, "message", env.Message)
	case env.StatusCode >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", env.StatusCode, "message", env.Message)
	}
}
