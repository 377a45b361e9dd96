package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/simple-site/pkg/simplesite"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Success bool                      `json:"success"`
	Error   string                    `json:"error"`
	Errors  map[string]string         `json:"errors,omitempty"`
	Results []simplesite.UpdateResult `json:"results,omitempty"`
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	var verr *simplesite.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, simplesite.ErrDuplicateSlug):
		return http.StatusConflict
	case errors.Is(err, simplesite.ErrInvalidImage):
		return http.StatusBadRequest
	case simplesite.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, simplesite.ErrImageStoreNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the text shown to the client for err
func messageFor(err error, status int) string {
	var invalid *simplesite.InvalidImageError
	switch {
	case errors.Is(err, simplesite.ErrDuplicateSlug):
		return "Slug already in use"
	case errors.As(err, &invalid):
		return invalid.Error()
	case errors.Is(err, simplesite.ErrInvalidImage):
		return simplesite.ErrInvalidImage.Error()
	case errors.Is(err, simplesite.ErrImageStoreNotConfigured):
		return "Image storage is not configured"
	}
	switch status {
	case http.StatusBadRequest:
		return "Validation failed"
	case http.StatusNotFound:
		return "Not found"
	default:
		return "An unexpected error occurred while processing your request."
	}
}

// writeError logs err and renders it as an ErrorResponse
func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error(msg, "path", r.URL.Path, "err", err)
	} else {
		slog.Warn(msg, "path", r.URL.Path, "err", err)
	}

	resp := ErrorResponse{Error: messageFor(err, status)}
	var verr *simplesite.ValidationError
	if errors.As(err, &verr) {
		resp.Errors = verr.Fields
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// badRequest renders a 400 with a plain message
func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: msg})
}
