// Package http provides the JSON API over the tracker.
//
// This file implements the Builder Pattern for constructing JSON responses
// so every handler writes status, headers and bodies the same way.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"quattrini/internal/core"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       []byte
	headers    map[string]string
	err        error
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// JSON encodes v as the response body.
func (b *JSONResponseBuilder) JSON(v any) *JSONResponseBuilder {
	body, err := json.Marshal(v)
	if err != nil {
		b.err = err
		return b
	}
	b.body = append(body, '\n')
	return b
}

// Raw sets an already encoded JSON body.
func (b *JSONResponseBuilder) Raw(body []byte) *JSONResponseBuilder {
	b.body = body
	return b
}

// Bytes returns the encoded body, or the encoding error.
func (b *JSONResponseBuilder) Bytes() ([]byte, error) {
	return b.body, b.err
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	if b.err != nil {
		slog.Error("Failed to encode response", "error", b.err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// ErrorResponse creates a standard {"error": message} response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).JSON(errorBody{Error: message})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// NoContent creates an empty 204 response.
func NoContent() *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusNoContent)
}

var validationErrors = []error{
	core.ErrInvalidAmount,
	core.ErrInvalidType,
	core.ErrInvalidRecurrence,
	core.ErrInvalidDate,
	core.ErrEmptyCurrency,
	core.ErrEmptyName,
	core.ErrEmptyCategory,
	core.ErrSplitTooFew,
	core.ErrSplitMismatch,
	core.ErrSplitDuplicate,
	core.ErrSplitNegative,
	core.ErrMissingPayer,
}

// statusFor maps tracker errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrConflict), errors.Is(err, core.ErrBuiltinCategory):
		return http.StatusConflict
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// ErrorFor builds the response for err. Internal errors are not echoed.
func ErrorFor(err error) *JSONResponseBuilder {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		return ErrorResponse(code, "internal error")
	}
	return ErrorResponse(code, err.Error())
}
