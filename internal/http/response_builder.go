// Package http exposes the budget API over JSON.
//
// This file implements the builder used for every response so that all
// endpoints share the {status, message, data} envelope.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"budget/internal/chart"
	"budget/internal/core"
	"budget/internal/services"
)

// Envelope is the body of every API response. Status repeats the HTTP code.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// JSONResponseBuilder provides a fluent API for building envelope responses.
type JSONResponseBuilder struct {
	statusCode int
	message    string
	data       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Message sets the human readable message.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	b.message = msg
	return b
}

// Data sets the payload.
func (b *JSONResponseBuilder) Data(data any) *JSONResponseBuilder {
	b.data = data
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Envelope returns the body that Write would send.
func (b *JSONResponseBuilder) Envelope() Envelope {
	msg := b.message
	if msg == "" {
		msg = http.StatusText(b.statusCode)
	}
	return Envelope{Status: b.statusCode, Message: msg, Data: b.data}
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.Envelope())
}

// OK is a 200 response carrying data.
func OK(message string, data any) *JSONResponseBuilder {
	return NewJSONResponse().Message(message).Data(data)
}

// Created is a 201 response carrying the new resource.
func Created(message string, data any) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusCreated).Message(message).Data(data)
}

// ErrorResponse creates a standard error response.
func ErrorResponse(statusCode int, message string) *JSONResponseBuilder {
	return NewJSONResponse().Status(statusCode).Message(message)
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusBadRequest, message)
}

// UnprocessableEntityError creates a 422 Unprocessable Entity error response.
func UnprocessableEntityError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusUnprocessableEntity, message)
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, "Internal server error")
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *JSONResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// TooManyRequestsError creates a 429 response with a retry hint.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").
		Header("Retry-After", "60")
}

// FromError maps domain errors to responses. The boolean reports whether the
// error was unexpected and therefore worth logging at error level.
func FromError(err error) (*JSONResponseBuilder, bool) {
	switch {
	case errors.Is(err, core.ErrCategoryExists):
		return ErrorResponse(http.StatusConflict, "Category already exists"), false
	case errors.Is(err, core.ErrNotFound):
		return NotFoundError("Not found"), false
	case errors.Is(err, core.ErrInvalidCategory):
		return UnprocessableEntityError("Select a valid category"), false
	case errors.Is(err, core.ErrInvalidAmount):
		return UnprocessableEntityError("Enter a valid amount"), false
	case errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrDescriptionTooShort),
		errors.Is(err, core.ErrDescriptionTooLong):
		return UnprocessableEntityError(rootMessage(err)), false
	case errors.Is(err, chart.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidFilter):
		return BadRequestError(err.Error()), false
	default:
		return InternalServerError(), true
	}
}

// rootMessage returns the innermost error text, without wrapping context.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
