package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared across the API surface.
const (
	CodeInvalidArgument   = "INVALID_ARGUMENT"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL"
)

// AppError represents an error with an attached code and HTTP status.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(code, message string, status int, err error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// InvalidArgument flags a caller-supplied value the engines refuse to process.
func InvalidArgument(message string) *AppError {
	return NewAppError(CodeInvalidArgument, message, http.StatusBadRequest, nil)
}

// NotFound flags a missing product or category reference.
func NotFound(message string, err error) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound, err)
}

// Conflict flags a natural-key collision on create or update.
func Conflict(message string, err error) *AppError {
	return NewAppError(CodeConflict, message, http.StatusConflict, err)
}

// InsufficientStock flags a basket item requesting more units than are on hand.
func InsufficientStock(product string, requested, available int) *AppError {
	e := NewAppError(
		CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for product %s. requested: %d, available: %d", product, requested, available),
		http.StatusConflict,
		nil,
	)
	e.Details = map[string]any{
		"product":   product,
		"requested": requested,
		"available": available,
	}
	return e
}

// IsAppError checks whether the error is an AppError.
func IsAppError(err error) bool {
	var target *AppError
	return errors.As(err, &target)
}
