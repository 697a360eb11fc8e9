// Package server provides the HTTP REST API for the opportunity agent.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/nexora/opportunity-agent/internal/db"
	"github.com/nexora/opportunity-agent/internal/embedding"
	"github.com/nexora/opportunity-agent/internal/sources"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrNotFound indicates a requested resource was not found
type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Persistence failures map to 500, unavailable external vendors to 503.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrUserNotFound, *ErrNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	}

	var persistErr *db.PersistenceError
	if errors.As(err, &persistErr) {
		return http.StatusInternalServerError
	}
	var sourceErr *sources.SourceUnavailableError
	if errors.As(err, &sourceErr) {
		return http.StatusServiceUnavailable
	}
	var embedErr *embedding.UnavailableError
	if errors.As(err, &embedErr) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
