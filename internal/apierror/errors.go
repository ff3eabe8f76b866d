// Package apierror holds caller-visible errors with their transport codes.
package apierror

import (
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// APIError is an error whose Message is safe to return to the caller.
type APIError struct {
	GRPCCode   codes.Code
	HTTPStatus int
	Message    string
	cause      error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *APIError) Unwrap() error {
	return e.cause
}

// NewErrUnauthenticated reports a call without a verified identity.
func NewErrUnauthenticated(message string) *APIError {
	return &APIError{
		GRPCCode:   codes.Unauthenticated,
		HTTPStatus: http.StatusUnauthorized,
		Message:    message,
	}
}

// NewErrInvalidArgument reports a request that failed validation.
func NewErrInvalidArgument(message string) *APIError {
	return &APIError{
		GRPCCode:   codes.InvalidArgument,
		HTTPStatus: http.StatusBadRequest,
		Message:    message,
	}
}

// NewErrInternal hides cause behind a generic message.
func NewErrInternal(message string, cause error) *APIError {
	return &APIError{
		GRPCCode:   codes.Internal,
		HTTPStatus: http.StatusInternalServerError,
		Message:    message,
		cause:      cause,
	}
}
