package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/docchat/internal/client/auth"
)

// ErrNoResponse means the request was sent but no response arrived.
var ErrNoResponse = errors.New("no response from server")

// NoResponseText is shown to the user for ErrNoResponse.
const NoResponseText = "No response from the server. Please check your network connection."

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	// Status is the reason phrase, e.g. "Not Found". It may be empty.
	Status string
	// Detail is the body's detail string, if any.
	Detail string
	// Message is the body's detail or message field, or "HTTP Error <code>".
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// RequestError means the request could not be built.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return "Error: " + e.Err.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }

func newAPIError(code int, body []byte) *APIError {
	return &APIError{
		StatusCode: code,
		Status:     http.StatusText(code),
		Detail:     errorDetail(body),
		Message:    errorMessage(code, body),
	}
}

// isTokenError reports whether err came from the token provider.
func isTokenError(err error) bool {
	var ae *auth.AcquireError
	return errors.Is(err, auth.ErrNoAccount) ||
		errors.Is(err, auth.ErrInteractionRequired) ||
		errors.As(err, &ae)
}

// classify maps an error returned by resty to the package's error model.
// Token errors and context errors pass through unchanged.
func classify(err error) error {
	switch {
	case isTokenError(err):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w (%v)", ErrNoResponse, err)
	}
}

// Describe converts any error returned by this package to the text shown to
// the user.
func Describe(err error) string {
	var apiErr *APIError
	var reqErr *RequestError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrNoResponse):
		return NoResponseText
	case errors.As(err, &reqErr):
		return reqErr.Error()
	default:
		return "Error: " + err.Error()
	}
}
