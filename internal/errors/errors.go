// Package errors provides the error types used across the AceAI client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session has expired")
	ErrStreamActive     = errors.New("a response is already streaming")
	ErrEmptyMessage     = errors.New("message is empty")
	ErrChatNotFound     = errors.New("chat not found")
	ErrMessageNotFound  = errors.New("message not found")
	ErrStoreUnavailable = errors.New("chat store unavailable")
)

// AuthError represents an identity-provider failure. Code carries the
// provider's error code so it can be mapped to a user-facing message.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication failed"
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *AuthError) Is(target error) bool {
	if target == ErrNotAuthenticated {
		return true
	}
	_, ok := target.(*AuthError)
	return ok
}

// NewAuthError creates a new AuthError
func NewAuthError(code, message string) *AuthError {
	return &AuthError{Code: code, Message: message}
}

// APIError represents a completions or file-service request failure
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// StoreError represents a remote chat store failure. Operations that hit one
// degrade to local-only persistence; the error is surfaced as an advisory.
type StoreError struct {
	Op      string
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chat store %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("chat store %s failed: %s", e.Op, e.Message)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is allows comparison with sentinel errors
func (e *StoreError) Is(target error) bool {
	if target == ErrStoreUnavailable {
		return true
	}
	_, ok := target.(*StoreError)
	return ok
}

// NewStoreError creates a new StoreError
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// ParseError represents malformed data on load (cache blob, stream payload)
type ParseError struct {
	Message string
	Source  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, source string) *ParseError {
	return &ParseError{Message: message, Source: source}
}

// IsAuthError reports whether err is an identity failure
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae) || errors.Is(err, ErrNotAuthenticated) || errors.Is(err, ErrSessionExpired)
}

// IsStoreError reports whether err is a remote store failure
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

// GetHTTPStatus extracts the HTTP status from an APIError, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
