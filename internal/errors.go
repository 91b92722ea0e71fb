package internal

import (
	"errors"
	"fmt"
)

// NetworkError represents a failure to reach the remote service at all
// (timeout, refused connection, DNS). It carries no HTTP status.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx response from the remote service.
type APIError struct {
	StatusCode int
	Body       string      // raw response body
	Details    interface{} // parsed JSON body, when the body was JSON
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

// StoreError represents a failed backing-store operation
type StoreError struct {
	Op  string // "open", "fetch", "mark", "probe"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ValidationError represents a remote response missing a required field,
// e.g. a created knowledge-base entry without an ID.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Msg)
}

// ConfigError represents a missing or invalid configuration value.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Msg)
}

// IsNotFound reports whether err is an APIError with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}
