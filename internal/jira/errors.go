package jira

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a structured error returned by the Jira REST API.
type APIError struct {
	Status   int
	Messages []string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if len(e.Messages) > 0 {
		return fmt.Sprintf("jira: %s (status %d)", strings.Join(e.Messages, "; "), e.Status)
	}
	return fmt.Sprintf("jira: request failed with status %d", e.Status)
}

// IsNotFound reports whether err is a Jira 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// WriteError marks a failed mutating call (create, update, assign, comment,
// transition) so callers can distinguish it from read failures. Writes are
// never retried; whatever was already applied stays applied.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// errorResponse is Jira's error body shape.
type errorResponse struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors"`
}
