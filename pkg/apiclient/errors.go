package apiclient

import (
	"fmt"
	"net/http"
)

// APIError represents an RFC 7807 problem response from the API.
type APIError struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%d): %s", e.Title, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s (%d)", e.Title, e.Status)
}

// IsAuthError returns true if this is an authentication or authorization error.
func (e *APIError) IsAuthError() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsNotFound returns true if this is a not found error.
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsConflict returns true if this is a conflict error.
func (e *APIError) IsConflict() bool {
	return e.Status == http.StatusConflict
}

// IsUnavailable returns true if the server reported its credential store
// as unreachable.
func (e *APIError) IsUnavailable() bool {
	return e.Status == http.StatusServiceUnavailable
}
