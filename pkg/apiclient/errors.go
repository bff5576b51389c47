package apiclient

import "fmt"

// APIError represents an error response from the admin API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("admin API error (%d): %s", e.StatusCode, e.Message)
}
