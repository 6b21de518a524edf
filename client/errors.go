package client

import "fmt"

// APIError is an application-level failure: a non-2xx response other than the
// handled 401, or a 2xx response carrying an "error" status envelope. It never
// mutates session state.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (status %d)", e.StatusCode)
}
