package tradesapi

import "fmt"

// TransportError wraps any failure to obtain or decode a backend response.
// The underlying cause is available through errors.Unwrap.
type TransportError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("tradesapi: %s %s: status %d: %v", e.Op, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("tradesapi: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
