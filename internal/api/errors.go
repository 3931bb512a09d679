package api

import "fmt"

// ResponseError is returned for any non-2xx response. Message carries the
// server-supplied "message" field when the body is JSON, otherwise the raw
// body.
type ResponseError struct {
	StatusCode int
	Status     string
	Message    string
	Body       []byte
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %s", e.Status)
}
