package remote

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const (
	OpFollowup = "get followup questions"
	OpResearch = "submit research"
)

// StatusError is returned when the research service answers with a non-2xx
// status.
type StatusError struct {
	Op         string
	StatusCode int
	StatusText string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Failed to %s - %s", e.Op, e.StatusText)
}

func newStatusError(op string, resp *http.Response) *StatusError {
	return &StatusError{Op: op, StatusCode: resp.StatusCode, StatusText: statusText(resp)}
}

// statusText strips the numeric code from resp.Status ("502 Bad Gateway").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// TransportError wraps failures that happen before a response arrives.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("Failed to %s - %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
