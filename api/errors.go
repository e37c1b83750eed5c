package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Error is a non-2xx response from the remote service.
type Error struct {
	StatusCode int
	Message    string
	// Fields carries per-field validation errors surfaced by the server.
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Message)
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for fld, msg := range e.Fields {
			parts = append(parts, fld+": "+msg)
		}
		return fmt.Sprintf("api: %d: %s", e.StatusCode, strings.Join(parts, "; "))
	}
	return fmt.Sprintf("api: %d", e.StatusCode)
}

// UserMessage is the server-provided text fit for a user-facing notification.
func (e *Error) UserMessage() string { return e.Message }

// IsUnauthorized reports an authentication failure (expired or invalid token).
func IsUnauthorized(err error) bool {
	if apiErr, ok := errors.Cause(err).(*Error); ok {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// IsValidation reports a rejected (malformed) submission.
func IsValidation(err error) bool {
	if apiErr, ok := errors.Cause(err).(*Error); ok {
		return apiErr.StatusCode == http.StatusBadRequest
	}
	return false
}

// decodeError maps the known error body shapes: {"error": "..."},
// {"detail": "..."} and per-field maps {"field": ["...", ...]}.
func decodeError(code int, data []byte) error {
	apiErr := &Error{StatusCode: code}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(data, &body); err != nil {
		apiErr.Message = http.StatusText(code)
		return apiErr
	}

	for _, key := range []string{"error", "detail", "message"} {
		var msg string
		if raw, ok := body[key]; ok && json.Unmarshal(raw, &msg) == nil {
			apiErr.Message = msg
			return apiErr
		}
	}

	fields := make(map[string]string, len(body))
	for fld, raw := range body {
		var msgs []string
		if json.Unmarshal(raw, &msgs) == nil && len(msgs) > 0 {
			fields[fld] = msgs[0]
			continue
		}
		var msg string
		if json.Unmarshal(raw, &msg) == nil {
			fields[fld] = msg
		}
	}
	if len(fields) > 0 {
		apiErr.Fields = fields
	} else {
		apiErr.Message = http.StatusText(code)
	}
	return apiErr
}
