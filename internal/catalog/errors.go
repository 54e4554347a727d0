package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound matches API errors with a 404 status via errors.Is.
var ErrNotFound = errors.New("not found")

// APIError describes a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	// Messages holds the decoded detail entries: every msg of a structured
	// list, or the single detail string.
	Messages []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("api %s %s returned status %d", e.Method, e.Path, e.StatusCode)
	if len(e.Messages) > 0 {
		msg += ": " + strings.Join(e.Messages, ", ")
	}
	return msg
}

// Is reports 404s as ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsValidation reports whether the API rejected the request body (422).
func (e *APIError) IsValidation() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

// errorBody is `{detail: string | [{msg: string}]}`.
type errorBody struct {
	Detail any `json:"detail"`
}

func decodeErrorMessages(body []byte) []string {
	if len(body) == 0 {
		return nil
	}
	var payload errorBody
	if err := jsonAPI.Unmarshal(body, &payload); err != nil {
		return nil
	}
	switch detail := payload.Detail.(type) {
	case string:
		if s := strings.TrimSpace(detail); s != "" {
			return []string{s}
		}
	case []any:
		msgs := make([]string, 0, len(detail))
		for _, entry := range detail {
			obj, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := obj["msg"].(string); ok && strings.TrimSpace(s) != "" {
				msgs = append(msgs, strings.TrimSpace(s))
			}
		}
		if len(msgs) > 0 {
			return msgs
		}
	}
	return nil
}
