package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrAuthExpired is returned when the session cannot be recovered: there is
// no refresh token, or the refresh call itself failed. Tokens have been
// cleared by the time a caller sees this.
var ErrAuthExpired = errors.New("session expired")

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	RequestID  string
	Body       []byte
}

func newAPIError(status int, requestID string, body []byte) *APIError {
	return &APIError{StatusCode: status, RequestID: requestID, Body: body}
}

func (e *APIError) Error() string {
	msg := e.Message()
	if e.RequestID != "" {
		return fmt.Sprintf("api error (status %d, request %s): %s", e.StatusCode, e.RequestID, msg)
	}
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, msg)
}

// Message flattens the backend's error payload into one display string.
// The backend sends either a field→message-list object, a bare string, or
// something unrecognized; unrecognized shapes get a generic fallback.
func (e *APIError) Message() string {
	trimmed := strings.TrimSpace(string(e.Body))
	if trimmed == "" {
		return "request failed"
	}

	var asString string
	if err := json.Unmarshal(e.Body, &asString); err == nil {
		return asString
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(e.Body, &asObject); err == nil && len(asObject) > 0 {
		keys := make([]string, 0, len(asObject))
		for k := range asObject {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var parts []string
		for _, k := range keys {
			for _, v := range flattenErrorValue(asObject[k]) {
				parts = append(parts, fmt.Sprintf("%s: %s", k, v))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}

	return "request failed"
}

// flattenErrorValue extracts the message strings from one field's value,
// which may be a string, a list of strings, or anything else (ignored).
func flattenErrorValue(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return []string{s}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return nil
}
