package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Result is the normalized outcome of every upstream call. Failures never escape
// as Go errors from the proxy; callers inspect Success or convert with Err.
type Result struct {
	Success bool            `json:"success"`
	Status  int             `json:"status,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

var (
	ErrNotFound     = errors.New("upstream resource not found")
	ErrUnauthorized = errors.New("upstream rejected credentials")
)

// APIError is a failed Result in error form. Status is 0 for transport failures.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Status > 0 {
		return fmt.Sprintf("Error: %d", e.Status)
	}
	return unexpectedMessage
}

// Is lets errors.Is match the status-class sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.NotFound()
	case ErrUnauthorized:
		return e.Unauthorized()
	}
	return false
}

// NotFound reports whether the upstream answered 404.
func (e *APIError) NotFound() bool { return e.Status == http.StatusNotFound }

// Unauthorized reports whether the upstream rejected the bearer token.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// AsAPIError unwraps err into an *APIError when it carries one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

const unexpectedMessage = "An unexpected error occurred"

// Err returns nil for a successful result and an *APIError otherwise.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	msg := strings.TrimSpace(r.Error)
	if msg == "" {
		msg = unexpectedMessage
	}
	return &APIError{Status: r.Status, Message: msg}
}

// Decode unmarshals Data into v. An empty body leaves v untouched.
func (r Result) Decode(v any) error {
	if err := r.Err(); err != nil {
		return err
	}
	if len(r.Data) == 0 || string(r.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("decode upstream payload: %w", err)
	}
	return nil
}

// IsEmpty reports whether a successful result carried no payload (or JSON null).
func (r Result) IsEmpty() bool {
	trimmed := strings.TrimSpace(string(r.Data))
	return trimmed == "" || trimmed == "null"
}

func failure(status int, message string) Result {
	if strings.TrimSpace(message) == "" {
		message = unexpectedMessage
	}
	return Result{Success: false, Status: status, Error: message}
}

// describeFailure builds the message for a non-2xx response: the body's message
// when it is JSON carrying one, "Error: <status>" for other JSON bodies and
// "HTTP Error: <status> <text>" when the body is not JSON.
func describeFailure(status int, statusLine string, body []byte) string {
	var payload any
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		if fields, ok := payload.(map[string]any); ok {
			for _, key := range []string{"message", "Message", "title", "error"} {
				if msg, ok := fields[key].(string); ok && strings.TrimSpace(msg) != "" {
					return strings.TrimSpace(msg)
				}
			}
		}
		return fmt.Sprintf("Error: %d", status)
	}
	return strings.TrimSpace(fmt.Sprintf("HTTP Error: %d %s", status, statusText(status, statusLine)))
}

// statusText strips the numeric code from resp.Status ("404 Not Found" -> "Not Found").
func statusText(status int, statusLine string) string {
	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(statusLine), strconv.Itoa(status)))
	if text == "" {
		text = http.StatusText(status)
	}
	return text
}

// Message extracts the user-facing text of err: the upstream message when err
// wraps an *APIError, err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Error()
	}
	return err.Error()
}
