package dogs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const DefaultErrorMessage = "An unexpected error occurred"

// APIError is the backend's error body, also returned by our own handlers.
type APIError struct {
	Message string `json:"error"`
	Detail  string `json:"detail,omitempty"`
	Status  int    `json:"status"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error %d: %s: %s", e.Status, e.Message, e.Detail)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func DefaultError(status int) *APIError {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	return &APIError{Message: DefaultErrorMessage, Status: status}
}

// ParseAPIError never fails; bodies it cannot read become the default error.
// FastAPI style {"detail": "..."} bodies are accepted too.
func ParseAPIError(status int, body []byte) *APIError {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return DefaultError(status)
	}
	e := DefaultError(status)
	if s, ok := raw["status"].(float64); ok && s >= 400 && s < 600 {
		e.Status = int(s)
	}
	msg, _ := raw["error"].(string)
	if msg = strings.TrimSpace(msg); msg == "" {
		msg, _ = raw["message"].(string)
		msg = strings.TrimSpace(msg)
	}
	detail, _ := raw["detail"].(string)
	detail = strings.TrimSpace(detail)
	switch {
	case msg != "":
		e.Message = msg
		e.Detail = detail
	case detail != "":
		e.Message = detail
	}
	return e
}
