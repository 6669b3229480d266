package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

var (
	ErrMissingConversationID = errors.New("backend: conversation id is required")
	ErrEmptyMessage          = errors.New("backend: message cannot be empty")
	ErrEmptyTopic            = errors.New("backend: topic cannot be empty")
)

// APIError reports a non-2xx response from the debate backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("debate backend error (%d): %s", e.StatusCode, e.Message)
}

type errorEnvelope struct {
	Detail any    `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

const maxErrorMessageRunes = 256

func buildAPIError(statusCode int, body []byte) error {
	message := decodeErrorMessage(body)
	if message == "" {
		message = strings.TrimSpace(string(body))
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}
	if utf8.RuneCountInString(message) > maxErrorMessageRunes {
		message = string([]rune(message)[:maxErrorMessageRunes])
	}

	return &APIError{StatusCode: statusCode, Message: message}
}

// decodeErrorMessage understands FastAPI style {"detail": ...} bodies and
// {"error": ...} bodies.
func decodeErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	if envelope.Error != "" {
		return strings.TrimSpace(envelope.Error)
	}

	switch detail := envelope.Detail.(type) {
	case string:
		return strings.TrimSpace(detail)
	case nil:
		return ""
	default:
		encoded, err := json.Marshal(detail)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}
