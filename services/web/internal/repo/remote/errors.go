package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const DefaultErrorMessage = "Something went wrong. Please try again."

var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer from the content API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// FieldError returns the first server-side validation message for field.
func (e *APIError) FieldError(field string) string {
	if msgs := e.Fields[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// Message is the human readable text for err: the server's own message when
// it sent one, fallback otherwise.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback == "" {
		return DefaultErrorMessage
	}
	return fallback
}

type errorPayload struct {
	Message string              `json:"message"`
	Error   json.RawMessage     `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func parseError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = strings.TrimSpace(payload.Message)
		apiErr.Fields = payload.Errors
		if apiErr.Message == "" && len(payload.Error) > 0 {
			var msg string
			if json.Unmarshal(payload.Error, &msg) == nil {
				apiErr.Message = strings.TrimSpace(msg)
			}
		}
		if apiErr.Message == "" {
			for _, msgs := range payload.Errors {
				if len(msgs) > 0 {
					apiErr.Message = msgs[0]
					break
				}
			}
		}
	}

	return apiErr
}
