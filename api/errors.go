// ABOUTME: Error taxonomy for backend calls and best-effort message extraction
// ABOUTME: Session expiry, invalid credentials, protocol violations, server errors
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrSessionExpired means the backend answered 401 on an authorized
	// call. The client has already dropped its credential; the caller must
	// abandon the operation and return to login.
	ErrSessionExpired = errors.New("session expired, log in again")

	// ErrInvalidCredentials is a failed login. Local state is untouched.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProtocol is a success status with a malformed body, such as a 202
	// job submission without an execution id.
	ErrProtocol = errors.New("unexpected response from the processing API")
)

// APIError is a non-2xx response with whatever message could be pulled
// out of the body.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

const maxMessageExcerpt = 200

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// extractMessage pulls a human-readable error out of a response body:
// a structured `message`/`error` field if the body is JSON, else a
// tag-stripped excerpt of the raw text, else the fallback.
func extractMessage(raw []byte, fallback string) string {
	var structured struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &structured); err == nil {
		if structured.Message != "" {
			return structured.Message
		}
		if structured.Error != "" {
			return structured.Error
		}
	}

	// Never surface a full HTML error page.
	plain := htmlTagPattern.ReplaceAllString(string(raw), " ")
	plain = strings.Join(strings.Fields(plain), " ")
	if plain != "" {
		// Count runes, not bytes; backend messages are Portuguese.
		if runes := []rune(plain); len(runes) > maxMessageExcerpt {
			plain = string(runes[:maxMessageExcerpt])
		}
		return plain
	}

	return fallback
}

func apiError(statusCode int, body []byte) error {
	return &APIError{
		StatusCode: statusCode,
		Message:    extractMessage(body, fmt.Sprintf("HTTP %d", statusCode)),
	}
}
