package catalog

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNotFound reports that the catalog has no record for the identifier.
	ErrNotFound = errors.New("catalog record not found")
	// ErrTransient reports a failure worth retrying later: rate limiting,
	// server errors, or network timeouts.
	ErrTransient = errors.New("catalog temporarily unavailable")
	// ErrUnauthorized reports rejected client credentials.
	ErrUnauthorized = errors.New("catalog credentials rejected")
)

// StatusError is a non-2xx API response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.StatusCode, snippet(e.Body))
}

// Is maps status codes onto ErrNotFound, ErrTransient, and ErrUnauthorized.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		// Spotify answers 400 "invalid id" for malformed identifiers.
		return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusBadRequest
	case ErrTransient:
		return retryableStatus(e.StatusCode)
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	default:
		return false
	}
}

// tokenError is a rejected client-credentials exchange. It never reports
// ErrNotFound even though the token endpoint answers 400 for bad credentials.
type tokenError struct {
	StatusCode int
	Body       string
}

func (e *tokenError) Error() string {
	return fmt.Sprintf("catalog token: http %d: %s", e.StatusCode, snippet(e.Body))
}

func (e *tokenError) Is(target error) bool { return target == ErrUnauthorized }

func retryableStatus(code int) bool {
	return code == http.StatusRequestTimeout ||
		code == http.StatusTooManyRequests ||
		code >= http.StatusInternalServerError
}

func snippet(body string) string {
	body = strings.TrimSpace(body)
	const limit = 200
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}
