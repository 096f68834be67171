package youtube

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error reason categories. The API returns reasons in mixed formats
// (camelCase, SCREAMING_SNAKE_CASE), so membership checks run on a
// normalized form: lowercased with separators stripped.
var (
	transientReasons = map[string]bool{
		"serviceunavailable": true,
		"backenderror":       true,
		"internalerror":      true,
	}
	permanentReasons = map[string]bool{
		"videonotfound":                true,
		"forbidden":                    true,
		"playlistoperationunsupported": true,
		"duplicate":                    true,
	}
	quotaReasons = map[string]bool{
		"quotaexceeded": true,
	}
)

// APIError is an error response from the YouTube Data API. Reason is the
// first reason string of the error payload, or "unknown" when the payload
// could not be parsed.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("youtube API error (status %d, reason %s): %s", e.StatusCode, e.Reason, e.Message)
}

func normalizeReason(reason string) string {
	r := strings.ToLower(reason)
	r = strings.ReplaceAll(r, "_", "")
	r = strings.ReplaceAll(r, "-", "")
	return r
}

// Transient reports whether the error is worth retrying with backoff.
func (e *APIError) Transient() bool {
	return transientReasons[normalizeReason(e.Reason)]
}

// Permanent reports whether retrying can never succeed.
func (e *APIError) Permanent() bool {
	return permanentReasons[normalizeReason(e.Reason)]
}

// Quota reports whether the request was rejected for quota exhaustion.
func (e *APIError) Quota() bool {
	return quotaReasons[normalizeReason(e.Reason)] || e.StatusCode == http.StatusForbidden
}

// NotFound reports whether the requested resource does not exist.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// AsAPIError unwraps err into an *APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is an APIError with a 404 status.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.NotFound()
}

// IsQuota reports whether err is an APIError caused by quota exhaustion.
func IsQuota(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Quota()
}
