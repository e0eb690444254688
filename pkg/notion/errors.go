// pkg/notion/errors.go
package notion

import (
	"errors"
	"fmt"
)

// Error codes returned by the Notion API that the client interprets.
const (
	CodeRateLimited = "rate_limited"
)

// ErrRetriesExhausted is returned when consecutive throttling responses
// exceed the retry budget.
var ErrRetriesExhausted = errors.New("Máximo de reintentos alcanzado por rate limiting")

// APIError represents an error response from the Notion API.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// IsRateLimited reports whether this error is a throttling response.
func (e *APIError) IsRateLimited() bool {
	return e.Code == CodeRateLimited || e.StatusCode == 429
}

// IsRateLimited reports whether err is a Notion throttling error.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRateLimited()
	}
	return false
}
