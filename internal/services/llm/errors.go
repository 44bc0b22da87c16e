package llm

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/openai/openai-go/v3"
)

// APIError carries the upstream status for errors the DeepSeek API
// returned itself, as opposed to transport failures.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

// ExtractAPIError pulls API error details out of an SDK error. Returns
// nil when err did not originate from an HTTP error response.
func ExtractAPIError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var sdkErr *openai.Error
	if errors.As(err, &sdkErr) {
		return &APIError{
			StatusCode: sdkErr.StatusCode,
			Message:    sdkErr.Message,
		}
	}
	return nil
}

// IsTimeout reports whether err came from the upstream call running out
// of time rather than failing outright.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
