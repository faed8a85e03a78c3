package sandbox

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/codepractice/remote-judge/types"
)

// ErrRateLimited matches transport errors caused by HTTP 429
var ErrRateLimited = errors.New("rate limited")

// TransportError is a failure before any backend verdict existed:
// network failure, non-2xx HTTP status or rate limiting
type TransportError struct {
	StatusCode  int
	RateLimited bool
	Message     string
	Err         error
}

func (e *TransportError) Error() string {
	return e.Message
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRateLimited) work for rate limited responses
func (e *TransportError) Is(target error) bool {
	return target == ErrRateLimited && e.RateLimited
}

// NewStatusError creates transport error for a non-2xx HTTP status
func NewStatusError(code int, detail string) *TransportError {
	if code == http.StatusTooManyRequests {
		return &TransportError{
			StatusCode:  code,
			RateLimited: true,
			Message:     types.RateLimitedMessage,
		}
	}
	msg := fmt.Sprintf("request failed with status %d", code)
	if detail != "" {
		msg += ": " + detail
	}
	return &TransportError{
		StatusCode: code,
		Message:    msg,
	}
}

// NewTransportError wraps network level failure
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{
		Message: fmt.Sprintf("%s: %v", op, err),
		Err:     err,
	}
}
