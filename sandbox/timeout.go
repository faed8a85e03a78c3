package sandbox

import (
	"context"
	"errors"
	"time"

	"github.com/codepractice/remote-judge/types"
)

var _ Backend = &timeoutBackend{}

type timeoutBackend struct {
	Backend
	timeout time.Duration
}

// WithTimeout bounds every request with a client side deadline.
// A non-positive duration returns the backend unchanged.
func WithTimeout(b Backend, d time.Duration) Backend {
	if d <= 0 {
		return b
	}
	return &timeoutBackend{Backend: b, timeout: d}
}

func (t *timeoutBackend) Execute(ctx context.Context, req types.ExecutionRequest) (RawResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.Backend.Execute(ctx, req)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
		return nil, &TransportError{
			Message: "sandbox did not respond in " + t.timeout.String(),
			Err:     err,
		}
	}
	return resp, err
}
