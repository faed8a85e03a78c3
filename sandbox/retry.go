package sandbox

import (
	"context"
	"errors"
	"time"

	"github.com/codepractice/remote-judge/types"
	"go.uber.org/zap"
)

// RetryPolicy bounds the retries of rate limited requests
type RetryPolicy struct {
	MaxAttempts int           `flagUsage:"total attempts per request when rate limited (<= 1 disables retry)"`
	BaseDelay   time.Duration `flagUsage:"initial backoff delay" default:"1s"`
	MaxDelay    time.Duration `flagUsage:"maximum backoff delay" default:"8s"`
}

// Enabled reports whether the policy performs any retry
func (p RetryPolicy) Enabled() bool {
	return p.MaxAttempts > 1
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay
	if d <= 0 {
		d = time.Second
	}
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

var _ Backend = &retryBackend{}

type retryBackend struct {
	Backend
	policy RetryPolicy
	logger *zap.Logger
}

// WithRetry wraps backend to retry requests rejected with HTTP 429 using
// exponential backoff. Other errors and all verdicts are returned as is.
func WithRetry(b Backend, p RetryPolicy, logger *zap.Logger) Backend {
	if !p.Enabled() {
		return b
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &retryBackend{Backend: b, policy: p, logger: logger}
}

func (r *retryBackend) Execute(ctx context.Context, req types.ExecutionRequest) (RawResponse, error) {
	for attempt := 1; ; attempt++ {
		resp, err := r.Backend.Execute(ctx, req)
		if err == nil || !errors.Is(err, ErrRateLimited) || attempt >= r.policy.MaxAttempts {
			return resp, err
		}

		d := r.policy.delay(attempt)
		r.logger.Debug("rate limited, retrying",
			zap.String("backend", string(r.Kind())), zap.Int("attempt", attempt), zap.Duration("delay", d))

		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, err
		case <-t.C:
		}
	}
}
