package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/codepractice/remote-judge/sandbox"
	"github.com/codepractice/remote-judge/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type stubBackend struct {
	raw sandbox.RawResponse
	err error
}

func (stubBackend) Kind() sandbox.Kind { return sandbox.KindJudge0 }

func (s stubBackend) Execute(context.Context, types.ExecutionRequest) (sandbox.RawResponse, error) {
	return s.raw, s.err
}

func TestErrorReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{sandbox.NewStatusError(429, ""), "rate_limited"},
		{sandbox.NewStatusError(500, "boom"), "http_status"},
		{sandbox.NewTransportError("post", errors.New("connection refused")), "network"},
		{&sandbox.TransportError{Message: "timeout", Err: context.DeadlineExceeded}, "timeout"},
		{fmt.Errorf("run: %w", context.Canceled), "canceled"},
		{errors.New("language not supported"), "invalid_request"},
	}
	for _, tc := range tests {
		if got := errorReason(tc.err); got != tc.want {
			t.Errorf("errorReason(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestMetricsBackend(t *testing.T) {
	initMetrics(prometheus.NewRegistry())

	accepted := &sandbox.Judge0Response{Stdout: "1\n", Status: &sandbox.Judge0Status{ID: sandbox.Judge0Accepted}}
	b := newMetricsBackend(stubBackend{raw: accepted})
	if _, err := b.Execute(context.Background(), types.ExecutionRequest{}); err != nil {
		t.Fatal(err)
	}
	b = newMetricsBackend(stubBackend{err: sandbox.NewStatusError(429, "")})
	if _, err := b.Execute(context.Background(), types.ExecutionRequest{}); err == nil {
		t.Fatal("expected error")
	}

	if n := testutil.ToFloat64(execErrorCount.WithLabelValues("judge0", "rate_limited")); n != 1 {
		t.Errorf("rate limited errors = %v, want 1", n)
	}
	if n := testutil.CollectAndCount(execTimeHist); n != 2 {
		t.Errorf("histogram series = %d, want 2", n)
	}
	if n := testutil.ToFloat64(execInFlight.WithLabelValues("judge0")); n != 0 {
		t.Errorf("in flight = %v, want 0", n)
	}
}
