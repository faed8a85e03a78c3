package sandbox

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/codepractice/remote-judge/types"
	"go.uber.org/zap/zaptest"
)

type fakeBackend struct {
	calls atomic.Int32
	fn    func(ctx context.Context, call int) (RawResponse, error)
}

func (f *fakeBackend) Kind() Kind { return KindPiston }

func (f *fakeBackend) Execute(ctx context.Context, _ types.ExecutionRequest) (RawResponse, error) {
	n := int(f.calls.Add(1))
	return f.fn(ctx, n)
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"judge0", "piston", "gojudge"} {
		k, err := ParseKind(s)
		if err != nil || string(k) != s {
			t.Errorf("ParseKind(%q) = %q, %v", s, k, err)
		}
	}
	if _, err := ParseKind("docker"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestStatusError(t *testing.T) {
	err := error(NewStatusError(http.StatusTooManyRequests, "slow down"))
	if !errors.Is(err, ErrRateLimited) {
		t.Fatal("429 should match ErrRateLimited")
	}
	if err.Error() != types.RateLimitedMessage {
		t.Errorf("message = %q", err.Error())
	}

	err = NewStatusError(http.StatusBadGateway, "upstream down")
	if errors.Is(err, ErrRateLimited) {
		t.Error("502 should not match ErrRateLimited")
	}
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected error %v", err)
	}
	if te.Error() != "request failed with status 502: upstream down" {
		t.Errorf("message = %q", te.Error())
	}
}

func TestDoJSON(t *testing.T) {
	var gotHeader, gotType string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Key")
		gotType = r.Header.Get("Content-Type")
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"stdout":"hi","status":{"id":3,"description":"Accepted"}}`))
		case "/bad":
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"c-1.0.0 runtime is unknown"}`))
		case "/limit":
			w.WriteHeader(http.StatusTooManyRequests)
		case "/garbage":
			w.Write([]byte(`not json`))
		}
	}))
	defer s.Close()

	ctx := context.Background()
	h := http.Header{"X-Key": {"secret"}}

	var resp Judge0Response
	if err := DoJSON(ctx, s.Client(), http.MethodPost, s.URL+"/ok", h, map[string]string{"a": "b"}, &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Stdout != "hi" || resp.Status.ID != Judge0Accepted {
		t.Errorf("unexpected response %+v", resp)
	}
	if gotHeader != "secret" || gotType != "application/json" {
		t.Errorf("headers not sent: %q %q", gotHeader, gotType)
	}

	err := DoJSON(ctx, s.Client(), http.MethodPost, s.URL+"/bad", nil, struct{}{}, &resp)
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected transport error, got %v", err)
	}
	if te.Message != "request failed with status 400: c-1.0.0 runtime is unknown" {
		t.Errorf("message = %q", te.Message)
	}

	if err := DoJSON(ctx, s.Client(), http.MethodGet, s.URL+"/limit", nil, nil, &resp); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected rate limited, got %v", err)
	}
	if err := DoJSON(ctx, s.Client(), http.MethodGet, s.URL+"/garbage", nil, nil, &resp); !errors.As(err, &te) {
		t.Errorf("expected decode transport error, got %v", err)
	}
}

func TestDoJSONNetworkError(t *testing.T) {
	s := httptest.NewServer(http.NotFoundHandler())
	url := s.URL
	s.Close()

	err := DoJSON(context.Background(), http.DefaultClient, http.MethodGet, url, nil, nil, nil)
	var te *TransportError
	if !errors.As(err, &te) || te.Err == nil {
		t.Fatalf("expected wrapped network error, got %v", err)
	}
}

func TestWithRetry(t *testing.T) {
	ok := &PistonResponse{Run: &PistonStage{Stdout: "ok"}}
	f := &fakeBackend{fn: func(_ context.Context, call int) (RawResponse, error) {
		if call < 3 {
			return nil, NewStatusError(http.StatusTooManyRequests, "")
		}
		return ok, nil
	}}
	b := WithRetry(f, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}, zaptest.NewLogger(t))
	resp, err := b.Execute(context.Background(), types.ExecutionRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp != ok || f.calls.Load() != 3 {
		t.Errorf("got %v after %d calls", resp, f.calls.Load())
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	f := &fakeBackend{fn: func(context.Context, int) (RawResponse, error) {
		return nil, NewStatusError(http.StatusTooManyRequests, "")
	}}
	b := WithRetry(f, RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}, nil)
	_, err := b.Execute(context.Background(), types.ExecutionRequest{})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
	if n := f.calls.Load(); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestWithRetryIgnoresOtherErrors(t *testing.T) {
	f := &fakeBackend{fn: func(context.Context, int) (RawResponse, error) {
		return nil, NewStatusError(http.StatusInternalServerError, "")
	}}
	b := WithRetry(f, RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond}, nil)
	if _, err := b.Execute(context.Background(), types.ExecutionRequest{}); err == nil {
		t.Fatal("expected error")
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestWithRetryDisabled(t *testing.T) {
	f := &fakeBackend{}
	if b := WithRetry(f, RetryPolicy{}, nil); b != Backend(f) {
		t.Error("disabled policy should return backend unchanged")
	}
}

func TestRetryDelay(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 10, BaseDelay: time.Second, MaxDelay: 5 * time.Second}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second}
	for i, w := range want {
		if d := p.delay(i + 1); d != w {
			t.Errorf("delay(%d) = %v, want %v", i+1, d, w)
		}
	}
}

func TestWithTimeout(t *testing.T) {
	f := &fakeBackend{fn: func(ctx context.Context, _ int) (RawResponse, error) {
		<-ctx.Done()
		return nil, NewTransportError("send request", ctx.Err())
	}}
	b := WithTimeout(f, 10*time.Millisecond)
	_, err := b.Execute(context.Background(), types.ExecutionRequest{})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if te.Message != "sandbox did not respond in 10ms" {
		t.Errorf("message = %q", te.Message)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("cause should be kept")
	}

	if WithTimeout(f, 0) != Backend(f) {
		t.Error("zero timeout should return backend unchanged")
	}
}
