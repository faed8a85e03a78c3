package piston

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/codepractice/remote-judge/language"
	"github.com/codepractice/remote-judge/request"
	"github.com/codepractice/remote-judge/sandbox"
	"github.com/codepractice/remote-judge/types"
	"go.uber.org/zap/zaptest"
)

func testRequest(t *testing.T) types.ExecutionRequest {
	t.Helper()
	req, err := request.NewBuilder("c", "", types.Limits{}).Build("int main(){}", "5")
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestExecute(t *testing.T) {
	var got executeRequest
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/execute" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"language":"c","version":"10.2.0",
			"compile":{"stdout":"","stderr":"","output":"","code":0,"signal":null},
			"run":{"stdout":"25\n","stderr":"","output":"25\n","code":0,"signal":null}}`))
	}))
	defer s.Close()

	c := New(Config{BaseURL: s.URL, HTTPClient: s.Client(), Logger: zaptest.NewLogger(t)})
	raw, err := c.Execute(context.Background(), testRequest(t))
	if err != nil {
		t.Fatal(err)
	}
	resp, ok := raw.(*sandbox.PistonResponse)
	if !ok {
		t.Fatalf("unexpected response type %T", raw)
	}
	if resp.Run == nil || resp.Run.Stdout != "25\n" || resp.Run.Code == nil || *resp.Run.Code != 0 {
		t.Errorf("unexpected run stage %+v", resp.Run)
	}

	want := executeRequest{
		Language:           "c",
		Version:            "10.2.0",
		Files:              []file{{Name: "main.c", Content: "int main(){}"}},
		Stdin:              "5",
		CompileTimeout:     10000,
		RunTimeout:         3000,
		CompileMemoryLimit: -1,
		RunMemoryLimit:     -1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("request = %+v, want %+v", got, want)
	}
}

func TestNewRequestLimits(t *testing.T) {
	c := New(Config{EnforceMemory: true, MaxRunTimeout: 2 * time.Second})
	req := testRequest(t)
	req.Limits.CPUTime = time.Second
	req.LanguageVersion = "9.3.0"

	body := c.newRequest(mustLang(t, "c"), req)
	if body.RunTimeout != 1000 {
		t.Errorf("run timeout = %d, want 1000", body.RunTimeout)
	}
	if body.RunMemoryLimit != 128000<<10 {
		t.Errorf("memory = %d", body.RunMemoryLimit)
	}
	if body.Version != "9.3.0" {
		t.Errorf("version = %q", body.Version)
	}

	req.Limits.CPUTime = time.Minute
	if body := c.newRequest(mustLang(t, "c"), req); body.RunTimeout != 2000 {
		t.Errorf("run timeout should be clamped, got %d", body.RunTimeout)
	}
}

func TestExecuteErrorMessage(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"c-99.0.0 runtime is unknown"}`))
	}))
	defer s.Close()

	c := New(Config{BaseURL: s.URL, HTTPClient: s.Client()})
	_, err := c.Execute(context.Background(), testRequest(t))
	var te *sandbox.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if te.StatusCode != http.StatusBadRequest || te.Message != "request failed with status 400: c-99.0.0 runtime is unknown" {
		t.Errorf("unexpected error %+v", te)
	}
}

func TestExecuteRateLimited(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"Requests limited to 5 per second"}`))
	}))
	defer s.Close()

	c := New(Config{BaseURL: s.URL, HTTPClient: s.Client()})
	if _, err := c.Execute(context.Background(), testRequest(t)); !errors.Is(err, sandbox.ErrRateLimited) {
		t.Fatalf("expected rate limited, got %v", err)
	}
}

func mustLang(t *testing.T, id types.Language) language.Language {
	t.Helper()
	l, err := language.Default().Get(id)
	if err != nil {
		t.Fatal(err)
	}
	return l
}
