package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/codepractice/remote-judge/judger"
	"github.com/codepractice/remote-judge/sandbox/piston"
	"github.com/codepractice/remote-judge/types"
	"go.uber.org/zap/zaptest"
)

// fakePiston serves /execute like a Piston instance running a program that
// prints the sum of two integers, or fails to compile when the source has no
// closing brace
func fakePiston(t *testing.T, calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req struct {
			Files []struct{ Content string } `json:"files"`
			Stdin string                     `json:"stdin"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if !strings.Contains(req.Files[0].Content, "}") {
			w.Write([]byte(`{"compile":{"stdout":"","stderr":"main.c:1:12: error: expected declaration or statement at end of input","code":1,"signal":null}}`))
			return
		}
		sum := 0
		for _, f := range strings.Fields(req.Stdin) {
			n, _ := strconv.Atoi(f)
			sum += n
		}
		w.Write([]byte(`{"compile":{"stdout":"","stderr":"","code":0,"signal":null},"run":{"stdout":"` +
			strconv.Itoa(sum) + `\n","stderr":"","code":0,"signal":null}}`))
	}))
}

func newClient(t *testing.T, s *httptest.Server) *Client {
	b := piston.New(piston.Config{BaseURL: s.URL, HTTPClient: s.Client()})
	return New(judger.New(judger.Config{Backend: b, Logger: zaptest.NewLogger(t)}))
}

const sumProgram = `#include <stdio.h>
int main() { int a, b; scanf("%d %d", &a, &b); printf("%d\n", a + b); return 0; }`

func TestExecuteProgram(t *testing.T) {
	var calls atomic.Int32
	s := fakePiston(t, &calls)
	defer s.Close()
	c := newClient(t, s)

	if got := c.ExecuteProgram(context.Background(), sumProgram, "2 3"); got != "5" {
		t.Errorf("ExecuteProgram() = %q, want %q", got, "5")
	}
}

func TestExecuteProgramEmpty(t *testing.T) {
	var calls atomic.Int32
	s := fakePiston(t, &calls)
	defer s.Close()
	c := newClient(t, s)

	if got := c.ExecuteProgram(context.Background(), "   ", ""); got != EmptyProgramMessage {
		t.Errorf("ExecuteProgram() = %q", got)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("http calls = %d, want 0", n)
	}
}

func TestExecuteProgramCompileError(t *testing.T) {
	var calls atomic.Int32
	s := fakePiston(t, &calls)
	defer s.Close()
	c := newClient(t, s)

	got := c.ExecuteProgram(context.Background(), "int main() {", "")
	if !strings.HasPrefix(got, "Compile error:\n") || !strings.Contains(got, "expected declaration") {
		t.Errorf("ExecuteProgram() = %q", got)
	}
}

func TestExecuteProgramRateLimited(t *testing.T) {
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer s.Close()
	c := newClient(t, s)

	if got := c.ExecuteProgram(context.Background(), sumProgram, ""); got != "Error: "+types.RateLimitedMessage {
		t.Errorf("ExecuteProgram() = %q", got)
	}
}

func TestRunTestCases(t *testing.T) {
	var calls atomic.Int32
	s := fakePiston(t, &calls)
	defer s.Close()
	c := newClient(t, s)

	report, err := c.RunTestCases(context.Background(), sumProgram, []types.TestCase{
		{Input: "2 3", ExpectedOutput: "5"},
		{Input: "10 20", ExpectedOutput: "30"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !report.Passed || len(report.PerCase) != 2 || !report.PerCase[0].Passed || !report.PerCase[1].Passed {
		t.Errorf("unexpected report %+v", report)
	}
	if n := calls.Load(); n != 2 {
		t.Errorf("http calls = %d, want 2", n)
	}
}

func TestRunTestCasesCompileError(t *testing.T) {
	var calls atomic.Int32
	s := fakePiston(t, &calls)
	defer s.Close()
	c := newClient(t, s)

	report, err := c.RunTestCases(context.Background(), "int main() {", []types.TestCase{
		{Input: "2 3", ExpectedOutput: "5"},
		{Input: "10 20", ExpectedOutput: "30"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if report.Passed {
		t.Fatal("compile error should not pass")
	}
	for i, r := range report.PerCase {
		if r.Passed || r.Message != report.PerCase[0].Message || !strings.HasPrefix(r.Message, "Compile error:\n") {
			t.Errorf("case %d: %+v", i, r)
		}
	}
}

func TestRunTestCasesEmpty(t *testing.T) {
	var calls atomic.Int32
	s := fakePiston(t, &calls)
	defer s.Close()
	c := newClient(t, s)

	_, err := c.RunTestCases(context.Background(), "", []types.TestCase{{Input: "1 2", ExpectedOutput: "3"}})
	if !errors.Is(err, types.ErrEmptyProgram) {
		t.Fatalf("expected empty program error, got %v", err)
	}
	if n := calls.Load(); n != 0 {
		t.Errorf("http calls = %d, want 0", n)
	}
}
