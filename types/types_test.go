package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStatus_MarshalUnmarshalJSON(t *testing.T) {
	type wrap struct {
		Status Status `json:"status"`
	}
	for s := StatusSuccess; s <= StatusTransportError; s++ {
		orig := wrap{Status: s}
		data, err := json.Marshal(orig)
		if err != nil {
			t.Fatalf("Marshal error: %v", err)
		}
		var got wrap
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("Unmarshal error: %v", err)
		}
		if got.Status != orig.Status {
			t.Errorf("got %v, want %v", got.Status, orig.Status)
		}
	}
}

func TestStatus_UnmarshalJSON_Invalid(t *testing.T) {
	var s Status
	if err := s.UnmarshalJSON([]byte(`"not_a_status"`)); err == nil {
		t.Error("expected error for invalid status string")
	}
	if err := s.UnmarshalJSON([]byte(`3`)); err == nil {
		t.Error("expected error for non string status")
	}
}

func TestStatus_StringOutOfRange(t *testing.T) {
	if got := Status(42).String(); got != "Invalid" {
		t.Errorf("got %q, want Invalid", got)
	}
}

func TestSize_Set(t *testing.T) {
	cases := map[string]Size{
		"128":  128,
		"16k":  16 << 10,
		"128m": 128 << 20,
		"1G":   1 << 30,
		"10b":  10,
	}
	for in, want := range cases {
		var s Size
		if err := s.Set(in); err != nil {
			t.Fatalf("Set(%q) error: %v", in, err)
		}
		if s != want {
			t.Errorf("Set(%q) = %d, want %d", in, s, want)
		}
	}
	var s Size
	if err := s.Set("abc"); err == nil {
		t.Error("expected error for invalid size")
	}
	if err := s.Set(""); err == nil {
		t.Error("expected error for empty size")
	}
	if err := s.Set("99999999999g"); err == nil {
		t.Errorf("expected overflow error, got %d", s)
	}
	if err := s.Set("16777215t"); err == nil {
		t.Error("expected error for unknown unit")
	}
}

func TestOutcome_Message(t *testing.T) {
	cases := []struct {
		outcome Outcome
		prefix  string
	}{
		{Success("5"), "5"},
		{CompileError("main.c:1: error"), "Compile error:\nmain.c:1: error"},
		{RuntimeError("Segmentation fault"), "Runtime error:\nSegmentation fault"},
		{TimedOut(), "Error: time limit exceeded"},
		{MemoryExceeded(), "Error: memory limit exceeded"},
		{TransportError(RateLimitedMessage), "Error: Too many requests"},
		{Outcome{}, "Error: unknown error"},
	}
	for _, c := range cases {
		if got := c.outcome.Message(); !strings.HasPrefix(got, c.prefix) {
			t.Errorf("%v: got %q, want prefix %q", c.outcome.Status, got, c.prefix)
		}
	}
}

func TestOutcome_SingleCasePopulated(t *testing.T) {
	if o := Success("x"); o.Details != "" {
		t.Errorf("success carries details: %+v", o)
	}
	for _, o := range []Outcome{CompileError("a"), RuntimeError("b"), TransportError("c"), TimedOut(), MemoryExceeded()} {
		if o.Stdout != "" {
			t.Errorf("failure carries stdout: %+v", o)
		}
	}
}

func TestNewAggregateVerdict(t *testing.T) {
	if v := NewAggregateVerdict(nil); !v.AllPassed {
		t.Error("empty result list should pass vacuously")
	}
	v := NewAggregateVerdict([]TestCaseResult{{Passed: true}, {Passed: false}, {Passed: true}})
	if v.AllPassed {
		t.Error("expected AllPassed to be false")
	}
	if len(v.Results) != 3 {
		t.Errorf("expected 3 results, got %d", len(v.Results))
	}
	v = NewAggregateVerdict([]TestCaseResult{{Passed: true}, {Passed: true}})
	if !v.AllPassed {
		t.Error("expected AllPassed to be true")
	}
}
