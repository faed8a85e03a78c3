// Package sandbox defines the client side contract for remote code execution
// backends and the raw responses they produce.
//
// Backends only report transport failures as errors. Compile errors, runtime
// errors and resource limits are verdicts carried inside the RawResponse and
// interpreted by package verdict.
package sandbox

import (
	"context"
	"fmt"

	"github.com/codepractice/remote-judge/types"
)

// Kind names a backend implementation
type Kind string

// Supported backends
const (
	KindJudge0  Kind = "judge0"
	KindPiston  Kind = "piston"
	KindGoJudge Kind = "gojudge"
)

// ParseKind converts the configured backend name to Kind
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindJudge0, KindPiston, KindGoJudge:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sandbox backend %q", s)
	}
}

// Backend sends a single execution request to a remote sandbox.
// Implementations must be safe for concurrent use and keep no per call state.
type Backend interface {
	// Kind returns the backend kind
	Kind() Kind

	// Execute runs the request and waits for its verdict.
	// Transport failures are returned as *TransportError, an unsupported
	// language is reported before any request is sent.
	Execute(context.Context, types.ExecutionRequest) (RawResponse, error)
}

// RawResponse is the backend specific response of one execution
type RawResponse interface {
	Backend() Kind
}
