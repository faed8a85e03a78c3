// Package verdict maps backend specific sandbox responses to outcomes.
//
// The categories are checked in a fixed order and the first match wins:
// time limit, memory limit, compile error, runtime error, unfinished status
// and finally success.
package verdict

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codepractice/remote-judge/sandbox"
	"github.com/codepractice/remote-judge/types"
)

// Normalize converts raw sandbox response to outcome
func Normalize(raw sandbox.RawResponse) types.Outcome {
	switch r := raw.(type) {
	case *sandbox.Judge0Response:
		return judge0(r)
	case *sandbox.PistonResponse:
		return piston(r)
	case *sandbox.GoJudgeResponse:
		return goJudge(r)
	default:
		return types.RuntimeError(types.UnknownErrorDetails)
	}
}

// FromError converts an error returned by the sandbox client to outcome
func FromError(err error) types.Outcome {
	if err == nil {
		return types.TransportError(types.UnknownErrorDetails)
	}
	if errors.Is(err, sandbox.ErrRateLimited) {
		return types.TransportError(types.RateLimitedMessage)
	}
	if errors.Is(err, context.Canceled) {
		return types.TransportError("request canceled")
	}
	return types.TransportError(err.Error())
}

func judge0(r *sandbox.Judge0Response) types.Outcome {
	var id int
	if r.Status != nil {
		id = r.Status.ID
	}
	switch {
	case id == sandbox.Judge0TimeLimit:
		return types.TimedOut()
	case id == sandbox.Judge0MemoryLimit:
		return types.MemoryExceeded()
	case notBlank(r.CompileOutput):
		return types.CompileError(r.CompileOutput)
	case notBlank(r.Stderr):
		return types.RuntimeError(r.Stderr)
	case notBlank(r.Message):
		return types.RuntimeError(r.Message)
	case id != sandbox.Judge0Accepted:
		return types.RuntimeError(describe(r.Status))
	}
	return success(r.Stdout)
}

func describe(s *sandbox.Judge0Status) string {
	if s == nil || strings.TrimSpace(s.Description) == "" {
		return types.UnknownErrorDetails
	}
	return s.Description
}

func piston(r *sandbox.PistonResponse) types.Outcome {
	for _, s := range []*sandbox.PistonStage{r.Compile, r.Run} {
		if s != nil && s.Status == sandbox.PistonStatusTimeout {
			return types.TimedOut()
		}
	}
	if c := r.Compile; c != nil {
		if notBlank(c.Stderr) {
			return types.CompileError(c.Stderr)
		}
		if c.Code != nil && *c.Code != 0 {
			return types.CompileError(fmt.Sprintf("compilation failed with exit code %d", *c.Code))
		}
		if c.Signal != nil && *c.Signal != "" {
			return types.CompileError("compilation killed by signal " + *c.Signal)
		}
	}
	run := r.Run
	if run == nil {
		return types.RuntimeError("program was not executed")
	}
	switch {
	case notBlank(run.Stderr):
		return types.RuntimeError(run.Stderr)
	case run.Code != nil && *run.Code != 0:
		return types.RuntimeError(fmt.Sprintf("program exited with code %d", *run.Code))
	case run.Signal != nil && *run.Signal != "":
		return types.RuntimeError("program killed by signal " + *run.Signal)
	case run.Status != "":
		if notBlank(run.Message) {
			return types.RuntimeError(run.Message)
		}
		return types.RuntimeError(types.UnknownErrorDetails)
	}
	return success(run.Stdout)
}

func goJudge(r *sandbox.GoJudgeResponse) types.Outcome {
	for _, s := range []*sandbox.GoJudgeResult{r.Compile, r.Run} {
		if s == nil {
			continue
		}
		switch s.Status {
		case sandbox.GoJudgeTimeLimit:
			return types.TimedOut()
		case sandbox.GoJudgeMemoryLimit:
			return types.MemoryExceeded()
		}
	}
	if c := r.Compile; c != nil && c.Status != sandbox.GoJudgeAccepted {
		msg := strings.TrimSpace(c.Stderr() + c.Stdout())
		if msg == "" {
			msg = goJudgeDetails(c)
		}
		return types.CompileError(msg)
	}
	run := r.Run
	if run == nil {
		return types.RuntimeError("program was not executed")
	}
	switch {
	case notBlank(run.Stderr()):
		return types.RuntimeError(run.Stderr())
	case run.Status == sandbox.GoJudgeNonZeroExit || (run.Status == sandbox.GoJudgeAccepted && run.ExitStatus != 0):
		return types.RuntimeError(fmt.Sprintf("program exited with code %d", run.ExitStatus))
	case run.Status == sandbox.GoJudgeSignalled:
		return types.RuntimeError(fmt.Sprintf("program killed by signal %d", run.ExitStatus))
	case run.Status != sandbox.GoJudgeAccepted:
		return types.RuntimeError(goJudgeDetails(run))
	}
	return success(run.Stdout())
}

func goJudgeDetails(r *sandbox.GoJudgeResult) string {
	switch {
	case r.Error != "":
		return r.Status + ": " + r.Error
	case r.Status != "" && r.Status != sandbox.GoJudgeInvalidStatus:
		return r.Status
	default:
		return types.UnknownErrorDetails
	}
}

func success(stdout string) types.Outcome {
	out := strings.TrimSpace(stdout)
	if out == "" {
		out = types.NoOutputPlaceholder
	}
	return types.Success(out)
}

func notBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}
