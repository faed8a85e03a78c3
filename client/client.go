// Package client is the entry point for the practice page: run a program once
// or grade it against test cases, with every result rendered as a user facing
// message.
package client

import (
	"context"
	"errors"

	"github.com/codepractice/remote-judge/judger"
	"github.com/codepractice/remote-judge/types"
)

// EmptyProgramMessage is returned when there is no code to run
const EmptyProgramMessage = "Error: please write some code before running it."

// CaseReport is the result of a single test case
type CaseReport struct {
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// Report is the result of grading a program, PerCase is in test case order
type Report struct {
	Passed  bool         `json:"passed"`
	PerCase []CaseReport `json:"perCase"`
}

// NewReport converts the aggregate verdict to a report
func NewReport(v *types.AggregateVerdict) Report {
	r := Report{
		Passed:  v.AllPassed,
		PerCase: make([]CaseReport, 0, len(v.Results)),
	}
	for _, c := range v.Results {
		r.PerCase = append(r.PerCase, CaseReport{Passed: c.Passed, Message: c.Message})
	}
	return r
}

// Client runs programs through a judger
type Client struct {
	j *judger.Judger
}

// New creates client
func New(j *judger.Judger) *Client {
	return &Client{j: j}
}

// ExecuteProgram runs source once with stdin and returns either the trimmed
// output or a category prefixed error message. It never fails.
func (c *Client) ExecuteProgram(ctx context.Context, source, stdin string) string {
	o, err := c.j.Execute(ctx, source, stdin)
	if err != nil {
		return errorMessage(err)
	}
	return o.Message()
}

// RunTestCases grades source against cases.
// An empty program returns types.ErrEmptyProgram without any sandbox call.
func (c *Client) RunTestCases(ctx context.Context, source string, cases []types.TestCase) (Report, error) {
	v, err := c.j.RunAll(ctx, source, cases)
	if err != nil {
		return Report{}, err
	}
	return NewReport(v), nil
}

func errorMessage(err error) string {
	if errors.Is(err, types.ErrEmptyProgram) {
		return EmptyProgramMessage
	}
	return "Error: " + err.Error()
}
