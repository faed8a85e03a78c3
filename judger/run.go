package judger

import (
	"context"
	"fmt"

	"github.com/codepractice/remote-judge/pkg/diff"
	"github.com/codepractice/remote-judge/request"
	"github.com/codepractice/remote-judge/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	passedMessage   = "Test passed"
	caseFailedError = "failed to run test case"
)

// RunAll runs source against every test case concurrently and grades each
// result. Results are in the order of cases. The source is validated once and
// nothing is sent when it is invalid. A failing case never affects the others.
func (j *Judger) RunAll(ctx context.Context, source string, cases []types.TestCase) (*types.AggregateVerdict, error) {
	if err := request.Validate(source); err != nil {
		return nil, err
	}

	results := make([]types.TestCaseResult, len(cases))

	var g errgroup.Group
	if j.parallelism > 0 {
		g.SetLimit(j.parallelism)
	}
	for i := range cases {
		g.Go(func() error {
			r := j.runCase(ctx, i, source, cases[i])
			results[i] = r
			if j.observer != nil {
				j.observer.OnCase(i, r)
			}
			return nil
		})
	}
	g.Wait()

	v := types.NewAggregateVerdict(results)
	j.logger.Debug("test cases finished", zap.Int("cases", len(cases)), zap.Bool("allPassed", v.AllPassed))
	return v, nil
}

func (j *Judger) runCase(ctx context.Context, index int, source string, tc types.TestCase) (r types.TestCaseResult) {
	defer func() {
		if p := recover(); p != nil {
			j.logger.Error("test case panicked", zap.Int("index", index), zap.Any("panic", p), zap.Stack("stack"))
			r = Grade(tc, types.RuntimeError(caseFailedError))
		}
	}()

	req, err := j.builder.Build(source, tc.Input)
	if err != nil {
		return Grade(tc, types.RuntimeError(fmt.Sprintf("%s: %v", caseFailedError, err)))
	}
	o := j.execute(ctx, req)
	j.logger.Debug("test case finished", zap.Int("index", index), zap.Stringer("status", o.Status))
	return Grade(tc, o)
}

// Grade compares the outcome of a run with the expected output of the case
func Grade(tc types.TestCase, o types.Outcome) types.TestCaseResult {
	r := types.TestCaseResult{
		TestCase: tc,
		Outcome:  o,
	}
	switch {
	case !o.IsSuccess():
		r.Message = o.Message()
	case diff.Equal(o.Stdout, tc.ExpectedOutput):
		r.Passed = true
		r.Message = passedMessage
	default:
		r.Message = "Wrong answer:\n" + diff.Compare(tc.ExpectedOutput, o.Stdout).Error()
	}
	return r
}
