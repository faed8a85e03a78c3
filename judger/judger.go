// Package judger runs programs on a sandbox backend and grades them against
// test cases.
package judger

import (
	"context"

	"github.com/codepractice/remote-judge/request"
	"github.com/codepractice/remote-judge/sandbox"
	"github.com/codepractice/remote-judge/types"
	"github.com/codepractice/remote-judge/verdict"
	"go.uber.org/zap"
)

// Observer receives the result of every test case as soon as it finished.
// OnCase is called from multiple goroutines.
type Observer interface {
	OnCase(index int, r types.TestCaseResult)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(index int, r types.TestCaseResult)

// OnCase implements Observer
func (f ObserverFunc) OnCase(index int, r types.TestCaseResult) {
	f(index, r)
}

// Config defines the judger
type Config struct {
	Backend sandbox.Backend
	Builder *request.Builder
	Logger  *zap.Logger

	// Parallelism limits in-flight sandbox calls of a single RunAll, <= 0 means unlimited
	Parallelism int

	// Observer is optional
	Observer Observer
}

// Judger executes programs through the configured backend.
// It holds no per run state and is safe for concurrent use.
type Judger struct {
	backend     sandbox.Backend
	builder     *request.Builder
	logger      *zap.Logger
	parallelism int
	observer    Observer
}

// New creates judger
func New(c Config) *Judger {
	if c.Builder == nil {
		c.Builder = request.NewBuilder("c", "", types.Limits{})
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return &Judger{
		backend:     c.Backend,
		builder:     c.Builder,
		logger:      c.Logger,
		parallelism: c.Parallelism,
		observer:    c.Observer,
	}
}

// WithObserver returns a copy of the judger reporting to o
func (j *Judger) WithObserver(o Observer) *Judger {
	n := *j
	n.observer = o
	return &n
}

// WithBuilder returns a copy of the judger building requests with b
func (j *Judger) WithBuilder(b *request.Builder) *Judger {
	n := *j
	n.builder = b
	return &n
}

// Execute runs source once with stdin.
// Only validation errors are returned, every sandbox failure is an outcome.
func (j *Judger) Execute(ctx context.Context, source, stdin string) (types.Outcome, error) {
	req, err := j.builder.Build(source, stdin)
	if err != nil {
		return types.Outcome{}, err
	}
	return j.execute(ctx, req), nil
}

func (j *Judger) execute(ctx context.Context, req types.ExecutionRequest) types.Outcome {
	raw, err := j.backend.Execute(ctx, req)
	if err != nil {
		j.logger.Debug("sandbox request failed", zap.String("backend", string(j.backend.Kind())), zap.Error(err))
		return verdict.FromError(err)
	}
	o := verdict.Normalize(raw)
	if o.IsUnknown() {
		j.logger.Warn("unmapped sandbox response", zap.String("backend", string(j.backend.Kind())), zap.Any("response", raw))
	}
	return o
}
