package config

import (
	"net/http"

	"github.com/codepractice/remote-judge/judger"
	"github.com/codepractice/remote-judge/language"
	"github.com/codepractice/remote-judge/request"
	"github.com/codepractice/remote-judge/sandbox"
	"github.com/codepractice/remote-judge/sandbox/gojudge"
	"github.com/codepractice/remote-judge/sandbox/judge0"
	"github.com/codepractice/remote-judge/sandbox/piston"
	"github.com/codepractice/remote-judge/types"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Languages creates the language registry with the configured overrides
func (c *Config) Languages() (*language.Registry, error) {
	r := language.Default()
	if c.LanguageConf != "" {
		if err := r.LoadFile(c.LanguageConf); err != nil {
			return nil, err
		}
	}
	if _, err := r.Get(types.Language(c.Language)); err != nil {
		return nil, err
	}
	return r, nil
}

// NewBackend creates the configured sandbox backend, wrapped with the
// configured timeout and retry. The returned close function releases its
// connections. reg may be nil.
func (c *Config) NewBackend(langs *language.Registry, logger *zap.Logger, reg prometheus.Registerer) (sandbox.Backend, func() error, error) {
	kind, err := sandbox.ParseKind(c.Backend)
	if err != nil {
		return nil, nil, err
	}

	var (
		b       sandbox.Backend
		closeFn = func() error { return nil }
	)
	hc := &http.Client{}
	switch kind {
	case sandbox.KindJudge0:
		b = judge0.New(judge0.Config{
			BaseURL:      c.Judge0URL,
			APIKey:       c.Judge0Key,
			Host:         c.Judge0Host,
			Wait:         c.Judge0Wait,
			PollInterval: c.Judge0PollInterval,
			MaxPolls:     c.Judge0MaxPolls,
			HTTPClient:   hc,
			Languages:    langs,
			Logger:       logger,
		})
	case sandbox.KindPiston:
		b = piston.New(piston.Config{
			BaseURL:       c.PistonURL,
			MaxRunTimeout: c.PistonMaxRunTimeout,
			EnforceMemory: c.PistonEnforceMemory,
			HTTPClient:    hc,
			Languages:     langs,
			Logger:        logger,
		})
	case sandbox.KindGoJudge:
		var outputMax int64
		if c.GoJudgeOutputMax != nil {
			outputMax = int64(*c.GoJudgeOutputMax)
		}
		gc, err := gojudge.New(gojudge.Config{
			BaseURL:    c.GoJudgeURL,
			GRPCAddr:   c.GoJudgeGRPCAddr,
			Token:      c.GoJudgeToken,
			ProcLimit:  c.GoJudgeProcLimit,
			OutputMax:  outputMax,
			HTTPClient: hc,
			Languages:  langs,
			Logger:     logger,
			Registerer: reg,
		})
		if err != nil {
			return nil, nil, err
		}
		b, closeFn = gc, gc.Close
	}

	b = sandbox.WithTimeout(b, c.RequestTimeout)
	b = sandbox.WithRetry(b, sandbox.RetryPolicy{
		MaxAttempts: c.RetryAttempts,
		BaseDelay:   c.RetryBaseDelay,
		MaxDelay:    c.RetryMaxDelay,
	}, logger)
	return b, closeFn, nil
}

// Factory creates the request builder factory
func (c *Config) Factory(langs *language.Registry) *request.Factory {
	return &request.Factory{
		Default:   types.Language(c.Language),
		Version:   c.LanguageVersion,
		Limits:    c.Limits(),
		Languages: langs,
	}
}

// NewJudger creates judger running the default language on b
func (c *Config) NewJudger(b sandbox.Backend, f *request.Factory, logger *zap.Logger) (*judger.Judger, error) {
	builder, err := f.Builder("")
	if err != nil {
		return nil, err
	}
	return judger.New(judger.Config{
		Backend:     b,
		Builder:     builder,
		Logger:      logger,
		Parallelism: c.Parallelism,
	}), nil
}
