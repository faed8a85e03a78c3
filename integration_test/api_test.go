//go:build integration

// Package integration_test runs programs on a live sandbox. The sandbox is
// configured with the RJ_* environment variables, a go-judge instance on
// localhost:5050 is used by default.
package integration_test

import (
	"os"
	"testing"

	"github.com/codepractice/remote-judge/client"
	"github.com/codepractice/remote-judge/cmd/remote-judge/config"
	"github.com/codepractice/remote-judge/judger"
	"github.com/codepractice/remote-judge/sandbox"
	"github.com/codepractice/remote-judge/types"
	"go.uber.org/zap/zaptest"
)

func loadConfig(t testing.TB) *config.Config {
	t.Helper()
	conf := new(config.Config)
	if err := conf.LoadEnv(); err != nil {
		t.Fatal(err)
	}
	if os.Getenv("RJ_BACKEND") == "" {
		conf.Backend = string(sandbox.KindGoJudge)
	}
	return conf
}

// newJudger creates judger of lang on the configured sandbox
func newJudger(t testing.TB, lang types.Language) *judger.Judger {
	t.Helper()
	conf := loadConfig(t)
	logger := zaptest.NewLogger(t)
	langs, err := conf.Languages()
	if err != nil {
		t.Fatal(err)
	}
	b, closeFn, err := conf.NewBackend(langs, logger, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { closeFn() })

	f := conf.Factory(langs)
	j, err := conf.NewJudger(b, f, logger)
	if err != nil {
		t.Fatal(err)
	}
	builder, err := f.Builder(lang)
	if err != nil {
		t.Fatal(err)
	}
	return j.WithBuilder(builder)
}

func newClient(t testing.TB, lang types.Language) *client.Client {
	return client.New(newJudger(t, lang))
}
