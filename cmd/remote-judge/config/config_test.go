package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codepractice/remote-judge/sandbox"
	"github.com/codepractice/remote-judge/types"
	"go.uber.org/zap/zaptest"
)

func loadEnv(t *testing.T) *Config {
	t.Helper()
	var c Config
	if err := c.LoadEnv(); err != nil {
		t.Fatal(err)
	}
	return &c
}

func TestDefaults(t *testing.T) {
	c := loadEnv(t)
	if c.Backend != "piston" || c.Language != "c" || !c.Judge0Wait {
		t.Errorf("unexpected defaults %+v", c)
	}
	l := c.Limits()
	if l.CPUTime != 5*time.Second || l.WallTime != 10*time.Second || l.Memory != 128000<<10 {
		t.Errorf("unexpected limits %+v", l)
	}
	if c.RequestTimeout != 0 || c.RetryAttempts != 0 {
		t.Error("timeout and retry should be disabled by default")
	}
}

func TestEnvironment(t *testing.T) {
	t.Setenv("RJ_BACKEND", "judge0")
	t.Setenv("RJ_CPU_LIMIT", "2s")
	t.Setenv("RJ_MEMORY_LIMIT", "64m")
	t.Setenv("RJ_PARALLELISM", "4")

	c := loadEnv(t)
	if c.Backend != "judge0" || c.CPULimit != 2*time.Second || *c.MemoryLimit != 64<<20 || c.Parallelism != 4 {
		t.Errorf("environment not applied %+v", c)
	}
}

func TestDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("RJ_AUTH_TOKEN=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("RJ_AUTH_TOKEN", "")
	os.Unsetenv("RJ_AUTH_TOKEN")

	c := loadEnv(t)
	if c.AuthToken != "from-dotenv" {
		t.Errorf("AuthToken = %q", c.AuthToken)
	}
}

func TestNewBackend(t *testing.T) {
	c := loadEnv(t)
	langs, err := c.Languages()
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []sandbox.Kind{sandbox.KindJudge0, sandbox.KindPiston, sandbox.KindGoJudge} {
		c.Backend = string(k)
		b, closeFn, err := c.NewBackend(langs, zaptest.NewLogger(t), nil)
		if err != nil {
			t.Fatalf("%s: %v", k, err)
		}
		if b.Kind() != k {
			t.Errorf("kind = %q, want %q", b.Kind(), k)
		}
		if err := closeFn(); err != nil {
			t.Error(err)
		}
	}

	c.Backend = "docker"
	if _, _, err := c.NewBackend(langs, zaptest.NewLogger(t), nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestLanguages(t *testing.T) {
	c := loadEnv(t)
	c.Language = "brainfuck"
	if _, err := c.Languages(); err == nil {
		t.Error("expected error for unknown default language")
	}
}

func TestNewJudger(t *testing.T) {
	c := loadEnv(t)
	c.LanguageVersion = "9.3.0"
	langs, err := c.Languages()
	if err != nil {
		t.Fatal(err)
	}
	f := c.Factory(langs)
	if b, err := f.Builder(""); err != nil || b.Version != "9.3.0" || b.Language != types.Language("c") {
		t.Errorf("unexpected builder %+v, %v", b, err)
	}

	b, closeFn, err := c.NewBackend(langs, zaptest.NewLogger(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if _, err := c.NewJudger(b, f, zaptest.NewLogger(t)); err != nil {
		t.Fatal(err)
	}
}
