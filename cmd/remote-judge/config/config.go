package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/codepractice/remote-judge/types"
	"github.com/joho/godotenv"
	"github.com/koding/multiconfig"
)

// EnvPrefix is the prefix of all environment variables
const EnvPrefix = "RJ"

// Config defines remote judge configuration
type Config struct {
	// sandbox backend
	Backend         string `flagUsage:"sandbox backend: judge0, piston or gojudge" default:"piston"`
	Language        string `flagUsage:"default language of submitted programs" default:"c"`
	LanguageVersion string `flagUsage:"language version override (piston only)"`
	LanguageConf    string `flagUsage:"yaml file that adds or overrides language definitions"`

	// judge0
	Judge0URL          string        `flagUsage:"judge0 base url" default:"https://judge0-ce.p.rapidapi.com"`
	Judge0Key          string        `flagUsage:"judge0 rapidapi key"`
	Judge0Host         string        `flagUsage:"judge0 rapidapi host (derived from url by default)"`
	Judge0Wait         bool          `flagUsage:"wait for the verdict in the submit call instead of polling" default:"true"`
	Judge0PollInterval time.Duration `flagUsage:"judge0 polling interval" default:"500ms"`
	Judge0MaxPolls     int           `flagUsage:"judge0 max polls per submission" default:"40"`

	// piston
	PistonURL           string        `flagUsage:"piston base url" default:"https://emkc.org/api/v2/piston"`
	PistonMaxRunTimeout time.Duration `flagUsage:"largest run timeout accepted by the piston instance" default:"3s"`
	PistonEnforceMemory bool          `flagUsage:"send memory limit to piston instead of unlimited"`

	// go-judge
	GoJudgeURL       string      `flagUsage:"go-judge REST base url" default:"http://localhost:5050"`
	GoJudgeGRPCAddr  string      `flagUsage:"go-judge gRPC address (REST is used when empty)"`
	GoJudgeToken     string      `flagUsage:"go-judge bearer token"`
	GoJudgeProcLimit uint64      `flagUsage:"go-judge process count limit" default:"50"`
	GoJudgeOutputMax *types.Size `flagUsage:"go-judge stdout / stderr collect limit" default:"10m"`

	// limits
	CPULimit     time.Duration `flagUsage:"cpu time limit per run" default:"5s"`
	WallLimit    time.Duration `flagUsage:"wall clock limit per run" default:"10s"`
	CompileLimit time.Duration `flagUsage:"compile time limit" default:"10s"`
	MemoryLimit  *types.Size   `flagUsage:"memory limit per run" default:"128000k"`

	// client behaviour
	RequestTimeout time.Duration `flagUsage:"client side timeout per sandbox call (0 waits for the sandbox)"`
	RetryAttempts  int           `flagUsage:"attempts per call when rate limited (<= 1 disables retry)"`
	RetryBaseDelay time.Duration `flagUsage:"initial retry backoff" default:"1s"`
	RetryMaxDelay  time.Duration `flagUsage:"maximum retry backoff" default:"8s"`
	Parallelism    int           `flagUsage:"max in-flight sandbox calls per test run (0 is unlimited)"`

	// exercises
	ExerciseDir string `flagUsage:"directory of exercise yaml / toml files"`

	// server config
	HTTPAddr      string `flagUsage:"specifies the http binding address" default:":5060"`
	MonitorAddr   string `flagUsage:"specifies the metrics binding address" default:":5062"`
	AuthToken     string `flagUsage:"bearer token auth for REST"`
	EnableDebug   bool   `flagUsage:"enable debug endpoint"`
	EnableMetrics bool   `flagUsage:"enable promethus metrics endpoint"`

	// logger config
	Release bool `flagUsage:"release level of logs"`
	Silent  bool `flagUsage:"do not print logs"`

	// show version and exit
	Version bool `flagUsage:"show version and exit"`
}

// Load loads config from .env file, environment variables and flags
func (c *Config) Load() error {
	if err := loadDotEnv(); err != nil {
		return err
	}
	cl := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    EnvPrefix,
			CamelCase: true,
		},
		&multiconfig.FlagLoader{
			CamelCase: true,
			EnvPrefix: EnvPrefix,
		},
	)
	if os.Getpid() == 1 {
		c.Release = true
	}
	return cl.Load(c)
}

// LoadEnv loads config from .env file and environment variables only,
// for commands that parse their own flags
func (c *Config) LoadEnv() error {
	if err := loadDotEnv(); err != nil {
		return err
	}
	cl := multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{
			Prefix:    EnvPrefix,
			CamelCase: true,
		},
	)
	return cl.Load(c)
}

// Limits returns the resource limits of every run
func (c *Config) Limits() types.Limits {
	l := types.Limits{
		CPUTime:     c.CPULimit,
		WallTime:    c.WallLimit,
		CompileTime: c.CompileLimit,
	}
	if c.MemoryLimit != nil {
		l.Memory = *c.MemoryLimit
	}
	return l
}

// loadDotEnv loads .env from the working directory when present.
// Variables already set in the environment take precedence.
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
