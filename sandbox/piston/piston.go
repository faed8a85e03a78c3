// Package piston implements the sandbox backend for the Piston execution engine.
package piston

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codepractice/remote-judge/language"
	"github.com/codepractice/remote-judge/sandbox"
	"github.com/codepractice/remote-judge/types"
	"go.uber.org/zap"
)

// Defaults of the public Piston instance
const (
	DefaultBaseURL       = "https://emkc.org/api/v2/piston"
	DefaultMaxRunTimeout = 3 * time.Second
)

// Config defines the Piston backend
type Config struct {
	BaseURL string

	// MaxRunTimeout caps the run timeout, public instances reject larger values
	MaxRunTimeout time.Duration

	// EnforceMemory sends the configured memory limit instead of -1 (unlimited)
	EnforceMemory bool

	HTTPClient *http.Client
	Languages  *language.Registry
	Logger     *zap.Logger
}

// Client is the Piston backend
type Client struct {
	base          string
	maxRunTimeout time.Duration
	enforceMemory bool

	client *http.Client
	langs  *language.Registry
	logger *zap.Logger
}

var _ sandbox.Backend = &Client{}

type file struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type executeRequest struct {
	Language           string `json:"language"`
	Version            string `json:"version"`
	Files              []file `json:"files"`
	Stdin              string `json:"stdin"`
	CompileTimeout     int64  `json:"compile_timeout"`
	RunTimeout         int64  `json:"run_timeout"`
	CompileMemoryLimit int64  `json:"compile_memory_limit"`
	RunMemoryLimit     int64  `json:"run_memory_limit"`
}

// New creates Piston backend
func New(c Config) *Client {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.MaxRunTimeout <= 0 {
		c.MaxRunTimeout = DefaultMaxRunTimeout
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Languages == nil {
		c.Languages = language.Default()
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return &Client{
		base:          strings.TrimRight(c.BaseURL, "/"),
		maxRunTimeout: c.MaxRunTimeout,
		enforceMemory: c.EnforceMemory,
		client:        c.HTTPClient,
		langs:         c.Languages,
		logger:        c.Logger,
	}
}

// Kind implements sandbox.Backend
func (c *Client) Kind() sandbox.Kind {
	return sandbox.KindPiston
}

// Execute implements sandbox.Backend
func (c *Client) Execute(ctx context.Context, req types.ExecutionRequest) (sandbox.RawResponse, error) {
	lang, err := c.langs.Get(req.Language)
	if err != nil {
		return nil, err
	}
	if lang.PistonLanguage == "" {
		return nil, fmt.Errorf("language %q is not available on piston", req.Language)
	}

	body := c.newRequest(lang, req)
	c.logger.Debug("piston execute", zap.String("language", body.Language), zap.String("version", body.Version),
		zap.Int64("runTimeout", body.RunTimeout))

	resp := new(sandbox.PistonResponse)
	if err := sandbox.DoJSON(ctx, c.client, http.MethodPost, c.base+"/execute", nil, body, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) newRequest(lang language.Language, req types.ExecutionRequest) executeRequest {
	version := req.LanguageVersion
	if version == "" {
		version = lang.PistonVersion
	}
	name := lang.SourceFileName
	if name == "" {
		name = "main"
	}

	runTimeout := req.Limits.CPUTime
	if runTimeout <= 0 || runTimeout > c.maxRunTimeout {
		runTimeout = c.maxRunTimeout
	}
	memory := int64(-1)
	if c.enforceMemory && req.Limits.Memory > 0 {
		memory = int64(req.Limits.Memory)
	}
	return executeRequest{
		Language:           lang.PistonLanguage,
		Version:            version,
		Files:              []file{{Name: name, Content: req.Source}},
		Stdin:              req.Stdin,
		CompileTimeout:     req.Limits.CompileTime.Milliseconds(),
		RunTimeout:         runTimeout.Milliseconds(),
		CompileMemoryLimit: memory,
		RunMemoryLimit:     memory,
	}
}
