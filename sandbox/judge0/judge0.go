// Package judge0 implements the sandbox backend for the Judge0 API
// (RapidAPI hosted or self-hosted).
package judge0

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codepractice/remote-judge/language"
	"github.com/codepractice/remote-judge/sandbox"
	"github.com/codepractice/remote-judge/types"
	"go.uber.org/zap"
)

// Defaults of the RapidAPI hosted Judge0 CE
const (
	DefaultBaseURL      = "https://judge0-ce.p.rapidapi.com"
	DefaultHost         = "judge0-ce.p.rapidapi.com"
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxPolls     = 40
)

// Config defines the Judge0 backend
type Config struct {
	BaseURL string
	APIKey  string
	Host    string

	// Wait uses wait=true so the verdict is returned by the submit call.
	// Otherwise the submission token is polled.
	Wait         bool
	PollInterval time.Duration
	MaxPolls     int

	HTTPClient *http.Client
	Languages  *language.Registry
	Logger     *zap.Logger
}

// Client is the Judge0 backend
type Client struct {
	base   string
	header http.Header
	wait   bool

	pollInterval time.Duration
	maxPolls     int

	client *http.Client
	langs  *language.Registry
	logger *zap.Logger
}

var _ sandbox.Backend = &Client{}

type submission struct {
	SourceCode    string  `json:"source_code"`
	LanguageID    int     `json:"language_id"`
	Stdin         string  `json:"stdin"`
	CPUTimeLimit  float64 `json:"cpu_time_limit"`
	MemoryLimit   uint64  `json:"memory_limit"`
	WallTimeLimit float64 `json:"wall_time_limit"`
}

// New creates Judge0 backend
func New(c Config) *Client {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Host == "" {
		if u, err := url.Parse(c.BaseURL); err == nil && u.Host != "" {
			c.Host = u.Host
		} else {
			c.Host = DefaultHost
		}
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.MaxPolls <= 0 {
		c.MaxPolls = DefaultMaxPolls
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

	header := make(http.Header)
	if c.APIKey != "" {
		header.Set("X-RapidAPI-Key", c.APIKey)
		header.Set("X-RapidAPI-Host", c.Host)
	}
	return &Client{
		base:         strings.TrimRight(c.BaseURL, "/"),
		header:       header,
		wait:         c.Wait,
		pollInterval: c.PollInterval,
		maxPolls:     c.MaxPolls,
		client:       c.HTTPClient,
		langs:        c.Languages,
		logger:       c.Logger,
	}
}

// Kind implements sandbox.Backend
func (c *Client) Kind() sandbox.Kind {
	return sandbox.KindJudge0
}

// Execute implements sandbox.Backend
func (c *Client) Execute(ctx context.Context, req types.ExecutionRequest) (sandbox.RawResponse, error) {
	lang, err := c.langs.Get(req.Language)
	if err != nil {
		return nil, err
	}
	if lang.Judge0ID == 0 {
		return nil, fmt.Errorf("language %q is not available on judge0", req.Language)
	}

	sub := submission{
		SourceCode:    req.Source,
		LanguageID:    lang.Judge0ID,
		Stdin:         req.Stdin,
		CPUTimeLimit:  req.Limits.CPUTime.Seconds(),
		MemoryLimit:   uint64(req.Limits.Memory) >> 10,
		WallTimeLimit: req.Limits.WallTime.Seconds(),
	}
	u := fmt.Sprintf("%s/submissions?base64_encoded=false&wait=%t", c.base, c.wait)

	resp := new(sandbox.Judge0Response)
	if err := sandbox.DoJSON(ctx, c.client, http.MethodPost, u, c.header, sub, resp); err != nil {
		return nil, err
	}
	c.logger.Debug("judge0 submission", zap.String("token", resp.Token), zap.Bool("finished", resp.Finished()))
	// wait=true may still return an unfinished submission when the server
	// hits its own wait timeout
	if resp.Finished() || (c.wait && resp.Token == "") {
		return resp, nil
	}
	return c.poll(ctx, resp.Token)
}

func (c *Client) poll(ctx context.Context, token string) (*sandbox.Judge0Response, error) {
	if token == "" {
		return nil, &sandbox.TransportError{Message: "judge0 returned no submission token"}
	}
	u := fmt.Sprintf("%s/submissions/%s?base64_encoded=false", c.base, url.PathEscape(token))

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for i := 0; i < c.maxPolls; i++ {
		select {
		case <-ctx.Done():
			return nil, sandbox.NewTransportError("poll submission", ctx.Err())
		case <-ticker.C:
		}

		resp := new(sandbox.Judge0Response)
		if err := sandbox.DoJSON(ctx, c.client, http.MethodGet, u, c.header, nil, resp); err != nil {
			return nil, err
		}
		if resp.Finished() {
			return resp, nil
		}
	}
	return nil, &sandbox.TransportError{
		Message: fmt.Sprintf("submission did not finish after %d polls", c.maxPolls),
	}
}
