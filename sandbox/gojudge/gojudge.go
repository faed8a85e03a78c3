// Package gojudge implements the sandbox backend for a self-hosted go-judge
// server, reached through its REST API or its gRPC API.
package gojudge

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/codepractice/remote-judge/language"
	"github.com/codepractice/remote-judge/sandbox"
	"github.com/codepractice/remote-judge/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Defaults for go-judge requests
const (
	DefaultBaseURL   = "http://localhost:5050"
	DefaultProcLimit = 50
	DefaultOutputMax = 10 << 20 // 10m
)

// Config defines the go-judge backend.
// The gRPC API is used when GRPCAddr is set, otherwise the REST API at BaseURL.
type Config struct {
	BaseURL  string
	GRPCAddr string
	Token    string

	ProcLimit uint64
	OutputMax int64

	HTTPClient *http.Client
	Languages  *language.Registry
	Logger     *zap.Logger

	// Registerer receives the gRPC client metrics, nil disables them
	Registerer prometheus.Registerer
}

// transport sends requests to the go-judge server
type transport interface {
	exec(context.Context, Request) (Response, error)
	deleteFile(context.Context, string) error
	close() error
}

// Client is the go-judge backend
type Client struct {
	t         transport
	procLimit uint64
	outputMax int64
	langs     *language.Registry
	logger    *zap.Logger
}

var _ sandbox.Backend = &Client{}

// New creates go-judge backend
func New(c Config) (*Client, error) {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.ProcLimit == 0 {
		c.ProcLimit = DefaultProcLimit
	}
	if c.OutputMax <= 0 {
		c.OutputMax = DefaultOutputMax
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

	var (
		t   transport
		err error
	)
	if c.GRPCAddr != "" {
		t, err = newGRPCTransport(c.GRPCAddr, c.Token, c.Logger, c.Registerer)
		if err != nil {
			return nil, err
		}
	} else {
		t = newRESTTransport(c.BaseURL, c.Token, c.HTTPClient)
	}
	return newClient(t, c), nil
}

func newClient(t transport, c Config) *Client {
	return &Client{
		t:         t,
		procLimit: c.ProcLimit,
		outputMax: c.OutputMax,
		langs:     c.Languages,
		logger:    c.Logger,
	}
}

// Close releases the underlying connection
func (c *Client) Close() error {
	return c.t.close()
}

// Kind implements sandbox.Backend
func (c *Client) Kind() sandbox.Kind {
	return sandbox.KindGoJudge
}

// Execute implements sandbox.Backend.
// Compiled languages are compiled first and the binary is kept in the go-judge
// file store until the run step finished.
func (c *Client) Execute(ctx context.Context, req types.ExecutionRequest) (sandbox.RawResponse, error) {
	lang, err := c.langs.Get(req.Language)
	if err != nil {
		return nil, err
	}
	runArgs, err := lang.RunArgs()
	if err != nil {
		return nil, err
	}

	ret := new(sandbox.GoJudgeResponse)
	copyIn := map[string]CmdFile{lang.SourceFileName: *memoryFile(req.Source)}

	if lang.Compiled() {
		compileArgs, err := lang.CompileArgs()
		if err != nil {
			return nil, err
		}
		res, err := c.execOne(ctx, Cmd{
			Args:          compileArgs,
			Env:           lang.Environ(),
			Files:         c.stdio(""),
			CPULimit:      uint64(req.Limits.CompileTime),
			ClockLimit:    uint64(req.Limits.CompileTime * 2),
			MemoryLimit:   uint64(req.Limits.Memory),
			ProcLimit:     c.procLimit,
			CopyIn:        copyIn,
			CopyOutCached: []string{lang.CompiledFileName},
		})
		if err != nil {
			return nil, err
		}
		ret.Compile = &res
		if res.Status != sandbox.GoJudgeAccepted {
			return ret, nil
		}

		id, ok := res.FileIDs[lang.CompiledFileName]
		if !ok {
			return nil, &sandbox.TransportError{Message: "go-judge returned no compiled file"}
		}
		defer c.removeFile(ctx, id)
		copyIn = map[string]CmdFile{lang.CompiledFileName: *cachedFile(id)}
	}

	res, err := c.execOne(ctx, Cmd{
		Args:        runArgs,
		Env:         lang.Environ(),
		Files:       c.stdio(req.Stdin),
		CPULimit:    uint64(req.Limits.CPUTime),
		ClockLimit:  uint64(req.Limits.WallTime),
		MemoryLimit: uint64(req.Limits.Memory),
		ProcLimit:   c.procLimit,
		CopyIn:      copyIn,
	})
	if err != nil {
		return nil, err
	}
	ret.Run = &res
	return ret, nil
}

func (c *Client) stdio(stdin string) []*CmdFile {
	return []*CmdFile{
		memoryFile(stdin),
		collector("stdout", c.outputMax),
		collector("stderr", c.outputMax),
	}
}

func (c *Client) execOne(ctx context.Context, cmd Cmd) (sandbox.GoJudgeResult, error) {
	req := Request{
		RequestID: uuid.NewString(),
		Cmd:       []Cmd{cmd},
	}
	c.logger.Debug("go-judge exec", zap.String("requestId", req.RequestID), zap.Strings("args", cmd.Args))

	resp, err := c.t.exec(ctx, req)
	if err != nil {
		return sandbox.GoJudgeResult{}, err
	}
	if resp.ErrorMsg != "" {
		return sandbox.GoJudgeResult{}, &sandbox.TransportError{Message: "go-judge: " + resp.ErrorMsg}
	}
	if len(resp.Results) != 1 {
		return sandbox.GoJudgeResult{}, &sandbox.TransportError{
			Message: fmt.Sprintf("go-judge returned %d results for 1 command", len(resp.Results)),
		}
	}
	r := resp.Results[0]
	c.logger.Debug("go-judge result", zap.String("requestId", req.RequestID), zap.String("status", r.Status),
		zap.Int("exitStatus", r.ExitStatus), zap.Duration("time", time.Duration(r.Time)))
	return r, nil
}

func (c *Client) removeFile(ctx context.Context, id string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := c.t.deleteFile(ctx, id); err != nil {
		c.logger.Warn("failed to remove compiled file", zap.String("fileId", id), zap.Error(err))
	}
}
