package gojudge

import (
	"context"
	"errors"
	"fmt"

	"github.com/codepractice/remote-judge/sandbox"
	"github.com/criyle/go-judge/pb"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

type grpcTransport struct {
	conn   *grpc.ClientConn
	client pb.ExecutorClient
}

var _ transport = &grpcTransport{}

func newGRPCTransport(addr, token string, logger *zap.Logger, reg prometheus.Registerer) (*grpcTransport, error) {
	interceptors := []grpc.UnaryClientInterceptor{
		grpc_logging.UnaryClientInterceptor(InterceptorLogger(logger),
			grpc_logging.WithLogOnEvents(grpc_logging.FinishCall)),
	}
	if reg != nil {
		m, err := registerClientMetrics(reg)
		if err != nil {
			return nil, err
		}
		interceptors = append([]grpc.UnaryClientInterceptor{m.UnaryClientInterceptor()}, interceptors...)
	}

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(interceptors...),
	}
	if token != "" {
		opts = append(opts, grpc.WithPerRPCCredentials(newTokenAuth(token)))
	}
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc client %s: %w", addr, err)
	}
	return &grpcTransport{
		conn:   conn,
		client: pb.NewExecutorClient(conn),
	}, nil
}

func registerClientMetrics(reg prometheus.Registerer) (*grpc_prometheus.ClientMetrics, error) {
	m := grpc_prometheus.NewClientMetrics(grpc_prometheus.WithClientHandlingTimeHistogram())
	if err := reg.Register(m); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*grpc_prometheus.ClientMetrics); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return m, nil
}

func (t *grpcTransport) exec(ctx context.Context, req Request) (Response, error) {
	resp, err := t.client.Exec(ctx, convertPBRequest(req))
	if err != nil {
		return Response{}, grpcError("exec", err)
	}
	return Response{
		RequestID: resp.GetRequestID(),
		Results:   convertPBResults(resp.GetResults()),
		ErrorMsg:  resp.GetError(),
	}, nil
}

func (t *grpcTransport) deleteFile(ctx context.Context, id string) error {
	if _, err := t.client.FileDelete(ctx, pb.FileID_builder{FileID: id}.Build()); err != nil {
		return grpcError("delete file", err)
	}
	return nil
}

func (t *grpcTransport) close() error {
	return t.conn.Close()
}

func grpcError(op string, err error) *sandbox.TransportError {
	te := sandbox.NewTransportError(op, err)
	if s, ok := status.FromError(err); ok {
		te.Message = fmt.Sprintf("%s: %s", op, s.Message())
	}
	return te
}

func convertPBRequest(req Request) *pb.Request {
	return pb.Request_builder{
		RequestID: req.RequestID,
		Cmd:       convertPBCmd(req.Cmd),
	}.Build()
}

func convertPBCmd(cmd []Cmd) []*pb.Request_CmdType {
	ret := make([]*pb.Request_CmdType, 0, len(cmd))
	for _, c := range cmd {
		ret = append(ret, pb.Request_CmdType_builder{
			Args:           c.Args,
			Env:            c.Env,
			Files:          convertPBFiles(c.Files),
			CpuTimeLimit:   c.CPULimit,
			ClockTimeLimit: c.ClockLimit,
			MemoryLimit:    c.MemoryLimit,
			ProcLimit:      c.ProcLimit,
			CopyIn:         convertPBCopyIn(c.CopyIn),
			CopyOutCached:  convertPBCopyOut(c.CopyOutCached),
		}.Build())
	}
	return ret
}

func convertPBCopyIn(copyIn map[string]CmdFile) map[string]*pb.Request_File {
	rt := make(map[string]*pb.Request_File, len(copyIn))
	for k, f := range copyIn {
		rt[k] = convertPBFile(f)
	}
	return rt
}

func convertPBCopyOut(copyOut []string) []*pb.Request_CmdCopyOutFile {
	rt := make([]*pb.Request_CmdCopyOutFile, 0, len(copyOut))
	for _, n := range copyOut {
		rt = append(rt, pb.Request_CmdCopyOutFile_builder{Name: n}.Build())
	}
	return rt
}

func convertPBFiles(files []*CmdFile) []*pb.Request_File {
	ret := make([]*pb.Request_File, 0, len(files))
	for _, f := range files {
		if f == nil {
			ret = append(ret, nil)
		} else {
			ret = append(ret, convertPBFile(*f))
		}
	}
	return ret
}

func convertPBFile(f CmdFile) *pb.Request_File {
	switch {
	case f.Content != nil:
		return pb.Request_File_builder{
			Memory: pb.Request_MemoryFile_builder{Content: []byte(*f.Content)}.Build(),
		}.Build()
	case f.FileID != nil:
		return pb.Request_File_builder{
			Cached: pb.Request_CachedFile_builder{FileID: *f.FileID}.Build(),
		}.Build()
	case f.Name != nil && f.Max != nil:
		return pb.Request_File_builder{
			Pipe: pb.Request_PipeCollector_builder{Name: *f.Name, Max: *f.Max}.Build(),
		}.Build()
	}
	return nil
}

func convertPBResults(res []*pb.Response_Result) []sandbox.GoJudgeResult {
	ret := make([]sandbox.GoJudgeResult, 0, len(res))
	for _, r := range res {
		ret = append(ret, sandbox.GoJudgeResult{
			Status:     sandbox.GoJudgeStatusName(int(r.GetStatus())),
			ExitStatus: int(r.GetExitStatus()),
			Error:      r.GetError(),
			Time:       r.GetTime(),
			Memory:     r.GetMemory(),
			RunTime:    r.GetRunTime(),
			Files:      convertFiles(r.GetFiles()),
			FileIDs:    r.GetFileIDs(),
		})
	}
	return ret
}

func convertFiles(buf map[string][]byte) map[string]string {
	ret := make(map[string]string, len(buf))
	for k, v := range buf {
		ret[k] = string(v)
	}
	return ret
}

type tokenAuth struct {
	token string
}

func newTokenAuth(token string) credentials.PerRPCCredentials {
	return &tokenAuth{token: token}
}

// GetRequestMetadata maps the token to the authorization header
func (t *tokenAuth) GetRequestMetadata(ctx context.Context, in ...string) (map[string]string, error) {
	return map[string]string{
		"authorization": "Bearer " + t.token,
	}, nil
}

func (*tokenAuth) RequireTransportSecurity() bool {
	return false
}

// InterceptorLogger adapts zap logger to the grpc middleware logger
func InterceptorLogger(l *zap.Logger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(ctx context.Context, lvl grpc_logging.Level, msg string, fields ...any) {
		f := make([]zap.Field, 0, len(fields)/2)
		for i := 0; i+1 < len(fields); i += 2 {
			key, ok := fields[i].(string)
			if !ok {
				continue
			}
			switch v := fields[i+1].(type) {
			case string:
				f = append(f, zap.String(key, v))
			case int:
				f = append(f, zap.Int(key, v))
			case bool:
				f = append(f, zap.Bool(key, v))
			default:
				f = append(f, zap.Any(key, v))
			}
		}

		logger := l.WithOptions(zap.AddCallerSkip(1)).With(f...)
		switch lvl {
		case grpc_logging.LevelDebug:
			logger.Debug(msg)
		case grpc_logging.LevelInfo:
			logger.Info(msg)
		case grpc_logging.LevelWarn:
			logger.Warn(msg)
		default:
			logger.Error(msg)
		}
	})
}
