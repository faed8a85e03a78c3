// Command remote-judge starts a http server that runs and grades programs on
// a remote code execution sandbox.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/codepractice/remote-judge/cmd/remote-judge/config"
	restexecutor "github.com/codepractice/remote-judge/cmd/remote-judge/rest_executor"
	"github.com/codepractice/remote-judge/cmd/remote-judge/version"
	wsexecutor "github.com/codepractice/remote-judge/cmd/remote-judge/ws_executor"
	"github.com/codepractice/remote-judge/judger"
	"github.com/codepractice/remote-judge/problem"
	"github.com/codepractice/remote-judge/request"
	"github.com/coreos/go-systemd/v22/daemon"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/grpclog"
)

var logger *zap.Logger

func main() {
	conf := loadConf()
	if conf.Version {
		fmt.Println(version.Version)
		return
	}
	initLogger(conf)
	defer logger.Sync()
	if ce := logger.Check(zap.InfoLevel, "Config loaded"); ce != nil {
		ce.Write(zap.String("config", fmt.Sprintf("%+v", conf)))
	}

	langs, err := conf.Languages()
	if err != nil {
		logger.Fatal("load languages failed", zap.Error(err))
	}
	var reg prometheus.Registerer
	if conf.EnableMetrics {
		reg = prometheus.DefaultRegisterer
		initMetrics(reg)
	}
	if conf.GoJudgeGRPCAddr != "" {
		grpclog.SetLoggerV2(zapgrpc.NewLogger(logger))
	}
	b, closeBackend, err := conf.NewBackend(langs, logger, reg)
	if err != nil {
		logger.Fatal("create sandbox backend failed", zap.Error(err))
	}
	if conf.EnableMetrics {
		b = newMetricsBackend(b)
	}
	factory := conf.Factory(langs)
	j, err := conf.NewJudger(b, factory, logger)
	if err != nil {
		logger.Fatal("create judger failed", zap.Error(err))
	}
	exercises := loadExercises(conf)
	logger.Info("Judger created",
		zap.String("backend", string(b.Kind())),
		zap.String("language", conf.Language),
		zap.Int("parallelism", conf.Parallelism),
		zap.Int("exercises", len(exercises.List())))

	loadActivatedListeners()
	servers := []initFunc{
		cleanUpBackend(closeBackend),
		initHTTPServer(conf, j, factory, exercises),
		initMonitorHTTPServer(conf),
	}

	// stop on signal or when any server exits
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stops := []stopFunc{}
	for _, s := range servers {
		start, cleanUp := s()
		if start != nil {
			go func() {
				start()
				stop()
			}()
		}
		if cleanUp != nil {
			stops = append(stops, cleanUp)
		}
	}
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); ok {
		logger.Info("Notified systemd ready")
	} else if err != nil {
		logger.Warn("Notify systemd failed", zap.Error(err))
	}

	<-ctx.Done()
	stop()
	logger.Info("Shutting Down...")
	daemon.SdNotify(false, daemon.SdNotifyStopping)
	shutdown(stops, 3*time.Second)
}

// shutdown runs every stop function concurrently and waits at most timeout
func shutdown(stops []stopFunc, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var eg errgroup.Group
	for _, s := range stops {
		eg.Go(func() error {
			return s(ctx)
		})
	}
	done := make(chan error, 1)
	go func() { done <- eg.Wait() }()
	select {
	case err := <-done:
		logger.Info("Shutdown Finished", zap.Error(err))
	case <-ctx.Done():
		logger.Warn("Shutdown timed out", zap.Error(ctx.Err()))
	}
}

func loadConf() *config.Config {
	var conf config.Config
	if err := conf.Load(); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		log.Fatalln("load config failed ", err)
	}
	return &conf
}

func loadExercises(conf *config.Config) *problem.Set {
	if conf.ExerciseDir == "" {
		return problem.NewSet(nil)
	}
	list, err := problem.LoadDir(conf.ExerciseDir)
	if err != nil {
		logger.Fatal("load exercises failed", zap.String("dir", conf.ExerciseDir), zap.Error(err))
	}
	return problem.NewSet(list)
}

type (
	stopFunc func(ctx context.Context) error
	initFunc func() (start func(), cleanUp stopFunc)
)

func cleanUpBackend(closeFn func() error) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		return nil, func(ctx context.Context) error {
			err := closeFn()
			logger.Info("Sandbox backend closed")
			return err
		}
	}
}

func initHTTPServer(conf *config.Config, j *judger.Judger, f *request.Factory, exercises *problem.Set) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		r := initHTTPMux(conf, j, f, exercises)
		srv := http.Server{
			Addr:    conf.HTTPAddr,
			Handler: r,
		}

		return func() {
				lis, err := newListener("http", conf.HTTPAddr)
				if err != nil {
					logger.Error("Http server listen failed", zap.Error(err))
					return
				}
				logger.Info("Starting http server", zap.String("addr", conf.HTTPAddr), zap.Stringer("listener", lis.Addr()))
				if err := srv.Serve(lis); errors.Is(err, http.ErrServerClosed) {
					logger.Info("Http server stopped", zap.Error(err))
				} else {
					logger.Error("Http server stopped", zap.Error(err))
				}
			}, func(ctx context.Context) error {
				logger.Info("Http server shutting down")
				return srv.Shutdown(ctx)
			}
	}
}

func initMonitorHTTPServer(conf *config.Config) initFunc {
	return func() (start func(), cleanUp stopFunc) {
		mr := initMonitorHTTPMux(conf)
		if mr == nil {
			return nil, nil
		}
		msrv := http.Server{
			Addr:    conf.MonitorAddr,
			Handler: mr,
		}
		return func() {
				lis, err := newListener("monitor", conf.MonitorAddr)
				if err != nil {
					logger.Error("Monitoring http listen failed", zap.Error(err))
					return
				}
				logger.Info("Starting monitoring http server", zap.String("addr", conf.MonitorAddr), zap.Stringer("listener", lis.Addr()))
				logger.Info("Monitoring http server stopped", zap.Error(msrv.Serve(lis)))
			}, func(ctx context.Context) error {
				logger.Info("Monitoring http server shutdown")
				return msrv.Shutdown(ctx)
			}
	}
}

func initLogger(conf *config.Config) {
	if conf.Silent {
		logger = zap.NewNop()
		return
	}

	var err error
	if conf.Release {
		logger, err = zap.NewProduction()
	} else {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if !conf.EnableDebug {
			config.Level.SetLevel(zap.InfoLevel)
		}
		logger, err = config.Build()
	}
	if err != nil {
		log.Fatalln("init logger failed ", err)
	}
}

func initHTTPMux(conf *config.Config, j *judger.Judger, f *request.Factory, exercises *problem.Set) http.Handler {
	if conf.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, "", false))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	if conf.EnableMetrics {
		initGinMetrics(r)
	}

	r.GET("/version", generateHandleVersion(conf))
	r.GET("/config", generateHandleConfig(conf))

	if conf.AuthToken != "" {
		r.Use(tokenAuth(conf.AuthToken))
		logger.Info("Attach token auth")
	}

	// Rest Handle
	restexecutor.NewCmdHandle(j, f, logger).Register(r)
	restexecutor.NewExerciseHandle(exercises, j, f).Register(r)

	// WebSocket Handle
	wsexecutor.New(j, f, logger).Register(r)

	return r
}

func initMonitorHTTPMux(conf *config.Config) http.Handler {
	if !conf.EnableMetrics && !conf.EnableDebug {
		return nil
	}
	mux := http.NewServeMux()
	if conf.EnableMetrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	if conf.EnableDebug {
		initDebugRoute(mux)
	}
	return mux
}

func initDebugRoute(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
}

func initGinMetrics(r *gin.Engine) {
	p := ginprometheus.NewWithConfig(ginprometheus.Config{
		Subsystem:          "gin",
		DisableBodyReading: true,
	})
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		return c.FullPath()
	}
	r.Use(p.HandlerFunc())
}

func tokenAuth(token string) gin.HandlerFunc {
	const bearer = "Bearer "
	return func(c *gin.Context) {
		reqToken := c.GetHeader("Authorization")
		if strings.HasPrefix(reqToken, bearer) && reqToken[len(bearer):] == token {
			c.Next()
			return
		}
		c.AbortWithStatus(http.StatusUnauthorized)
	}
}

func generateHandleVersion(conf *config.Config) func(*gin.Context) {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"buildVersion": version.Version,
			"goVersion":    runtime.Version(),
			"platform":     runtime.GOARCH,
			"os":           runtime.GOOS,
			"backend":      conf.Backend,
		})
	}
}

// generateHandleConfig reports the effective judging config without any secret
func generateHandleConfig(conf *config.Config) func(*gin.Context) {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"backend":         conf.Backend,
			"language":        conf.Language,
			"languageVersion": conf.LanguageVersion,
			"cpuLimit":        conf.CPULimit.String(),
			"wallLimit":       conf.WallLimit.String(),
			"compileLimit":    conf.CompileLimit.String(),
			"memoryLimit":     conf.Limits().Memory.String(),
			"requestTimeout":  conf.RequestTimeout.String(),
			"retryAttempts":   conf.RetryAttempts,
			"parallelism":     conf.Parallelism,
		})
	}
}
