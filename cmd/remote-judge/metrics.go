package main

import (
	"context"
	"errors"
	"time"

	"github.com/codepractice/remote-judge/sandbox"
	"github.com/codepractice/remote-judge/types"
	"github.com/codepractice/remote-judge/verdict"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "remote_judge"
)

var (
	// 10ms -> 30s
	timeBuckets = []float64{
		0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.6, 0.8, 1.0, 1.5,
		2, 3, 5, 8, 10, 15, 20, 30,
	}

	metricsSummaryQuantile = map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001}

	execErrorCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "sandbox_error",
		Help:      "Number of sandbox calls returned transport error",
	}, []string{"backend", "reason"})

	execTimeHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "sandbox_time_seconds",
		Help:      "Histogram for the round trip time of sandbox calls",
		Buckets:   timeBuckets,
	}, []string{"backend", "status"})

	execTimeSummary = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace:  metricsNamespace,
		Name:       "sandbox_time",
		Help:       "Summary for the round trip time of sandbox calls",
		Objectives: metricsSummaryQuantile,
	}, []string{"backend", "status"})

	execInFlight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "sandbox_in_flight",
		Help:      "Number of sandbox calls currently in flight",
	}, []string{"backend"})
)

func initMetrics(reg prometheus.Registerer) {
	reg.MustRegister(execErrorCount)
	reg.MustRegister(execTimeHist, execTimeSummary)
	reg.MustRegister(execInFlight)
}

var _ sandbox.Backend = &metricsBackend{}

type metricsBackend struct {
	sandbox.Backend
}

func newMetricsBackend(b sandbox.Backend) sandbox.Backend {
	return &metricsBackend{Backend: b}
}

func (m *metricsBackend) Execute(ctx context.Context, req types.ExecutionRequest) (sandbox.RawResponse, error) {
	kind := string(m.Kind())
	inFlight := execInFlight.WithLabelValues(kind)
	inFlight.Inc()
	defer inFlight.Dec()

	start := time.Now()
	raw, err := m.Backend.Execute(ctx, req)
	d := time.Since(start).Seconds()

	status := types.StatusTransportError.String()
	if err != nil {
		execErrorCount.WithLabelValues(kind, errorReason(err)).Inc()
	} else {
		status = verdict.Normalize(raw).Status.String()
	}
	execTimeHist.WithLabelValues(kind, status).Observe(d)
	execTimeSummary.WithLabelValues(kind, status).Observe(d)
	return raw, err
}

func errorReason(err error) string {
	var te *sandbox.TransportError
	switch {
	case errors.Is(err, sandbox.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &te) && te.StatusCode != 0:
		return "http_status"
	case errors.As(err, &te):
		return "network"
	default:
		return "invalid_request"
	}
}
