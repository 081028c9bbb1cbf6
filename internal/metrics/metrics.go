package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the tracker's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	GatewayCalls     *prometheus.CounterVec
	GatewayLatency   *prometheus.HistogramVec
	GatewayQueueWait prometheus.Histogram

	Runs          *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	LastSuccess   *prometheus.GaugeVec
	GroupFailures *prometheus.CounterVec
	AgentFailures *prometheus.CounterVec

	Deliveries *prometheus.CounterVec
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		GatewayCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_gateway_calls_total",
				Help: "Chain node calls issued through the rate limited gateway",
			},
			[]string{"operation", "outcome"},
		),
		GatewayLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_gateway_call_duration_seconds",
				Help:    "Duration of chain node calls, excluding queue wait",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		GatewayQueueWait: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tracker_gateway_queue_wait_seconds",
				Help:    "Time a call spent queued before it started",
				Buckets: []float64{0.01, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
		),
		Runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_runs_total",
				Help: "Timeframe runs by outcome (ok, skipped, invalid)",
			},
			[]string{"timeframe", "outcome"},
		),
		RunDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tracker_run_duration_seconds",
				Help:    "Wall time of a full timeframe run",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
			[]string{"timeframe"},
		),
		LastSuccess: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tracker_last_run_timestamp_seconds",
				Help: "Unix time of the last completed run per timeframe",
			},
			[]string{"timeframe"},
		),
		GroupFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_group_failures_total",
				Help: "Group pipelines that aborted before producing a summary",
			},
			[]string{"timeframe", "group"},
		),
		AgentFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_agent_failures_total",
				Help: "Agents recorded with the Error sentinel",
			},
			[]string{"timeframe", "group"},
		),
		Deliveries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_deliveries_total",
				Help: "Notification deliveries by channel and outcome (ok, error, skipped)",
			},
			[]string{"channel", "outcome"},
		),
	}
}

// ObserveGatewayCall records one completed node call.
func (m *Metrics) ObserveGatewayCall(op string, queued, took time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.GatewayCalls.WithLabelValues(op, outcome).Inc()
	m.GatewayLatency.WithLabelValues(op).Observe(took.Seconds())
	m.GatewayQueueWait.Observe(queued.Seconds())
}

// ObserveRun records a finished timeframe run.
func (m *Metrics) ObserveRun(timeframe, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.Runs.WithLabelValues(timeframe, outcome).Inc()
	if outcome == "ok" {
		m.RunDuration.WithLabelValues(timeframe).Observe(took.Seconds())
		m.LastSuccess.WithLabelValues(timeframe).SetToCurrentTime()
	}
}

func (m *Metrics) GroupFailed(timeframe, group string) {
	if m == nil {
		return
	}
	m.GroupFailures.WithLabelValues(timeframe, group).Inc()
}

func (m *Metrics) AgentFailed(timeframe, group string) {
	if m == nil {
		return
	}
	m.AgentFailures.WithLabelValues(timeframe, group).Inc()
}

func (m *Metrics) Delivery(channel, outcome string) {
	if m == nil {
		return
	}
	m.Deliveries.WithLabelValues(channel, outcome).Inc()
}

// Handler serves /metrics from g plus a trivial /healthz.
func Handler(g prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
