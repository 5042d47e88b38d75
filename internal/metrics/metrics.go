package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Pipeline metrics
	pipelineRuns     prometheus.Counter
	pipelineDuration prometheus.Histogram
	tickersProcessed *prometheus.CounterVec
	signalsDetected  *prometheus.CounterVec
	backtestsTotal   *prometheus.CounterVec
	backtestDuration prometheus.Histogram
	deliveriesTotal  *prometheus.CounterVec
	llmTokens        *prometheus.CounterVec
	watchlistSymbols prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Pipeline metrics
	r.pipelineRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vantage_pipeline_runs_total",
			Help: "Total number of analysis pipeline runs completed",
		},
	)
	r.pipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vantage_pipeline_duration_seconds",
			Help:    "Pipeline run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)
	r.tickersProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vantage_tickers_processed_total",
			Help: "Total number of watchlist tickers processed",
		},
		[]string{"status"},
	)
	r.signalsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vantage_signals_detected_total",
			Help: "Total number of entry signals detected",
		},
		[]string{"ticker"},
	)
	r.backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vantage_backtests_total",
			Help: "Total number of strategy backtests",
		},
		[]string{"strategy", "status"},
	)
	r.backtestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vantage_backtest_duration_seconds",
			Help:    "Backtest duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
	r.deliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vantage_report_deliveries_total",
			Help: "Total number of report deliveries to notifiers",
		},
		[]string{"notifier", "status"},
	)
	r.llmTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vantage_llm_tokens_total",
			Help: "Total LLM tokens consumed for report narration",
		},
		[]string{"direction"},
	)
	r.watchlistSymbols = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vantage_watchlist_symbols",
			Help: "Number of symbols in watchlist",
		},
	)

	reg.MustRegister(r.pipelineRuns)
	reg.MustRegister(r.pipelineDuration)
	reg.MustRegister(r.tickersProcessed)
	reg.MustRegister(r.signalsDetected)
	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.deliveriesTotal)
	reg.MustRegister(r.llmTokens)
	reg.MustRegister(r.watchlistSymbols)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordPipelineRun records a completed pipeline run.
func (r *Registry) RecordPipelineRun(duration float64) {
	r.pipelineRuns.Inc()
	r.pipelineDuration.Observe(duration)
}

// RecordTicker records a processed ticker with its outcome status.
func (r *Registry) RecordTicker(status string) {
	r.tickersProcessed.WithLabelValues(status).Inc()
}

// RecordSignal records a detected entry signal.
func (r *Registry) RecordSignal(ticker string) {
	r.signalsDetected.WithLabelValues(ticker).Inc()
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(strategy, status string, duration float64) {
	r.backtestsTotal.WithLabelValues(strategy, status).Inc()
	r.backtestDuration.Observe(duration)
}

// RecordDelivery records a report delivery attempt.
func (r *Registry) RecordDelivery(notifier, status string) {
	r.deliveriesTotal.WithLabelValues(notifier, status).Inc()
}

// AddLLMTokens records LLM token usage.
func (r *Registry) AddLLMTokens(input, output int) {
	r.llmTokens.WithLabelValues("input").Add(float64(input))
	r.llmTokens.WithLabelValues("output").Add(float64(output))
}

// SetWatchlistSize sets the watchlist size.
func (r *Registry) SetWatchlistSize(size int) {
	r.watchlistSymbols.Set(float64(size))
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
