package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// Upstream call rate per API (weather, uvi, forecast, geocode).
	UpstreamCallsTotal *prometheus.CounterVec

	// Upstream latency per API. Watch for: p95 > 2s (upstream degradation).
	UpstreamDuration *prometheus.HistogramVec

	// Retry attempts per API. High retries = unstable upstream.
	UpstreamRetriesTotal *prometheus.CounterVec

	// Upstream failures by stable category (see client.CategorizeError).
	UpstreamErrorsTotal *prometheus.CounterVec

	// Advisory cache hits.
	CacheHitsTotal *prometheus.CounterVec

	// Cache get/set failures by category.
	CacheErrorsTotal *prometheus.CounterVec

	// Circuit breaker state per component: 0 closed, 1 open, 2 half-open.
	CircuitBreakerState *prometheus.GaugeVec

	// Circuit breaker transitions.
	CircuitBreakerTransitionsTotal *prometheus.CounterVec

	// Advisory lookups served (cached or fresh).
	AdvisoryQueriesTotal prometheus.Counter

	// Weather classifier output distribution.
	ConditionPredictionsTotal *prometheus.CounterVec

	// Accepted triage predictions by winning path (model, manual, fallback).
	TriagePredictionsTotal *prometheus.CounterVec

	// Rejected triage requests by error code.
	TriageRejectionsTotal *prometheus.CounterVec

	// Confidence of accepted triage predictions.
	TriageConfidence prometheus.Histogram

	// 1 when the named model is loaded and serving.
	ModelLoaded *prometheus.GaugeVec

	// Rate limit denials.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	UpstreamCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamApiCallsTotal",
			Help: "Total number of upstream API calls",
		},
		[]string{"api", "status"},
	)
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstreamApiDurationSeconds",
			Help:    "Upstream API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"api", "status"},
	)
	UpstreamRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamApiRetriesTotal",
			Help: "Total number of retry attempts for upstream API calls",
		},
		[]string{"api"},
	)
	UpstreamErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstreamApiErrorsTotal",
			Help: "Upstream API failures by category",
		},
		[]string{"api", "category"},
	)
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheHitsTotal",
			Help: "Total number of cache hits",
		},
		[]string{"cacheType"},
	)
	CacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cacheErrorsTotal",
			Help: "Cache operation failures by operation and category",
		},
		[]string{"operation", "category"},
	)
	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuitBreakerState",
			Help: "Circuit breaker state (0 closed, 1 open, 2 half-open)",
		},
		[]string{"component"},
	)
	CircuitBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuitBreakerTransitionsTotal",
			Help: "Circuit breaker state transitions",
		},
		[]string{"component", "from", "to"},
	)
	AdvisoryQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "advisoryQueriesTotal",
			Help: "Total number of weather advisory lookups",
		},
	)
	ConditionPredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conditionPredictionsTotal",
			Help: "Weather condition classifier outputs",
		},
		[]string{"condition"},
	)
	TriagePredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triagePredictionsTotal",
			Help: "Accepted symptom predictions by winning path",
		},
		[]string{"source"},
	)
	TriageRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triageRejectionsTotal",
			Help: "Rejected symptom predictions by error code",
		},
		[]string{"code"},
	)
	TriageConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triageConfidence",
			Help:    "Confidence of accepted symptom predictions",
			Buckets: []float64{.05, .08, .1, .2, .3, .5, .65, .75, .9, 1},
		},
	)
	ModelLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "modelLoaded",
			Help: "1 when the model is loaded and serving",
		},
		[]string{"model"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		UpstreamCallsTotal, UpstreamDuration, UpstreamRetriesTotal, UpstreamErrorsTotal,
		CacheHitsTotal, CacheErrorsTotal,
		CircuitBreakerState, CircuitBreakerTransitionsTotal,
		AdvisoryQueriesTotal, ConditionPredictionsTotal,
		TriagePredictionsTotal, TriageRejectionsTotal, TriageConfidence,
		ModelLoaded,
		RateLimitDeniedTotal,
	)
}

// RecordCircuitBreakerTransition counts a transition and updates the state gauge.
func RecordCircuitBreakerTransition(component, from, to string, toValue int) {
	CircuitBreakerTransitionsTotal.WithLabelValues(component, from, to).Inc()
	CircuitBreakerState.WithLabelValues(component).Set(float64(toValue))
}

// RecordConditionPrediction counts one advisory served with the given condition.
func RecordConditionPrediction(condition string) {
	AdvisoryQueriesTotal.Inc()
	ConditionPredictionsTotal.WithLabelValues(condition).Inc()
}

// RecordTriagePrediction records an accepted prediction.
func RecordTriagePrediction(source string, confidence float64) {
	TriagePredictionsTotal.WithLabelValues(source).Inc()
	TriageConfidence.Observe(confidence)
}

// RecordTriageRejection records a rejected prediction request.
func RecordTriageRejection(code string) {
	TriageRejectionsTotal.WithLabelValues(code).Inc()
}

// SetModelLoaded flips the modelLoaded gauge for name.
func SetModelLoaded(name string, loaded bool) {
	v := 0.0
	if loaded {
		v = 1
	}
	ModelLoaded.WithLabelValues(name).Set(v)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
