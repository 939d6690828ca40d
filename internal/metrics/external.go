package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every docqa metric.
const Namespace = "docqa"

// External service labels.
const (
	ServiceDiscovery = "discovery"
	ServiceNLU       = "nlu"
	ServiceIAM       = "iam"
	ServiceWatsonx   = "watsonx"
	ServiceOpenAI    = "openai"
	ServiceGemini    = "gemini"
)

// External call and pipeline metrics.
var (
	ExternalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "external_requests_total",
			Help:      "Total number of calls to external services",
		},
		[]string{"service", "operation", "status"},
	)

	ExternalRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "external_request_duration_seconds",
			Help:      "External service call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"service", "operation"},
	)

	GenerationTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "generation_tokens_total",
			Help:      "Tokens consumed by text generation",
		},
		[]string{"provider", "model", "type"},
	)

	ScoringFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "scoring_failures_total",
			Help:      "Passages whose relevance scoring failed and fell back to zero",
		},
	)

	GenerationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "generation_failures_total",
			Help:      "Answer generations replaced by the apology message",
		},
		[]string{"provider"},
	)

	PipelineDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "pipeline_documents_total",
			Help:      "Search hits processed by the filtering pipeline, by outcome",
		},
		[]string{"outcome"}, // kept / low_confidence / low_relevance / no_passages
	)

	ScoreCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "score_cache_total",
			Help:      "Relevance score cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerOnce sync.Once

// Register registers the service metrics with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ExternalRequestsTotal,
			ExternalRequestDuration,
			GenerationTokensTotal,
			ScoringFailuresTotal,
			GenerationFailuresTotal,
			PipelineDocumentsTotal,
			ScoreCacheTotal,
		)
	})
}

// ObserveExternal records one external call outcome.
func ObserveExternal(service, operation string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ExternalRequestsTotal.WithLabelValues(service, operation, status).Inc()
	ExternalRequestDuration.WithLabelValues(service, operation).Observe(seconds)
}
