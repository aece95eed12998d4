package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aop_analyses_total",
			Help: "Total number of analysis requests by outcome",
		},
		[]string{"outcome"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aop_llm_request_duration_seconds",
			Help:    "Duration of calls to the hosted model",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"operation"},
	)

	DataUsageScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aop_data_usage_score",
			Help:    "Share of submitted names referenced by the model output",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	FrameworkSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aop_framework_saves_total",
			Help: "Framework save attempts by result",
		},
		[]string{"result"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aop_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)
)
