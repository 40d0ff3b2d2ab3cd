package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	RiskEvaluations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_evaluations_total",
			Help: "Total number of risk evaluations by resulting bucket",
		},
		[]string{"bucket"},
	)

	MLFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ml_fallbacks_total",
			Help: "Evaluations that fell back to the heuristic because the estimator was unavailable",
		},
	)

	WhatIfRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "whatif_simulations_total",
			Help: "Total number of what-if simulations",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(RiskEvaluations)
	prometheus.MustRegister(MLFallbacks)
	prometheus.MustRegister(WhatIfRuns)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
