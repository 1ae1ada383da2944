package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		generatorAttempts,
		generatorLatencyMs,
		apologyFallbacks,
	)
}

var (
	generatorAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_attempts_total",
			Help: "Reply generation attempts per provider and outcome.",
		},
		[]string{"provider", "success"},
	)

	generatorLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generator_latency_ms",
			Help:    "Reply generation latency distribution in milliseconds.",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"provider"},
	)

	apologyFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_apology_fallbacks_total",
			Help: "Sends answered with the scripted apology after provider exhaustion.",
		},
		[]string{"persona"},
	)
)

func GeneratorAttempt(provider string, success bool) {
	generatorAttempts.WithLabelValues(norm(provider), strconv.FormatBool(success)).Inc()
}

func ObserveGeneratorLatency(provider string, ms int64) {
	generatorLatencyMs.WithLabelValues(norm(provider)).Observe(float64(ms))
}

func ApologyServed(persona string) {
	apologyFallbacks.WithLabelValues(norm(persona)).Inc()
}
