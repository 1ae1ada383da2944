package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		sessionsActive,
		sessionsReaped,
		historySaveFailures,
		historyCacheHits,
		mediaUploads,
	)
}

var (
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_sessions_active",
			Help: "Chat sessions currently held in memory.",
		},
	)

	sessionsReaped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_sessions_reaped_total",
			Help: "Idle chat sessions evicted by the reaper.",
		},
	)

	historySaveFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_history_save_failures_total",
			Help: "History upserts that failed and were silently dropped.",
		},
	)

	historyCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_history_cache_requests_total",
			Help: "History cache lookups by result.",
		},
		[]string{"result"},
	)

	mediaUploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Media uploads by kind and outcome.",
		},
		[]string{"kind", "success"},
	)
)

func SessionOpened() { sessionsActive.Inc() }
func SessionClosed() { sessionsActive.Dec() }

func SessionsReaped(n int) {
	if n > 0 {
		sessionsReaped.Add(float64(n))
		sessionsActive.Sub(float64(n))
	}
}

func HistorySaveFailed() { historySaveFailures.Inc() }

func HistoryCacheHit()   { historyCacheHits.WithLabelValues("hit").Inc() }
func HistoryCacheMiss()  { historyCacheHits.WithLabelValues("miss").Inc() }
func HistoryCacheError() { historyCacheHits.WithLabelValues("error").Inc() }

func MediaUpload(kind string, success bool) {
	s := "false"
	if success {
		s = "true"
	}
	mediaUploads.WithLabelValues(norm(kind), s).Inc()
}
