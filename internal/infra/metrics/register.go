// Package metrics holds the service's Prometheus collectors: the chat
// session gauge and reaper counter, history cache and save-failure
// counters, generator attempt and latency series, and media upload
// counters. Each file enqueues its collectors from init(); MustRegister
// publishes the whole set once during startup wiring.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister registers every enqueued collector exactly once. Calling it
// again is a no-op.
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}
