package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// batchMetrics are the counters batch-verify exposes on /metrics. This is
// the one subcommand that runs long enough, and over enough fixtures, for
// a scrape target to matter.
var batchMetrics = struct {
	Verified prometheus.Counter
	Failed   prometheus.Counter
	Errored  prometheus.Counter
}{
	Verified: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sighashverify",
		Name:      "batch_verified_total",
		Help:      "Fixtures whose signature check passed.",
	}),
	Failed: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sighashverify",
		Name:      "batch_failed_total",
		Help:      "Fixtures that parsed but failed verification.",
	}),
	Errored: promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sighashverify",
		Name:      "batch_errored_total",
		Help:      "Fixtures that could not be read or parsed at all.",
	}),
}

// serveMetrics starts the /metrics HTTP endpoint in the background and
// returns a shutdown func.
func serveMetrics(port int) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sighashverifyLog.Errorf("metrics server: %v", err)
		}
	}()

	return func() { srv.Close() }
}
