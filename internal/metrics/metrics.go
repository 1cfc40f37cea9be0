package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	promFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scope_fetches_total",
		Help: "The total number of event fetches per retrieval strategy",
	}, []string{"strategy"})

	promCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scope_cache_hits_total",
		Help: "The total number of event cache hits",
	})

	promCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scope_cache_misses_total",
		Help: "The total number of event cache misses",
	})

	promScanWindows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scope_scan_windows_total",
		Help: "The total number of block windows scanned",
	})

	promRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scope_retries_total",
		Help: "The total number of retried provider calls",
	})
)

// Fetches counts one fetch for a strategy.
func Fetches(strategy string) { promFetches.WithLabelValues(strategy).Inc() }

// CacheHits counts one cache hit.
func CacheHits() { promCacheHits.Inc() }

// CacheMisses counts one cache miss.
func CacheMisses() { promCacheMisses.Inc() }

// ScanWindows counts one scanned block window.
func ScanWindows() { promScanWindows.Inc() }

// Retries counts one retried call.
func Retries() { promRetries.Inc() }

// Handler exposes the default registry for a /metrics listener.
func Handler() http.Handler { return promhttp.Handler() }
