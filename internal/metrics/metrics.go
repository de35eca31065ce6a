package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Core request/hit/miss counters, labelled by store ("remote", "local", "partials")
	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_cache_requests_total",
			Help: "Total number of template cache read-through requests",
		},
		[]string{"store"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_cache_hits_total",
			Help: "Total number of template cache hits",
		},
		[]string{"store", "state"}, // state: fresh or stale
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_cache_misses_total",
			Help: "Total number of template cache misses",
		},
		[]string{"store"},
	)

	CacheRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_cache_refreshes_total",
			Help: "Total number of background stale-while-revalidate refreshes",
		},
		[]string{"store", "outcome"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_cache_evictions_total",
			Help: "Total number of entries evicted by the size bound",
		},
		[]string{"store"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "template_cache_entries",
			Help: "Number of entries held by a template cache",
		},
		[]string{"store"},
	)

	// Fetch latency per resource kind ("remote", "local", "partials")
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "template_fetch_duration_seconds",
			Help:    "Duration of template fetch and compile operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_fetch_errors_total",
			Help: "Total number of failed template fetches",
		},
		[]string{"kind"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "render_duration_seconds",
			Help:    "Duration of full view/layout/partials renders",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"}, // success or error
	)
)

// RecordCacheRequest records a read-through request
func RecordCacheRequest(store string) {
	CacheRequests.WithLabelValues(store).Inc()
}

// RecordCacheHit records a hit, fresh or stale
func RecordCacheHit(store string, fresh bool) {
	state := "fresh"
	if !fresh {
		state = "stale"
	}
	CacheHits.WithLabelValues(store, state).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(store string) {
	CacheMisses.WithLabelValues(store).Inc()
}

// RecordCacheRefresh records the outcome of a background refresh
func RecordCacheRefresh(store string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	CacheRefreshes.WithLabelValues(store, outcome).Inc()
}

// RecordCacheEviction records an entry evicted by the size bound
func RecordCacheEviction(store string) {
	CacheEvictions.WithLabelValues(store).Inc()
}

// UpdateCacheEntries sets the current number of entries of a store
func UpdateCacheEntries(store string, count int) {
	CacheEntries.WithLabelValues(store).Set(float64(count))
}

// RecordFetchError records a failed fetch
func RecordFetchError(kind string) {
	FetchErrors.WithLabelValues(kind).Inc()
}

// TimeFetch returns a timer function for measuring fetch and compile duration
func TimeFetch(kind string) func() {
	timer := prometheus.NewTimer(FetchDuration.WithLabelValues(kind))
	return func() {
		timer.ObserveDuration()
	}
}

// TimeRender returns a function that observes the render duration with its outcome
func TimeRender() func(err error) {
	start := time.Now()
	return func(err error) {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		RenderDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}
