package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LocatorCollector exposes region locator counters as Prometheus metrics.
// All methods are safe on a nil receiver so callers can run unmetered.
type LocatorCollector struct {
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	lookups       *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	inFlight      prometheus.Gauge
}

// Lookup outcome labels.
const (
	OutcomeResolved = "resolved"
	OutcomeFailed   = "failed"
	OutcomeTimeout  = "timeout"
)

// Invalidation scope labels.
const (
	ScopeRegion = "region"
	ScopeServer = "server"
	ScopeTable  = "table"
	ScopeAll    = "all"
)

// NewLocatorCollector creates a collector registered on the provided registry
// (default if nil).
func NewLocatorCollector(reg prometheus.Registerer, namespace string) *LocatorCollector {
	if namespace == "" {
		namespace = "nyxdb"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	builder := promauto.With(reg)
	return &LocatorCollector{
		cacheHits: builder.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locator_cache_hit_total",
			Help:      "Region lookups served from the location cache.",
		}),
		cacheMisses: builder.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locator_cache_miss_total",
			Help:      "Region lookups that required a meta resolution.",
		}),
		lookups: builder.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locator_lookup_total",
			Help:      "Completed region lookups by outcome.",
		}, []string{"outcome"}),
		invalidations: builder.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locator_invalidation_total",
			Help:      "Cache invalidations by scope.",
		}, []string{"scope"}),
		inFlight: builder.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "locator_inflight_lookups",
			Help:      "Meta resolutions currently outstanding.",
		}),
	}
}

// CacheHit records a lookup served from cache.
func (c *LocatorCollector) CacheHit() {
	if c == nil {
		return
	}
	c.cacheHits.Inc()
}

// CacheMiss records a lookup that fell through to resolution.
func (c *LocatorCollector) CacheMiss() {
	if c == nil {
		return
	}
	c.cacheMisses.Inc()
}

// LookupDone records a completed lookup with the given outcome label.
func (c *LocatorCollector) LookupDone(outcome string) {
	if c == nil {
		return
	}
	c.lookups.WithLabelValues(outcome).Inc()
}

// Invalidation records a cache invalidation with the given scope label.
func (c *LocatorCollector) Invalidation(scope string) {
	if c == nil {
		return
	}
	c.invalidations.WithLabelValues(scope).Inc()
}

// FetchStarted marks one more outstanding resolution.
func (c *LocatorCollector) FetchStarted() {
	if c == nil {
		return
	}
	c.inFlight.Inc()
}

// FetchFinished marks one resolution as settled.
func (c *LocatorCollector) FetchFinished() {
	if c == nil {
		return
	}
	c.inFlight.Dec()
}

// StartServer serves Prometheus metrics on the provided address until the
// context is canceled.
func StartServer(ctx context.Context, addr string) error {
	if addr == "" {
		return fmt.Errorf("metrics address is empty")
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
