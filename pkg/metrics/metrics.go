// Package metrics defines the Prometheus metric collectors for predicate-set
// compilation, token matching, and frequency-source lookups, and exposes an
// HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the matcher subsystem.
type Metrics struct {
	CompileDuration     *prometheus.HistogramVec
	CompileErrorsTotal  *prometheus.CounterVec
	CompileCacheHits    prometheus.Counter
	CompileCacheMisses  prometheus.Counter
	TokenLookupsTotal   *prometheus.CounterVec
	LookupCacheHits     *prometheus.CounterVec
	LookupCacheMisses   *prometheus.CounterVec
	FreqLookupsTotal    *prometheus.CounterVec
	FreqLookupErrors    *prometheus.CounterVec
	FreqLookupDuration  *prometheus.HistogramVec
	TermStatsApplied    prometheus.Counter
	TermStatsDecodeErrs prometheus.Counter
}

// New creates the collectors and registers them with reg. Tests should pass
// a private prometheus.NewRegistry(); services typically pass
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CompileDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "matcher_compile_duration_seconds",
				Help:    "Predicate-set compile latency in seconds, by backend.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"backend"},
		),
		CompileErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matcher_compile_errors_total",
				Help: "Total failed predicate-set compilations, by backend.",
			},
			[]string{"backend"},
		),
		CompileCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "matcher_compile_cache_hits_total",
				Help: "Compile-cache hits (an already compiled backend was reused).",
			},
		),
		CompileCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "matcher_compile_cache_misses_total",
				Help: "Compile-cache misses (a fresh backend compilation ran).",
			},
		),
		TokenLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matcher_token_lookups_total",
				Help: "Token lookups by backend and outcome (no_match, matched_unscored, matched_scored).",
			},
			[]string{"backend", "outcome"},
		),
		LookupCacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matcher_lookup_cache_hits_total",
				Help: "Per-matcher token-cache hits, by backend.",
			},
			[]string{"backend"},
		),
		LookupCacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "matcher_lookup_cache_misses_total",
				Help: "Per-matcher token-cache misses, by backend.",
			},
			[]string{"backend"},
		),
		FreqLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freq_lookups_total",
				Help: "Frequency-source lookups, by provider.",
			},
			[]string{"provider"},
		),
		FreqLookupErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freq_lookup_errors_total",
				Help: "Frequency-source lookup failures, by provider.",
			},
			[]string{"provider"},
		),
		FreqLookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "freq_lookup_duration_seconds",
				Help:    "Frequency-source lookup latency in seconds, by provider.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"provider"},
		),
		TermStatsApplied: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "term_stats_events_applied_total",
				Help: "Term-stats events applied to the in-memory store.",
			},
		),
		TermStatsDecodeErrs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "term_stats_decode_errors_total",
				Help: "Term-stats events that failed to decode.",
			},
		),
	}

	reg.MustRegister(
		m.CompileDuration,
		m.CompileErrorsTotal,
		m.CompileCacheHits,
		m.CompileCacheMisses,
		m.TokenLookupsTotal,
		m.LookupCacheHits,
		m.LookupCacheMisses,
		m.FreqLookupsTotal,
		m.FreqLookupErrors,
		m.FreqLookupDuration,
		m.TermStatsApplied,
		m.TermStatsDecodeErrs,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for the default
// registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
