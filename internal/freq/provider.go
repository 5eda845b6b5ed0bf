// Package freq supplies corpus document frequencies to the matcher. The
// in-memory store is the authoritative hot-path source, kept current by a
// Kafka term-stats feed; the Redis, Postgres, and Elasticsearch providers
// serve deployments where term statistics live in an external system.
package freq

import (
	"context"
	"time"

	"github.com/searchfoundry/tokenmatch/internal/matcher"
	"github.com/searchfoundry/tokenmatch/pkg/logger"
	"github.com/searchfoundry/tokenmatch/pkg/metrics"
	"github.com/searchfoundry/tokenmatch/pkg/tracing"
)

// Provider answers document-frequency queries against some backing store.
// A frequency of zero means the term is unknown to the corpus.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	Lookup(ctx context.Context, term string) (uint64, error)
	Close() error
}

// Source adapts a provider to the matcher's synchronous hot-path interface.
// Lookup failures degrade to zero after logging: a transient store outage
// must cost a match its weight, never the whole scoring pass.
func Source(ctx context.Context, p Provider, m *metrics.Metrics) matcher.FrequencySource {
	log := logger.WithComponent("freq").With("provider", p.Name())
	return matcher.FrequencyFunc(func(term []byte) uint64 {
		lookupCtx := ctx
		if tracing.SpanFromContext(ctx) != nil {
			var span *tracing.Span
			lookupCtx, span = tracing.StartChildSpan(ctx, "freq.lookup")
			span.SetAttr("provider", p.Name())
			span.SetAttr("term", string(term))
			defer span.End()
		}
		start := time.Now()
		df, err := p.Lookup(lookupCtx, string(term))
		if m != nil {
			m.FreqLookupsTotal.WithLabelValues(p.Name()).Inc()
			m.FreqLookupDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
		}
		if err != nil {
			if m != nil {
				m.FreqLookupErrors.WithLabelValues(p.Name()).Inc()
			}
			log.Warn("doc-freq lookup failed, treating term as unknown",
				"term", string(term),
				"error", err,
			)
			return 0
		}
		return df
	})
}
