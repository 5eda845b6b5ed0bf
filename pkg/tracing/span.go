// Package tracing provides lightweight query-scoped tracing. A span tree is
// rooted at one search query and grows child spans for compilation and
// frequency lookups; finished trees are emitted as structured slog records.
package tracing

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type spanCtxKey struct{}

// Span is one timed operation within a query trace.
type Span struct {
	Name    string
	QueryID string

	mu       sync.Mutex
	started  time.Time
	duration time.Duration
	attrs    []slog.Attr
	children []*Span
}

// StartSpan opens a root span for the given query and stores it in the
// returned context.
func StartSpan(ctx context.Context, name, queryID string) (context.Context, *Span) {
	s := &Span{Name: name, QueryID: queryID, started: time.Now()}
	return context.WithValue(ctx, spanCtxKey{}, s), s
}

// StartChildSpan opens a span under the one carried by ctx. Without a parent
// in ctx the child becomes a detached root with no query ID.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	s := &Span{Name: name, started: time.Now()}
	if parent := SpanFromContext(ctx); parent != nil {
		s.QueryID = parent.QueryID
		parent.mu.Lock()
		parent.children = append(parent.children, s)
		parent.mu.Unlock()
	}
	return context.WithValue(ctx, spanCtxKey{}, s), s
}

// SpanFromContext returns the span carried by ctx, or nil.
func SpanFromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(spanCtxKey{}).(*Span)
	return s
}

// SetAttr attaches an attribute to the span.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.attrs = append(s.attrs, slog.Any(key, value))
	s.mu.Unlock()
}

// End stops the clock and returns the span's duration.
func (s *Span) End() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.duration == 0 {
		s.duration = time.Since(s.started)
	}
	return s.duration
}

// Duration returns the recorded duration, zero while the span is open.
func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Log emits the span and its descendants as slog records, one per span,
// depth-first.
func (s *Span) Log() {
	s.log(0)
}

func (s *Span) log(depth int) {
	s.mu.Lock()
	attrs := make([]any, 0, 8+2*len(s.attrs))
	attrs = append(attrs,
		"query_id", s.QueryID,
		"span", s.Name,
		"duration_us", s.duration.Microseconds(),
		"depth", depth,
	)
	for _, a := range s.attrs {
		attrs = append(attrs, a.Key, a.Value.Any())
	}
	children := s.children
	s.mu.Unlock()

	slog.Info("trace span", attrs...)
	for _, c := range children {
		c.log(depth + 1)
	}
}
