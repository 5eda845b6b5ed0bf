package matcher

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/searchfoundry/tokenmatch/pkg/config"
	pkgerrors "github.com/searchfoundry/tokenmatch/pkg/errors"
	"github.com/searchfoundry/tokenmatch/pkg/logger"
	"github.com/searchfoundry/tokenmatch/pkg/metrics"
)

// Kind names a matching backend.
type Kind string

const (
	// KindAuto picks the hash backend for pattern-free sets and the
	// automaton backend otherwise.
	KindAuto      Kind = "auto"
	KindHash      Kind = "hash"
	KindRegex     Kind = "regex"
	KindAutomaton Kind = "automaton"
)

// Options controls predicate-set compilation.
type Options struct {
	// Kind selects the backend. Zero value behaves like KindAuto.
	Kind Kind

	// WildcardLo and WildcardHi bound the code-point range a wildcard
	// segment may match. Defaults cover Latin through Latin Extended-B.
	WildcardLo rune
	WildcardHi rune

	// DFAMaxStates caps the per-matcher lazy DFA state cache.
	DFAMaxStates uint32

	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// DefaultOptions returns the compiled-in defaults.
func DefaultOptions() Options {
	return Options{
		Kind:         KindAuto,
		WildcardLo:   0x0000,
		WildcardHi:   0x024F,
		DFAMaxStates: 10_000,
	}
}

// OptionsFromConfig maps the matcher section of the service configuration
// onto compile options.
func OptionsFromConfig(cfg config.MatcherConfig) Options {
	opts := DefaultOptions()
	if cfg.Backend != "" {
		opts.Kind = Kind(cfg.Backend)
	}
	if cfg.WildcardRangeHi > 0 {
		opts.WildcardLo = rune(cfg.WildcardRangeLo)
		opts.WildcardHi = rune(cfg.WildcardRangeHi)
	}
	if cfg.DFAMaxStates > 0 {
		opts.DFAMaxStates = cfg.DFAMaxStates
	}
	return opts
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Kind == "" {
		o.Kind = def.Kind
	}
	if o.WildcardLo == 0 && o.WildcardHi == 0 {
		o.WildcardLo, o.WildcardHi = def.WildcardLo, def.WildcardHi
	}
	if o.DFAMaxStates == 0 {
		o.DFAMaxStates = def.DFAMaxStates
	}
	if o.Logger == nil {
		o.Logger = logger.WithComponent("matcher")
	}
	return o
}

// Engine is a compiled predicate set. It is immutable and safe to share
// across goroutines; all mutable match-time state lives in the matchers it
// hands out.
type Engine interface {
	Kind() Kind
	// Expr returns the synthesized combined expression, empty for the hash
	// backend. Intended for logging and diagnostics.
	Expr() string
	// NewMatcher returns a single-goroutine matcher over this engine. The
	// lookups carry the resolved weight of every exact term in the set,
	// typically from ResolveTermLookups.
	NewMatcher(lookups TermLookups) TokenMatcher
}

// TokenMatcher scores document tokens against a compiled predicate set.
// A matcher caches its results per token and is not safe for concurrent
// use; create one per scoring goroutine.
type TokenMatcher interface {
	Lookup(token string, src FrequencySource) Lookup
}

// Compile builds the backend selected by opts for the given predicate set.
// The hash backend refuses sets containing wildcard patterns.
func Compile(set PredicateSet, opts Options) (Engine, error) {
	opts = opts.normalized()
	if opts.WildcardLo > opts.WildcardHi {
		return nil, fmt.Errorf("%w: wildcard range [%#x, %#x] is inverted",
			pkgerrors.ErrInvalidConfig, opts.WildcardLo, opts.WildcardHi)
	}

	g := groupPredicates(set)
	kind := opts.Kind
	if kind == KindAuto {
		if g.hasPatterns() {
			kind = KindAutomaton
		} else {
			kind = KindHash
		}
	}

	start := time.Now()
	var (
		eng Engine
		err error
	)
	switch kind {
	case KindHash:
		if g.hasPatterns() {
			err = fmt.Errorf("%w: hash backend cannot serve wildcard patterns",
				pkgerrors.ErrInvalidPredicate)
		} else {
			eng = newHashEngine(g, opts)
		}
	case KindRegex:
		eng, err = compileRegex(g, opts)
	case KindAutomaton:
		eng, err = compileAutomaton(g, opts)
	default:
		err = fmt.Errorf("%w: %q", pkgerrors.ErrUnknownBackend, kind)
	}
	if err != nil {
		if opts.Metrics != nil {
			opts.Metrics.CompileErrorsTotal.WithLabelValues(string(kind)).Inc()
		}
		opts.Logger.Error("predicate set compile failed",
			"backend", string(kind),
			"predicates", set.Len(),
			"error", err,
		)
		return nil, err
	}
	if opts.Metrics != nil {
		opts.Metrics.CompileDuration.
			WithLabelValues(string(kind)).
			Observe(time.Since(start).Seconds())
	}
	opts.Logger.Debug("predicate set compiled",
		"backend", string(kind),
		"predicates", set.Len(),
		"expr", eng.Expr(),
	)
	return eng, nil
}

// recordLookup feeds the per-token matcher counters. m may be nil.
func recordLookup(m *metrics.Metrics, kind Kind, l Lookup, cacheHit bool) {
	if m == nil {
		return
	}
	if cacheHit {
		m.LookupCacheHits.WithLabelValues(string(kind)).Inc()
	} else {
		m.LookupCacheMisses.WithLabelValues(string(kind)).Inc()
	}
	m.TokenLookupsTotal.WithLabelValues(string(kind), l.Outcome.String()).Inc()
}
