package matcher

import (
	"regexp"

	pkgerrors "github.com/searchfoundry/tokenmatch/pkg/errors"
	"github.com/searchfoundry/tokenmatch/pkg/metrics"
)

// regexEngine serves predicate sets through a single compiled regular
// expression. Boundary wildcards are folded into anchoring, and every exact
// term carries its own capture group so a match can be attributed to a
// specific term without re-hashing the token: group i+1 corresponds to
// terms[i].
//
// The compiled *regexp.Regexp is immutable at match time and shared by all
// matchers of this engine.
type regexEngine struct {
	re    *regexp.Regexp
	expr  string
	terms []string
	m     *metrics.Metrics
}

func compileRegex(g groupedPredicates, opts Options) (*regexEngine, error) {
	o := synthOpts{
		wc:     wildcardExpr(opts.WildcardLo, opts.WildcardHi),
		escape: regexp.QuoteMeta,
	}
	expr := regexExpr(g, o)
	if expr == "" {
		return &regexEngine{terms: g.terms, m: opts.Metrics}, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, pkgerrors.NewCompileError(string(KindRegex), expr, err)
	}
	return &regexEngine{re: re, expr: expr, terms: g.terms, m: opts.Metrics}, nil
}

func (e *regexEngine) Kind() Kind   { return KindRegex }
func (e *regexEngine) Expr() string { return e.expr }

func (e *regexEngine) NewMatcher(lookups TermLookups) TokenMatcher {
	weights := make([]Lookup, len(e.terms))
	for i, t := range e.terms {
		if l, ok := lookups[t]; ok {
			weights[i] = l
		} else {
			weights[i] = Lookup{Outcome: OutcomeMatchedUnscored}
		}
	}
	return &regexMatcher{
		eng:         e,
		termWeights: weights,
		cache:       make(map[string]Lookup),
	}
}

// regexMatcher holds the per-goroutine match state: resolved exact-term
// weights aligned with the engine's capture groups, and a private cache of
// every token scored so far. Not safe for concurrent use.
type regexMatcher struct {
	eng         *regexEngine
	termWeights []Lookup
	cache       map[string]Lookup
	termBuf     []byte
}

func (m *regexMatcher) Lookup(token string, src FrequencySource) Lookup {
	if l, ok := m.cache[token]; ok {
		recordLookup(m.eng.m, KindRegex, l, true)
		return l
	}
	l := m.lookupSlow(token, src)
	m.cache[token] = l
	recordLookup(m.eng.m, KindRegex, l, false)
	return l
}

func (m *regexMatcher) lookupSlow(token string, src FrequencySource) Lookup {
	if m.eng.re == nil {
		return Lookup{}
	}
	idx := m.eng.re.FindStringSubmatchIndex(token)
	if idx == nil {
		return Lookup{}
	}
	// An exact-term hit surfaces as a non-negative capture group; its
	// weight was resolved when the matcher was built.
	for i, w := range m.termWeights {
		if idx[2*(i+1)] >= 0 {
			return w
		}
	}
	// Wildcard-pattern hit: the matched text is the token itself, so its
	// weight is the reciprocal of the token's own document frequency.
	m.termBuf = append(m.termBuf[:0], token...)
	return scoreFor(src.DocFreq(m.termBuf))
}
