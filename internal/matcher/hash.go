package matcher

import "github.com/searchfoundry/tokenmatch/pkg/metrics"

// hashEngine serves pattern-free predicate sets. There is nothing to
// synthesize or execute; a token matches iff it equals one of the exact
// terms, so a matcher is a map from term to its resolved lookup.
type hashEngine struct {
	terms []string
	m     *metrics.Metrics
}

func newHashEngine(g groupedPredicates, opts Options) *hashEngine {
	return &hashEngine{terms: g.terms, m: opts.Metrics}
}

func (e *hashEngine) Kind() Kind   { return KindHash }
func (e *hashEngine) Expr() string { return "" }

func (e *hashEngine) NewMatcher(lookups TermLookups) TokenMatcher {
	byTerm := make(map[string]Lookup, len(e.terms))
	for _, t := range e.terms {
		if l, ok := lookups[t]; ok {
			byTerm[t] = l
		} else {
			byTerm[t] = Lookup{Outcome: OutcomeMatchedUnscored}
		}
	}
	return &hashMatcher{eng: e, byTerm: byTerm}
}

type hashMatcher struct {
	eng    *hashEngine
	byTerm map[string]Lookup
}

func (m *hashMatcher) Lookup(token string, _ FrequencySource) Lookup {
	l := m.byTerm[token]
	if mm := m.eng.m; mm != nil {
		mm.TokenLookupsTotal.WithLabelValues(string(KindHash), l.Outcome.String()).Inc()
	}
	return l
}
