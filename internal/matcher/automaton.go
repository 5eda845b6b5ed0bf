package matcher

import (
	"github.com/coregx/coregex"
	"github.com/coregx/coregex/dfa/lazy"
	"github.com/coregx/coregex/nfa"

	pkgerrors "github.com/searchfoundry/tokenmatch/pkg/errors"
	"github.com/searchfoundry/tokenmatch/pkg/metrics"
)

// automatonEngine serves predicate sets through an anchored lazy DFA.
// Anchoring happens at compile time, so the synthesized expression spells
// boundary wildcards out explicitly, factored per group to keep the state
// space small. A token matches iff the longest accepted prefix spans the
// whole token.
//
// The compiled NFA is immutable and shared; each matcher determinizes into
// its own private lazy DFA cache, which keeps token scoring lock-free.
type automatonEngine struct {
	nfa     *nfa.NFA
	dfaConf lazy.Config
	expr    string
	terms   []string
	m       *metrics.Metrics
}

func compileAutomaton(g groupedPredicates, opts Options) (*automatonEngine, error) {
	o := synthOpts{
		wc:     wildcardExpr(opts.WildcardLo, opts.WildcardHi),
		escape: coregex.QuoteMeta,
	}
	expr := automatonExpr(g, o)
	eng := &automatonEngine{
		dfaConf: lazy.DefaultConfig().WithMaxStates(opts.DFAMaxStates),
		expr:    expr,
		terms:   g.terms,
		m:       opts.Metrics,
	}
	if expr == "" {
		return eng, nil
	}
	n, err := nfa.NewCompiler(nfa.CompilerConfig{UTF8: true, Anchored: true}).Compile(expr)
	if err != nil {
		return nil, pkgerrors.NewCompileError(string(KindAutomaton), expr, err)
	}
	// Determinize once up front so that a bad DFA configuration fails here
	// rather than inside NewMatcher.
	if _, err := lazy.CompileWithConfig(n, eng.dfaConf); err != nil {
		return nil, pkgerrors.NewCompileError(string(KindAutomaton), expr, err)
	}
	eng.nfa = n
	return eng, nil
}

func (e *automatonEngine) Kind() Kind   { return KindAutomaton }
func (e *automatonEngine) Expr() string { return e.expr }

func (e *automatonEngine) NewMatcher(lookups TermLookups) TokenMatcher {
	m := &automatonMatcher{
		eng:   e,
		cache: make(map[string]Lookup, len(e.terms)),
	}
	// Seed the token cache with the exact terms so term hits never run the
	// DFA or touch the frequency source.
	for _, t := range e.terms {
		if l, ok := lookups[t]; ok {
			m.cache[t] = l
		} else {
			m.cache[t] = Lookup{Outcome: OutcomeMatchedUnscored}
		}
	}
	if e.nfa != nil {
		// The configuration was validated during engine compilation, the
		// only error Build reports.
		m.dfa, _ = lazy.CompileWithConfig(e.nfa, e.dfaConf)
		m.dfaCache = m.dfa.NewCache()
	}
	return m
}

// automatonMatcher owns a private lazy DFA whose determinized-state cache
// grows as tokens are scored, plus the per-token result cache. Not safe for
// concurrent use.
type automatonMatcher struct {
	eng      *automatonEngine
	dfa      *lazy.DFA
	dfaCache *lazy.DFACache
	cache    map[string]Lookup
	termBuf  []byte
}

func (m *automatonMatcher) Lookup(token string, src FrequencySource) Lookup {
	if l, ok := m.cache[token]; ok {
		recordLookup(m.eng.m, KindAutomaton, l, true)
		return l
	}
	var l Lookup
	if m.dfa != nil {
		m.termBuf = append(m.termBuf[:0], token...)
		// Find returns the end of the longest accepted prefix; anything
		// short of the full token is not a match.
		if end := m.dfa.Find(m.dfaCache, m.termBuf); end == len(m.termBuf) {
			l = scoreFor(src.DocFreq(m.termBuf))
		}
	}
	m.cache[token] = l
	recordLookup(m.eng.m, KindAutomaton, l, false)
	return l
}
