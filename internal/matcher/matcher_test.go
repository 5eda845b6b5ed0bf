package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/searchfoundry/tokenmatch/pkg/errors"
)

// countingSource is a map-backed frequency source that records how many
// times it was consulted.
type countingSource struct {
	freqs map[string]uint64
	calls int
}

func (s *countingSource) DocFreq(term []byte) uint64 {
	s.calls++
	return s.freqs[string(term)]
}

func newSource(freqs map[string]uint64) *countingSource {
	if freqs == nil {
		freqs = map[string]uint64{}
	}
	return &countingSource{freqs: freqs}
}

// compileAll compiles the set with every backend that can serve it.
func compileAll(t *testing.T, set PredicateSet) map[Kind]Engine {
	t.Helper()
	kinds := []Kind{KindRegex, KindAutomaton}
	if !set.HasPatterns() {
		kinds = append(kinds, KindHash)
	}
	out := make(map[Kind]Engine, len(kinds))
	for _, k := range kinds {
		eng, err := Compile(set, Options{Kind: k})
		require.NoError(t, err, "backend %s", k)
		require.Equal(t, k, eng.Kind())
		out[k] = eng
	}
	return out
}

func TestCompileAutoSelection(t *testing.T) {
	eng, err := Compile(ParsePredicateSet("foo", "bar"), Options{})
	require.NoError(t, err)
	assert.Equal(t, KindHash, eng.Kind())

	eng, err = Compile(ParsePredicateSet("foo", "ba*"), Options{})
	require.NoError(t, err)
	assert.Equal(t, KindAutomaton, eng.Kind())
}

func TestCompileHashRejectsPatterns(t *testing.T) {
	_, err := Compile(ParsePredicateSet("ba*"), Options{Kind: KindHash})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidPredicate)
}

func TestCompileUnknownBackend(t *testing.T) {
	_, err := Compile(ParsePredicateSet("foo"), Options{Kind: Kind("trie")})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrUnknownBackend)
}

func TestCompileInvertedWildcardRange(t *testing.T) {
	_, err := Compile(ParsePredicateSet("f*r"), Options{WildcardLo: 'z', WildcardHi: 'a'})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidConfig)
}

func TestReciprocal(t *testing.T) {
	r, ok := Reciprocal(1)
	require.True(t, ok)
	assert.InDelta(t, 0.5, r, 1e-12)

	r, ok = Reciprocal(2)
	require.True(t, ok)
	assert.InDelta(t, 1.0/3.0, r, 1e-12)

	_, ok = Reciprocal(0)
	assert.False(t, ok)
}

func TestCrossBackendEquivalence(t *testing.T) {
	tests := []struct {
		name    string
		preds   []string
		freqs   map[string]uint64
		token   string
		outcome Outcome
		score   float64
	}{
		{
			name:  "single term hit",
			preds: []string{"a"}, freqs: map[string]uint64{"a": 1},
			token: "a", outcome: OutcomeMatchedScored, score: 0.5,
		},
		{
			name:  "single term miss",
			preds: []string{"a"}, freqs: map[string]uint64{"a": 1},
			token: "b", outcome: OutcomeNoMatch,
		},
		{
			name:  "internal wildcard hit",
			preds: []string{"f*r"}, freqs: map[string]uint64{"foobar": 3},
			token: "foobar", outcome: OutcomeMatchedScored, score: 0.25,
		},
		{
			name:  "internal wildcard scrambled miss",
			preds: []string{"f*r"}, freqs: map[string]uint64{"foobar": 3},
			token: "uforg", outcome: OutcomeNoMatch,
		},
		{
			name:  "trailing wildcard hit",
			preds: []string{"wildca*"}, freqs: map[string]uint64{"wildcard": 4},
			token: "wildcard", outcome: OutcomeMatchedScored, score: 0.2,
		},
		{
			name:  "trailing wildcard prefix-only miss",
			preds: []string{"wildca*"}, freqs: nil,
			token: "wildc", outcome: OutcomeNoMatch,
		},
		{
			name:  "leading wildcard hit",
			preds: []string{"*vik"}, freqs: map[string]uint64{"larvik": 9},
			token: "larvik", outcome: OutcomeMatchedScored, score: 0.1,
		},
		{
			name:  "pattern hit with unknown token frequency",
			preds: []string{"fu*k!"}, freqs: nil,
			token: "funk!", outcome: OutcomeMatchedUnscored,
		},
		{
			name:  "term unseen in corpus",
			preds: []string{"og", "det"}, freqs: map[string]uint64{"og": 7},
			token: "det", outcome: OutcomeMatchedUnscored,
		},
		{
			name: "mixed set routes token to term weight",
			preds: []string{
				"og", "det",
				"fjord*", "*vik", "nord*lys",
			},
			freqs: map[string]uint64{"og": 1, "fjorden": 3},
			token: "og", outcome: OutcomeMatchedScored, score: 0.5,
		},
		{
			name: "mixed set routes token to pattern frequency",
			preds: []string{
				"og", "det",
				"fjord*", "*vik", "nord*lys",
			},
			freqs: map[string]uint64{"og": 1, "fjorden": 3},
			token: "fjorden", outcome: OutcomeMatchedScored, score: 0.25,
		},
		{
			name: "mixed set internal wildcard",
			preds: []string{
				"og", "det",
				"fjord*", "*vik", "nord*lys",
			},
			freqs: map[string]uint64{"nordlys": 1},
			token: "nordlys", outcome: OutcomeMatchedScored, score: 0.5,
		},
		{
			name: "mixed set no match",
			preds: []string{
				"og", "det",
				"fjord*", "*vik", "nord*lys",
			},
			freqs: nil,
			token: "sol", outcome: OutcomeNoMatch,
		},
		{
			name:  "metacharacters stay literal",
			preds: []string{"o.s.v.", "*lol(?)*"}, freqs: map[string]uint64{"osv": 1},
			token: "osv", outcome: OutcomeNoMatch,
		},
		{
			name:  "metacharacter pattern substring hit",
			preds: []string{"o.s.v.", "*lol(?)*"}, freqs: map[string]uint64{"xlol(?)x": 1},
			token: "xlol(?)x", outcome: OutcomeMatchedScored, score: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := ParsePredicateSet(tt.preds...)
			for kind, eng := range compileAll(t, set) {
				src := newSource(tt.freqs)
				m := eng.NewMatcher(ResolveTermLookups(set, src))
				got := m.Lookup(tt.token, src)
				assert.Equal(t, tt.outcome, got.Outcome, "backend %s", kind)
				if tt.outcome == OutcomeMatchedScored {
					assert.InDelta(t, tt.score, got.Score, 1e-12, "backend %s", kind)
				}
			}
		})
	}
}

func TestEmptySetMatchesNothing(t *testing.T) {
	set := NewPredicateSet()
	for kind, eng := range compileAll(t, set) {
		src := newSource(nil)
		m := eng.NewMatcher(ResolveTermLookups(set, src))
		got := m.Lookup("anything", src)
		assert.Equal(t, OutcomeNoMatch, got.Outcome, "backend %s", kind)
	}
}

func TestDegenerateSetMatchesNothing(t *testing.T) {
	set := ParsePredicateSet("*")
	for kind, eng := range compileAll(t, set) {
		src := newSource(nil)
		m := eng.NewMatcher(ResolveTermLookups(set, src))
		assert.Equal(t, OutcomeNoMatch, m.Lookup("a", src).Outcome, "backend %s", kind)
	}
}

func TestTermHitsNeverTouchSourceAtMatchTime(t *testing.T) {
	set := ParsePredicateSet("foo", "bar", "ba*")
	for kind, eng := range compileAll(t, set) {
		src := newSource(map[string]uint64{"foo": 1, "bar": 2})
		lookups := ResolveTermLookups(set, src)
		resolved := src.calls

		m := eng.NewMatcher(lookups)
		got := m.Lookup("foo", src)
		assert.Equal(t, OutcomeMatchedScored, got.Outcome, "backend %s", kind)
		assert.Equal(t, resolved, src.calls,
			"backend %s consulted the source for a resolved term", kind)
	}
}

func TestMatcherCachesTokenLookups(t *testing.T) {
	set := ParsePredicateSet("f*r")
	for kind, eng := range compileAll(t, set) {
		src := newSource(map[string]uint64{"foobar": 3})
		m := eng.NewMatcher(ResolveTermLookups(set, src))

		first := m.Lookup("foobar", src)
		callsAfterFirst := src.calls
		second := m.Lookup("foobar", src)

		assert.Equal(t, first, second, "backend %s", kind)
		assert.Equal(t, callsAfterFirst, src.calls,
			"backend %s re-consulted the source for a cached token", kind)

		// Negative results are cached too.
		m.Lookup("nope", src)
		calls := src.calls
		m.Lookup("nope", src)
		assert.Equal(t, calls, src.calls, "backend %s", kind)
	}
}

func TestMatchersAreIndependent(t *testing.T) {
	set := ParsePredicateSet("f*r")
	eng, err := Compile(set, Options{Kind: KindAutomaton})
	require.NoError(t, err)

	srcA := newSource(map[string]uint64{"foobar": 1})
	srcB := newSource(map[string]uint64{"foobar": 9})
	a := eng.NewMatcher(ResolveTermLookups(set, srcA))
	b := eng.NewMatcher(ResolveTermLookups(set, srcB))

	la := a.Lookup("foobar", srcA)
	lb := b.Lookup("foobar", srcB)
	assert.InDelta(t, 0.5, la.Score, 1e-12)
	assert.InDelta(t, 0.1, lb.Score, 1e-12)
}

func TestWildcardRangeBoundsAutomatonMatch(t *testing.T) {
	set := ParsePredicateSet("f*r")
	eng, err := Compile(set, Options{Kind: KindAutomaton, WildcardLo: 'a', WildcardHi: 'z'})
	require.NoError(t, err)

	src := newSource(map[string]uint64{"fur": 1, "f9r": 1})
	m := eng.NewMatcher(ResolveTermLookups(set, src))

	assert.Equal(t, OutcomeMatchedScored, m.Lookup("fur", src).Outcome)
	assert.Equal(t, OutcomeNoMatch, m.Lookup("f9r", src).Outcome,
		"digit is outside the configured wildcard range")
}

func TestLookupIsIdempotent(t *testing.T) {
	set := ParsePredicateSet("og", "fjord*", "*vik")
	tokens := []string{"og", "fjorden", "larvik", "og", "fjorden", "sol", "larvik"}
	for kind, eng := range compileAll(t, set) {
		src := newSource(map[string]uint64{"og": 2, "fjorden": 4, "larvik": 1})
		m := eng.NewMatcher(ResolveTermLookups(set, src))

		first := make(map[string]Lookup)
		for _, tok := range tokens {
			got := m.Lookup(tok, src)
			prev, seen := first[tok]
			if seen {
				assert.Equal(t, prev, got, "backend %s token %q", kind, tok)
			} else {
				first[tok] = got
			}
		}
	}
}
