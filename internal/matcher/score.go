package matcher

// Outcome is the three-way result of looking up a token against a compiled
// predicate set.
type Outcome uint8

const (
	// OutcomeNoMatch means no predicate in the set accepted the token.
	OutcomeNoMatch Outcome = iota
	// OutcomeMatchedUnscored means a predicate accepted the token but the
	// matched text has no recorded corpus frequency, so its weight is
	// undefined rather than zero.
	OutcomeMatchedUnscored
	// OutcomeMatchedScored means a predicate accepted the token and the
	// reciprocal-frequency weight is available.
	OutcomeMatchedScored
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeMatchedUnscored:
		return "matched_unscored"
	case OutcomeMatchedScored:
		return "matched_scored"
	default:
		return "unknown"
	}
}

// Lookup is the result of scoring one token. Score is meaningful only when
// Outcome is OutcomeMatchedScored.
type Lookup struct {
	Outcome Outcome
	Score   float64
}

// Matched reports whether any predicate accepted the token.
func (l Lookup) Matched() bool { return l.Outcome != OutcomeNoMatch }

// Scored reports whether the lookup carries a usable weight.
func (l Lookup) Scored() bool { return l.Outcome == OutcomeMatchedScored }

// Reciprocal returns the weight for a term with the given document
// frequency, 1/(df+1). Rarer terms weigh closer to 1/2, ubiquitous terms
// approach zero. The second return is false when df is zero: an unseen term
// has no defined weight.
func Reciprocal(docFreq uint64) (float64, bool) {
	if docFreq == 0 {
		return 0, false
	}
	return 1 / float64(docFreq+1), true
}

// scoreFor converts a document frequency into a matched lookup.
func scoreFor(docFreq uint64) Lookup {
	r, ok := Reciprocal(docFreq)
	if !ok {
		return Lookup{Outcome: OutcomeMatchedUnscored}
	}
	return Lookup{Outcome: OutcomeMatchedScored, Score: r}
}

// FrequencySource supplies corpus document frequencies at match time. A
// return of zero means the term is unknown. Implementations are consulted
// on the token-scoring hot path and must not block on it; network-backed
// sources wrap themselves with caching and timeouts before being handed
// here.
type FrequencySource interface {
	DocFreq(term []byte) uint64
}

// FrequencyFunc adapts a function to a FrequencySource.
type FrequencyFunc func(term []byte) uint64

func (f FrequencyFunc) DocFreq(term []byte) uint64 { return f(term) }

// TermLookups holds the resolved lookup for every exact term of a predicate
// set. It is computed once per matcher construction so that exact-term hits
// never touch the frequency source during token scoring.
type TermLookups map[string]Lookup

// ResolveTermLookups fetches the document frequency of every exact term in
// the set and converts it to a lookup. Pattern predicates that carry no
// wildcard nodes are folded into their literal text, mirroring the engine's
// own classification.
func ResolveTermLookups(set PredicateSet, src FrequencySource) TermLookups {
	out := make(TermLookups)
	resolve := func(term string) {
		out[term] = scoreFor(src.DocFreq([]byte(term)))
	}
	for i := 0; i < set.Len(); i++ {
		p := set.At(i)
		switch {
		case p.IsTerm():
			resolve(p.Term())
		case !p.Pattern().hasWildcard():
			if t := p.Pattern().concatLiterals(); t != "" {
				resolve(t)
			}
		}
	}
	return out
}
