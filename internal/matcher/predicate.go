// Package matcher implements search-time token matching for snippet and
// highlight scoring. A set of match predicates (exact terms and wildcard
// patterns) extracted from a query is compiled once into one of three
// interchangeable backends (hash, regex, automaton); each matcher instance
// then scores a stream of document tokens against it, weighting matches by
// the reciprocal of the term's corpus document frequency.
package matcher

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Node is a single segment of a wildcard pattern: either a literal run of
// characters or a wildcard matching zero or more characters within the
// configured code-point range.
type Node struct {
	Text     string
	Wildcard bool
}

// Literal returns a literal pattern node.
func Literal(text string) Node { return Node{Text: text} }

// Wildcard returns a wildcard pattern node.
func Wildcard() Node { return Node{Wildcard: true} }

// compare orders literal nodes before wildcard nodes, literals by text.
func (n Node) compare(o Node) int {
	if n.Wildcard != o.Wildcard {
		if o.Wildcard {
			return -1
		}
		return 1
	}
	if n.Wildcard {
		return 0
	}
	return strings.Compare(n.Text, o.Text)
}

// Pattern is a non-empty ordered sequence of pattern nodes. Producers are
// expected to have collapsed adjacent wildcards; the engine treats two
// adjacent wildcards as independent zero-or-more spans, which is harmless
// but wasteful.
type Pattern []Node

// String renders the pattern with "*" for wildcard nodes, for logging only.
func (p Pattern) String() string {
	var b strings.Builder
	for _, n := range p {
		if n.Wildcard {
			b.WriteByte('*')
		} else {
			b.WriteString(n.Text)
		}
	}
	return b.String()
}

func (p Pattern) compare(o Pattern) int {
	for i := 0; i < len(p) && i < len(o); i++ {
		if c := p[i].compare(o[i]); c != 0 {
			return c
		}
	}
	return len(p) - len(o)
}

// Predicate is a single matching rule: an exact term, or a wildcard pattern
// of at least one literal and one wildcard segment.
type Predicate struct {
	term    string
	pattern Pattern
	isTerm  bool
}

// TermPredicate returns an exact-term predicate.
func TermPredicate(text string) Predicate {
	return Predicate{term: text, isTerm: true}
}

// PatternPredicate returns a wildcard-pattern predicate.
func PatternPredicate(p Pattern) Predicate {
	return Predicate{pattern: p}
}

// ParsePattern splits a raw string on '*' runes into a pattern. This is a
// construction convenience for callers and tests; the query parser that
// produces predicate sets in production performs its own escaping.
func ParsePattern(s string) Pattern {
	var p Pattern
	for {
		i := strings.IndexByte(s, '*')
		if i < 0 {
			if s != "" {
				p = append(p, Literal(s))
			}
			return p
		}
		if i > 0 {
			p = append(p, Literal(s[:i]))
		}
		p = append(p, Wildcard())
		s = s[i+1:]
	}
}

// ParsePredicate builds a predicate from a raw string via ParsePattern. A
// string without '*' becomes a term predicate.
func ParsePredicate(s string) Predicate {
	if !strings.ContainsRune(s, '*') {
		return TermPredicate(s)
	}
	return PatternPredicate(ParsePattern(s))
}

// IsTerm reports whether the predicate is an exact term.
func (p Predicate) IsTerm() bool { return p.isTerm }

// Term returns the exact-term text; empty for pattern predicates.
func (p Predicate) Term() string { return p.term }

// Pattern returns the wildcard pattern; nil for term predicates.
func (p Predicate) Pattern() Pattern { return p.pattern }

// String renders the predicate for logging only.
func (p Predicate) String() string {
	if p.isTerm {
		return p.term
	}
	return p.pattern.String()
}

// compare defines the total order over predicates: exact terms order before
// patterns, terms by text, patterns lexicographically over their nodes.
func (p Predicate) compare(o Predicate) int {
	if p.isTerm != o.isTerm {
		if p.isTerm {
			return -1
		}
		return 1
	}
	if p.isTerm {
		return strings.Compare(p.term, o.term)
	}
	return p.pattern.compare(o.pattern)
}

// PredicateSet is a deduplicated collection of predicates whose iteration
// order is the predicate total order. The order is load-bearing: it fixes
// the capture-group index of each plain term in the compiled regex backend,
// so equal sets always classify their terms in the same relative order.
// A set is immutable once built.
type PredicateSet struct {
	preds []Predicate
}

// NewPredicateSet builds a set from the given predicates, sorting and
// removing duplicates.
func NewPredicateSet(preds ...Predicate) PredicateSet {
	sorted := make([]Predicate, len(preds))
	copy(sorted, preds)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].compare(sorted[j]) < 0
	})
	out := sorted[:0]
	for i, p := range sorted {
		if i > 0 && p.compare(sorted[i-1]) == 0 {
			continue
		}
		out = append(out, p)
	}
	return PredicateSet{preds: out}
}

// ParsePredicateSet builds a set from raw strings via ParsePredicate.
func ParsePredicateSet(raw ...string) PredicateSet {
	preds := make([]Predicate, 0, len(raw))
	for _, s := range raw {
		preds = append(preds, ParsePredicate(s))
	}
	return NewPredicateSet(preds...)
}

// Len returns the number of predicates in the set.
func (s PredicateSet) Len() int { return len(s.preds) }

// At returns the i-th predicate in iteration order.
func (s PredicateSet) At(i int) Predicate { return s.preds[i] }

// HasPatterns reports whether the set contains any wildcard-pattern
// predicate that is not degenerate (a pattern with at least one wildcard
// among other nodes). Sets without patterns are served by the hash backend.
func (s PredicateSet) HasPatterns() bool {
	for _, p := range s.preds {
		if p.isTerm {
			continue
		}
		for _, n := range p.pattern {
			if n.Wildcard && len(p.pattern) > 1 {
				return true
			}
		}
	}
	return false
}

// Fingerprint returns a stable digest of the set, used as the compile-cache
// key. Equal sets always produce equal fingerprints.
func (s PredicateSet) Fingerprint() string {
	h := sha256.New()
	var lenBuf [8]byte
	writeLen := func(n int) {
		for i := 0; i < 8; i++ {
			lenBuf[i] = byte(n >> (8 * i))
		}
		h.Write(lenBuf[:])
	}
	for _, p := range s.preds {
		if p.isTerm {
			h.Write([]byte{'T'})
			writeLen(len(p.term))
			h.Write([]byte(p.term))
			continue
		}
		h.Write([]byte{'P'})
		writeLen(len(p.pattern))
		for _, n := range p.pattern {
			if n.Wildcard {
				h.Write([]byte{'W'})
				continue
			}
			h.Write([]byte{'L'})
			writeLen(len(n.Text))
			h.Write([]byte(n.Text))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
