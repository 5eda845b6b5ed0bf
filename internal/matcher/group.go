package matcher

// groupedPredicates partitions a predicate set by where its wildcards sit.
// The partition drives expression synthesis: patterns sharing a leading or
// trailing wildcard are emitted under a single factored wildcard span
// (".*(foo|bar)" rather than "(.*foo)|(.*bar)"), which keeps the automaton
// backend's state count low.
//
// Pattern slices hold the trimmed core of each pattern: the factored leading
// and trailing wildcard runs are stripped, interior nodes are kept as-is.
type groupedPredicates struct {
	terms           []string  // exact terms, in set order
	termsWC         []Pattern // literal core, trailing wildcards
	termsInternalWC []Pattern // literal ends, wildcards strictly inside
	wcTerms         []Pattern // leading wildcards, literal core
	wcTermsWC       []Pattern // wildcards at both ends
}

// groupPredicates classifies every predicate in the set by its first and
// last non-wildcard node. Pattern cores are sub-slices of the set's own
// patterns; no nodes are copied.
//
// A pattern consisting solely of wildcards constrains nothing and names no
// literal to match on, so it is dropped. A pattern with literals but no
// wildcard (which the parser never produces) is folded into the exact terms.
func groupPredicates(set PredicateSet) groupedPredicates {
	var g groupedPredicates
	for i := 0; i < set.Len(); i++ {
		p := set.At(i)
		if p.IsTerm() {
			g.terms = append(g.terms, p.Term())
			continue
		}
		pat := p.Pattern()
		first, last := -1, -1
		for j, n := range pat {
			if !n.Wildcard {
				if first < 0 {
					first = j
				}
				last = j
			}
		}
		if first < 0 {
			continue
		}
		core := pat[first : last+1]
		lead := first > 0
		trail := last < len(pat)-1
		switch {
		case !lead && !trail:
			if !core.hasWildcard() {
				g.terms = append(g.terms, core.concatLiterals())
				continue
			}
			g.termsInternalWC = append(g.termsInternalWC, core)
		case !lead && trail:
			g.termsWC = append(g.termsWC, core)
		case lead && !trail:
			g.wcTerms = append(g.wcTerms, core)
		default:
			g.wcTermsWC = append(g.wcTermsWC, core)
		}
	}
	return g
}

func (g groupedPredicates) hasPatterns() bool {
	return len(g.termsWC)+len(g.termsInternalWC)+len(g.wcTerms)+len(g.wcTermsWC) > 0
}

func (p Pattern) hasWildcard() bool {
	for _, n := range p {
		if n.Wildcard {
			return true
		}
	}
	return false
}

func (p Pattern) concatLiterals() string {
	if len(p) == 1 {
		return p[0].Text
	}
	var out string
	for _, n := range p {
		out += n.Text
	}
	return out
}
