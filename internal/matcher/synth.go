package matcher

import (
	"fmt"
	"strings"
)

// synthOpts parameterizes expression synthesis per backend: the wildcard
// sub-expression (a bounded code-point class) and the backend's
// metacharacter escaping.
type synthOpts struct {
	wc     string
	escape func(string) string
}

// wildcardExpr renders the wildcard span as a repeated bounded code-point
// class. Both backends parse the \x{...} class syntax.
func wildcardExpr(lo, hi rune) string {
	return fmt.Sprintf(`[\x{%04X}-\x{%04X}]*`, lo, hi)
}

// renderCore writes a trimmed pattern core: literals escaped, interior
// wildcards as the wildcard span.
func renderCore(b *strings.Builder, p Pattern, o synthOpts) {
	for _, n := range p {
		if n.Wildcard {
			b.WriteString(o.wc)
		} else {
			b.WriteString(o.escape(n.Text))
		}
	}
}

// renderAlternation writes pattern cores joined by "|".
func renderAlternation(b *strings.Builder, ps []Pattern, o synthOpts) {
	for i, p := range ps {
		if i > 0 {
			b.WriteByte('|')
		}
		renderCore(b, p, o)
	}
}

// automatonExpr synthesizes the combined expression for the automaton
// backend. The whole expression is anchored at the API level, so boundary
// wildcards appear explicitly, factored so that each group shares a single
// wildcard span:
//
//	a|g|((c|i).*)|(e.*f)|(k.*l)|(.*(b|h))|(.*(d|j).*)
//
// An empty set synthesizes the empty string; callers treat that as a
// match-nothing engine.
func automatonExpr(g groupedPredicates, o synthOpts) string {
	var b strings.Builder
	sep := func() {
		if b.Len() > 0 {
			b.WriteByte('|')
		}
	}
	for _, t := range g.terms {
		sep()
		b.WriteString(o.escape(t))
	}
	if len(g.termsWC) > 0 {
		sep()
		b.WriteString("((")
		renderAlternation(&b, g.termsWC, o)
		b.WriteString(")")
		b.WriteString(o.wc)
		b.WriteString(")")
	}
	for _, p := range g.termsInternalWC {
		sep()
		b.WriteString("(")
		renderCore(&b, p, o)
		b.WriteString(")")
	}
	if len(g.wcTerms) > 0 {
		sep()
		b.WriteString("(")
		b.WriteString(o.wc)
		b.WriteString("(")
		renderAlternation(&b, g.wcTerms, o)
		b.WriteString("))")
	}
	if len(g.wcTermsWC) > 0 {
		sep()
		b.WriteString("(")
		b.WriteString(o.wc)
		b.WriteString("(")
		renderAlternation(&b, g.wcTermsWC, o)
		b.WriteString(")")
		b.WriteString(o.wc)
		b.WriteString(")")
	}
	return b.String()
}

// regexExpr synthesizes the combined expression for the regex backend.
// Boundary wildcards are expressed through anchoring instead of explicit
// spans: fully literal-bounded alternatives carry both anchors, a trailing
// wildcard drops the end anchor, a leading wildcard drops the start anchor,
// and wildcards at both ends leave the core as a bare substring search.
// Exact terms each get their own capture group; group i+1 corresponds to
// g.terms[i]. Everything else uses non-capturing groups.
func regexExpr(g groupedPredicates, o synthOpts) string {
	var b strings.Builder
	sep := func() {
		if b.Len() > 0 {
			b.WriteByte('|')
		}
	}
	if len(g.terms) > 0 {
		sep()
		b.WriteString("^(?:")
		for i, t := range g.terms {
			if i > 0 {
				b.WriteByte('|')
			}
			b.WriteString("(")
			b.WriteString(o.escape(t))
			b.WriteString(")")
		}
		b.WriteString(")$")
	}
	if len(g.termsWC) > 0 {
		sep()
		b.WriteString("^(?:")
		renderAlternation(&b, g.termsWC, o)
		b.WriteString(")")
	}
	if len(g.termsInternalWC) > 0 {
		sep()
		b.WriteString("^(?:")
		renderAlternation(&b, g.termsInternalWC, o)
		b.WriteString(")$")
	}
	if len(g.wcTerms) > 0 {
		sep()
		b.WriteString("(?:")
		renderAlternation(&b, g.wcTerms, o)
		b.WriteString(")$")
	}
	if len(g.wcTermsWC) > 0 {
		sep()
		b.WriteString("(?:")
		renderAlternation(&b, g.wcTermsWC, o)
		b.WriteString(")")
	}
	return b.String()
}
