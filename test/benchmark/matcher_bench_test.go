// Package benchmark contains Go benchmarks for predicate-set compilation and
// per-token match throughput across the hash, regex, and automaton backends.
package benchmark

import (
	"fmt"
	"testing"

	"github.com/searchfoundry/tokenmatch/internal/freq"
	"github.com/searchfoundry/tokenmatch/internal/matcher"
)

var benchPredicates = []string{
	"og", "det", "ikke", "som", "han",
	"fjord*", "nord*lys", "wildca*", "*vik", "*dal", "*lys*",
}

var benchTerms = []string{"og", "det", "ikke", "som", "han"}

// benchTokens mixes term hits, pattern hits, and misses the way a snippet
// pass over mixed prose would.
var benchTokens = []string{
	"og", "det", "fjorden", "nordlys", "wildcard", "larvik",
	"dypdal", "sollyset", "ikke", "hverken", "presens", "som",
	"han", "hun", "fjordarm", "x", "matching",
}

func benchStore() *freq.MemoryStore {
	freqs := make(map[string]uint64)
	for i, tok := range benchTokens {
		freqs[tok] = uint64(i%7 + 1)
	}
	return freq.NewMemoryStoreFrom(freqs)
}

func BenchmarkCompile(b *testing.B) {
	for _, kind := range []matcher.Kind{matcher.KindRegex, matcher.KindAutomaton} {
		b.Run(string(kind), func(b *testing.B) {
			set := matcher.ParsePredicateSet(benchPredicates...)
			opts := matcher.Options{Kind: kind}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := matcher.Compile(set, opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkCompileHash(b *testing.B) {
	set := matcher.ParsePredicateSet(benchTerms...)
	opts := matcher.Options{Kind: matcher.KindHash}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := matcher.Compile(set, opts); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkTokenLookup measures steady-state throughput: one matcher scoring
// a rotating token stream, result cache warm after the first pass.
func BenchmarkTokenLookup(b *testing.B) {
	store := benchStore()
	for _, kind := range []matcher.Kind{matcher.KindRegex, matcher.KindAutomaton} {
		b.Run(string(kind), func(b *testing.B) {
			set := matcher.ParsePredicateSet(benchPredicates...)
			eng, err := matcher.Compile(set, matcher.Options{Kind: kind})
			if err != nil {
				b.Fatal(err)
			}
			m := eng.NewMatcher(matcher.ResolveTermLookups(set, store))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = m.Lookup(benchTokens[i%len(benchTokens)], store)
			}
		})
	}
}

func BenchmarkTokenLookupHash(b *testing.B) {
	store := benchStore()
	set := matcher.ParsePredicateSet(benchTerms...)
	eng, err := matcher.Compile(set, matcher.Options{Kind: matcher.KindHash})
	if err != nil {
		b.Fatal(err)
	}
	m := eng.NewMatcher(matcher.ResolveTermLookups(set, store))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Lookup(benchTokens[i%len(benchTokens)], store)
	}
}

// BenchmarkTokenLookupColdCache measures the uncached path: a fresh matcher
// per iteration batch, every token a cache miss on first sight.
func BenchmarkTokenLookupColdCache(b *testing.B) {
	store := benchStore()
	for _, kind := range []matcher.Kind{matcher.KindRegex, matcher.KindAutomaton} {
		b.Run(string(kind), func(b *testing.B) {
			set := matcher.ParsePredicateSet(benchPredicates...)
			eng, err := matcher.Compile(set, matcher.Options{Kind: kind})
			if err != nil {
				b.Fatal(err)
			}
			lookups := matcher.ResolveTermLookups(set, store)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				m := eng.NewMatcher(lookups)
				for _, tok := range benchTokens {
					_ = m.Lookup(tok, store)
				}
			}
		})
	}
}

// BenchmarkMatcherParallel exercises the shared-engine model: one compiled
// engine, one private matcher per goroutine.
func BenchmarkMatcherParallel(b *testing.B) {
	store := benchStore()
	set := matcher.ParsePredicateSet(benchPredicates...)
	eng, err := matcher.Compile(set, matcher.Options{Kind: matcher.KindAutomaton})
	if err != nil {
		b.Fatal(err)
	}
	lookups := matcher.ResolveTermLookups(set, store)
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		m := eng.NewMatcher(lookups)
		i := 0
		for pb.Next() {
			_ = m.Lookup(benchTokens[i%len(benchTokens)], store)
			i++
		}
	})
}

func BenchmarkCompileCache(b *testing.B) {
	cache := matcher.NewCompileCache(nil)
	sets := make([]matcher.PredicateSet, 8)
	for i := range sets {
		sets[i] = matcher.ParsePredicateSet(append([]string{fmt.Sprintf("extra%d*", i)}, benchPredicates...)...)
	}
	opts := matcher.Options{}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := cache.Get(sets[i%len(sets)], opts); err != nil {
			b.Fatal(err)
		}
	}
}
