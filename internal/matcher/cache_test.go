package matcher

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/searchfoundry/tokenmatch/pkg/errors"
)

func TestCompileCacheReusesEngine(t *testing.T) {
	cache := NewCompileCache(nil)

	a, err := cache.Get(ParsePredicateSet("foo", "ba*"), Options{})
	require.NoError(t, err)
	b, err := cache.Get(ParsePredicateSet("ba*", "foo", "foo"), Options{})
	require.NoError(t, err)

	assert.Same(t, a, b, "equal sets must share one compiled engine")
	assert.Equal(t, 1, cache.Len())
}

func TestCompileCacheKeyedByOptions(t *testing.T) {
	cache := NewCompileCache(nil)
	set := ParsePredicateSet("f*r")

	a, err := cache.Get(set, Options{Kind: KindRegex})
	require.NoError(t, err)
	b, err := cache.Get(set, Options{Kind: KindAutomaton})
	require.NoError(t, err)
	c, err := cache.Get(set, Options{Kind: KindAutomaton, WildcardLo: 'a', WildcardHi: 'z'})
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	assert.NotSame(t, b, c)
	assert.Equal(t, 3, cache.Len())
}

func TestCompileCacheDoesNotCacheFailures(t *testing.T) {
	cache := NewCompileCache(nil)
	set := ParsePredicateSet("ba*")

	_, err := cache.Get(set, Options{Kind: KindHash})
	require.Error(t, err)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidPredicate)
	assert.Equal(t, 0, cache.Len())

	eng, err := cache.Get(set, Options{Kind: KindAutomaton})
	require.NoError(t, err)
	assert.NotNil(t, eng)
}

func TestCompileCacheConcurrentGets(t *testing.T) {
	cache := NewCompileCache(nil)
	set := ParsePredicateSet("og", "fjord*", "*vik")

	const goroutines = 16
	engines := make([]Engine, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			eng, err := cache.Get(set, Options{})
			assert.NoError(t, err)
			engines[i] = eng
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, cache.Len())
	for i := 1; i < goroutines; i++ {
		assert.Same(t, engines[0], engines[i])
	}
}
