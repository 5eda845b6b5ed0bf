package matcher

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/searchfoundry/tokenmatch/pkg/metrics"
)

// CompileCache deduplicates backend compilation across queries. Equal
// predicate sets compiled with equal options share one engine; concurrent
// first requests for the same set collapse into a single compilation.
// Compile failures are not cached.
type CompileCache struct {
	mu      sync.RWMutex
	engines map[string]Engine
	group   singleflight.Group
	m       *metrics.Metrics
}

// NewCompileCache returns an empty cache. m may be nil.
func NewCompileCache(m *metrics.Metrics) *CompileCache {
	return &CompileCache{
		engines: make(map[string]Engine),
		m:       m,
	}
}

// Get returns the engine for the set, compiling it on first use.
func (c *CompileCache) Get(set PredicateSet, opts Options) (Engine, error) {
	key := cacheKey(set, opts)

	c.mu.RLock()
	eng, ok := c.engines[key]
	c.mu.RUnlock()
	if ok {
		if c.m != nil {
			c.m.CompileCacheHits.Inc()
		}
		return eng, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		eng, ok := c.engines[key]
		c.mu.RUnlock()
		if ok {
			return eng, nil
		}
		if c.m != nil {
			c.m.CompileCacheMisses.Inc()
		}
		eng, err := Compile(set, opts)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.engines[key] = eng
		c.mu.Unlock()
		return eng, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Engine), nil
}

// Len returns the number of cached engines.
func (c *CompileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.engines)
}

// cacheKey folds everything that affects the compiled artifact: the set
// fingerprint and the option fields that change synthesis or backend choice.
func cacheKey(set PredicateSet, opts Options) string {
	opts = opts.normalized()
	return fmt.Sprintf("%s|%s|%04x-%04x|%d",
		set.Fingerprint(), opts.Kind, opts.WildcardLo, opts.WildcardHi, opts.DFAMaxStates)
}
