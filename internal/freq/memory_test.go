package freq

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetAndLookup(t *testing.T) {
	s := NewMemoryStore()
	assert.Equal(t, uint64(0), s.DocFreq([]byte("fjord")))

	s.Set("fjord", 12)
	assert.Equal(t, uint64(12), s.DocFreq([]byte("fjord")))

	df, err := s.Lookup(context.Background(), "fjord")
	require.NoError(t, err)
	assert.Equal(t, uint64(12), df)
}

func TestMemoryStoreZeroRemoves(t *testing.T) {
	s := NewMemoryStoreFrom(map[string]uint64{"a": 1, "b": 2, "zero": 0})
	assert.Equal(t, 2, s.Len())

	s.Set("a", 0)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, uint64(0), s.DocFreq([]byte("a")))
}

func TestMemoryStoreSetBulkAndSnapshot(t *testing.T) {
	s := NewMemoryStoreFrom(map[string]uint64{"a": 1, "b": 2})
	s.SetBulk(map[string]uint64{"b": 0, "c": 3})

	snap := s.Snapshot()
	assert.Equal(t, map[string]uint64{"a": 1, "c": 3}, snap)

	// The snapshot is detached from the store.
	snap["a"] = 99
	assert.Equal(t, uint64(1), s.DocFreq([]byte("a")))
}

func TestMemoryStoreConcurrentReadWrite(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.Set("term", uint64(j+1))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				_ = s.DocFreq([]byte("term"))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(1000), s.DocFreq([]byte("term")))
}
