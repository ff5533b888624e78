package evacfail

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gcheap/heap"
	"golang.org/x/exp/slog"
)

func TestRegionGarbageWordsCache(t *testing.T) {
	h, err := heap.New(slog.Default(), heap.CreateOptions{RegionCount: 4, RegionGrainBytes: 4096})
	require.NoError(t, err)

	cache := newRegionGarbageWordsCache(h)

	// Nothing held yet
	cache.flush()
	for regionIdx := uint32(0); regionIdx < h.MaxRegions(); regionIdx++ {
		require.Equal(t, uint(0), h.RegionAt(regionIdx).GarbageBytes())
	}

	cache.add(1, 5)
	cache.add(1, 3)
	require.Equal(t, uint(0), h.RegionAt(1).GarbageBytes())

	cache.add(2, 4)
	require.Equal(t, uint(8*heap.WordSize), h.RegionAt(1).GarbageBytes())
	require.Equal(t, uint(0), h.RegionAt(2).GarbageBytes())

	cache.add(1, 1)
	require.Equal(t, uint(4*heap.WordSize), h.RegionAt(2).GarbageBytes())

	cache.flush()
	require.Equal(t, uint(9*heap.WordSize), h.RegionAt(1).GarbageBytes())

	cache.flush()
	require.Equal(t, uint(9*heap.WordSize), h.RegionAt(1).GarbageBytes())
	require.Equal(t, uint(4*heap.WordSize), h.RegionAt(2).GarbageBytes())

	// Zero-word additions are still attributed to the region that was held
	cache.add(3, 0)
	cache.flush()
	require.Equal(t, uint(0), h.RegionAt(3).GarbageBytes())

	h.RegionAt(1).NoteSelfForwardingRemovalStart()
	require.Equal(t, uint(0), h.RegionAt(1).GarbageBytes())
}
