package evacfail

import "github.com/vkngwrapper/gcheap/heap"

// regionGarbageWordsCache holds the garbage words a worker has found in one region so far, so
// that the region's atomic garbage counter is only touched when the worker moves on to a
// different region or finishes.
type regionGarbageWordsCache struct {
	heap             Heap
	uninitializedIdx uint32
	regionIdx        uint32
	garbageWords     uint
}

func newRegionGarbageWordsCache(h Heap) *regionGarbageWordsCache {
	return &regionGarbageWordsCache{
		heap:             h,
		uninitializedIdx: h.MaxRegions(),
		regionIdx:        h.MaxRegions(),
	}
}

func (c *regionGarbageWordsCache) noteSelfForwardingRemovalEndPar() {
	c.heap.RegionAt(c.regionIdx).NoteSelfForwardingRemovalEndPar(c.garbageWords * heap.WordSize)
}

func (c *regionGarbageWordsCache) add(regionIdx uint32, garbageWords uint) {
	if c.regionIdx == c.uninitializedIdx {
		c.regionIdx = regionIdx
		c.garbageWords = garbageWords
	} else if c.regionIdx == regionIdx {
		c.garbageWords += garbageWords
	} else {
		c.noteSelfForwardingRemovalEndPar()
		c.regionIdx = regionIdx
		c.garbageWords = garbageWords
	}
}

func (c *regionGarbageWordsCache) flush() {
	if c.regionIdx != c.uninitializedIdx {
		c.noteSelfForwardingRemovalEndPar()
	}

	c.regionIdx = c.uninitializedIdx
	c.garbageWords = 0
}
