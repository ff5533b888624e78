package evacfail

import (
	"fmt"

	"github.com/vkngwrapper/gcheap/heap"
	"github.com/vkngwrapper/gcheap/memutils"
	"golang.org/x/exp/slog"
)

// TaskOptions contains optional settings for a RemoveSelfForwardsTask
type TaskOptions struct {
	// ChunksPerRegion overrides the number of chunks each failed region is split into. It must
	// be a power of two that evenly divides the region grain in words. When zero, the count is
	// derived from the region grain: 1 << (log2(grain bytes)/2 - 4).
	ChunksPerRegion uint
}

// RemoveSelfForwardsTask repairs the regions that failed evacuation. Each region is split into
// equally sized chunks; workers claim chunks one at a time and, within each chunk, restore the
// mark word of every self-forwarded object, rebuild the block-offset table for it, and fill the
// dead ranges between objects.
type RemoveSelfForwardsTask struct {
	logger        *slog.Logger
	heap          Heap
	bitmap        MarkBitmap
	failedRegions FailedRegions
	phaseTimes    PhaseTimes
	options       TaskOptions

	chunkClaims ChunkClaimTable

	// Initialized by PreStart because the number of workers is unknown at construction
	numWorkers         uint
	numChunksPerRegion uint
	numEvacFailRegions uint
	chunkSize          uint
}

// NewRemoveSelfForwardsTask creates a task that repairs every region listed in failedRegions.
// PreStart must be called before any worker calls Work.
func NewRemoveSelfForwardsTask(
	logger *slog.Logger,
	h Heap,
	bitmap MarkBitmap,
	failedRegions FailedRegions,
	phaseTimes PhaseTimes,
	options TaskOptions,
) *RemoveSelfForwardsTask {
	return &RemoveSelfForwardsTask{
		logger:        logger,
		heap:          h,
		bitmap:        bitmap,
		failedRegions: failedRegions,
		phaseTimes:    phaseTimes,
		options:       options,
	}
}

func (t *RemoveSelfForwardsTask) Name() string { return "Remove Self-forwarding Pointers" }

func (t *RemoveSelfForwardsTask) ChunksPerRegion() uint { return t.numChunksPerRegion }

// ChunkSize returns the size of each chunk in words
func (t *RemoveSelfForwardsTask) ChunkSize() uint { return t.chunkSize }

func (t *RemoveSelfForwardsTask) TotalChunks() uint {
	return t.numChunksPerRegion * t.numEvacFailRegions
}

func (t *RemoveSelfForwardsTask) ClaimTable() *ChunkClaimTable { return &t.chunkClaims }

// defaultChunksPerRegion mirrors the chunking used when scanning remembered sets, so that both
// passes work over the same granularity
func defaultChunksPerRegion(logGrainBytes int) uint {
	shift := logGrainBytes/2 - 4
	if shift < 0 {
		return 1
	}

	return 1 << shift
}

// PreStart sizes the chunks and the claim table. It panics if the chunk count does not evenly
// split the region grain.
func (t *RemoveSelfForwardsTask) PreStart(numWorkers uint) {
	if numWorkers == 0 {
		panic("attempted to start removing self forwards without any workers")
	}

	t.numWorkers = numWorkers
	t.numEvacFailRegions = t.failedRegions.NumRegionsFailedEvacuation()

	t.numChunksPerRegion = t.options.ChunksPerRegion
	if t.numChunksPerRegion == 0 {
		t.numChunksPerRegion = defaultChunksPerRegion(t.heap.LogGrainBytes())
	}

	grainWords := t.heap.GrainWords()
	if err := memutils.CheckPow2(t.numChunksPerRegion, "chunks per region"); err != nil {
		panic(err)
	}
	if err := memutils.CheckDivisible(grainWords, t.numChunksPerRegion, "region grain words"); err != nil {
		panic(err)
	}
	t.chunkSize = grainWords / t.numChunksPerRegion

	t.logger.Debug("Initializing removing self forwards",
		slog.Int("ChunksPerRegion", int(t.numChunksPerRegion)),
		slog.Int("ChunkSizeWords", int(t.chunkSize)),
		slog.Int("Workers", int(numWorkers)),
		slog.Int("Regions", int(t.numEvacFailRegions)),
	)

	t.chunkClaims.Resize(t.TotalChunks())
}

// Work claims and repairs chunks until every chunk has been claimed. Each worker starts at a
// different offset into the chunk space and wraps around, so that workers starting together do
// not all contend for the same chunks.
func (t *RemoveSelfForwardsTask) Work(workerID uint) {
	if t.numWorkers == 0 {
		panic("attempted to remove self forwards before PreStart")
	}
	memutils.DebugCheckPow2(t.chunkSize, "chunk size")

	totalChunks := t.TotalChunks()
	if totalChunks == 0 {
		return
	}
	startChunkIdx := workerID * totalChunks / t.numWorkers

	cache := newRegionGarbageWordsCache(t.heap)
	defer cache.flush()

	for i := uint(0); i < totalChunks; i++ {
		chunkIdx := (startChunkIdx + i) % totalChunks
		if t.chunkClaims.Claim(chunkIdx) {
			t.processChunk(workerID, chunkIdx, cache)
		}
	}
}

// zapDeadObjects fills [start, end) with a filler and returns its size in words
func zapDeadObjects(region *heap.Region, start, end heap.Addr) uint {
	if start > end {
		panic(fmt.Sprintf("dead range start %d is above its end %d", start, end))
	}

	if start == end {
		return 0
	}

	region.FillRangeWithDeadObjects(start, end)
	return uint(end - start)
}

func (t *RemoveSelfForwardsTask) processChunk(workerID uint, chunkIdx uint, cache *regionGarbageWordsCache) {
	regionIdx := t.failedRegions.RegionIndex(chunkIdx / t.numChunksPerRegion)
	region := t.heap.RegionAt(regionIdx)

	regionBottom := region.Bottom()
	regionTop := region.Top()
	chunkStart := regionBottom + heap.Addr((chunkIdx%t.numChunksPerRegion)*t.chunkSize)

	if chunkStart >= region.End() {
		panic(fmt.Sprintf("chunk %d starts at %d, beyond the end %d of region %d", chunkIdx, chunkStart, region.End(), regionIdx))
	}

	if chunkStart >= regionTop {
		return
	}

	stat := newPhaseTimesStat(t.phaseTimes, workerID)
	defer stat.recordTime()

	chunkEnd := min(chunkStart+heap.Addr(t.chunkSize), regionTop)
	firstMarkedAddr := t.bitmap.NextMarkedAddr(chunkStart, regionTop)

	var garbageWords uint

	if chunkStart == regionBottom {
		// Bottom-most chunk in this region: nothing else will fill [bottom, first marked object)
		garbageWords += zapDeadObjects(region, regionBottom, firstMarkedAddr)
	}

	if firstMarkedAddr >= chunkEnd {
		stat.registerEmptyChunk()
		cache.add(regionIdx, garbageWords)
		return
	}

	stat.registerNonemptyChunk()

	var numMarkedObjs, markedWords uint

	for objAddr := firstMarkedAddr; objAddr < chunkEnd; {
		if !t.bitmap.IsMarked(objAddr) {
			panic(fmt.Sprintf("object at %d in region %d is not marked", objAddr, regionIdx))
		}

		if !region.IsSelfForwarded(objAddr) {
			panic(fmt.Sprintf("object at %d in region %d must be self-forwarded", objAddr, regionIdx))
		}

		objSize := region.ObjectSize(objAddr)
		objEndAddr := objAddr + heap.Addr(objSize)

		region.InitMark(objAddr)
		region.UpdateBOTForBlock(objAddr, objEndAddr)

		numMarkedObjs++
		markedWords += objSize

		if objEndAddr > regionTop {
			panic(fmt.Sprintf("object at %d with size %d extends beyond top %d of region %d", objAddr, objSize, regionTop, regionIdx))
		}

		// Search up to top rather than the chunk end so the dead range after the last object in
		// this chunk is filled all the way to the next marked object
		nextMarkedObjAddr := t.bitmap.NextMarkedAddr(objEndAddr, regionTop)
		garbageWords += zapDeadObjects(region, objEndAddr, nextMarkedObjAddr)
		objAddr = nextMarkedObjAddr
	}

	stat.registerObjectsCount(numMarkedObjs)
	stat.registerObjectsSize(markedWords)

	cache.add(regionIdx, garbageWords)
}
