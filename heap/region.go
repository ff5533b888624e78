package heap

import (
	"fmt"
	"sync/atomic"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/gcheap/internal/utils"
	"github.com/vkngwrapper/gcheap/memutils"
)

// Region is a contiguous, fixed-size span of heap memory. Objects are bump-allocated between
// Bottom and Top; everything between Top and End is unformatted.
//
// Allocation is synchronized with the diagnostic walks (Validate, AddDetailedStatistics,
// BlockJsonData) but not with the repair methods (FillRangeWithDeadObjects, UpdateBOTForBlock,
// InitMark), which may only be called while allocation is stopped.
type Region struct {
	index  uint32
	bottom Addr
	top    Addr
	end    Addr
	words  []uint64

	mutex          utils.OptionalRWMutex
	zapDeadObjects bool
	bot            blockOffsetTable

	evacuationFailed atomic.Bool
	garbageBytes     atomic.Uint64
}

func newRegion(index uint32, bottom Addr, words []uint64, useMutex bool, zapDeadObjects bool) *Region {
	end := bottom + Addr(len(words))
	return &Region{
		index:          index,
		bottom:         bottom,
		top:            bottom,
		end:            end,
		words:          words,
		mutex:          utils.OptionalRWMutex{UseMutex: useMutex},
		zapDeadObjects: zapDeadObjects || memutils.ZapDeadRanges,
		bot:            newBlockOffsetTable(bottom, uint(len(words))),
	}
}

func (r *Region) Index() uint32 { return r.index }
func (r *Region) Bottom() Addr  { return r.bottom }
func (r *Region) Top() Addr     { return r.top }
func (r *Region) End() Addr     { return r.end }

// UsedWords returns the number of formatted words in the region
func (r *Region) UsedWords() uint { return uint(r.top - r.bottom) }

// HasEvacuationFailed returns true if at least one object in this region failed evacuation
// during the current collection
func (r *Region) HasEvacuationFailed() bool { return r.evacuationFailed.Load() }

// GarbageBytes returns the number of bytes reported as garbage by the most recent
// self-forward removal over this region
func (r *Region) GarbageBytes() uint { return uint(r.garbageBytes.Load()) }

// Allocate bump-allocates an object of the requested size in words at the region's top. Sizes
// below MinObjectWords are rounded up. It returns false if the region does not have room.
func (r *Region) Allocate(words uint) (Addr, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if words < MinObjectWords {
		words = MinObjectWords
	}

	if uint(r.end-r.top) < words {
		return 0, false
	}

	addr := r.top
	r.writeObjectHeader(addr, words)
	r.top += Addr(words)
	r.bot.updateForBlock(addr, r.top)

	return addr, true
}

// FillRangeWithDeadObjects formats [start, end) as a single filler block and updates the
// block-offset table to match. When zapping is enabled, the filler's body is overwritten
// with memutils.ZapWords.
func (r *Region) FillRangeWithDeadObjects(start, end Addr) {
	if start < r.bottom || start >= end || end > r.top {
		panic(fmt.Sprintf("invalid dead range [%d, %d) for region %d [%d, %d)", start, end, r.index, r.bottom, r.top))
	}

	r.writeFiller(start, uint(end-start))
	if r.zapDeadObjects {
		memutils.ZapWords(r.words[start-r.bottom+1 : end-r.bottom])
	}
	r.bot.updateForBlock(start, end)
}

// UpdateBOTForBlock records [start, end) as a single block in the block-offset table
func (r *Region) UpdateBOTForBlock(start, end Addr) {
	if start < r.bottom || start >= end || end > r.top {
		panic(fmt.Sprintf("invalid block [%d, %d) for region %d [%d, %d)", start, end, r.index, r.bottom, r.top))
	}

	r.bot.updateForBlock(start, end)
}

// BlockStart returns the start of the object or filler containing addr, which must be below Top
func (r *Region) BlockStart(addr Addr) Addr {
	if addr < r.bottom || addr >= r.top {
		panic(fmt.Sprintf("address %d is outside the formatted part of region %d [%d, %d)", addr, r.index, r.bottom, r.top))
	}

	blockStart := r.bot.blockStartHint(addr)
	for {
		next := blockStart + Addr(r.ObjectSize(blockStart))
		if next > addr {
			return blockStart
		}
		blockStart = next
	}
}

// NoteSelfForwardingRemovalStart prepares the region's statistics for a self-forward removal pass
func (r *Region) NoteSelfForwardingRemovalStart() {
	r.garbageBytes.Store(0)
}

// NoteSelfForwardingRemovalEndPar adds garbageBytes to the region's garbage total. It may be
// called concurrently by many workers.
func (r *Region) NoteSelfForwardingRemovalEndPar(garbageBytes uint) {
	r.garbageBytes.Add(uint64(garbageBytes))
}

func (r *Region) setEvacuationFailed(failed bool) {
	r.evacuationFailed.Store(failed)
}

// VisitAllBlocks calls the provided callback once for each object and filler between Bottom and
// Top, in address order. Walking stops at the first error returned from the callback.
func (r *Region) VisitAllBlocks(handleBlock func(addr Addr, words uint, filler bool) error) error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.visitAllBlocks(handleBlock)
}

func (r *Region) visitAllBlocks(handleBlock func(addr Addr, words uint, filler bool) error) error {
	for addr := r.bottom; addr < r.top; {
		size := r.ObjectSize(addr)
		if size == 0 {
			return errors.Errorf("block at %d in region %d has a size of 0", addr, r.index)
		}

		err := handleBlock(addr, size, r.IsFiller(addr))
		if err != nil {
			return err
		}

		addr += Addr(size)
	}

	return nil
}

// Validate performs internal consistency checks on the region: the blocks between Bottom and Top
// must tile it exactly, no object may still be forwarded, and the block-offset table must agree
// with the object walk.
func (r *Region) Validate() error {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if r.top < r.bottom || r.top > r.end {
		return errors.Errorf("region %d has top %d outside of [%d, %d]", r.index, r.top, r.bottom, r.end)
	}

	return r.visitAllBlocks(func(addr Addr, words uint, filler bool) error {
		end := addr + Addr(words)
		if end > r.top {
			return errors.Errorf("block at %d with size %d extends beyond top %d of region %d", addr, words, r.top, r.index)
		}

		if !filler && r.IsForwarded(addr) {
			return errors.Errorf("object at %d in region %d is still forwarded to %d", addr, r.index, r.Forwardee(addr))
		}

		if filler && r.zapDeadObjects && !memutils.IsZapped(r.words[addr-r.bottom+1:end-r.bottom]) {
			return errors.Errorf("filler at %d in region %d has been overwritten", addr, r.index)
		}

		return r.bot.verifyBlock(addr, end)
	})
}

// AddStatistics sums this region's totals into the provided memutils.Statistics object
func (r *Region) AddStatistics(stats *memutils.Statistics) {
	var detailed memutils.DetailedStatistics
	detailed.Clear()
	r.AddDetailedStatistics(&detailed)

	stats.AddStatistics(&detailed.Statistics)
}

// AddDetailedStatistics sums this region's object and dead range statistics into the provided
// memutils.DetailedStatistics object
func (r *Region) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.RegionCount++
	stats.RegionBytes += int(r.end-r.bottom) * WordSize

	_ = r.VisitAllBlocks(func(addr Addr, words uint, filler bool) error {
		if filler {
			stats.AddDeadRange(int(words) * WordSize)
		} else {
			stats.AddObject(int(words) * WordSize)
		}
		return nil
	})
}

// BlockJsonData populates a json object with information about this region and every block in it
func (r *Region) BlockJsonData(json jwriter.ObjectState) {
	var stats memutils.DetailedStatistics
	stats.Clear()
	r.AddDetailedStatistics(&stats)

	json.Name("Index").Int(int(r.index))
	json.Name("Bottom").Int(int(r.bottom))
	json.Name("Top").Int(int(r.top))
	json.Name("End").Int(int(r.end))
	json.Name("EvacuationFailed").Bool(r.HasEvacuationFailed())
	json.Name("GarbageBytes").Int(int(r.GarbageBytes()))
	json.Name("ObjectBytes").Int(stats.ObjectBytes)
	json.Name("DeadRanges").Int(stats.DeadRangeCount)

	arrayState := json.Name("Blocks").Array()
	defer arrayState.End()

	_ = r.VisitAllBlocks(func(addr Addr, words uint, filler bool) error {
		obj := arrayState.Object()
		defer obj.End()

		obj.Name("Offset").Int(int(addr - r.bottom))
		obj.Name("Size").Int(int(words))
		obj.Name("Type").String(r.blockType(addr, filler))
		return nil
	})
}

func (r *Region) blockType(addr Addr, filler bool) string {
	switch {
	case filler:
		return "Filler"
	case r.IsSelfForwarded(addr):
		return "SelfForwarded"
	case r.IsForwarded(addr):
		return "Forwarded"
	default:
		return "Object"
	}
}
