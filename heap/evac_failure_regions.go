package heap

import (
	"fmt"
	"sync/atomic"

	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/gcheap/internal/utils"
	"github.com/vkngwrapper/gcheap/memutils"
)

// EvacFailureRegions is the set of regions in which at least one object failed evacuation
// during the current collection. Regions are recorded exactly once, in the order in which
// their first failure was seen; that order assigns each region a sequence position.
type EvacFailureRegions struct {
	mutex     utils.OptionalMutex
	positions *swiss.Map[uint32, uint]

	regionsFailedEvacuation *memutils.AtomicBitSet
	evacFailureRegions      []uint32
	evacFailureRegionsNum   atomic.Uint32
}

func newEvacFailureRegions(maxRegions uint32, useMutex bool) *EvacFailureRegions {
	return &EvacFailureRegions{
		mutex:                   utils.OptionalMutex{UseMutex: useMutex},
		positions:               swiss.NewMap[uint32, uint](maxRegions),
		regionsFailedEvacuation: memutils.NewAtomicBitSet(uint(maxRegions)),
		evacFailureRegions:      make([]uint32, maxRegions),
	}
}

// Record adds regionIdx to the set. It returns true if this call added the region, and false if
// the region had already been recorded. Record may be called concurrently.
func (r *EvacFailureRegions) Record(regionIdx uint32) bool {
	if !r.regionsFailedEvacuation.ParSetBit(uint(regionIdx)) {
		return false
	}

	position := r.evacFailureRegionsNum.Add(1) - 1
	r.evacFailureRegions[position] = regionIdx

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.positions.Put(regionIdx, uint(position))

	return true
}

// Contains returns true if regionIdx has been recorded
func (r *EvacFailureRegions) Contains(regionIdx uint32) bool {
	return r.regionsFailedEvacuation.At(uint(regionIdx))
}

// NumRegionsFailedEvacuation returns the number of recorded regions
func (r *EvacFailureRegions) NumRegionsFailedEvacuation() uint {
	return uint(r.evacFailureRegionsNum.Load())
}

// RegionIndex returns the index of the region recorded at the provided sequence position
func (r *EvacFailureRegions) RegionIndex(position uint) uint32 {
	if position >= r.NumRegionsFailedEvacuation() {
		panic(fmt.Sprintf("sequence position %d is out of range, only %d regions failed evacuation", position, r.NumRegionsFailedEvacuation()))
	}

	return r.evacFailureRegions[position]
}

// Position returns the sequence position that regionIdx was recorded at, if it was recorded
func (r *EvacFailureRegions) Position(regionIdx uint32) (uint, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.positions.Get(regionIdx)
}

// Reset empties the set. It must not run concurrently with any other method.
func (r *EvacFailureRegions) Reset() {
	maxRegions := uint32(len(r.evacFailureRegions))

	r.positions = swiss.NewMap[uint32, uint](maxRegions)
	r.regionsFailedEvacuation.Resize(uint(maxRegions))
	r.evacFailureRegionsNum.Store(0)
}
