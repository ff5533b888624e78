package evacfail

//go:generate mockgen -destination=mocks/phase_times.go -package=mock_evacfail github.com/vkngwrapper/gcheap/evacfail PhaseTimes

import (
	"github.com/vkngwrapper/gcheap/heap"
	"github.com/vkngwrapper/gcheap/phases"
)

// Heap is the region directory the repair pass works against. *heap.Heap satisfies it.
type Heap interface {
	RegionAt(index uint32) *heap.Region
	MaxRegions() uint32
	GrainWords() uint
	LogGrainBytes() int
}

// MarkBitmap answers which addresses hold objects that failed evacuation. *heap.MarkBitmap
// satisfies it.
type MarkBitmap interface {
	NextMarkedAddr(from, limit heap.Addr) heap.Addr
	IsMarked(addr heap.Addr) bool
}

// FailedRegions lists the regions that failed evacuation in sequence order.
// *heap.EvacFailureRegions satisfies it.
type FailedRegions interface {
	NumRegionsFailedEvacuation() uint
	RegionIndex(position uint) uint32
}

// PhaseTimes is the sink for per-worker timing and work item counts. *phases.PhaseTimes
// satisfies it.
type PhaseTimes interface {
	RecordOrAddTimeSecs(phase phases.ParPhase, workerID uint, secs float64)
	RecordOrAddThreadWorkItem(phase phases.ParPhase, workerID uint, amount uint64, kind phases.WorkItem)
}

var _ Heap = &heap.Heap{}
var _ MarkBitmap = &heap.MarkBitmap{}
var _ FailedRegions = &heap.EvacFailureRegions{}
var _ PhaseTimes = &phases.PhaseTimes{}
