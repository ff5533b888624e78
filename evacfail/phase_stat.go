package evacfail

import (
	"time"

	"github.com/vkngwrapper/gcheap/heap"
	"github.com/vkngwrapper/gcheap/phases"
)

const statPhase = phases.RemoveSelfForwardsInChunks

// phaseTimesStat reports one chunk's worth of timing and work items to the PhaseTimes sink
type phaseTimesStat struct {
	phaseTimes PhaseTimes
	workerID   uint
	start      time.Time
}

func newPhaseTimesStat(phaseTimes PhaseTimes, workerID uint) phaseTimesStat {
	return phaseTimesStat{
		phaseTimes: phaseTimes,
		workerID:   workerID,
		start:      time.Now(),
	}
}

func (s *phaseTimesStat) recordTime() {
	s.phaseTimes.RecordOrAddTimeSecs(statPhase, s.workerID, time.Since(s.start).Seconds())
}

func (s *phaseTimesStat) registerEmptyChunk() {
	s.phaseTimes.RecordOrAddThreadWorkItem(statPhase, s.workerID, 1, phases.RemoveSelfForwardEmptyChunksNum)
}

func (s *phaseTimesStat) registerNonemptyChunk() {
	s.phaseTimes.RecordOrAddThreadWorkItem(statPhase, s.workerID, 1, phases.RemoveSelfForwardChunksNum)
}

func (s *phaseTimesStat) registerObjectsSize(markedWords uint) {
	s.phaseTimes.RecordOrAddThreadWorkItem(statPhase, s.workerID, uint64(markedWords*heap.WordSize), phases.RemoveSelfForwardObjectsBytes)
}

func (s *phaseTimesStat) registerObjectsCount(numMarkedObjs uint) {
	s.phaseTimes.RecordOrAddThreadWorkItem(statPhase, s.workerID, uint64(numMarkedObjs), phases.RemoveSelfForwardObjectsNum)
}
