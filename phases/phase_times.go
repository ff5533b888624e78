package phases

import (
	"fmt"
	"strconv"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"
)

// ParPhase identifies a parallel collection phase whose per-worker timings are recorded
type ParPhase uint32

const (
	// RemoveSelfForwardsInChunks is the phase in which objects that failed evacuation have their
	// self-forwarding pointers removed and the dead ranges around them are filled
	RemoveSelfForwardsInChunks ParPhase = iota

	parPhaseCount
)

var parPhaseMapping = map[ParPhase]string{
	RemoveSelfForwardsInChunks: "RemoveSelfForwardsInChunks",
}

func (p ParPhase) String() string {
	return parPhaseMapping[p]
}

// WorkItem identifies one of the counters a worker can add to while working on a phase
type WorkItem uint32

const (
	// RemoveSelfForwardChunksNum counts chunks that contained at least one object start
	RemoveSelfForwardChunksNum WorkItem = iota
	// RemoveSelfForwardEmptyChunksNum counts chunks that contained no object start
	RemoveSelfForwardEmptyChunksNum
	// RemoveSelfForwardObjectsNum counts objects whose self-forwarding pointer was removed
	RemoveSelfForwardObjectsNum
	// RemoveSelfForwardObjectsBytes counts the bytes of the objects whose self-forwarding pointer was removed
	RemoveSelfForwardObjectsBytes

	workItemCount
)

var workItemMapping = map[WorkItem]string{
	RemoveSelfForwardChunksNum:      "RemoveSelfForwardChunksNum",
	RemoveSelfForwardEmptyChunksNum: "RemoveSelfForwardEmptyChunksNum",
	RemoveSelfForwardObjectsNum:     "RemoveSelfForwardObjectsNum",
	RemoveSelfForwardObjectsBytes:   "RemoveSelfForwardObjectsBytes",
}

func (w WorkItem) String() string {
	return workItemMapping[w]
}

const uninitializedTime float64 = -1

type workerData struct {
	timeSecs  []float64
	workItems [workItemCount][]uint64
}

// PhaseTimes accumulates elapsed time and work item counts per worker for each parallel phase.
// Every worker only writes to its own slots, so workers may record concurrently as long as no two
// of them share a worker id. Reading results must wait until all workers are done.
type PhaseTimes struct {
	maxWorkers uint
	phases     [parPhaseCount]workerData
}

// New creates a PhaseTimes with room for maxWorkers workers
func New(maxWorkers uint) *PhaseTimes {
	p := &PhaseTimes{maxWorkers: maxWorkers}
	for i := range p.phases {
		p.phases[i].timeSecs = make([]float64, maxWorkers)
		for j := range p.phases[i].workItems {
			p.phases[i].workItems[j] = make([]uint64, maxWorkers)
		}
	}
	p.Reset()

	return p
}

func (p *PhaseTimes) MaxWorkers() uint { return p.maxWorkers }

// Reset discards every recorded time and work item
func (p *PhaseTimes) Reset() {
	for i := range p.phases {
		for worker := range p.phases[i].timeSecs {
			p.phases[i].timeSecs[worker] = uninitializedTime
		}

		for j := range p.phases[i].workItems {
			clear(p.phases[i].workItems[j])
		}
	}
}

func (p *PhaseTimes) checkWorker(phase ParPhase, workerID uint) {
	if phase >= parPhaseCount {
		panic(fmt.Sprintf("unknown phase %d", phase))
	}

	if workerID >= p.maxWorkers {
		panic(fmt.Sprintf("worker id %d out of range for phase %s with %d workers", workerID, phase, p.maxWorkers))
	}
}

// RecordOrAddTimeSecs adds secs to the time the worker has spent in phase
func (p *PhaseTimes) RecordOrAddTimeSecs(phase ParPhase, workerID uint, secs float64) {
	p.checkWorker(phase, workerID)

	times := p.phases[phase].timeSecs
	if times[workerID] == uninitializedTime {
		times[workerID] = secs
	} else {
		times[workerID] += secs
	}
}

// RecordOrAddThreadWorkItem adds amount to the worker's counter of the provided kind in phase
func (p *PhaseTimes) RecordOrAddThreadWorkItem(phase ParPhase, workerID uint, amount uint64, kind WorkItem) {
	p.checkWorker(phase, workerID)
	if kind >= workItemCount {
		panic(fmt.Sprintf("unknown work item %d", kind))
	}

	p.phases[phase].workItems[kind][workerID] += amount
}

// TimeSecs returns the time the worker spent in phase, and false if the worker never recorded a time
func (p *PhaseTimes) TimeSecs(phase ParPhase, workerID uint) (float64, bool) {
	p.checkWorker(phase, workerID)

	secs := p.phases[phase].timeSecs[workerID]
	if secs == uninitializedTime {
		return 0, false
	}
	return secs, true
}

// MaxTimeSecs returns the longest time any worker spent in phase
func (p *PhaseTimes) MaxTimeSecs(phase ParPhase) float64 {
	var maxSecs float64
	for worker := uint(0); worker < p.maxWorkers; worker++ {
		secs, ok := p.TimeSecs(phase, worker)
		if ok && secs > maxSecs {
			maxSecs = secs
		}
	}
	return maxSecs
}

// ThreadWorkItem returns the worker's counter of the provided kind in phase
func (p *PhaseTimes) ThreadWorkItem(phase ParPhase, workerID uint, kind WorkItem) uint64 {
	p.checkWorker(phase, workerID)

	return p.phases[phase].workItems[kind][workerID]
}

// SumThreadWorkItems returns the total of every worker's counter of the provided kind in phase
func (p *PhaseTimes) SumThreadWorkItems(phase ParPhase, kind WorkItem) uint64 {
	var sum uint64
	for worker := uint(0); worker < p.maxWorkers; worker++ {
		sum += p.ThreadWorkItem(phase, worker, kind)
	}
	return sum
}

func (p *PhaseTimes) activeWorkers(phase ParPhase) int {
	var count int
	for worker := uint(0); worker < p.maxWorkers; worker++ {
		if _, ok := p.TimeSecs(phase, worker); ok {
			count++
		}
	}
	return count
}

// LogSummary writes a debug-level summary of every phase that recorded any time
func (p *PhaseTimes) LogSummary(logger *slog.Logger) {
	for phase := ParPhase(0); phase < parPhaseCount; phase++ {
		workers := p.activeWorkers(phase)
		if workers == 0 {
			continue
		}

		attrs := []any{
			slog.Int("Workers", workers),
			slog.Float64("MaxMs", p.MaxTimeSecs(phase)*1000),
		}
		for kind := WorkItem(0); kind < workItemCount; kind++ {
			attrs = append(attrs, slog.Uint64(kind.String(), p.SumThreadWorkItems(phase, kind)))
		}

		logger.Debug(phase.String(), attrs...)
	}
}

// PrintJson writes a json object describing the recorded times and work items for every phase
func (p *PhaseTimes) PrintJson(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	for phase := ParPhase(0); phase < parPhaseCount; phase++ {
		phaseObj := objState.Name(phase.String()).Object()

		workersObj := phaseObj.Name("Workers").Object()
		for worker := uint(0); worker < p.maxWorkers; worker++ {
			secs, ok := p.TimeSecs(phase, worker)
			if !ok {
				continue
			}

			workerObj := workersObj.Name(strconv.Itoa(int(worker))).Object()
			workerObj.Name("TimeSecs").Float64(secs)
			for kind := WorkItem(0); kind < workItemCount; kind++ {
				workerObj.Name(kind.String()).Int(int(p.ThreadWorkItem(phase, worker, kind)))
			}
			workerObj.End()
		}
		workersObj.End()

		phaseObj.End()
	}
}
