package heap

import (
	"fmt"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/gcheap/memutils"
	"golang.org/x/exp/slog"
)

// Heap is a region directory over a single span of word-addressed memory. It owns the mark bitmap
// and the set of regions that failed evacuation in the current collection.
type Heap struct {
	logger        *slog.Logger
	flags         CreateFlags
	grainWords    uint
	logGrainBytes int

	memory  []uint64
	regions []*Region

	markBitmap         *MarkBitmap
	evacFailureRegions *EvacFailureRegions
}

func (h *Heap) Flags() CreateFlags                      { return h.flags }
func (h *Heap) GrainWords() uint                        { return h.grainWords }
func (h *Heap) LogGrainBytes() int                      { return h.logGrainBytes }
func (h *Heap) MaxRegions() uint32                      { return uint32(len(h.regions)) }
func (h *Heap) MarkBitmap() *MarkBitmap                 { return h.markBitmap }
func (h *Heap) EvacFailureRegions() *EvacFailureRegions { return h.evacFailureRegions }

// RegionAt returns the region with the provided index
func (h *Heap) RegionAt(index uint32) *Region {
	if index >= h.MaxRegions() {
		panic(fmt.Sprintf("region index %d out of range, the heap has %d regions", index, h.MaxRegions()))
	}

	return h.regions[index]
}

// RegionForAddr returns the region containing addr
func (h *Heap) RegionForAddr(addr Addr) *Region {
	return h.RegionAt(uint32(uint(addr) / h.grainWords))
}

// HandleEvacuationFailure abandons the evacuation of the object at addr and leaves it in place:
// the object is forwarded to itself, marked in the mark bitmap, and its region is recorded as having
// failed evacuation. It returns false if the object had already been forwarded, in which case nothing
// is changed. It may be called concurrently by evacuation workers.
func (h *Heap) HandleEvacuationFailure(addr Addr) bool {
	region := h.RegionForAddr(addr)
	if !region.ForwardTo(addr, addr) {
		return false
	}

	h.markBitmap.Mark(addr)

	if h.evacFailureRegions.Record(region.Index()) {
		region.setEvacuationFailed(true)
		h.logger.Debug("Heap::HandleEvacuationFailure", slog.Int("RegionIndex", int(region.Index())))
	}

	return true
}

// ResetEvacuationFailure clears the evacuation failure state of every recorded region, as well as their
// mark bits, and empties the failed region set. It must be called between collections.
func (h *Heap) ResetEvacuationFailure() {
	failed := h.evacFailureRegions.NumRegionsFailedEvacuation()
	for position := uint(0); position < failed; position++ {
		region := h.RegionAt(h.evacFailureRegions.RegionIndex(position))
		region.setEvacuationFailed(false)
		h.markBitmap.ClearRange(region.Bottom(), region.End())
	}

	h.evacFailureRegions.Reset()
}

// Validate performs consistency checks on every region that failed evacuation: each must pass
// Region.Validate, and every object left in it must be marked while no filler is
func (h *Heap) Validate() error {
	failed := h.evacFailureRegions.NumRegionsFailedEvacuation()
	for position := uint(0); position < failed; position++ {
		region := h.RegionAt(h.evacFailureRegions.RegionIndex(position))

		err := region.Validate()
		if err != nil {
			return errors.Wrapf(err, "region %d failed validation", region.Index())
		}

		err = region.VisitAllBlocks(func(addr Addr, words uint, filler bool) error {
			marked := h.markBitmap.IsMarked(addr)
			if filler && marked {
				return errors.Newf("filler at %d is marked", addr)
			} else if !filler && !marked {
				return errors.Newf("object at %d survived evacuation failure but is not marked", addr)
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "region %d failed validation", region.Index())
		}
	}

	return nil
}

// AddStatistics sums the totals of every region that holds objects into the provided
// memutils.Statistics object
func (h *Heap) AddStatistics(stats *memutils.Statistics) {
	for _, region := range h.regions {
		if region.UsedWords() > 0 {
			region.AddStatistics(stats)
		}
	}
}

// AddDetailedStatistics sums the statistics of every region that holds objects into the provided
// memutils.DetailedStatistics object
func (h *Heap) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	for _, region := range h.regions {
		if region.UsedWords() > 0 {
			region.AddDetailedStatistics(stats)
		}
	}
}

// PrintDetailedMap writes a json object describing every region that holds objects
func (h *Heap) PrintDetailedMap(writer *jwriter.Writer) {
	objState := writer.Object()
	defer objState.End()

	objState.Name("RegionGrainBytes").Int(int(h.grainWords) * WordSize)
	objState.Name("RegionsFailedEvacuation").Int(int(h.evacFailureRegions.NumRegionsFailedEvacuation()))

	regionsObj := objState.Name("Regions").Object()
	defer regionsObj.End()

	for _, region := range h.regions {
		if region.UsedWords() == 0 {
			continue
		}

		regionObj := regionsObj.Name(strconv.Itoa(int(region.Index()))).Object()
		region.BlockJsonData(regionObj)
		regionObj.End()
	}
}
