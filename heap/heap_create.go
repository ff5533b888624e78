package heap

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/gcheap/memutils"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific heap behaviors to activate or deactivate
type CreateFlags int32

var heapCreateFlagsMapping = common.NewFlagStringMapping[CreateFlags]()

func (f CreateFlags) Register(str string) {
	heapCreateFlagsMapping.Register(f, str)
}
func (f CreateFlags) String() string {
	return heapCreateFlagsMapping.FlagsToString(f)
}

const (
	// HeapCreateExternallySynchronized ensures that this heap and its regions will not be synchronized
	// internally. The consumer must guarantee that allocation and evacuation failure handling are
	// used from only one goroutine at a time or are synchronized by some other mechanism.
	HeapCreateExternallySynchronized CreateFlags = 1 << iota
	// HeapCreateZapDeadObjects instructs the heap to overwrite the body of every dead range it fills
	// with an easy-to-identify marker, and to check that marker during validation. This is always
	// active when built with the debug_mem_utils build tag.
	HeapCreateZapDeadObjects
	// HeapCreateVerifyAfterRepair instructs the self-forward removal driver to validate every region
	// that failed evacuation once the repair pass completes
	HeapCreateVerifyAfterRepair
)

func init() {
	HeapCreateExternallySynchronized.Register("HeapCreateExternallySynchronized")
	HeapCreateZapDeadObjects.Register("HeapCreateZapDeadObjects")
	HeapCreateVerifyAfterRepair.Register("HeapCreateVerifyAfterRepair")
}

const (
	// defaultRegionCount is the value used as the RegionCount when none is provided via CreateOptions
	defaultRegionCount int = 16
	// defaultRegionGrainBytes is the value used as the RegionGrainBytes when none is provided via
	// CreateOptions. It is equal to 1Mb.
	defaultRegionGrainBytes int = 1024 * 1024
	// minRegionGrainBytes is the size of a single block-offset card
	minRegionGrainBytes int = CardWords * WordSize
)

// CreateOptions contains optional settings when creating a heap
type CreateOptions struct {
	// Flags indicates specific heap behaviors to activate or deactivate
	Flags CreateFlags
	// RegionCount is the number of regions the heap is divided into
	RegionCount int
	// RegionGrainBytes is the size in bytes of every region. It must be a power of two and no
	// smaller than a single block-offset card.
	RegionGrainBytes int
}

// New creates a new Heap
//
// logger - The logger that heap operations will be reported to
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(logger *slog.Logger, options CreateOptions) (*Heap, error) {
	regionCount := options.RegionCount
	if regionCount == 0 {
		regionCount = defaultRegionCount
	} else if regionCount < 0 {
		return nil, errors.Newf("heap.CreateOptions.RegionCount must not be negative, but was %d", regionCount)
	}

	grainBytes := options.RegionGrainBytes
	if grainBytes == 0 {
		grainBytes = defaultRegionGrainBytes
	}

	err := memutils.CheckPow2(grainBytes, "heap.CreateOptions.RegionGrainBytes")
	if err != nil {
		return nil, err
	}

	if grainBytes < minRegionGrainBytes {
		return nil, errors.Newf("heap.CreateOptions.RegionGrainBytes must be at least %d, but was %d", minRegionGrainBytes, grainBytes)
	}

	useMutex := options.Flags&HeapCreateExternallySynchronized == 0
	grainWords := uint(grainBytes / WordSize)

	h := &Heap{
		logger:        logger,
		flags:         options.Flags,
		grainWords:    grainWords,
		logGrainBytes: memutils.Log2(uint(grainBytes)),
		memory:        make([]uint64, grainWords*uint(regionCount)),
		regions:       make([]*Region, regionCount),
	}

	for i := 0; i < regionCount; i++ {
		bottom := uint(i) * grainWords
		h.regions[i] = newRegion(
			uint32(i),
			Addr(bottom),
			h.memory[bottom:bottom+grainWords:bottom+grainWords],
			useMutex,
			options.Flags&HeapCreateZapDeadObjects != 0,
		)
	}

	h.markBitmap = newMarkBitmap(uint(len(h.memory)))
	h.evacFailureRegions = newEvacFailureRegions(uint32(regionCount), useMutex)

	logger.Debug("Heap::New",
		slog.Int("RegionCount", regionCount),
		slog.Int("RegionGrainBytes", grainBytes),
		slog.String("Flags", options.Flags.String()),
	)

	return h, nil
}
