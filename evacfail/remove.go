package evacfail

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/gcheap/heap"
	"github.com/vkngwrapper/gcheap/memutils"
	"github.com/vkngwrapper/gcheap/phases"
	"github.com/vkngwrapper/gcheap/workers"
	"golang.org/x/exp/slog"
)

// RemoveSelfForwards repairs every region of h that failed evacuation during the current collection,
// running a RemoveSelfForwardsTask on numWorkers workers from gang. Timings are recorded into times,
// which must have room for every worker in the gang.
//
// When h was created with heap.HeapCreateVerifyAfterRepair, the failed regions are validated afterward
// and any inconsistency is returned as an error. Builds with the debug_mem_utils tag always validate
// and panic on failure.
func RemoveSelfForwards(
	logger *slog.Logger,
	h *heap.Heap,
	gang *workers.Gang,
	times *phases.PhaseTimes,
	numWorkers uint,
	options TaskOptions,
) error {
	if times.MaxWorkers() < gang.MaxWorkers() {
		return errors.Newf("phase times have room for %d workers, but the gang may run %d", times.MaxWorkers(), gang.MaxWorkers())
	}

	failed := h.EvacFailureRegions()
	logger.Debug("RemoveSelfForwards", slog.Int("RegionsFailedEvacuation", int(failed.NumRegionsFailedEvacuation())))

	for position := uint(0); position < failed.NumRegionsFailedEvacuation(); position++ {
		h.RegionAt(failed.RegionIndex(position)).NoteSelfForwardingRemovalStart()
	}

	task := NewRemoveSelfForwardsTask(logger, h, h.MarkBitmap(), failed, times, options)
	gang.RunTask(task, numWorkers)

	times.LogSummary(logger)

	memutils.DebugValidate(h)
	if h.Flags()&heap.HeapCreateVerifyAfterRepair != 0 {
		err := h.Validate()
		if err != nil {
			return errors.Wrap(err, "heap verification failed after removing self-forwarded objects")
		}
	}

	return nil
}
