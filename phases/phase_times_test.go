package phases_test

import (
	"encoding/json"
	"testing"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gcheap/phases"
	"golang.org/x/exp/slog"
)

func TestRecordOrAddTimeSecs(t *testing.T) {
	times := phases.New(4)
	require.Equal(t, uint(4), times.MaxWorkers())

	_, ok := times.TimeSecs(phases.RemoveSelfForwardsInChunks, 2)
	require.False(t, ok)

	times.RecordOrAddTimeSecs(phases.RemoveSelfForwardsInChunks, 2, 0.25)
	times.RecordOrAddTimeSecs(phases.RemoveSelfForwardsInChunks, 2, 0.5)
	times.RecordOrAddTimeSecs(phases.RemoveSelfForwardsInChunks, 0, 0)

	secs, ok := times.TimeSecs(phases.RemoveSelfForwardsInChunks, 2)
	require.True(t, ok)
	require.InDelta(t, 0.75, secs, 1e-9)

	secs, ok = times.TimeSecs(phases.RemoveSelfForwardsInChunks, 0)
	require.True(t, ok)
	require.Equal(t, float64(0), secs)

	require.InDelta(t, 0.75, times.MaxTimeSecs(phases.RemoveSelfForwardsInChunks), 1e-9)

	times.Reset()
	_, ok = times.TimeSecs(phases.RemoveSelfForwardsInChunks, 2)
	require.False(t, ok)
	require.Equal(t, float64(0), times.MaxTimeSecs(phases.RemoveSelfForwardsInChunks))
}

func TestRecordOrAddThreadWorkItem(t *testing.T) {
	times := phases.New(3)

	times.RecordOrAddThreadWorkItem(phases.RemoveSelfForwardsInChunks, 0, 1, phases.RemoveSelfForwardChunksNum)
	times.RecordOrAddThreadWorkItem(phases.RemoveSelfForwardsInChunks, 0, 1, phases.RemoveSelfForwardChunksNum)
	times.RecordOrAddThreadWorkItem(phases.RemoveSelfForwardsInChunks, 2, 1, phases.RemoveSelfForwardChunksNum)
	times.RecordOrAddThreadWorkItem(phases.RemoveSelfForwardsInChunks, 1, 640, phases.RemoveSelfForwardObjectsBytes)

	require.Equal(t, uint64(2), times.ThreadWorkItem(phases.RemoveSelfForwardsInChunks, 0, phases.RemoveSelfForwardChunksNum))
	require.Equal(t, uint64(0), times.ThreadWorkItem(phases.RemoveSelfForwardsInChunks, 1, phases.RemoveSelfForwardChunksNum))
	require.Equal(t, uint64(3), times.SumThreadWorkItems(phases.RemoveSelfForwardsInChunks, phases.RemoveSelfForwardChunksNum))
	require.Equal(t, uint64(640), times.SumThreadWorkItems(phases.RemoveSelfForwardsInChunks, phases.RemoveSelfForwardObjectsBytes))
	require.Equal(t, uint64(0), times.SumThreadWorkItems(phases.RemoveSelfForwardsInChunks, phases.RemoveSelfForwardEmptyChunksNum))

	times.Reset()
	require.Equal(t, uint64(0), times.SumThreadWorkItems(phases.RemoveSelfForwardsInChunks, phases.RemoveSelfForwardChunksNum))
}

func TestPhaseTimesOutOfRange(t *testing.T) {
	times := phases.New(2)

	require.Panics(t, func() {
		times.RecordOrAddTimeSecs(phases.RemoveSelfForwardsInChunks, 2, 1)
	})
	require.Panics(t, func() {
		times.RecordOrAddThreadWorkItem(phases.RemoveSelfForwardsInChunks, 5, 1, phases.RemoveSelfForwardObjectsNum)
	})
	require.Panics(t, func() {
		times.RecordOrAddThreadWorkItem(phases.RemoveSelfForwardsInChunks, 0, 1, phases.WorkItem(100))
	})
	require.Panics(t, func() {
		times.RecordOrAddTimeSecs(phases.ParPhase(100), 0, 1)
	})
}

func TestPhaseNames(t *testing.T) {
	require.Equal(t, "RemoveSelfForwardsInChunks", phases.RemoveSelfForwardsInChunks.String())
	require.Equal(t, "RemoveSelfForwardEmptyChunksNum", phases.RemoveSelfForwardEmptyChunksNum.String())
	require.Equal(t, "RemoveSelfForwardObjectsBytes", phases.RemoveSelfForwardObjectsBytes.String())
}

func TestPrintJson(t *testing.T) {
	times := phases.New(4)
	times.RecordOrAddTimeSecs(phases.RemoveSelfForwardsInChunks, 1, 0.5)
	times.RecordOrAddThreadWorkItem(phases.RemoveSelfForwardsInChunks, 1, 7, phases.RemoveSelfForwardObjectsNum)
	times.RecordOrAddThreadWorkItem(phases.RemoveSelfForwardsInChunks, 3, 2, phases.RemoveSelfForwardObjectsNum)

	times.LogSummary(slog.Default())

	writer := jwriter.NewWriter()
	times.PrintJson(&writer)
	require.NoError(t, writer.Error())

	var output map[string]struct {
		Workers map[string]map[string]float64
	}
	require.NoError(t, json.Unmarshal(writer.Bytes(), &output))

	phase, ok := output["RemoveSelfForwardsInChunks"]
	require.True(t, ok)

	// Only workers that recorded a time are listed
	require.Len(t, phase.Workers, 1)
	require.Equal(t, 0.5, phase.Workers["1"]["TimeSecs"])
	require.Equal(t, float64(7), phase.Workers["1"]["RemoveSelfForwardObjectsNum"])
	require.Equal(t, float64(0), phase.Workers["1"]["RemoveSelfForwardChunksNum"])
}
