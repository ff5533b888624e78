package memutils_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gcheap/memutils"
)

func TestCheckPow2(t *testing.T) {
	require.NoError(t, memutils.CheckPow2(1, "one"))
	require.NoError(t, memutils.CheckPow2(uint(4096), "grain"))
	require.ErrorIs(t, memutils.CheckPow2(48, "forty-eight"), memutils.PowerOfTwoError)
	require.ErrorIs(t, memutils.CheckPow2(0, "zero"), memutils.PowerOfTwoError)
}

func TestCheckDivisible(t *testing.T) {
	require.NoError(t, memutils.CheckDivisible(uint(4096), uint(8), "grain"))
	require.ErrorIs(t, memutils.CheckDivisible(uint(4096), uint(3), "grain"), memutils.DivisibilityError)
	require.ErrorIs(t, memutils.CheckDivisible(uint(4096), uint(0), "grain"), memutils.DivisibilityError)
}

func TestLog2AndAlignment(t *testing.T) {
	require.Equal(t, 0, memutils.Log2(1))
	require.Equal(t, 15, memutils.Log2(32768))
	require.Equal(t, 15, memutils.Log2(40000))

	require.Equal(t, uint(16), memutils.AlignUp(10, 8))
	require.Equal(t, uint(16), memutils.AlignUp(16, 8))
	require.Equal(t, uint(8), memutils.AlignDown(10, 8))
}

func TestZapWords(t *testing.T) {
	words := make([]uint64, 4)
	require.False(t, memutils.IsZapped(words))

	memutils.ZapWords(words)
	require.True(t, memutils.IsZapped(words))

	words[2] = 0
	require.False(t, memutils.IsZapped(words))
	require.True(t, memutils.IsZapped(words[:0]))
}

func TestDetailedStatistics(t *testing.T) {
	var stats memutils.DetailedStatistics
	stats.Clear()

	stats.RegionCount++
	stats.RegionBytes += 4096
	stats.AddObject(80)
	stats.AddObject(16)
	stats.AddDeadRange(4000)

	var other memutils.DetailedStatistics
	other.Clear()
	other.RegionCount++
	other.RegionBytes += 4096
	other.AddDeadRange(8)

	stats.AddDetailedStatistics(&other)

	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			RegionCount: 2,
			ObjectCount: 2,
			RegionBytes: 8192,
			ObjectBytes: 96,
		},
		DeadRangeCount:   2,
		DeadRangeBytes:   4008,
		ObjectSizeMin:    16,
		ObjectSizeMax:    80,
		DeadRangeSizeMin: 8,
		DeadRangeSizeMax: 4000,
	}, stats)
}
