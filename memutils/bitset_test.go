package memutils_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/gcheap/memutils"
)

func TestAtomicBitSetParSetBit(t *testing.T) {
	bits := memutils.NewAtomicBitSet(100)
	require.Equal(t, uint(100), bits.Size())
	require.Equal(t, uint(0), bits.Count())

	require.True(t, bits.ParSetBit(5))
	require.False(t, bits.ParSetBit(5))
	require.True(t, bits.At(5))
	require.False(t, bits.At(4))
	require.False(t, bits.At(6))
	require.Equal(t, uint(1), bits.Count())

	require.Panics(t, func() {
		bits.ParSetBit(100)
	})
}

func TestAtomicBitSetNextSetBit(t *testing.T) {
	bits := memutils.NewAtomicBitSet(200)
	bits.ParSetBit(3)
	bits.ParSetBit(64)
	bits.ParSetBit(130)

	require.Equal(t, uint(3), bits.NextSetBit(0, 200))
	require.Equal(t, uint(3), bits.NextSetBit(3, 200))
	require.Equal(t, uint(64), bits.NextSetBit(4, 200))
	require.Equal(t, uint(130), bits.NextSetBit(65, 200))
	require.Equal(t, uint(200), bits.NextSetBit(131, 200))

	// The limit is returned when the next set bit is at or beyond it
	require.Equal(t, uint(3), bits.NextSetBit(0, 3))
	require.Equal(t, uint(64), bits.NextSetBit(4, 64))
	require.Equal(t, uint(100), bits.NextSetBit(65, 100))
	require.Equal(t, uint(64), bits.NextSetBit(64, 65))
	require.Equal(t, uint(130), bits.NextSetBit(130, 130))
}

func TestAtomicBitSetClearRange(t *testing.T) {
	bits := memutils.NewAtomicBitSet(200)
	for i := uint(0); i < 200; i++ {
		bits.ParSetBit(i)
	}

	bits.ClearRange(10, 150)
	require.Equal(t, uint(60), bits.Count())
	require.True(t, bits.At(9))
	require.False(t, bits.At(10))
	require.False(t, bits.At(64))
	require.False(t, bits.At(149))
	require.True(t, bits.At(150))

	bits.ClearRange(0, 200)
	require.Equal(t, uint(0), bits.Count())
}

func TestAtomicBitSetResize(t *testing.T) {
	bits := memutils.NewAtomicBitSet(10)
	bits.ParSetBit(7)

	bits.Resize(1000)
	require.Equal(t, uint(1000), bits.Size())
	require.False(t, bits.At(7))
	require.True(t, bits.ParSetBit(999))
}

func TestAtomicBitSetConcurrentSetsSucceedOnce(t *testing.T) {
	const size = 1000
	const goroutines = 8

	bits := memutils.NewAtomicBitSet(size)
	var wins [size]atomic.Int32

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(start uint) {
			defer wg.Done()
			for i := uint(0); i < size; i++ {
				index := (start + i) % size
				if bits.ParSetBit(index) {
					wins[index].Add(1)
				}
			}
		}(uint(g * size / goroutines))
	}
	wg.Wait()

	for i := range wins {
		require.Equal(t, int32(1), wins[i].Load(), "bit %d", i)
	}
	require.Equal(t, uint(size), bits.Count())
}
