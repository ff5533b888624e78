package memutils

import (
	"fmt"
	"math/bits"
	"sync/atomic"
)

const bitsPerWord = 64

// AtomicBitSet is a fixed-size set of bits that may be set and queried from many goroutines
// at once. Bits can only be cleared with Resize or ClearRange, neither of which may run
// concurrently with any other method.
type AtomicBitSet struct {
	words []atomic.Uint64
	size  uint
}

// NewAtomicBitSet creates a bit set holding size bits, all of them clear
func NewAtomicBitSet(size uint) *AtomicBitSet {
	b := &AtomicBitSet{}
	b.Resize(size)
	return b
}

// Resize discards the contents of the bit set and sizes it to hold size clear bits
func (b *AtomicBitSet) Resize(size uint) {
	b.words = make([]atomic.Uint64, (size+bitsPerWord-1)/bitsPerWord)
	b.size = size
}

// Size returns the number of bits in the set
func (b *AtomicBitSet) Size() uint { return b.size }

func (b *AtomicBitSet) checkIndex(index uint) {
	if index >= b.size {
		panic(fmt.Sprintf("bit index %d out of range for bit set of size %d", index, b.size))
	}
}

// ParSetBit atomically sets the bit at index. It returns true if this call changed the bit
// from clear to set, and false if the bit was already set.
func (b *AtomicBitSet) ParSetBit(index uint) bool {
	b.checkIndex(index)

	word := &b.words[index/bitsPerWord]
	mask := uint64(1) << (index % bitsPerWord)

	for {
		old := word.Load()
		if old&mask != 0 {
			return false
		}

		if word.CompareAndSwap(old, old|mask) {
			return true
		}
	}
}

// At returns true if the bit at index is set
func (b *AtomicBitSet) At(index uint) bool {
	b.checkIndex(index)

	return b.words[index/bitsPerWord].Load()&(uint64(1)<<(index%bitsPerWord)) != 0
}

// NextSetBit returns the index of the first set bit in [from, limit), or limit if
// there is no such bit
func (b *AtomicBitSet) NextSetBit(from, limit uint) uint {
	if limit > b.size {
		panic(fmt.Sprintf("search limit %d out of range for bit set of size %d", limit, b.size))
	}

	if from >= limit {
		return limit
	}

	wordIndex := from / bitsPerWord
	word := b.words[wordIndex].Load() >> (from % bitsPerWord)
	if word != 0 {
		return min(from+uint(bits.TrailingZeros64(word)), limit)
	}

	lastWordIndex := (limit - 1) / bitsPerWord
	for wordIndex++; wordIndex <= lastWordIndex; wordIndex++ {
		word = b.words[wordIndex].Load()
		if word != 0 {
			return min(wordIndex*bitsPerWord+uint(bits.TrailingZeros64(word)), limit)
		}
	}

	return limit
}

// ClearRange clears every bit in [from, to)
func (b *AtomicBitSet) ClearRange(from, to uint) {
	if to > b.size || from > to {
		panic(fmt.Sprintf("invalid clear range [%d, %d) for bit set of size %d", from, to, b.size))
	}

	for from < to {
		wordIndex := from / bitsPerWord
		startBit := from % bitsPerWord
		endBit := uint(bitsPerWord)
		if to-wordIndex*bitsPerWord < bitsPerWord {
			endBit = to - wordIndex*bitsPerWord
		}

		mask := (^uint64(0) >> (bitsPerWord - (endBit - startBit))) << startBit
		word := &b.words[wordIndex]
		word.Store(word.Load() &^ mask)

		from = (wordIndex + 1) * bitsPerWord
	}
}

// Count returns the number of set bits
func (b *AtomicBitSet) Count() uint {
	var count uint
	for i := range b.words {
		count += uint(bits.OnesCount64(b.words[i].Load()))
	}
	return count
}
