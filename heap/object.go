package heap

import (
	"fmt"
	"sync/atomic"
)

// Addr is the address of a single word of heap memory. Address 0 is the first word of
// region 0.
type Addr uint

// WordSize is the size in bytes of a single heap word
const WordSize = 8

// MinObjectWords is the size of the smallest object that can be allocated: a mark word
// and a size word. Fillers are exempt, since a filler is described entirely by its mark word.
const MinObjectWords = 2

// The low two bits of every mark word identify what the block starting at that word is
const (
	markTagMask      uint64 = 0b11
	markTagUnlocked  uint64 = 0b01
	markTagFiller    uint64 = 0b10
	markTagForwarded uint64 = 0b11
	markTagShift            = 2

	// prototypeMark is the mark word installed in every object that is not forwarded
	prototypeMark uint64 = markTagUnlocked
)

func fillerMark(words uint) uint64 {
	return uint64(words)<<markTagShift | markTagFiller
}

func forwardedMark(dest Addr) uint64 {
	return uint64(dest)<<markTagShift | markTagForwarded
}

func (r *Region) checkAddr(addr Addr) {
	if addr < r.bottom || addr >= r.end {
		panic(fmt.Sprintf("address %d is outside region %d [%d, %d)", addr, r.index, r.bottom, r.end))
	}
}

func (r *Region) markWord(addr Addr) *uint64 {
	r.checkAddr(addr)
	return &r.words[addr-r.bottom]
}

func (r *Region) loadMark(addr Addr) uint64 {
	return atomic.LoadUint64(r.markWord(addr))
}

// ObjectSize returns the size in words of the object or filler starting at addr
func (r *Region) ObjectSize(addr Addr) uint {
	mark := r.loadMark(addr)
	if mark&markTagMask == markTagFiller {
		return uint(mark >> markTagShift)
	}

	return uint(r.words[addr-r.bottom+1])
}

// IsFiller returns true if the block starting at addr is a filler covering a dead range
func (r *Region) IsFiller(addr Addr) bool {
	return r.loadMark(addr)&markTagMask == markTagFiller
}

// IsForwarded returns true if the object starting at addr has had a forwarding address installed
func (r *Region) IsForwarded(addr Addr) bool {
	return r.loadMark(addr)&markTagMask == markTagForwarded
}

// Forwardee returns the forwarding address of the object at addr. The object must be forwarded.
func (r *Region) Forwardee(addr Addr) Addr {
	mark := r.loadMark(addr)
	if mark&markTagMask != markTagForwarded {
		panic(fmt.Sprintf("object at %d is not forwarded", addr))
	}

	return Addr(mark >> markTagShift)
}

// IsSelfForwarded returns true if the object at addr is forwarded to itself, which is how an
// abandoned evacuation is recorded
func (r *Region) IsSelfForwarded(addr Addr) bool {
	mark := r.loadMark(addr)
	return mark&markTagMask == markTagForwarded && Addr(mark>>markTagShift) == addr
}

// ForwardTo atomically installs dest as the forwarding address of the object at addr. It
// returns false if the object had already been forwarded by someone else.
func (r *Region) ForwardTo(addr Addr, dest Addr) bool {
	word := r.markWord(addr)
	for {
		old := atomic.LoadUint64(word)
		switch old & markTagMask {
		case markTagForwarded:
			return false
		case markTagFiller:
			panic(fmt.Sprintf("attempted to forward the filler at %d", addr))
		}

		if atomic.CompareAndSwapUint64(word, old, forwardedMark(dest)) {
			return true
		}
	}
}

// InitMark resets the mark word of the object at addr to the prototype mark, removing any
// forwarding address
func (r *Region) InitMark(addr Addr) {
	atomic.StoreUint64(r.markWord(addr), prototypeMark)
}

func (r *Region) writeObjectHeader(addr Addr, words uint) {
	atomic.StoreUint64(r.markWord(addr), prototypeMark)
	r.words[addr-r.bottom+1] = uint64(words)
}

func (r *Region) writeFiller(addr Addr, words uint) {
	atomic.StoreUint64(r.markWord(addr), fillerMark(words))
}
