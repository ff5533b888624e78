package heap

import (
	"github.com/vkngwrapper/gcheap/memutils"
)

// MarkBitmap holds one bit per heap word. During evacuation, the bit of every object that
// failed evacuation is set; the self-forward removal pass walks the bits to find the objects
// it must restore.
type MarkBitmap struct {
	bits *memutils.AtomicBitSet
}

func newMarkBitmap(heapWords uint) *MarkBitmap {
	return &MarkBitmap{
		bits: memutils.NewAtomicBitSet(heapWords),
	}
}

// Mark atomically marks addr. It returns true if this call changed the bit.
func (b *MarkBitmap) Mark(addr Addr) bool {
	return b.bits.ParSetBit(uint(addr))
}

func (b *MarkBitmap) IsMarked(addr Addr) bool {
	return b.bits.At(uint(addr))
}

// NextMarkedAddr returns the first marked address in [from, limit), or limit if there is none
func (b *MarkBitmap) NextMarkedAddr(from, limit Addr) Addr {
	return Addr(b.bits.NextSetBit(uint(from), uint(limit)))
}

// ClearRange unmarks every address in [start, end). It must not run concurrently with Mark.
func (b *MarkBitmap) ClearRange(start, end Addr) {
	b.bits.ClearRange(uint(start), uint(end))
}

// CountMarked returns the number of marked addresses in [start, end)
func (b *MarkBitmap) CountMarked(start, end Addr) uint {
	var count uint
	for addr := b.NextMarkedAddr(start, end); addr < end; addr = b.NextMarkedAddr(addr+1, end) {
		count++
	}
	return count
}
