package heap

import (
	"github.com/pkg/errors"
	"github.com/vkngwrapper/gcheap/memutils"
)

// CardWords is the number of heap words covered by a single block-offset table entry
const CardWords = 64

// blockOffsetTable maps every card in a region to the start of the block covering the
// card's first word. Each entry holds the distance in words from the card's first word back
// to that block start. Entries for cards at or above the region's top are stale.
type blockOffsetTable struct {
	bottom  Addr
	entries []uint32
}

func newBlockOffsetTable(bottom Addr, regionWords uint) blockOffsetTable {
	return blockOffsetTable{
		bottom:  bottom,
		entries: make([]uint32, regionWords/CardWords),
	}
}

func (t *blockOffsetTable) cardStart(card uint) Addr {
	return t.bottom + Addr(card*CardWords)
}

// cardsStartingIn returns the range of cards [first, last] whose first word lies in [start, end).
// first > last when no card starts in the range.
func (t *blockOffsetTable) cardsStartingIn(start, end Addr) (first, last uint) {
	first = memutils.AlignUp(uint(start-t.bottom), CardWords) / CardWords
	last = memutils.AlignDown(uint(end-t.bottom)-1, CardWords) / CardWords
	return first, last
}

func (t *blockOffsetTable) updateForBlock(start, end Addr) {
	first, last := t.cardsStartingIn(start, end)
	for card := first; card <= last; card++ {
		t.entries[card] = uint32(t.cardStart(card) - start)
	}
}

// blockStartHint returns a block start at or below addr from which a forward walk reaches
// the block containing addr
func (t *blockOffsetTable) blockStartHint(addr Addr) Addr {
	card := uint(addr-t.bottom) / CardWords
	return t.cardStart(card) - Addr(t.entries[card])
}

func (t *blockOffsetTable) verifyBlock(start, end Addr) error {
	first, last := t.cardsStartingIn(start, end)
	for card := first; card <= last; card++ {
		blockStart := t.cardStart(card) - Addr(t.entries[card])
		if blockStart != start {
			return errors.Errorf("block offset entry for card at %d points to %d, but the block covering it starts at %d", t.cardStart(card), blockStart, start)
		}
	}

	return nil
}
