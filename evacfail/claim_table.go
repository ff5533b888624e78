package evacfail

import "github.com/vkngwrapper/gcheap/memutils"

// ChunkClaimTable hands out each chunk of the failed regions to exactly one worker. A claimed
// chunk stays claimed until the table is resized for the next collection.
type ChunkClaimTable struct {
	bits memutils.AtomicBitSet
}

// Resize discards all claims and sizes the table for numChunks chunks
func (t *ChunkClaimTable) Resize(numChunks uint) {
	t.bits.Resize(numChunks)
}

func (t *ChunkClaimTable) Size() uint { return t.bits.Size() }

// Claim returns true if the caller now owns chunkIdx, and false if another caller claimed it first
func (t *ChunkClaimTable) Claim(chunkIdx uint) bool {
	return t.bits.ParSetBit(chunkIdx)
}

func (t *ChunkClaimTable) IsClaimed(chunkIdx uint) bool {
	return t.bits.At(chunkIdx)
}

// ClaimedCount returns the number of chunks claimed so far
func (t *ChunkClaimTable) ClaimedCount() uint {
	return t.bits.Count()
}
