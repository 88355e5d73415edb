package bestfit

import (
	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/fixedmem/memutils"
)

// Validate walks the block chain and the free list and reports the first inconsistency it finds. It is
// O(n) in the number of blocks and is run after every mutating call in debug_mem_utils builds.
func (a *Allocator) Validate() error {
	if len(a.arena) == 0 {
		return nil
	}

	freeBlocks := swiss.NewMap[int, int](8)
	calculatedFreeBytes := 0
	prev := noBlock
	prevIsFree := false

	block := 0
	for block < len(a.arena) {
		if a.prevPhysical(block) != prev {
			return errors.Errorf("block at offset %d links back to offset %d, but follows the block at offset %d",
				block, a.prevPhysical(block), prev)
		}

		size := a.blockSize(block)
		if size < minBlockSize || size%Alignment != 0 {
			return errors.Errorf("block at offset %d has invalid size %d", block, size)
		}

		if block+size > len(a.arena) {
			return errors.Errorf("block at offset %d with size %d runs past the end of the arena", block, size)
		}

		free := !a.isUsed(block)
		if free {
			if prevIsFree {
				return errors.Errorf("free blocks at offsets %d and %d were not merged", prev, block)
			}

			calculatedFreeBytes += size
			freeBlocks.Put(block, size)
		}

		prevIsFree = free
		prev = block
		block += size
	}

	if calculatedFreeBytes != a.freeBytes {
		return errors.Errorf("free blocks hold %d bytes, but the allocator tracks %d free bytes",
			calculatedFreeBytes, a.freeBytes)
	}

	prevFree := noBlock
	for block := a.firstFree(); block != noBlock; block = a.nextFree(block) {
		if !freeBlocks.Has(block) {
			return errors.Errorf("offset %d is in the free list more than once, or is not a free block", block)
		}

		if a.prevFree(block) != prevFree {
			return errors.Errorf("block at offset %d follows the block at offset %d in the free list, but the reverse reference is broken",
				block, prevFree)
		}

		freeBlocks.Delete(block)
		prevFree = block
	}

	if freeBlocks.Count() > 0 {
		return errors.Errorf("%d free blocks are missing from the free list", freeBlocks.Count())
	}

	return nil
}

// CheckOwned returns an error wrapping memutils.NotOwnedError if ptr is not the payload of a used block
// in this allocator's arena. It is O(n) in the number of blocks.
func (a *Allocator) CheckOwned(ptr Ptr) error {
	target := int(ptr) - usedHeaderSize

	for block := 0; block < len(a.arena) && block <= target; {
		if block == target {
			if !a.isUsed(block) {
				return errors.Wrapf(memutils.NotOwnedError, "pointer %d was already freed", ptr)
			}
			return nil
		}

		size := a.blockSize(block)
		if size == 0 {
			break
		}
		block += size
	}

	return errors.Wrapf(memutils.NotOwnedError, "pointer %d", ptr)
}

func (a *Allocator) debugCheckOwned(ptr Ptr) {
	if !memutils.DebugChecks {
		return
	}

	err := a.CheckOwned(ptr)
	if err != nil {
		panic(err)
	}
}
