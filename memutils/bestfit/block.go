package bestfit

import (
	"encoding/binary"

	"github.com/vkngwrapper/fixedmem/memutils"
)

// Block headers live inside the arena, little-endian:
//
//	+0  int32  offset of the physically previous block, noBlock for the first block
//	+4  uint32 block size including the header (low 30 bits), used flag (top bit)
//	+8  int32  previous free block (free blocks only)
//	+12 int32  next free block (free blocks only)
//
// Used blocks hand out everything after the first two words, so a used block's payload overlaps the
// free-list links it no longer needs.
const (
	// Alignment is the granularity of every block size and payload offset
	Alignment = 8

	usedHeaderSize = 8
	freeHeaderSize = 16
	minBlockSize   = freeHeaderSize

	sizeMask uint32 = 1<<30 - 1
	usedFlag uint32 = 1 << 31

	// MaxArenaBytes is the largest arena the 30-bit block size field can describe
	MaxArenaBytes = int(sizeMask) &^ (Alignment - 1)
	// MinArenaBytes is the smallest arena that can hold a single free block
	MinArenaBytes = minBlockSize

	noBlock = -1
)

func (a *Allocator) readInt(offset int) int {
	return int(int32(binary.LittleEndian.Uint32(a.arena[offset:])))
}

func (a *Allocator) writeInt(offset int, value int) {
	binary.LittleEndian.PutUint32(a.arena[offset:], uint32(int32(value)))
}

func (a *Allocator) prevPhysical(block int) int {
	return a.readInt(block)
}

func (a *Allocator) setPrevPhysical(block int, prev int) {
	a.writeInt(block, prev)
}

func (a *Allocator) blockSize(block int) int {
	return int(binary.LittleEndian.Uint32(a.arena[block+4:]) & sizeMask)
}

func (a *Allocator) isUsed(block int) bool {
	return binary.LittleEndian.Uint32(a.arena[block+4:])&usedFlag != 0
}

func (a *Allocator) setSize(block int, size int, used bool) {
	word := uint32(size) & sizeMask
	if used {
		word |= usedFlag
	}
	binary.LittleEndian.PutUint32(a.arena[block+4:], word)
}

func (a *Allocator) writeHeader(block int, prev int, size int, used bool) {
	a.setPrevPhysical(block, prev)
	a.setSize(block, size, used)
}

func (a *Allocator) prevFree(block int) int {
	return a.readInt(block + 8)
}

func (a *Allocator) nextFree(block int) int {
	return a.readInt(block + 12)
}

func (a *Allocator) setFreeLinks(block int, prev int, next int) {
	a.writeInt(block+8, prev)
	a.writeInt(block+12, next)
}

// nextPhysical returns the block that follows block in the arena, or noBlock if block is the last one
func (a *Allocator) nextPhysical(block int) int {
	next := block + a.blockSize(block)
	if next >= len(a.arena) {
		return noBlock
	}
	return next
}

// relinkNext points the block after block back at it
func (a *Allocator) relinkNext(block int) {
	next := a.nextPhysical(block)
	if next != noBlock {
		a.setPrevPhysical(next, block)
	}
}

func (a *Allocator) firstFree() int {
	return a.freeHead - 1
}

func (a *Allocator) setFirstFree(block int) {
	a.freeHead = block + 1
}

func (a *Allocator) pushFree(block int) {
	a.setFreeLinks(block, noBlock, a.firstFree())
	if a.firstFree() != noBlock {
		a.writeInt(a.firstFree()+8, block)
	}
	a.setFirstFree(block)
}

func (a *Allocator) unlinkFree(block int) {
	prev, next := a.prevFree(block), a.nextFree(block)
	if prev == noBlock {
		a.setFirstFree(next)
	} else {
		a.writeInt(prev+12, next)
	}

	if next != noBlock {
		a.writeInt(next+8, prev)
	}
}

// replaceFree puts replacement into block's position in the free list
func (a *Allocator) replaceFree(block int, replacement int) {
	prev, next := a.prevFree(block), a.nextFree(block)
	a.setFreeLinks(replacement, prev, next)

	if prev == noBlock {
		a.setFirstFree(replacement)
	} else {
		a.writeInt(prev+12, replacement)
	}

	if next != noBlock {
		a.writeInt(next+8, replacement)
	}
}

// blockSizeFor returns the size of the block needed to serve a request of the given number of bytes
func blockSizeFor(bytes int) int {
	size := memutils.AlignUp(bytes, Alignment) + usedHeaderSize
	if size < minBlockSize {
		return minBlockSize
	}
	return size
}
