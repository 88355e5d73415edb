// Package bestfit implements a best-fit allocator over a caller-owned byte arena. Block headers are
// stored in the arena itself, free blocks are threaded into a doubly-linked free list, and released
// blocks are coalesced with both physical neighbours.
//
// The allocator is not safe for concurrent use. Callers sharing an allocator between goroutines must
// serialize access themselves.
package bestfit

import (
	"unsafe"

	"github.com/vkngwrapper/fixedmem/memutils"
	"golang.org/x/exp/slog"
)

// Ptr is the offset of an allocation's payload within the arena
type Ptr int

// Nil is the null Ptr. No payload can start at offset 0, since every block begins with a header.
const Nil Ptr = 0

// Allocator hands out variable-sized regions of a single arena, choosing the smallest free block that
// can serve each request. Exhausting the arena is not an error: Alloc, Calloc and Realloc return Nil.
// Passing a negative size is a precondition violation and panics. Releasing a Ptr this allocator did
// not hand out is undefined unless built with the debug_mem_utils tag, which checks ownership on every
// Free and Realloc.
type Allocator struct {
	arena []byte
	// freeHead is the offset of the first free block plus one, so that the zero value has an empty free list
	freeHead  int
	freeBytes int
	logger    *slog.Logger
}

// New creates an allocator managing arena. The allocator does not own arena: the caller must keep it
// alive and must not touch it except through pointers the allocator has handed out.
func New(arena []byte, options ...Option) *Allocator {
	a := &Allocator{}
	for _, option := range options {
		option(a)
	}

	a.Reset(arena)
	return a
}

// Reset begins managing a new arena. All pointers handed out from the previous arena are invalidated.
// Reset panics if arena is too short to hold a single free block, if its length or base address is not
// a multiple of Alignment, or if it is longer than MaxArenaBytes.
func (a *Allocator) Reset(arena []byte) {
	memutils.Assert(len(arena) >= minBlockSize, "arena of %d bytes cannot hold a free block", len(arena))
	memutils.Assert(len(arena)%Alignment == 0, "arena length %d is not a multiple of %d", len(arena), Alignment)
	memutils.Assert(len(arena) <= MaxArenaBytes, "arena length %d is larger than %d", len(arena), MaxArenaBytes)
	memutils.Assert(uintptr(unsafe.Pointer(&arena[0]))%Alignment == 0, "arena start is not aligned to %d", Alignment)

	a.arena = arena
	a.freeBytes = len(arena)
	a.setFirstFree(noBlock)

	a.writeHeader(0, noBlock, len(arena), false)
	a.pushFree(0)
	a.poison(0)

	memutils.DebugValidate(a)
}

// Alloc returns a Ptr to a region of at least bytes uninitialized bytes, or Nil if no free block is large
// enough. Zero-byte requests succeed with a non-Nil Ptr.
func (a *Allocator) Alloc(bytes int) Ptr {
	if bytes < 0 {
		memutils.Failf("invalid bytes: %d", bytes)
	}

	if bytes > MaxArenaBytes {
		return Nil
	}

	needed := blockSizeFor(bytes)
	if needed > a.freeBytes {
		return Nil
	}

	best := noBlock
	bestSize := 0
	for block := a.firstFree(); block != noBlock; block = a.nextFree(block) {
		size := a.blockSize(block)
		if size < needed {
			continue
		}

		if best == noBlock || size < bestSize || (size == bestSize && block < best) {
			best = block
			bestSize = size
		}
	}

	if best == noBlock {
		return Nil
	}

	if !memutils.ValidateMagicValue(a.arena[best+freeHeaderSize : best+bestSize]) {
		memutils.Failf("free block at offset %d was written to after it was released", best)
	}

	a.takeFreeBlock(best, needed)
	memutils.DebugValidate(a)

	return Ptr(best + usedHeaderSize)
}

// takeFreeBlock marks the free block as used, splitting the unneeded remainder off into a new free block
// when it is large enough to hold one
func (a *Allocator) takeFreeBlock(block int, needed int) {
	size := a.blockSize(block)

	if size-needed >= minBlockSize {
		remainder := block + needed
		a.writeHeader(remainder, block, size-needed, false)
		a.replaceFree(block, remainder)
		a.relinkNext(remainder)
		size = needed
	} else {
		a.unlinkFree(block)
	}

	a.setSize(block, size, true)
	a.freeBytes -= size
}

// Calloc allocates space for num elements of the given size and zeroes it. It returns Nil without side
// effects if the allocation fails.
func (a *Allocator) Calloc(num int, bytes int) Ptr {
	if num < 0 || bytes < 0 {
		memutils.Failf("invalid num or bytes: %d, %d", num, bytes)
	}

	if num != 0 && bytes > MaxArenaBytes/num {
		return Nil
	}

	ptr := a.Alloc(num * bytes)
	if ptr != Nil {
		clear(a.Bytes(ptr))
	}

	return ptr
}

// Realloc resizes the allocation at ptr. A Nil ptr behaves as Alloc, and a zero size frees ptr and returns
// Nil. Shrinking and growing into a free physical successor happen in place; otherwise the payload is
// copied into a new allocation and ptr is freed. If no block can serve the request, Nil is returned and
// ptr remains valid. On success ptr must be considered invalid, even if the returned Ptr is equal to it.
func (a *Allocator) Realloc(ptr Ptr, bytes int) Ptr {
	if ptr == Nil {
		return a.Alloc(bytes)
	}

	if bytes < 0 {
		memutils.Failf("invalid bytes: %d", bytes)
	}
	a.debugCheckOwned(ptr)

	if bytes == 0 {
		a.Free(ptr)
		return Nil
	}

	if bytes > MaxArenaBytes {
		return Nil
	}

	block := int(ptr) - usedHeaderSize
	size := a.blockSize(block)
	needed := blockSizeFor(bytes)

	if needed <= size {
		a.shrink(block, needed)
		memutils.DebugValidate(a)
		return ptr
	}

	next := a.nextPhysical(block)
	if next != noBlock && !a.isUsed(next) && size+a.blockSize(next) >= needed {
		nextSize := a.blockSize(next)
		a.unlinkFree(next)
		a.freeBytes -= nextSize
		a.setSize(block, size+nextSize, true)
		a.relinkNext(block)

		a.shrink(block, needed)
		memutils.DebugValidate(a)
		return ptr
	}

	newPtr := a.Alloc(bytes)
	if newPtr == Nil {
		return Nil
	}

	copy(a.Bytes(newPtr), a.Bytes(ptr))
	a.Free(ptr)

	return newPtr
}

// shrink cuts a used block down to needed bytes, releasing the tail when it is large enough to form a
// free block of its own
func (a *Allocator) shrink(block int, needed int) {
	size := a.blockSize(block)
	if size-needed < minBlockSize {
		return
	}

	tail := block + needed
	tailSize := size - needed
	a.setSize(block, needed, true)
	a.freeBytes += tailSize

	next := block + size
	if next < len(a.arena) && !a.isUsed(next) {
		a.unlinkFree(next)
		tailSize += a.blockSize(next)
	}

	a.writeHeader(tail, block, tailSize, false)
	a.relinkNext(tail)
	a.pushFree(tail)
	a.poison(tail)
}

// Free releases the allocation at ptr, merging it with any free physical neighbours. Freeing Nil is a no-op.
func (a *Allocator) Free(ptr Ptr) {
	if ptr == Nil {
		return
	}

	a.debugCheckOwned(ptr)

	block := int(ptr) - usedHeaderSize
	size := a.blockSize(block)
	a.freeBytes += size

	next := a.nextPhysical(block)
	if next != noBlock && !a.isUsed(next) {
		a.unlinkFree(next)
		size += a.blockSize(next)
	}

	prev := a.prevPhysical(block)
	if prev != noBlock && !a.isUsed(prev) {
		a.unlinkFree(prev)
		size += a.blockSize(prev)
		block = prev
	}

	a.setSize(block, size, false)
	a.relinkNext(block)
	a.pushFree(block)
	a.poison(block)

	memutils.DebugValidate(a)
}

// Bytes returns the payload of the allocation at ptr. The slice is capped at the allocation's capacity,
// which may be larger than the size that was requested.
func (a *Allocator) Bytes(ptr Ptr) []byte {
	memutils.Assert(ptr != Nil, "cannot access the payload of a nil pointer")

	end := int(ptr) + a.Capacity(ptr)
	return a.arena[ptr:end:end]
}

// Capacity returns the number of payload bytes available at ptr
func (a *Allocator) Capacity(ptr Ptr) int {
	return a.blockSize(int(ptr)-usedHeaderSize) - usedHeaderSize
}

// TotalBytes returns the size of the arena
func (a *Allocator) TotalBytes() int {
	return len(a.arena)
}

// UsedBytes returns the number of arena bytes held by used blocks, headers included
func (a *Allocator) UsedBytes() int {
	return len(a.arena) - a.freeBytes
}

// AvailableBytes returns the number of arena bytes held by free blocks, headers included
func (a *Allocator) AvailableBytes() int {
	return a.freeBytes
}

func (a *Allocator) Empty() bool {
	return a.freeBytes == len(a.arena)
}

func (a *Allocator) Full() bool {
	return a.freeBytes == 0
}

// poison marks the contents of a free block so that writes through stale pointers can be caught in debug builds
func (a *Allocator) poison(block int) {
	memutils.WriteMagicValue(a.arena[block+freeHeaderSize : block+a.blockSize(block)])
}
