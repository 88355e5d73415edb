// Package heap provides a general-purpose heap over a single fixed-size arena. It is the allocation
// context that clients use in place of the Go heap when their memory budget must be fixed up front.
package heap

import (
	"context"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/fixedmem/internal/utils"
	"github.com/vkngwrapper/fixedmem/memutils"
	"github.com/vkngwrapper/fixedmem/memutils/bestfit"
	"golang.org/x/exp/slog"
)

// Heap owns an arena and the best-fit allocator that manages it. A Heap is not safe for concurrent use
// unless it was created with CreateSynchronized.
type Heap struct {
	mutex     *utils.OptionalRWMutex
	logger    *slog.Logger
	flags     CreateFlags
	words     []uint64
	allocator *bestfit.Allocator
	destroyed bool
}

// Alloc returns a Ptr to at least bytes uninitialized bytes, or bestfit.Nil if the heap cannot serve
// the request
func (h *Heap) Alloc(bytes int) bestfit.Ptr {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.allocator.Alloc(bytes)
}

// Calloc returns a Ptr to num*bytes zeroed bytes, or bestfit.Nil if the heap cannot serve the request
func (h *Heap) Calloc(num int, bytes int) bestfit.Ptr {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.allocator.Calloc(num, bytes)
}

// Realloc resizes the allocation at ptr, moving it if necessary. See bestfit.Allocator.Realloc.
func (h *Heap) Realloc(ptr bestfit.Ptr, bytes int) bestfit.Ptr {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return h.allocator.Realloc(ptr, bytes)
}

// Free releases the allocation at ptr. Freeing bestfit.Nil is a no-op.
func (h *Heap) Free(ptr bestfit.Ptr) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.allocator.Free(ptr)
}

// Bytes returns the payload of the allocation at ptr. The slice aliases the arena and is only valid
// until ptr is freed or reallocated.
func (h *Heap) Bytes(ptr bestfit.Ptr) []byte {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.allocator.Bytes(ptr)
}

// ArenaBytes returns the size of the arena
func (h *Heap) ArenaBytes() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.allocator.TotalBytes()
}

// UsedAllocBytes returns the bytes of all live allocations, headers included
func (h *Heap) UsedAllocBytes() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.allocator.UsedBytes()
}

// AvailableAllocBytes returns the bytes that can still be allocated, headers included. Fragmentation may
// prevent a single allocation of this size from succeeding.
func (h *Heap) AvailableAllocBytes() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.allocator.AvailableBytes()
}

// UsedItems returns the number of live allocations
func (h *Heap) UsedItems() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return h.allocator.AllocationCount()
}

func (h *Heap) Flags() CreateFlags {
	return h.flags
}

// CalculateStatistics overwrites stats with the current state of the heap
func (h *Heap) CalculateStatistics(stats *memutils.DetailedStatistics) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	stats.Clear()
	h.allocator.AddDetailedStatistics(stats)
}

// CheckCorruption validates the heap's block structure, returning an error describing the first
// inconsistency found
func (h *Heap) CheckCorruption() error {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	err := h.allocator.Validate()
	if err != nil {
		return errors.Wrap(err, "heap is corrupted")
	}

	return nil
}

// PrintDetailedMap writes a json object describing the arena and every block in it
func (h *Heap) PrintDetailedMap(writer *jwriter.Writer) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	obj := writer.Object()
	defer obj.End()

	var stats memutils.DetailedStatistics
	stats.Clear()
	h.allocator.AddDetailedStatistics(&stats)

	totalObj := obj.Name("Total").Object()
	printStatistics(&totalObj, &stats)
	totalObj.End()

	arenaObj := obj.Name("Arena").Object()
	h.allocator.BlockJsonData(&arenaObj)
	regions := arenaObj.Name("Regions").Array()
	h.allocator.RegionsJsonData(&regions)
	regions.End()
	arenaObj.End()
}

// BuildStatsString returns the heap statistics as a json string. When detailed is true, the string
// includes the full map of the arena.
func (h *Heap) BuildStatsString(detailed bool) string {
	writer := jwriter.NewWriter()

	if detailed {
		h.PrintDetailedMap(&writer)
	} else {
		var stats memutils.DetailedStatistics
		h.CalculateStatistics(&stats)

		obj := writer.Object()
		totalObj := obj.Name("Total").Object()
		printStatistics(&totalObj, &stats)
		totalObj.End()
		obj.End()
	}

	return string(writer.Bytes())
}

func printStatistics(json *jwriter.ObjectState, stats *memutils.DetailedStatistics) {
	json.Name("ArenaCount").Int(stats.ArenaCount)
	json.Name("ArenaBytes").Int(stats.ArenaBytes)
	json.Name("AllocationCount").Int(stats.AllocationCount)
	json.Name("AllocationBytes").Int(stats.AllocationBytes)
	json.Name("UnusedRangeCount").Int(stats.FreeRangeCount)

	if stats.AllocationCount > 0 {
		json.Name("AllocationSizeMin").Int(stats.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(stats.AllocationSizeMax)
	}
	if stats.FreeRangeCount > 0 {
		json.Name("UnusedRangeSizeMin").Int(stats.FreeRangeSizeMin)
		json.Name("UnusedRangeSizeMax").Int(stats.FreeRangeSizeMax)
	}
}

// LogStatus logs the state of every block in the arena followed by the heap totals
func (h *Heap) LogStatus() {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	h.allocator.LogStatus()
}

// Destroy releases the arena. Allocations still live at this point are logged and reported through the
// returned error; the arena is released regardless. Using the heap after Destroy panics.
func (h *Heap) Destroy() error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	memutils.Assert(!h.destroyed, "heap was already destroyed")

	err := h.allocator.Close()
	h.logger.LogAttrs(context.Background(), slog.LevelDebug, "heap destroyed",
		slog.Int("arenaBytes", h.allocator.TotalBytes()),
		slog.Bool("clean", err == nil),
	)

	h.destroyed = true
	h.words = nil
	h.allocator = nil

	return err
}
