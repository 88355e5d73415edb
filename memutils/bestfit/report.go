package bestfit

import (
	"context"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/pkg/errors"
	"github.com/vkngwrapper/fixedmem/memutils"
	"golang.org/x/exp/slog"
)

// VisitAllRegions calls visit once for every block in the arena, in address order. ptr is Nil for free
// blocks. Sizes include the block header. If visit returns an error, iteration stops and the error is returned.
func (a *Allocator) VisitAllRegions(visit func(ptr Ptr, offset int, size int, free bool) error) error {
	for block := 0; block < len(a.arena); block += a.blockSize(block) {
		ptr := Nil
		free := !a.isUsed(block)
		if !free {
			ptr = Ptr(block + usedHeaderSize)
		}

		err := visit(ptr, block, a.blockSize(block), free)
		if err != nil {
			return err
		}
	}

	return nil
}

// AllocationCount returns the number of live allocations. It walks the arena.
func (a *Allocator) AllocationCount() int {
	var stats memutils.Statistics
	a.AddStatistics(&stats)
	return stats.AllocationCount
}

// FreeRegionsCount returns the number of blocks in the free list
func (a *Allocator) FreeRegionsCount() int {
	count := 0
	for block := a.firstFree(); block != noBlock; block = a.nextFree(block) {
		count++
	}
	return count
}

func (a *Allocator) AddStatistics(stats *memutils.Statistics) {
	stats.ArenaCount++
	stats.ArenaBytes += len(a.arena)
	stats.AllocationBytes += a.UsedBytes()

	for block := 0; block < len(a.arena); block += a.blockSize(block) {
		if a.isUsed(block) {
			stats.AllocationCount++
		}
	}
}

func (a *Allocator) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.ArenaCount++
	stats.ArenaBytes += len(a.arena)

	for block := 0; block < len(a.arena); block += a.blockSize(block) {
		if a.isUsed(block) {
			stats.AddAllocation(a.blockSize(block))
		} else {
			stats.AddFreeRange(a.blockSize(block))
		}
	}
}

// BlockJsonData populates a json object with a summary of the arena
func (a *Allocator) BlockJsonData(json *jwriter.ObjectState) {
	json.Name("TotalBytes").Int(a.TotalBytes())
	json.Name("UnusedBytes").Int(a.AvailableBytes())
	json.Name("Allocations").Int(a.AllocationCount())
	json.Name("UnusedRanges").Int(a.FreeRegionsCount())
}

// RegionsJsonData writes one object per block into the provided json array
func (a *Allocator) RegionsJsonData(json *jwriter.ArrayState) {
	_ = a.VisitAllRegions(func(ptr Ptr, offset int, size int, free bool) error {
		obj := json.Object()
		defer obj.End()

		obj.Name("Offset").Int(offset)
		obj.Name("Size").Int(size)
		if free {
			obj.Name("Type").String("FREE")
		} else {
			obj.Name("Type").String("USED")
			obj.Name("Capacity").Int(a.Capacity(ptr))
		}
		return nil
	})
}

// LogStatus logs every block in the arena at debug level, followed by the arena totals at info level
func (a *Allocator) LogStatus() {
	logger := a.log()

	_ = a.VisitAllRegions(func(ptr Ptr, offset int, size int, free bool) error {
		logger.LogAttrs(context.Background(), slog.LevelDebug, "arena block",
			slog.Int("offset", offset),
			slog.Int("size", size),
			slog.Bool("used", !free),
		)
		return nil
	})

	logger.LogAttrs(context.Background(), slog.LevelInfo, "arena status",
		slog.Int("totalBytes", a.TotalBytes()),
		slog.Int("usedBytes", a.UsedBytes()),
		slog.Int("availableBytes", a.AvailableBytes()),
		slog.Int("freeRegions", a.FreeRegionsCount()),
	)
}

// Close checks that every allocation has been released. If some have not, each is logged as an error
// and an error is returned. The arena itself belongs to the caller and is left untouched.
func (a *Allocator) Close() error {
	if a.Empty() {
		return nil
	}

	logger := a.log()
	_ = a.VisitAllRegions(func(ptr Ptr, offset int, size int, free bool) error {
		if free {
			return nil
		}

		logger.LogAttrs(context.Background(), slog.LevelError, "[UNRELEASED MEMORY] unfreed allocation",
			slog.Int("ptr", int(ptr)),
			slog.Int("size", size),
		)
		return nil
	})

	return errors.New("some allocations were not freed before the allocator was closed")
}
