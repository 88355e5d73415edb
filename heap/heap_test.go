package heap_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/fixedmem/heap"
	"github.com/vkngwrapper/fixedmem/memutils"
	"github.com/vkngwrapper/fixedmem/memutils/bestfit"
	"golang.org/x/exp/slog"
)

func newHeap(t *testing.T, arenaBytes int) *heap.Heap {
	h, err := heap.New(heap.CreateOptions{
		ArenaBytes: arenaBytes,
		Logger:     slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)),
	})
	require.NoError(t, err)
	return h
}

func TestNewDefaults(t *testing.T) {
	h, err := heap.New(heap.CreateOptions{})
	require.NoError(t, err)

	require.Equal(t, heap.DefaultArenaBytes, h.ArenaBytes())
	require.Equal(t, heap.DefaultArenaBytes, h.AvailableAllocBytes())
	require.Equal(t, 0, h.UsedAllocBytes())
	require.Equal(t, 0, h.UsedItems())
	require.Equal(t, heap.CreateFlags(0), h.Flags())
	require.NoError(t, h.Destroy())
}

func TestNewInvalidOptions(t *testing.T) {
	testCases := map[string]struct {
		ArenaBytes int
	}{
		"Negative": {
			ArenaBytes: -8,
		},
		"TooSmall": {
			ArenaBytes: 8,
		},
		"Unaligned": {
			ArenaBytes: 1020,
		},
		"TooLarge": {
			ArenaBytes: bestfit.MaxArenaBytes + bestfit.Alignment,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			h, err := heap.New(heap.CreateOptions{ArenaBytes: testCase.ArenaBytes})
			require.Error(t, err)
			require.Nil(t, h)
		})
	}
}

func TestCreateFlagsString(t *testing.T) {
	require.Equal(t, "None", heap.CreateFlags(0).String())
	require.Equal(t, "CreateSynchronized", heap.CreateSynchronized.String())
	require.Equal(t, "CreateSynchronized|Unknown", (heap.CreateSynchronized | 8).String())
}

func TestAllocFree(t *testing.T) {
	h := newHeap(t, 1024)

	ptr := h.Alloc(100)
	require.NotEqual(t, bestfit.Nil, ptr)
	require.Len(t, h.Bytes(ptr), 104)
	require.Equal(t, 112, h.UsedAllocBytes())
	require.Equal(t, 912, h.AvailableAllocBytes())
	require.Equal(t, 1, h.UsedItems())

	require.Equal(t, bestfit.Nil, h.Alloc(1024))

	h.Free(ptr)
	require.Equal(t, 0, h.UsedAllocBytes())
	require.Equal(t, 1024, h.AvailableAllocBytes())
	require.Equal(t, 0, h.UsedItems())
	require.NoError(t, h.CheckCorruption())
	require.NoError(t, h.Destroy())
}

func TestCallocAndRealloc(t *testing.T) {
	h := newHeap(t, 1024)

	blocker := h.Alloc(64)
	for i := range h.Bytes(blocker) {
		h.Bytes(blocker)[i] = 0xFF
	}
	h.Free(blocker)

	ptr := h.Calloc(4, 8)
	require.NotEqual(t, bestfit.Nil, ptr)
	require.Equal(t, make([]byte, 32), h.Bytes(ptr)[:32])

	copy(h.Bytes(ptr), "fixed-size arena")
	fence := h.Alloc(8)

	moved := h.Realloc(ptr, 200)
	require.NotEqual(t, bestfit.Nil, moved)
	require.NotEqual(t, ptr, moved)
	require.Equal(t, "fixed-size arena", string(h.Bytes(moved)[:16]))

	h.Free(fence)
	h.Free(moved)
	require.NoError(t, h.CheckCorruption())
	require.NoError(t, h.Destroy())
}

type point struct {
	X int32
	Y int32
}

type node struct {
	Next *node
}

func TestCreateValueDelete(t *testing.T) {
	h := newHeap(t, 256)

	ptr, p := heap.Create(h, point{X: 3, Y: -4})
	require.Equal(t, point{X: 3, Y: -4}, *p)

	heap.Value[point](h, ptr).Y = 10
	require.Equal(t, int32(10), p.Y)
	require.Equal(t, 1, h.UsedItems())

	heap.Delete[point](h, ptr)
	require.Equal(t, 0, h.UsedItems())
	heap.Delete[point](h, bestfit.Nil)

	require.Panics(t, func() {
		heap.Create(h, node{})
	})
	require.NoError(t, h.Destroy())
}

func TestCalculateStatistics(t *testing.T) {
	h := newHeap(t, 1024)
	h.Alloc(100)

	var stats memutils.DetailedStatistics
	h.CalculateStatistics(&stats)
	require.Equal(t, memutils.DetailedStatistics{
		Statistics: memutils.Statistics{
			ArenaCount:      1,
			AllocationCount: 1,
			ArenaBytes:      1024,
			AllocationBytes: 112,
		},
		FreeRangeCount:    1,
		AllocationSizeMin: 112,
		AllocationSizeMax: 112,
		FreeRangeSizeMin:  912,
		FreeRangeSizeMax:  912,
	}, stats)

	// A second call must not accumulate
	h.CalculateStatistics(&stats)
	require.Equal(t, 1, stats.ArenaCount)
}

func TestBuildStatsString(t *testing.T) {
	h := newHeap(t, 1024)
	h.Alloc(100)

	require.JSONEq(t, `{
		"Total": {
			"ArenaCount": 1,
			"ArenaBytes": 1024,
			"AllocationCount": 1,
			"AllocationBytes": 112,
			"UnusedRangeCount": 1,
			"AllocationSizeMin": 112,
			"AllocationSizeMax": 112,
			"UnusedRangeSizeMin": 912,
			"UnusedRangeSizeMax": 912
		}
	}`, h.BuildStatsString(false))

	require.JSONEq(t, `{
		"Total": {
			"ArenaCount": 1,
			"ArenaBytes": 1024,
			"AllocationCount": 1,
			"AllocationBytes": 112,
			"UnusedRangeCount": 1,
			"AllocationSizeMin": 112,
			"AllocationSizeMax": 112,
			"UnusedRangeSizeMin": 912,
			"UnusedRangeSizeMax": 912
		},
		"Arena": {
			"TotalBytes": 1024,
			"UnusedBytes": 912,
			"Allocations": 1,
			"UnusedRanges": 1,
			"Regions": [
				{"Offset": 0, "Size": 112, "Type": "USED", "Capacity": 104},
				{"Offset": 112, "Size": 912, "Type": "FREE"}
			]
		}
	}`, h.BuildStatsString(true))
}

func TestBuildStatsStringEmpty(t *testing.T) {
	h := newHeap(t, 64)

	require.JSONEq(t, `{
		"Total": {
			"ArenaCount": 1,
			"ArenaBytes": 64,
			"AllocationCount": 0,
			"AllocationBytes": 0,
			"UnusedRangeCount": 1,
			"UnusedRangeSizeMin": 64,
			"UnusedRangeSizeMax": 64
		}
	}`, h.BuildStatsString(false))
}

func TestLogStatus(t *testing.T) {
	var logs bytes.Buffer
	h, err := heap.New(heap.CreateOptions{
		ArenaBytes: 256,
		Logger:     slog.New(slog.NewJSONHandler(&logs, nil)),
	})
	require.NoError(t, err)

	h.Alloc(16)
	h.LogStatus()
	require.Contains(t, logs.String(), `"msg":"arena status"`)
	require.Contains(t, logs.String(), `"usedBytes":24`)
}

func TestDestroyReportsLeaks(t *testing.T) {
	var logs bytes.Buffer
	h, err := heap.New(heap.CreateOptions{
		ArenaBytes: 256,
		Logger:     slog.New(slog.NewJSONHandler(&logs, nil)),
	})
	require.NoError(t, err)

	h.Alloc(16)
	require.Error(t, h.Destroy())
	require.Contains(t, logs.String(), "[UNRELEASED MEMORY]")

	require.Panics(t, func() {
		_ = h.Destroy()
	})
}

func TestConcurrentUse(t *testing.T) {
	h, err := heap.New(heap.CreateOptions{
		Flags:      heap.CreateSynchronized,
		ArenaBytes: 64 * 1024,
		Logger:     slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)),
	})
	require.NoError(t, err)
	require.Equal(t, heap.CreateSynchronized, h.Flags())

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(tag byte) {
			defer wg.Done()

			for i := 0; i < 200; i++ {
				ptr := h.Alloc(24)
				if !assert.NotEqual(t, bestfit.Nil, ptr) {
					return
				}

				payload := h.Bytes(ptr)
				for j := range payload {
					payload[j] = tag
				}
				for j := range payload {
					assert.Equal(t, tag, payload[j])
				}

				h.Free(ptr)
			}
		}(byte(worker + 1))
	}
	wg.Wait()

	require.Equal(t, 0, h.UsedItems())
	require.NoError(t, h.CheckCorruption())
	require.NoError(t, h.Destroy())
}
