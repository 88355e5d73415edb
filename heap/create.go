package heap

import (
	"context"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/fixedmem/internal/utils"
	"github.com/vkngwrapper/fixedmem/memutils/bestfit"
	"golang.org/x/exp/slog"
)

// CreateFlags indicate specific heap behaviors to activate or deactivate
type CreateFlags int32

const (
	// CreateSynchronized guards every heap method with an internal mutex, so the heap can be shared
	// between goroutines. Without it, the consumer must guarantee the heap is used from only one goroutine
	// at a time.
	CreateSynchronized CreateFlags = 1 << iota
)

var createFlagNames = []struct {
	flag CreateFlags
	name string
}{
	{CreateSynchronized, "CreateSynchronized"},
}

func (f CreateFlags) String() string {
	if f == 0 {
		return "None"
	}

	var names []string
	for _, entry := range createFlagNames {
		if f&entry.flag != 0 {
			names = append(names, entry.name)
			f &^= entry.flag
		}
	}

	if f != 0 {
		names = append(names, "Unknown")
	}

	return strings.Join(names, "|")
}

const (
	// DefaultArenaBytes is the arena size used when none is provided via CreateOptions. It is equal to
	// 256Kb.
	DefaultArenaBytes int = 256 * 1024
)

// CreateOptions contains optional settings when creating a heap
type CreateOptions struct {
	// Flags indicates specific heap behaviors to activate or deactivate
	Flags CreateFlags
	// ArenaBytes is the size of the arena the heap allocates from. It must be a multiple of
	// bestfit.Alignment and no larger than bestfit.MaxArenaBytes. Zero selects DefaultArenaBytes.
	ArenaBytes int
	// Logger receives status reports and unreleased memory warnings. It defaults to slog.Default().
	Logger *slog.Logger
}

// New creates a Heap with a freshly allocated arena
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(options CreateOptions) (*Heap, error) {
	arenaBytes := options.ArenaBytes
	if arenaBytes == 0 {
		arenaBytes = DefaultArenaBytes
	}

	if arenaBytes < bestfit.MinArenaBytes {
		return nil, errors.Newf("heap.CreateOptions.ArenaBytes is %d, but the smallest supported arena is %d bytes", arenaBytes, bestfit.MinArenaBytes)
	}
	if arenaBytes%bestfit.Alignment != 0 {
		return nil, errors.Newf("heap.CreateOptions.ArenaBytes is %d, which is not a multiple of %d", arenaBytes, bestfit.Alignment)
	}
	if arenaBytes > bestfit.MaxArenaBytes {
		return nil, errors.Newf("heap.CreateOptions.ArenaBytes is %d, but the largest supported arena is %d bytes", arenaBytes, bestfit.MaxArenaBytes)
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Backing the arena with words keeps its base address aligned
	words := make([]uint64, arenaBytes/bestfit.Alignment)
	arena := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), arenaBytes)

	heap := &Heap{
		mutex:  utils.NewOptionalRWMutex(options.Flags&CreateSynchronized != 0),
		logger: logger,
		flags:  options.Flags,
		words:  words,
	}
	heap.allocator = bestfit.New(arena, bestfit.WithLogger(logger))

	logger.LogAttrs(context.Background(), slog.LevelDebug, "heap created",
		slog.Int("arenaBytes", arenaBytes),
		slog.String("flags", options.Flags.String()),
	)

	return heap, nil
}
