// Package profiler accumulates the time spent in named sections of code. Entries live in a
// fixed-capacity map, so the profiler never allocates once it has been created.
package profiler

import (
	"context"
	"time"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/fixedmem/memutils"
	"github.com/vkngwrapper/fixedmem/memutils/unordered"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

// DefaultMaxEntries is the number of distinct ids a profiler can track when CreateOptions does not say otherwise
const DefaultMaxEntries int = 64

// Clock returns the current time in ticks. Ticks only need to be monotonic; their unit is up to the caller.
type Clock func() int64

// CreateOptions contains optional settings when creating a profiler
type CreateOptions struct {
	// MaxEntries is the number of distinct ids the profiler can track. It must be a power of two.
	// Zero selects DefaultMaxEntries.
	MaxEntries int
	// Clock is the tick source. It defaults to nanoseconds of monotonic time.
	Clock Clock
	// Logger receives LogReport output. It defaults to slog.Default().
	Logger *slog.Logger
}

// SortOrder selects the statistic entries are ranked by
type SortOrder int

const (
	SortByTotal SortOrder = iota
	SortByMax
)

func (o SortOrder) String() string {
	switch o {
	case SortByTotal:
		return "TOTAL"
	case SortByMax:
		return "MAX"
	}

	return "UNKNOWN"
}

// Entry holds the accumulated ticks for one id
type Entry struct {
	ID string
	// Total is the sum of every measured interval
	Total int64
	// Max is the longest single interval
	Max int64
	// Count is the number of intervals measured
	Count int
}

type ticks struct {
	total int64
	max   int64
	count int
}

// Profiler measures intervals between Start and Stop and accumulates them per id. Intervals cannot be
// nested: each Start must be followed by a Stop before the next Start. A Profiler is not safe for
// concurrent use.
type Profiler struct {
	entries *unordered.Map[string, ticks]
	clock   Clock
	logger  *slog.Logger

	currentID  string
	startTicks int64
	running    bool
}

// New creates a profiler with room for options.MaxEntries distinct ids
//
// options - Optional parameters: it is valid to leave all the fields blank
func New(options CreateOptions) (*Profiler, error) {
	maxEntries := options.MaxEntries
	if maxEntries == 0 {
		maxEntries = DefaultMaxEntries
	}

	err := memutils.CheckPow2(maxEntries, "profiler.CreateOptions.MaxEntries")
	if err != nil {
		return nil, err
	}

	clock := options.Clock
	if clock == nil {
		origin := time.Now()
		clock = func() int64 {
			return int64(time.Since(origin))
		}
	}

	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Profiler{
		entries: unordered.NewMap[string, ticks](maxEntries),
		clock:   clock,
		logger:  logger,
	}, nil
}

// Start begins measuring an interval for id. It panics if an interval is already being measured.
func (p *Profiler) Start(id string) {
	if p.running {
		memutils.Failf("profiler is already measuring %q", p.currentID)
	}

	p.currentID = id
	p.running = true
	p.startTicks = p.clock()
}

// Stop ends the current interval and adds it to its id's entry. It panics if no interval is being
// measured, or if the interval's id is new and the profiler already tracks MaxEntries ids.
func (p *Profiler) Stop() {
	elapsed := p.clock() - p.startTicks
	memutils.Assert(p.running, "profiler is not measuring")

	id := p.currentID
	p.currentID = ""
	p.running = false

	keyHash := p.entries.Hash(id)
	if p.entries.Full() && !p.entries.ContainsHash(keyHash, id) {
		memutils.Failf("profiler cannot track more than %d ids", p.entries.MaxSize())
	}

	entry := p.entries.RefHash(keyHash, id)
	entry.total += elapsed
	entry.count++
	if elapsed > entry.max {
		entry.max = elapsed
	}
}

// Running returns true if an interval is being measured
func (p *Profiler) Running() bool {
	return p.running
}

// Reset discards every entry and any interval being measured
func (p *Profiler) Reset() {
	p.entries.Clear()
	p.currentID = ""
	p.running = false
}

// Len returns the number of ids with at least one measured interval
func (p *Profiler) Len() int {
	return p.entries.Size()
}

func (p *Profiler) MaxEntries() int {
	return p.entries.MaxSize()
}

// Entry returns the accumulated ticks for id
func (p *Profiler) Entry(id string) (Entry, bool) {
	value, ok := p.entries.Get(id)
	if !ok {
		return Entry{}, false
	}

	return Entry{ID: id, Total: value.total, Max: value.max, Count: value.count}, true
}

// Entries returns every entry ranked from highest to lowest by the statistic order selects. Ties are
// ranked by id.
func (p *Profiler) Entries(order SortOrder) []Entry {
	entries := make([]Entry, 0, p.entries.Size())
	for id, value := range p.entries.All() {
		entries = append(entries, Entry{ID: id, Total: value.total, Max: value.max, Count: value.count})
	}

	slices.SortFunc(entries, func(a, b Entry) bool {
		left, right := a.Total, b.Total
		if order == SortByMax {
			left, right = a.Max, b.Max
		}

		if left != right {
			return left > right
		}
		return a.ID < b.ID
	})

	return entries
}

// TotalTicks returns the sum of every entry's total
func (p *Profiler) TotalTicks() int64 {
	var total int64
	for value := range p.entries.Values() {
		total += value.total
	}
	return total
}

// MaxTicks returns the longest interval measured for any id
func (p *Profiler) MaxTicks() int64 {
	var maxTicks int64
	for value := range p.entries.Values() {
		maxTicks = max(maxTicks, value.max)
	}
	return maxTicks
}

// LogReport logs one line per entry, ranked by order, followed by the overall figure for that order
func (p *Profiler) LogReport(order SortOrder) {
	ctx := context.Background()

	if p.entries.Empty() {
		p.logger.LogAttrs(ctx, slog.LevelInfo, "profiler results", slog.String("order", order.String()),
			slog.Int("entries", 0))
		return
	}

	overall := p.TotalTicks()
	if order == SortByMax {
		overall = p.MaxTicks()
	}

	for rank, entry := range p.Entries(order) {
		value := entry.Total
		if order == SortByMax {
			value = entry.Max
		}

		p.logger.LogAttrs(ctx, slog.LevelInfo, "profiler entry",
			slog.Int("rank", rank+1),
			slog.String("id", entry.ID),
			slog.Int64("ticks", value),
			slog.Int64("percent", percent(value, overall)),
			slog.Int("count", entry.Count),
		)
	}

	p.logger.LogAttrs(ctx, slog.LevelInfo, "profiler results",
		slog.String("order", order.String()),
		slog.Int("entries", p.entries.Size()),
		slog.Int64("ticks", overall),
	)
}

func percent(value int64, overall int64) int64 {
	if overall == 0 {
		return 0
	}
	return value * 100 / overall
}

// WriteJson writes the ranked entries as a json object
func (p *Profiler) WriteJson(writer *jwriter.Writer, order SortOrder) {
	obj := writer.Object()
	defer obj.End()

	obj.Name("Order").String(order.String())
	obj.Name("TotalTicks").Int(int(p.TotalTicks()))
	obj.Name("MaxTicks").Int(int(p.MaxTicks()))

	arr := obj.Name("Entries").Array()
	defer arr.End()

	for _, entry := range p.Entries(order) {
		entryObj := arr.Object()
		entryObj.Name("Id").String(entry.ID)
		entryObj.Name("Total").Int(int(entry.Total))
		entryObj.Name("Max").Int(int(entry.Max))
		entryObj.Name("Count").Int(entry.Count)
		entryObj.End()
	}
}
