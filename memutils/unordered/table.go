package unordered

import (
	"github.com/pkg/errors"
	"github.com/vkngwrapper/fixedmem/memutils"
)

// table is the linear-probing engine shared by maps and sets. It stores elements of type T directly in
// a borrowed slot slice, tracks liveness in a parallel borrowed allocated slice, and extracts keys from
// elements with keyOf. Erase never leaves tombstones: the run of elements following an erased slot is
// reinserted so that every live key stays reachable from its home slot without crossing an empty one.
//
// first and last bound the allocated slots. When the table is empty, first is len(storage) and last is 0.
type table[K comparable, T any] struct {
	storage   []T
	allocated []bool
	keyOf     func(element *T) K
	hasher    func(K) uint32
	equal     func(a, b K) bool

	mask  int
	first int
	last  int
	size  int
}

func (t *table[K, T]) init(storage []T, allocated []bool, keyOf func(*T) K, c config[K]) {
	memutils.Assert(len(storage) == len(allocated), "storage has %d slots but allocated has %d", len(storage), len(allocated))
	err := memutils.CheckPow2(len(storage), "max size")
	if err != nil {
		panic(err)
	}

	clear(storage)
	clear(allocated)

	t.storage = storage
	t.allocated = allocated
	t.keyOf = keyOf
	t.hasher = c.hasher
	t.equal = c.equal
	t.mask = len(storage) - 1
	t.resetBounds()
}

func (t *table[K, T]) config() config[K] {
	return config[K]{hasher: t.hasher, equal: t.equal}
}

func (t *table[K, T]) resetBounds() {
	t.first = len(t.storage)
	t.last = 0
	t.size = 0
}

// end is the index of the past-the-end position
func (t *table[K, T]) end() int {
	return len(t.storage)
}

func (t *table[K, T]) home(keyHash uint32) int {
	memutils.DebugCheckPow2(len(t.storage), "max size")
	return int(keyHash) & t.mask
}

func (t *table[K, T]) isAllocated(index int) bool {
	return index >= 0 && index < len(t.allocated) && t.allocated[index]
}

func (t *table[K, T]) find(keyHash uint32, key K) int {
	if t.size == 0 {
		return t.end()
	}

	index := t.home(keyHash)
	for steps := 0; steps < len(t.storage) && t.allocated[index]; steps++ {
		if t.equal(key, t.keyOf(&t.storage[index])) {
			return index
		}

		index = (index + 1) & t.mask
	}

	return t.end()
}

// insert places element, whose key is key, in the first free slot of its collision run, unless an element
// with an equal key is found first, in which case nothing changes and end is returned. It panics if every
// slot is allocated.
//
// Keys are only ever read from elements already in storage, so element itself never escapes.
func (t *table[K, T]) insert(keyHash uint32, key K, element T) int {
	start := t.home(keyHash)

	index := start
	for t.allocated[index] {
		if t.equal(key, t.keyOf(&t.storage[index])) {
			return t.end()
		}

		index = (index + 1) & t.mask
		if index == start {
			memutils.Failf("all %d slots are allocated", len(t.storage))
		}
	}

	t.storage[index] = element
	t.allocated[index] = true
	t.first = min(t.first, index)
	t.last = max(t.last, index)
	t.size++

	return index
}

// release empties a slot and tightens the bounds around the remaining elements. It does not repair collision runs.
func (t *table[K, T]) release(index int) {
	var zero T
	t.storage[index] = zero
	t.allocated[index] = false
	t.size--

	if t.size == 0 {
		t.resetBounds()
		return
	}

	if index == t.first {
		for !t.allocated[t.first] {
			t.first++
		}
	}

	if index == t.last {
		for !t.allocated[t.last] {
			t.last--
		}
	}
}

// erase removes the element at index, then pulls every element of the run that followed it out of the
// table and inserts it again, closing any gap the removal opened in their collision runs. It returns the
// index of the first allocated slot at or after index, or end.
func (t *table[K, T]) erase(index int) int {
	if !t.isAllocated(index) {
		memutils.Failf("index is not allocated: %d", index)
	}

	t.release(index)
	if t.size == 0 {
		return t.end()
	}

	next := (index + 1) & t.mask
	reinsertCount := 0
	for t.allocated[next] {
		reinsertCount++
		next = (next + 1) & t.mask
	}

	next = (index + 1) & t.mask
	for i := 0; i < reinsertCount; i++ {
		key := t.keyOf(&t.storage[next])
		element := t.storage[next]
		t.release(next)
		t.insert(t.hasher(key), key, element)

		next = (next + 1) & t.mask
	}

	for ; index <= t.last; index++ {
		if t.allocated[index] {
			return index
		}
	}

	return t.end()
}

// eraseIf removes every element matching pred in a single scan, without reinserting anything mid-scan,
// then repairs the collision runs the scan may have broken. It returns the number of elements removed.
func (t *table[K, T]) eraseIf(pred func(element *T) bool) int {
	if t.size == 0 {
		return 0
	}

	erasedCount := 0
	anchor := t.firstFreeSlot()
	if anchor < 0 {
		// Runs in a full table can wrap anywhere, so open a gap with a regular erase first
		for index := 0; index < len(t.storage); index++ {
			if pred(&t.storage[index]) {
				t.erase(index)
				erasedCount++
				break
			}
		}

		if erasedCount == 0 {
			return 0
		}

		anchor = t.firstFreeSlot()
	}

	var zero T
	scanErased := 0
	for index, last := t.first, t.last; index <= last; index++ {
		if t.allocated[index] && pred(&t.storage[index]) {
			t.storage[index] = zero
			t.allocated[index] = false
			scanErased++
		}
	}

	t.size -= scanErased
	erasedCount += scanErased

	if scanErased > 0 && t.size > 0 {
		t.rehashFrom(anchor)
	}
	t.recomputeBounds()

	memutils.DebugValidate(t)
	return erasedCount
}

// rehashFrom reinserts every element in slot order, starting just after anchor. No collision run crossed
// anchor before the scan, so each element can only land in slots that have already been processed.
func (t *table[K, T]) rehashFrom(anchor int) {
	var zero T

	index := (anchor + 1) & t.mask
	for step := 1; step < len(t.storage); step++ {
		if t.allocated[index] {
			key := t.keyOf(&t.storage[index])
			element := t.storage[index]
			t.storage[index] = zero
			t.allocated[index] = false
			t.size--

			t.insert(t.hasher(key), key, element)
		}

		index = (index + 1) & t.mask
	}
}

func (t *table[K, T]) firstFreeSlot() int {
	for index, allocated := range t.allocated {
		if !allocated {
			return index
		}
	}

	return -1
}

func (t *table[K, T]) recomputeBounds() {
	size := t.size
	t.resetBounds()
	t.size = size

	for index, allocated := range t.allocated {
		if allocated {
			t.first = min(t.first, index)
			t.last = max(t.last, index)
		}
	}
}

func (t *table[K, T]) clear() {
	if t.size == 0 {
		return
	}

	clear(t.storage[t.first : t.last+1])
	clear(t.allocated[t.first : t.last+1])
	t.resetBounds()
}

// next returns the first allocated index after index, or end
func (t *table[K, T]) next(index int) int {
	for index++; index <= t.last; index++ {
		if t.allocated[index] {
			return index
		}
	}

	return t.end()
}

// prev returns the last allocated index before index, or -1
func (t *table[K, T]) prev(index int) int {
	for index--; index >= t.first; index-- {
		if t.allocated[index] {
			return index
		}
	}

	return -1
}

// swap exchanges the contents of two tables of the same size slot by slot
func (t *table[K, T]) swap(other *table[K, T]) {
	if t == other {
		return
	}

	memutils.Assert(len(t.storage) == len(other.storage), "invalid max size: %d - %d", len(t.storage), len(other.storage))

	first := min(t.first, other.first)
	last := max(t.last, other.last)
	for index := first; index <= last; index++ {
		t.storage[index], other.storage[index] = other.storage[index], t.storage[index]
		t.allocated[index], other.allocated[index] = other.allocated[index], t.allocated[index]
	}

	t.first, other.first = other.first, t.first
	t.last, other.last = other.last, t.last
	t.size, other.size = other.size, t.size

	memutils.DebugValidate(t)
	memutils.DebugValidate(other)
}

// assign replaces the contents of t with a slot-for-slot copy of other
func (t *table[K, T]) assign(other *table[K, T]) {
	if t == other {
		return
	}

	memutils.Assert(len(t.storage) == len(other.storage), "invalid max size: %d - %d", len(t.storage), len(other.storage))

	copy(t.storage, other.storage)
	copy(t.allocated, other.allocated)
	t.first = other.first
	t.last = other.last
	t.size = other.size

	memutils.DebugValidate(t)
}

// merge inserts or assigns every element of other into t, then clears other
func (t *table[K, T]) merge(other *table[K, T]) {
	if t == other {
		return
	}

	memutils.Assert(len(t.storage) == len(other.storage), "invalid max size: %d - %d", len(t.storage), len(other.storage))

	for index := other.first; index <= other.last && other.size > 0; index++ {
		if other.allocated[index] {
			t.insertOrAssign(&other.storage[index])
		}
	}

	other.clear()
	memutils.DebugValidate(t)
}

func (t *table[K, T]) insertOrAssign(element *T) int {
	key := t.keyOf(element)
	keyHash := t.hasher(key)

	index := t.find(keyHash, key)
	if index != t.end() {
		t.storage[index] = *element
		return index
	}

	return t.insert(keyHash, key, *element)
}

// Validate checks the bookkeeping and confirms that every element is reachable from its home slot
func (t *table[K, T]) Validate() error {
	count := 0
	for index, allocated := range t.allocated {
		if !allocated {
			continue
		}

		count++
		if index < t.first || index > t.last {
			return errors.Errorf("slot %d is allocated but outside the valid range [%d, %d]", index, t.first, t.last)
		}

		key := t.keyOf(&t.storage[index])
		keyHash := t.hasher(key)
		for slot := t.home(keyHash); slot != index; slot = (slot + 1) & t.mask {
			if !t.allocated[slot] {
				return errors.Errorf("slot %d cannot be reached from its home slot %d: slot %d is empty",
					index, t.home(keyHash), slot)
			}
		}

		if found := t.find(keyHash, key); found != index {
			return errors.Errorf("slot %d holds a key that is also stored in slot %d", index, found)
		}
	}

	if count != t.size {
		return errors.Errorf("%d slots are allocated, but the table tracks a size of %d", count, t.size)
	}

	if t.size == 0 {
		if t.first != len(t.storage) || t.last != 0 {
			return errors.Errorf("empty table has valid range [%d, %d]", t.first, t.last)
		}
		return nil
	}

	if !t.allocated[t.first] || !t.allocated[t.last] {
		return errors.Errorf("valid range [%d, %d] does not start and end on allocated slots", t.first, t.last)
	}

	return nil
}
