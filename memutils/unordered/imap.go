package unordered

import (
	"iter"

	"github.com/vkngwrapper/fixedmem/memutils"
)

// Pair is a map element
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

func pairKey[K comparable, V any](pair *Pair[K, V]) K {
	return pair.Key
}

// IMap is an open-addressing hash map over caller-owned storage. It never allocates: its capacity is
// fixed at len(storage), which must be a power of two. Inserting into a full map panics, so callers
// that cannot rule it out must check Full first.
//
// Iteration order follows slot order, which depends on key hashes rather than insertion order. Erase,
// EraseIf, Merge, Swap and MoveFrom may move elements between slots, invalidating iterators and
// pointers returned by Ref.
//
// The *Hash variants of each method accept a precomputed key hash, which must be the hash the map's
// hash function produces for the key.
type IMap[K comparable, V any] struct {
	table table[K, Pair[K, V]]
}

// NewIMap creates a map over storage and allocated, which must have the same power-of-two length. Both
// slices are cleared, and must not be touched by the caller while the map is in use.
func NewIMap[K comparable, V any](storage []Pair[K, V], allocated []bool, options ...Option[K]) *IMap[K, V] {
	m := &IMap[K, V]{}
	m.init(storage, allocated, buildConfig(options))
	return m
}

func (m *IMap[K, V]) init(storage []Pair[K, V], allocated []bool, c config[K]) {
	m.table.init(storage, allocated, pairKey[K, V], c)
}

// Hash returns the hash of key under the map's hash function
func (m *IMap[K, V]) Hash(key K) uint32 {
	return m.table.hasher(key)
}

func (m *IMap[K, V]) Size() int {
	return m.table.size
}

func (m *IMap[K, V]) MaxSize() int {
	return len(m.table.storage)
}

// Available returns the number of elements that can still be inserted
func (m *IMap[K, V]) Available() int {
	return m.MaxSize() - m.table.size
}

func (m *IMap[K, V]) Empty() bool {
	return m.table.size == 0
}

func (m *IMap[K, V]) Full() bool {
	return m.table.size == len(m.table.storage)
}

func (m *IMap[K, V]) iterator(index int) MapIterator[K, V] {
	return MapIterator[K, V]{m: m, index: index}
}

// Begin returns an iterator to the element in the lowest slot, or End if the map is empty
func (m *IMap[K, V]) Begin() MapIterator[K, V] {
	return m.iterator(m.table.first)
}

// End returns the past-the-end iterator
func (m *IMap[K, V]) End() MapIterator[K, V] {
	return m.iterator(m.table.end())
}

// Last returns an iterator to the element in the highest slot, or End if the map is empty
func (m *IMap[K, V]) Last() MapIterator[K, V] {
	if m.table.size == 0 {
		return m.End()
	}
	return m.iterator(m.table.last)
}

// Find returns an iterator to the element with the given key, or End
func (m *IMap[K, V]) Find(key K) MapIterator[K, V] {
	return m.FindHash(m.table.hasher(key), key)
}

func (m *IMap[K, V]) FindHash(keyHash uint32, key K) MapIterator[K, V] {
	return m.iterator(m.table.find(keyHash, key))
}

func (m *IMap[K, V]) Contains(key K) bool {
	return m.ContainsHash(m.table.hasher(key), key)
}

func (m *IMap[K, V]) ContainsHash(keyHash uint32, key K) bool {
	return m.table.find(keyHash, key) != m.table.end()
}

// Count returns 1 if the key is present and 0 otherwise
func (m *IMap[K, V]) Count(key K) int {
	return m.CountHash(m.table.hasher(key), key)
}

func (m *IMap[K, V]) CountHash(keyHash uint32, key K) int {
	if m.ContainsHash(keyHash, key) {
		return 1
	}
	return 0
}

// Get returns the value stored under key, and whether it was found
func (m *IMap[K, V]) Get(key K) (V, bool) {
	index := m.table.find(m.table.hasher(key), key)
	if index == m.table.end() {
		var zero V
		return zero, false
	}

	return m.table.storage[index].Value, true
}

// At returns the value stored under key. It panics if the key is not present.
func (m *IMap[K, V]) At(key K) V {
	return m.AtHash(m.table.hasher(key), key)
}

func (m *IMap[K, V]) AtHash(keyHash uint32, key K) V {
	index := m.table.find(keyHash, key)
	memutils.Assert(index != m.table.end(), "key not found")

	return m.table.storage[index].Value
}

// Ref returns a pointer to the value stored under key, inserting the zero value first if the key is not
// present. The pointer is only valid until the next call that can move elements.
func (m *IMap[K, V]) Ref(key K) *V {
	return m.RefHash(m.table.hasher(key), key)
}

func (m *IMap[K, V]) RefHash(keyHash uint32, key K) *V {
	index := m.table.find(keyHash, key)
	if index == m.table.end() {
		index = m.table.insert(keyHash, key, Pair[K, V]{Key: key})
		memutils.DebugValidate(&m.table)
	}

	return &m.table.storage[index].Value
}

// Insert adds key and value to the map. If the key is already present, the map is not modified and End is
// returned. Insert panics if the map is full.
func (m *IMap[K, V]) Insert(key K, value V) MapIterator[K, V] {
	return m.InsertHash(m.table.hasher(key), key, value)
}

func (m *IMap[K, V]) InsertHash(keyHash uint32, key K, value V) MapIterator[K, V] {
	index := m.table.insert(keyHash, key, Pair[K, V]{Key: key, Value: value})
	memutils.DebugValidate(&m.table)

	return m.iterator(index)
}

// InsertOrAssign adds key and value to the map, replacing the element in place if the key is already present
func (m *IMap[K, V]) InsertOrAssign(key K, value V) MapIterator[K, V] {
	return m.InsertOrAssignHash(m.table.hasher(key), key, value)
}

func (m *IMap[K, V]) InsertOrAssignHash(keyHash uint32, key K, value V) MapIterator[K, V] {
	index := m.table.find(keyHash, key)
	if index != m.table.end() {
		m.table.storage[index] = Pair[K, V]{Key: key, Value: value}
		return m.iterator(index)
	}

	return m.InsertHash(keyHash, key, value)
}

// TryEmplace adds key and value to the map if the key is not present. Otherwise, it returns an iterator to
// the existing element and leaves it untouched. value is evaluated by the caller either way.
func (m *IMap[K, V]) TryEmplace(key K, value V) MapIterator[K, V] {
	return m.TryEmplaceHash(m.table.hasher(key), key, value)
}

func (m *IMap[K, V]) TryEmplaceHash(keyHash uint32, key K, value V) MapIterator[K, V] {
	index := m.table.find(keyHash, key)
	if index != m.table.end() {
		return m.iterator(index)
	}

	return m.InsertHash(keyHash, key, value)
}

// Erase removes the element at position and returns an iterator to the first element in a slot at or after
// position's, or End. Elements following position in its collision run may be moved.
func (m *IMap[K, V]) Erase(position MapIterator[K, V]) MapIterator[K, V] {
	memutils.Assert(position.m == m, "iterator does not belong to this map")

	index := m.table.erase(position.index)
	memutils.DebugValidate(&m.table)

	return m.iterator(index)
}

// EraseKey removes the element with the given key, returning false if it was not present
func (m *IMap[K, V]) EraseKey(key K) bool {
	return m.EraseHash(m.table.hasher(key), key)
}

func (m *IMap[K, V]) EraseHash(keyHash uint32, key K) bool {
	index := m.table.find(keyHash, key)
	if index == m.table.end() {
		return false
	}

	m.table.erase(index)
	memutils.DebugValidate(&m.table)
	return true
}

// EraseIf removes every element for which pred returns true and returns the number removed
func (m *IMap[K, V]) EraseIf(pred func(key K, value V) bool) int {
	return m.table.eraseIf(func(pair *Pair[K, V]) bool {
		return pred(pair.Key, pair.Value)
	})
}

func (m *IMap[K, V]) Clear() {
	m.table.clear()
}

// Merge moves every element of other into m, replacing elements of m with equal keys, and leaves other empty.
// Both maps must have the same MaxSize, and m must have room for the merged elements.
func (m *IMap[K, V]) Merge(other *IMap[K, V]) {
	m.table.merge(&other.table)
}

// Swap exchanges the contents of two maps with the same MaxSize and hash function
func (m *IMap[K, V]) Swap(other *IMap[K, V]) {
	m.table.swap(&other.table)
}

// Assign replaces the contents of m with a copy of other. Both maps must have the same MaxSize and hash
// function. The copy has the same slot layout as other.
func (m *IMap[K, V]) Assign(other *IMap[K, V]) {
	m.table.assign(&other.table)
}

// MoveFrom replaces the contents of m with the contents of other, leaving other empty
func (m *IMap[K, V]) MoveFrom(other *IMap[K, V]) {
	if m == other {
		return
	}

	m.table.assign(&other.table)
	other.table.clear()
}

// All iterates over the elements of m in slot order. The map must not be modified during iteration.
func (m *IMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for index := m.table.first; index <= m.table.last && m.table.size > 0; index++ {
			if !m.table.allocated[index] {
				continue
			}

			pair := m.table.storage[index]
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Keys iterates over the keys of m in slot order
func (m *IMap[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for key := range m.All() {
			if !yield(key) {
				return
			}
		}
	}
}

// Values iterates over the values of m in slot order
func (m *IMap[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, value := range m.All() {
			if !yield(value) {
				return
			}
		}
	}
}

// Validate checks the map's bookkeeping and collision runs
func (m *IMap[K, V]) Validate() error {
	return m.table.Validate()
}

// MapIterator identifies a slot in an IMap. Iterators are plain values and compare equal when they refer
// to the same slot of the same map.
type MapIterator[K comparable, V any] struct {
	m     *IMap[K, V]
	index int
}

// Valid returns true if the iterator refers to an element
func (it MapIterator[K, V]) Valid() bool {
	return it.m != nil && it.m.table.isAllocated(it.index)
}

// Index returns the slot the iterator refers to. End iterators return MaxSize.
func (it MapIterator[K, V]) Index() int {
	return it.index
}

func (it MapIterator[K, V]) pair() *Pair[K, V] {
	if !it.Valid() {
		memutils.Failf("iterator does not refer to an element: %d", it.index)
	}
	return &it.m.table.storage[it.index]
}

func (it MapIterator[K, V]) Key() K {
	return it.pair().Key
}

func (it MapIterator[K, V]) Value() V {
	return it.pair().Value
}

// SetValue replaces the value of the element the iterator refers to
func (it MapIterator[K, V]) SetValue(value V) {
	it.pair().Value = value
}

// Next returns an iterator to the element in the next allocated slot, or End
func (it MapIterator[K, V]) Next() MapIterator[K, V] {
	return it.m.iterator(it.m.table.next(it.index))
}

// Prev returns an iterator to the element in the previous allocated slot. Stepping back from End yields
// the last element; stepping back from the first element yields an invalid iterator.
func (it MapIterator[K, V]) Prev() MapIterator[K, V] {
	return it.m.iterator(it.m.table.prev(it.index))
}
