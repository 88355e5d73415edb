package unordered

import (
	"iter"

	"github.com/vkngwrapper/fixedmem/memutils"
)

func setKey[K comparable](key *K) K {
	return *key
}

// ISet is an open-addressing hash set over caller-owned storage. It behaves exactly like IMap without
// values: capacity is fixed at len(storage), inserting into a full set panics, and Erase, EraseIf, Merge,
// Swap and MoveFrom may move elements between slots.
type ISet[K comparable] struct {
	table table[K, K]
}

// NewISet creates a set over storage and allocated, which must have the same power-of-two length. Both
// slices are cleared, and must not be touched by the caller while the set is in use.
func NewISet[K comparable](storage []K, allocated []bool, options ...Option[K]) *ISet[K] {
	s := &ISet[K]{}
	s.init(storage, allocated, buildConfig(options))
	return s
}

func (s *ISet[K]) init(storage []K, allocated []bool, c config[K]) {
	s.table.init(storage, allocated, setKey[K], c)
}

// Hash returns the hash of key under the set's hash function
func (s *ISet[K]) Hash(key K) uint32 {
	return s.table.hasher(key)
}

func (s *ISet[K]) Size() int {
	return s.table.size
}

func (s *ISet[K]) MaxSize() int {
	return len(s.table.storage)
}

func (s *ISet[K]) Available() int {
	return s.MaxSize() - s.table.size
}

func (s *ISet[K]) Empty() bool {
	return s.table.size == 0
}

func (s *ISet[K]) Full() bool {
	return s.table.size == len(s.table.storage)
}

func (s *ISet[K]) iterator(index int) SetIterator[K] {
	return SetIterator[K]{s: s, index: index}
}

func (s *ISet[K]) Begin() SetIterator[K] {
	return s.iterator(s.table.first)
}

func (s *ISet[K]) End() SetIterator[K] {
	return s.iterator(s.table.end())
}

func (s *ISet[K]) Last() SetIterator[K] {
	if s.table.size == 0 {
		return s.End()
	}
	return s.iterator(s.table.last)
}

func (s *ISet[K]) Find(key K) SetIterator[K] {
	return s.FindHash(s.table.hasher(key), key)
}

func (s *ISet[K]) FindHash(keyHash uint32, key K) SetIterator[K] {
	return s.iterator(s.table.find(keyHash, key))
}

func (s *ISet[K]) Contains(key K) bool {
	return s.ContainsHash(s.table.hasher(key), key)
}

func (s *ISet[K]) ContainsHash(keyHash uint32, key K) bool {
	return s.table.find(keyHash, key) != s.table.end()
}

func (s *ISet[K]) Count(key K) int {
	return s.CountHash(s.table.hasher(key), key)
}

func (s *ISet[K]) CountHash(keyHash uint32, key K) int {
	if s.ContainsHash(keyHash, key) {
		return 1
	}
	return 0
}

// Insert adds key to the set. If it is already present, the set is not modified and End is returned.
// Insert panics if the set is full.
func (s *ISet[K]) Insert(key K) SetIterator[K] {
	return s.InsertHash(s.table.hasher(key), key)
}

func (s *ISet[K]) InsertHash(keyHash uint32, key K) SetIterator[K] {
	index := s.table.insert(keyHash, key, key)
	memutils.DebugValidate(&s.table)

	return s.iterator(index)
}

// Erase removes the element at position and returns an iterator to the first element in a slot at or
// after position's, or End
func (s *ISet[K]) Erase(position SetIterator[K]) SetIterator[K] {
	memutils.Assert(position.s == s, "iterator does not belong to this set")

	index := s.table.erase(position.index)
	memutils.DebugValidate(&s.table)

	return s.iterator(index)
}

func (s *ISet[K]) EraseKey(key K) bool {
	return s.EraseHash(s.table.hasher(key), key)
}

func (s *ISet[K]) EraseHash(keyHash uint32, key K) bool {
	index := s.table.find(keyHash, key)
	if index == s.table.end() {
		return false
	}

	s.table.erase(index)
	memutils.DebugValidate(&s.table)
	return true
}

func (s *ISet[K]) EraseIf(pred func(key K) bool) int {
	return s.table.eraseIf(func(key *K) bool {
		return pred(*key)
	})
}

func (s *ISet[K]) Clear() {
	s.table.clear()
}

// Merge moves every element of other into s and leaves other empty
func (s *ISet[K]) Merge(other *ISet[K]) {
	s.table.merge(&other.table)
}

func (s *ISet[K]) Swap(other *ISet[K]) {
	s.table.swap(&other.table)
}

func (s *ISet[K]) Assign(other *ISet[K]) {
	s.table.assign(&other.table)
}

func (s *ISet[K]) MoveFrom(other *ISet[K]) {
	if s == other {
		return
	}

	s.table.assign(&other.table)
	other.table.clear()
}

// All iterates over the elements of s in slot order. The set must not be modified during iteration.
func (s *ISet[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for index := s.table.first; index <= s.table.last && s.table.size > 0; index++ {
			if s.table.allocated[index] && !yield(s.table.storage[index]) {
				return
			}
		}
	}
}

func (s *ISet[K]) Validate() error {
	return s.table.Validate()
}

// SetIterator identifies a slot in an ISet
type SetIterator[K comparable] struct {
	s     *ISet[K]
	index int
}

func (it SetIterator[K]) Valid() bool {
	return it.s != nil && it.s.table.isAllocated(it.index)
}

func (it SetIterator[K]) Index() int {
	return it.index
}

func (it SetIterator[K]) Value() K {
	if !it.Valid() {
		memutils.Failf("iterator does not refer to an element: %d", it.index)
	}
	return it.s.table.storage[it.index]
}

func (it SetIterator[K]) Next() SetIterator[K] {
	return it.s.iterator(it.s.table.next(it.index))
}

func (it SetIterator[K]) Prev() SetIterator[K] {
	return it.s.iterator(it.s.table.prev(it.index))
}
