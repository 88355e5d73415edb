package unordered

import "github.com/vkngwrapper/fixedmem/memutils"

// Map is an IMap that owns its storage. The storage is allocated once, when the map is created.
type Map[K comparable, V any] struct {
	IMap[K, V]
}

// NewMap creates a map with room for maxSize elements. maxSize must be a power of two; NewMap panics
// with an error wrapping memutils.PowerOfTwoError otherwise.
func NewMap[K comparable, V any](maxSize int, options ...Option[K]) *Map[K, V] {
	err := memutils.CheckPow2(maxSize, "maxSize")
	if err != nil {
		panic(err)
	}

	m := &Map[K, V]{}
	m.init(make([]Pair[K, V], maxSize), make([]bool, maxSize), buildConfig(options))
	return m
}

// Clone returns a new map with its own storage, the same hash and equality functions as m, and a
// slot-for-slot copy of m's elements
func (m *Map[K, V]) Clone() *Map[K, V] {
	clone := &Map[K, V]{}
	clone.init(make([]Pair[K, V], m.MaxSize()), make([]bool, m.MaxSize()), m.table.config())
	clone.Assign(&m.IMap)
	return clone
}
