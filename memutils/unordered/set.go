package unordered

import "github.com/vkngwrapper/fixedmem/memutils"

// Set is an ISet that owns its storage
type Set[K comparable] struct {
	ISet[K]
}

// NewSet creates a set with room for maxSize elements. maxSize must be a power of two.
func NewSet[K comparable](maxSize int, options ...Option[K]) *Set[K] {
	err := memutils.CheckPow2(maxSize, "maxSize")
	if err != nil {
		panic(err)
	}

	s := &Set[K]{}
	s.init(make([]K, maxSize), make([]bool, maxSize), buildConfig(options))
	return s
}

func (s *Set[K]) Clone() *Set[K] {
	clone := &Set[K]{}
	clone.init(make([]K, s.MaxSize()), make([]bool, s.MaxSize()), s.table.config())
	clone.Assign(&s.ISet)
	return clone
}
