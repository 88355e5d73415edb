package unordered_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/fixedmem/memutils/unordered"
)

func TestMapMutationsDoNotAllocate(t *testing.T) {
	m := unordered.NewMap[int, int](1024)
	for key := 0; key < 700; key++ {
		m.Insert(key, key)
	}

	allocs := testing.AllocsPerRun(100, func() {
		// Erasing from the middle of a long run reinserts the elements that follow it
		m.EraseKey(10)
		m.Insert(10, 10)

		m.Insert(5000, 1)
		m.InsertOrAssign(5000, 2)
		*m.Ref(5001) = 3
		m.TryEmplace(5000, 4)
		m.Erase(m.Find(5000))
		m.EraseKey(5001)
	})

	require.Zero(t, allocs)
	require.Equal(t, 700, m.Size())
	require.NoError(t, m.Validate())
}

func TestStringMapMutationsDoNotAllocate(t *testing.T) {
	m := unordered.NewMap[string, int](64)
	keys := []string{"update", "render", "audio", "input", "physics"}
	for i, key := range keys {
		m.Insert(key, i)
	}

	allocs := testing.AllocsPerRun(100, func() {
		for i, key := range keys {
			m.EraseKey(key)
			m.Insert(key, i)
		}
	})

	require.Zero(t, allocs)
	require.Equal(t, len(keys), m.Size())
}

func TestSetMutationsDoNotAllocate(t *testing.T) {
	s := unordered.NewSet[int](256)
	for key := 0; key < 200; key++ {
		s.Insert(key)
	}

	allocs := testing.AllocsPerRun(100, func() {
		s.EraseKey(3)
		s.Insert(3)
		s.Insert(1000)
		s.Erase(s.Find(1000))
	})

	require.Zero(t, allocs)
	require.Equal(t, 200, s.Size())
	require.NoError(t, s.Validate())
}
