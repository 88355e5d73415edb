package unordered_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/fixedmem/memutils/unordered"
)

func TestMapsEqualIsLayoutSensitive(t *testing.T) {
	a := unordered.NewMap[int, int](8)
	a.Insert(3, 30)
	a.Insert(11, 110)

	b := unordered.NewMap[int, int](8)
	b.Insert(11, 110)
	b.Insert(3, 30)

	c := unordered.NewMap[int, int](8)
	c.Insert(3, 30)
	c.Insert(11, 110)

	// Same contents, but 3 and 11 share a home slot and were inserted in different orders
	require.Equal(t, a.At(3), b.At(3))
	require.Equal(t, a.At(11), b.At(11))
	require.False(t, unordered.MapsEqual(&a.IMap, &b.IMap))
	require.True(t, unordered.MapsEqual(&a.IMap, &c.IMap))

	c.InsertOrAssign(11, 111)
	require.False(t, unordered.MapsEqual(&a.IMap, &c.IMap))
	require.True(t, unordered.MapsEqualFunc(&a.IMap, &c.IMap, func(x, y int) bool {
		return x/10 == y/10
	}))
}

func TestSetsEqualIsLayoutSensitive(t *testing.T) {
	a := unordered.NewSet[int](8)
	a.Insert(3)
	a.Insert(11)

	b := unordered.NewSet[int](8)
	b.Insert(11)
	b.Insert(3)

	require.False(t, unordered.SetsEqual(&a.ISet, &b.ISet))

	b.Clear()
	b.Insert(3)
	b.Insert(11)
	require.True(t, unordered.SetsEqual(&a.ISet, &b.ISet))
}

func TestCompareMaps(t *testing.T) {
	testCases := map[string]struct {
		A        map[int]int
		B        map[int]int
		Expected int
	}{
		"Equal": {
			A:        map[int]int{1: 10, 2: 20},
			B:        map[int]int{1: 10, 2: 20},
			Expected: 0,
		},
		"ValueLess": {
			A:        map[int]int{1: 10},
			B:        map[int]int{1: 20},
			Expected: -1,
		},
		"KeyGreater": {
			// 3 occupies slot 12 and 1 occupies slot 14, so 3 comes first in slot order
			A:        map[int]int{3: 0},
			B:        map[int]int{1: 0},
			Expected: 1,
		},
		"Prefix": {
			A:        map[int]int{3: 30},
			B:        map[int]int{3: 30, 1: 10},
			Expected: -1,
		},
		"BothEmpty": {
			A:        map[int]int{},
			B:        map[int]int{},
			Expected: 0,
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			a := unordered.NewMap[int, int](16)
			for key, value := range testCase.A {
				a.Insert(key, value)
			}

			b := unordered.NewMap[int, int](16)
			for key, value := range testCase.B {
				b.Insert(key, value)
			}

			require.Equal(t, testCase.Expected, unordered.CompareMaps(&a.IMap, &b.IMap))
			require.Equal(t, -testCase.Expected, unordered.CompareMaps(&b.IMap, &a.IMap))
		})
	}
}

func TestCompareSets(t *testing.T) {
	a := unordered.NewSet[string](16)
	b := unordered.NewSet[string](16)
	require.Equal(t, 0, unordered.CompareSets(&a.ISet, &b.ISet))

	a.Insert("apple")
	require.Equal(t, 1, unordered.CompareSets(&a.ISet, &b.ISet))
	require.Equal(t, -1, unordered.CompareSets(&b.ISet, &a.ISet))

	b.Insert("apple")
	require.Equal(t, 0, unordered.CompareSets(&a.ISet, &b.ISet))
}
