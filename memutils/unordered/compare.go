package unordered

import "golang.org/x/exp/constraints"

// MapsEqual reports whether two maps hold equal elements in the same slots. Two maps holding the same
// keys and values can compare unequal when their elements were inserted in different orders and ended
// up in different slots.
func MapsEqual[K comparable, V comparable](a, b *IMap[K, V]) bool {
	return MapsEqualFunc(a, b, func(x, y V) bool { return x == y })
}

// MapsEqualFunc is MapsEqual with a custom value comparison
func MapsEqualFunc[K comparable, V any](a, b *IMap[K, V], valueEqual func(x, y V) bool) bool {
	return tablesEqual(&a.table, &b.table, func(x, y *Pair[K, V]) bool {
		return x.Key == y.Key && valueEqual(x.Value, y.Value)
	})
}

// SetsEqual reports whether two sets hold equal elements in the same slots
func SetsEqual[K comparable](a, b *ISet[K]) bool {
	return tablesEqual(&a.table, &b.table, func(x, y *K) bool {
		return *x == *y
	})
}

func tablesEqual[K comparable, T any](a, b *table[K, T], elementEqual func(x, y *T) bool) bool {
	if a.size != b.size || a.first != b.first || a.last != b.last {
		return false
	}

	for index := a.first; index <= a.last && a.size > 0; index++ {
		if a.allocated[index] != b.allocated[index] {
			return false
		}

		if a.allocated[index] && !elementEqual(&a.storage[index], &b.storage[index]) {
			return false
		}
	}

	return true
}

// CompareMaps compares the elements of two maps lexicographically in slot order, ordering elements by key
// and then by value. It returns -1 if a sorts before b, 1 if a sorts after b, and 0 otherwise.
func CompareMaps[K constraints.Ordered, V constraints.Ordered](a, b *IMap[K, V]) int {
	return compareTables(&a.table, &b.table, func(x, y *Pair[K, V]) int {
		if c := compareOrdered(x.Key, y.Key); c != 0 {
			return c
		}
		return compareOrdered(x.Value, y.Value)
	})
}

// CompareSets compares the elements of two sets lexicographically in slot order
func CompareSets[K constraints.Ordered](a, b *ISet[K]) int {
	return compareTables(&a.table, &b.table, func(x, y *K) int {
		return compareOrdered(*x, *y)
	})
}

func compareTables[K comparable, T any](a, b *table[K, T], compare func(x, y *T) int) int {
	aIndex, bIndex := a.first, b.first
	for aIndex != a.end() && bIndex != b.end() {
		if c := compare(&a.storage[aIndex], &b.storage[bIndex]); c != 0 {
			return c
		}

		aIndex = a.next(aIndex)
		bIndex = b.next(bIndex)
	}

	if aIndex != a.end() {
		return 1
	}
	if bIndex != b.end() {
		return -1
	}
	return 0
}

func compareOrdered[T constraints.Ordered](x, y T) int {
	if x < y {
		return -1
	}
	if y < x {
		return 1
	}
	return 0
}
