package unordered_test

import (
	"math/rand"
	"testing"

	"github.com/dolthub/swiss"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/fixedmem/memutils/unordered"
)

func requireMatchesOracle(t *testing.T, m *unordered.Map[int, int], oracle *swiss.Map[int, int]) {
	require.NoError(t, m.Validate())
	require.Equal(t, oracle.Count(), m.Size())

	oracle.Iter(func(key int, value int) bool {
		actual, ok := m.Get(key)
		require.True(t, ok, "key %d", key)
		require.Equal(t, value, actual, "key %d", key)
		return false
	})

	for key, value := range m.All() {
		expected, ok := oracle.Get(key)
		require.True(t, ok, "key %d", key)
		require.Equal(t, expected, value, "key %d", key)
	}
}

func TestMapMatchesOracle(t *testing.T) {
	testCases := map[string]struct {
		Hasher func(int) uint32
	}{
		"DefaultHash": {},
		"CollidingHash": {
			Hasher: func(key int) uint32 { return uint32(key % 5) },
		},
		"ClusteredHash": {
			Hasher: func(key int) uint32 { return uint32(key/8) * 3 },
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))

			var options []unordered.Option[int]
			if testCase.Hasher != nil {
				options = append(options, unordered.WithHasher(testCase.Hasher))
			}

			m := unordered.NewMap[int, int](64, options...)
			oracle := swiss.NewMap[int, int](64)

			for step := 0; step < 3000; step++ {
				key := rng.Intn(96)
				value := rng.Int()

				switch rng.Intn(10) {
				case 0, 1, 2:
					if m.Full() {
						continue
					}
					_, exists := oracle.Get(key)
					it := m.Insert(key, value)
					require.Equal(t, !exists, it.Valid())
					if !exists {
						oracle.Put(key, value)
					}
				case 3, 4:
					if m.Full() && !m.Contains(key) {
						continue
					}
					m.InsertOrAssign(key, value)
					oracle.Put(key, value)
				case 5, 6, 7:
					require.Equal(t, oracle.Delete(key), m.EraseKey(key))
				case 8:
					it := m.Find(key)
					if it.Valid() {
						m.Erase(it)
						oracle.Delete(key)
					}
				default:
					divisor := 2 + rng.Intn(7)
					var doomed []int
					oracle.Iter(func(k int, v int) bool {
						if k%divisor == 0 {
							doomed = append(doomed, k)
						}
						return false
					})
					for _, k := range doomed {
						oracle.Delete(k)
					}

					erased := m.EraseIf(func(k int, v int) bool {
						return k%divisor == 0
					})
					require.Equal(t, len(doomed), erased)
				}

				requireMatchesOracle(t, m, oracle)
			}
		})
	}
}
