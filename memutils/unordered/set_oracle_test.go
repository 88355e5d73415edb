package unordered_test

import (
	"math/rand"
	"strconv"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/fixedmem/memutils/unordered"
)

func requireSetMatchesOracle(t *testing.T, s *unordered.Set[string], oracle mapset.Set[string]) {
	require.NoError(t, s.Validate())
	require.Equal(t, oracle.Cardinality(), s.Size())

	oracle.Each(func(key string) bool {
		require.True(t, s.Contains(key), "key %s", key)
		return false
	})

	for key := range s.All() {
		require.True(t, oracle.Contains(key), "key %s", key)
	}
}

func TestSetMatchesOracle(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	s := unordered.NewSet[string](32)
	other := unordered.NewSet[string](32)
	oracle := mapset.NewThreadUnsafeSet[string]()
	otherOracle := mapset.NewThreadUnsafeSet[string]()

	for step := 0; step < 2000; step++ {
		key := "id" + strconv.Itoa(rng.Intn(48))

		switch rng.Intn(12) {
		case 0, 1, 2, 3:
			if s.Full() {
				continue
			}
			it := s.Insert(key)
			require.Equal(t, oracle.Add(key), it.Valid())
		case 4, 5, 6:
			require.Equal(t, oracle.Contains(key), s.EraseKey(key))
			oracle.Remove(key)
		case 7:
			if !other.Full() {
				other.Insert(key)
				otherOracle.Add(key)
			}
		case 8:
			if oracle.Union(otherOracle).Cardinality() > s.MaxSize() {
				continue
			}
			s.Merge(&other.ISet)
			oracle = oracle.Union(otherOracle)
			otherOracle.Clear()
			require.True(t, other.Empty())
		case 9:
			suffix := strconv.Itoa(rng.Intn(10))
			var doomed []string
			oracle.Each(func(k string) bool {
				if k[len(k)-1:] == suffix {
					doomed = append(doomed, k)
				}
				return false
			})
			for _, k := range doomed {
				oracle.Remove(k)
			}

			erased := s.EraseIf(func(k string) bool {
				return k[len(k)-1:] == suffix
			})
			require.Equal(t, len(doomed), erased)
		default:
			require.Equal(t, oracle.Contains(key), s.Contains(key))
		}

		requireSetMatchesOracle(t, s, oracle)
		requireSetMatchesOracle(t, other, otherOracle)
	}
}
