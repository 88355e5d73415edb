// Package hash provides the FNV-1a based hash functions used by the open-addressing containers in
// memutils/unordered. All functions return 32-bit hashes; the containers mask them down to a slot index.
package hash

import (
	"encoding/binary"
	"math"
	"unsafe"
)

const (
	basis uint32 = 0x811C9DC5
	prime uint32 = 0x01000193

	// scalarSeed is basis*prime mod 2^32: the state after one FNV-1a multiply of the offset basis
	scalarSeed uint32 = 0x050C5D1F
)

// Func computes the hash of a key
type Func[K any] func(key K) uint32

// Uint32 is the base hasher that every scalar of 32 bits or fewer is funneled through:
// a single FNV-1a round over the whole value.
func Uint32(value uint32) uint32 {
	return scalarSeed ^ value
}

func Bool(value bool) uint32 {
	if value {
		return Uint32(1)
	}
	return Uint32(0)
}

// Int8 hashes a signed byte. Negative values are sign-extended before hashing.
func Int8(value int8) uint32 {
	return Uint32(uint32(int32(value)))
}

func Uint8(value uint8) uint32 {
	return Uint32(uint32(value))
}

func Int16(value int16) uint32 {
	return Uint32(uint32(int32(value)))
}

func Uint16(value uint16) uint32 {
	return Uint32(uint32(value))
}

func Int32(value int32) uint32 {
	return Uint32(uint32(value))
}

// Int hashes the low 32 bits of value, so that int keys hash the same on every platform
func Int(value int) uint32 {
	return Uint32(uint32(value))
}

// Uint64 hashes the little-endian bytes of value with ArrayHash
func Uint64(value uint64) uint32 {
	var buffer [8]byte
	binary.LittleEndian.PutUint64(buffer[:], value)
	return ArrayHash(buffer[:])
}

func Int64(value int64) uint32 {
	return Uint64(uint64(value))
}

func Float32(value float32) uint32 {
	var buffer [4]byte
	binary.LittleEndian.PutUint32(buffer[:], math.Float32bits(value))
	return ArrayHash(buffer[:])
}

func Float64(value float64) uint32 {
	return Uint64(math.Float64bits(value))
}

// Pointer hashes the address of ptr, truncated to 32 bits
func Pointer[T any](ptr *T) uint32 {
	return Uint32(uint32(uintptr(unsafe.Pointer(ptr))))
}

func String(value string) uint32 {
	return ArrayHash(unsafe.Slice(unsafe.StringData(value), len(value)))
}

func Bytes(value []byte) uint32 {
	return ArrayHash(value)
}

// ArrayHash is the FNV-1a fallback for blobs. Whole 32-bit little-endian words are folded in one
// at a time; any 1-3 trailing bytes are assembled first-byte-high into one final word.
func ArrayHash(data []byte) uint32 {
	result := basis

	for len(data) >= 4 {
		result *= prime
		result ^= binary.LittleEndian.Uint32(data)
		data = data[4:]
	}

	if len(data) > 0 {
		value := uint32(data[0])
		for _, b := range data[1:] {
			value = (value << 8) + uint32(b)
		}

		result *= prime
		result ^= value
	}

	return result
}

// Combine folds the hash of value into result. The combination is order-dependent.
func Combine[K comparable](value K, result *uint32) {
	CombineHash(Make(value), result)
}

// CombineHash folds an already-computed hash into result
func CombineHash(hash uint32, result *uint32) {
	*result *= prime
	*result ^= hash
}
