package hash

import (
	"reflect"
	"unsafe"

	cerrors "github.com/cockroachdb/errors"
)

// Default returns the default hash function for K. Named types are hashed by their underlying kind, so
// enum-style types such as `type Color uint8` are supported without registration. Default panics for
// kinds that have no default hasher (structs, arrays, interfaces, channels, complex numbers); supply a
// custom Func for those.
//
// Float keys hash their bit pattern, so +0.0 and -0.0 compare equal but hash differently.
// Maps that need signed zeros to collide should normalize keys or pass a custom
// hasher via unordered.WithHasher.
func Default[K comparable]() Func[K] {
	keyType := reflect.TypeFor[K]()

	switch keyType.Kind() {
	case reflect.Bool:
		return func(key K) uint32 { return Bool(*(*bool)(unsafe.Pointer(&key))) }
	case reflect.Int8:
		return func(key K) uint32 { return Int8(*(*int8)(unsafe.Pointer(&key))) }
	case reflect.Uint8:
		return func(key K) uint32 { return Uint8(*(*uint8)(unsafe.Pointer(&key))) }
	case reflect.Int16:
		return func(key K) uint32 { return Int16(*(*int16)(unsafe.Pointer(&key))) }
	case reflect.Uint16:
		return func(key K) uint32 { return Uint16(*(*uint16)(unsafe.Pointer(&key))) }
	case reflect.Int32:
		return func(key K) uint32 { return Int32(*(*int32)(unsafe.Pointer(&key))) }
	case reflect.Uint32:
		return func(key K) uint32 { return Uint32(*(*uint32)(unsafe.Pointer(&key))) }
	case reflect.Int:
		return func(key K) uint32 { return Int(*(*int)(unsafe.Pointer(&key))) }
	case reflect.Uint:
		return func(key K) uint32 { return Uint32(uint32(*(*uint)(unsafe.Pointer(&key)))) }
	case reflect.Uintptr:
		return func(key K) uint32 { return Uint32(uint32(*(*uintptr)(unsafe.Pointer(&key)))) }
	case reflect.Int64:
		return func(key K) uint32 { return Int64(*(*int64)(unsafe.Pointer(&key))) }
	case reflect.Uint64:
		return func(key K) uint32 { return Uint64(*(*uint64)(unsafe.Pointer(&key))) }
	case reflect.Float32:
		return func(key K) uint32 { return Float32(*(*float32)(unsafe.Pointer(&key))) }
	case reflect.Float64:
		return func(key K) uint32 { return Float64(*(*float64)(unsafe.Pointer(&key))) }
	case reflect.String:
		return func(key K) uint32 { return String(*(*string)(unsafe.Pointer(&key))) }
	case reflect.Pointer, reflect.UnsafePointer:
		return func(key K) uint32 {
			return Uint32(uint32(uintptr(*(*unsafe.Pointer)(unsafe.Pointer(&key)))))
		}
	}

	panic(cerrors.AssertionFailedf("no default hash function for key type %s", keyType))
}

// Make hashes a single value with the default hash function for its type
func Make[K comparable](value K) uint32 {
	return Default[K]()(value)
}
