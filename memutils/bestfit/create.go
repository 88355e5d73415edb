package bestfit

import (
	"reflect"
	"unsafe"

	"github.com/vkngwrapper/fixedmem/memutils"
)

// Create allocates room for a T in the arena, stores value there, and returns both the Ptr (for Destroy)
// and a typed pointer to the stored value. It panics if the allocation fails.
//
// The arena is invisible to the garbage collector, so T may not contain Go pointers, slices, strings,
// maps, channels, functions or interfaces. Create panics for such types.
func Create[T any](a *Allocator, value T) (Ptr, *T) {
	checkPlaceable[T]()

	ptr := a.Alloc(int(unsafe.Sizeof(value)))
	memutils.Assert(ptr != Nil, "allocation failed")

	typed := (*T)(unsafe.Pointer(&a.arena[ptr]))
	*typed = value
	return ptr, typed
}

// Value returns a typed pointer to a T previously placed at ptr by Create
func Value[T any](a *Allocator, ptr Ptr) *T {
	checkPlaceable[T]()

	var zero T
	if int(unsafe.Sizeof(zero)) > a.Capacity(ptr) {
		memutils.Failf("%T does not fit in the allocation at %d", zero, ptr)
	}
	return (*T)(unsafe.Pointer(&a.arena[ptr]))
}

// Destroy zeroes the T at ptr and frees it. Passing Nil is a no-op.
func Destroy[T any](a *Allocator, ptr Ptr) {
	if ptr == Nil {
		return
	}

	var zero T
	*Value[T](a, ptr) = zero
	a.Free(ptr)
}

func checkPlaceable[T any]() {
	valueType := reflect.TypeFor[T]()
	memutils.Assert(!containsPointers(valueType), "%s contains pointers and cannot be placed in an arena", valueType)
	memutils.Assert(valueType.Align() <= Alignment, "%s requires %d-byte alignment", valueType, valueType.Align())
}

func containsPointers(valueType reflect.Type) bool {
	switch valueType.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Slice, reflect.String,
		reflect.Chan, reflect.Func, reflect.Interface:
		return true
	case reflect.Array:
		return valueType.Len() > 0 && containsPointers(valueType.Elem())
	case reflect.Struct:
		for i := 0; i < valueType.NumField(); i++ {
			if containsPointers(valueType.Field(i).Type) {
				return true
			}
		}
	}

	return false
}
