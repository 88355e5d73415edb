//go:build debug_mem_utils

package memutils

import "encoding/binary"

const (
	// DebugChecks is true when memutils is built with the debug_mem_utils build tag. Consumers use it to gate
	// expensive consistency checks, such as ownership checks on every free.
	DebugChecks = true
	// freedMagicValue is a 4-byte pattern written over released memory so that writes through stale
	// pointers can be detected when the memory is handed out again
	freedMagicValue uint32 = 0x7F84E666
)

// WriteMagicValue writes an easy-to-identify marker across every full word of data.
// This method no-ops unless the debug_mem_utils build tag is present.
func WriteMagicValue(data []byte) {
	for len(data) >= 4 {
		binary.LittleEndian.PutUint32(data, freedMagicValue)
		data = data[4:]
	}
}

// ValidateMagicValue verifies that the easy-to-identify marker written by WriteMagicValue is still present
// across data. It returns true if the value is still present and false otherwise.
// This method no-ops unless the debug_mem_utils build tag is present.
func ValidateMagicValue(data []byte) bool {
	for len(data) >= 4 {
		if binary.LittleEndian.Uint32(data) != freedMagicValue {
			return false
		}
		data = data[4:]
	}

	return true
}

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_mem_utils build tag is present
func DebugValidate(validatable Validatable) {
	err := validatable.Validate()
	if err != nil {
		panic(err)
	}
}

// DebugCheckPow2 will verify that the numerical value passed in is a power of two, and panics if it is not.
// This method no-ops unless the debug_mem_utils build tag is present.
func DebugCheckPow2[T Number](value T, name string) {
	err := CheckPow2[T](value, name)
	if err != nil {
		panic(err)
	}
}
