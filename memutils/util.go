package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~int32 | ~uint | ~uint32
}

// CheckPow2 returns nil if number is a positive power of two and an error wrapping PowerOfTwoError otherwise
func CheckPow2[T Number](number T, name string) error {
	if number <= 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// Assert panics with an assertion failure if condition is false. It is used for precondition violations:
// conditions that indicate a bug in the caller rather than a recoverable state.
func Assert(condition bool, format string, args ...any) {
	if !condition {
		panic(cerrors.AssertionFailedf(format, args...))
	}
}

// Failf panics with an assertion failure. Hot paths test their condition inline and call Failf only
// once it fails.
func Failf(format string, args ...any) {
	panic(cerrors.AssertionFailedf(format, args...))
}

// AlignUp rounds value up to the next multiple of alignment, which must be a power of two
func AlignUp(value int, alignment uint) int {
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

// Validatable is anything that can check its own internal consistency. DebugValidate accepts one.
type Validatable interface {
	Validate() error
}
