package memutils

import "github.com/pkg/errors"

// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
var PowerOfTwoError error = errors.New("number must be a power of two")

// NotOwnedError is the error returned from ownership checks when a pointer was not handed out by the allocator
// it is being returned to, or was already released
var NotOwnedError error = errors.New("pointer is not a live allocation of this allocator")
