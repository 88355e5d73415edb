package heap

import "github.com/vkngwrapper/fixedmem/memutils/bestfit"

// Create stores value in the heap and returns its Ptr along with a typed pointer to the stored copy.
// T must be free of Go pointers. Create panics if the heap cannot hold a T.
func Create[T any](h *Heap, value T) (bestfit.Ptr, *T) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	return bestfit.Create(h.allocator, value)
}

// Value returns a typed pointer to the T stored at ptr
func Value[T any](h *Heap, ptr bestfit.Ptr) *T {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return bestfit.Value[T](h.allocator, ptr)
}

// Delete zeroes and frees the T stored at ptr. Deleting bestfit.Nil is a no-op.
func Delete[T any](h *Heap, ptr bestfit.Ptr) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	bestfit.Destroy[T](h.allocator, ptr)
}
