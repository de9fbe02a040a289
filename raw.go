package vector

import (
	"reflect"
	"unsafe"
)

// RawMemory owns a block of storage sized for Capacity() elements of T.
// It knows nothing about element lifetimes: it never constructs, destroys or
// inspects what lives in its slots. Slots handed out by a fresh RawMemory
// hold the zero value of T.
//
// A RawMemory must not be copied after first use: two copies would release
// the same region. Use Take to move it and Swap to exchange it.
type RawMemory[T any] struct {
	memory Memory
	buf    []T
}

// NewRawMemory acquires storage for capacity elements from memory.
// A capacity of zero acquires nothing. On failure nothing is retained.
func NewRawMemory[T any](memory Memory, capacity int) (RawMemory[T], error) {
	if memory == nil {
		memory = DefaultMemory
	}

	r := RawMemory[T]{memory: memory}
	if capacity <= 0 {
		return r, nil
	}

	ptr, err := memory.Alloc(typeOf[T](), capacity)
	if err != nil {
		return r, err
	}

	r.buf = unsafe.Slice((*T)(ptr), capacity)
	return r, nil
}

// Release returns the storage to its Memory. Releasing empty storage is a no-op.
func (r *RawMemory[T]) Release() {
	if r.buf == nil {
		return
	}

	ptr := unsafe.Pointer(unsafe.SliceData(r.buf))
	n := len(r.buf)
	r.buf = nil
	r.memory.Free(ptr, typeOf[T](), n)
}

// Capacity returns the number of element slots.
func (r *RawMemory[T]) Capacity() int {
	return len(r.buf)
}

// Memory returns the primitive the storage was acquired from.
func (r *RawMemory[T]) Memory() Memory {
	if r.memory == nil {
		return DefaultMemory
	}
	return r.memory
}

// Slot returns the address of the offset-th slot.
func (r *RawMemory[T]) Slot(offset int) *T {
	assertf(offset >= 0 && offset < len(r.buf), "slot %d out of range [0, %d)", offset, len(r.buf))
	return &r.buf[offset]
}

// Window returns slots [from, to). to may equal Capacity(), so the
// one-past-end position yields an empty window.
func (r *RawMemory[T]) Window(from, to int) []T {
	assertf(0 <= from && from <= to && to <= len(r.buf), "window [%d, %d) out of range [0, %d]", from, to, len(r.buf))
	return r.buf[from:to:to]
}

// Swap exchanges the storage of r and other without touching any slot.
func (r *RawMemory[T]) Swap(other *RawMemory[T]) {
	r.memory, other.memory = other.memory, r.memory
	r.buf, other.buf = other.buf, r.buf
}

// Take moves the storage out of r, leaving r empty.
func (r *RawMemory[T]) Take() RawMemory[T] {
	out := RawMemory[T]{memory: r.memory, buf: r.buf}
	r.buf = nil
	return out
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
