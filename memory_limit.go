package vector

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/limpo1989/vector/internal"
)

// LimitedMemory caps the number of bytes held through a parent Memory.
// Acquisitions that would exceed the limit fail with ErrOutOfMemory before
// the parent is asked for anything.
type LimitedMemory struct {
	locker internal.SpinLock
	parent Memory
	limit  uintptr
	inUse  uintptr
}

// NewLimitedMemory wraps parent with a budget of limit bytes.
// A nil parent means DefaultMemory.
func NewLimitedMemory(parent Memory, limit uintptr) *LimitedMemory {
	if parent == nil {
		parent = DefaultMemory
	}
	return &LimitedMemory{parent: parent, limit: limit}
}

// Alloc implements Memory.
func (m *LimitedMemory) Alloc(typ reflect.Type, n int) (unsafe.Pointer, error) {
	if n < 0 {
		return nil, errors.Errorf("negative element count %d", n)
	}

	sz := byteSize(typ, n)
	if typ.Size() > 0 && uintptr(n) > maxAllocBytes/typ.Size() {
		return nil, errors.Wrapf(ErrOutOfMemory, "%d elements of %s", n, typ)
	}

	m.locker.Lock()
	if sz > m.limit-m.inUse {
		inUse := m.inUse
		m.locker.Unlock()
		return nil, errors.Wrapf(ErrOutOfMemory, "requested %d bytes, %d of %d in use", sz, inUse, m.limit)
	}
	m.inUse += sz
	m.locker.Unlock()

	ptr, err := m.parent.Alloc(typ, n)
	if err != nil {
		m.locker.Lock()
		m.inUse -= sz
		m.locker.Unlock()
		return nil, err
	}
	return ptr, nil
}

// Free implements Memory.
func (m *LimitedMemory) Free(ptr unsafe.Pointer, typ reflect.Type, n int) {
	if ptr == nil {
		return
	}

	m.parent.Free(ptr, typ, n)

	m.locker.Lock()
	m.inUse -= byteSize(typ, n)
	m.locker.Unlock()
}

// InUse returns the number of bytes currently acquired.
func (m *LimitedMemory) InUse() uintptr {
	m.locker.Lock()
	defer m.locker.Unlock()
	return m.inUse
}

// Limit returns the configured budget in bytes.
func (m *LimitedMemory) Limit() uintptr {
	return m.limit
}
