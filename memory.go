package vector

import (
	"reflect"
	"unsafe"

	"github.com/pkg/errors"
)

// ErrOutOfMemory is returned when a Memory cannot satisfy an acquisition.
var ErrOutOfMemory = errors.New("out of memory")

// Memory is the raw acquire/release primitive beneath every RawMemory.
//
// Alloc returns space for n elements of typ, suitably sized and aligned.
// The region is typed so the garbage collector keeps scanning slots that
// hold pointers. Free returns a region previously obtained from Alloc with
// the same typ and n; freeing a nil pointer is a no-op.
//
// Implementations must be safe for concurrent use by independent vectors.
type Memory interface {
	Alloc(typ reflect.Type, n int) (unsafe.Pointer, error)
	Free(ptr unsafe.Pointer, typ reflect.Type, n int)
}

// DefaultMemory acquires from the Go heap, refusing any single request above
// DefaultHeapLimit bytes. Free is a no-op and regions are reclaimed by the
// garbage collector once no vector refers to them.
//
// The Go runtime aborts the process, without a recoverable panic, when the
// operating system cannot back a request that passed the cap. Wrap the
// memory in a LimitedMemory to bound what a program can hold in total.
var DefaultMemory Memory = NewHeapMemory(DefaultHeapLimit)

// DefaultHeapLimit is the largest single acquisition DefaultMemory accepts.
const DefaultHeapLimit = uintptr(1) << min(40, unsafe.Sizeof(uintptr(0))*8-2)

// NewHeapMemory returns a Memory backed by the Go heap that rejects any
// single acquisition larger than limit bytes with ErrOutOfMemory.
func NewHeapMemory(limit uintptr) Memory {
	return heapMemory{limit: limit}
}

type heapMemory struct {
	limit uintptr
}

func (h heapMemory) Alloc(typ reflect.Type, n int) (ptr unsafe.Pointer, err error) {
	if n < 0 {
		return nil, errors.Errorf("negative element count %d", n)
	}

	if size := typ.Size(); size > 0 && uintptr(n) > h.limit/size {
		return nil, errors.Wrapf(ErrOutOfMemory, "%d elements of %s exceed %d bytes", n, typ, h.limit)
	}

	// makeslice 在长度非法时会 panic，这里转换为错误
	defer func() {
		if r := recover(); r != nil {
			ptr, err = nil, errors.Wrapf(ErrOutOfMemory, "%d elements of %s: %v", n, typ, r)
		}
	}()

	return reflect.MakeSlice(reflect.SliceOf(typ), n, n).UnsafePointer(), nil
}

func (heapMemory) Free(unsafe.Pointer, reflect.Type, int) {}

// maxAllocBytes bounds the arithmetic of a single acquisition so byte counts
// never overflow a uintptr.
const maxAllocBytes = uintptr(1) << (unsafe.Sizeof(uintptr(0))*8 - 2)

func byteSize(typ reflect.Type, n int) uintptr {
	return typ.Size() * uintptr(n)
}

// options holds configuration settings for a Vector.
type options struct {
	memory Memory
}

// Option defines a function type for configuring a Vector.
type Option func(*options)

// WithMemory specifies the Memory the vector acquires its storage from.
// Default: DefaultMemory (standard Go allocations).
func WithMemory(memory Memory) Option {
	return func(o *options) {
		o.memory = memory
	}
}

func buildOptions(ops []Option) options {
	var opts = options{
		memory: DefaultMemory,
	}
	for _, op := range ops {
		op(&opts)
	}
	if opts.memory == nil {
		opts.memory = DefaultMemory
	}
	return opts
}

// noCopy may be embedded into structs which must not be copied after first use.
// See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
