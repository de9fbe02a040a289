// Package vector provides a growable, contiguous, value-semantic array that
// manages its own backing storage.
//
// Storage acquisition and element lifetimes are kept apart: RawMemory owns
// slots and never touches what lives in them, Vector constructs, relocates
// and destroys elements inside a RawMemory. Element types opt into lifetime
// hooks through Initializer, Destroyer, Cloner, Mover and MoveOnly; types
// without hooks behave like plain Go values.
//
// Positions are integer indices in [Begin(), End()]. Any operation that
// reallocates, shifts or resizes storage invalidates positions, element
// pointers returned by Ref and views returned by Slice; each method says
// which of its paths do.
//
// A Vector is not safe for concurrent use.
package vector

import (
	"iter"

	"github.com/pkg/errors"
)

// Vector is a dynamic array of T. The zero value is an empty vector backed
// by DefaultMemory.
//
// Exactly Len() elements are live at any time: slots [0, Len()) hold
// constructed elements, slots [Len(), Cap()) are raw.
type Vector[T any] struct {
	_      noCopy
	data   RawMemory[T]
	size   int
	memory Memory
	tr     *traits[T]
}

// New creates an empty vector. Nothing is acquired until the first element
// is added or Reserve is called.
func New[T any](ops ...Option) *Vector[T] {
	opts := buildOptions(ops)
	return &Vector[T]{
		memory: opts.memory,
		tr:     traitsOf[T](),
	}
}

// NewSized creates a vector holding n default-constructed elements with a
// capacity of exactly n. If an element fails to construct, the ones already
// built are destroyed, the storage is released and the error is returned.
func NewSized[T any](n int, ops ...Option) (*Vector[T], error) {
	assertf(n >= 0, "negative size %d", n)

	v := New[T](ops...)
	data, err := NewRawMemory[T](v.memory, n)
	if err != nil {
		return nil, errors.Wrapf(err, "allocate %d elements", n)
	}
	if err := v.tr.uninitializedDefault(data.Window(0, n)); err != nil {
		data.Release()
		return nil, errors.Wrap(err, "construct element")
	}

	v.data = data
	v.size = n
	return v, nil
}

func (v *Vector[T]) traits() *traits[T] {
	if v.tr == nil {
		v.tr = traitsOf[T]()
	}
	return v.tr
}

func (v *Vector[T]) mem() Memory {
	if v.memory == nil {
		v.memory = DefaultMemory
	}
	return v.memory
}

// Len returns the number of live elements.
func (v *Vector[T]) Len() int {
	return v.size
}

// Cap returns the number of slots the current storage holds.
func (v *Vector[T]) Cap() int {
	return v.data.Capacity()
}

// Empty reports whether the vector has no elements.
func (v *Vector[T]) Empty() bool {
	return v.size == 0
}

// Begin returns the position of the first element.
func (v *Vector[T]) Begin() int {
	return 0
}

// End returns the position one past the last element.
func (v *Vector[T]) End() int {
	return v.size
}

// At returns the element at index.
func (v *Vector[T]) At(index int) T {
	return *v.Ref(index)
}

// Ref returns a pointer to the element at index. The pointer is invalidated
// by any operation that reallocates or shifts elements.
func (v *Vector[T]) Ref(index int) *T {
	assertf(index >= 0 && index < v.size, "index %d out of range [0, %d)", index, v.size)
	return v.data.Slot(index)
}

// Front returns the first element.
func (v *Vector[T]) Front() T {
	return v.At(0)
}

// Back returns the last element.
func (v *Vector[T]) Back() T {
	return v.At(v.size - 1)
}

// Slice returns a view of the live elements. The view aliases the storage
// and is invalidated like any position.
func (v *Vector[T]) Slice() []T {
	return v.data.Window(0, v.size)
}

// All returns an iterator over positions and elements.
//
// Example:
//
//	for index, v := range vec.All() {
//		// do something
//	}
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return v.Range
}

// Values returns an iterator over the elements.
func (v *Vector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(*v.data.Slot(i)) {
				return
			}
		}
	}
}

// Range iterates over elements using a callback function.
func (v *Vector[T]) Range(fn func(index int, v T) bool) {
	for i := 0; i < v.size; i++ {
		if !fn(i, *v.data.Slot(i)) {
			return
		}
	}
}

// Clone returns a deep copy of v with a capacity of exactly Len(). If an
// element copy fails the partial copy is destroyed and released. Vectors of
// MoveOnly elements cannot be cloned and return ErrNotCopyable.
func (v *Vector[T]) Clone() (*Vector[T], error) {
	return v.cloneWith(v.mem())
}

func (v *Vector[T]) cloneWith(memory Memory) (*Vector[T], error) {
	tr := v.traits()
	data, err := NewRawMemory[T](memory, v.size)
	if err != nil {
		return nil, errors.Wrapf(err, "allocate %d elements", v.size)
	}
	if err := tr.uninitializedCopy(data.Window(0, v.size), v.Slice()); err != nil {
		data.Release()
		return nil, errors.Wrap(err, "copy element")
	}
	return &Vector[T]{data: data, size: v.size, memory: memory, tr: tr}, nil
}

// Move transfers the storage of v into a new vector and leaves v empty.
// No element is touched.
func (v *Vector[T]) Move() *Vector[T] {
	out := &Vector[T]{
		data:   v.data.Take(),
		size:   v.size,
		memory: v.mem(),
		tr:     v.traits(),
	}
	v.size = 0
	return out
}

// Assign makes the contents of v equal to rhs.
//
// When rhs does not fit into the capacity of v, a full copy is built first
// and swapped in, so a failure leaves v untouched. Otherwise elements are
// copy-assigned in place and the tail is destroyed or copy-constructed; a
// failure there leaves v valid but with partially assigned contents.
// Positions are invalidated.
func (v *Vector[T]) Assign(rhs *Vector[T]) error {
	if v == rhs {
		return nil
	}

	tr := v.traits()
	switch {
	case rhs.size > v.Cap():
		tmp, err := rhs.cloneWith(v.mem())
		if err != nil {
			return err
		}
		v.Swap(tmp)
		tmp.Release()
	case rhs.size <= v.size:
		if err := tr.copyAssignN(v.data.Window(0, rhs.size), rhs.Slice()); err != nil {
			return errors.Wrap(err, "assign element")
		}
		tr.destroyN(v.data.Window(rhs.size, v.size))
		v.size = rhs.size
	default:
		src := rhs.Slice()
		if err := tr.copyAssignN(v.data.Window(0, v.size), src[:v.size]); err != nil {
			return errors.Wrap(err, "assign element")
		}
		if err := tr.uninitializedCopy(v.data.Window(v.size, rhs.size), src[v.size:]); err != nil {
			return errors.Wrap(err, "copy element")
		}
		v.size = rhs.size
	}
	return nil
}

// MoveAssign exchanges the contents of v and rhs.
func (v *Vector[T]) MoveAssign(rhs *Vector[T]) {
	v.Swap(rhs)
}

// Swap exchanges the entire state of v and other without touching any
// element.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.data.Swap(&other.data)
	v.size, other.size = other.size, v.size
	v.memory, other.memory = other.memory, v.memory
	v.tr, other.tr = other.tr, v.tr
}

// PushBack appends a copy of value; MoveOnly values are moved in instead.
// See EmplaceBack for guarantees.
func (v *Vector[T]) PushBack(value T) error {
	tr := v.traits()
	_, err := v.EmplaceBack(func(p *T) error {
		return tr.adopt(p, &value)
	})
	return err
}

// EmplaceBack constructs a new element at the end by fn, or by default
// construction when fn is nil, and returns a pointer to it. fn receives a
// zero-valued slot.
//
// When the storage is full the capacity doubles (starting at 1), the new
// element is built in the new storage before anything is relocated, and a
// failure at any step leaves v untouched. The one exception is a MoveOnly
// element type whose move fails during relocation: the elements moved so
// far are lost. Growth invalidates positions.
func (v *Vector[T]) EmplaceBack(fn func(*T) error) (*T, error) {
	if v.size < v.Cap() {
		p := v.data.Slot(v.size)
		if err := v.traits().construct(p, fn); err != nil {
			return nil, errors.Wrapf(err, "construct element at %d", v.size)
		}
		v.size++
		return p, nil
	}

	if err := v.reallocInsert(v.size, fn); err != nil {
		return nil, err
	}
	return v.data.Slot(v.size - 1), nil
}

// PopBack destroys the last element. The vector must not be empty.
func (v *Vector[T]) PopBack() {
	assertf(v.size > 0, "pop from empty vector")
	v.traits().destroyAt(v.data.Slot(v.size - 1))
	v.size--
}

// Insert inserts a copy of value before pos (MoveOnly values are moved in)
// and returns the position of the inserted element. See Emplace for
// guarantees.
func (v *Vector[T]) Insert(pos int, value T) (int, error) {
	tr := v.traits()
	return v.Emplace(pos, func(p *T) error {
		return tr.adopt(p, &value)
	})
}

// Emplace constructs a new element before pos by fn, or by default
// construction when fn is nil, and returns its position. pos must lie in
// [Begin(), End()].
//
// When the storage is full, the element is built in new storage, the
// elements before and after pos are relocated around it, and only then is
// the old storage released: a failure leaves v untouched.
//
// When there is spare capacity, the new element is built into a temporary
// first (a failure there leaves v untouched), then elements from pos on are
// shifted right in place. The shift is not rolled back: if an element move
// fails, v keeps Len()+1 live elements with a partially shifted tail.
//
// Both paths invalidate positions at and after pos; the first invalidates
// all of them.
func (v *Vector[T]) Emplace(pos int, fn func(*T) error) (int, error) {
	assertf(pos >= 0 && pos <= v.size, "position %d out of range [0, %d]", pos, v.size)

	if pos == v.size {
		_, err := v.EmplaceBack(fn)
		return pos, err
	}

	if v.size == v.Cap() {
		return pos, v.reallocInsert(pos, fn)
	}

	tr := v.traits()
	var tmp T
	if err := tr.construct(&tmp, fn); err != nil {
		return pos, errors.Wrapf(err, "construct element at %d", pos)
	}
	defer tr.destroyAt(&tmp)

	// 先将末尾元素移入新的尾部槽位
	if err := tr.moveConstruct(v.data.Slot(v.size), v.data.Slot(v.size-1)); err != nil {
		return pos, errors.Wrapf(err, "move element %d", v.size-1)
	}
	v.size++

	if tr.move == nil && tr.destroy == nil {
		buf := v.data.Window(0, v.size)
		copy(buf[pos+1:v.size-1], buf[pos:v.size-2])
		buf[pos] = tmp
		return pos, nil
	}

	for i := v.size - 2; i > pos; i-- {
		if err := tr.moveAssign(v.data.Slot(i), v.data.Slot(i-1)); err != nil {
			return pos, errors.Wrapf(err, "move element %d", i-1)
		}
	}
	if err := tr.moveAssign(v.data.Slot(pos), &tmp); err != nil {
		return pos, errors.Wrapf(err, "move element into %d", pos)
	}
	return pos, nil
}

// reallocInsert grows the storage and constructs a new element at pos.
func (v *Vector[T]) reallocInsert(pos int, fn func(*T) error) error {
	tr := v.traits()
	newCap := max(1, 2*v.Cap())

	newData, err := NewRawMemory[T](v.mem(), newCap)
	if err != nil {
		return errors.Wrapf(err, "grow to %d elements", newCap)
	}
	defer newData.Release()

	g := newGuard(tr)
	defer g.release()

	if err := tr.construct(newData.Slot(pos), fn); err != nil {
		return errors.Wrapf(err, "construct element at %d", pos)
	}
	g.track(newData.Window(pos, pos+1))

	if err := tr.relocate(newData.Window(0, pos), v.data.Window(0, pos)); err != nil {
		return errors.Wrap(err, "relocate elements")
	}
	g.track(newData.Window(0, pos))

	if err := tr.relocate(newData.Window(pos+1, v.size+1), v.data.Window(pos, v.size)); err != nil {
		return errors.Wrap(err, "relocate elements")
	}
	g.dismiss()

	// 新存储已就绪，销毁旧元素后交换，defer 会释放旧存储
	tr.destroyN(v.data.Window(0, v.size))
	v.data.Swap(&newData)
	v.size++
	return nil
}

// Erase removes the element at pos, shifting later elements left, and
// returns pos, which now holds the element that followed the erased one.
// pos must lie in [Begin(), End()).
//
// The shift is not rolled back: if an element move fails the error is
// returned with Len() unchanged and the shifted prefix in place; one slot
// may hold a moved-from element. Positions at and after pos are invalidated.
func (v *Vector[T]) Erase(pos int) (int, error) {
	assertf(pos >= 0 && pos < v.size, "position %d out of range [0, %d)", pos, v.size)

	tr := v.traits()
	if tr.move == nil && tr.destroy == nil {
		buf := v.data.Window(0, v.size)
		copy(buf[pos:], buf[pos+1:])
	} else {
		for i := pos; i < v.size-1; i++ {
			if err := tr.moveAssign(v.data.Slot(i), v.data.Slot(i+1)); err != nil {
				return pos, errors.Wrapf(err, "move element %d", i+1)
			}
		}
	}

	tr.destroyAt(v.data.Slot(v.size - 1))
	v.size--
	return pos, nil
}

// Reserve makes room for at least n elements. If n does not exceed Cap()
// nothing happens; otherwise the capacity becomes exactly n and the elements
// are relocated, which invalidates positions. On failure v is untouched,
// except for move-only element types whose move fails midway.
func (v *Vector[T]) Reserve(n int) error {
	if n <= v.Cap() {
		return nil
	}

	tr := v.traits()
	newData, err := NewRawMemory[T](v.mem(), n)
	if err != nil {
		return errors.Wrapf(err, "reserve %d elements", n)
	}
	defer newData.Release()

	if err := tr.relocate(newData.Window(0, v.size), v.Slice()); err != nil {
		return errors.Wrap(err, "relocate elements")
	}

	tr.destroyN(v.Slice())
	v.data.Swap(&newData)
	return nil
}

// Resize changes the number of elements to n. Shrinking destroys the tail.
// Growing reserves exactly n slots when needed and default-constructs the
// new tail; if a construction fails the new elements are destroyed and the
// old ones are left as they were, though the capacity may have grown.
// Growing past Cap() invalidates every position, Ref pointer and Slice view;
// shrinking invalidates positions at and after n.
func (v *Vector[T]) Resize(n int) error {
	assertf(n >= 0, "negative size %d", n)

	tr := v.traits()
	switch {
	case n == v.size:
	case n < v.size:
		tr.destroyN(v.data.Window(n, v.size))
		v.size = n
	default:
		if err := v.Reserve(n); err != nil {
			return err
		}
		if err := tr.uninitializedDefault(v.data.Window(v.size, n)); err != nil {
			return errors.Wrap(err, "construct element")
		}
		v.size = n
	}
	return nil
}

// Clear destroys every element and keeps the storage.
func (v *Vector[T]) Clear() {
	v.traits().destroyN(v.Slice())
	v.size = 0
}

// Release destroys every element and returns the storage to its Memory.
// The vector stays usable and starts over empty.
func (v *Vector[T]) Release() {
	v.Clear()
	v.data.Release()
}
