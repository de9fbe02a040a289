package vector

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrNotCopyable is returned when a MoveOnly element would have to be copied.
var ErrNotCopyable = errors.New("element type is move-only")

// Initializer is implemented by *T for element types whose default
// construction does more than produce the zero value and may fail.
type Initializer interface {
	Init() error
}

// Destroyer is implemented by *T for element types that hold resources.
// Destroy must accept the zero value and moved-from values. Types whose
// plain assignment would share the resources Destroy releases must also
// implement Cloner or MoveOnly.
type Destroyer interface {
	Destroy()
}

// Cloner is implemented by *T for element types with a deep, fallible copy.
// Without it copying an element is plain assignment and never fails.
type Cloner[T any] interface {
	Clone() (T, error)
}

// Mover is implemented by *T for element types whose move may fail.
// MoveTo transfers the receiver into the zero-valued slot dst. On error dst
// must be left zero and the receiver intact.
// Without it moving is assignment followed by zeroing the source.
type Mover[T any] interface {
	MoveTo(dst *T) error
}

// MoveOnly is implemented by *T for element types that must never be copied.
// Such elements are relocated by move even when their move may fail.
type MoveOnly interface {
	MoveOnly()
}

// traits is the capability table of one element type, resolved once from the
// method set of *T and shared by every vector of that type.
type traits[T any] struct {
	init    func(*T) error
	destroy func(*T)
	clone   func(*T) (T, error)
	move    func(src, dst *T) error

	// relocateByMove selects move over copy when live elements change storage.
	relocateByMove bool
	moveOnly       bool
}

var traitsCache sync.Map // reflect.Type -> *traits[T]

func traitsOf[T any]() *traits[T] {
	typ := typeOf[T]()
	if tr, ok := traitsCache.Load(typ); ok {
		return tr.(*traits[T])
	}
	tr, _ := traitsCache.LoadOrStore(typ, newTraits[T]())
	return tr.(*traits[T])
}

func newTraits[T any]() *traits[T] {
	var (
		tr = &traits[T]{}
		p  = any((*T)(nil))
	)

	if _, ok := p.(Initializer); ok {
		tr.init = func(v *T) error { return any(v).(Initializer).Init() }
	}
	if _, ok := p.(Destroyer); ok {
		tr.destroy = func(v *T) { any(v).(Destroyer).Destroy() }
	}
	if _, ok := p.(Cloner[T]); ok {
		tr.clone = func(v *T) (T, error) { return any(v).(Cloner[T]).Clone() }
	}
	if _, ok := p.(Mover[T]); ok {
		tr.move = func(src, dst *T) error { return any(src).(Mover[T]).MoveTo(dst) }
	}
	_, tr.moveOnly = p.(MoveOnly)

	tr.relocateByMove = tr.move == nil || tr.moveOnly
	return tr
}

// construct builds an element in the raw slot p, by fn when given and by
// default construction otherwise. On failure p is left raw.
func (tr *traits[T]) construct(p *T, fn func(*T) error) (err error) {
	var zero T
	*p = zero

	ok := false
	defer func() {
		if !ok {
			*p = zero
		}
	}()

	switch {
	case fn != nil:
		err = fn(p)
	case tr.init != nil:
		err = tr.init(p)
	}
	ok = err == nil
	return err
}

// copyConstruct builds a copy of src in the raw slot dst.
func (tr *traits[T]) copyConstruct(dst, src *T) error {
	if tr.moveOnly {
		return errors.Wrapf(ErrNotCopyable, "copy %s", typeOf[T]())
	}
	if tr.clone == nil {
		*dst = *src
		return nil
	}

	v, err := tr.clone(src)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// moveConstruct moves src into the raw slot dst; src stays live in a
// moved-from state.
func (tr *traits[T]) moveConstruct(dst, src *T) (err error) {
	var zero T
	if tr.move == nil {
		*dst = *src
		*src = zero
		return nil
	}

	*dst = zero
	ok := false
	defer func() {
		if !ok {
			*dst = zero
		}
	}()

	err = tr.move(src, dst)
	ok = err == nil
	return err
}

// copyAssign replaces the live element dst by a copy of src. The copy is
// made before dst is touched, so a failing Clone leaves dst as it was.
func (tr *traits[T]) copyAssign(dst, src *T) error {
	if dst == src {
		return nil
	}

	var v T
	if err := tr.copyConstruct(&v, src); err != nil {
		return err
	}
	tr.destroyAt(dst)
	*dst = v
	return nil
}

// moveAssign replaces the live element dst by moving src into it. If the
// move fails dst has already been destroyed and holds the zero value.
func (tr *traits[T]) moveAssign(dst, src *T) error {
	if dst == src {
		return nil
	}

	tr.destroyAt(dst)
	return tr.moveConstruct(dst, src)
}

// copyAssignN copy-assigns src onto the live elements dst, front to back.
// A failure leaves the elements before it assigned and the rest untouched.
func (tr *traits[T]) copyAssignN(dst, src []T) error {
	if tr.clone == nil && tr.destroy == nil && !tr.moveOnly {
		copy(dst, src)
		return nil
	}
	for i := range src {
		if err := tr.copyAssign(&dst[i], &src[i]); err != nil {
			return err
		}
	}
	return nil
}

// destroyAt ends the lifetime of the element at p and returns the slot to raw.
func (tr *traits[T]) destroyAt(p *T) {
	if tr.destroy != nil {
		tr.destroy(p)
	}
	var zero T
	*p = zero
}

// destroyN destroys every element of s.
func (tr *traits[T]) destroyN(s []T) {
	if tr.destroy == nil {
		clear(s)
		return
	}
	for i := range s {
		tr.destroyAt(&s[i])
	}
}

// uninitializedDefault default-constructs every slot of dst. On failure the
// already constructed prefix is destroyed.
func (tr *traits[T]) uninitializedDefault(dst []T) error {
	if tr.init == nil {
		clear(dst)
		return nil
	}

	n := 0
	defer func() {
		if n < len(dst) {
			tr.destroyN(dst[:n])
		}
	}()
	for ; n < len(dst); n++ {
		if err := tr.construct(&dst[n], nil); err != nil {
			return err
		}
	}
	return nil
}

// uninitializedCopy copy-constructs src into the raw slots dst.
// On failure the already constructed prefix of dst is destroyed.
func (tr *traits[T]) uninitializedCopy(dst, src []T) error {
	if tr.clone == nil && !tr.moveOnly {
		copy(dst, src)
		return nil
	}

	n := 0
	defer func() {
		if n < len(src) {
			tr.destroyN(dst[:n])
		}
	}()
	for ; n < len(src); n++ {
		if err := tr.copyConstruct(&dst[n], &src[n]); err != nil {
			return err
		}
	}
	return nil
}

// uninitializedMove move-constructs src into the raw slots dst.
// On failure the already constructed prefix of dst is destroyed; sources
// moved before the failure stay moved-from.
func (tr *traits[T]) uninitializedMove(dst, src []T) error {
	if tr.move == nil {
		copy(dst, src)
		clear(src)
		return nil
	}

	n := 0
	defer func() {
		if n < len(src) {
			tr.destroyN(dst[:n])
		}
	}()
	for ; n < len(src); n++ {
		if err := tr.moveConstruct(&dst[n], &src[n]); err != nil {
			return err
		}
	}
	return nil
}

// adopt constructs the raw slot dst from a value handed over by the caller:
// copyable types are copied, move-only types are moved in.
func (tr *traits[T]) adopt(dst, value *T) error {
	if tr.moveOnly {
		return tr.moveConstruct(dst, value)
	}
	return tr.copyConstruct(dst, value)
}

// relocate moves or copies the live elements src into the raw slots dst
// following the relocation rule of the element type.
func (tr *traits[T]) relocate(dst, src []T) error {
	if tr.relocateByMove {
		return tr.uninitializedMove(dst, src)
	}
	return tr.uninitializedCopy(dst, src)
}
