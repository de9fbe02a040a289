package vector

import (
	"github.com/pkg/errors"
)

var errInjected = errors.New("injected failure")

// ledger counts element lifetimes of the test element types below.
// Tests in this package do not run in parallel.
type ledger struct {
	constructed int
	destroyed   int
	moved       int
	// ops fail once budget reaches zero; negative means never.
	budget     int
	moveBudget int
}

var lg ledger

func resetLedger() {
	lg = ledger{budget: -1, moveBudget: -1}
}

func (l *ledger) live() int {
	return l.constructed - l.destroyed
}

func (l *ledger) spend() error {
	if l.budget == 0 {
		return errInjected
	}
	if l.budget > 0 {
		l.budget--
	}
	return nil
}

func (l *ledger) spendMove() error {
	if l.moveBudget == 0 {
		return errInjected
	}
	if l.moveBudget > 0 {
		l.moveBudget--
	}
	return nil
}

// counted has a fallible default constructor and copy, and an infallible
// move, so it is relocated by move.
type counted struct {
	val  int
	live bool
}

func (c *counted) Init() error {
	if err := lg.spend(); err != nil {
		return err
	}
	c.val = 7
	c.live = true
	lg.constructed++
	return nil
}

func (c *counted) Clone() (counted, error) {
	if err := lg.spend(); err != nil {
		return counted{}, err
	}
	lg.constructed++
	return counted{val: c.val, live: true}, nil
}

func (c *counted) Destroy() {
	if c.live {
		lg.destroyed++
		c.live = false
	}
}

// fragile can fail to move as well as to copy, so it is relocated by copy.
type fragile struct {
	val  int
	live bool
}

func (f *fragile) Clone() (fragile, error) {
	if err := lg.spend(); err != nil {
		return fragile{}, err
	}
	lg.constructed++
	return fragile{val: f.val, live: true}, nil
}

func (f *fragile) MoveTo(dst *fragile) error {
	if err := lg.spendMove(); err != nil {
		return err
	}
	lg.moved++
	*dst = *f
	f.live = false
	return nil
}

func (f *fragile) Destroy() {
	if f.live {
		lg.destroyed++
		f.live = false
	}
}

// handle is move-only: it has a fallible move and cannot be copied.
type handle struct {
	val  int
	live bool
}

func (h *handle) MoveOnly() {}

func (h *handle) MoveTo(dst *handle) error {
	if err := lg.spendMove(); err != nil {
		return err
	}
	lg.moved++
	*dst = *h
	h.live = false
	return nil
}

func (h *handle) Destroy() {
	if h.live {
		lg.destroyed++
		h.live = false
	}
}

func values[T any](v *Vector[T]) []T {
	out := make([]T, 0, v.Len())
	for e := range v.Values() {
		out = append(out, e)
	}
	return out
}

func vals[E interface{ counted | fragile }](v *Vector[E]) []int {
	out := make([]int, 0, v.Len())
	for _, e := range v.Slice() {
		switch e := any(e).(type) {
		case counted:
			out = append(out, e.val)
		case fragile:
			out = append(out, e.val)
		}
	}
	return out
}
