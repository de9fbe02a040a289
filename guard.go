package vector

// guard destroys the elements it tracks unless dismissed. Reallocating paths
// track what they build in new storage and dismiss the guard only once every
// step has succeeded; release runs from defer, so panics are covered too.
type guard[T any] struct {
	tr      *traits[T]
	windows [][]T
	armed   bool
}

func newGuard[T any](tr *traits[T]) guard[T] {
	return guard[T]{tr: tr, armed: true}
}

// track adds a window of constructed elements.
func (g *guard[T]) track(window []T) {
	g.windows = append(g.windows, window)
}

func (g *guard[T]) dismiss() {
	g.armed = false
}

func (g *guard[T]) release() {
	if !g.armed {
		return
	}
	for _, w := range g.windows {
		g.tr.destroyN(w)
	}
	g.windows = nil
}
