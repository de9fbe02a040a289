//go:build !vector_debug

package vector

// Bounds and precondition checks are compiled in with -tags vector_debug.
func assertf(bool, string, ...any) {}
