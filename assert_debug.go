//go:build vector_debug

package vector

import "fmt"

func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("vector: "+format, args...))
	}
}
