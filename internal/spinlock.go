package internal

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is a tiny lock for critical sections that only touch a few words,
// such as the byte budget shared by every vector using one Memory.
// The zero value is unlocked.
type SpinLock struct {
	state atomic.Int32
}

func (sl *SpinLock) Lock() {
	var backoff = 1
	const maxBackoff = 16

	for !sl.TryLock() {
		// Leverage the exponential backoff algorithm, see https://en.wikipedia.org/wiki/Exponential_backoff.
		for i := 0; i < backoff; i++ {
			runtime.Gosched()
		}
		if backoff < maxBackoff {
			backoff <<= 1
		}
	}
}

// TryLock acquires the lock without spinning and reports whether it succeeded.
func (sl *SpinLock) TryLock() bool {
	return sl.state.CompareAndSwap(0, 1)
}

func (sl *SpinLock) Unlock() {
	if sl.state.Swap(0) == 0 {
		panic("unlock of unlocked spinlock")
	}
}
