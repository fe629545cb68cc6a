// Package inflight guards operations that must not overlap with
// themselves, such as a second save while the first is still running.
package inflight

import "sync/atomic"

type Flag struct {
	busy atomic.Bool
}

// TryStart claims the flag. It returns false when the operation is
// already running; the caller must not proceed and must not call Done.
func (f *Flag) TryStart() bool {
	return f.busy.CompareAndSwap(false, true)
}

func (f *Flag) Done() {
	f.busy.Store(false)
}

func (f *Flag) Busy() bool {
	return f.busy.Load()
}
