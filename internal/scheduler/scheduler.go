// Package scheduler provides the delayed-task executor used to fire
// "countdown ends" and "round expires" events (spec.md §6), and the
// epoch-guard helper that makes those tasks safe to run after the game
// they were scheduled for has moved on (spec.md §5, §9).
package scheduler

import "time"

// Scheduler fires task once after delay. It may invoke task on any
// goroutine; callers must re-enter their own owning worker before
// touching shared state (spec.md §6).
type Scheduler interface {
	Schedule(delay time.Duration, task func())
}

// Real is the production Scheduler, backed by time.AfterFunc.
type Real struct{}

func (Real) Schedule(delay time.Duration, task func()) {
	time.AfterFunc(delay, task)
}

// EpochGuard returns a closure that only invokes fn if currentEpoch()
// still equals the epoch captured when the guard was built. This is the
// only correctness mechanism against races between a manual round end
// and a stale timer firing (spec.md §5 "Cancellation and timeouts").
func EpochGuard(capturedEpoch uint64, currentEpoch func() uint64, fn func()) func() {
	return func() {
		if currentEpoch() != capturedEpoch {
			return
		}
		fn()
	}
}
