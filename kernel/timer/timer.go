// Package timer is the minimal reference implementation of the
// external timer-subsystem collaborator spec.md §1 describes as
// exposing "one-shot timers that invoke a callback." kernel/thread
// depends only on the Timer interface; a bare-metal kernel would swap
// this package for a hardware timer wheel without touching
// kernel/thread at all.
package timer

import "time"

// CancelFunc stops a pending timer. It reports whether the timer was
// stopped before firing (false if it had already fired or already
// been stopped).
type CancelFunc func() bool

// Timer arms a one-shot callback after duration d.
type Timer interface {
	After(d time.Duration, cb func()) CancelFunc
}

// System is a Timer backed by time.AfterFunc — the natural stdlib
// primitive for a one-shot delayed callback. golang.org/x/time's
// rate.Limiter was considered and rejected for this role; see
// DESIGN.md.
type System struct{}

func (System) After(d time.Duration, cb func()) CancelFunc {
	t := time.AfterFunc(d, cb)
	return t.Stop
}
