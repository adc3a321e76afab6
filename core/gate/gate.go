// Package gate implements the single-slot admission control that
// serializes all provider traffic. The provider endpoint is keyed per
// deployment and rate-limited; at most one generation call may be in
// flight at any time.
package gate

import (
	"errors"
	"sync/atomic"
)

// ErrBusy is returned when the slot is already held. Callers treat it as
// "try again later", never as a generation failure.
var ErrBusy = errors.New("a generation is already in flight")

// Gate is a non-blocking mutual-exclusion flag. There is no queue: a
// failed acquire returns immediately.
type Gate struct {
	held atomic.Bool
}

func New() *Gate {
	return &Gate{}
}

// TryAcquire takes the slot if it is free. It never blocks.
func (g *Gate) TryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

// Release frees the slot. Safe to call when the slot is not held.
func (g *Gate) Release() {
	g.held.Store(false)
}

// Held reports whether a call is currently in flight. Used to disable
// generate actions while one runs.
func (g *Gate) Held() bool {
	return g.held.Load()
}

// With runs fn while holding the slot, releasing it on every exit path
// including a panic inside fn. Returns ErrBusy without running fn if the
// slot is taken.
func (g *Gate) With(fn func() error) error {
	if !g.TryAcquire() {
		return ErrBusy
	}
	defer g.Release()
	return fn()
}
