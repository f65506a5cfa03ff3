package cycle

import "sync/atomic"

// Param is a hot-reloadable parameter value (§9 "Parameter hot-reload"):
// writers stage a new value at any time from the config-reload goroutine,
// and readers on the tick thread always see either the previous or the new
// value, never a partial write, via an atomic pointer swap. The swap itself
// only becomes visible to the tick thread at the next Load — never mid-tick.
type Param[T any] struct {
	p atomic.Pointer[T]
}

// NewParam constructs a Param already holding initial.
func NewParam[T any](initial T) *Param[T] {
	p := &Param[T]{}
	p.p.Store(&initial)
	return p
}

// Load returns the parameter's current value as of this call.
func (p *Param[T]) Load() T {
	v := p.p.Load()
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Store stages a new value, visible to the next Load call. Safe to call
// from any goroutine; modules should only ever Load, never Store, their own
// parameters from inside Cycle.
func (p *Param[T]) Store(v T) {
	p.p.Store(&v)
}
