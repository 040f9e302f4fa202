package mutation

import (
	"errors"
	"maps"
	"sync"
)

// ErrMutationInFlight rejects a mutation for an entity that already has one
// pending.
var ErrMutationInFlight = errors.New("mutation already in flight")

type slot[V any] struct {
	value V
	set   bool
}

// Overlay layers optimistic values over server state, keyed by entity. The
// zero value is not usable; call [NewOverlay].
type Overlay[K comparable, V any] struct {
	mu      sync.Mutex
	values  map[K]V
	pending map[K]slot[V]
	errs    map[K]string
}

func NewOverlay[K comparable, V any]() *Overlay[K, V] {
	return &Overlay[K, V]{
		values:  make(map[K]V),
		pending: make(map[K]slot[V]),
		errs:    make(map[K]string),
	}
}

// Begin sets v for k and remembers the previous overlay value so a failure can
// restore it. It clears the row error for k.
func (o *Overlay[K, V]) Begin(k K, v V) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.pending[k]; busy {
		return ErrMutationInFlight
	}
	prev, had := o.values[k]
	o.pending[k] = slot[V]{value: prev, set: had}
	o.values[k] = v
	delete(o.errs, k)
	return nil
}

// Commit ends the mutation for k and keeps the optimistic value.
func (o *Overlay[K, V]) Commit(k K) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, k)
}

// Settle ends the mutation for k and drops its overlay value, letting server
// data show through.
func (o *Overlay[K, V]) Settle(k K) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, k)
	delete(o.values, k)
}

// Revert restores the value k had before Begin (unset stays unset) and records
// errMsg when non-empty.
func (o *Overlay[K, V]) Revert(k K, errMsg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	prev, ok := o.pending[k]
	if !ok {
		return
	}
	delete(o.pending, k)
	if prev.set {
		o.values[k] = prev.value
	} else {
		delete(o.values, k)
	}
	if errMsg != "" {
		o.errs[k] = errMsg
	}
}

// Get returns the overlay value for k.
func (o *Overlay[K, V]) Get(k K) (V, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.values[k]
	return v, ok
}

// Resolve returns the overlay value for k, or server when there is none.
func (o *Overlay[K, V]) Resolve(k K, server V) V {
	if v, ok := o.Get(k); ok {
		return v
	}
	return server
}

func (o *Overlay[K, V]) Pending(k K) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, ok := o.pending[k]
	return ok
}

// Err is the row error recorded for k by the last failed mutation.
func (o *Overlay[K, V]) Err(k K) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.errs[k]
}

func (o *Overlay[K, V]) ClearErr(k K) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.errs, k)
}

// Values returns a copy of every overlay value.
func (o *Overlay[K, V]) Values() map[K]V {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.values)
}

// Errors returns a copy of every row error.
func (o *Overlay[K, V]) Errors() map[K]string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.errs)
}
