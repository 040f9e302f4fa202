package listctl

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet window before a search is committed.
const DefaultDebounce = 500 * time.Millisecond

// Timer is the part of *time.Timer a [Debounced] needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// DebounceOption configures a [Debounced].
type DebounceOption func(*debounceOptions)

type debounceOptions struct {
	after AfterFunc
}

// WithAfterFunc replaces time.AfterFunc, mainly for tests.
func WithAfterFunc(fn AfterFunc) DebounceOption {
	return func(o *debounceOptions) {
		if fn != nil {
			o.after = fn
		}
	}
}

// Debounced is a two-stage value. Set changes the immediate value at once; the
// committed value follows only after Wait passes with no further Set.
type Debounced[T comparable] struct {
	mu        sync.Mutex
	immediate T
	committed T
	wait      time.Duration
	after     AfterFunc
	timer     Timer
	gen       uint64
	stopped   bool
	onCommit  func(T)
}

// NewDebounced starts with initial as both values. onCommit, when non-nil, runs
// after each change of the committed value.
func NewDebounced[T comparable](initial T, wait time.Duration, onCommit func(T), opts ...DebounceOption) *Debounced[T] {
	o := debounceOptions{after: realAfterFunc}
	for _, opt := range opts {
		opt(&o)
	}
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debounced[T]{
		immediate: initial,
		committed: initial,
		wait:      wait,
		after:     o.after,
		onCommit:  onCommit,
	}
}

// Set updates the immediate value and restarts the quiet window.
func (d *Debounced[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.immediate = v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.after(d.wait, func() { d.fire(gen) })
}

func (d *Debounced[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	changed := d.committed != d.immediate
	d.committed = d.immediate
	v, cb := d.committed, d.onCommit
	d.mu.Unlock()

	if changed && cb != nil {
		cb(v)
	}
}

// Flush commits the immediate value now.
func (d *Debounced[T]) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	gen := d.gen
	d.mu.Unlock()
	d.fire(gen)
}

// Reset sets both values to v without a callback.
func (d *Debounced[T]) Reset(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	d.immediate, d.committed = v, v
}

// Value is the immediate value.
func (d *Debounced[T]) Value() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.immediate
}

// Committed is the settled value.
func (d *Debounced[T]) Committed() T {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.committed
}

// Pending reports whether a commit is scheduled.
func (d *Debounced[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels any pending commit. Later calls to Set are ignored.
func (d *Debounced[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
