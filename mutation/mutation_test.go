package mutation

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/perksAdmin/api"
	"github.com/MrEthical07/perksAdmin/resources"
)

type fakeBlockAPI struct {
	mu      sync.Mutex
	err     error
	errs    []error // consumed one per call before err
	calls   []api.BlockRequest
	entered chan struct{}
	release chan struct{}
}

func (f *fakeBlockAPI) ToggleBlock(_ context.Context, req api.BlockRequest) (*api.MessageResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	err, entered, release := f.err, f.entered, f.release
	if len(f.errs) > 0 {
		err, f.errs = f.errs[0], f.errs[1:]
	}
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	return &api.MessageResponse{Success: true}, nil
}

type fakeRefetcher struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (f *fakeRefetcher) Refetch(_ context.Context, res ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, slices.Clone(res))
	return f.err
}

type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (f *fakeNotifier) Success(_ context.Context, msg string) {
	f.mu.Lock()
	f.successes = append(f.successes, msg)
	f.mu.Unlock()
}

func (f *fakeNotifier) Error(_ context.Context, msg string) {
	f.mu.Lock()
	f.errors = append(f.errors, msg)
	f.mu.Unlock()
}

func TestOverlayBeginRevertRestoresUnset(t *testing.T) {
	o := NewOverlay[string, bool]()
	if err := o.Begin("u1", true); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if v, ok := o.Get("u1"); !ok || !v {
		t.Fatal("optimistic value not set")
	}
	o.Revert("u1", "nope")
	if _, ok := o.Get("u1"); ok {
		t.Fatal("unset must stay unset after revert")
	}
	if o.Err("u1") != "nope" {
		t.Fatalf("Err = %q", o.Err("u1"))
	}
}

func TestOverlayRevertRestoresPrevious(t *testing.T) {
	o := NewOverlay[string, bool]()
	_ = o.Begin("u1", false)
	o.Commit("u1")
	_ = o.Begin("u1", true)
	o.Revert("u1", "")
	if v, ok := o.Get("u1"); !ok || v {
		t.Fatalf("Get = %v,%v want false,true", v, ok)
	}
	if o.Err("u1") != "" {
		t.Fatal("no error recorded for empty message")
	}
}

func TestOverlayRejectsConcurrentBegin(t *testing.T) {
	o := NewOverlay[string, bool]()
	_ = o.Begin("u1", true)
	if err := o.Begin("u1", false); !errors.Is(err, ErrMutationInFlight) {
		t.Fatalf("err = %v", err)
	}
	if v, _ := o.Get("u1"); !v {
		t.Fatal("rejected begin must not touch the overlay")
	}
	if err := o.Begin("u2", false); err != nil {
		t.Fatalf("other ids are independent: %v", err)
	}
}

func TestOverlayResolve(t *testing.T) {
	o := NewOverlay[string, bool]()
	if o.Resolve("u1", true) != true {
		t.Fatal("server value should show through")
	}
	_ = o.Begin("u1", false)
	if o.Resolve("u1", true) != false {
		t.Fatal("overlay should win")
	}
	o.Settle("u1")
	if o.Resolve("u1", true) != true || o.Pending("u1") {
		t.Fatal("settle should drop the overlay")
	}
}

func TestToggleSuccessRefetchesBothLists(t *testing.T) {
	a := &fakeBlockAPI{}
	cache := &fakeRefetcher{}
	n := &fakeNotifier{}
	var outcomes []Outcome
	b := NewBlockToggler(a, cache, WithNotifier(n), WithObserver(func(o Outcome) { outcomes = append(outcomes, o) }))

	if err := b.Toggle(context.Background(), "u1", "Ann", true); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if len(a.calls) != 1 || a.calls[0] != (api.BlockRequest{Blocked: "u1", Block: true}) {
		t.Fatalf("api calls = %+v", a.calls)
	}
	if len(cache.calls) != 1 || !slices.Equal(cache.calls[0], []string{resources.Users, resources.BlockedUsers}) {
		t.Fatalf("refetch calls = %v", cache.calls)
	}
	if len(n.successes) != 1 || n.successes[0] != "Ann has been blocked" {
		t.Fatalf("successes = %v", n.successes)
	}
	if b.Overlay().Pending("u1") {
		t.Fatal("mutation should be settled")
	}
	if len(outcomes) != 1 || outcomes[0].Err != nil {
		t.Fatalf("outcomes = %+v", outcomes)
	}
}

func TestToggleUnblockDefaultName(t *testing.T) {
	n := &fakeNotifier{}
	b := NewBlockToggler(&fakeBlockAPI{}, &fakeRefetcher{}, WithNotifier(n))
	_ = b.Toggle(context.Background(), "u1", "", false)
	if len(n.successes) != 1 || n.successes[0] != "User has been unblocked" {
		t.Fatalf("successes = %v", n.successes)
	}
}

func TestToggleFailureRevertsOnlyThatRow(t *testing.T) {
	a := &fakeBlockAPI{err: &api.Error{Message: "User not found", Status: 404, Kind: api.KindServer}}
	cache := &fakeRefetcher{}
	n := &fakeNotifier{}
	b := NewBlockToggler(a, cache, WithNotifier(n))

	other := b.Overlay()
	_ = other.Begin("u2", true)
	other.Commit("u2")

	err := b.Toggle(context.Background(), "u1", "Ann", true)
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := b.Overlay().Get("u1"); ok {
		t.Fatal("u1 overlay should be reverted to unset")
	}
	if b.IsBlocked("u1", false) {
		t.Fatal("displayed state should be the server state")
	}
	if b.Overlay().Err("u1") != "User not found" {
		t.Fatalf("row error = %q", b.Overlay().Err("u1"))
	}
	if v, ok := b.Overlay().Get("u2"); !ok || !v || b.Overlay().Err("u2") != "" {
		t.Fatal("other rows must be untouched")
	}
	if len(cache.calls) != 0 {
		t.Fatal("no refetch on failure")
	}
	if len(n.errors) != 1 || n.errors[0] != "User not found" {
		t.Fatalf("errors = %v", n.errors)
	}
}

func TestToggleNetworkFailureFallbackMessage(t *testing.T) {
	a := &fakeBlockAPI{err: errors.New("dial tcp: refused")}
	b := NewBlockToggler(a, &fakeRefetcher{})
	_ = b.Toggle(context.Background(), "u1", "", true)
	if got := b.Overlay().Err("u1"); got != blockFailedMessage {
		t.Fatalf("row error = %q", got)
	}
}

func TestToggleUnauthorizedHasNoRowError(t *testing.T) {
	a := &fakeBlockAPI{err: &api.Error{Message: "expired", Status: 401, Kind: api.KindUnauthorized}}
	n := &fakeNotifier{}
	b := NewBlockToggler(a, &fakeRefetcher{}, WithNotifier(n))
	err := b.Toggle(context.Background(), "u1", "", true)
	if !api.IsUnauthorized(err) {
		t.Fatalf("err = %v", err)
	}
	if b.Overlay().Err("u1") != "" || len(n.errors) != 0 {
		t.Fatal("401 must not surface inline")
	}
	if _, ok := b.Overlay().Get("u1"); ok {
		t.Fatal("overlay should be reverted")
	}
}

func TestToggleInFlightRejected(t *testing.T) {
	a := &fakeBlockAPI{entered: make(chan struct{}, 1), release: make(chan struct{})}
	var mu sync.Mutex
	var outcomes []Outcome
	b := NewBlockToggler(a, &fakeRefetcher{}, WithObserver(func(o Outcome) {
		mu.Lock()
		outcomes = append(outcomes, o)
		mu.Unlock()
	}))

	done := make(chan error, 1)
	go func() { done <- b.Toggle(context.Background(), "u1", "", true) }()
	<-a.entered

	if err := b.Toggle(context.Background(), "u1", "", false); !errors.Is(err, ErrMutationInFlight) {
		t.Fatalf("err = %v", err)
	}
	if v, _ := b.Overlay().Get("u1"); !v {
		t.Fatal("rejected toggle changed the overlay")
	}

	close(a.release)
	if err := <-done; err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if len(a.calls) != 1 {
		t.Fatalf("api calls = %d, want 1", len(a.calls))
	}
	mu.Lock()
	defer mu.Unlock()
	if len(outcomes) != 2 || !outcomes[0].Rejected {
		t.Fatalf("outcomes = %+v", outcomes)
	}
}

func TestToggleRefetchFailureKeepsOptimisticValue(t *testing.T) {
	b := NewBlockToggler(&fakeBlockAPI{}, &fakeRefetcher{err: errors.New("offline")})
	if err := b.Toggle(context.Background(), "u1", "", true); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if v, ok := b.Overlay().Get("u1"); !ok || !v {
		t.Fatal("accepted change should keep showing")
	}
	if b.Overlay().Pending("u1") {
		t.Fatal("mutation should not stay pending")
	}
}

func TestToggleRetriesTemporaryFailureOnce(t *testing.T) {
	unavailable := &api.Error{Message: "Service unavailable", Status: 503, Kind: api.KindServer}
	a := &fakeBlockAPI{errs: []error{unavailable}}
	cache := &fakeRefetcher{}
	n := &fakeNotifier{}
	b := NewBlockToggler(a, cache, WithNotifier(n), WithRetry(1, time.Millisecond))

	if err := b.Toggle(context.Background(), "u1", "Jane", true); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if len(a.calls) != 2 {
		t.Fatalf("api calls = %d, want 2", len(a.calls))
	}
	if len(cache.calls) != 1 || len(n.successes) != 1 || len(n.errors) != 0 {
		t.Fatalf("refetches=%d successes=%v errors=%v", len(cache.calls), n.successes, n.errors)
	}
}

func TestToggleRevertsAfterRetryExhausted(t *testing.T) {
	a := &fakeBlockAPI{err: &api.Error{Message: "Service unavailable", Status: 503, Kind: api.KindServer}}
	b := NewBlockToggler(a, &fakeRefetcher{}, WithRetry(1, time.Millisecond))

	if err := b.Toggle(context.Background(), "u1", "", true); err == nil {
		t.Fatal("expected error")
	}
	if len(a.calls) != 2 {
		t.Fatalf("api calls = %d, want 2", len(a.calls))
	}
	if b.IsBlocked("u1", false) {
		t.Fatal("overlay not reverted")
	}
}

func TestToggleDoesNotRetryClientErrors(t *testing.T) {
	a := &fakeBlockAPI{err: &api.Error{Message: "User not found", Status: 404, Kind: api.KindServer}}
	b := NewBlockToggler(a, &fakeRefetcher{}, WithRetry(3, time.Millisecond))

	_ = b.Toggle(context.Background(), "u1", "", true)
	if len(a.calls) != 1 {
		t.Fatalf("api calls = %d, want 1", len(a.calls))
	}
}
