package listctl

import (
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"
)

type fakeTimers struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	owner   *fakeTimers
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (ft *fakeTimers) AfterFunc(d time.Duration, f func()) Timer {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	t := &fakeTimer{owner: ft, at: ft.now + d, f: f}
	ft.timers = append(ft.timers, t)
	return t
}

func (ft *fakeTimers) Advance(d time.Duration) {
	ft.mu.Lock()
	ft.now += d
	var due []func()
	for _, t := range ft.timers {
		if !t.stopped && !t.fired && t.at <= ft.now {
			t.fired = true
			due = append(due, t.f)
		}
	}
	ft.mu.Unlock()
	for _, f := range due {
		f()
	}
}

func TestSchemaDecodeDefaultsAndInvalid(t *testing.T) {
	s := Schema{
		IntField("page", 1, 1),
		OneOfInt("pageSize", 10, DefaultPageSizes),
		TextField("search", ""),
		OneOf("filter", "all", "all", "unread"),
	}
	tests := []struct {
		name string
		in   url.Values
		want Values
	}{
		{"empty", url.Values{}, Values{"page": "1", "pageSize": "10", "search": "", "filter": "all"}},
		{"valid", url.Values{"page": {"3"}, "pageSize": {"50"}, "search": {" ann "}, "filter": {"unread"}},
			Values{"page": "3", "pageSize": "50", "search": "ann", "filter": "unread"}},
		{"invalid", url.Values{"page": {"-2"}, "pageSize": {"7"}, "search": {"  "}, "filter": {"bogus"}},
			Values{"page": "1", "pageSize": "10", "search": "", "filter": "all"}},
		{"garbage page", url.Values{"page": {"two"}}, Values{"page": "1", "pageSize": "10", "search": "", "filter": "all"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Decode(tt.in)
			for k, v := range tt.want {
				if got[k] != v {
					t.Fatalf("%s = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestSchemaEncodeOmitsDefaults(t *testing.T) {
	s := Schema{IntField("page", 1, 1), OneOfInt("pageSize", 10, DefaultPageSizes), TextField("search", "")}
	if got := s.Encode(Values{"page": "1", "pageSize": "10", "search": ""}); len(got) != 0 {
		t.Fatalf("defaults encoded: %v", got)
	}
	got := s.Encode(Values{"page": "2", "pageSize": "10", "search": "bob smith"})
	if got.Encode() != "page=2&search=bob+smith" {
		t.Fatalf("Encode = %q", got.Encode())
	}
}

func TestDebounceCoalescesBurst(t *testing.T) {
	ft := &fakeTimers{}
	var commits []string
	d := NewDebounced("", DefaultDebounce, func(v string) { commits = append(commits, v) }, WithAfterFunc(ft.AfterFunc))

	d.Set("ab")
	ft.Advance(100 * time.Millisecond)
	d.Set("abc")
	ft.Advance(100 * time.Millisecond)
	d.Set("abcd")

	if d.Value() != "abcd" || d.Committed() != "" {
		t.Fatalf("value=%q committed=%q", d.Value(), d.Committed())
	}
	ft.Advance(499 * time.Millisecond)
	if len(commits) != 0 {
		t.Fatalf("committed early: %v", commits)
	}
	ft.Advance(time.Millisecond)
	if len(commits) != 1 || commits[0] != "abcd" || d.Committed() != "abcd" {
		t.Fatalf("commits = %v", commits)
	}
	if d.Pending() {
		t.Fatal("nothing should be pending")
	}
}

func TestDebounceNoCallbackWhenUnchanged(t *testing.T) {
	ft := &fakeTimers{}
	calls := 0
	d := NewDebounced("x", time.Second, func(string) { calls++ }, WithAfterFunc(ft.AfterFunc))
	d.Set("y")
	d.Set("x")
	ft.Advance(time.Second)
	if calls != 0 {
		t.Fatalf("calls = %d", calls)
	}
}

func TestDebounceStopAndFlush(t *testing.T) {
	ft := &fakeTimers{}
	var commits []string
	d := NewDebounced("", time.Second, func(v string) { commits = append(commits, v) }, WithAfterFunc(ft.AfterFunc))

	d.Set("a")
	d.Flush()
	if len(commits) != 1 || commits[0] != "a" {
		t.Fatalf("flush commits = %v", commits)
	}

	d.Set("b")
	d.Stop()
	ft.Advance(2 * time.Second)
	d.Set("c")
	ft.Advance(2 * time.Second)
	if len(commits) != 1 || d.Committed() != "a" {
		t.Fatalf("commits after stop = %v", commits)
	}
}

func TestDebounceRealTimer(t *testing.T) {
	done := make(chan string, 1)
	d := NewDebounced("", 10*time.Millisecond, func(v string) { done <- v })
	d.Set("q")
	select {
	case v := <-done:
		if v != "q" {
			t.Fatalf("committed %q", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no commit")
	}
}

type recorder struct {
	mu      sync.Mutex
	urls    []url.Values
	queries []ListQuery
}

func (r *recorder) url(v url.Values) {
	r.mu.Lock()
	r.urls = append(r.urls, v)
	r.mu.Unlock()
}

func (r *recorder) query(q ListQuery) {
	r.mu.Lock()
	r.queries = append(r.queries, q)
	r.mu.Unlock()
}

func (r *recorder) last() (url.Values, ListQuery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.urls[len(r.urls)-1], r.queries[len(r.queries)-1]
}

func newController(t *testing.T, initial url.Values, opts ...ControllerOption) (*Controller, *recorder, *fakeTimers) {
	t.Helper()
	ft := &fakeTimers{}
	rec := &recorder{}
	opts = append([]ControllerOption{
		WithDebounce(DefaultDebounce, ft.AfterFunc),
		OnURLChange(rec.url),
		OnQueryChange(rec.query),
	}, opts...)
	c := NewController(initial, opts...)
	t.Cleanup(c.Close)
	return c, rec, ft
}

func TestControllerRestoresFromURL(t *testing.T) {
	c, _, _ := newController(t, url.Values{"page": {"3"}, "pageSize": {"25"}, "search": {"ann"}})
	q := c.Query()
	if q.Page != 3 || q.PageSize != 25 || q.Search != "ann" {
		t.Fatalf("query = %+v", q)
	}
	if c.SearchInput() != "ann" {
		t.Fatalf("input = %q", c.SearchInput())
	}
	if c.URLValues().Encode() != "page=3&pageSize=25&search=ann" {
		t.Fatalf("url = %q", c.URLValues().Encode())
	}
}

func TestControllerPageSizeResetsPage(t *testing.T) {
	c, rec, _ := newController(t, url.Values{"page": {"3"}})
	c.SetTotalPages(5)

	if err := c.SetPageSize(50); err != nil {
		t.Fatalf("SetPageSize: %v", err)
	}
	u, q := rec.last()
	if q.Page != 1 || q.PageSize != 50 {
		t.Fatalf("query = %+v", q)
	}
	if u.Has("page") || u.Get("pageSize") != "50" {
		t.Fatalf("url = %v", u)
	}
}

func TestControllerRejectsUnknownPageSize(t *testing.T) {
	c, rec, _ := newController(t, nil)
	if err := c.SetPageSize(30); !errors.Is(err, ErrPageSize) {
		t.Fatalf("err = %v", err)
	}
	if len(rec.queries) != 0 {
		t.Fatal("no change expected")
	}
}

func TestControllerSearchCommitsOnceAndResetsPage(t *testing.T) {
	c, rec, ft := newController(t, nil)
	c.SetPage(4)
	before := len(rec.queries)

	c.SetSearch("ab")
	c.SetSearch("abc")
	c.SetSearch("abcd")
	if c.Query().Search != "" || c.SearchInput() != "abcd" {
		t.Fatalf("query=%+v input=%q", c.Query(), c.SearchInput())
	}
	if len(rec.queries) != before {
		t.Fatal("query changed before the quiet window")
	}

	ft.Advance(DefaultDebounce)
	if len(rec.queries) != before+1 {
		t.Fatalf("queries published = %d, want 1", len(rec.queries)-before)
	}
	u, q := rec.last()
	if q.Search != "abcd" || q.Page != 1 {
		t.Fatalf("query = %+v", q)
	}
	if u.Get("search") != "abcd" || u.Has("page") {
		t.Fatalf("url = %v", u)
	}
}

func TestControllerPrevNextBounds(t *testing.T) {
	c, rec, _ := newController(t, nil)
	if c.Prev() {
		t.Fatal("Prev on page 1 must be a no-op")
	}
	c.SetTotalPages(2)
	if !c.Next() || c.Query().Page != 2 {
		t.Fatalf("Next: page = %d", c.Query().Page)
	}
	if c.Next() {
		t.Fatal("Next on last page must be a no-op")
	}
	if !c.Prev() || c.Query().Page != 1 {
		t.Fatal("Prev should return to page 1")
	}
	if len(rec.queries) != 2 {
		t.Fatalf("published %d, want 2", len(rec.queries))
	}
}

func TestControllerSetTotalPagesClamps(t *testing.T) {
	c, rec, _ := newController(t, url.Values{"page": {"9"}})
	c.SetTotalPages(3)
	if c.Query().Page != 3 {
		t.Fatalf("page = %d", c.Query().Page)
	}
	if _, q := rec.last(); q.Page != 3 {
		t.Fatalf("published page = %d", q.Page)
	}
	c.SetTotalPages(0)
	if c.TotalPages() != 1 || c.Query().Page != 1 {
		t.Fatalf("total=%d page=%d", c.TotalPages(), c.Query().Page)
	}
}

func TestControllerFilter(t *testing.T) {
	c, rec, _ := newController(t, url.Values{"filter": {"unread"}}, WithFilter(OneOf("filter", "all", "all", "unread")))
	if c.Query().Filters["filter"] != "unread" {
		t.Fatalf("filters = %v", c.Query().Filters)
	}
	if err := c.SetFilter("filter", "nonsense"); err != nil {
		t.Fatalf("SetFilter: %v", err)
	}
	u, q := rec.last()
	if q.Filters["filter"] != "all" || u.Has("filter") {
		t.Fatalf("query=%+v url=%v", q, u)
	}
	if err := c.SetFilter("page", "2"); err == nil {
		t.Fatal("page is not a filter")
	}
}

func TestControllerClearSearch(t *testing.T) {
	c, rec, _ := newController(t, url.Values{"search": {"ann"}})
	c.ClearSearch()
	if _, q := rec.last(); q.Search != "" {
		t.Fatalf("search = %q", q.Search)
	}
}

func TestListQueryParams(t *testing.T) {
	p := ListQuery{Page: 2, PageSize: 25, Search: "x"}.Params()
	if p.Page != 2 || p.Limit != 25 || p.Search != "x" {
		t.Fatalf("params = %+v", p)
	}
}
