package listctl

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/MrEthical07/perksAdmin/api"
)

// URL parameter names.
const (
	ParamPage     = "page"
	ParamPageSize = "pageSize"
	ParamSearch   = "search"
)

// DefaultPageSizes are the allowed page sizes; the first is the default.
var DefaultPageSizes = []int{10, 25, 50, 100}

// ErrPageSize is returned for a page size outside the allowed options.
var ErrPageSize = errors.New("page size not allowed")

// ListQuery is the state a list fetch depends on.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]string
}

// Params converts q to API list parameters.
func (q ListQuery) Params() api.ListParams {
	return api.ListParams{Page: q.Page, Limit: q.PageSize, Search: q.Search}
}

// ControllerOption configures a [Controller].
type ControllerOption func(*Controller)

// WithPageSizes sets the allowed page sizes. The first entry is the default.
func WithPageSizes(sizes ...int) ControllerOption {
	return func(c *Controller) {
		if len(sizes) > 0 {
			c.pageSizes = slices.Clone(sizes)
		}
	}
}

// WithFilter adds an extra URL-backed filter. Changing it resets the page.
func WithFilter(f Field) ControllerOption {
	return func(c *Controller) { c.filters = append(c.filters, f) }
}

// WithDebounce sets the search quiet window and, optionally, its timer source.
func WithDebounce(wait time.Duration, after AfterFunc) ControllerOption {
	return func(c *Controller) {
		c.debounceWait = wait
		c.after = after
	}
}

// OnURLChange receives the URL values after every change.
func OnURLChange(fn func(url.Values)) ControllerOption {
	return func(c *Controller) { c.onURL = fn }
}

// OnQueryChange receives the new query after every change.
func OnQueryChange(fn func(ListQuery)) ControllerOption {
	return func(c *Controller) { c.onQuery = fn }
}

// Controller owns the state of one list view. It is safe for concurrent use;
// callbacks run without the lock held.
type Controller struct {
	mu         sync.Mutex
	page       int
	pageSize   int
	totalPages int
	filterVals map[string]string

	search *Debounced[string]

	schema       Schema
	pageSizes    []int
	filters      []Field
	debounceWait time.Duration
	after        AfterFunc

	onURL   func(url.Values)
	onQuery func(ListQuery)
}

// NewController restores state from initial URL values.
func NewController(initial url.Values, opts ...ControllerOption) *Controller {
	c := &Controller{
		pageSizes:    slices.Clone(DefaultPageSizes),
		debounceWait: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.schema = append(Schema{
		IntField(ParamPage, 1, 1),
		OneOfInt(ParamPageSize, c.pageSizes[0], c.pageSizes),
		TextField(ParamSearch, ""),
	}, c.filters...)

	vals := c.schema.Decode(initial)
	c.page = vals.Int(ParamPage)
	c.pageSize = vals.Int(ParamPageSize)
	c.filterVals = make(map[string]string, len(c.filters))
	for _, f := range c.filters {
		c.filterVals[f.Key] = vals[f.Key]
	}

	var dopts []DebounceOption
	if c.after != nil {
		dopts = append(dopts, WithAfterFunc(c.after))
	}
	c.search = NewDebounced(vals[ParamSearch], c.debounceWait, c.searchCommitted, dopts...)
	return c
}

// Schema returns the URL schema in use.
func (c *Controller) Schema() Schema {
	return slices.Clone(c.schema)
}

// PageSizes returns the allowed page sizes.
func (c *Controller) PageSizes() []int {
	return slices.Clone(c.pageSizes)
}

func (c *Controller) searchCommitted(string) {
	c.mu.Lock()
	c.page = 1
	c.mu.Unlock()
	c.publish()
}

// Query returns the state a fetch should use. Search is the committed value.
func (c *Controller) Query() ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queryLocked()
}

func (c *Controller) queryLocked() ListQuery {
	return ListQuery{
		Page:     c.page,
		PageSize: c.pageSize,
		Search:   c.search.Committed(),
		Filters:  maps.Clone(c.filterVals),
	}
}

// URLValues renders the current state with defaults omitted.
func (c *Controller) URLValues() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.urlLocked()
}

func (c *Controller) urlLocked() url.Values {
	vals := Values{
		ParamPage:     strconv.Itoa(c.page),
		ParamPageSize: strconv.Itoa(c.pageSize),
		ParamSearch:   c.search.Committed(),
	}
	maps.Copy(vals, c.filterVals)
	return c.schema.Encode(vals)
}

func (c *Controller) publish() {
	c.mu.Lock()
	q, u := c.queryLocked(), c.urlLocked()
	onQuery, onURL := c.onQuery, c.onURL
	c.mu.Unlock()

	if onURL != nil {
		onURL(u)
	}
	if onQuery != nil {
		onQuery(q)
	}
}

// SearchInput is what the operator has typed so far.
func (c *Controller) SearchInput() string {
	return c.search.Value()
}

// SetSearch records typed text. The query changes once typing pauses.
func (c *Controller) SetSearch(s string) {
	c.search.Set(s)
}

// ClearSearch empties the search box and commits at once.
func (c *Controller) ClearSearch() {
	c.search.Set("")
	c.search.Flush()
}

// SetPage moves to page n, clamped to [1, TotalPages] once the page count is
// known.
func (c *Controller) SetPage(n int) {
	c.mu.Lock()
	if c.totalPages > 0 {
		n = min(n, c.totalPages)
	}
	n = max(1, n)
	changed := n != c.page
	c.page = n
	c.mu.Unlock()
	if changed {
		c.publish()
	}
}

// Prev is a no-op on page 1.
func (c *Controller) Prev() bool {
	c.mu.Lock()
	if c.page <= 1 {
		c.mu.Unlock()
		return false
	}
	c.page--
	c.mu.Unlock()
	c.publish()
	return true
}

// Next is a no-op on the last known page.
func (c *Controller) Next() bool {
	c.mu.Lock()
	if c.totalPages > 0 && c.page >= c.totalPages {
		c.mu.Unlock()
		return false
	}
	c.page++
	c.mu.Unlock()
	c.publish()
	return true
}

// SetPageSize switches page size and returns to page 1.
func (c *Controller) SetPageSize(n int) error {
	if !slices.Contains(c.pageSizes, n) {
		return fmt.Errorf("%w: %d (allowed %v)", ErrPageSize, n, c.pageSizes)
	}
	c.mu.Lock()
	changed := n != c.pageSize || c.page != 1
	c.pageSize, c.page = n, 1
	c.mu.Unlock()
	if changed {
		c.publish()
	}
	return nil
}

// SetFilter changes an extra filter and returns to page 1. Invalid values fall
// back to the field default.
func (c *Controller) SetFilter(key, value string) error {
	f, ok := c.schema.Field(key)
	if !ok || !slices.ContainsFunc(c.filters, func(x Field) bool { return x.Key == key }) {
		return fmt.Errorf("listctl: unknown filter %q", key)
	}
	vals := Schema{f}.Decode(url.Values{key: {value}})

	c.mu.Lock()
	changed := c.filterVals[key] != vals[key] || c.page != 1
	c.filterVals[key] = vals[key]
	c.page = 1
	c.mu.Unlock()
	if changed {
		c.publish()
	}
	return nil
}

// SetTotalPages records the server's page count and clamps the current page.
func (c *Controller) SetTotalPages(n int) {
	c.mu.Lock()
	if n < 1 {
		n = 1
	}
	c.totalPages = n
	changed := c.page > n
	if changed {
		c.page = n
	}
	c.mu.Unlock()
	if changed {
		c.publish()
	}
}

// TotalPages is the last known page count, or 0 before the first response.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPages
}

// Close cancels a pending search commit.
func (c *Controller) Close() {
	c.search.Stop()
}
