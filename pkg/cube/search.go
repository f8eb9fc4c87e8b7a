package cube

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ErrNoMoreItems is returned by Iterator.Next when the traversal is
// exhausted.
var ErrNoMoreItems = errors.New("no more items")

// Requester issues JSON requests against CUBE. It is implemented by the
// internal HTTP client, which applies authentication and the retry policy.
// Implementations must be safe for concurrent use.
type Requester interface {
	// GetJSON fetches rawURL with the given query parameters and decodes
	// the response body into out.
	GetJSON(ctx context.Context, rawURL string, query url.Values, out any) error

	// PostJSON sends body as JSON to rawURL and decodes the response into
	// out (out may be nil).
	PostJSON(ctx context.Context, rawURL string, body, out any) error

	// PutJSON sends body as JSON to rawURL with PUT and decodes the
	// response into out (out may be nil).
	PutJSON(ctx context.Context, rawURL string, body, out any) error

	// Delete issues a DELETE against rawURL.
	Delete(ctx context.Context, rawURL string) error
}

// limitValues returns query parameters for a probe request which asks the
// server for a page of exactly n items.
func limitValues(q Query, n int) url.Values {
	values := q.Values()
	values.Set("limit", fmt.Sprintf("%d", n))
	values.Set("offset", "0")

	return values
}

// Search is a handle on one logical collection query. It is either active,
// bound to a Query and a Requester, or empty: a permanent, request-free
// placeholder used when an operation is statically known to yield nothing,
// such as browsing private feeds anonymously. A Search is immutable and
// cheap to copy.
type Search[T any] struct {
	rq     Requester
	query  Query
	access Access
	active bool
}

// NewSearch binds a query to a requester.
func NewSearch[T any](rq Requester, query Query, access Access) *Search[T] {
	return &Search[T]{rq: rq, query: query, access: access, active: true}
}

// EmptySearch returns the permanent empty handle. All of its operations
// succeed trivially and issue zero network calls.
func EmptySearch[T any]() *Search[T] {
	return &Search[T]{access: ReadOnly}
}

// Access returns the capability carried by items of this search.
func (s *Search[T]) Access() Access {
	return s.access
}

// AsReadOnly downgrades the handle's capability. No request is made; the
// conversion is one-way.
func (s *Search[T]) AsReadOnly() *Search[T] {
	return &Search[T]{rq: s.rq, query: s.query, access: ReadOnly, active: s.active}
}

// IsEmpty reports whether this is the request-free empty handle.
func (s *Search[T]) IsEmpty() bool {
	return !s.active
}

// Count returns the server-declared total number of items, requesting a
// zero-item page.
func (s *Search[T]) Count(ctx context.Context) (int, error) {
	if !s.active {
		return 0, nil
	}

	var page struct {
		Count int `json:"count"`
	}

	err := s.rq.GetJSON(ctx, s.query.RequestURL(), limitValues(s.query, 0), &page)
	if err != nil {
		return 0, fmt.Errorf("counting collection: %w", err)
	}

	return page.Count, nil
}

// First returns the first item of the collection wrapped in a Linked handle,
// or nil if the collection is empty.
func (s *Search[T]) First(ctx context.Context) (*Linked[T], error) {
	if !s.active {
		return nil, nil
	}

	var page Page[T]

	err := s.rq.GetJSON(ctx, s.query.RequestURL(), limitValues(s.query, 1), &page)
	if err != nil {
		return nil, fmt.Errorf("fetching first item: %w", err)
	}

	if len(page.Results) == 0 {
		return nil, nil
	}

	return NewLinked(s.rq, page.Results[0], s.access), nil
}

// Only returns the collection's sole item. It fails with ErrEmptyCollection
// when there are no results and ErrTooManyResults when the server reports
// more than one. Call it only under an invariant that the query is unique,
// such as searching by id.
func (s *Search[T]) Only(ctx context.Context) (*Linked[T], error) {
	if !s.active {
		return nil, ErrEmptyCollection
	}

	var page Page[T]

	err := s.rq.GetJSON(ctx, s.query.RequestURL(), limitValues(s.query, 1), &page)
	if err != nil {
		return nil, fmt.Errorf("fetching only item: %w", err)
	}

	if page.Count > 1 {
		return nil, ErrTooManyResults
	}

	if len(page.Results) == 0 {
		return nil, ErrEmptyCollection
	}

	return NewLinked(s.rq, page.Results[0], s.access), nil
}

// Stream returns a lazy, ordered, single-pass iterator over every item of
// the collection. Pages are fetched as needed: the first from the query, the
// rest from server-provided cursors. Re-iterating means calling Stream
// again, which re-queries the origin.
func (s *Search[T]) Stream(ctx context.Context) *Iterator[T] {
	if !s.active {
		return &Iterator[T]{started: true}
	}

	return &Iterator[T]{ctx: ctx, rq: s.rq, query: s.query}
}

// StreamConnected is Stream with every item wrapped in a Linked handle
// carrying this search's requester, enabling immediate follow-up calls.
func (s *Search[T]) StreamConnected(ctx context.Context) *ConnectedIterator[T] {
	return &ConnectedIterator[T]{it: s.Stream(ctx), rq: s.rq, access: s.access}
}

// Iterator walks a collection lazily, following "next" cursors
// transparently. It is single-pass: once exhausted or failed it cannot be
// reused.
type Iterator[T any] struct {
	ctx     context.Context
	rq      Requester
	query   Query
	buf     []T
	pos     int
	next    *string
	started bool
	yielded int
	err     error
}

// HasNext reports whether another item may be available. Before the first
// fetch it optimistically returns true; Next then reports ErrNoMoreItems if
// the collection turns out to be empty.
func (it *Iterator[T]) HasNext() bool {
	if it.err != nil {
		return false
	}

	if max, capped := it.query.MaxItems(); capped && it.yielded >= max {
		return false
	}

	if it.pos < len(it.buf) {
		return true
	}

	return !it.started || it.next != nil
}

// Next returns the next item. It fetches pages on demand and returns
// ErrNoMoreItems when the traversal is complete. A page-fetch failure
// terminates the iteration with that error.
func (it *Iterator[T]) Next() (T, error) {
	var zero T

	if it.err != nil {
		return zero, it.err
	}

	if max, capped := it.query.MaxItems(); capped && it.yielded >= max {
		return zero, ErrNoMoreItems
	}

	for it.pos >= len(it.buf) {
		if it.started && it.next == nil {
			return zero, ErrNoMoreItems
		}

		err := it.fetchPage()
		if err != nil {
			it.err = err

			return zero, err
		}
	}

	item := it.buf[it.pos]
	it.pos++
	it.yielded++

	return item, nil
}

// fetchPage retrieves the next page into the buffer. The initial request is
// built from the query; every later request follows the cursor URL the
// server handed back, verbatim, because filter state does not round-trip
// losslessly through cursors.
func (it *Iterator[T]) fetchPage() error {
	var page Page[T]

	if !it.started {
		err := it.rq.GetJSON(it.ctx, it.query.RequestURL(), it.query.Values(), &page)
		if err != nil {
			return fmt.Errorf("fetching first page: %w", err)
		}

		it.started = true
	} else {
		err := it.rq.GetJSON(it.ctx, *it.next, nil, &page)
		if err != nil {
			return fmt.Errorf("fetching page %q: %w", *it.next, err)
		}
	}

	it.buf = page.Results
	it.pos = 0
	it.next = page.Next

	return nil
}

// All drains the iterator into a slice.
func (it *Iterator[T]) All() ([]T, error) {
	var items []T

	for it.HasNext() {
		item, err := it.Next()
		if errors.Is(err, ErrNoMoreItems) {
			break
		}

		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// ForEach applies fn to every remaining item, stopping at the first error.
func (it *Iterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if errors.Is(err, ErrNoMoreItems) {
			return nil
		}

		if err != nil {
			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// ConnectedIterator is an Iterator whose items are wrapped in Linked
// handles.
type ConnectedIterator[T any] struct {
	it     *Iterator[T]
	rq     Requester
	access Access
}

// HasNext reports whether another item may be available.
func (c *ConnectedIterator[T]) HasNext() bool {
	return c.it.HasNext()
}

// Next returns the next item bundled with the client handle needed to act
// on it.
func (c *ConnectedIterator[T]) Next() (*Linked[T], error) {
	item, err := c.it.Next()
	if err != nil {
		return nil, err
	}

	return NewLinked(c.rq, item, c.access), nil
}

// ForEach applies fn to every remaining linked item.
func (c *ConnectedIterator[T]) ForEach(fn func(*Linked[T]) error) error {
	for c.HasNext() {
		linked, err := c.Next()
		if errors.Is(err, ErrNoMoreItems) {
			return nil
		}

		if err != nil {
			return err
		}

		err = fn(linked)
		if err != nil {
			return err
		}
	}

	return nil
}
