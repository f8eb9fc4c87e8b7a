package cube

import (
	"context"
	"fmt"
)

// Linked pairs a deserialized resource with the requester and capability
// needed to act on it further: follow linked collections, re-fetch, or
// mutate. It is created the moment a resource is decoded from a response and
// owned by the caller; requesters are cheaply shared, so a Linked value is
// never locked.
type Linked[T any] struct {
	rq     Requester
	access Access

	// Resource is the deserialized item.
	Resource T
}

// NewLinked wraps a resource with its requester.
func NewLinked[T any](rq Requester, resource T, access Access) *Linked[T] {
	return &Linked[T]{rq: rq, access: access, Resource: resource}
}

// Access returns the capability carried by the handle.
func (l *Linked[T]) Access() Access {
	return l.access
}

// AsReadOnly downgrades the handle to read-only. The conversion is one-way
// and makes no request.
func (l *Linked[T]) AsReadOnly() *Linked[T] {
	return &Linked[T]{rq: l.rq, access: ReadOnly, Resource: l.Resource}
}

// Requester exposes the underlying requester for follow-up calls.
func (l *Linked[T]) Requester() Requester {
	return l.rq
}

// Collection returns a search over a collection URL linked from this
// resource, carrying the same capability.
func Collection[S, T any](l *Linked[T], collectionURL string) *Search[S] {
	return NewSearch[S](l.rq, NewQuery(collectionURL, ModePlain), l.access)
}

// FetchLinked retrieves the resource at itemURL with the same requester and
// capability as the given handle.
func FetchLinked[S, T any](ctx context.Context, l *Linked[T], itemURL string) (*Linked[S], error) {
	var resource S

	err := l.rq.GetJSON(ctx, itemURL, nil, &resource)
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", itemURL, err)
	}

	return NewLinked(l.rq, resource, l.access), nil
}

// Refetch retrieves a fresh copy of the resource from itemURL, returning a
// new handle. The original handle is unchanged.
func Refetch[T any](ctx context.Context, l *Linked[T], itemURL string) (*Linked[T], error) {
	return FetchLinked[T](ctx, l, itemURL)
}

// Mutate issues a PUT against itemURL with body, requiring read-write
// access, and returns the updated resource as a new handle.
func Mutate[T any](ctx context.Context, l *Linked[T], itemURL string, body any) (*Linked[T], error) {
	if !l.access.CanWrite() {
		return nil, ErrReadOnlyAccess
	}

	var resource T

	err := l.rq.PutJSON(ctx, itemURL, body, &resource)
	if err != nil {
		return nil, fmt.Errorf("updating %q: %w", itemURL, err)
	}

	return NewLinked(l.rq, resource, l.access), nil
}
