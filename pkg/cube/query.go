package cube

import (
	"net/url"
	"strconv"
	"strings"
)

// QueryMode selects between fetching a collection URL as-is and querying its
// search endpoint ("{url}search/") with filter parameters.
type QueryMode int

const (
	// ModePlain fetches the collection URL without search parameters.
	ModePlain QueryMode = iota

	// ModeSearch appends "search/" to the collection URL and sends filters.
	ModeSearch
)

// Filter is one query filter. Filter keys are fixed per resource type; they
// are supplied by the typed search builders, never by end users directly.
type Filter struct {
	Key   string
	Value string
}

// Query is an immutable description of one collection request: the base
// address, plain or search mode, filters, a page-size hint, and an optional
// cap on the number of items ever yielded. The With* methods copy; a Query
// never mutates after construction and may be shared freely across
// goroutines.
type Query struct {
	baseURL   string
	mode      QueryMode
	filters   []Filter
	pageLimit int
	maxItems  int
	capped    bool
}

// NewQuery creates a query against the given collection URL.
func NewQuery(baseURL string, mode QueryMode) Query {
	return Query{baseURL: baseURL, mode: mode}
}

// WithFilter returns a copy of the query with a string filter added.
func (q Query) WithFilter(key, value string) Query {
	filters := make([]Filter, len(q.filters), len(q.filters)+1)
	copy(filters, q.filters)
	q.filters = append(filters, Filter{Key: key, Value: value})

	return q
}

// WithIntFilter returns a copy of the query with an integer filter added.
func (q Query) WithIntFilter(key string, value int) Query {
	return q.WithFilter(key, strconv.Itoa(value))
}

// WithPageLimit returns a copy of the query with a page-size hint. The only
// reason to set it is performance; the engine works with any page size.
func (q Query) WithPageLimit(limit int) Query {
	q.pageLimit = limit

	return q
}

// WithMaxItems returns a copy of the query capped to yield at most n items,
// regardless of the server-reported count.
func (q Query) WithMaxItems(n int) Query {
	q.maxItems = n
	q.capped = true

	return q
}

// BaseURL returns the collection URL the query was built against.
func (q Query) BaseURL() string {
	return q.baseURL
}

// Mode returns the query mode.
func (q Query) Mode() QueryMode {
	return q.mode
}

// MaxItems returns the item cap and whether one was set.
func (q Query) MaxItems() (int, bool) {
	return q.maxItems, q.capped
}

// RequestURL returns the URL for the initial request of a traversal.
// Subsequent pages use the server-provided cursor verbatim instead.
func (q Query) RequestURL() string {
	if q.mode == ModeSearch {
		if strings.HasSuffix(q.baseURL, "/") {
			return q.baseURL + "search/"
		}

		return q.baseURL + "/search/"
	}

	return q.baseURL
}

// Values renders the filters and page-size hint as URL query parameters for
// the initial request.
func (q Query) Values() url.Values {
	values := url.Values{}
	for _, f := range q.filters {
		values.Set(f.Key, f.Value)
	}

	if q.pageLimit > 0 {
		values.Set("limit", strconv.Itoa(q.pageLimit))
	}

	return values
}
