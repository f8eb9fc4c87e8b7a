package cube_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnndsc/cube-client/pkg/cube"
)

type testItem struct {
	ID int `json:"id"`
}

var errBackend = errors.New("backend unavailable")

// pagingRequester serves a fixed collection of items with CUBE-style
// pagination: limit/offset parameters on the first request, opaque next
// URLs afterwards.
type pagingRequester struct {
	items    []testItem
	getCalls int
	failFrom int // fail requests once getCalls exceeds this; 0 disables
	lastURL  string
}

func (r *pagingRequester) GetJSON(_ context.Context, rawURL string, query url.Values, out any) error {
	r.getCalls++
	r.lastURL = rawURL

	if r.failFrom > 0 && r.getCalls >= r.failFrom {
		return errBackend
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return err
	}

	merged := parsed.Query()
	for key, vals := range query {
		merged[key] = vals
	}

	limit := 10
	if v := merged.Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	offset := 0
	if v := merged.Get("offset"); v != "" {
		offset, _ = strconv.Atoi(v)
	}

	end := offset + limit
	if end > len(r.items) {
		end = len(r.items)
	}

	page := cube.Page[testItem]{
		Count:   len(r.items),
		Results: r.items[offset:end],
	}

	if end < len(r.items) {
		next := fmt.Sprintf("%s://%s%s?limit=%d&offset=%d",
			parsed.Scheme, parsed.Host, parsed.Path, limit, end)
		page.Next = &next
	}

	data, err := json.Marshal(page)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, out)
}

func (r *pagingRequester) PostJSON(_ context.Context, _ string, _, _ any) error {
	return errBackend
}

func (r *pagingRequester) PutJSON(_ context.Context, _ string, _, _ any) error {
	return errBackend
}

func (r *pagingRequester) Delete(_ context.Context, _ string) error {
	return errBackend
}

func newItems(n int) []testItem {
	items := make([]testItem, n)
	for i := range items {
		items[i] = testItem{ID: i + 1}
	}

	return items
}

func TestStream_AllPages(t *testing.T) {
	t.Parallel()

	rq := &pagingRequester{items: newItems(42)}
	query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain).WithPageLimit(10)
	search := cube.NewSearch[testItem](rq, query, cube.ReadOnly)

	items, err := search.Stream(context.Background()).All()
	require.NoError(t, err)
	require.Len(t, items, 42)

	// Server order is preserved across page boundaries.
	for i, item := range items {
		assert.Equal(t, i+1, item.ID)
	}

	// 42 items at 10 per page means exactly 5 fetches.
	assert.Equal(t, 5, rq.getCalls)
}

func TestStream_LazyFetching(t *testing.T) {
	t.Parallel()

	rq := &pagingRequester{items: newItems(42)}
	query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain).WithPageLimit(10)
	search := cube.NewSearch[testItem](rq, query, cube.ReadOnly)

	it := search.Stream(context.Background())
	assert.Equal(t, 0, rq.getCalls, "creating an iterator must not fetch")

	for i := 0; i < 10; i++ {
		_, err := it.Next()
		require.NoError(t, err)
	}

	assert.Equal(t, 1, rq.getCalls, "first page serves the first ten items")

	_, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, rq.getCalls)
}

func TestStream_MaxItems(t *testing.T) {
	t.Parallel()

	rq := &pagingRequester{items: newItems(42)}
	query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain).
		WithPageLimit(10).
		WithMaxItems(25)
	search := cube.NewSearch[testItem](rq, query, cube.ReadOnly)

	items, err := search.Stream(context.Background()).All()
	require.NoError(t, err)
	assert.Len(t, items, 25)
	assert.Equal(t, 3, rq.getCalls, "the cap stops fetching mid-collection")
}

func TestStream_ErrorSticks(t *testing.T) {
	t.Parallel()

	rq := &pagingRequester{items: newItems(42), failFrom: 2}
	query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain).WithPageLimit(10)
	search := cube.NewSearch[testItem](rq, query, cube.ReadOnly)

	it := search.Stream(context.Background())

	for i := 0; i < 10; i++ {
		_, err := it.Next()
		require.NoError(t, err)
	}

	_, err := it.Next()
	require.ErrorIs(t, err, errBackend)

	// The iterator stays failed; it does not retry the fetch.
	_, err = it.Next()
	require.ErrorIs(t, err, errBackend)
	assert.False(t, it.HasNext())
	assert.Equal(t, 2, rq.getCalls)
}

func TestStream_NextExhausted(t *testing.T) {
	t.Parallel()

	rq := &pagingRequester{items: newItems(2)}
	query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain).WithPageLimit(10)
	it := cube.NewSearch[testItem](rq, query, cube.ReadOnly).Stream(context.Background())

	_, err := it.Next()
	require.NoError(t, err)
	_, err = it.Next()
	require.NoError(t, err)

	_, err = it.Next()
	require.ErrorIs(t, err, cube.ErrNoMoreItems)
}

func TestCount(t *testing.T) {
	t.Parallel()

	rq := &pagingRequester{items: newItems(42)}
	query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain)
	search := cube.NewSearch[testItem](rq, query, cube.ReadOnly)

	count, err := search.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.Equal(t, 1, rq.getCalls, "count is a single zero-item probe")
}

func TestCount_MatchesStreamLength(t *testing.T) {
	t.Parallel()

	rq := &pagingRequester{items: newItems(37)}
	query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain).WithPageLimit(8)
	search := cube.NewSearch[testItem](rq, query, cube.ReadOnly)

	count, err := search.Count(context.Background())
	require.NoError(t, err)

	items, err := search.Stream(context.Background()).All()
	require.NoError(t, err)
	assert.Len(t, items, count)
}

func TestFirst(t *testing.T) {
	t.Parallel()

	rq := &pagingRequester{items: newItems(42)}
	query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain)
	search := cube.NewSearch[testItem](rq, query, cube.ReadOnly)

	first, err := search.First(context.Background())
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, first.Resource.ID)
}

func TestFirst_Empty(t *testing.T) {
	t.Parallel()

	rq := &pagingRequester{}
	query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain)
	search := cube.NewSearch[testItem](rq, query, cube.ReadOnly)

	first, err := search.First(context.Background())
	require.NoError(t, err)
	assert.Nil(t, first)
}

func TestOnly(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		items   int
		wantErr error
	}{
		{name: "zero items", items: 0, wantErr: cube.ErrEmptyCollection},
		{name: "one item", items: 1, wantErr: nil},
		{name: "two items", items: 2, wantErr: cube.ErrTooManyResults},
		{name: "many items", items: 42, wantErr: cube.ErrTooManyResults},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rq := &pagingRequester{items: newItems(tt.items)}
			query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain)
			search := cube.NewSearch[testItem](rq, query, cube.ReadOnly)

			only, err := search.Only(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, 1, only.Resource.ID)
		})
	}
}

func TestEmptySearch_NoRequests(t *testing.T) {
	t.Parallel()

	// The empty handle has no requester at all: any network attempt
	// would panic, so passing proves zero calls are made.
	search := cube.EmptySearch[testItem]()
	ctx := context.Background()

	assert.True(t, search.IsEmpty())

	count, err := search.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	first, err := search.First(ctx)
	require.NoError(t, err)
	assert.Nil(t, first)

	_, err = search.Only(ctx)
	require.ErrorIs(t, err, cube.ErrEmptyCollection)

	it := search.Stream(ctx)
	assert.False(t, it.HasNext())

	items, err := it.All()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearch_AsReadOnly(t *testing.T) {
	t.Parallel()

	rq := &pagingRequester{items: newItems(1)}
	query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain)
	search := cube.NewSearch[testItem](rq, query, cube.ReadWrite)

	assert.Equal(t, cube.ReadWrite, search.Access())

	ro := search.AsReadOnly()
	assert.Equal(t, cube.ReadOnly, ro.Access())
	assert.Equal(t, cube.ReadWrite, search.Access(), "downgrade must not touch the original")

	only, err := ro.Only(context.Background())
	require.NoError(t, err)
	assert.Equal(t, cube.ReadOnly, only.Access())
}

func TestStreamConnected(t *testing.T) {
	t.Parallel()

	rq := &pagingRequester{items: newItems(3)}
	query := cube.NewQuery("http://cube.local/api/v1/widgets/", cube.ModePlain)
	search := cube.NewSearch[testItem](rq, query, cube.ReadWrite)

	it := search.StreamConnected(context.Background())

	var ids []int

	err := it.ForEach(func(linked *cube.Linked[testItem]) error {
		assert.Equal(t, cube.ReadWrite, linked.Access())
		ids = append(ids, linked.Resource.ID)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids)
}

func TestQuery_SearchMode(t *testing.T) {
	t.Parallel()

	query := cube.NewQuery("http://cube.local/api/v1/plugins/", cube.ModeSearch).
		WithFilter("name", "dcm2niix")

	assert.Equal(t, "http://cube.local/api/v1/plugins/search/", query.RequestURL())
	assert.Equal(t, "dcm2niix", query.Values().Get("name"))
}

func TestQuery_Immutable(t *testing.T) {
	t.Parallel()

	base := cube.NewQuery("http://cube.local/api/v1/plugins/", cube.ModeSearch)
	withName := base.WithFilter("name", "a")
	withBoth := withName.WithFilter("version", "1.0")

	assert.Empty(t, base.Values().Get("name"))
	assert.Empty(t, withName.Values().Get("version"))
	assert.Equal(t, "1.0", withBoth.Values().Get("version"))
	assert.Equal(t, "a", withBoth.Values().Get("name"))
}
