package cube_test

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fnndsc/cube-client/pkg/cube"
)

// stubRequester returns a canned JSON document for every request and
// records what was sent.
type stubRequester struct {
	response  string
	gets      []string
	puts      []string
	lastBody  any
	returnErr error
}

func (r *stubRequester) GetJSON(_ context.Context, rawURL string, _ url.Values, out any) error {
	r.gets = append(r.gets, rawURL)

	if r.returnErr != nil {
		return r.returnErr
	}

	return json.Unmarshal([]byte(r.response), out)
}

func (r *stubRequester) PostJSON(_ context.Context, rawURL string, body, out any) error {
	return r.PutJSON(context.Background(), rawURL, body, out)
}

func (r *stubRequester) PutJSON(_ context.Context, rawURL string, body, out any) error {
	r.puts = append(r.puts, rawURL)
	r.lastBody = body

	if r.returnErr != nil {
		return r.returnErr
	}

	return json.Unmarshal([]byte(r.response), out)
}

func (r *stubRequester) Delete(_ context.Context, _ string) error {
	return r.returnErr
}

func TestLinked_AsReadOnly(t *testing.T) {
	t.Parallel()

	rq := &stubRequester{}
	linked := cube.NewLinked(rq, testItem{ID: 1}, cube.ReadWrite)

	assert.Equal(t, cube.ReadWrite, linked.Access())

	ro := linked.AsReadOnly()
	assert.Equal(t, cube.ReadOnly, ro.Access())
	assert.Equal(t, cube.ReadWrite, linked.Access(), "the original keeps its capability")
	assert.Equal(t, 1, ro.Resource.ID)
}

func TestMutate_RequiresWrite(t *testing.T) {
	t.Parallel()

	rq := &stubRequester{response: `{"id": 1}`}
	ro := cube.NewLinked(rq, testItem{ID: 1}, cube.ReadOnly)

	_, err := cube.Mutate(context.Background(), ro, "http://cube.local/api/v1/1/", map[string]any{"name": "x"})
	require.ErrorIs(t, err, cube.ErrReadOnlyAccess)
	assert.Empty(t, rq.puts, "a read-only mutate must not reach the network")
}

func TestMutate(t *testing.T) {
	t.Parallel()

	rq := &stubRequester{response: `{"id": 2}`}
	rw := cube.NewLinked(rq, testItem{ID: 1}, cube.ReadWrite)

	updated, err := cube.Mutate(context.Background(), rw, "http://cube.local/api/v1/1/", map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Resource.ID)
	assert.Equal(t, []string{"http://cube.local/api/v1/1/"}, rq.puts)
}

func TestFetchLinked(t *testing.T) {
	t.Parallel()

	rq := &stubRequester{response: `{"id": 9}`}
	linked := cube.NewLinked(rq, testItem{ID: 1}, cube.ReadWrite)

	other, err := cube.FetchLinked[testItem](context.Background(), linked, "http://cube.local/api/v1/9/")
	require.NoError(t, err)
	assert.Equal(t, 9, other.Resource.ID)
	assert.Equal(t, cube.ReadWrite, other.Access(), "capability propagates to fetched resources")
}

func TestCollection_CarriesAccess(t *testing.T) {
	t.Parallel()

	rq := &stubRequester{}
	linked := cube.NewLinked(rq, testItem{ID: 1}, cube.ReadOnly)

	search := cube.Collection[testItem](linked, "http://cube.local/api/v1/1/files/")
	assert.Equal(t, cube.ReadOnly, search.Access())
}

func TestAccess(t *testing.T) {
	t.Parallel()

	assert.True(t, cube.ReadWrite.CanWrite())
	assert.False(t, cube.ReadOnly.CanWrite())
	assert.Equal(t, "read-write", cube.ReadWrite.String())
	assert.Equal(t, "read-only", cube.ReadOnly.String())
}
