package reader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steve-mcp/internal/steveapi"
	"steve-mcp/internal/store"
)

type fakeMirror struct {
	lookup store.ProductLookup
	calls  int
}

func (f *fakeMirror) ListProducts(_ context.Context, _ string) store.ProductLookup {
	f.calls++
	return f.lookup
}

type fakeAPI struct {
	products []steveapi.Product
	err      error
	calls    int

	gotAuth      string
	gotWorkspace string
	gotLimit     int
}

func (f *fakeAPI) ListWorkspaceProducts(_ context.Context, authHeader, workspaceID string, limit int) ([]steveapi.Product, error) {
	f.calls++
	f.gotAuth = authHeader
	f.gotWorkspace = workspaceID
	f.gotLimit = limit
	return f.products, f.err
}

var (
	mirrorProducts = []steveapi.Product{{ID: "m1", Name: "Mirror Alpha"}}
	apiProducts    = []steveapi.Product{{ID: "p1", Name: "Alpha", CreatedAt: "2024-01-01T00:00:00Z"}}
)

func TestProducts_MirrorHitWinsAndAPIUntouched(t *testing.T) {
	mirror := &fakeMirror{lookup: store.ProductLookup{Products: mirrorProducts}}
	api := &fakeAPI{products: apiProducts}
	r := NewProductReader(mirror, api, nil)

	got, err := r.Products(context.Background(), "Bearer t", "w1", 10)
	require.NoError(t, err)
	assert.Equal(t, mirrorProducts, got)
	assert.Equal(t, 1, mirror.calls)
	assert.Zero(t, api.calls, "API must not be called when the mirror has data")
}

func TestProducts_EmptyMirrorFallsBack(t *testing.T) {
	mirror := &fakeMirror{lookup: store.ProductLookup{Miss: store.MissEmpty}}
	api := &fakeAPI{products: apiProducts}
	r := NewProductReader(mirror, api, nil)

	got, err := r.Products(context.Background(), "Bearer t", "w1", 10)
	require.NoError(t, err)
	assert.Equal(t, apiProducts, got)
	assert.Equal(t, 1, api.calls)
	assert.Equal(t, "Bearer t", api.gotAuth)
	assert.Equal(t, "w1", api.gotWorkspace)
	assert.Equal(t, 10, api.gotLimit)
}

func TestProducts_MirrorFaultFallsBack(t *testing.T) {
	mirror := &fakeMirror{lookup: store.ProductLookup{
		Miss: store.MissError,
		Err:  errors.New("connection reset"),
	}}
	api := &fakeAPI{products: apiProducts}
	r := NewProductReader(mirror, api, nil)

	got, err := r.Products(context.Background(), "Bearer t", "w1", 10)
	require.NoError(t, err)
	assert.Equal(t, apiProducts, got)
}

func TestProducts_NilMirrorGoesStraightToAPI(t *testing.T) {
	api := &fakeAPI{products: apiProducts}
	r := NewProductReader(nil, api, nil)

	got, err := r.Products(context.Background(), "Bearer t", "w1", 10)
	require.NoError(t, err)
	assert.Equal(t, apiProducts, got)
	assert.Equal(t, 1, api.calls)
}

func TestProducts_APIEmptyListIsFinal(t *testing.T) {
	mirror := &fakeMirror{lookup: store.ProductLookup{Miss: store.MissEmpty}}
	api := &fakeAPI{products: []steveapi.Product{}}
	r := NewProductReader(mirror, api, nil)

	got, err := r.Products(context.Background(), "Bearer t", "w1", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, 1, api.calls, "no further fallback after the API answers")
}

func TestProducts_APIErrorIsAuthoritative(t *testing.T) {
	mirror := &fakeMirror{lookup: store.ProductLookup{Miss: store.MissEmpty}}
	apiErr := &steveapi.APIError{StatusCode: 502, Body: "bad gateway"}
	api := &fakeAPI{err: apiErr}
	r := NewProductReader(mirror, api, nil)

	_, err := r.Products(context.Background(), "Bearer t", "w1", 10)
	require.Error(t, err)
	assert.Equal(t, apiErr, err)
}

func TestProducts_NeverBlendsPaths(t *testing.T) {
	// A mirror hit must return exactly the mirror's set even when the API
	// would contribute different products.
	mirror := &fakeMirror{lookup: store.ProductLookup{Products: mirrorProducts}}
	api := &fakeAPI{products: apiProducts}
	r := NewProductReader(mirror, api, nil)

	got, err := r.Products(context.Background(), "Bearer t", "w1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0].ID)
}
