package offline

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charlie0129/bmi/pkg/storage"
)

var errOffline = errors.New("network unreachable")

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// switchable forwards to the real transport until it is turned off.
type switchable struct {
	offline atomic.Bool
	calls   atomic.Int32
}

func (s *switchable) RoundTrip(r *http.Request) (*http.Response, error) {
	s.calls.Add(1)
	if s.offline.Load() {
		return nil, errOffline
	}
	return http.DefaultTransport.RoundTrip(r)
}

func newOrigin(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/index.html":
			_, _ = io.WriteString(w, "offline page")
		default:
			_, _ = io.WriteString(w, r.Method+" "+r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, c *http.Client, u string) (string, *http.Response) {
	t.Helper()
	resp, err := c.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b), resp
}

func setup(t *testing.T) (*httptest.Server, *switchable, *Cache, *http.Client) {
	srv := newOrigin(t)
	net := &switchable{}
	cache := New(storage.NewMemory(), "")
	u, _ := url.Parse(srv.URL)
	client := &http.Client{Transport: &Transport{Base: net, Cache: cache, Host: u.Host}}
	return srv, net, cache, client
}

func TestTransportNetworkFirst(t *testing.T) {
	srv, net, cache, client := setup(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "/css/style.css", Entry{Status: 200, Body: []byte("stale")}))

	body, resp := get(t, client, srv.URL+"/css/style.css")
	assert.Equal(t, "GET /css/style.css", body)
	assert.Empty(t, resp.Header.Get("X-Offline-Cache"))
	assert.EqualValues(t, 1, net.calls.Load())

	// The fresh response replaced the stale copy.
	e, err := cache.Match(ctx, "/css/style.css")
	require.NoError(t, err)
	assert.Equal(t, "GET /css/style.css", string(e.Body))
	assert.False(t, e.StoredAt.IsZero())
}

func TestTransportFallsBackToCache(t *testing.T) {
	srv, net, _, client := setup(t)

	get(t, client, srv.URL+"/js/app.js")
	net.offline.Store(true)

	body, resp := get(t, client, srv.URL+"/js/app.js")
	assert.Equal(t, "GET /js/app.js", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hit", resp.Header.Get("X-Offline-Cache"))
}

func TestTransportFallsBackToOfflineDocument(t *testing.T) {
	srv, net, _, client := setup(t)

	get(t, client, srv.URL+"/index.html")
	net.offline.Store(true)

	body, _ := get(t, client, srv.URL+"/never-seen")
	assert.Equal(t, "offline page", body)
}

func TestTransportTotalFailure(t *testing.T) {
	srv, net, _, client := setup(t)
	net.offline.Store(true)

	_, err := client.Get(srv.URL + "/js/app.js")
	require.Error(t, err)
	assert.ErrorIs(t, err, errOffline)
}

func TestTransportDoesNotStoreErrorsOrForeignHosts(t *testing.T) {
	srv, _, cache, client := setup(t)
	ctx := context.Background()

	_, resp := get(t, client, srv.URL+"/missing")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	_, err := cache.Match(ctx, "/missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	foreign := &http.Client{Transport: &Transport{Cache: cache, Host: "cdn.example.com"}}
	get(t, foreign, srv.URL+"/js/i18n.js")
	_, err = cache.Match(ctx, "/js/i18n.js")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTransportPassesNonGET(t *testing.T) {
	cache := New(storage.NewMemory(), "")
	var seen string
	tr := &Transport{
		Cache: cache,
		Base: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			seen = r.Method
			return nil, errOffline
		}),
	}
	require.NoError(t, cache.Put(context.Background(), OfflineDocument, Entry{Status: 200, Body: []byte("x")}))

	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/calculate", strings.NewReader("{}"))
	_, err := tr.RoundTrip(req)
	assert.ErrorIs(t, err, errOffline)
	assert.Equal(t, http.MethodPost, seen)
}

type mapFetcher map[string]string

func (m mapFetcher) Fetch(_ context.Context, path string) (Entry, error) {
	b, ok := m[path]
	if !ok {
		return Entry{}, errors.New("not found: " + path)
	}
	return Entry{Status: 200, Body: []byte(b)}, nil
}

func TestInstallIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	cache := New(storage.NewMemory(), "v1")

	err := cache.Install(ctx, mapFetcher{"/": "root"}, []string{"/", "/index.html"})
	require.Error(t, err)
	paths, err := cache.Paths(ctx)
	require.NoError(t, err)
	assert.Empty(t, paths)

	require.NoError(t, cache.Install(ctx, mapFetcher{"/": "root", "/index.html": "doc"}, []string{"/", "/index.html"}))
	paths, err = cache.Paths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/index.html"}, paths)
}

func TestActivateDeletesOtherGenerations(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	old := New(kv, "bmi-calculator-v0")
	cur := New(kv, DefaultName)

	require.NoError(t, old.Put(ctx, "/", Entry{Status: 200}))
	require.NoError(t, old.Put(ctx, "/index.html", Entry{Status: 200}))
	require.NoError(t, cur.Put(ctx, "/", Entry{Status: 200}))
	require.NoError(t, kv.Set(ctx, "theme", "dark"))

	n, err := cur.Activate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = cur.Activate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	paths, _ := old.Paths(ctx)
	assert.Empty(t, paths)
	paths, _ = cur.Paths(ctx)
	assert.Equal(t, []string{"/"}, paths)
	v, err := kv.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)
}

func TestHTTPFetcher(t *testing.T) {
	srv := newOrigin(t)
	f := NewHTTPFetcher(srv.URL)

	e, err := f.Fetch(context.Background(), "/manifest.json")
	require.NoError(t, err)
	assert.Equal(t, "GET /manifest.json", string(e.Body))

	_, err = f.Fetch(context.Background(), "/missing")
	assert.Error(t, err)
}

func TestDefaultManifest(t *testing.T) {
	m := DefaultManifest()
	assert.Len(t, m, 6+12+2)
	assert.Contains(t, m, "/js/locales/ko.json")
	assert.Contains(t, m, OfflineDocument)
}
