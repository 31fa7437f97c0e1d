package registry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/catalogue"
	"github.com/miljoeportal/go-dmp-catalogue/pkg/client"
	"github.com/miljoeportal/go-dmp-catalogue/pkg/settings"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// iconStub answers every thumbnail fetch from memory.
var iconStub = &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("png")),
		Request:    r,
	}, nil
})}

// catalogueServer serves the fixture replies and records requested
// paths.
func catalogueServer(t *testing.T, paths *[]string) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		*paths = append(*paths, r.URL.Path)
		mu.Unlock()

		var name string
		switch r.URL.Path {
		case "/datasets":
			name = "datasets.json"
		case "/datasetCollections":
			name = "collections.json"
		case "/datasetAvailabilities":
			name = "status.json"
		default:
			http.NotFound(w, r)
			return
		}
		data, err := os.ReadFile(filepath.Join("testdata", name))
		require.NoError(t, err)
		w.Write(data)
	}))
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (rec *recorder) record(e Event) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.events = append(rec.events, e)
}

func (rec *recorder) all() []Event {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]Event(nil), rec.events...)
}

func testRegistry(t *testing.T, baseURL string) (*Registry, *recorder, string) {
	t.Helper()
	st, err := settings.Open(t.TempDir())
	require.NoError(t, err)

	cli, err := client.New(baseURL)
	require.NoError(t, err)

	cacheDir := filepath.Join(t.TempDir(), "cache")
	reg, err := New(cacheDir, cli, st, WithIconClient(iconStub))
	require.NoError(t, err)

	rec := &recorder{}
	reg.Subscribe(rec.record)
	return reg, rec, cacheDir
}

func TestInitialize(t *testing.T) {
	var paths []string
	srv := catalogueServer(t, &paths)
	defer srv.Close()

	reg, rec, cacheDir := testRegistry(t, srv.URL)
	require.NoError(t, reg.Initialize(context.Background(), false))

	assert.ElementsMatch(t, []string{"/datasets", "/datasetCollections", "/datasetAvailabilities"}, paths)
	assert.Equal(t, []Event{Fetched{}, Initialized{}}, rec.all())

	for _, name := range []string{"datasets.json", "collections.json", "status.json"} {
		assert.FileExists(t, filepath.Join(cacheDir, name))
	}

	datasets := reg.Datasets()
	require.Equal(t, 3, datasets.Len())
	ds, ok := datasets.Get("urn:dmp:ds:vanda-ue-33")
	require.True(t, ok)
	assert.Equal(t, catalogue.StatusPartly, ds.Status)

	collections := reg.Collections()
	require.Equal(t, 2, collections.Len())
	col, ok := collections.Get("col-1")
	require.True(t, ok)
	assert.Equal(t, []string{"urn:dmp:ds:aa-bes-linjer", "urn:dmp:ds:vanda-ue-33"}, col.Datasets)
}

func TestInitializeFreshCache(t *testing.T) {
	var paths []string
	srv := catalogueServer(t, &paths)
	defer srv.Close()

	reg, rec, cacheDir := testRegistry(t, srv.URL)

	// a datasets reply cached today short-circuits everything but the
	// availability feed
	data, err := os.ReadFile(filepath.Join("testdata", "datasets.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "datasets.json"), data, 0o644))

	require.NoError(t, reg.Initialize(context.Background(), false))
	assert.Equal(t, []string{"/datasetAvailabilities"}, paths)
	assert.Equal(t, []Event{Fetched{}, Initialized{}}, rec.all())

	// datasets parsed from the cache, collections cache missing is
	// tolerated
	assert.Equal(t, 3, reg.Datasets().Len())
	assert.Equal(t, 0, reg.Collections().Len())
}

func TestInitializeForce(t *testing.T) {
	var paths []string
	srv := catalogueServer(t, &paths)
	defer srv.Close()

	reg, _, cacheDir := testRegistry(t, srv.URL)

	data, err := os.ReadFile(filepath.Join("testdata", "datasets.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "datasets.json"), data, 0o644))

	require.NoError(t, reg.Initialize(context.Background(), true))
	assert.ElementsMatch(t, []string{"/datasets", "/datasetCollections", "/datasetAvailabilities"}, paths)
}

func TestInitializeRequestFailed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	reg, rec, _ := testRegistry(t, srv.URL)
	err := reg.Initialize(context.Background(), false)
	require.Error(t, err)

	events := rec.all()
	require.Len(t, events, 1)
	failed, ok := events[0].(RequestFailed)
	require.True(t, ok)
	assert.Contains(t, failed.Message, "Network request failed: ")

	// snapshot untouched
	assert.Equal(t, 0, reg.Datasets().Len())
}

func TestToggleFavorite(t *testing.T) {
	srv := catalogueServer(t, new([]string))
	defer srv.Close()

	st, err := settings.Open(t.TempDir())
	require.NoError(t, err)
	cli, err := client.New(srv.URL)
	require.NoError(t, err)
	reg, err := New(filepath.Join(t.TempDir(), "cache"), cli, st, WithIconClient(iconStub))
	require.NoError(t, err)

	rec := &recorder{}
	reg.Subscribe(rec.record)

	require.NoError(t, reg.ToggleFavorite("urn:dmp:ds:aa-bes-linjer"))
	assert.True(t, reg.IsFavorite("urn:dmp:ds:aa-bes-linjer"))
	assert.Equal(t, []string{"urn:dmp:ds:aa-bes-linjer"}, reg.Favorites())
	assert.Equal(t, []string{"urn:dmp:ds:aa-bes-linjer"}, st.Favorites())

	require.NoError(t, reg.ToggleFavorite("urn:dmp:ds:aa-bes-linjer"))
	assert.False(t, reg.IsFavorite("urn:dmp:ds:aa-bes-linjer"))
	assert.Empty(t, reg.Favorites())

	assert.Equal(t, []Event{FavoritesChanged{}, FavoritesChanged{}}, rec.all())
}

func TestDownloadFile(t *testing.T) {
	fileSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ok" {
			w.Write([]byte("csv;data"))
			return
		}
		http.NotFound(w, r)
	}))
	defer fileSrv.Close()

	reg, rec, _ := testRegistry(t, fileSrv.URL)

	dest := filepath.Join(t.TempDir(), "download.csv")
	require.NoError(t, reg.DownloadFile(context.Background(), fileSrv.URL+"/ok", dest, nil))
	assert.FileExists(t, dest)

	err := reg.DownloadFile(context.Background(), fileSrv.URL+"/missing", dest+".2", nil)
	require.Error(t, err)

	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, FileDownloaded{Path: dest}, events[0])
	failed, ok := events[1].(DownloadFailed)
	require.True(t, ok)
	require.Len(t, failed.Errors, 1)
	assert.Contains(t, failed.Errors[0], "unexpected status 404")
}
