package catalogue

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIconStoreFetchAndCache(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	store, err := NewIconStore(filepath.Join(t.TempDir(), "thumbnails"))
	require.NoError(t, err)

	icon := store.Icon("thumb.1:a", srv.URL+"/thumb.png")
	require.False(t, icon.Missing())
	assert.Equal(t, filepath.Join(store.Dir, "thumb-1-a"), string(icon))

	data, err := os.ReadFile(string(icon))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	// cache hit: the second call never reaches the server
	again := store.Icon("thumb.1:a", srv.URL+"/thumb.png")
	assert.Equal(t, icon, again)
	assert.Equal(t, 1, hits)

	// a cached file is returned even without a url
	assert.Equal(t, icon, store.Icon("thumb.1:a", ""))
}

func TestIconStoreMissing(t *testing.T) {
	store, err := NewIconStore(t.TempDir())
	require.NoError(t, err)

	assert.True(t, store.Icon("", "").Missing())
	assert.True(t, store.Icon("some-id", "").Missing())
}

func TestIconStoreFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store, err := NewIconStore(t.TempDir())
	require.NoError(t, err)

	// failures resolve to the missing sentinel, silently
	assert.True(t, store.Icon("id-1", srv.URL+"/gone.png").Missing())

	srv.Close()
	assert.True(t, store.Icon("id-2", srv.URL+"/unreachable.png").Missing())
}
