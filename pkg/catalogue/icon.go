package catalogue

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Icon is the path of a cached icon file. The zero value is the
// missing-icon sentinel; DefaultIcon marks the built-in catalogue
// icon used for categories without a thumbnail.
type Icon string

const (
	NoIcon      Icon = ""
	DefaultIcon Icon = "builtin:dmpcatalogue"
)

// Missing reports whether the icon is the missing sentinel.
func (i Icon) Missing() bool {
	return i == NoIcon
}

// IconStore caches fetched icons on disk, one file per resource id.
// Cached files are trusted indefinitely; there is no freshness check
// at this layer.
type IconStore struct {
	Dir    string
	Client *http.Client
}

// NewIconStore creates the cache directory when needed.
func NewIconStore(dir string) (*IconStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &IconStore{Dir: dir}, nil
}

var iconKeyReplacer = strings.NewReplacer(".", "-", ":", "-")

// Icon returns the cached icon for the given resource id, fetching it
// from url on a cache miss. Fetch failures never surface as errors;
// the missing sentinel is returned instead.
func (s *IconStore) Icon(id, url string) Icon {
	if id == "" {
		return NoIcon
	}

	file := filepath.Join(s.Dir, iconKeyReplacer.Replace(id))
	if _, err := os.Stat(file); err == nil {
		return Icon(file)
	}
	if url == "" {
		return NoIcon
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return NoIcon
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return NoIcon
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return NoIcon
	}
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return NoIcon
	}
	return Icon(file)
}
