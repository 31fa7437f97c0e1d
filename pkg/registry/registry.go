// Package registry owns the lifecycle of catalogue data: fetching
// server replies into a local cache, parsing them into typed entities
// and holding the current snapshot for readers. Favorites and file
// downloads live here too.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/catalogue"
	"github.com/miljoeportal/go-dmp-catalogue/pkg/client"
	"github.com/miljoeportal/go-dmp-catalogue/pkg/downloader"
	"github.com/miljoeportal/go-dmp-catalogue/pkg/jsonapi"
	"github.com/miljoeportal/go-dmp-catalogue/pkg/settings"
)

// Cache file names under the registry's cache directory.
const (
	datasetsCache    = "datasets.json"
	collectionsCache = "collections.json"
	statusCache      = "status.json"
	thumbnailsDir    = "thumbnails"
)

// Option configures a Registry during construction.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Registry) { r.log = log }
}

// WithDownloader overrides the file downloader.
func WithDownloader(dl *downloader.Downloader) Option {
	return func(r *Registry) { r.dl = dl }
}

// WithIconClient overrides the HTTP client used for thumbnail fetches.
func WithIconClient(httpClient *http.Client) Option {
	return func(r *Registry) { r.icons.Client = httpClient }
}

// WithProgress registers a callback for dataset parsing progress.
func WithProgress(progress catalogue.ProgressFunc) Option {
	return func(r *Registry) { r.progress = progress }
}

// Registry caches, parses and serves catalogue data. Snapshot reads
// are safe from any goroutine; Initialize replaces the snapshot
// atomically.
type Registry struct {
	client   *client.Client
	st       *settings.Registry
	dl       *downloader.Downloader
	cacheDir string
	icons    *catalogue.IconStore
	progress catalogue.ProgressFunc
	log      zerolog.Logger

	mu          sync.RWMutex
	datasets    *catalogue.DatasetSet
	collections *catalogue.CollectionSet
	favorites   []string
	handlers    []func(Event)
}

// New creates a registry backed by the given cache directory. The
// directory and the thumbnail cache below it are created when needed;
// favorites are loaded from settings.
func New(cacheDir string, cli *client.Client, st *settings.Registry, opts ...Option) (*Registry, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("registry: creating cache directory: %w", err)
	}
	icons, err := catalogue.NewIconStore(filepath.Join(cacheDir, thumbnailsDir))
	if err != nil {
		return nil, fmt.Errorf("registry: creating thumbnail cache: %w", err)
	}

	r := &Registry{
		client:      cli,
		st:          st,
		dl:          &downloader.Downloader{},
		cacheDir:    cacheDir,
		icons:       icons,
		log:         zerolog.Nop(),
		datasets:    catalogue.NewSet[*catalogue.Dataset](),
		collections: catalogue.NewSet[*catalogue.Collection](),
		favorites:   st.Favorites(),
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Subscribe registers an event handler. Handlers are called
// synchronously from the goroutine that produced the event, so they
// must not block. Subscribing after Initialize has been started is
// not supported.
func (r *Registry) Subscribe(fn func(Event)) {
	r.handlers = append(r.handlers, fn)
}

func (r *Registry) emit(e Event) {
	for _, fn := range r.handlers {
		fn(e)
	}
}

// Datasets returns the current dataset snapshot.
func (r *Registry) Datasets() *catalogue.DatasetSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.datasets
}

// Collections returns the current collection snapshot.
func (r *Registry) Collections() *catalogue.CollectionSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collections
}

// Favorites returns a copy of the favorite dataset uids.
func (r *Registry) Favorites() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.favorites)
}

// IsFavorite reports whether the dataset uid is marked favorite.
func (r *Registry) IsFavorite(uid string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.favorites, uid)
}

// ToggleFavorite adds the uid to the favorites, or removes it when
// already present. The new list is persisted to settings.
func (r *Registry) ToggleFavorite(uid string) error {
	r.mu.Lock()
	if i := slices.Index(r.favorites, uid); i >= 0 {
		r.favorites = slices.Delete(r.favorites, i, i+1)
	} else {
		r.favorites = append(r.favorites, uid)
	}
	favorites := slices.Clone(r.favorites)
	r.mu.Unlock()

	if err := r.st.SetFavorites(favorites); err != nil {
		return fmt.Errorf("registry: saving favorites: %w", err)
	}
	r.emit(FavoritesChanged{})
	return nil
}

// Initialize brings the registry up to date: cached replies no older
// than today are reused with only the availability feed refreshed,
// anything else is fetched anew. The parsed snapshot is swapped in and
// Initialized is emitted. Request failures emit RequestFailed and
// abort without touching the current snapshot.
func (r *Registry) Initialize(ctx context.Context, force bool) error {
	if r.cacheFresh() && !force {
		// availability changes daily, the rest of the cache is
		// still good
		if err := r.fetch(ctx, statusCache, r.client.FetchAvailability); err != nil {
			r.requestFailed(err)
			return err
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return r.fetch(gctx, datasetsCache, r.client.FetchDatasets) })
		g.Go(func() error { return r.fetch(gctx, collectionsCache, r.client.FetchCollections) })
		g.Go(func() error { return r.fetch(gctx, statusCache, r.client.FetchAvailability) })
		if err := g.Wait(); err != nil {
			r.requestFailed(err)
			return err
		}
	}
	r.emit(Fetched{})

	return r.parse(ctx)
}

func (r *Registry) requestFailed(err error) {
	r.log.Error().Err(err).Msg("catalogue request failed")
	r.emit(RequestFailed{Message: "Network request failed: " + err.Error()})
}

// cacheFresh reports whether the cached datasets reply was written
// today.
func (r *Registry) cacheFresh() bool {
	fi, err := os.Stat(filepath.Join(r.cacheDir, datasetsCache))
	if err != nil {
		return false
	}
	y1, m1, d1 := fi.ModTime().Date()
	y2, m2, d2 := time.Now().Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

func (r *Registry) fetch(ctx context.Context, name string, fn func(context.Context) ([]byte, error)) error {
	body, err := fn(ctx)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(r.cacheDir, name), body, 0o644)
}

// parse loads the cached replies into typed entities and swaps them
// into the registry. A missing or empty datasets reply yields an empty
// snapshot rather than an error; missing status or collections caches
// are tolerated.
func (r *Registry) parse(ctx context.Context) error {
	statusIdx := r.loadStatusIndex()

	datasets := catalogue.NewSet[*catalogue.Dataset]()
	doc, err := r.loadDocument(datasetsCache)
	if err != nil {
		return err
	}
	if doc != nil {
		datasets, err = catalogue.Datasets(ctx, doc, statusIdx, r.icons, r.progress)
		if errors.Is(err, catalogue.ErrNoData) {
			r.log.Warn().Msg("datasets reply contains no data")
			datasets = catalogue.NewSet[*catalogue.Dataset]()
		} else if err != nil {
			return err
		}
	}

	collections := catalogue.NewSet[*catalogue.Collection]()
	if doc, err := r.loadDocument(collectionsCache); err == nil && doc != nil {
		collections, err = catalogue.Collections(ctx, doc, r.icons)
		if err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.datasets = datasets
	r.collections = collections
	r.mu.Unlock()

	r.log.Info().Int("datasets", datasets.Len()).Int("collections", collections.Len()).Msg("registry initialized")
	r.emit(Initialized{})
	return nil
}

func (r *Registry) loadDocument(name string) (*jsonapi.Document, error) {
	data, err := os.ReadFile(filepath.Join(r.cacheDir, name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("registry: reading cache %s: %w", name, err)
	}
	return client.Decode(data)
}

func (r *Registry) loadStatusIndex() jsonapi.Index {
	doc, err := r.loadDocument(statusCache)
	if err != nil || doc == nil {
		return nil
	}
	return jsonapi.BuildIndex(doc.Data, jsonapi.IndexOptions{ExcludeType: true})
}

// DownloadFile fetches a file source url into path, emitting
// FileDownloaded on success and DownloadFailed otherwise.
func (r *Registry) DownloadFile(ctx context.Context, rawURL, path string, progress downloader.ProgressFunc) error {
	if err := r.dl.Download(ctx, rawURL, path, progress); err != nil {
		r.log.Error().Err(err).Str("url", rawURL).Msg("download failed")
		r.emit(DownloadFailed{Errors: []string{err.Error()}})
		return err
	}
	r.emit(FileDownloaded{Path: path})
	return nil
}
