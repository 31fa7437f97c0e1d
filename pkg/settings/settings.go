// Package settings persists the catalogue browser's configuration:
// server URL, datasource preference order, auth overrides, favorites
// and the last used download directory. All keys live under a single
// dmpcatalogue namespace in one config file.
package settings

import (
	"os"
	"path/filepath"
)

// Defaults.
const (
	DefaultAPIRoot = "https://datakatalog.miljoeportal.dk/api"
	DefaultLocale  = "da"
)

// DefaultLoadOrder is the preferred datasource protocol order used
// when constructing layers.
var DefaultLoadOrder = []string{"wfs", "wmts", "wms"}

// Locales supported by the catalogue API.
var Locales = []string{"da", "uk"}

// Registry provides typed access to the persisted settings. No
// validation is performed beyond type coercion on read.
type Registry struct {
	v    *viperStore
	path string
}

// Open reads the settings file from dir, creating the directory when
// needed. A missing file is not an error; defaults apply.
func Open(dir string) (*Registry, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, "dmpcatalogue.yaml")
	v, err := openStore(path)
	if err != nil {
		return nil, err
	}

	return &Registry{v: v, path: path}, nil
}

// Path returns the location of the backing settings file.
func (r *Registry) Path() string {
	return r.path
}

// CatalogURL returns the catalogue server root URL.
func (r *Registry) CatalogURL() string {
	return r.v.getString("dmpcatalogue.url")
}

func (r *Registry) SetCatalogURL(url string) error {
	return r.v.set("dmpcatalogue.url", url)
}

// Locale returns the catalogue locale tag. Unknown tags fall back to
// the default.
func (r *Registry) Locale() string {
	locale := r.v.getString("dmpcatalogue.locale")
	for _, l := range Locales {
		if locale == l {
			return locale
		}
	}
	return DefaultLocale
}

func (r *Registry) SetLocale(locale string) error {
	return r.v.set("dmpcatalogue.locale", locale)
}

// DatasourceLoadOrder returns the preferred datasource protocol order.
func (r *Registry) DatasourceLoadOrder() []string {
	return r.v.getStringSlice("dmpcatalogue.datasource_load_order")
}

func (r *Registry) SetDatasourceLoadOrder(order []string) error {
	return r.v.set("dmpcatalogue.datasource_load_order", order)
}

// OverrideDatafordelerAuth reports whether datafordeler.dk credentials
// should be substituted into datasource URLs.
func (r *Registry) OverrideDatafordelerAuth() bool {
	return r.v.getBool("dmpcatalogue.override_datafordeler_auth")
}

func (r *Registry) SetOverrideDatafordelerAuth(override bool) error {
	return r.v.set("dmpcatalogue.override_datafordeler_auth", override)
}

// DatafordelerAuth returns the configured datafordeler.dk login and
// password.
func (r *Registry) DatafordelerAuth() (string, string) {
	return r.v.getString("dmpcatalogue.datafordeler.login"),
		r.v.getString("dmpcatalogue.datafordeler.password")
}

func (r *Registry) SetDatafordelerAuth(login, password string) error {
	if err := r.v.set("dmpcatalogue.datafordeler.login", login); err != nil {
		return err
	}
	return r.v.set("dmpcatalogue.datafordeler.password", password)
}

// OverrideDataforsyningenAuth reports whether the dataforsyningen.dk
// token should be substituted into datasource URLs.
func (r *Registry) OverrideDataforsyningenAuth() bool {
	return r.v.getBool("dmpcatalogue.override_dataforsyningen_auth")
}

func (r *Registry) SetOverrideDataforsyningenAuth(override bool) error {
	return r.v.set("dmpcatalogue.override_dataforsyningen_auth", override)
}

// DataforsyningenToken returns the configured dataforsyningen.dk token.
func (r *Registry) DataforsyningenToken() string {
	return r.v.getString("dmpcatalogue.dataforsyningen.token")
}

func (r *Registry) SetDataforsyningenToken(token string) error {
	return r.v.set("dmpcatalogue.dataforsyningen.token", token)
}

// UseRequestBBOX reports whether WFS layers should be restricted to
// the request bounding box.
func (r *Registry) UseRequestBBOX() bool {
	return r.v.getBool("dmpcatalogue.use_request_bbox")
}

func (r *Registry) SetUseRequestBBOX(use bool) error {
	return r.v.set("dmpcatalogue.use_request_bbox", use)
}

// Favorites returns the ordered list of favorite dataset uids.
func (r *Registry) Favorites() []string {
	return r.v.getStringSlice("dmpcatalogue.favorites")
}

func (r *Registry) SetFavorites(favorites []string) error {
	return r.v.set("dmpcatalogue.favorites", favorites)
}

// LastUsedDirectory returns the directory of the most recent file
// download, or "" when none was saved yet.
func (r *Registry) LastUsedDirectory() string {
	return r.v.getString("dmpcatalogue.last_dir")
}

func (r *Registry) SetLastUsedDirectory(dir string) error {
	return r.v.set("dmpcatalogue.last_dir", dir)
}
