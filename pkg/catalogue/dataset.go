package catalogue

import "github.com/miljoeportal/go-dmp-catalogue/pkg/settings"

// Status is the availability state of a dataset, merged in from the
// availability feed. The zero value means the feed carried no entry
// for the dataset; callers must not treat it as available.
type Status string

const (
	StatusUnknown     Status = ""
	StatusAvailable   Status = "available"
	StatusPartly      Status = "partly"
	StatusUnavailable Status = "unavailable"
)

// Dataset is one catalogue entry. Datasets are constructed once per
// parse cycle and never mutated afterwards; the registry replaces them
// wholesale on reload.
type Dataset struct {
	UID            string
	Title          string
	Description    string
	Category       string
	CategoryIcon   Icon
	SupportContact string
	MetadataURL    string
	Created        string
	Updated        string
	Tags           []string
	Owners         []string
	Status         Status
	Thumbnail      Icon

	WMS   *WMSSource
	WMTS  *WMTSSource
	WFS   *WFSSource
	Files []FileSource
}

// HasOWSSource reports whether the dataset carries at least one
// network datasource.
func (d *Dataset) HasOWSSource() bool {
	return d.WMS != nil || d.WFS != nil || d.WMTS != nil
}

// HasFiles reports whether the dataset carries file sources.
func (d *Dataset) HasFiles() bool {
	return len(d.Files) > 0
}

// sourceLayer builds a layer from the named protocol source, or nil
// when the dataset lacks it.
func (d *Dataset) sourceLayer(protocol Protocol, st *settings.Registry) *Layer {
	switch protocol {
	case WFS:
		if d.WFS != nil {
			return d.WFS.NewLayer(d.Title, st)
		}
	case WMTS:
		if d.WMTS != nil {
			return d.WMTS.NewLayer(d.Title, st)
		}
	case WMS:
		if d.WMS != nil {
			return d.WMS.NewLayer(d.Title, st)
		}
	}
	return nil
}

// Layer builds a layer recipe from one of the dataset's network
// datasources. With an empty protocol the sources are tried in the
// configured order of preference and the first present one wins.
// Requesting a protocol the dataset lacks returns nil, not an error,
// as does a dataset without any usable source.
func (d *Dataset) Layer(protocol Protocol, st *settings.Registry) *Layer {
	var layer *Layer
	if protocol != "" {
		layer = d.sourceLayer(protocol, st)
	} else {
		order := settings.DefaultLoadOrder
		if st != nil {
			order = st.DatasourceLoadOrder()
		}
		for _, p := range order {
			if layer = d.sourceLayer(Protocol(p), st); layer != nil {
				break
			}
		}
	}

	if layer == nil {
		return nil
	}

	layer.Metadata = LayerMetadata{
		Identifier: d.UID,
		Title:      d.Title,
		Abstract:   d.Description,
		Language:   "DA",
	}
	return layer
}

// Collection groups datasets by uid. It references datasets by id
// only: entries pointing at uids missing from the registry are
// skipped at render time, never an error.
type Collection struct {
	UID         string
	Title       string
	Description string
	Datasets    []string
	Icon        Icon
}
