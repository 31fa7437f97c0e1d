// Package catalogue defines the entities of the DMP data catalogue
// (datasets, collections and their datasources) and the normalization
// pipeline that produces them from JSON:API documents.
package catalogue

// Protocol names an OWS datasource protocol.
type Protocol string

const (
	WFS  Protocol = "wfs"
	WMTS Protocol = "wmts"
	WMS  Protocol = "wms"
)

// WMSSource describes a WMS datasource.
type WMSSource struct {
	URL         string
	Layer       string
	Style       string
	ImageFormat string
}

// WMTSSource describes a WMTS datasource. It carries the WMS fields
// plus the tile matrix dimension.
type WMTSSource struct {
	URL         string
	Layer       string
	Style       string
	ImageFormat string
	TileMatrix  string
}

// WFSSource describes a WFS datasource.
type WFSSource struct {
	URL      string
	Typename string
}

// FileSource describes a downloadable file. It cannot become a map
// layer.
type FileSource struct {
	URL      string
	FileType string
}

// field reads a string attribute from a resolved source resource,
// defaulting to "" when absent or null.
func field(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

// NewWFSSource builds a WFS datasource from a resolved wfsSource
// resource. A nil resource yields nil, not an empty source.
func NewWFSSource(data map[string]any) *WFSSource {
	if data == nil {
		return nil
	}
	return &WFSSource{
		URL:      field(data, "url"),
		Typename: field(data, "typeName"),
	}
}

// NewWMSSource builds a WMS datasource from a resolved wmsSource
// resource.
func NewWMSSource(data map[string]any) *WMSSource {
	if data == nil {
		return nil
	}
	return &WMSSource{
		URL:         field(data, "url"),
		Layer:       field(data, "layer"),
		Style:       field(data, "style"),
		ImageFormat: field(data, "format"),
	}
}

// NewWMTSSource builds a WMTS datasource from a resolved wmtsSource
// resource.
func NewWMTSSource(data map[string]any) *WMTSSource {
	if data == nil {
		return nil
	}
	return &WMTSSource{
		URL:         field(data, "url"),
		Layer:       field(data, "layer"),
		Style:       field(data, "style"),
		ImageFormat: field(data, "format"),
		TileMatrix:  field(data, "matrixSet"),
	}
}

// FileSources builds file sources from a resolved fileSources list.
// A nil list stays nil; a present-but-empty list stays an empty list.
// Each file's fileSourceType sub-resource contributes its name as the
// file type.
func FileSources(data any) []FileSource {
	list, ok := data.([]any)
	if !ok {
		return nil
	}

	files := make([]FileSource, 0, len(list))
	for _, item := range list {
		attrs, ok := item.(map[string]any)
		if !ok {
			continue
		}

		var fileType string
		if typeInfo, ok := attrs["fileSourceType"].(map[string]any); ok {
			fileType = field(typeInfo, "name")
		}

		files = append(files, FileSource{
			URL:      field(attrs, "url"),
			FileType: fileType,
		})
	}
	return files
}
