package catalogue

import (
	"net/url"
	"strings"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/settings"
)

// Fixed CRS used by all catalogue layers.
const layerCRS = "EPSG:25832"

// LayerMetadata carries the dataset information attached to a
// constructed layer.
type LayerMetadata struct {
	Identifier string
	Title      string
	Abstract   string
	Language   string
}

// Layer is a provider-agnostic layer construction recipe: the provider
// key plus an encoded datasource URI, ready to hand to the host
// application's map engine.
type Layer struct {
	Provider string
	URI      string
	Title    string
	Metadata LayerMetadata
}

// PrepareURL readies a datasource URL for layer construction: decodes
// percent encoding and substitutes configured credentials for the two
// recognized service domains when the corresponding override is
// enabled. Substitution happens only when the URL already carries the
// relevant query parameters.
func PrepareURL(raw string, st *settings.Registry) string {
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	if st == nil {
		return raw
	}

	if strings.Contains(raw, "datafordeler.dk") && st.OverrideDatafordelerAuth() {
		if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
			query := u.Query()
			if query.Has("username") && query.Has("password") {
				login, password := st.DatafordelerAuth()
				u.RawQuery = "username=" + url.QueryEscape(login) +
					"&password=" + url.QueryEscape(password)
				raw = u.String()
			}
		}
	}

	if strings.Contains(raw, "dataforsyningen.dk") && st.OverrideDataforsyningenAuth() {
		if u, err := url.Parse(raw); err == nil && u.RawQuery != "" {
			if u.Query().Has("token") {
				u.RawQuery = "token=" + url.QueryEscape(st.DataforsyningenToken())
				raw = u.String()
			}
		}
	}

	return raw
}

// encodeURI renders ordered key/value pairs in the encoded datasource
// URI format expected by the layer collaborator.
func encodeURI(params [][2]string) string {
	var sb strings.Builder
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p[0])
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p[1]))
	}
	return sb.String()
}

// NewLayer converts the source into a raster layer recipe.
func (s *WMSSource) NewLayer(title string, st *settings.Registry) *Layer {
	uri := encodeURI([][2]string{
		{"url", PrepareURL(s.URL, st)},
		{"layers", s.Layer},
		{"styles", s.Style},
		{"format", s.ImageFormat},
		{"crs", layerCRS},
	})
	return &Layer{Provider: "wms", URI: uri, Title: title}
}

// capabilitiesURL makes sure a WMTS URL requests the service
// capabilities document, appending the missing query parameters.
func capabilitiesURL(u string) string {
	lower := strings.ToLower(u)
	hasService := strings.Contains(lower, "service=wmts")
	hasRequest := strings.Contains(lower, "request=getcapabilities")
	if hasService && hasRequest {
		return u
	}

	if !strings.Contains(u, "?") {
		u += "?"
	} else if u[len(u)-1] != '?' && u[len(u)-1] != '&' {
		u += "&"
	}

	if !hasService {
		u += "SERVICE=WMTS&"
	}
	if !hasRequest {
		u += "REQUEST=GetCapabilities"
	}
	return u
}

// NewLayer converts the source into a raster layer recipe. WMTS layers
// are constructed from the service's capabilities URL.
func (s *WMTSSource) NewLayer(title string, st *settings.Registry) *Layer {
	uri := encodeURI([][2]string{
		{"url", capabilitiesURL(PrepareURL(s.URL, st))},
		{"layers", s.Layer},
		{"styles", s.Style},
		{"format", s.ImageFormat},
		{"tileMatrixSet", s.TileMatrix},
		{"crs", layerCRS},
	})
	return &Layer{Provider: "wms", URI: uri, Title: title}
}

// NewLayer converts the source into a vector layer recipe.
func (s *WFSSource) NewLayer(title string, st *settings.Registry) *Layer {
	params := [][2]string{
		{"url", PrepareURL(s.URL, st)},
		{"typename", s.Typename},
		{"srsname", layerCRS},
	}
	if st != nil && st.UseRequestBBOX() {
		params = append(params, [2]string{"restrictToRequestBBOX", "1"})
	}
	return &Layer{Provider: "wfs", URI: encodeURI(params), Title: title}
}
