package jsonapi

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadDocument decodes a JSON file from the testdata directory.
func loadDocument(t *testing.T, filename string) *Document {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", filename))
	require.NoError(t, err, "failed to read test data file")

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	return &doc
}

func TestTotal(t *testing.T) {
	doc := loadDocument(t, "datasets.json")
	total, ok := doc.Total()
	assert.True(t, ok)
	assert.Equal(t, 3, total)

	doc.Meta = nil
	_, ok = doc.Total()
	assert.False(t, ok)

	doc.Meta = map[string]any{"total": float64(0)}
	total, ok = doc.Total()
	assert.True(t, ok)
	assert.Equal(t, 0, total)

	doc.Meta = map[string]any{"count": float64(5)}
	_, ok = doc.Total()
	assert.False(t, ok)
}

func TestBuildIndex(t *testing.T) {
	doc := loadDocument(t, "datasets.json")

	idx := BuildIndex(doc.Included, IndexOptions{})
	require.Len(t, idx, len(doc.Included))

	// every entry is the record's attributes plus its id
	for _, rec := range doc.Included {
		entry, ok := idx[Ref{Type: rec.Type, ID: rec.ID}]
		require.True(t, ok)
		assert.Equal(t, rec.ID, entry["id"])
		for k, v := range rec.Attributes {
			assert.Equal(t, v, entry[k])
		}
	}

	entry := idx[Ref{Type: "wmsSources", ID: "wms-1"}]
	assert.Equal(t, "dai:aa_bes_linjer", entry["layer"])
	assert.Nil(t, entry["style"])

	entry = idx[Ref{Type: "tags", ID: "tag-3"}]
	assert.Equal(t, "grundvand", entry["name"])

	// relationships of included resources are not resolved by default
	entry = idx[Ref{Type: "fileSources", ID: "file-1"}]
	assert.NotContains(t, entry, "fileSourceType")
}

func TestBuildIndexSimplify(t *testing.T) {
	doc := loadDocument(t, "datasets.json")

	idx := BuildIndex(doc.Included, IndexOptions{Simplify: true})
	entry := idx[Ref{Type: "fileSources", ID: "file-1"}]
	require.Contains(t, entry, "fileSourceType")

	ft, ok := entry["fileSourceType"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "CSV", ft["name"])

	// categories gain their resolved thumbnail
	entry = idx[Ref{Type: "categories", ID: "cat-1"}]
	th, ok := entry["thumbnail"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://datakatalog.miljoeportal.dk/thumbnails/thumb-cat.png", th["url"])
}

func TestBuildIndexExcludeType(t *testing.T) {
	doc := loadDocument(t, "datasets.json")

	idx := BuildIndex(doc.Included, IndexOptions{ExcludeType: true})
	require.Len(t, idx, len(doc.Included))

	entry, ok := idx[Ref{ID: "wms-1"}]
	require.True(t, ok)
	assert.Equal(t, "dai:aa_bes_linjer", entry["layer"])

	entry, ok = idx[Ref{ID: "tag-3"}]
	require.True(t, ok)
	assert.Equal(t, "grundvand", entry["name"])
}

func TestBuildIndexIncludeRelationships(t *testing.T) {
	doc := loadDocument(t, "collections.json")

	idx := BuildIndex(doc.Included, IndexOptions{IncludeRelationships: true})
	entry, ok := idx[Ref{Type: "datasetCollectionItems", ID: "ci-1"}]
	require.True(t, ok)
	require.Contains(t, entry, "dataset")

	rel, ok := entry["dataset"].(Relationship)
	require.True(t, ok)
	ref, ok := rel.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "urn:dmp:ds:aa-bes-linjer", ref["id"])
}

func TestBuildIndexDuplicateKeys(t *testing.T) {
	records := []*Resource{
		{Type: "tags", ID: "t1", Attributes: map[string]any{"name": "first"}},
		{Type: "tags", ID: "t1", Attributes: map[string]any{"name": "second"}},
	}

	idx := BuildIndex(records, IndexOptions{})
	require.Len(t, idx, 1)
	assert.Equal(t, "first", idx[Ref{Type: "tags", ID: "t1"}]["name"])
}

func TestBuildIndexCopiesAttributes(t *testing.T) {
	rec := &Resource{Type: "tags", ID: "t1", Attributes: map[string]any{"name": "grundvand"}}

	BuildIndex([]*Resource{rec}, IndexOptions{})
	assert.NotContains(t, rec.Attributes, "id")
}

func TestResolve(t *testing.T) {
	doc := loadDocument(t, "datasets.json")
	idx := BuildIndex(doc.Included, IndexOptions{})

	assert.Nil(t, Resolve(nil, idx))

	// dangling reference resolves to nil, not an error
	assert.Nil(t, Resolve(map[string]any{"type": "wmtsSources", "id": "wms-1"}, idx))

	res := Resolve(map[string]any{"type": "wmsSources", "id": "wms-1"}, idx)
	attrs, ok := res.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://b0902-prod-dist-app.azurewebsites.net/geoserver/wms", attrs["url"])

	// lists drop unresolvable members
	res = Resolve([]any{
		map[string]any{"type": "tags", "id": "tag-1"},
		map[string]any{"type": "tags", "id": "tag-gone"},
		map[string]any{"type": "tags", "id": "tag-2"},
	}, idx)
	list, ok := res.([]any)
	require.True(t, ok)
	require.Len(t, list, 2)
	assert.Equal(t, "åbeskyttelse", list[0].(map[string]any)["name"])
	assert.Equal(t, "naturbeskyttelse", list[1].(map[string]any)["name"])

	// all-nil collapses to nil, not an empty list
	res = Resolve([]any{map[string]any{"type": "tags", "id": "tag-gone"}}, idx)
	assert.Nil(t, res)
	assert.Nil(t, Resolve([]any{}, idx))
}

func TestFlatten(t *testing.T) {
	doc := loadDocument(t, "datasets.json")
	idx := BuildIndex(doc.Included, IndexOptions{Simplify: true})

	Flatten(doc.Data, idx)
	require.Len(t, doc.Data, 3)

	for _, rec := range doc.Data {
		assert.Nil(t, rec.Relationships)
		for _, key := range []string{
			"wfsSource", "wmsSource", "wmtsSource", "fileSources",
			"tags", "owners", "category", "thumbnail",
		} {
			assert.Contains(t, rec.Attributes, key)
		}
	}

	attrs := doc.Data[0].Attributes
	wms, ok := attrs["wmsSource"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "dai:aa_bes_linjer", wms["layer"])

	tags, ok := attrs["tags"].([]any)
	require.True(t, ok)
	require.Len(t, tags, 2)

	// dangling wfs reference on the third record resolved to nil
	assert.Nil(t, doc.Data[2].Attributes["wfsSource"])

	// flattening twice is a no-op
	before := doc.Data[0].Attributes["wmsSource"]
	Flatten(doc.Data, idx)
	assert.Equal(t, before, doc.Data[0].Attributes["wmsSource"])
}

func TestAttribute(t *testing.T) {
	doc := loadDocument(t, "datasets.json")
	idx := BuildIndex(doc.Included, IndexOptions{Simplify: true})
	Flatten(doc.Data, idx)

	attrs := doc.Data[0].Attributes

	assert.Nil(t, Attribute(nil, "name"))
	assert.Equal(t, "dai:aa_bes_linjer", Attribute(attrs["wmsSource"], "layer"))
	assert.Nil(t, Attribute(attrs["wmsSource"], "missing"))

	names, ok := Attribute(attrs["tags"], "name").([]any)
	require.True(t, ok)
	assert.Equal(t, []any{"åbeskyttelse", "naturbeskyttelse"}, names)

	// empty extraction collapses to nil
	assert.Nil(t, Attribute([]any{map[string]any{"other": 1}}, "name"))
}

func TestStringHelpers(t *testing.T) {
	doc := loadDocument(t, "datasets.json")
	idx := BuildIndex(doc.Included, IndexOptions{Simplify: true})
	Flatten(doc.Data, idx)

	attrs := doc.Data[0].Attributes
	assert.Equal(t, "dai:aa_bes_linjer", String(attrs["wmsSource"], "layer"))
	assert.Equal(t, "", String(attrs["wmsSource"], "missing"))
	assert.Equal(t, []string{"åbeskyttelse", "naturbeskyttelse"}, Strings(attrs["tags"], "name"))
	assert.Equal(t, []string{"Kommunerne"}, Strings(attrs["owners"], "title"))
	assert.Nil(t, Strings(nil, "name"))
}
