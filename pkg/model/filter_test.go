package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/catalogue"
)

func filterRegistry() *fakeRegistry {
	reg := newFakeRegistry()

	ds1 := makeDataset("ds1", "dataset1", "dataset description", "category1",
		[]string{"raster", "landcover"}, []string{"org1"})
	ds1.WMS = &catalogue.WMSSource{URL: "https://example.org/wms"}

	ds2 := makeDataset("ds2", "dataset2", "dataset2 description", "category1",
		[]string{"raster", "elevation"}, []string{"org2"})
	ds2.WFS = &catalogue.WFSSource{URL: "https://example.org/wfs"}
	ds2.Files = []catalogue.FileSource{{URL: "https://example.org/file", FileType: "CSV"}}

	ds3 := makeDataset("ds3", "dataset1-2", "some infomative text", "category2",
		[]string{"vector", "roads"}, []string{"org1"})
	ds3.Files = []catalogue.FileSource{{URL: "https://example.org/file2", FileType: "TAB"}}

	addDataset(reg, ds1)
	addDataset(reg, ds2)
	addDataset(reg, ds3)
	return reg
}

// visibleUIDs returns the uids of the visible leaves under a group
// node, in display order.
func visibleUIDs(v *FilterView, id NodeID) []string {
	var uids []string
	for _, child := range v.VisibleChildren(id) {
		uids = append(uids, v.Model().DatasetFor(child).UID)
	}
	return uids
}

func TestFilterViewSearch(t *testing.T) {
	reg := filterRegistry()
	m := NewTreeModel(reg)
	v := NewFilterView(m, "da")

	root := m.Root()
	assert.Equal(t, []string{"category1", "category2"}, labels(m, v.VisibleChildren(root)))

	// by uid
	v.SetFilterString("ds1")
	visible := v.VisibleChildren(root)
	require.Len(t, visible, 1)
	assert.Equal(t, []string{"ds1"}, visibleUIDs(v, visible[0]))

	v.SetFilterString("ds")
	visible = v.VisibleChildren(root)
	require.Len(t, visible, 2)
	assert.Equal(t, []string{"ds1", "ds2"}, visibleUIDs(v, visible[0]))
	assert.Equal(t, []string{"ds3"}, visibleUIDs(v, visible[1]))

	// by title
	v.SetFilterString("dataset1")
	visible = v.VisibleChildren(root)
	require.Len(t, visible, 2)
	assert.Equal(t, []string{"ds1"}, visibleUIDs(v, visible[0]))
	assert.Equal(t, []string{"ds3"}, visibleUIDs(v, visible[1]))

	// by description, empty categories disappear
	v.SetFilterString("text")
	visible = v.VisibleChildren(root)
	require.Len(t, visible, 1)
	assert.Equal(t, "category2", m.Label(visible[0]))
	assert.Equal(t, []string{"ds3"}, visibleUIDs(v, visible[0]))

	// by tag
	v.SetFilterString("elevation")
	visible = v.VisibleChildren(root)
	require.Len(t, visible, 1)
	assert.Equal(t, []string{"ds2"}, visibleUIDs(v, visible[0]))

	// by ancestor group label
	v.SetFilterString("category2")
	visible = v.VisibleChildren(root)
	require.Len(t, visible, 1)
	assert.Equal(t, []string{"ds3"}, visibleUIDs(v, visible[0]))

	// by owner
	v.SetFilterString("org2")
	visible = v.VisibleChildren(root)
	require.Len(t, visible, 1)
	assert.Equal(t, []string{"ds2"}, visibleUIDs(v, visible[0]))

	// all terms must match somewhere
	v.SetFilterString("raster roads")
	assert.Empty(t, v.VisibleChildren(root))

	v.SetFilterString("")
	visible = v.VisibleChildren(root)
	require.Len(t, visible, 2)
	assert.Len(t, v.VisibleChildren(visible[0]), 2)
	assert.Len(t, v.VisibleChildren(visible[1]), 1)
}

func TestFilterViewSources(t *testing.T) {
	reg := filterRegistry()
	m := NewTreeModel(reg)
	v := NewFilterView(m, "da")
	root := m.Root()

	v.SetSourceFilter(ShowNetworkSources)
	visible := v.VisibleChildren(root)
	require.Len(t, visible, 1)
	assert.Equal(t, []string{"ds1", "ds2"}, visibleUIDs(v, visible[0]))

	v.SetSourceFilter(ShowFiles)
	visible = v.VisibleChildren(root)
	require.Len(t, visible, 2)
	assert.Equal(t, []string{"ds2"}, visibleUIDs(v, visible[0]))
	assert.Equal(t, []string{"ds3"}, visibleUIDs(v, visible[1]))

	v.SetSourceFilter(ShowAll)
	visible = v.VisibleChildren(root)
	require.Len(t, visible, 2)
	assert.Len(t, v.VisibleChildren(visible[0]), 2)
	assert.Len(t, v.VisibleChildren(visible[1]), 1)
}

func TestFilterViewFavoritesFirst(t *testing.T) {
	reg := filterRegistry()
	m := NewTreeModel(reg)
	v := NewFilterView(m, "da")
	root := m.Root()

	reg.favorites = []string{"ds2"}
	m.RepopulateFavorites(false)

	visible := v.VisibleChildren(root)
	require.Len(t, visible, 3)
	assert.Equal(t, KindFavorites, m.Kind(visible[0]))
	assert.Equal(t, []string{"Favorites", "category1", "category2"}, labels(m, visible))
	assert.Equal(t, []string{"ds2"}, visibleUIDs(v, visible[0]))
}

func TestFilterViewOrdering(t *testing.T) {
	reg := newFakeRegistry()
	// leaves without category land next to group nodes under the root
	addDataset(reg, makeDataset("ds-b", "bravo", "", "", nil, nil))
	addDataset(reg, makeDataset("ds-a", "Alpha", "", "", nil, nil))
	addDataset(reg, makeDataset("ds-c", "charlie", "", "zone", nil, nil))

	m := NewTreeModel(reg)
	v := NewFilterView(m, "da")

	// datasets sort before groups, labels collate case-insensitively
	assert.Equal(t, []string{"Alpha", "bravo", "zone"}, labels(m, v.VisibleChildren(m.Root())))
}

func TestFilterViewCollections(t *testing.T) {
	reg := filterRegistry()
	reg.collections.Add("col-01", &catalogue.Collection{
		UID: "col-01", Title: "collection1", Datasets: []string{"ds1", "ds3"},
	})
	m := NewTreeModel(reg)
	m.SetShowCollections(true)
	v := NewFilterView(m, "da")

	visible := v.VisibleChildren(m.Root())
	require.Len(t, visible, 1)
	assert.True(t, m.IsCollection(visible[0]))
	assert.Equal(t, []string{"ds1", "ds3"}, visibleUIDs(v, visible[0]))

	v.SetFilterString("landcover")
	visible = v.VisibleChildren(m.Root())
	require.Len(t, visible, 1)
	assert.Equal(t, []string{"ds1"}, visibleUIDs(v, visible[0]))
}
