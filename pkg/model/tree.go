// Package model holds the dataset tree shown by catalogue browsers: a
// rebuildable tree over the registry snapshot, grouped by category or
// owner or organized into collections, plus a filtered, sorted view
// on top of it.
package model

import (
	"fmt"
	"slices"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/catalogue"
)

// Kind tags the node variants of the tree.
type Kind uint8

const (
	KindCategory Kind = iota
	KindDataset
	KindFavorites
	KindCollection
	KindOwner
)

// NodeID is a stable handle into the model's node arena. Handles are
// invalidated by Rebuild.
type NodeID int32

// InvalidNode is the null node handle.
const InvalidNode NodeID = -1

// GroupMode selects the grouping of dataset leaves.
type GroupMode uint8

const (
	GroupCategories GroupMode = iota
	GroupOwners
)

// Highlight colors for datasets that are not fully available.
const (
	ColorUnavailable = "#d65253"
	ColorPartly      = "#eab700"
)

// Decoration sentinels for nodes without a cached thumbnail.
const (
	IconFavorites   catalogue.Icon = "builtin:favorites"
	IconUnavailable catalogue.Icon = "builtin:unavailable"
	IconWarning     catalogue.Icon = "builtin:warning"
)

type node struct {
	parent   NodeID
	children []NodeID
	kind     Kind

	// label carries the category name, owner name or collection
	// title; dataset leaves take their label from the dataset.
	label      string
	icon       catalogue.Icon
	dataset    *catalogue.Dataset
	collection *catalogue.Collection
}

// Registry is the slice of the data registry the model reads.
type Registry interface {
	Datasets() *catalogue.DatasetSet
	Collections() *catalogue.CollectionSet
	Favorites() []string
}

// TreeModel is the dataset tree. Nodes live in an arena addressed by
// NodeID; Rebuild resets the arena wholesale. The model is not safe
// for concurrent use, mutate it from one goroutine only.
type TreeModel struct {
	data Registry

	nodes     []node
	root      NodeID
	favorites NodeID

	mode            GroupMode
	showCollections bool
	favoritesLabel  string

	observers []Observer
}

// TreeOption configures a TreeModel.
type TreeOption func(*TreeModel)

// WithFavoritesLabel sets the localized label of the Favorites node.
func WithFavoritesLabel(label string) TreeOption {
	return func(m *TreeModel) { m.favoritesLabel = label }
}

// NewTreeModel builds a tree over the registry's current snapshot.
func NewTreeModel(data Registry, opts ...TreeOption) *TreeModel {
	m := &TreeModel{
		data:           data,
		root:           InvalidNode,
		favorites:      InvalidNode,
		favoritesLabel: "Favorites",
	}
	for _, o := range opts {
		o(m)
	}
	m.Rebuild()
	return m
}

// AddObserver registers a change observer.
func (m *TreeModel) AddObserver(obs Observer) {
	m.observers = append(m.observers, obs)
}

// GroupMode returns the current grouping.
func (m *TreeModel) GroupMode() GroupMode { return m.mode }

// SetGroupMode switches the grouping and rebuilds.
func (m *TreeModel) SetGroupMode(mode GroupMode) {
	m.mode = mode
	m.Rebuild()
}

// ShowCollections reports whether the tree is in collections mode.
func (m *TreeModel) ShowCollections() bool { return m.showCollections }

// SetShowCollections toggles collections mode and rebuilds.
func (m *TreeModel) SetShowCollections(show bool) {
	m.showCollections = show
	m.Rebuild()
}

// Rebuild resets the tree and repopulates it from the registry. The
// first child of the root is always the Favorites node.
func (m *TreeModel) Rebuild() {
	for _, obs := range m.observers {
		obs.ModelAboutToBeReset()
	}

	m.nodes = m.nodes[:0]
	rootKind := KindCategory
	if m.mode == GroupOwners {
		rootKind = KindOwner
	}
	m.root = m.newNode(InvalidNode, node{kind: rootKind})
	m.favorites = m.newNode(m.root, node{kind: KindFavorites})
	m.RepopulateFavorites(true)

	if m.showCollections {
		for col := range m.data.Collections().All() {
			m.addCollection(col)
		}
	} else {
		for ds := range m.data.Datasets().All() {
			m.addDataset(ds)
		}
	}

	for _, obs := range m.observers {
		obs.ModelReset()
	}
}

// RepopulateFavorites rebuilds the Favorites subtree from the
// registry's favorites list, preserving list order and skipping uids
// that no longer resolve. Outside of a full reset the mutation is
// bracketed with row notifications and finished with FavoriteAdded,
// which fires even when the subtree ends up empty.
func (m *TreeModel) RepopulateFavorites(resetting bool) {
	if m.favorites == InvalidNode {
		return
	}

	prev := len(m.nodes[m.favorites].children)
	if !resetting && prev > 0 {
		for _, obs := range m.observers {
			obs.RowsAboutToBeRemoved(m.favorites, 0, prev-1)
		}
		m.nodes[m.favorites].children = nil
		for _, obs := range m.observers {
			obs.RowsRemoved(m.favorites, 0, prev-1)
		}
	} else {
		m.nodes[m.favorites].children = nil
	}

	var datasets []*catalogue.Dataset
	for _, uid := range m.data.Favorites() {
		if ds, ok := m.data.Datasets().Get(uid); ok {
			datasets = append(datasets, ds)
		}
	}

	if len(datasets) == 0 {
		if !resetting {
			for _, obs := range m.observers {
				obs.FavoriteAdded()
			}
		}
		return
	}

	if !resetting {
		for _, obs := range m.observers {
			obs.RowsAboutToBeInserted(m.favorites, 0, len(datasets)-1)
		}
	}
	for _, ds := range datasets {
		m.newNode(m.favorites, node{kind: KindDataset, dataset: ds})
	}
	if !resetting {
		for _, obs := range m.observers {
			obs.RowsInserted(m.favorites, 0, len(datasets)-1)
		}
		for _, obs := range m.observers {
			obs.FavoriteAdded()
		}
	}
}

func (m *TreeModel) newNode(parent NodeID, n node) NodeID {
	n.parent = parent
	id := NodeID(len(m.nodes))
	m.nodes = append(m.nodes, n)
	if parent != InvalidNode {
		m.nodes[parent].children = append(m.nodes[parent].children, id)
	}
	return id
}

// childGroup finds a direct category child of parent with the given
// label.
func (m *TreeModel) childGroup(parent NodeID, label string) NodeID {
	for _, id := range m.nodes[parent].children {
		if m.nodes[id].kind == KindCategory && m.nodes[id].label == label {
			return id
		}
	}
	return InvalidNode
}

// addDataset attaches a dataset leaf according to the group mode. In
// owner mode a dataset gets one leaf per owner; empty group names put
// the leaf directly under the root.
func (m *TreeModel) addDataset(ds *catalogue.Dataset) {
	switch m.mode {
	case GroupCategories:
		if ds.Category == "" {
			m.newNode(m.root, node{kind: KindDataset, dataset: ds})
			return
		}
		group := m.childGroup(m.root, ds.Category)
		if group == InvalidNode {
			group = m.newNode(m.root, node{kind: KindCategory, label: ds.Category, icon: ds.CategoryIcon})
		}
		m.newNode(group, node{kind: KindDataset, dataset: ds})
	case GroupOwners:
		for _, owner := range ds.Owners {
			if owner == "" {
				m.newNode(m.root, node{kind: KindDataset, dataset: ds})
				continue
			}
			group := m.childGroup(m.root, owner)
			if group == InvalidNode {
				group = m.newNode(m.root, node{kind: KindCategory, label: owner})
			}
			m.newNode(group, node{kind: KindDataset, dataset: ds})
		}
	}
}

// addCollection attaches a collection node with one leaf per dataset
// uid that resolves in the registry. A collection whose uids all
// dangle stays as an empty, childless node.
func (m *TreeModel) addCollection(col *catalogue.Collection) {
	id := m.newNode(m.root, node{
		kind:       KindCollection,
		label:      col.Title,
		icon:       col.Icon,
		collection: col,
	})
	for _, uid := range col.Datasets {
		if ds, ok := m.data.Datasets().Get(uid); ok {
			m.newNode(id, node{kind: KindDataset, dataset: ds})
		}
	}
}

// Root returns the invisible root node.
func (m *TreeModel) Root() NodeID { return m.root }

// FavoritesNode returns the Favorites group node.
func (m *TreeModel) FavoritesNode() NodeID { return m.favorites }

func (m *TreeModel) valid(id NodeID) bool {
	return id >= 0 && int(id) < len(m.nodes)
}

// Children returns the child handles of a node in insertion order.
func (m *TreeModel) Children(id NodeID) []NodeID {
	if !m.valid(id) {
		return nil
	}
	return m.nodes[id].children
}

// Parent returns the parent handle, or InvalidNode for the root.
func (m *TreeModel) Parent(id NodeID) NodeID {
	if !m.valid(id) {
		return InvalidNode
	}
	return m.nodes[id].parent
}

// Kind returns the node's variant tag.
func (m *TreeModel) Kind(id NodeID) Kind {
	if !m.valid(id) {
		return KindCategory
	}
	return m.nodes[id].kind
}

// IsDataset reports whether the node is a dataset leaf.
func (m *TreeModel) IsDataset(id NodeID) bool {
	return m.valid(id) && m.nodes[id].kind == KindDataset
}

// IsCollection reports whether the node is a collection node.
func (m *TreeModel) IsCollection(id NodeID) bool {
	return m.valid(id) && m.nodes[id].kind == KindCollection
}

// IsCategory reports whether the node is a category or owner group.
func (m *TreeModel) IsCategory(id NodeID) bool {
	return m.valid(id) && m.nodes[id].kind == KindCategory
}

// DatasetFor returns the dataset of a leaf node, or nil for any other
// node.
func (m *TreeModel) DatasetFor(id NodeID) *catalogue.Dataset {
	if !m.IsDataset(id) {
		return nil
	}
	return m.nodes[id].dataset
}

// CollectionFor returns the collection of a collection node, or nil
// for any other node.
func (m *TreeModel) CollectionFor(id NodeID) *catalogue.Collection {
	if !m.IsCollection(id) {
		return nil
	}
	return m.nodes[id].collection
}

// Path returns the row indexes leading from the root to the node.
func (m *TreeModel) Path(id NodeID) []int {
	if !m.valid(id) || id == m.root {
		return nil
	}
	var path []int
	for id != m.root {
		parent := m.nodes[id].parent
		if parent == InvalidNode {
			return nil
		}
		row := slices.Index(m.nodes[parent].children, id)
		if row < 0 {
			return nil
		}
		path = append(path, row)
		id = parent
	}
	slices.Reverse(path)
	return path
}

// NodeAt resolves a row index path back to a node handle.
func (m *TreeModel) NodeAt(path []int) NodeID {
	id := m.root
	for _, row := range path {
		children := m.Children(id)
		if row < 0 || row >= len(children) {
			return InvalidNode
		}
		id = children[row]
	}
	return id
}

// Label returns the node's display text.
func (m *TreeModel) Label(id NodeID) string {
	if !m.valid(id) {
		return ""
	}
	n := &m.nodes[id]
	switch n.kind {
	case KindDataset:
		return n.dataset.Title
	case KindFavorites:
		return m.favoritesLabel
	default:
		return n.label
	}
}

// Tooltip returns the node's hover text. Dataset leaves get the rich
// tooltip; the Favorites node never takes one.
func (m *TreeModel) Tooltip(id NodeID) string {
	if !m.valid(id) {
		return ""
	}
	n := &m.nodes[id]
	switch n.kind {
	case KindDataset:
		return datasetTooltip(n.dataset)
	case KindFavorites:
		return ""
	default:
		return n.label
	}
}

// datasetTooltip renders a dataset's tooltip: the title, up to 79
// characters of the description and a status line for anything not
// fully available.
func datasetTooltip(ds *catalogue.Dataset) string {
	text := fmt.Sprintf("<p><b>%s</b></p>", ds.Title)

	if ds.Description != "" {
		runes := []rune(ds.Description)
		if len(runes) > 80 {
			text += fmt.Sprintf("<p>%s…</p>", string(runes[:79]))
		} else {
			text += fmt.Sprintf("<p>%s</p>", ds.Description)
		}
	}

	if ds.Status != catalogue.StatusAvailable {
		text += fmt.Sprintf("<p><b>Status:</b> %s</p>", ds.Status)
	}
	return text
}

// Foreground returns the highlight color for datasets that are not
// fully available, or "" for the default color.
func (m *TreeModel) Foreground(id NodeID) string {
	ds := m.DatasetFor(id)
	if ds == nil {
		return ""
	}
	switch ds.Status {
	case catalogue.StatusUnavailable:
		return ColorUnavailable
	case catalogue.StatusPartly:
		return ColorPartly
	default:
		return ""
	}
}

// Decoration returns the node's icon. Availability problems override
// a dataset's thumbnail.
func (m *TreeModel) Decoration(id NodeID) catalogue.Icon {
	if !m.valid(id) {
		return catalogue.NoIcon
	}
	n := &m.nodes[id]
	switch n.kind {
	case KindDataset:
		switch n.dataset.Status {
		case catalogue.StatusUnavailable:
			return IconUnavailable
		case catalogue.StatusPartly:
			return IconWarning
		default:
			return n.dataset.Thumbnail
		}
	case KindFavorites:
		return IconFavorites
	case KindCategory, KindCollection:
		if n.icon.Missing() {
			return catalogue.DefaultIcon
		}
		return n.icon
	default:
		return catalogue.DefaultIcon
	}
}
