package model

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SourceFilter restricts dataset leaves by the kind of datasource
// they carry.
type SourceFilter uint8

const (
	ShowAll SourceFilter = iota
	ShowNetworkSources
	ShowFiles
)

// FilterView is a read-only projection of a TreeModel with free-text
// filtering and locale-aware ordering. It caches nothing; visibility
// and order are computed on demand against the model's current state.
type FilterView struct {
	model    *TreeModel
	search   string
	filter   SourceFilter
	collator *collate.Collator
}

// NewFilterView wraps the model, collating labels per the given
// locale.
func NewFilterView(m *TreeModel, locale string) *FilterView {
	return &FilterView{
		model:    m,
		collator: collate.New(language.Make(locale), collate.IgnoreCase),
	}
}

// Model returns the underlying tree model.
func (v *FilterView) Model() *TreeModel { return v.model }

// SetFilterString sets the free-text filter. The string is split on
// whitespace into terms that must all match.
func (v *FilterView) SetFilterString(search string) {
	v.search = search
}

// SetSourceFilter restricts visible datasets by datasource kind.
func (v *FilterView) SetSourceFilter(filter SourceFilter) {
	v.filter = filter
}

// Visible reports whether the node passes the current filters. Group
// nodes are visible iff any descendant leaf is.
func (v *FilterView) Visible(id NodeID) bool {
	m := v.model
	if m.IsDataset(id) {
		return v.datasetVisible(id)
	}
	for _, child := range m.Children(id) {
		if v.Visible(child) {
			return true
		}
	}
	return false
}

func (v *FilterView) datasetVisible(id NodeID) bool {
	m := v.model
	ds := m.DatasetFor(id)

	if terms := strings.Fields(v.search); len(terms) > 0 {
		haystack := strings.Split(m.Label(id), " ")
		haystack = append(haystack, ds.UID)
		haystack = append(haystack, ds.Tags...)
		if ds.Description != "" {
			haystack = append(haystack, strings.Split(ds.Description, " ")...)
		}
		for parent := m.Parent(id); parent != InvalidNode && parent != m.Root(); parent = m.Parent(parent) {
			haystack = append(haystack, strings.Split(m.Label(parent), " ")...)
		}
		haystack = append(haystack, ds.Owners...)

		for _, term := range terms {
			if !matchesAny(term, haystack) {
				return false
			}
		}
	}

	switch v.filter {
	case ShowNetworkSources:
		return ds.HasOWSSource()
	case ShowFiles:
		return ds.HasFiles()
	default:
		return true
	}
}

func matchesAny(term string, haystack []string) bool {
	term = strings.ToLower(term)
	for _, s := range haystack {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// VisibleChildren returns the node's visible children in display
// order: the Favorites node first, then dataset leaves, category and
// owner groups, collections, each block collated by label.
func (v *FilterView) VisibleChildren(id NodeID) []NodeID {
	var visible []NodeID
	for _, child := range v.model.Children(id) {
		if v.Visible(child) {
			visible = append(visible, child)
		}
	}
	slices.SortStableFunc(visible, func(a, b NodeID) int {
		if v.Less(a, b) {
			return -1
		}
		if v.Less(b, a) {
			return 1
		}
		return 0
	})
	return visible
}

// typeRank orders node kinds at one sibling level.
func typeRank(kind Kind) int {
	switch kind {
	case KindFavorites:
		return 0
	case KindCategory:
		return 2
	case KindCollection:
		return 3
	default:
		return 1
	}
}

// Less is the sibling comparator under the view's locale.
func (v *FilterView) Less(a, b NodeID) bool {
	ra, rb := typeRank(v.model.Kind(a)), typeRank(v.model.Kind(b))
	if ra != rb {
		return ra < rb
	}
	return v.collator.CompareString(v.model.Label(a), v.model.Label(b)) < 0
}
