// Package jsonapi implements the small slice of the JSON:API wire
// format used by the DMP data catalogue: typed/id-keyed resources, a
// lookup index over a document's "included" section, and flattening of
// relationship references into plain attribute values.
//
// The package works on decoded JSON (map[string]any / []any); it never
// talks to the network. One level of included-resource resolution is
// supported, which is exactly what the catalogue responses need.
package jsonapi

import "maps"

// Ref identifies a resource within one response. A (Type, ID) pair is
// globally unique in a document; ID alone is unique only within a
// single resource type.
type Ref struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship is the raw, unresolved relationship block of a
// resource. Data holds a single reference (map[string]any), a list of
// references ([]any), or nil.
type Relationship struct {
	Data any `json:"data"`
}

// Resource is one record of a response's "data" or "included" section.
type Resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    map[string]any          `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Document is the response envelope shared by all catalogue endpoints.
type Document struct {
	Meta     map[string]any `json:"meta,omitempty"`
	Data     []*Resource    `json:"data"`
	Included []*Resource    `json:"included,omitempty"`
}

// Total returns the meta.total count and whether meta was present at
// all. A missing meta section or a zero total both mean "no data".
func (d *Document) Total() (int, bool) {
	if d.Meta == nil {
		return 0, false
	}
	total, ok := d.Meta["total"]
	if !ok {
		return 0, false
	}
	// encoding/json decodes numbers into float64
	if f, ok := total.(float64); ok {
		return int(f), true
	}
	return 0, false
}

// Index is a fast Ref to attributes lookup built from a flat list of
// resources. Values are attribute maps with the resource id injected
// under the "id" key.
type Index map[Ref]map[string]any

// IndexOptions control how BuildIndex keys and shapes its entries.
type IndexOptions struct {
	// ExcludeType keys entries by id alone. Only valid when every
	// record in the batch shares one type, e.g. an availability list.
	ExcludeType bool

	// Simplify flattens the records against a first-pass index before
	// building the final one, so one-level-deep relationships among
	// included resources become plain attribute values.
	Simplify bool

	// IncludeRelationships merges the raw, unresolved relationship
	// blocks into each entry alongside the attributes.
	IncludeRelationships bool
}

// BuildIndex transforms a flat resource list into an Index. On
// duplicate keys the first occurrence wins, later ones are ignored.
func BuildIndex(records []*Resource, opts IndexOptions) Index {
	result := make(Index, len(records))
	for _, rec := range records {
		key := Ref{Type: rec.Type, ID: rec.ID}
		if opts.ExcludeType {
			key = Ref{ID: rec.ID}
		}
		if _, ok := result[key]; ok {
			continue
		}

		attrs := make(map[string]any, len(rec.Attributes)+len(rec.Relationships)+1)
		maps.Copy(attrs, rec.Attributes)
		if opts.IncludeRelationships {
			for name, rel := range rec.Relationships {
				attrs[name] = rel
			}
		}
		attrs["id"] = rec.ID
		result[key] = attrs
	}

	if opts.Simplify {
		Flatten(records, result)
		result = BuildIndex(records, IndexOptions{ExcludeType: opts.ExcludeType})
	}

	return result
}

// Resolve looks up the resource(s) referenced by data. A single
// reference resolves to its attribute map, or nil when the reference
// dangles. For a list every member is resolved independently, nils are
// dropped, and an all-nil result collapses to nil rather than an empty
// list. Call sites that must distinguish a present-but-empty list from
// an absent one (file sources) have to special-case the empty input
// before calling.
func Resolve(data any, idx Index) any {
	switch v := data.(type) {
	case nil:
		return nil
	case map[string]any:
		t, _ := v["type"].(string)
		id, _ := v["id"].(string)
		if attrs, ok := idx[Ref{Type: t, ID: id}]; ok {
			return attrs
		}
		return nil
	case []any:
		var resolved []any
		for _, ref := range v {
			if r := Resolve(ref, idx); r != nil {
				resolved = append(resolved, r)
			}
		}
		if len(resolved) == 0 {
			return nil
		}
		return resolved
	}
	return nil
}

// Flatten rewrites each record in place so relationship references
// become embedded attribute values resolved against idx, then drops
// the relationships block. Records without relationships are left
// untouched, which makes a second pass a no-op.
func Flatten(records []*Resource, idx Index) {
	for _, rec := range records {
		if rec.Relationships == nil {
			continue
		}
		if rec.Attributes == nil {
			rec.Attributes = make(map[string]any, len(rec.Relationships))
		}
		for name, rel := range rec.Relationships {
			rec.Attributes[name] = Resolve(rel.Data, idx)
		}
		rec.Relationships = nil
	}
}

// Attribute extracts the value(s) under key from a resolved resource.
// For a single attribute map it returns the value or nil; for a list
// it extracts from every member, drops nils, and collapses an empty
// result to nil.
func Attribute(value any, key string) any {
	switch v := value.(type) {
	case nil:
		return nil
	case map[string]any:
		return v[key]
	case []any:
		var values []any
		for _, item := range v {
			if a := Attribute(item, key); a != nil {
				values = append(values, a)
			}
		}
		if len(values) == 0 {
			return nil
		}
		return values
	}
	return nil
}

// String returns the attribute value as a string, or "" when it is
// absent or not a string.
func String(value any, key string) string {
	s, _ := Attribute(value, key).(string)
	return s
}

// Strings returns the attribute values as a flat string list, or nil
// when nothing could be extracted.
func Strings(value any, key string) []string {
	switch v := Attribute(value, key).(type) {
	case string:
		return []string{v}
	case []any:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
