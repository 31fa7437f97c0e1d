package catalogue

import (
	"context"
	"errors"

	"github.com/miljoeportal/go-dmp-catalogue/pkg/jsonapi"
)

// ErrNoData signals a response without usable content (missing meta
// section or a zero total). It is an empty-result condition, not a
// failure.
var ErrNoData = errors.New("catalogue: response contains no data")

// ProgressFunc reports normalization progress in processed records.
type ProgressFunc func(done, total int)

// attr reads a scalar string attribute from a record.
func attr(attrs map[string]any, key string) string {
	s, _ := attrs[key].(string)
	return s
}

// Datasets normalizes a datasets document into typed entities keyed
// and ordered by uid. The availability feed index, keyed by id alone,
// contributes each dataset's status; datasets absent from the feed
// keep StatusUnknown. Cancellation is cooperative, checked once per
// record, and discards all partial results.
func Datasets(ctx context.Context, doc *jsonapi.Document, statusIdx jsonapi.Index, icons *IconStore, progress ProgressFunc) (*DatasetSet, error) {
	total, ok := doc.Total()
	if !ok || total == 0 {
		return nil, ErrNoData
	}

	idx := jsonapi.BuildIndex(doc.Included, jsonapi.IndexOptions{Simplify: true})
	jsonapi.Flatten(doc.Data, idx)

	datasets := NewSet[*Dataset]()
	for i, rec := range doc.Data {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attrs := rec.Attributes
		ds := &Dataset{
			UID:            rec.ID,
			Title:          attr(attrs, "title"),
			Description:    attr(attrs, "description"),
			SupportContact: attr(attrs, "supportContact"),
			MetadataURL:    attr(attrs, "metadataUrl"),
			Created:        attr(attrs, "created"),
			Updated:        attr(attrs, "updated"),
		}

		wfs, _ := attrs["wfsSource"].(map[string]any)
		ds.WFS = NewWFSSource(wfs)
		wms, _ := attrs["wmsSource"].(map[string]any)
		ds.WMS = NewWMSSource(wms)
		wmts, _ := attrs["wmtsSource"].(map[string]any)
		ds.WMTS = NewWMTSSource(wmts)
		ds.Files = FileSources(attrs["fileSources"])

		category := attrs["category"]
		ds.Category = jsonapi.String(category, "name")
		if categoryThumb := jsonapi.Attribute(category, "thumbnail"); categoryThumb == nil {
			ds.CategoryIcon = DefaultIcon
		} else {
			ds.CategoryIcon = icons.Icon(
				jsonapi.String(categoryThumb, "id"),
				jsonapi.String(categoryThumb, "url"),
			)
		}

		if thumb := attrs["thumbnail"]; thumb != nil {
			ds.Thumbnail = icons.Icon(
				jsonapi.String(thumb, "id"),
				jsonapi.String(thumb, "url"),
			)
		} else {
			// datasets without their own thumbnail inherit the
			// category icon
			ds.Thumbnail = ds.CategoryIcon
		}

		ds.Tags = jsonapi.Strings(attrs["tags"], "name")
		ds.Owners = jsonapi.Strings(attrs["owners"], "title")

		if entry, ok := statusIdx[jsonapi.Ref{ID: rec.ID}]; ok {
			ds.Status = Status(jsonapi.String(entry, "status"))
		}

		datasets.Add(ds.UID, ds)
		if progress != nil {
			progress(i+1, len(doc.Data))
		}
	}

	return datasets, nil
}

// Collections normalizes a collections document. Each collection's
// item list resolves to an ordered list of dataset uids; dangling
// items are skipped, and a present-but-empty item list is kept empty
// rather than collapsing to nil.
func Collections(ctx context.Context, doc *jsonapi.Document, icons *IconStore) (*CollectionSet, error) {
	idx := jsonapi.BuildIndex(doc.Included, jsonapi.IndexOptions{IncludeRelationships: true})

	collections := NewSet[*Collection]()
	for _, rec := range doc.Data {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		col := &Collection{
			UID:         rec.ID,
			Title:       attr(rec.Attributes, "title"),
			Description: attr(rec.Attributes, "description"),
		}

		if rel, ok := rec.Relationships["datasetCollectionItems"]; ok {
			if refs, ok := rel.Data.([]any); ok {
				col.Datasets = make([]string, 0, len(refs))
				for _, ref := range refs {
					item, ok := jsonapi.Resolve(ref, idx).(map[string]any)
					if !ok {
						continue
					}
					if uid := itemDatasetUID(item); uid != "" {
						col.Datasets = append(col.Datasets, uid)
					}
				}
			}
		}

		if rel, ok := rec.Relationships["thumbnail"]; ok {
			if thumb := jsonapi.Resolve(rel.Data, idx); thumb != nil {
				col.Icon = icons.Icon(
					jsonapi.String(thumb, "id"),
					jsonapi.String(thumb, "url"),
				)
			}
		}

		collections.Add(col.UID, col)
	}

	return collections, nil
}

// itemDatasetUID digs the referenced dataset uid out of a collection
// item's unresolved dataset relationship.
func itemDatasetUID(item map[string]any) string {
	rel, ok := item["dataset"].(jsonapi.Relationship)
	if !ok {
		return ""
	}
	ref, ok := rel.Data.(map[string]any)
	if !ok {
		return ""
	}
	uid, _ := ref["id"].(string)
	return uid
}
