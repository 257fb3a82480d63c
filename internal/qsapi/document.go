// Package qsapi provides the QuickSight control-plane surface used by the
// export and import pipelines: an opaque JSON document model, the operation
// table, a SigV4-signed REST caller, and the describe/search/create-or-update
// helpers built on top of it.
package qsapi

import (
	"encoding/json"
	"fmt"
)

// PhysicalTableKinds lists the physical-table variants that carry a
// DataSourceArn reference.
var PhysicalTableKinds = []string{"RelationalTable", "CustomSql", "S3Source"}

// Document is an opaque JSON object as returned by the QuickSight API.
// Asset definitions pass through the tool mostly untouched, so they are kept
// as plain maps rather than typed structs; the accessors below cover the few
// fields the pipelines actually inspect.
type Document map[string]any

// String returns the string value at key, or "" if absent or not a string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Int returns the integer value at key. JSON decoding produces float64 for
// numbers, so both forms are accepted.
func (d Document) Int(key string) int {
	switch v := d[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

// Map returns the nested object at key, or nil if absent or not an object.
func (d Document) Map(key string) Document {
	switch v := d[key].(type) {
	case Document:
		return v
	case map[string]any:
		return Document(v)
	default:
		return nil
	}
}

// List returns the array at key, or nil if absent or not an array.
func (d Document) List(key string) []any {
	l, _ := d[key].([]any)
	return l
}

// Docs returns the array at key as a slice of documents. Non-object elements
// are skipped.
func (d Document) Docs(key string) []Document {
	var out []Document
	for _, v := range d.List(key) {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Document(m))
		}
	}
	return out
}

// Clone returns a deep copy of the document via a JSON round-trip. The copy
// shares no nested state with the original, so rewrites during import never
// leak back into the source bundle.
func (d Document) Clone() (Document, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("clone document: %w", err)
	}
	return out, nil
}

// WithoutNulls returns a shallow copy with all null-valued top-level fields
// removed. The create APIs reject explicit nulls for optional members.
func (d Document) WithoutNulls() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}
