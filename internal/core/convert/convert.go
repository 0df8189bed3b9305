// internal/core/convert/convert.go
//
// Schema-walking conversion between storage representations (native
// ObjectIDs, time.Time) and wire representations (24-hex id strings,
// RFC 3339 date strings). The walkers recurse through nested objects,
// arrays, and composed schemas, never mutate their input, and skip
// top-level fields on the exclusion list so that lexically id-shaped
// fields (the org id above all) keep their string form everywhere.
package convert

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/crudkit/internal/core/schema"
)

// DefaultExclusions lists top-level fields never converted even when their
// declared format or name would otherwise qualify them.
func DefaultExclusions() []string { return []string{"_orgId"} }

// StringToObjectID converts a syntactically valid 24-hex string into a
// native id. Native ids, nils, and anything unconvertible pass through
// unchanged; this never fails.
func StringToObjectID(v any) any {
	switch tv := v.(type) {
	case primitive.ObjectID:
		return tv
	case string:
		if schema.IsObjectIDHex(tv) {
			if oid, err := primitive.ObjectIDFromHex(tv); err == nil {
				return oid
			}
		}
	}
	return v
}

// ObjectIDsToStrings returns a deep copy of doc with every field the schema
// declares as FormatObjectID converted from a native id to its hex string.
// With a nil schema only the top-level "_id" is converted.
func ObjectIDsToStrings(doc bson.M, s *schema.Schema, exclude []string) bson.M {
	return walk(doc, s, exclude, idToString)
}

// StringsToObjectIDs is the inverse walk: declared id fields holding valid
// hex strings become native ids. Invalid strings are left alone.
func StringsToObjectIDs(doc bson.M, s *schema.Schema, exclude []string) bson.M {
	return walk(doc, s, exclude, stringToID)
}

// DatesToStrings converts declared datetime fields from time.Time to
// RFC 3339 strings, recursing the same way the id walkers do.
func DatesToStrings(doc bson.M, s *schema.Schema) bson.M {
	return walk(doc, s, nil, dateToString)
}

// StringsToDates converts declared datetime fields from RFC 3339 strings
// back to time.Time. Unparseable strings are left alone.
func StringsToDates(doc bson.M, s *schema.Schema) bson.M {
	return walk(doc, s, nil, stringToDate)
}

func idToString(f schema.Field, v any) any {
	if f.Format != schema.FormatObjectID {
		return v
	}
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return v
}

func stringToID(f schema.Field, v any) any {
	if f.Format != schema.FormatObjectID {
		return v
	}
	// Dates pass through untouched; only plain strings are candidates.
	if _, ok := v.(time.Time); ok {
		return v
	}
	return StringToObjectID(v)
}

func dateToString(f schema.Field, v any) any {
	if f.Format != schema.FormatDateTime {
		return v
	}
	switch tv := v.(type) {
	case time.Time:
		return tv.UTC().Format(time.RFC3339Nano)
	case primitive.DateTime:
		return tv.Time().UTC().Format(time.RFC3339Nano)
	}
	return v
}

func stringToDate(f schema.Field, v any) any {
	if f.Format != schema.FormatDateTime {
		return v
	}
	if s, ok := v.(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC()
		}
	}
	return v
}

type valueFn func(f schema.Field, v any) any

// walk deep-copies doc and applies fn to every schema-declared leaf.
func walk(doc bson.M, s *schema.Schema, exclude []string, fn valueFn) bson.M {
	if doc == nil {
		return nil
	}
	out := copyMap(doc)
	if s == nil {
		// Degraded fallback: without a schema only the identity field
		// is known to be convertible.
		if v, ok := out["_id"]; ok && !excluded("_id", exclude) {
			out["_id"] = fn(schema.Field{Type: schema.String, Format: schema.FormatObjectID}, v)
		}
		return out
	}
	applySchema(out, s, exclude, fn)
	return out
}

// applySchema converts declared fields of doc in place. For composed
// schemas every component is walked in turn against the same document.
// The exclusion list applies to top-level properties only.
func applySchema(doc bson.M, s *schema.Schema, exclude []string, fn valueFn) {
	if s == nil {
		return
	}
	for _, sub := range s.AllOf {
		applySchema(doc, sub, exclude, fn)
	}
	for name, f := range s.Properties {
		if excluded(name, exclude) {
			continue
		}
		v, ok := doc[name]
		if !ok || v == nil {
			continue
		}
		doc[name] = convertValue(f, v, fn)
	}
}

func convertValue(f schema.Field, v any, fn valueFn) any {
	switch f.Type {
	case schema.Object:
		if len(f.Properties) == 0 {
			return v
		}
		m, ok := toMap(v)
		if !ok {
			return v
		}
		applySchema(m, &schema.Schema{Properties: f.Properties}, nil, fn)
		return m
	case schema.Array:
		if f.Items == nil {
			return v
		}
		arr, ok := toSlice(v)
		if !ok {
			return v
		}
		for i, item := range arr {
			if item == nil {
				continue
			}
			arr[i] = convertValue(*f.Items, item, fn)
		}
		return arr
	}
	return fn(f, v)
}

func excluded(name string, exclude []string) bool {
	for _, e := range exclude {
		if e == name {
			return true
		}
	}
	return false
}

// copyMap and copyValue give the walkers their non-mutating discipline:
// maps and slices are duplicated all the way down before conversion.
func copyMap(m bson.M) bson.M {
	out := make(bson.M, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch tv := v.(type) {
	case bson.M:
		return copyMap(tv)
	case map[string]any:
		return copyMap(bson.M(tv))
	case bson.A:
		return copySlice(tv)
	case []any:
		return copySlice(tv)
	}
	return v
}

func copySlice(a []any) []any {
	out := make([]any, len(a))
	for i, v := range a {
		out[i] = copyValue(v)
	}
	return out
}

// toMap returns the value as a mutable bson.M after the deep copy; the
// copy already normalized map variants, so both cases stay cheap.
func toMap(v any) (bson.M, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return bson.M(m), true
	}
	return nil, false
}

func toSlice(v any) ([]any, bool) {
	switch a := v.(type) {
	case bson.A:
		return a, true
	case []any:
		return a, true
	}
	return nil, false
}
