// internal/core/schema/clean.go
package schema

import "go.mongodb.org/mongo-driver/bson"

// Clean returns a copy of doc holding only properties the schema declares,
// recursively through nested objects and arrays. It performs no value
// conversion, never mutates doc, and is idempotent. A nil doc stays nil.
func Clean(doc bson.M, s *Schema) bson.M {
	if doc == nil {
		return nil
	}
	out := bson.M{}
	collectClean(doc, s, out)
	return out
}

func collectClean(doc bson.M, s *Schema, out bson.M) {
	if s == nil {
		return
	}
	for _, sub := range s.AllOf {
		collectClean(doc, sub, out)
	}
	for name, f := range s.Properties {
		val, ok := doc[name]
		if !ok {
			continue
		}
		out[name] = cleanValue(f, val)
	}
}

func cleanValue(f Field, val any) any {
	if val == nil {
		return nil
	}
	switch f.Type {
	case Object:
		// Free-form objects (no declared properties) are kept whole.
		if len(f.Properties) == 0 {
			return val
		}
		m, ok := asMap(val)
		if !ok {
			return val
		}
		inner := bson.M{}
		collectClean(bson.M(m), &Schema{Properties: f.Properties}, inner)
		return inner
	case Array:
		if f.Items == nil {
			return val
		}
		arr, ok := asSlice(val)
		if !ok {
			return val
		}
		cleaned := make([]any, len(arr))
		for i, item := range arr {
			cleaned[i] = cleanValue(*f.Items, item)
		}
		return cleaned
	}
	return val
}
