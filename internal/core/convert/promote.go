// internal/core/convert/promote.go
package convert

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// LooksLikeIDField reports whether a field name matches the foreign-key
// heuristic: the identity field itself or anything with the "Id" suffix
// (authorId, parentId, ...). The exclusion list still wins; the org id
// matches this heuristic and must never be promoted.
func LooksLikeIDField(name string) bool {
	return name == "_id" || strings.HasSuffix(name, "Id")
}

// PromoteIDStrings returns a copy of doc whose top-level id-shaped fields
// holding valid 24-hex strings are promoted to native ids. Used by the
// default before-write hooks so foreign keys arriving as wire strings are
// stored natively.
func PromoteIDStrings(doc bson.M, exclude []string) bson.M {
	if doc == nil {
		return nil
	}
	out := copyMap(doc)
	for name, v := range out {
		if !LooksLikeIDField(name) || excluded(name, exclude) {
			continue
		}
		out[name] = StringToObjectID(v)
	}
	return out
}
