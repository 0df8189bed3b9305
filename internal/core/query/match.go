// internal/core/query/match.go
package query

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/crudkit/internal/core/convert"
)

// BuildMongoMatch translates Options.Filters into a single $match
// predicate. Fields absent from Filters impose no constraint; the result
// is the AND of the specified fields.
//
// Per filter the first recognized comparator wins, in this order:
// eq, gte, lte, gt, lt, contains, startsWith, endsWith, ne, any, all.
// An eq value that is a valid 24-hex string is promoted to a native id
// when the field name is id-shaped and not on the exclusion list.
func BuildMongoMatch(opts Options, exclude []string) bson.M {
	match := bson.M{}
	for field, f := range opts.Filters {
		if cond, ok := buildCondition(field, f, exclude); ok {
			match[field] = cond
		}
	}
	return match
}

func buildCondition(field string, f Filter, exclude []string) (any, bool) {
	switch {
	case f.Eq != nil:
		return promoteEq(field, f.Eq, exclude), true
	case f.Gte != nil:
		return bson.M{"$gte": f.Gte}, true
	case f.Lte != nil:
		return bson.M{"$lte": f.Lte}, true
	case f.Gt != nil:
		return bson.M{"$gt": f.Gt}, true
	case f.Lt != nil:
		return bson.M{"$lt": f.Lt}, true
	case f.Contains != "":
		return ciRegex(regexp.QuoteMeta(f.Contains)), true
	case f.StartsWith != "":
		return ciRegex("^" + regexp.QuoteMeta(f.StartsWith)), true
	case f.EndsWith != "":
		return ciRegex(regexp.QuoteMeta(f.EndsWith) + "$"), true
	case f.Ne != nil:
		return bson.M{"$ne": f.Ne}, true
	case f.Any != nil:
		return bson.M{"$in": f.Any}, true
	case f.All != nil:
		return bson.M{"$all": f.All}, true
	}
	return nil, false
}

func promoteEq(field string, v any, exclude []string) any {
	s, ok := v.(string)
	if !ok || !convert.LooksLikeIDField(field) {
		return v
	}
	for _, e := range exclude {
		if e == field {
			return v
		}
	}
	return convert.StringToObjectID(s)
}

func ciRegex(pattern string) primitive.Regex {
	return primitive.Regex{Pattern: pattern, Options: "i"}
}
