// internal/core/convert/convert_test.go
package convert_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/crudkit/internal/core/convert"
	"github.com/dalemusser/crudkit/internal/core/schema"
)

func docSchema() *schema.Schema {
	return &schema.Schema{Properties: map[string]schema.Field{
		"_id":      {Type: schema.String, Format: schema.FormatObjectID},
		"_orgId":   {Type: schema.String},
		"name":     {Type: schema.String},
		"ownerId":  {Type: schema.String, Format: schema.FormatObjectID},
		"when":     {Type: schema.String, Format: schema.FormatDateTime},
		"child": {Type: schema.Object, Properties: map[string]schema.Field{
			"refId": {Type: schema.String, Format: schema.FormatObjectID},
			"at":    {Type: schema.String, Format: schema.FormatDateTime},
		}},
		"links": {Type: schema.Array, Items: &schema.Field{
			Type: schema.Object, Properties: map[string]schema.Field{
				"targetId": {Type: schema.String, Format: schema.FormatObjectID},
			}}},
	}}
}

func TestStringToObjectID(t *testing.T) {
	oid := primitive.NewObjectID()
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"native id passes through", oid, oid},
		{"nil passes through", nil, nil},
		{"valid hex converts", oid.Hex(), oid},
		{"short hex unchanged", "507f1f77bcf86cd79943901", "507f1f77bcf86cd79943901"},
		{"non-hex unchanged", "not-an-object-id-at-all!", "not-an-object-id-at-all!"},
		{"number unchanged", 42, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convert.StringToObjectID(tt.in); got != tt.want {
				t.Errorf("got %v (%T), want %v (%T)", got, got, tt.want, tt.want)
			}
		})
	}
}

func TestObjectIDsToStrings_Recursive(t *testing.T) {
	id := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	ref := primitive.NewObjectID()
	target := primitive.NewObjectID()

	doc := bson.M{
		"_id":     id,
		"name":    "thing",
		"ownerId": owner,
		"child":   bson.M{"refId": ref},
		"links":   []any{bson.M{"targetId": target}},
	}

	out := convert.ObjectIDsToStrings(doc, docSchema(), convert.DefaultExclusions())

	if out["_id"] != id.Hex() || out["ownerId"] != owner.Hex() {
		t.Errorf("top-level ids not converted: %v", out)
	}
	if out["child"].(bson.M)["refId"] != ref.Hex() {
		t.Errorf("nested id not converted: %v", out["child"])
	}
	if out["links"].([]any)[0].(bson.M)["targetId"] != target.Hex() {
		t.Errorf("array item id not converted: %v", out["links"])
	}

	// Input must be untouched.
	if _, ok := doc["_id"].(primitive.ObjectID); !ok {
		t.Error("input document was mutated")
	}
	if _, ok := doc["child"].(bson.M)["refId"].(primitive.ObjectID); !ok {
		t.Error("nested input value was mutated")
	}
}

func TestStringsToObjectIDs_Recursive(t *testing.T) {
	id := primitive.NewObjectID()
	ref := primitive.NewObjectID()

	doc := bson.M{
		"_id":   id.Hex(),
		"child": bson.M{"refId": ref.Hex(), "at": "2026-03-01T12:00:00Z"},
		"links": []any{bson.M{"targetId": "definitely-not-hex"}},
	}
	out := convert.StringsToObjectIDs(doc, docSchema(), convert.DefaultExclusions())

	if out["_id"] != id {
		t.Errorf("_id not converted: %v (%T)", out["_id"], out["_id"])
	}
	if out["child"].(bson.M)["refId"] != ref {
		t.Errorf("nested refId not converted")
	}
	// Invalid identifier strings are left alone, never an error.
	if got := out["links"].([]any)[0].(bson.M)["targetId"]; got != "definitely-not-hex" {
		t.Errorf("invalid id string altered: %v", got)
	}
	// Input untouched.
	if doc["_id"] != id.Hex() {
		t.Error("input document was mutated")
	}
}

func TestExclusionList_NeverConverted(t *testing.T) {
	orgHex := primitive.NewObjectID().Hex()

	// _orgId is declared a plain string; even a schema that (mistakenly)
	// declares it id-formatted must not convert it when excluded.
	s := &schema.Schema{Properties: map[string]schema.Field{
		"_orgId": {Type: schema.String, Format: schema.FormatObjectID},
	}}

	out := convert.StringsToObjectIDs(bson.M{"_orgId": orgHex}, s, convert.DefaultExclusions())
	if out["_orgId"] != orgHex {
		t.Errorf("excluded field converted on decode: %v (%T)", out["_orgId"], out["_orgId"])
	}

	oid, _ := primitive.ObjectIDFromHex(orgHex)
	out = convert.ObjectIDsToStrings(bson.M{"_orgId": oid}, s, convert.DefaultExclusions())
	if out["_orgId"] != oid {
		t.Errorf("excluded field converted on encode: %v (%T)", out["_orgId"], out["_orgId"])
	}
}

func TestAllOfComposition_EachComponentWalked(t *testing.T) {
	a := &schema.Schema{Properties: map[string]schema.Field{
		"aId": {Type: schema.String, Format: schema.FormatObjectID},
	}}
	b := &schema.Schema{Properties: map[string]schema.Field{
		"bId": {Type: schema.String, Format: schema.FormatObjectID},
	}}
	composed := schema.AllOf(a, b)

	aID := primitive.NewObjectID()
	bID := primitive.NewObjectID()
	out := convert.ObjectIDsToStrings(bson.M{"aId": aID, "bId": bID}, composed, nil)
	if out["aId"] != aID.Hex() || out["bId"] != bID.Hex() {
		t.Errorf("composed schemas not all walked: %v", out)
	}
}

func TestNilSchema_DegradedFallback(t *testing.T) {
	id := primitive.NewObjectID()
	other := primitive.NewObjectID()
	out := convert.ObjectIDsToStrings(bson.M{"_id": id, "otherId": other}, nil, nil)
	if out["_id"] != id.Hex() {
		t.Error("fallback did not convert _id")
	}
	if out["otherId"] != other {
		t.Error("fallback converted a field other than _id")
	}
}

func TestDates_PassThroughIDWalk(t *testing.T) {
	when := time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)
	s := &schema.Schema{Properties: map[string]schema.Field{
		"when": {Type: schema.String, Format: schema.FormatObjectID}, // mis-declared on purpose
	}}
	out := convert.StringsToObjectIDs(bson.M{"when": when}, s, nil)
	if !out["when"].(time.Time).Equal(when) {
		t.Errorf("time value altered by id walk: %v", out["when"])
	}
}

func TestDateConversion_RoundTrip(t *testing.T) {
	when := time.Date(2026, 4, 1, 9, 30, 0, 123000000, time.UTC)
	doc := bson.M{"when": when, "child": bson.M{"at": when}}

	encoded := convert.DatesToStrings(doc, docSchema())
	if _, ok := encoded["when"].(string); !ok {
		t.Fatalf("date not encoded to string: %T", encoded["when"])
	}
	decoded := convert.StringsToDates(encoded, docSchema())
	if !decoded["when"].(time.Time).Equal(when) {
		t.Errorf("date round trip lost value: %v", decoded["when"])
	}
	if !decoded["child"].(bson.M)["at"].(time.Time).Equal(when) {
		t.Errorf("nested date round trip lost value")
	}
}

func TestNilDocument_PassesThrough(t *testing.T) {
	if out := convert.ObjectIDsToStrings(nil, docSchema(), nil); out != nil {
		t.Errorf("nil doc should stay nil, got %v", out)
	}
	if out := convert.StringsToObjectIDs(nil, docSchema(), nil); out != nil {
		t.Errorf("nil doc should stay nil, got %v", out)
	}
}

func TestPromoteIDStrings(t *testing.T) {
	owner := primitive.NewObjectID()
	org := primitive.NewObjectID().Hex()
	doc := bson.M{
		"ownerId": owner.Hex(),
		"_orgId":  org,
		"name":    "507f1f77bcf86cd799439011", // hex but not id-suffixed
		"badId":   "nope",
	}
	out := convert.PromoteIDStrings(doc, convert.DefaultExclusions())
	if out["ownerId"] != owner {
		t.Errorf("ownerId not promoted: %v", out["ownerId"])
	}
	if out["_orgId"] != org {
		t.Errorf("excluded _orgId promoted: %v (%T)", out["_orgId"], out["_orgId"])
	}
	if out["name"] != "507f1f77bcf86cd799439011" {
		t.Errorf("non-id-suffixed field promoted")
	}
	if out["badId"] != "nope" {
		t.Errorf("invalid hex promoted: %v", out["badId"])
	}
}
