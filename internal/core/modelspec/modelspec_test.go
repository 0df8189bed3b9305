// internal/core/modelspec/modelspec_test.go
package modelspec_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/crudkit/internal/core/modelspec"
	"github.com/dalemusser/crudkit/internal/core/schema"
)

func newTestSpec() *modelspec.Spec {
	s := &schema.Schema{Properties: map[string]schema.Field{
		"title":    {Type: schema.String, Required: true},
		"status":   {Type: schema.String, Default: "draft"},
		"ownerId":  {Type: schema.String, Format: schema.FormatObjectID},
		"dueAt":    {Type: schema.String, Format: schema.FormatDateTime},
		"secret":   {Type: schema.String},
		"sections": {Type: schema.Array, Items: &schema.Field{
			Type: schema.Object, Properties: map[string]schema.Field{
				"refId":   {Type: schema.String, Format: schema.FormatObjectID},
				"savedAt": {Type: schema.String, Format: schema.FormatDateTime},
			}}},
	}}
	return modelspec.New(s, modelspec.Options{IsAuditable: true, IsMultiTenant: true})
}

func TestNew_Variants(t *testing.T) {
	sp := newTestSpec()

	if errs := sp.Validator.Validate(bson.M{}); len(errs) == 0 {
		t.Error("domain validator should require title")
	}
	if errs := sp.PartialValidator.Validate(bson.M{}); errs != nil {
		t.Errorf("partial validator should allow empty payloads, got %v", errs)
	}
	// fullSchema declares identity and audit fields.
	if _, ok := sp.FullSchema.Property("_id"); !ok {
		t.Error("full schema missing _id")
	}
	if _, ok := sp.FullSchema.Property("_created"); !ok {
		t.Error("auditable full schema missing _created")
	}
	if _, ok := sp.FullSchema.Property("_orgId"); !ok {
		t.Error("multi-tenant full schema missing _orgId")
	}
}

func TestNew_SingleTenant(t *testing.T) {
	s := &schema.Schema{Properties: map[string]schema.Field{
		"title": {Type: schema.String, Required: true},
	}}
	sp := modelspec.New(s, modelspec.Options{})

	if sp.MultiTenant {
		t.Error("spec should not be multi-tenant")
	}
	if _, ok := sp.FullSchema.Property("_orgId"); ok {
		t.Error("single-tenant full schema should not declare _orgId")
	}
	// A stray org value on an unscoped resource is stripped at the
	// encode boundary like any other undeclared field.
	out := sp.Encode(bson.M{"_id": primitive.NewObjectID(), "title": "x", "_orgId": "abc"})
	if _, ok := out["_orgId"]; ok {
		t.Errorf("encode kept _orgId on a single-tenant spec: %v", out)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	sp := newTestSpec()

	id := primitive.NewObjectID()
	owner := primitive.NewObjectID()
	ref := primitive.NewObjectID()
	due := time.Date(2026, 5, 20, 8, 15, 30, 250000000, time.UTC)
	saved := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	orgID := primitive.NewObjectID().Hex()

	stored := bson.M{
		"_id":     id,
		"_orgId":  orgID,
		"title":   "Launch checklist",
		"ownerId": owner,
		"dueAt":   due,
		"sections": []any{
			bson.M{"refId": ref, "savedAt": saved},
		},
	}

	wire := sp.Encode(stored)
	if wire["_id"] != id.Hex() {
		t.Errorf("_id not a string on the wire: %v (%T)", wire["_id"], wire["_id"])
	}
	if wire["ownerId"] != owner.Hex() {
		t.Errorf("ownerId not a string on the wire")
	}
	if _, ok := wire["dueAt"].(string); !ok {
		t.Errorf("dueAt not a string on the wire: %T", wire["dueAt"])
	}
	if wire["_orgId"] != orgID {
		t.Errorf("_orgId changed by encode: %v", wire["_orgId"])
	}

	back := sp.Decode(wire)
	if back["_id"] != id || back["ownerId"] != owner {
		t.Error("ids did not round trip")
	}
	if !back["dueAt"].(time.Time).Equal(due) {
		t.Errorf("date did not round trip: %v vs %v", back["dueAt"], due)
	}
	section := back["sections"].([]any)[0].(bson.M)
	if section["refId"] != ref {
		t.Error("array-nested id did not round trip")
	}
	if !section["savedAt"].(time.Time).Equal(saved) {
		t.Error("array-nested date did not round trip")
	}
	if back["_orgId"] != orgID {
		t.Errorf("_orgId changed by decode: %v (%T)", back["_orgId"], back["_orgId"])
	}
}

func TestEncode_StripsUndeclared(t *testing.T) {
	sp := newTestSpec()
	wire := sp.Encode(bson.M{"title": "x", "internalFlag": true})
	if _, ok := wire["internalFlag"]; ok {
		t.Error("undeclared field leaked through encode")
	}
}

func TestEncode_ConversionBeforeClean(t *testing.T) {
	sp := newTestSpec()
	id := primitive.NewObjectID()
	wire := sp.Encode(bson.M{"title": "x", "_id": id})
	// If cleaning ran first the native id would have been dropped or kept
	// unconverted; the ordering invariant demands the string form here.
	if wire["_id"] != id.Hex() {
		t.Errorf("_id = %v (%T), want hex string", wire["_id"], wire["_id"])
	}
}

func TestEncodeWith_Override(t *testing.T) {
	sp := newTestSpec()
	public := &schema.Schema{Properties: map[string]schema.Field{
		"_id":   {Type: schema.String, Format: schema.FormatObjectID},
		"title": {Type: schema.String},
	}}
	wire := sp.EncodeWith(bson.M{
		"_id":    primitive.NewObjectID(),
		"title":  "visible",
		"secret": "hide me",
	}, public)
	if _, ok := wire["secret"]; ok {
		t.Error("override schema failed to strip the sensitive field")
	}
	if wire["title"] != "visible" {
		t.Error("override schema dropped a declared field")
	}
}

func TestDecode_AppliesDefaults(t *testing.T) {
	sp := newTestSpec()
	out := sp.Decode(bson.M{"title": "x"})
	if out["status"] != "draft" {
		t.Errorf("default not applied: %v", out["status"])
	}
	// A supplied value wins over the default.
	out = sp.Decode(bson.M{"title": "x", "status": "live"})
	if out["status"] != "live" {
		t.Errorf("default overwrote supplied value: %v", out["status"])
	}
}

func TestDecodePartial_SkipsDefaults(t *testing.T) {
	sp := newTestSpec()
	owner := primitive.NewObjectID()
	out := sp.DecodePartial(bson.M{"ownerId": owner.Hex(), "junk": 1})
	if _, ok := out["status"]; ok {
		t.Errorf("partial decode injected default: %v", out["status"])
	}
	if got, ok := out["ownerId"].(primitive.ObjectID); !ok || got != owner {
		t.Errorf("ownerId not promoted: %v", out["ownerId"])
	}
	if _, ok := out["junk"]; ok {
		t.Error("undeclared field survived partial decode")
	}
	if sp.DecodePartial(nil) != nil {
		t.Error("DecodePartial(nil) should be nil")
	}
}

func TestEncodeDecode_NilTolerated(t *testing.T) {
	sp := newTestSpec()
	if sp.Encode(nil) != nil {
		t.Error("Encode(nil) should be nil")
	}
	if sp.Decode(nil) != nil {
		t.Error("Decode(nil) should be nil")
	}
	if sp.Clean(nil) != nil {
		t.Error("Clean(nil) should be nil")
	}
}

func TestClean_IdempotentThroughSpec(t *testing.T) {
	sp := newTestSpec()
	doc := bson.M{"title": "x", "junk": 1, "sections": []any{bson.M{"refId": primitive.NewObjectID(), "junk": 2}}}
	once := sp.Clean(doc)
	twice := sp.Clean(once)
	if len(once) != len(twice) {
		t.Fatalf("clean not idempotent: %v vs %v", once, twice)
	}
	s1 := once["sections"].([]any)[0].(bson.M)
	s2 := twice["sections"].([]any)[0].(bson.M)
	if len(s1) != len(s2) {
		t.Fatalf("nested clean not idempotent: %v vs %v", s1, s2)
	}
}
