// internal/core/tenant/tenant_test.go
package tenant_test

import (
	"testing"

	"github.com/dalemusser/crudkit/internal/core/apperr"
	"github.com/dalemusser/crudkit/internal/core/crud"
	"github.com/dalemusser/crudkit/internal/core/query"
	"github.com/dalemusser/crudkit/internal/core/tenant"
)

func orgAContext() crud.UserContext {
	return crud.UserContext{User: &crud.User{ID: "user-a"}, OrgID: "orgA"}
}

func TestApplyToQuery_OverwritesForgedOrg(t *testing.T) {
	cfg := tenant.New("")
	q, err := cfg.ApplyToQuery(orgAContext(), crud.Document{"name": "x", "_orgId": "orgB"}, "notes")
	if err != nil {
		t.Fatalf("ApplyToQuery failed: %v", err)
	}
	if q["_orgId"] != "orgA" {
		t.Errorf("forged org survived: %v", q["_orgId"])
	}
	if q["name"] != "x" {
		t.Errorf("caller's constraints lost: %v", q)
	}
}

func TestApplyToQuery_DoesNotMutateInput(t *testing.T) {
	cfg := tenant.New("")
	in := crud.Document{"name": "x"}
	if _, err := cfg.ApplyToQuery(orgAContext(), in, "notes"); err != nil {
		t.Fatalf("ApplyToQuery failed: %v", err)
	}
	if _, ok := in["_orgId"]; ok {
		t.Error("input query was mutated")
	}
}

func TestApplyToQuery_ExcludedCollection(t *testing.T) {
	cfg := tenant.New("", "settings")
	in := crud.Document{"name": "x"}
	q, err := cfg.ApplyToQuery(orgAContext(), in, "settings")
	if err != nil {
		t.Fatalf("excluded collection errored: %v", err)
	}
	if _, ok := q["_orgId"]; ok {
		t.Error("excluded collection was tenant-scoped")
	}
	// The system sentinel may hit excluded collections without an org.
	if _, err := cfg.ApplyToQuery(crud.EmptyUserContext, in, "settings"); err != nil {
		t.Errorf("excluded collection requires no org, got %v", err)
	}
}

func TestApplyToQuery_MissingOrgIsServerError(t *testing.T) {
	cfg := tenant.New("")
	_, err := cfg.ApplyToQuery(crud.UserContext{User: &crud.User{ID: "u"}}, crud.Document{}, "notes")
	if err == nil {
		t.Fatal("expected an error for a missing org")
	}
	if apperr.KindOf(err) != apperr.Server {
		t.Errorf("kind = %v, want Server", apperr.KindOf(err))
	}
}

func TestApplyToQueryOptions_OverwritesClientFilter(t *testing.T) {
	cfg := tenant.New("")
	opts := query.NewOptions()
	opts.Filters = map[string]query.Filter{
		"_orgId": {Eq: "orgB"},
		"title":  {Contains: "x"},
	}
	out, err := cfg.ApplyToQueryOptions(orgAContext(), opts, "notes")
	if err != nil {
		t.Fatalf("ApplyToQueryOptions failed: %v", err)
	}
	if out.Filters["_orgId"].Eq != "orgA" {
		t.Errorf("forged filter survived: %+v", out.Filters["_orgId"])
	}
	if out.Filters["title"].Contains != "x" {
		t.Error("caller's other filters lost")
	}
	// The original options are untouched.
	if opts.Filters["_orgId"].Eq != "orgB" {
		t.Error("input options were mutated")
	}
}

func TestApplyToEntity_StampsTenant(t *testing.T) {
	cfg := tenant.New("")
	out, err := cfg.ApplyToEntity(orgAContext(), crud.Document{"title": "x", "_orgId": "orgB"}, "notes")
	if err != nil {
		t.Fatalf("ApplyToEntity failed: %v", err)
	}
	if out["_orgId"] != "orgA" {
		t.Errorf("entity org = %v, want orgA", out["_orgId"])
	}
}

func TestOrgIDField(t *testing.T) {
	if got := tenant.New("").OrgIDField(); got != "_orgId" {
		t.Errorf("default field = %q", got)
	}
	if got := tenant.New("tenantId").OrgIDField(); got != "tenantId" {
		t.Errorf("custom field = %q", got)
	}
}

func TestStrategies_MissingOrgIsBadRequest(t *testing.T) {
	strats := tenant.Strategies(tenant.New(""))
	uc := crud.UserContext{User: &crud.User{ID: "u"}}

	if _, err := strats.PrepareQuery(uc, crud.Document{}, "notes"); apperr.KindOf(err) != apperr.BadRequest {
		t.Errorf("PrepareQuery kind = %v, want BadRequest", apperr.KindOf(err))
	}
	if _, err := strats.PrepareQueryOptions(uc, query.NewOptions(), "notes"); apperr.KindOf(err) != apperr.BadRequest {
		t.Errorf("PrepareQueryOptions kind = %v, want BadRequest", apperr.KindOf(err))
	}
	if _, err := strats.PrepareEntity(uc, crud.Document{}, "notes", true); apperr.KindOf(err) != apperr.BadRequest {
		t.Errorf("PrepareEntity kind = %v, want BadRequest", apperr.KindOf(err))
	}
}

func TestStrategies_Forgery(t *testing.T) {
	strats := tenant.Strategies(tenant.New(""))
	q, err := strats.PrepareQuery(orgAContext(), crud.Document{"name": "x", "_orgId": "orgB"}, "notes")
	if err != nil {
		t.Fatalf("PrepareQuery failed: %v", err)
	}
	if q["_orgId"] != "orgA" {
		t.Errorf("query org = %v, want orgA", q["_orgId"])
	}
}

func TestStrategies_CustomField(t *testing.T) {
	strats := tenant.Strategies(tenant.New("tenantId"))
	doc, err := strats.PrepareEntity(orgAContext(), crud.Document{"title": "x"}, "notes", true)
	if err != nil {
		t.Fatalf("PrepareEntity failed: %v", err)
	}
	if doc["tenantId"] != "orgA" {
		t.Errorf("custom tenant field not stamped: %v", doc)
	}
}
