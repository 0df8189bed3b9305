// internal/core/tenant/tenant.go
//
// Tenant isolation lives in one place: every query, query-options filter,
// and entity headed for the store gets the acting organization's id forced
// onto it, overwriting whatever a caller supplied. Centralizing the
// "always overwrite, never trust the client" rule here is what makes the
// isolation guarantee auditable.
package tenant

import (
	"github.com/dalemusser/crudkit/internal/core/apperr"
	"github.com/dalemusser/crudkit/internal/core/crud"
	"github.com/dalemusser/crudkit/internal/core/query"
)

// DefaultOrgIDField is the tenant-identifier field name.
const DefaultOrgIDField = "_orgId"

// Config describes how tenancy is applied. The zero value is not usable;
// construct through New.
type Config struct {
	orgIDField          string
	excludedCollections map[string]bool
}

// New builds a Config. An empty orgIDField takes the default; collections
// in excluded are shared across tenants and never scoped.
func New(orgIDField string, excluded ...string) Config {
	if orgIDField == "" {
		orgIDField = DefaultOrgIDField
	}
	ex := make(map[string]bool, len(excluded))
	for _, c := range excluded {
		ex[c] = true
	}
	return Config{orgIDField: orgIDField, excludedCollections: ex}
}

// OrgIDField returns the configured tenant-identifier field name.
func (c Config) OrgIDField() string { return c.orgIDField }

// Excluded reports whether a collection is exempt from tenant scoping.
func (c Config) Excluded(collection string) bool {
	return c.excludedCollections[collection]
}

// ApplyToQuery returns a new query with the tenant field forced to the
// context's organization. A tenant value the caller planted in the query
// is overwritten, never trusted. Reaching this without an organization on
// the context is an isolation misconfiguration, a server-side fault.
func (c Config) ApplyToQuery(uc crud.UserContext, q crud.Document, collection string) (crud.Document, error) {
	if c.Excluded(collection) {
		return q, nil
	}
	if uc.OrgID == "" {
		return nil, apperr.Newf(apperr.Server, "tenant isolation for %q requires an organization id on the user context", collection)
	}
	out := make(crud.Document, len(q)+1)
	for k, v := range q {
		out[k] = v
	}
	out[c.orgIDField] = uc.OrgID
	return out, nil
}

// ApplyToQueryOptions returns cloned options whose filter on the tenant
// field is forced to an eq match on the context's organization.
func (c Config) ApplyToQueryOptions(uc crud.UserContext, opts query.Options, collection string) (query.Options, error) {
	if c.Excluded(collection) {
		return opts, nil
	}
	if uc.OrgID == "" {
		return query.Options{}, apperr.Newf(apperr.Server, "tenant isolation for %q requires an organization id on the user context", collection)
	}
	out := opts.Clone()
	if out.Filters == nil {
		out.Filters = map[string]query.Filter{}
	}
	out.Filters[c.orgIDField] = query.Filter{Eq: uc.OrgID}
	return out, nil
}

// ApplyToEntity stamps the tenant field onto a cloned entity before a
// write, again overwriting any client-supplied value.
func (c Config) ApplyToEntity(uc crud.UserContext, entity crud.Document, collection string) (crud.Document, error) {
	if c.Excluded(collection) {
		return entity, nil
	}
	if uc.OrgID == "" {
		return nil, apperr.Newf(apperr.Server, "tenant isolation for %q requires an organization id on the user context", collection)
	}
	out := make(crud.Document, len(entity)+1)
	for k, v := range entity {
		out[k] = v
	}
	out[c.orgIDField] = uc.OrgID
	return out, nil
}

// Strategies adapts the decorator to the crud engine's three preparation
// points. Each strategy first requires the caller to have supplied an
// organization; that failure is the caller's fault and surfaces as
// BadRequest, distinct from the decorator's misconfiguration path. A
// service constructed with these strategies is tenant-safe in every
// operation with no further integration.
func Strategies(c Config) crud.Strategies {
	requireOrg := func(uc crud.UserContext, collection string) error {
		if c.Excluded(collection) || uc.OrgID != "" {
			return nil
		}
		return apperr.Newf(apperr.BadRequest, "an organization id is required to access %s", collection)
	}
	return crud.Strategies{
		PrepareQuery: func(uc crud.UserContext, q crud.Document, collection string) (crud.Document, error) {
			if err := requireOrg(uc, collection); err != nil {
				return nil, err
			}
			return c.ApplyToQuery(uc, q, collection)
		},
		PrepareQueryOptions: func(uc crud.UserContext, opts query.Options, collection string) (query.Options, error) {
			if err := requireOrg(uc, collection); err != nil {
				return query.Options{}, err
			}
			return c.ApplyToQueryOptions(uc, opts, collection)
		},
		PrepareEntity: func(uc crud.UserContext, doc crud.Document, collection string, _ bool) (crud.Document, error) {
			if err := requireOrg(uc, collection); err != nil {
				return nil, err
			}
			return c.ApplyToEntity(uc, doc, collection)
		},
	}
}
