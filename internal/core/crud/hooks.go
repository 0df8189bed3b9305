// internal/core/crud/hooks.go
package crud

import (
	"context"

	"github.com/dalemusser/crudkit/internal/core/convert"
	"github.com/dalemusser/crudkit/internal/core/query"
)

// Hook receives the document at a fixed point of an operation's lifecycle
// and returns it, possibly mutated. A hook error before the store call
// prevents the call; after the store call it propagates but does not roll
// back the applied mutation.
type Hook func(ctx context.Context, uc UserContext, doc Document) (Document, error)

// Hooks are the six overridable extension points. Any nil entry defaults
// to pass-through; the before-write defaults additionally promote
// foreign-key hex strings to native ids.
type Hooks struct {
	OnBeforeCreate Hook
	OnAfterCreate  Hook
	OnBeforeUpdate Hook
	OnAfterUpdate  Hook
	OnBeforeDelete Hook
	OnAfterDelete  Hook
}

// Transform reshapes a document as the last step before it is returned to
// a caller, removing or renaming store-internal fields.
type Transform func(doc Document) Document

// Strategies are the three preparation points every operation funnels
// through before anything reaches the store. The plain service uses
// identity strategies; the multi-tenant service is the same engine
// constructed with the tenant strategies instead.
type Strategies struct {
	PrepareQuery        func(uc UserContext, q Document, collection string) (Document, error)
	PrepareQueryOptions func(uc UserContext, opts query.Options, collection string) (query.Options, error)
	PrepareEntity       func(uc UserContext, doc Document, collection string, isCreate bool) (Document, error)
}

func passThroughHook(_ context.Context, _ UserContext, doc Document) (Document, error) {
	return doc, nil
}

// promoteFKStrings is the default before-write behavior beyond audit
// stamping: id-suffixed fields carrying valid hex strings are stored as
// native ids.
func promoteFKStrings(_ context.Context, _ UserContext, doc Document) (Document, error) {
	return convert.PromoteIDStrings(doc, convert.DefaultExclusions()), nil
}

func identityTransform(doc Document) Document { return doc }

func (h Hooks) withDefaults() Hooks {
	if h.OnBeforeCreate == nil {
		h.OnBeforeCreate = promoteFKStrings
	}
	if h.OnAfterCreate == nil {
		h.OnAfterCreate = passThroughHook
	}
	if h.OnBeforeUpdate == nil {
		h.OnBeforeUpdate = promoteFKStrings
	}
	if h.OnAfterUpdate == nil {
		h.OnAfterUpdate = passThroughHook
	}
	if h.OnBeforeDelete == nil {
		h.OnBeforeDelete = passThroughHook
	}
	if h.OnAfterDelete == nil {
		h.OnAfterDelete = passThroughHook
	}
	return h
}

func (s Strategies) withDefaults() Strategies {
	if s.PrepareQuery == nil {
		s.PrepareQuery = func(_ UserContext, q Document, _ string) (Document, error) { return q, nil }
	}
	if s.PrepareQueryOptions == nil {
		s.PrepareQueryOptions = func(_ UserContext, opts query.Options, _ string) (query.Options, error) { return opts, nil }
	}
	if s.PrepareEntity == nil {
		s.PrepareEntity = func(_ UserContext, doc Document, _ string, _ bool) (Document, error) { return doc, nil }
	}
	return s
}
