// internal/core/crud/usercontext_test.go
package crud_test

import (
	"testing"

	"github.com/dalemusser/crudkit/internal/core/crud"
)

func TestActorID_SentinelDispatch(t *testing.T) {
	if got := crud.EmptyUserContext.ActorID(); got != "system" {
		t.Errorf("sentinel actor = %q, want system", got)
	}
	if !crud.EmptyUserContext.IsSystem() {
		t.Error("EmptyUserContext must report IsSystem")
	}

	// A context with a nil user is anonymous, not system. The two differ
	// on purpose.
	anon := crud.UserContext{}
	if anon.IsSystem() {
		t.Error("anonymous context must not report IsSystem")
	}
	if got := anon.ActorID(); got != "" {
		t.Errorf("anonymous actor = %q, want empty", got)
	}

	named := crud.UserContext{User: &crud.User{ID: "u-1"}}
	if got := named.ActorID(); got != "u-1" {
		t.Errorf("actor = %q, want u-1", got)
	}
	if named.IsSystem() {
		t.Error("a real user must not report IsSystem")
	}
}
