// internal/core/crud/usercontext.go
package crud

import "go.mongodb.org/mongo-driver/bson"

// Document is the unit every service operation reads and writes. Documents
// are schema-described maps rather than structs so one engine can serve any
// resource.
type Document = bson.M

// User is the authenticated actor behind an operation.
type User struct {
	ID   string
	Name string
	Role string
}

// systemUser is the identity behind EmptyUserContext. Pointer identity is
// what marks a context as the system sentinel; a context that merely has a
// nil user is anonymous, not system, and stamps no actor id.
var systemUser = &User{ID: "system"}

// UserContext carries the acting user and, for multi-tenant deployments,
// the organization they act within.
type UserContext struct {
	User  *User
	OrgID string
}

// EmptyUserContext is the well-known sentinel for system-initiated
// operations (startup fixes, password resets) that bypass tenant scoping
// and are audited as actor "system".
var EmptyUserContext = UserContext{User: systemUser}

// IsSystem reports whether uc is the system sentinel.
func (uc UserContext) IsSystem() bool { return uc.User == systemUser }

// ActorID is the id stamped into audit fields: the user's id, "system"
// for the sentinel, empty for an anonymous context.
func (uc UserContext) ActorID() string {
	if uc.User == nil {
		return ""
	}
	return uc.User.ID
}
