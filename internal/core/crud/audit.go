// internal/core/crud/audit.go
package crud

import "time"

// Audit field names. Creation fields are set once; update fields are
// re-stamped on every mutation.
const (
	FieldCreated   = "_created"
	FieldCreatedBy = "_createdBy"
	FieldUpdated   = "_updated"
	FieldUpdatedBy = "_updatedBy"
)

var auditFields = []string{FieldCreated, FieldCreatedBy, FieldUpdated, FieldUpdatedBy}

// stripAudit removes any client-supplied audit values from doc in place.
// Clients can never set these; they are recomputed server-side on every
// write.
func stripAudit(doc Document) {
	for _, f := range auditFields {
		delete(doc, f)
	}
}

// stampCreate sets all four audit fields for a fresh document.
func stampCreate(doc Document, uc UserContext, now time.Time) {
	actor := uc.ActorID()
	doc[FieldCreated] = now
	doc[FieldCreatedBy] = actor
	doc[FieldUpdated] = now
	doc[FieldUpdatedBy] = actor
}

// stampUpdate refreshes the update pair, leaving creation provenance alone.
func stampUpdate(doc Document, uc UserContext, now time.Time) {
	doc[FieldUpdated] = now
	doc[FieldUpdatedBy] = uc.ActorID()
}
