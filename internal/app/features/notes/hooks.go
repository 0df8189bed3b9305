// internal/app/features/notes/hooks.go
package notes

import (
	"context"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/dalemusser/crudkit/internal/core/convert"
	"github.com/dalemusser/crudkit/internal/core/crud"
)

// bodyPolicy strips markup down to what user-generated content may carry.
var bodyPolicy = bluemonday.UGCPolicy()

func sanitizeBody(doc crud.Document) crud.Document {
	if body, ok := doc["body"].(string); ok {
		doc["body"] = bodyPolicy.Sanitize(body)
	}
	return doc
}

// beforeCreate sanitizes the body, stamps a server-issued share token
// (client-supplied values are overwritten), and promotes foreign-key hex
// strings the way the default before-write behavior would.
func beforeCreate(_ context.Context, _ crud.UserContext, doc crud.Document) (crud.Document, error) {
	doc = sanitizeBody(doc)
	doc["shareToken"] = uuid.NewString()
	return convert.PromoteIDStrings(doc, convert.DefaultExclusions()), nil
}

// beforeUpdate sanitizes the body and promotes foreign keys.
func beforeUpdate(_ context.Context, _ crud.UserContext, doc crud.Document) (crud.Document, error) {
	doc = sanitizeBody(doc)
	return convert.PromoteIDStrings(doc, convert.DefaultExclusions()), nil
}
