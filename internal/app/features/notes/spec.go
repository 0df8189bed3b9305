// internal/app/features/notes/spec.go
package notes

import (
	"github.com/dalemusser/crudkit/internal/core/modelspec"
	"github.com/dalemusser/crudkit/internal/core/schema"
)

// noteSchema declares the domain fields of a note. Identity and audit
// fields are composed in by the model spec, not declared here.
func noteSchema() *schema.Schema {
	return &schema.Schema{Properties: map[string]schema.Field{
		"title":      {Type: schema.String, Required: true, MinLength: 1, MaxLength: 200},
		"body":       {Type: schema.String},
		"tags":       {Type: schema.Array, Items: &schema.Field{Type: schema.String}},
		"authorId":   {Type: schema.String, Format: schema.FormatObjectID},
		"pinned":     {Type: schema.Boolean, Default: false},
		"shareToken": {Type: schema.String},
	}}
}

func newSpec() *modelspec.Spec {
	return modelspec.New(noteSchema(), modelspec.Options{
		IsAuditable:   true,
		IsMultiTenant: true,
	})
}

// publicSchema is the outbound shape for readers other than the note's
// creator. The share token stays private; encoding with this schema
// strips it.
func publicSchema() *schema.Schema {
	s := noteSchema()
	delete(s.Properties, "shareToken")
	return schema.AllOf(s, schema.EntityIdentity(true), schema.Audit())
}
