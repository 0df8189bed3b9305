// internal/core/modelspec/modelspec.go
//
// A Spec bundles one declarative domain schema with its derived variants
// and compiled validators, and owns the encode/decode/clean boundary
// between wire-shaped and storage-shaped documents. Specs are immutable
// after construction; build one per resource at startup and share it.
package modelspec

import (
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dalemusser/crudkit/internal/core/convert"
	"github.com/dalemusser/crudkit/internal/core/schema"
)

// Options selects the optional capabilities a resource's documents carry.
type Options struct {
	IsAuditable   bool
	IsMultiTenant bool
}

// Spec is the compiled bundle for one resource.
type Spec struct {
	// Schema holds the caller's domain fields only.
	Schema *schema.Schema
	// PartialSchema is Schema with every field optional, for partial
	// update payloads.
	PartialSchema *schema.Schema
	// FullSchema composes Schema with entity identity (including the
	// org field for multi-tenant resources) and, when auditable, the
	// audit fields. It is the single source of truth for what Encode,
	// Decode, and Clean accept or strip.
	FullSchema *schema.Schema

	Validator        *schema.Validator
	PartialValidator *schema.Validator
	FullValidator    *schema.Validator

	Auditable   bool
	MultiTenant bool
}

// New derives a Spec from a domain schema.
func New(s *schema.Schema, opts Options) *Spec {
	full := []*schema.Schema{s, schema.EntityIdentity(opts.IsMultiTenant)}
	if opts.IsAuditable {
		full = append(full, schema.Audit())
	}
	sp := &Spec{
		Schema:        s,
		PartialSchema: s.Partial(),
		FullSchema:    schema.AllOf(full...),
		Auditable:     opts.IsAuditable,
		MultiTenant:   opts.IsMultiTenant,
	}
	sp.Validator = schema.Compile(sp.Schema)
	sp.PartialValidator = schema.Compile(sp.PartialSchema)
	sp.FullValidator = schema.Compile(sp.FullSchema)
	return sp
}

// Encode converts a storage-shaped document into its wire shape: native
// ids become hex strings, times become RFC 3339 strings, and anything the
// full schema does not declare is stripped. Conversion runs before the
// structural clean; a native id is not a cleanable primitive, its string
// form is. Nil documents pass through.
func (sp *Spec) Encode(doc bson.M) bson.M {
	return sp.EncodeWith(doc, sp.FullSchema)
}

// EncodeWith is Encode against a caller-supplied schema, replacing the
// full schema for this conversion only. Projections that omit sensitive
// fields hand their narrower schema here.
func (sp *Spec) EncodeWith(doc bson.M, s *schema.Schema) bson.M {
	if doc == nil {
		return nil
	}
	out := convert.ObjectIDsToStrings(doc, s, convert.DefaultExclusions())
	out = convert.DatesToStrings(out, s)
	return schema.Clean(out, s)
}

// Decode converts wire-shaped input into its storage shape: schema
// defaults are applied, valid id strings become native ids, date strings
// become times, and undeclared properties are stripped. Nil passes through.
func (sp *Spec) Decode(doc bson.M) bson.M {
	if doc == nil {
		return nil
	}
	out := applyDefaults(doc, sp.FullSchema)
	out = convert.StringsToObjectIDs(out, sp.FullSchema, convert.DefaultExclusions())
	out = convert.StringsToDates(out, sp.FullSchema)
	return schema.Clean(out, sp.FullSchema)
}

// DecodePartial is Decode without default injection, for partial update
// payloads where an absent field means the stored value stays.
func (sp *Spec) DecodePartial(doc bson.M) bson.M {
	if doc == nil {
		return nil
	}
	out := convert.StringsToObjectIDs(doc, sp.FullSchema, convert.DefaultExclusions())
	out = convert.StringsToDates(out, sp.FullSchema)
	return schema.Clean(out, sp.FullSchema)
}

// Clean strips undeclared properties without any value conversion. It is
// the structural guard that keeps client payloads from smuggling extra
// fields into storage or back out to other clients.
func (sp *Spec) Clean(doc bson.M) bson.M {
	return schema.Clean(doc, sp.FullSchema)
}

func applyDefaults(doc bson.M, s *schema.Schema) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	s.EachProperty(func(name string, f schema.Field) {
		if f.Default == nil {
			return
		}
		if _, ok := out[name]; !ok {
			out[name] = f.Default
		}
	})
	return out
}
