// internal/core/schema/schema.go
package schema

// Type enumerates the variants a field can take. The schema is an explicit
// tagged representation walked by visitors (validation, cleaning, value
// conversion) rather than anything reflection-driven.
type Type int

const (
	String Type = iota
	Integer
	Number
	Boolean
	Object
	Array
)

// Format narrows a String field to a wire/storage convertible value.
type Format int

const (
	FormatNone Format = iota
	// FormatObjectID marks a field stored as a native document id and
	// carried on the wire as its 24-hex-character string form.
	FormatObjectID
	// FormatDateTime marks a field stored as a time.Time and carried on
	// the wire as an RFC 3339 string.
	FormatDateTime
)

// Field describes one property of a document.
type Field struct {
	Type     Type
	Format   Format
	Required bool
	Default  any

	// Object fields. A nil/empty Properties map means free-form: the
	// value is kept as-is and not walked.
	Properties map[string]Field

	// Array item schema.
	Items *Field

	// String constraints. MaxLength of zero means unconstrained.
	MinLength int
	MaxLength int
	Pattern   string
	Enum      []string

	// Numeric bounds.
	Minimum *float64
	Maximum *float64
}

// Schema is a set of named properties, optionally composed with other
// schemas. Composition is a logical AND: a document must satisfy every
// component, and walkers visit each component in turn.
type Schema struct {
	Properties map[string]Field
	AllOf      []*Schema
}

// AllOf composes schemas without copying them.
func AllOf(schemas ...*Schema) *Schema {
	return &Schema{AllOf: schemas}
}

// EachProperty visits every declared property, including those declared by
// composed schemas, in composition order. Later declarations of the same
// name are still visited; callers that need one binding should use Property.
func (s *Schema) EachProperty(fn func(name string, f Field)) {
	if s == nil {
		return
	}
	for _, sub := range s.AllOf {
		sub.EachProperty(fn)
	}
	for name, f := range s.Properties {
		fn(name, f)
	}
}

// Property finds a declared property by name, searching composed schemas.
func (s *Schema) Property(name string) (Field, bool) {
	if s == nil {
		return Field{}, false
	}
	if f, ok := s.Properties[name]; ok {
		return f, true
	}
	for _, sub := range s.AllOf {
		if f, ok := sub.Property(name); ok {
			return f, true
		}
	}
	return Field{}, false
}

// Partial returns a variant of s with every top-level property optional.
// Present values must still satisfy their original constraints; only the
// required checks are relaxed. Used to validate partial-update payloads.
func (s *Schema) Partial() *Schema {
	if s == nil {
		return nil
	}
	out := &Schema{}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]Field, len(s.Properties))
		for name, f := range s.Properties {
			f.Required = false
			out.Properties[name] = f
		}
	}
	for _, sub := range s.AllOf {
		out.AllOf = append(out.AllOf, sub.Partial())
	}
	return out
}

// EntityIdentity is the schema every persisted document satisfies: its
// native id plus, for multi-tenant resources, the owning organization.
// The org id is a plain string throughout; it is never converted to a
// native id even though it is usually 24 hex characters.
func EntityIdentity(multiTenant bool) *Schema {
	props := map[string]Field{
		"_id": {Type: String, Format: FormatObjectID},
	}
	if multiTenant {
		props["_orgId"] = Field{Type: String}
	}
	return &Schema{Properties: props}
}

// Audit is the schema for the four server-stamped provenance fields.
func Audit() *Schema {
	return &Schema{Properties: map[string]Field{
		"_created":   {Type: String, Format: FormatDateTime},
		"_createdBy": {Type: String},
		"_updated":   {Type: String, Format: FormatDateTime},
		"_updatedBy": {Type: String},
	}}
}
