// internal/core/schema/validate.go
package schema

import (
	"fmt"
	"math"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var objectIDHex = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// IsObjectIDHex reports whether s is exactly 24 hexadecimal characters,
// the only string form ever treated as a convertible identifier.
func IsObjectIDHex(s string) bool {
	return objectIDHex.MatchString(s)
}

// ValueError is one schema violation tied to the field that caused it.
type ValueError struct {
	Field   string
	Message string
}

// Validator is a compiled predicate for one schema. Compiling up front
// keeps regexp work out of the per-request path.
type Validator struct {
	schema   *Schema
	patterns map[string]*regexp.Regexp
}

// Compile builds a Validator for s. A malformed Pattern is a programming
// error in the schema definition and panics, matching regexp.MustCompile.
func Compile(s *Schema) *Validator {
	v := &Validator{schema: s, patterns: map[string]*regexp.Regexp{}}
	compilePatterns(s, "", v.patterns)
	return v
}

func compilePatterns(s *Schema, prefix string, into map[string]*regexp.Regexp) {
	if s == nil {
		return
	}
	for _, sub := range s.AllOf {
		compilePatterns(sub, prefix, into)
	}
	for name, f := range s.Properties {
		compileFieldPatterns(f, joinPath(prefix, name), into)
	}
}

func compileFieldPatterns(f Field, path string, into map[string]*regexp.Regexp) {
	if f.Pattern != "" {
		into[path] = regexp.MustCompile(f.Pattern)
	}
	for name, sub := range f.Properties {
		compileFieldPatterns(sub, joinPath(path, name), into)
	}
	if f.Items != nil {
		compileFieldPatterns(*f.Items, path+"[]", into)
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

var arrayIndex = regexp.MustCompile(`\[\d+\]`)

// patternKey collapses concrete array indices ("codes[3]") back to the
// position-independent form patterns are compiled under ("codes[]").
func patternKey(path string) string {
	return arrayIndex.ReplaceAllString(path, "[]")
}

// Validate checks doc against the compiled schema. It returns nil when the
// document conforms, otherwise one ValueError per violation. Properties the
// schema does not declare are ignored here; structural cleaning removes them.
func (v *Validator) Validate(doc map[string]any) []ValueError {
	if v.schema == nil {
		return nil
	}
	var errs []ValueError
	v.validateSchema(v.schema, "", doc, &errs)
	return errs
}

func (v *Validator) validateSchema(s *Schema, prefix string, doc map[string]any, errs *[]ValueError) {
	if s == nil {
		return
	}
	for _, sub := range s.AllOf {
		v.validateSchema(sub, prefix, doc, errs)
	}
	for name, f := range s.Properties {
		path := joinPath(prefix, name)
		val, ok := doc[name]
		if !ok || val == nil {
			if f.Required {
				*errs = append(*errs, ValueError{Field: path, Message: "is required"})
			}
			continue
		}
		v.validateValue(f, path, val, errs)
	}
}

func (v *Validator) validateValue(f Field, path string, val any, errs *[]ValueError) {
	switch f.Type {
	case String:
		v.validateString(f, path, val, errs)
	case Integer:
		n, ok := asNumber(val)
		if !ok || n != math.Trunc(n) {
			*errs = append(*errs, ValueError{Field: path, Message: "must be an integer"})
			return
		}
		v.checkBounds(f, path, n, errs)
	case Number:
		n, ok := asNumber(val)
		if !ok {
			*errs = append(*errs, ValueError{Field: path, Message: "must be a number"})
			return
		}
		v.checkBounds(f, path, n, errs)
	case Boolean:
		if _, ok := val.(bool); !ok {
			*errs = append(*errs, ValueError{Field: path, Message: "must be a boolean"})
		}
	case Object:
		m, ok := asMap(val)
		if !ok {
			*errs = append(*errs, ValueError{Field: path, Message: "must be an object"})
			return
		}
		if len(f.Properties) > 0 {
			v.validateSchema(&Schema{Properties: f.Properties}, path, m, errs)
		}
	case Array:
		arr, ok := asSlice(val)
		if !ok {
			*errs = append(*errs, ValueError{Field: path, Message: "must be an array"})
			return
		}
		if f.Items != nil {
			for i, item := range arr {
				if item == nil {
					continue
				}
				v.validateValue(*f.Items, fmt.Sprintf("%s[%d]", path, i), item, errs)
			}
		}
	}
}

func (v *Validator) validateString(f Field, path string, val any, errs *[]ValueError) {
	// Formatted fields accept either representation: documents are
	// validated both on the way in (wire form) and before persistence
	// (storage form).
	switch f.Format {
	case FormatObjectID:
		switch tv := val.(type) {
		case primitive.ObjectID:
			return
		case string:
			if !IsObjectIDHex(tv) {
				*errs = append(*errs, ValueError{Field: path, Message: "must be a valid id"})
			}
			return
		default:
			*errs = append(*errs, ValueError{Field: path, Message: "must be a valid id"})
			return
		}
	case FormatDateTime:
		switch tv := val.(type) {
		case time.Time, primitive.DateTime:
			return
		case string:
			if _, err := time.Parse(time.RFC3339, tv); err != nil {
				*errs = append(*errs, ValueError{Field: path, Message: "must be an RFC 3339 date"})
			}
			return
		default:
			*errs = append(*errs, ValueError{Field: path, Message: "must be an RFC 3339 date"})
			return
		}
	}

	s, ok := val.(string)
	if !ok {
		*errs = append(*errs, ValueError{Field: path, Message: "must be a string"})
		return
	}
	if f.MinLength > 0 && len(s) < f.MinLength {
		*errs = append(*errs, ValueError{Field: path, Message: fmt.Sprintf("must be at least %d characters", f.MinLength)})
	}
	if f.MaxLength > 0 && len(s) > f.MaxLength {
		*errs = append(*errs, ValueError{Field: path, Message: fmt.Sprintf("must be at most %d characters", f.MaxLength)})
	}
	if re, ok := v.patterns[patternKey(path)]; ok && !re.MatchString(s) {
		*errs = append(*errs, ValueError{Field: path, Message: "has an invalid format"})
	}
	if len(f.Enum) > 0 {
		for _, allowed := range f.Enum {
			if s == allowed {
				return
			}
		}
		*errs = append(*errs, ValueError{Field: path, Message: "is not an allowed value"})
	}
}

func (v *Validator) checkBounds(f Field, path string, n float64, errs *[]ValueError) {
	if f.Minimum != nil && n < *f.Minimum {
		*errs = append(*errs, ValueError{Field: path, Message: fmt.Sprintf("must be at least %v", *f.Minimum)})
	}
	if f.Maximum != nil && n > *f.Maximum {
		*errs = append(*errs, ValueError{Field: path, Message: fmt.Sprintf("must be at most %v", *f.Maximum)})
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return m, true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	switch a := v.(type) {
	case bson.A:
		return a, true
	case []any:
		return a, true
	}
	return nil, false
}
