// Package schema implements the declarative document validator used by the
// endpoint dispatcher. A schema is a tree of nodes (map, array, string,
// number, enum) checked against decoded JSON values. Validation is purely
// structural: it never touches storage and fails fast on the first offending
// field.
package schema

import (
	"fmt"
	"math"
	"regexp"
	"unicode/utf8"
)

// Node is a single schema node. The node set is closed: only the types in
// this package implement it.
type Node interface {
	validate(path string, value any) error
	// Describe renders the node as a plain document, used by the /specs
	// endpoint to expose the service contract.
	Describe() map[string]any
}

// Validate checks value against the schema rooted at n. It returns nil when
// the value conforms, or an *Error naming the first failing field.
func Validate(n Node, value any) error {
	return n.validate("", value)
}

// Error identifies the first field that failed validation.
type Error struct {
	Field  string // dotted path, empty for the root value
	Reason string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func fail(field, format string, args ...any) error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// prefix joins a parent path with a child field name.
func prefix(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

// Field is one entry of a Map node. Order matters: fields are validated in
// declaration order and the first failure wins.
type Field struct {
	Name     string
	Node     Node
	Optional bool
}

// Map validates an object with a fixed field set. Unknown fields are
// rejected; required fields must be present; absent optional fields are
// permitted. Null handling is not the validator's concern; callers strip
// explicit nulls before validating.
type Map struct {
	Fields []Field
}

func (m Map) validate(path string, value any) error {
	doc, ok := value.(map[string]any)
	if !ok {
		return fail(path, "expected a map")
	}

	declared := make(map[string]struct{}, len(m.Fields))
	for _, f := range m.Fields {
		declared[f.Name] = struct{}{}
	}
	for name := range doc {
		if _, ok := declared[name]; !ok {
			return fail(prefix(path, name), "unknown field")
		}
	}

	for _, f := range m.Fields {
		v, present := doc[f.Name]
		if !present {
			if f.Optional {
				continue
			}
			return fail(prefix(path, f.Name), "missing required field")
		}
		if err := f.Node.validate(prefix(path, f.Name), v); err != nil {
			return err
		}
	}
	return nil
}

func (m Map) Describe() map[string]any {
	fields := make(map[string]any, len(m.Fields))
	for _, f := range m.Fields {
		d := f.Node.Describe()
		if f.Optional {
			d["option"] = true
		}
		fields[f.Name] = d
	}
	return map[string]any{"type": "map", "fields": fields}
}

// Array validates a sequence whose elements all satisfy Elem. Order is
// preserved; elements are validated independently.
type Array struct {
	Elem Node
}

func (a Array) validate(path string, value any) error {
	items, ok := value.([]any)
	if !ok {
		return fail(path, "expected an array")
	}
	for i, item := range items {
		if err := a.Elem.validate(prefix(path, fmt.Sprintf("[%d]", i)), item); err != nil {
			return err
		}
	}
	return nil
}

func (a Array) Describe() map[string]any {
	return map[string]any{"type": "array", "value": a.Elem.Describe()}
}

// Length is an inclusive character-count range for String nodes.
type Length struct {
	Min int
	Max int
}

// String validates a string value against an optional regular expression and
// an optional inclusive length range. Lengths count runes, not bytes.
type String struct {
	Pattern *regexp.Regexp
	Length  *Length
}

func (s String) validate(path string, value any) error {
	str, ok := value.(string)
	if !ok {
		return fail(path, "expected a string")
	}
	if s.Length != nil {
		n := utf8.RuneCountInString(str)
		if n < s.Length.Min || n > s.Length.Max {
			return fail(path, "length must be between %d and %d", s.Length.Min, s.Length.Max)
		}
	}
	if s.Pattern != nil && !s.Pattern.MatchString(str) {
		return fail(path, "value does not match pattern %q", s.Pattern.String())
	}
	return nil
}

func (s String) Describe() map[string]any {
	d := map[string]any{"type": "string"}
	if s.Pattern != nil {
		d["pattern"] = s.Pattern.String()
	}
	if s.Length != nil {
		d["length"] = map[string]any{"minimum": s.Length.Min, "maximum": s.Length.Max}
	}
	return d
}

// Number validates a numeric value. When Decimal is false the value must be
// a whole number (JSON has no integer type, so 3.0 passes and 3.5 does not).
type Number struct {
	Decimal bool
}

func (n Number) validate(path string, value any) error {
	f, ok := asFloat(value)
	if !ok {
		return fail(path, "expected a number")
	}
	if !n.Decimal && math.Trunc(f) != f {
		return fail(path, "expected a whole number")
	}
	return nil
}

// asFloat widens the numeric types a document may carry: float64 from
// decoded JSON, int variants from documents built in-process.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func (n Number) Describe() map[string]any {
	return map[string]any{"type": "number", "decimal": n.Decimal}
}

// Enum validates membership in a closed set of string values.
type Enum struct {
	Values []string
}

func (e Enum) validate(path string, value any) error {
	str, ok := value.(string)
	if !ok {
		return fail(path, "expected a string")
	}
	for _, v := range e.Values {
		if str == v {
			return nil
		}
	}
	return fail(path, "value %q is not one of %v", str, e.Values)
}

func (e Enum) Describe() map[string]any {
	return map[string]any{"type": "enum", "values": e.Values}
}
