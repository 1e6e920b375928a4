// Package protoschema holds the in-memory schema model produced by the
// proto3 IDL processor and consumed by the protowire binary codec.
package protoschema

import "fmt"

// ScalarTypes lists the fifteen proto3 scalar type names.
var ScalarTypes = map[string]bool{
	"double": true, "float": true,
	"int32": true, "int64": true, "uint32": true, "uint64": true,
	"sint32": true, "sint64": true,
	"fixed32": true, "fixed64": true, "sfixed32": true, "sfixed64": true,
	"bool": true, "string": true, "bytes": true,
}

// Schema is a fully processed proto3 schema: a package plus every message
// and enum declared at any nesting level, keyed by their fully-qualified
// dotted name for O(1) lookup by the binary codec. A nested declaration is
// also found by its simple name unless a top-level declaration uses it.
type Schema struct {
	Syntax  string // always "proto3"
	Package string
	Imports []string

	Messages []*MessageDef
	Enums    []*EnumDef

	// byName indexes every message/enum (including nested ones) by its
	// fully-qualified name, and nested ones also by their simple name,
	// resolved lazily on first use. Schemas are
	// immutable after construction, so this cache never invalidates.
	byName map[string]any
}

// MessageDef describes one `message` declaration.
type MessageDef struct {
	Name           string
	Fields         []*FieldDef
	NestedMessages []*MessageDef
	NestedEnums    []*EnumDef

	// Qualified is the fully-qualified dotted name, set when the schema's
	// name index is first built (by the first lookup or Validate call).
	Qualified string
}

// FieldDef describes one field within a message.
type FieldDef struct {
	Name   string
	Type   string // scalar name, "map", or a message/enum name
	Number uint32
	Label  string // "repeated", "optional", or ""

	KeyType   string // set when Type == "map"
	ValueType string // set when Type == "map"
}

// IsMap reports whether this field is a proto3 map field.
func (f *FieldDef) IsMap() bool { return f.Type == "map" }

// IsRepeated reports whether this field repeats.
func (f *FieldDef) IsRepeated() bool { return f.Label == "repeated" }

// EnumDef describes one `enum` declaration. Values preserves declaration
// order even though lookup is also available by name.
type EnumDef struct {
	Name      string
	Values    []EnumValue
	Qualified string
}

// EnumValue is one `NAME = NUMBER;` entry in an enum body.
type EnumValue struct {
	Name   string
	Number int32
}

// ValueByName returns the numeric value for a named enum constant.
func (e *EnumDef) ValueByName(name string) (int32, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v.Number, true
		}
	}
	return 0, false
}

// NameByValue returns the declared constant name for a numeric enum value.
func (e *EnumDef) NameByValue(n int32) (string, bool) {
	for _, v := range e.Values {
		if v.Number == n {
			return v.Name, true
		}
	}
	return "", false
}

// index builds (or returns the cached) fully-qualified name index.
func (s *Schema) index() map[string]any {
	if s.byName != nil {
		return s.byName
	}
	idx := map[string]any{}
	short := map[string]any{} // first nested declaration under each simple name
	var walkMsg func(prefix string, m *MessageDef)
	walkMsg = func(prefix string, m *MessageDef) {
		qn := prefix + m.Name
		m.Qualified = qn
		idx[qn] = m
		if _, ok := short[m.Name]; !ok && prefix != "" {
			short[m.Name] = m
		}
		for _, e := range m.NestedEnums {
			e.Qualified = qn + "." + e.Name
			idx[e.Qualified] = e
			if _, ok := short[e.Name]; !ok {
				short[e.Name] = e
			}
		}
		for _, nm := range m.NestedMessages {
			walkMsg(qn+".", nm)
		}
	}
	for _, m := range s.Messages {
		walkMsg("", m)
	}
	for _, e := range s.Enums {
		e.Qualified = e.Name
		idx[e.Name] = e
	}
	// A nested declaration is also reachable by its simple name unless a
	// top-level declaration uses that name.
	for name, d := range short {
		if _, taken := idx[name]; !taken {
			idx[name] = d
		}
	}
	s.byName = idx
	return idx
}

// FindMessage resolves a message by its (possibly nested) name.
func (s *Schema) FindMessage(name string) (*MessageDef, bool) {
	v, ok := s.index()[name]
	if !ok {
		return nil, false
	}
	m, ok := v.(*MessageDef)
	return m, ok
}

// FindEnum resolves an enum by its (possibly nested) name.
func (s *Schema) FindEnum(name string) (*EnumDef, bool) {
	v, ok := s.index()[name]
	if !ok {
		return nil, false
	}
	e, ok := v.(*EnumDef)
	return e, ok
}

// Validate checks the structural invariants: unique positive
// field numbers per message, unique enum value numbers, and that every
// field type resolves to a scalar or a declared message/enum.
func (s *Schema) Validate() error {
	var walk func(m *MessageDef) error
	walk = func(m *MessageDef) error {
		seen := map[uint32]bool{}
		for _, f := range m.Fields {
			if f.Number == 0 {
				return fmt.Errorf("message %s: field %q has number 0, field numbers must be > 0", m.Name, f.Name)
			}
			if seen[f.Number] {
				return fmt.Errorf("message %s: duplicate field number %d", m.Name, f.Number)
			}
			seen[f.Number] = true
			if f.IsMap() {
				if !isResolvableType(s, f.ValueType) {
					return fmt.Errorf("message %s: map field %q has unresolvable value type %q", m.Name, f.Name, f.ValueType)
				}
				continue
			}
			if !isResolvableType(s, f.Type) {
				return fmt.Errorf("message %s: field %q has unresolvable type %q", m.Name, f.Name, f.Type)
			}
		}
		for _, e := range m.NestedEnums {
			if err := validateEnum(e); err != nil {
				return err
			}
		}
		for _, nm := range m.NestedMessages {
			if err := walk(nm); err != nil {
				return err
			}
		}
		return nil
	}
	for _, m := range s.Messages {
		if err := walk(m); err != nil {
			return err
		}
	}
	for _, e := range s.Enums {
		if err := validateEnum(e); err != nil {
			return err
		}
	}
	return nil
}

func validateEnum(e *EnumDef) error {
	seen := map[int32]bool{}
	for _, v := range e.Values {
		if seen[v.Number] {
			return fmt.Errorf("enum %s: duplicate value number %d", e.Name, v.Number)
		}
		seen[v.Number] = true
	}
	return nil
}

func isResolvableType(s *Schema, t string) bool {
	if ScalarTypes[t] {
		return true
	}
	if _, ok := s.FindMessage(t); ok {
		return true
	}
	if _, ok := s.FindEnum(t); ok {
		return true
	}
	return false
}
