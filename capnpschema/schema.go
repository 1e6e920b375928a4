// Package capnpschema holds the in-memory schema model produced by the
// Cap'n Proto IDL processor and consumed by the capnproto binary codec.
package capnpschema

import "fmt"

// TypeKind tags the variant held by a FieldType.
type TypeKind int

const (
	// KindPrimitive is one of the built-in Cap'n Proto primitive types.
	KindPrimitive TypeKind = iota
	// KindUser references a struct/enum/interface declared elsewhere in
	// the schema, by name.
	KindUser
	// KindList is a generic List(T).
	KindList
)

// Primitive names Cap'n Proto's built-in scalar/blob types.
type Primitive string

const (
	Void    Primitive = "Void"
	Bool    Primitive = "Bool"
	Int8    Primitive = "Int8"
	Int16   Primitive = "Int16"
	Int32   Primitive = "Int32"
	Int64   Primitive = "Int64"
	UInt8   Primitive = "UInt8"
	UInt16  Primitive = "UInt16"
	UInt32  Primitive = "UInt32"
	UInt64  Primitive = "UInt64"
	Float32 Primitive = "Float32"
	Float64 Primitive = "Float64"
	Text    Primitive = "Text"
	Data    Primitive = "Data"
	AnyPointer Primitive = "AnyPointer"
)

var primitives = map[Primitive]bool{
	Void: true, Bool: true,
	Int8: true, Int16: true, Int32: true, Int64: true,
	UInt8: true, UInt16: true, UInt32: true, UInt64: true,
	Float32: true, Float64: true,
	Text: true, Data: true, AnyPointer: true,
}

// IsPrimitiveName reports whether name is one of the built-in type names.
func IsPrimitiveName(name string) bool {
	return primitives[Primitive(name)]
}

// FieldType is a recursive type expression: a primitive, a named user type,
// or a generic List(T).
type FieldType struct {
	Kind        TypeKind
	Primitive   Primitive
	UserType    string
	ElementType *FieldType // set when Kind == KindList
}

// Using records a `using Alias = import "path";` declaration.
type Using struct {
	Alias      string
	ImportPath string
}

// ConstDef records a `const name :Type = value;` declaration.
type ConstDef struct {
	Name  string
	Type  FieldType
	Value any
}

// StructDef describes one `struct` declaration.
type StructDef struct {
	Name    string
	Fields  []*FieldDef
	Unions  []*UnionDef
	Groups  []*GroupDef

	NestedStructs []*StructDef
	NestedEnums   []*EnumDef

	Annotations []Annotation
}

// UnionDef describes an anonymous `union { ... }` block within a struct; it
// must name at least two member fields.
type UnionDef struct {
	Fields []*FieldDef
}

// GroupDef describes a `name @ord :group { ... }` block: a named nested
// field layout that shares the enclosing struct's data/pointer sections.
type GroupDef struct {
	Name   string
	Ordinal uint16
	Fields []*FieldDef
}

// FieldDef describes one field within a struct.
type FieldDef struct {
	Name    string
	Ordinal uint16
	Type    FieldType
	Default any
}

// Annotation is a `$name` or `$name(value)` struct/field annotation.
type Annotation struct {
	Name  string
	Value any
}

// EnumDef describes one `enum` declaration; values are numbered u16.
type EnumDef struct {
	Name   string
	Values []EnumValue
}

// EnumValue is one `name @N;` entry in an enum body.
type EnumValue struct {
	Name    string
	Ordinal uint16
}

// MethodDef describes one RPC method signature within an interface.
type MethodDef struct {
	Name       string
	Ordinal    uint16
	ParamType  string
	ResultType string
}

// InterfaceDef describes one `interface` declaration. RPC transport itself
// is not implemented; only the method signatures are modeled.
type InterfaceDef struct {
	Name    string
	Methods []*MethodDef
}

// Schema is a fully processed Cap'n Proto schema file.
type Schema struct {
	FileID     string
	Usings     []Using
	Structs    []*StructDef
	Enums      []*EnumDef
	Interfaces []*InterfaceDef
	Constants  []*ConstDef

	byName map[string]any
}

func (s *Schema) index() map[string]any {
	if s.byName != nil {
		return s.byName
	}
	idx := map[string]any{}
	var walk func(st *StructDef)
	walk = func(st *StructDef) {
		idx[st.Name] = st
		for _, e := range st.NestedEnums {
			idx[e.Name] = e
		}
		for _, ns := range st.NestedStructs {
			walk(ns)
		}
	}
	for _, st := range s.Structs {
		walk(st)
	}
	for _, e := range s.Enums {
		idx[e.Name] = e
	}
	for _, i := range s.Interfaces {
		idx[i.Name] = i
	}
	s.byName = idx
	return idx
}

// FindStruct resolves a struct by name.
func (s *Schema) FindStruct(name string) (*StructDef, bool) {
	v, ok := s.index()[name]
	if !ok {
		return nil, false
	}
	st, ok := v.(*StructDef)
	return st, ok
}

// FindEnum resolves an enum by name.
func (s *Schema) FindEnum(name string) (*EnumDef, bool) {
	v, ok := s.index()[name]
	if !ok {
		return nil, false
	}
	e, ok := v.(*EnumDef)
	return e, ok
}

// AllFields returns every field in a struct, including the members of any
// unions and groups: the plain fields first, then each union's members, then
// each group's members, each in declaration order. Cap'n Proto unions/groups share
// the enclosing struct's data/pointer sections, so the binary codec treats
// their members as ordinary fields of the struct once flattened.
func (st *StructDef) AllFields() []*FieldDef {
	out := append([]*FieldDef(nil), st.Fields...)
	for _, u := range st.Unions {
		out = append(out, u.Fields...)
	}
	for _, g := range st.Groups {
		out = append(out, g.Fields...)
	}
	return out
}

// Validate checks the struct invariants: unique non-negative ordinals
// within a struct/enum, a required file_id, and unions with at least two
// members.
func (s *Schema) Validate() error {
	if s.FileID == "" {
		return fmt.Errorf("schema is missing a required @0x... file id")
	}
	for _, st := range s.Structs {
		if err := validateStruct(st); err != nil {
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

func validateStruct(st *StructDef) error {
	seen := map[uint16]bool{}
	for _, f := range st.AllFields() {
		if seen[f.Ordinal] {
			return fmt.Errorf("struct %s: duplicate ordinal @%d", st.Name, f.Ordinal)
		}
		seen[f.Ordinal] = true
	}
	for _, u := range st.Unions {
		if len(u.Fields) < 2 {
			return fmt.Errorf("struct %s: union must have at least 2 fields", st.Name)
		}
	}
	for _, e := range st.NestedEnums {
		if err := validateEnum(e); err != nil {
			return err
		}
	}
	for _, ns := range st.NestedStructs {
		if err := validateStruct(ns); err != nil {
			return err
		}
	}
	return nil
}

func validateEnum(e *EnumDef) error {
	seen := map[uint16]bool{}
	for _, v := range e.Values {
		if seen[v.Ordinal] {
			return fmt.Errorf("enum %s: duplicate ordinal @%d", e.Name, v.Ordinal)
		}
		seen[v.Ordinal] = true
	}
	return nil
}
