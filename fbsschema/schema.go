// Package fbsschema holds the in-memory schema model produced by the
// FlatBuffers IDL processor and consumed by the flatbuffers binary codec.
package fbsschema

import "fmt"

// ScalarTypes lists the FlatBuffers scalar type names.
var ScalarTypes = map[string]int{
	"bool": 1, "byte": 1, "ubyte": 1,
	"short": 2, "ushort": 2,
	"int": 4, "uint": 4, "float": 4,
	"long": 8, "ulong": 8, "double": 8,
}

// IsScalarName reports whether name is one of the built-in scalar types.
func IsScalarName(name string) bool {
	_, ok := ScalarTypes[name]
	return ok
}

// FieldTypeKind tags the variant held by a FieldType.
type FieldTypeKind int

const (
	// KindScalar is one of the built-in scalar type names, or "string".
	KindScalar FieldTypeKind = iota
	// KindUser references a table/struct/enum/union declared elsewhere.
	KindUser
	// KindVector is a generic Vector(ElementType): `[ElementType]`.
	KindVector
)

// FieldType is a recursive type expression: a scalar, "string", a named user
// type, or a vector of either.
type FieldType struct {
	Kind        FieldTypeKind
	ScalarName  string
	UserType    string
	ElementType *FieldType // set when Kind == KindVector
}

// Metadata is a `(key:value, flag)` field attribute list; a flag with no
// value is recorded with an empty string.
type Metadata map[string]string

// FieldDef describes one field within a table or struct.
type FieldDef struct {
	Name     string
	Type     FieldType
	Default  any
	Metadata Metadata
}

// TableDef describes one `table` declaration.
type TableDef struct {
	Name     string
	Fields   []*FieldDef
	Metadata Metadata
}

// StructDef describes one FlatBuffers `struct` declaration. Struct fields
// must all be scalar or nested struct; vectors and tables are rejected by
// Validate.
type StructDef struct {
	Name     string
	Fields   []*FieldDef
	Metadata Metadata
}

// EnumDef describes one `enum Name:underlying { ... }` declaration. Values
// lacking an explicit number receive previous+1, starting at 0.
type EnumDef struct {
	Name       string
	Underlying string
	Values     []EnumValue
}

// EnumValue is one `NAME = NUMBER` entry in an enum body.
type EnumValue struct {
	Name  string
	Value int64
}

// ValueByName returns the numeric value for a named enum constant.
func (e *EnumDef) ValueByName(name string) (int64, bool) {
	for _, v := range e.Values {
		if v.Name == name {
			return v.Value, true
		}
	}
	return 0, false
}

// NameByValue returns the declared constant name for a numeric enum value.
func (e *EnumDef) NameByValue(n int64) (string, bool) {
	for _, v := range e.Values {
		if v.Value == n {
			return v.Name, true
		}
	}
	return "", false
}

// UnionDef describes one `union Name { A, B, ... }` declaration; each
// member names a table type.
type UnionDef struct {
	Name    string
	Members []string
}

// FbsSchema is a fully processed FlatBuffers schema file.
type FbsSchema struct {
	Namespace      string
	Includes       []string
	Attributes     []string
	Tables         []*TableDef
	Structs        []*StructDef
	Enums          []*EnumDef
	Unions         []*UnionDef
	RootType       string
	FileIdentifier string
	FileExtension  string

	byName map[string]any
}

func (s *FbsSchema) index() map[string]any {
	if s.byName != nil {
		return s.byName
	}
	idx := map[string]any{}
	for _, t := range s.Tables {
		idx[t.Name] = t
	}
	for _, st := range s.Structs {
		idx[st.Name] = st
	}
	for _, e := range s.Enums {
		idx[e.Name] = e
	}
	for _, u := range s.Unions {
		idx[u.Name] = u
	}
	s.byName = idx
	return idx
}

// FindTable resolves a table by name.
func (s *FbsSchema) FindTable(name string) (*TableDef, bool) {
	v, ok := s.index()[name]
	if !ok {
		return nil, false
	}
	t, ok := v.(*TableDef)
	return t, ok
}

// FindStruct resolves a struct by name.
func (s *FbsSchema) FindStruct(name string) (*StructDef, bool) {
	v, ok := s.index()[name]
	if !ok {
		return nil, false
	}
	st, ok := v.(*StructDef)
	return st, ok
}

// FindEnum resolves an enum by name.
func (s *FbsSchema) FindEnum(name string) (*EnumDef, bool) {
	v, ok := s.index()[name]
	if !ok {
		return nil, false
	}
	e, ok := v.(*EnumDef)
	return e, ok
}

// FindUnion resolves a union by name.
func (s *FbsSchema) FindUnion(name string) (*UnionDef, bool) {
	v, ok := s.index()[name]
	if !ok {
		return nil, false
	}
	u, ok := v.(*UnionDef)
	return u, ok
}

// Validate checks the schema invariants: root_type names an existing
// table, struct fields are fixed-size (no vectors or tables), and enum
// values are unique.
func (s *FbsSchema) Validate() error {
	if s.RootType != "" {
		if _, ok := s.FindTable(s.RootType); !ok {
			return fmt.Errorf("root_type %q does not name a declared table", s.RootType)
		}
	}
	for _, st := range s.Structs {
		for _, f := range st.Fields {
			if f.Type.Kind == KindVector {
				return fmt.Errorf("struct %s: field %q: struct fields cannot be vectors", st.Name, f.Name)
			}
			if f.Type.Kind == KindUser {
				if _, ok := s.FindTable(f.Type.UserType); ok {
					return fmt.Errorf("struct %s: field %q: struct fields cannot reference a table", st.Name, f.Name)
				}
			}
		}
	}
	for _, e := range s.Enums {
		seen := map[int64]bool{}
		for _, v := range e.Values {
			if seen[v.Value] {
				return fmt.Errorf("enum %s: duplicate value %d", e.Name, v.Value)
			}
			seen[v.Value] = true
		}
	}
	return nil
}
