package flatbuffers

import "github.com/lutaml/unibuf-go/fbsschema"

// fieldKind distinguishes how a field's value is stored: inline (scalar or
// fixed-size struct) versus out-of-line via a uoffset (string, vector, or
// table reference).
type fieldKind int

const (
	fkScalar fieldKind = iota
	fkString
	fkTable
	fkStruct
	fkVector
)

func classifyField(f *fbsschema.FieldDef, schema *fbsschema.FbsSchema) fieldKind {
	switch f.Type.Kind {
	case fbsschema.KindVector:
		return fkVector
	case fbsschema.KindScalar:
		if f.Type.ScalarName == "string" {
			return fkString
		}
		return fkScalar
	case fbsschema.KindUser:
		if _, ok := schema.FindTable(f.Type.UserType); ok {
			return fkTable
		}
		if _, ok := schema.FindStruct(f.Type.UserType); ok {
			return fkStruct
		}
		return fkScalar // enum, stored as its underlying scalar
	}
	return fkScalar
}

// scalarSize returns the byte width of a scalar type name, defaulting to 4
// (the width of "int"/"uint"/"float") for unrecognized names.
func scalarSize(name string) int {
	if n, ok := fbsschema.ScalarTypes[name]; ok {
		return n
	}
	return 4
}

// enumUnderlyingSize returns the byte width of an enum's declared underlying
// type, defaulting to 4 when unspecified.
func enumUnderlyingSize(e *fbsschema.EnumDef) int {
	if e.Underlying == "" {
		return 4
	}
	return scalarSize(e.Underlying)
}

// fieldSize returns the inline byte width a field occupies: its own stride
// for scalars/enums, 4 (a uoffset) for strings/tables/vectors, or the
// recursive fixed size of a nested struct.
func fieldSize(f *fbsschema.FieldDef, schema *fbsschema.FbsSchema) int {
	switch classifyField(f, schema) {
	case fkString, fkTable, fkVector:
		return 4
	case fkStruct:
		st, ok := schema.FindStruct(f.Type.UserType)
		if !ok {
			return 0
		}
		return structSize(st, schema)
	default:
		if f.Type.Kind == fbsschema.KindUser {
			if en, ok := schema.FindEnum(f.Type.UserType); ok {
				return enumUnderlyingSize(en)
			}
		}
		return scalarSize(f.Type.ScalarName)
	}
}

// structSize returns the total inline byte size of a FlatBuffers struct:
// the sum of its fields' fixed widths, in declaration order.
func structSize(st *fbsschema.StructDef, schema *fbsschema.FbsSchema) int {
	total := 0
	for _, f := range st.Fields {
		total += fieldSize(f, schema)
	}
	return total
}

// vectorElementStride returns the per-element byte width of a vector: a
// uoffset (4) for strings/tables, the recursive struct size for inline
// struct elements, or the scalar/enum width otherwise.
func vectorElementStride(elem fbsschema.FieldType, schema *fbsschema.FbsSchema) int {
	synthetic := &fbsschema.FieldDef{Type: elem}
	return fieldSize(synthetic, schema)
}
