package capnpschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf-go/capnpschema"
)

func TestValidateRequiresFileID(t *testing.T) {
	s := &capnpschema.Schema{}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file id")
}

func TestValidateRejectsDuplicateOrdinals(t *testing.T) {
	s := &capnpschema.Schema{
		FileID: "0x1",
		Structs: []*capnpschema.StructDef{
			{
				Name: "Point",
				Fields: []*capnpschema.FieldDef{
					{Name: "x", Ordinal: 0, Type: capnpschema.FieldType{Kind: capnpschema.KindPrimitive, Primitive: capnpschema.Int32}},
					{Name: "y", Ordinal: 0, Type: capnpschema.FieldType{Kind: capnpschema.KindPrimitive, Primitive: capnpschema.Int32}},
				},
			},
		},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate ordinal")
}

func TestValidateRejectsUndersizedUnion(t *testing.T) {
	s := &capnpschema.Schema{
		FileID: "0x1",
		Structs: []*capnpschema.StructDef{
			{
				Name: "Shape",
				Unions: []*capnpschema.UnionDef{
					{Fields: []*capnpschema.FieldDef{{Name: "radius", Ordinal: 0, Type: capnpschema.FieldType{Kind: capnpschema.KindPrimitive, Primitive: capnpschema.Float64}}}},
				},
			},
		},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "union")
}

func TestFindStructAndEnumResolveNestedDeclarations(t *testing.T) {
	s := &capnpschema.Schema{
		FileID: "0x1",
		Structs: []*capnpschema.StructDef{
			{
				Name: "Outer",
				NestedStructs: []*capnpschema.StructDef{
					{Name: "Inner"},
				},
				NestedEnums: []*capnpschema.EnumDef{
					{Name: "Mode", Values: []capnpschema.EnumValue{{Name: "A", Ordinal: 0}}},
				},
			},
		},
	}

	_, ok := s.FindStruct("Outer")
	require.True(t, ok)

	_, ok = s.FindStruct("Inner")
	require.True(t, ok)

	_, ok = s.FindEnum("Mode")
	require.True(t, ok)

	_, ok = s.FindStruct("NoSuchStruct")
	assert.False(t, ok)
}

func TestAllFieldsFlattensUnionsAndGroups(t *testing.T) {
	st := &capnpschema.StructDef{
		Name: "Message",
		Fields: []*capnpschema.FieldDef{
			{Name: "id", Ordinal: 0},
		},
		Unions: []*capnpschema.UnionDef{
			{Fields: []*capnpschema.FieldDef{{Name: "a", Ordinal: 1}, {Name: "b", Ordinal: 2}}},
		},
		Groups: []*capnpschema.GroupDef{
			{Name: "g", Ordinal: 3, Fields: []*capnpschema.FieldDef{{Name: "c", Ordinal: 4}}},
		},
	}

	all := st.AllFields()
	require.Len(t, all, 4)
	assert.Equal(t, "id", all[0].Name)
	assert.Equal(t, "c", all[3].Name)
}

func TestIsPrimitiveName(t *testing.T) {
	assert.True(t, capnpschema.IsPrimitiveName("UInt32"))
	assert.True(t, capnpschema.IsPrimitiveName("Text"))
	assert.False(t, capnpschema.IsPrimitiveName("Frobnicate"))
}
