package fbsschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf-go/fbsschema"
)

func TestValidateRejectsUnknownRootType(t *testing.T) {
	s := &fbsschema.FbsSchema{RootType: "Ghost"}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root_type")
}

func TestValidateRejectsVectorStructField(t *testing.T) {
	s := &fbsschema.FbsSchema{
		Structs: []*fbsschema.StructDef{
			{
				Name: "Bad",
				Fields: []*fbsschema.FieldDef{
					{Name: "items", Type: fbsschema.FieldType{Kind: fbsschema.KindVector, ElementType: &fbsschema.FieldType{Kind: fbsschema.KindScalar, ScalarName: "int"}}},
				},
			},
		},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vectors")
}

func TestValidateRejectsStructFieldReferencingTable(t *testing.T) {
	s := &fbsschema.FbsSchema{
		Tables: []*fbsschema.TableDef{{Name: "Inner"}},
		Structs: []*fbsschema.StructDef{
			{
				Name: "Bad",
				Fields: []*fbsschema.FieldDef{
					{Name: "inner", Type: fbsschema.FieldType{Kind: fbsschema.KindUser, UserType: "Inner"}},
				},
			},
		},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table")
}

func TestValidateRejectsDuplicateEnumValue(t *testing.T) {
	s := &fbsschema.FbsSchema{
		Enums: []*fbsschema.EnumDef{
			{Name: "Color", Values: []fbsschema.EnumValue{{Name: "Red", Value: 0}, {Name: "AlsoRed", Value: 0}}},
		},
	}
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate value")
}

func TestFindHelpersResolveEachDeclarationKind(t *testing.T) {
	s := &fbsschema.FbsSchema{
		RootType: "Monster",
		Tables:   []*fbsschema.TableDef{{Name: "Monster"}},
		Structs:  []*fbsschema.StructDef{{Name: "Vec3"}},
		Enums:    []*fbsschema.EnumDef{{Name: "Color", Values: []fbsschema.EnumValue{{Name: "Red", Value: 0}}}},
		Unions:   []*fbsschema.UnionDef{{Name: "AnyItem", Members: []string{"Monster"}}},
	}
	require.NoError(t, s.Validate())

	_, ok := s.FindTable("Monster")
	assert.True(t, ok)
	_, ok = s.FindStruct("Vec3")
	assert.True(t, ok)
	_, ok = s.FindEnum("Color")
	assert.True(t, ok)
	_, ok = s.FindUnion("AnyItem")
	assert.True(t, ok)
	_, ok = s.FindTable("NoSuchTable")
	assert.False(t, ok)
}

func TestEnumValueByNameAndNameByValue(t *testing.T) {
	e := &fbsschema.EnumDef{Name: "Color", Values: []fbsschema.EnumValue{{Name: "Red", Value: 0}, {Name: "Green", Value: 1}}}

	v, ok := e.ValueByName("Green")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)

	name, ok := e.NameByValue(0)
	require.True(t, ok)
	assert.Equal(t, "Red", name)

	_, ok = e.ValueByName("Blue")
	assert.False(t, ok)
}
