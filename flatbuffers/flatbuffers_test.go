package flatbuffers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf-go/fbsschema"
	"github.com/lutaml/unibuf-go/flatbuffers"
	"github.com/lutaml/unibuf-go/value"
)

func TestParseSchemaBasics(t *testing.T) {
	src := []byte(`
namespace example;

enum Color:byte { Red = 0, Green, Blue }

struct Vec3 {
  x: float;
  y: float;
  z: float;
}

table Monster {
  pos: Vec3;
  name: string;
  hp: short = 100;
  color: Color = Blue;
  inventory: [ubyte];
  friends: [string];
}

root_type Monster;
`)
	schema, err := flatbuffers.ParseSchema("test.fbs", src, nil)
	require.NoError(t, err)
	assert.Equal(t, "example", schema.Namespace)
	assert.Equal(t, "Monster", schema.RootType)

	monster, ok := schema.FindTable("Monster")
	require.True(t, ok)
	assert.Len(t, monster.Fields, 6)

	color, ok := schema.FindEnum("Color")
	require.True(t, ok)
	require.Len(t, color.Values, 3)
	assert.Equal(t, int64(0), color.Values[0].Value)
	assert.Equal(t, int64(1), color.Values[1].Value)
	assert.Equal(t, int64(2), color.Values[2].Value)
}

func monsterSchema() *fbsschema.FbsSchema {
	return &fbsschema.FbsSchema{
		RootType: "Monster",
		Structs: []*fbsschema.StructDef{
			{
				Name: "Vec3",
				Fields: []*fbsschema.FieldDef{
					{Name: "x", Type: fbsschema.FieldType{Kind: fbsschema.KindScalar, ScalarName: "float"}},
					{Name: "y", Type: fbsschema.FieldType{Kind: fbsschema.KindScalar, ScalarName: "float"}},
				},
			},
		},
		Tables: []*fbsschema.TableDef{
			{
				Name: "Monster",
				Fields: []*fbsschema.FieldDef{
					{Name: "pos", Type: fbsschema.FieldType{Kind: fbsschema.KindUser, UserType: "Vec3"}},
					{Name: "name", Type: fbsschema.FieldType{Kind: fbsschema.KindScalar, ScalarName: "string"}},
					{Name: "hp", Type: fbsschema.FieldType{Kind: fbsschema.KindScalar, ScalarName: "short"}},
					{Name: "color", Type: fbsschema.FieldType{Kind: fbsschema.KindUser, UserType: "Color"}},
					{Name: "friends", Type: fbsschema.FieldType{Kind: fbsschema.KindVector, ElementType: &fbsschema.FieldType{Kind: fbsschema.KindScalar, ScalarName: "string"}}},
				},
			},
		},
		Enums: []*fbsschema.EnumDef{
			{Name: "Color", Underlying: "byte", Values: []fbsschema.EnumValue{{Name: "Red", Value: 0}, {Name: "Green", Value: 1}, {Name: "Blue", Value: 2}}},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	schema := monsterSchema()

	pos := value.NewMessage()
	pos.Append("x", value.NewFloat(1.5))
	pos.Append("y", value.NewFloat(2.5))

	m := value.NewMessage()
	m.Append("pos", value.NewMessageValue(pos))
	m.Append("name", value.NewString("Orc"))
	m.Append("hp", value.NewInt(80))
	m.Append("color", value.NewString("Green"))
	m.Append("friends", value.NewList([]value.Value{value.NewString("Grom"), value.NewString("Thrall")}))

	data, err := flatbuffers.Encode(m, schema, "Monster")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := flatbuffers.Decode(data, schema, "Monster")
	require.NoError(t, err)

	f, ok := decoded.FindField("name")
	require.True(t, ok)
	assert.Equal(t, "Orc", f.Value.String())

	f, ok = decoded.FindField("hp")
	require.True(t, ok)
	assert.Equal(t, int64(80), f.Value.Int())

	f, ok = decoded.FindField("color")
	require.True(t, ok)
	assert.Equal(t, "Green", f.Value.String())

	f, ok = decoded.FindField("pos")
	require.True(t, ok)
	xf, ok := f.Value.Message().FindField("x")
	require.True(t, ok)
	assert.InDelta(t, 1.5, xf.Value.Float(), 0.0001)

	f, ok = decoded.FindField("friends")
	require.True(t, ok)
	require.Len(t, f.Value.List(), 2)
	assert.Equal(t, "Grom", f.Value.List()[0].String())
}

func TestDecodeTooShortIsError(t *testing.T) {
	schema := monsterSchema()
	_, err := flatbuffers.Decode([]byte{1, 2}, schema, "Monster")
	require.Error(t, err)
}

func TestUnknownRootTypeIsError(t *testing.T) {
	schema := monsterSchema()
	_, err := flatbuffers.Decode([]byte{0, 0, 0, 0}, schema, "NoSuchType")
	require.Error(t, err)
}
