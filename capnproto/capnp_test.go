package capnproto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf-go/capnproto"
	"github.com/lutaml/unibuf-go/capnpschema"
	"github.com/lutaml/unibuf-go/value"
)

func TestParseSchemaBasics(t *testing.T) {
	src := []byte(`
@0x9eb32e19f86ee174;

struct Address {
  city @0 :Text;
  zip @1 :UInt32;
}

enum Color {
  red @0;
  green @1;
  blue @2;
}

struct Person {
  name @0 :Text;
  age @1 :UInt16;
  active @2 :Bool;
  favoriteColor @3 :Color;
  address @4 :Address;
  nicknames @5 :List(Text);
}
`)
	schema, err := capnproto.ParseSchema("test.capnp", src, nil)
	require.NoError(t, err)
	assert.Equal(t, "0x9eb32e19f86ee174", schema.FileID)

	person, ok := schema.FindStruct("Person")
	require.True(t, ok)
	assert.Len(t, person.Fields, 6)

	color, ok := schema.FindEnum("Color")
	require.True(t, ok)
	assert.Len(t, color.Values, 3)
}

func personSchema() *capnpschema.Schema {
	return &capnpschema.Schema{
		FileID: "0x9eb32e19f86ee174",
		Structs: []*capnpschema.StructDef{
			{
				Name: "Address",
				Fields: []*capnpschema.FieldDef{
					{Name: "city", Ordinal: 0, Type: capnpschema.FieldType{Kind: capnpschema.KindPrimitive, Primitive: capnpschema.Text}},
				},
			},
			{
				Name: "Person",
				Fields: []*capnpschema.FieldDef{
					{Name: "name", Ordinal: 0, Type: capnpschema.FieldType{Kind: capnpschema.KindPrimitive, Primitive: capnpschema.Text}},
					{Name: "age", Ordinal: 1, Type: capnpschema.FieldType{Kind: capnpschema.KindPrimitive, Primitive: capnpschema.UInt16}},
					{Name: "active", Ordinal: 2, Type: capnpschema.FieldType{Kind: capnpschema.KindPrimitive, Primitive: capnpschema.Bool}},
					{Name: "favoriteColor", Ordinal: 3, Type: capnpschema.FieldType{Kind: capnpschema.KindUser, UserType: "Color"}},
					{Name: "address", Ordinal: 4, Type: capnpschema.FieldType{Kind: capnpschema.KindUser, UserType: "Address"}},
					{Name: "nicknames", Ordinal: 5, Type: capnpschema.FieldType{Kind: capnpschema.KindList, ElementType: &capnpschema.FieldType{Kind: capnpschema.KindPrimitive, Primitive: capnpschema.Text}}},
				},
			},
		},
		Enums: []*capnpschema.EnumDef{
			{Name: "Color", Values: []capnpschema.EnumValue{{Name: "red", Ordinal: 0}, {Name: "green", Ordinal: 1}, {Name: "blue", Ordinal: 2}}},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	schema := personSchema()

	addr := value.NewMessage()
	addr.Append("city", value.NewString("Springfield"))

	m := value.NewMessage()
	m.Append("name", value.NewString("Homer"))
	m.Append("age", value.NewInt(39))
	m.Append("active", value.NewBool(true))
	m.Append("favoriteColor", value.NewString("blue"))
	m.Append("address", value.NewMessageValue(addr))
	m.Append("nicknames", value.NewList([]value.Value{value.NewString("Homie"), value.NewString("Mr. Simpson")}))

	data, err := capnproto.Encode(m, schema, "Person")
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := capnproto.Decode(data, schema, "Person")
	require.NoError(t, err)

	f, ok := decoded.FindField("name")
	require.True(t, ok)
	assert.Equal(t, "Homer", f.Value.String())

	f, ok = decoded.FindField("age")
	require.True(t, ok)
	assert.Equal(t, int64(39), f.Value.Int())

	f, ok = decoded.FindField("favoriteColor")
	require.True(t, ok)
	assert.Equal(t, "blue", f.Value.String())

	f, ok = decoded.FindField("address")
	require.True(t, ok)
	cf, ok := f.Value.Message().FindField("city")
	require.True(t, ok)
	assert.Equal(t, "Springfield", cf.Value.String())

	f, ok = decoded.FindField("nicknames")
	require.True(t, ok)
	require.Len(t, f.Value.List(), 2)
	assert.Equal(t, "Homie", f.Value.List()[0].String())
}

func TestDecodeEmptyInputIsError(t *testing.T) {
	schema := personSchema()
	_, err := capnproto.Decode(nil, schema, "Person")
	require.Error(t, err)
}

func TestUnknownRootTypeIsError(t *testing.T) {
	schema := personSchema()
	_, err := capnproto.Decode([]byte{0, 0, 0, 0, 0, 0, 0, 0}, schema, "NoSuchType")
	require.Error(t, err)
}
