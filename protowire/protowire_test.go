package protowire_test

import (
	"testing"

	googlewire "google.golang.org/protobuf/encoding/protowire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf-go/protoschema"
	"github.com/lutaml/unibuf-go/protowire"
	"github.com/lutaml/unibuf-go/value"
)

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<64 - 1}
	for _, n := range cases {
		buf := protowire.AppendVarint(nil, n)
		got, size := protowire.ConsumeVarint(buf)
		require.NotZero(t, size)
		assert.Equal(t, n, got)
	}
}

func TestVarintExactEncodings(t *testing.T) {
	assert.Equal(t, []byte{0x00}, protowire.AppendVarint(nil, 0))
	assert.Equal(t, 1, protowire.SizeVarint(127))
	assert.Equal(t, []byte{0xAC, 0x02}, protowire.AppendVarint(nil, 300))
}

// TestVarintMatchesGoogleProtobuf cross-checks the hand-written varint codec
// against google.golang.org/protobuf/encoding/protowire as a conformance
// oracle, per SPEC_FULL's domain-stack wiring notes. This is the only place
// that dependency is used; the production codec path never calls it.
func TestVarintMatchesGoogleProtobuf(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 16384, 1 << 40}
	for _, n := range cases {
		ours := protowire.AppendVarint(nil, n)
		theirs := googlewire.AppendVarint(nil, n)
		assert.Equal(t, theirs, ours)
	}
}

func TestZigZag(t *testing.T) {
	assert.Equal(t, uint64(0), protowire.EncodeZigZag64(0))
	assert.Equal(t, uint64(1), protowire.EncodeZigZag64(-1))
	assert.Equal(t, uint64(2), protowire.EncodeZigZag64(1))
	assert.Equal(t, uint64(3), protowire.EncodeZigZag64(-2))

	for _, n := range []int64{0, 1, -1, 2, -2, 1 << 40, -(1 << 40)} {
		assert.Equal(t, n, protowire.DecodeZigZag64(protowire.EncodeZigZag64(n)))
	}
}

func TestTagEncoding(t *testing.T) {
	// field 150, varint type: tag = 150<<3 | 0 = 1200 = 0xB0 0x09 as a varint.
	tag := protowire.EncodeTag(150, protowire.TypeVarint)
	buf := protowire.AppendVarint(nil, tag)
	assert.Equal(t, []byte{0xB0, 0x09}, buf)

	fn, wt := protowire.DecodeTag(tag)
	assert.Equal(t, uint32(150), fn)
	assert.Equal(t, protowire.TypeVarint, wt)
}

func personSchema(t *testing.T) *protoschema.Schema {
	t.Helper()
	return &protoschema.Schema{
		Syntax: "proto3",
		Messages: []*protoschema.MessageDef{
			{
				Name: "Person",
				Fields: []*protoschema.FieldDef{
					{Name: "name", Type: "string", Number: 1},
					{Name: "age", Type: "int32", Number: 2},
					{Name: "active", Type: "bool", Number: 3},
				},
			},
		},
	}
}

func TestEncodeDecodeRoundTripSimple(t *testing.T) {
	schema := personSchema(t)
	m := value.NewMessage()
	m.Append("name", value.NewString("Alice"))
	m.Append("age", value.NewInt(30))
	m.Append("active", value.NewBool(true))

	buf, err := protowire.Encode(m, schema, "Person")
	require.NoError(t, err)

	// field 1 string "Alice": tag 0x0A, len 5, bytes
	assert.Equal(t, byte(0x0A), buf[0])
	assert.Equal(t, byte(5), buf[1])
	assert.Equal(t, "Alice", string(buf[2:7]))

	decoded, err := protowire.Decode(buf, schema, "Person")
	require.NoError(t, err)
	assert.True(t, m.Equal(decoded))
}

func TestLengthPrefixHelloFieldOne(t *testing.T) {
	schema := &protoschema.Schema{Messages: []*protoschema.MessageDef{
		{Name: "M", Fields: []*protoschema.FieldDef{{Name: "s", Type: "string", Number: 1}}},
	}}
	m := value.NewMessage()
	m.Append("s", value.NewString("hello"))
	buf, err := protowire.Encode(m, schema, "M")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0A, 0x05, 'h', 'e', 'l', 'l', 'o'}, buf)
}

func TestNestedEmbeddedMessage(t *testing.T) {
	schema := &protoschema.Schema{Messages: []*protoschema.MessageDef{
		{Name: "Address", Fields: []*protoschema.FieldDef{{Name: "city", Type: "string", Number: 1}}},
		{Name: "Person", Fields: []*protoschema.FieldDef{
			{Name: "name", Type: "string", Number: 1},
			{Name: "address", Type: "Address", Number: 2},
		}},
	}}

	addr := value.NewMessage()
	addr.Append("city", value.NewString("SF"))
	m := value.NewMessage()
	m.Append("name", value.NewString("Bob"))
	m.Append("address", value.NewMessageValue(addr))

	buf, err := protowire.Encode(m, schema, "Person")
	require.NoError(t, err)

	decoded, err := protowire.Decode(buf, schema, "Person")
	require.NoError(t, err)
	assert.True(t, m.Equal(decoded))
}

func TestUnknownFieldsAreSkippedNotErrored(t *testing.T) {
	schema := &protoschema.Schema{Messages: []*protoschema.MessageDef{
		{Name: "M", Fields: []*protoschema.FieldDef{{Name: "a", Type: "int32", Number: 1}}},
	}}
	// field 5 (unknown), varint value 42, then field 1 = 7
	var buf []byte
	buf = protowire.AppendVarint(buf, protowire.EncodeTag(5, protowire.TypeVarint))
	buf = protowire.AppendVarint(buf, 42)
	buf = protowire.AppendVarint(buf, protowire.EncodeTag(1, protowire.TypeVarint))
	buf = protowire.AppendVarint(buf, 7)

	decoded, err := protowire.Decode(buf, schema, "M")
	require.NoError(t, err)
	f, ok := decoded.FindField("a")
	require.True(t, ok)
	assert.Equal(t, int64(7), f.Value.Int())
}

func TestEmptyInputIsArgumentError(t *testing.T) {
	schema := personSchema(t)
	_, err := protowire.Decode(nil, schema, "Person")
	require.Error(t, err)
}

func TestUnknownRootTypeIsError(t *testing.T) {
	schema := personSchema(t)
	_, err := protowire.Decode([]byte{0x00}, schema, "NoSuchType")
	require.Error(t, err)

	m := value.NewMessage()
	_, err = protowire.Encode(m, schema, "NoSuchType")
	require.Error(t, err)
}

func TestMapFieldRoundTrip(t *testing.T) {
	schema := &protoschema.Schema{Messages: []*protoschema.MessageDef{
		{Name: "M", Fields: []*protoschema.FieldDef{
			{Name: "labels", Type: "map", Number: 1, KeyType: "string", ValueType: "string"},
		}},
	}}
	m := value.NewMessage()
	e1, err := value.NewMap(value.NewString("env"), value.NewString("prod"))
	require.NoError(t, err)
	m.AppendMap("labels", e1)

	buf, err := protowire.Encode(m, schema, "M")
	require.NoError(t, err)

	decoded, err := protowire.Decode(buf, schema, "M")
	require.NoError(t, err)
	f, ok := decoded.FindField("labels")
	require.True(t, ok)
	assert.True(t, f.IsMap)
	assert.Equal(t, "env", f.Value.MapEntry().Key.String())
	assert.Equal(t, "prod", f.Value.MapEntry().Value.String())
}
