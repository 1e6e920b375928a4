package textproto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf-go/textproto"
	"github.com/lutaml/unibuf-go/value"
)

func TestParseDuplicateFields(t *testing.T) {
	src := "subsets: \"latin\"\nsubsets: \"cyrillic\"\n"
	m, err := textproto.Parse("t.txtpb", []byte(src), nil)
	require.NoError(t, err)

	matches := m.FindFields("subsets")
	require.Len(t, matches, 2)
	assert.Equal(t, "latin", matches[0].Value.String())
	assert.Equal(t, "cyrillic", matches[1].Value.String())

	out := textproto.Emit(m)
	assert.Contains(t, out, `subsets: "latin"`)
	assert.Contains(t, out, `subsets: "cyrillic"`)
}

func TestParseNestedMessage(t *testing.T) {
	src := `name: "Bob"
address {
  city: "SF"
}
`
	m, err := textproto.Parse("t.txtpb", []byte(src), nil)
	require.NoError(t, err)

	addrField, ok := m.FindField("address")
	require.True(t, ok)
	require.Equal(t, value.KindMessage, addrField.Value.Kind())
	city, ok := addrField.Value.Message().FindField("city")
	require.True(t, ok)
	assert.Equal(t, "SF", city.Value.String())

	assert.Equal(t, "name: \"Bob\"\naddress {\n  city: \"SF\"\n}\n", textproto.Emit(m))
}

func TestParseScalarList(t *testing.T) {
	src := `values: [-1.5, -42, 3.14]`
	m, err := textproto.Parse("t.txtpb", []byte(src), nil)
	require.NoError(t, err)

	f, ok := m.FindField("values")
	require.True(t, ok)
	list := f.Value.List()
	require.Len(t, list, 3)
	assert.InDelta(t, -1.5, list[0].Float(), 1e-9)
	assert.Equal(t, int64(-42), list[1].Int())
	assert.InDelta(t, 3.14, list[2].Float(), 1e-9)
}

func TestParseOctalAndHexIntegers(t *testing.T) {
	src := `hex: 0x1F
octal: 010
dec: 30`
	m, err := textproto.Parse("t.txtpb", []byte(src), nil)
	require.NoError(t, err)

	hex, ok := m.FindField("hex")
	require.True(t, ok)
	assert.Equal(t, int64(31), hex.Value.Int())

	octal, ok := m.FindField("octal")
	require.True(t, ok)
	assert.Equal(t, int64(8), octal.Value.Int())

	dec, ok := m.FindField("dec")
	require.True(t, ok)
	assert.Equal(t, int64(30), dec.Value.Int())
}

func TestAdjacentStringConcatenation(t *testing.T) {
	src := `greeting: "hello " "world"`
	m, err := textproto.Parse("t.txtpb", []byte(src), nil)
	require.NoError(t, err)

	f, ok := m.FindField("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello world", f.Value.String())
}

func TestBoolAndIdentifierScalars(t *testing.T) {
	src := `active: true
status: ACTIVE
`
	m, err := textproto.Parse("t.txtpb", []byte(src), nil)
	require.NoError(t, err)

	active, _ := m.FindField("active")
	assert.Equal(t, value.KindBool, active.Value.Kind())
	assert.True(t, active.Value.Bool())

	status, _ := m.FindField("status")
	assert.Equal(t, value.KindString, status.Value.Kind())
	assert.Equal(t, "ACTIVE", status.Value.String())
}

func TestRoundTripThroughEmit(t *testing.T) {
	src := "name: \"Alice\"\nage: 30\nactive: true\n"
	m, err := textproto.Parse("t.txtpb", []byte(src), nil)
	require.NoError(t, err)

	reparsed, err := textproto.Parse("t.txtpb", []byte(textproto.Emit(m)), nil)
	require.NoError(t, err)
	assert.True(t, m.Equal(reparsed))
}

func TestUnterminatedStringIsParseError(t *testing.T) {
	_, err := textproto.Parse("t.txtpb", []byte(`name: "unterminated`), nil)
	require.Error(t, err)
}
