package unibuf_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf-go/protoschema"
	"github.com/lutaml/unibuf-go/value"

	unibuf "github.com/lutaml/unibuf-go"
)

func TestParseTextproto(t *testing.T) {
	m, err := unibuf.ParseTextproto([]byte(`name: "Alice" age: 30`))
	require.NoError(t, err)

	f, ok := m.FindField("name")
	require.True(t, ok)
	assert.Equal(t, "Alice", f.Value.String())
}

func TestParseBinaryRoundTrip(t *testing.T) {
	schema := &protoschema.Schema{
		Messages: []*protoschema.MessageDef{
			{
				Name: "Greeting",
				Fields: []*protoschema.FieldDef{
					{Name: "text", Type: "string", Number: 1},
				},
			},
		},
	}

	m := value.NewMessage()
	m.Append("text", value.NewString("hello"))

	data, err := unibuf.SerializeBinary(m, schema, "Greeting")
	require.NoError(t, err)

	decoded, err := unibuf.ParseBinary(data, schema, "Greeting")
	require.NoError(t, err)
	f, ok := decoded.FindField("text")
	require.True(t, ok)
	assert.Equal(t, "hello", f.Value.String())
}

func TestParseRejectsSchemaFileExtensions(t *testing.T) {
	_, err := unibuf.Parse("weather.proto", nil, "")
	assert.Error(t, err)

	_, err = unibuf.Parse("weather.fbs", nil, "")
	assert.Error(t, err)
}

func TestParseBinpbRequiresSchema(t *testing.T) {
	_, err := unibuf.Parse("weather.binpb", nil, "Weather")
	assert.Error(t, err)
}

func TestParseDispatchesTextprotoByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "weather.txtpb")
	require.NoError(t, os.WriteFile(path, []byte(`city: "Boston"`), 0o644))

	m, err := unibuf.Parse(path, nil, "")
	require.NoError(t, err)
	f, ok := m.FindField("city")
	require.True(t, ok)
	assert.Equal(t, "Boston", f.Value.String())
}
