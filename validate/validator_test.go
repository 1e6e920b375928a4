package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf-go/protoschema"
	"github.com/lutaml/unibuf-go/validate"
	"github.com/lutaml/unibuf-go/value"
)

func personSchema() *protoschema.Schema {
	return &protoschema.Schema{
		Messages: []*protoschema.MessageDef{
			{
				Name: "Person",
				Fields: []*protoschema.FieldDef{
					{Name: "name", Type: "string", Number: 1},
					{Name: "age", Type: "int32", Number: 2},
					{Name: "active", Type: "bool", Number: 3},
					{Name: "role", Type: "Role", Number: 4},
					{Name: "address", Type: "Address", Number: 5},
				},
			},
			{
				Name: "Address",
				Fields: []*protoschema.FieldDef{
					{Name: "city", Type: "string", Number: 1, Label: "required"},
				},
			},
		},
		Enums: []*protoschema.EnumDef{
			{Name: "Role", Values: []protoschema.EnumValue{{Name: "ADMIN", Number: 0}, {Name: "USER", Number: 1}}},
		},
	}
}

func TestValidateAcceptsWellFormedMessage(t *testing.T) {
	schema := personSchema()

	addr := value.NewMessage()
	addr.Append("city", value.NewString("Boston"))

	m := value.NewMessage()
	m.Append("name", value.NewString("Alice"))
	m.Append("age", value.NewInt(30))
	m.Append("active", value.NewBool(true))
	m.Append("role", value.NewString("ADMIN"))
	m.Append("address", value.NewMessageValue(addr))

	issues := validate.Validate(m, schema, "Person")
	assert.Empty(t, issues)
}

func TestValidateFlagsUnknownField(t *testing.T) {
	schema := personSchema()
	m := value.NewMessage()
	m.Append("nickname", value.NewString("Al"))

	issues := validate.Validate(m, schema, "Person")
	require.Len(t, issues, 1)
	assert.Equal(t, "unknown_field", issues[0].Kind)
}

func TestValidateRangeChecksIntegers(t *testing.T) {
	schema := personSchema()
	m := value.NewMessage()
	m.Append("age", value.NewInt(1<<40))

	issues := validate.Validate(m, schema, "Person")
	require.Len(t, issues, 1)
	assert.Equal(t, "type_error", issues[0].Kind)
}

func TestValidateRejectsWrongKind(t *testing.T) {
	schema := personSchema()
	m := value.NewMessage()
	m.Append("name", value.NewInt(5))

	issues := validate.Validate(m, schema, "Person")
	require.Len(t, issues, 1)
	assert.Equal(t, "type_error", issues[0].Kind)
}

func TestValidateRejectsUnknownEnumName(t *testing.T) {
	schema := personSchema()
	m := value.NewMessage()
	m.Append("role", value.NewString("SUPERUSER"))

	issues := validate.Validate(m, schema, "Person")
	require.Len(t, issues, 1)
	assert.Equal(t, "type_error", issues[0].Kind)
}

func TestValidateRecursesIntoNestedMessage(t *testing.T) {
	schema := personSchema()
	addr := value.NewMessage()
	addr.Append("town", value.NewString("Boston")) // wrong field name

	m := value.NewMessage()
	m.Append("address", value.NewMessageValue(addr))

	issues := validate.Validate(m, schema, "Person")
	require.Len(t, issues, 2) // unknown field "town" + missing required "city"
}

func TestValidateMissingRequiredField(t *testing.T) {
	schema := personSchema()
	addr := value.NewMessage()

	found := false
	for _, issue := range validate.Validate(addr, schema, "Address") {
		if issue.Kind == "missing_required" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateUnknownMessageType(t *testing.T) {
	schema := personSchema()
	m := value.NewMessage()
	issues := validate.Validate(m, schema, "NoSuchMessage")
	require.Len(t, issues, 1)
	assert.Equal(t, "unknown_field", issues[0].Kind)
}
