package proto3_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf-go/proto3"
)

func TestParseSimpleMessage(t *testing.T) {
	src := `
syntax = "proto3";
package example.v1;

message Person {
  string name = 1;
  int32 age = 2;
  bool active = 3;
}
`
	schema, err := proto3.Parse("person.proto", []byte(src), nil)
	require.NoError(t, err)
	assert.Equal(t, "proto3", schema.Syntax)
	assert.Equal(t, "example.v1", schema.Package)
	require.Len(t, schema.Messages, 1)

	person := schema.Messages[0]
	assert.Equal(t, "Person", person.Name)
	require.Len(t, person.Fields, 3)
	assert.Equal(t, "name", person.Fields[0].Name)
	assert.Equal(t, "string", person.Fields[0].Type)
	assert.Equal(t, uint32(1), person.Fields[0].Number)
	assert.Equal(t, "age", person.Fields[1].Name)
	assert.Equal(t, "int32", person.Fields[1].Type)
}

func TestParseNestedMessageAndMap(t *testing.T) {
	src := `
syntax = "proto3";

message Person {
  string name = 1;
  Address address = 2;
  map<string, string> labels = 3;

  message Address {
    string city = 1;
  }
}
`
	schema, err := proto3.Parse("nested.proto", []byte(src), nil)
	require.NoError(t, err)
	require.Len(t, schema.Messages, 1)

	person := schema.Messages[0]
	require.Len(t, person.NestedMessages, 1)
	assert.Equal(t, "Address", person.NestedMessages[0].Name)

	mapField := person.Fields[2]
	assert.True(t, mapField.IsMap())
	assert.Equal(t, "string", mapField.KeyType)
	assert.Equal(t, "string", mapField.ValueType)

	addr, ok := schema.FindMessage("Person.Address")
	require.True(t, ok)
	assert.Equal(t, "Address", addr.Name)
}

func TestParseEnum(t *testing.T) {
	src := `
syntax = "proto3";

enum Status {
  UNKNOWN = 0;
  ACTIVE = 1;
  DISABLED = 2;
}
`
	schema, err := proto3.Parse("enum.proto", []byte(src), nil)
	require.NoError(t, err)
	require.Len(t, schema.Enums, 1)
	status := schema.Enums[0]
	n, ok := status.ValueByName("ACTIVE")
	require.True(t, ok)
	assert.Equal(t, int32(1), n)
}

func TestParseRejectsDuplicateFieldNumbers(t *testing.T) {
	src := `
syntax = "proto3";
message Bad {
  string a = 1;
  string b = 1;
}
`
	_, err := proto3.Parse("bad.proto", []byte(src), nil)
	require.Error(t, err)
}

func TestParseRejectsNonProto3Syntax(t *testing.T) {
	src := `syntax = "proto2";`
	_, err := proto3.Parse("old.proto", []byte(src), nil)
	require.Error(t, err)
}
