package value_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf-go/value"
)

func TestMessageDuplicateFields(t *testing.T) {
	m := value.NewMessage()
	m.Append("subsets", value.NewString("latin"))
	m.Append("subsets", value.NewString("cyrillic"))

	matches := m.FindFields("subsets")
	require.Len(t, matches, 2)
	assert.Equal(t, "latin", matches[0].Value.String())
	assert.Equal(t, "cyrillic", matches[1].Value.String())
	assert.Equal(t, []string{"subsets"}, m.FieldNames())
	assert.Equal(t, 2, m.FieldCount())
}

func TestMessageEqualIsOrderSensitive(t *testing.T) {
	a := value.NewMessage()
	a.Append("x", value.NewInt(1))
	a.Append("y", value.NewInt(2))

	b := value.NewMessage()
	b.Append("y", value.NewInt(2))
	b.Append("x", value.NewInt(1))

	assert.False(t, a.Equal(b), "field order must matter for structural equality")

	c := value.NewMessage()
	c.Append("x", value.NewInt(1))
	c.Append("y", value.NewInt(2))
	assert.True(t, a.Equal(c))
}

func TestNewMapRejectsNonScalarKey(t *testing.T) {
	_, err := value.NewMap(value.NewMessageValue(value.NewMessage()), value.NewString("v"))
	require.Error(t, err)
}

func TestToHCollapsesRepeatedFields(t *testing.T) {
	m := value.NewMessage()
	m.Append("name", value.NewString("Alice"))
	m.Append("tag", value.NewString("a"))
	m.Append("tag", value.NewString("b"))

	h := m.ToH()
	assert.Equal(t, "Alice", h["name"])
	assert.Equal(t, []any{"a", "b"}, h["tag"])
}

func TestNativeTreeStructuralDiff(t *testing.T) {
	a := value.NewMessage()
	a.Append("name", value.NewString("Alice"))
	a.Append("age", value.NewInt(30))

	b := value.NewMessage()
	b.Append("name", value.NewString("Alice"))
	b.Append("age", value.NewInt(31))

	if diff := cmp.Diff(a.ToH(), b.ToH()); diff == "" {
		t.Fatal("expected a structural difference between the two trees")
	}

	c := value.NewMessage()
	c.Append("name", value.NewString("Alice"))
	c.Append("age", value.NewInt(30))
	assert.Empty(t, cmp.Diff(a.ToH(), c.ToH()))
}
