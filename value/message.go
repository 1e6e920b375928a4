package value

import (
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Field is one entry in a Message's ordered field sequence. Repeated proto
// fields appear as multiple Field entries sharing the same Name; map fields
// set IsMap and carry a KindMap Value.
type Field struct {
	Name  string
	Value Value
	IsMap bool
}

// Message is an ordered, duplicate-permitting sequence of fields. Order is
// insertion order and is significant: Equal and every round-trip invariant
// in this module are order-sensitive.
type Message struct {
	fields []Field
}

// NewMessage builds an empty Message.
func NewMessage() *Message {
	return &Message{}
}

// Append adds a field to the end of the message's field sequence.
func (m *Message) Append(name string, v Value) {
	m.fields = append(m.fields, Field{Name: name, Value: v})
}

// AppendMap adds a map-typed field to the end of the field sequence.
func (m *Message) AppendMap(name string, v Value) {
	m.fields = append(m.fields, Field{Name: name, Value: v, IsMap: true})
}

// Fields returns the ordered field sequence. The returned slice is owned by
// Message and must not be mutated.
func (m *Message) Fields() []Field {
	return m.fields
}

// FieldCount returns the number of fields, including duplicates.
func (m *Message) FieldCount() int {
	return len(m.fields)
}

// FindField returns the first field named name, and whether it was found.
func (m *Message) FindField(name string) (Field, bool) {
	for _, f := range m.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FindFields returns every field named name, in order. Used for repeated
// fields, where a name may appear more than once.
func (m *Message) FindFields(name string) []Field {
	var out []Field
	for _, f := range m.fields {
		if f.Name == name {
			out = append(out, f)
		}
	}
	return out
}

// FieldNames returns each distinct field name, in first-seen order.
func (m *Message) FieldNames() []string {
	seen := make(map[string]struct{}, len(m.fields))
	var out []string
	for _, f := range m.fields {
		if _, ok := seen[f.Name]; ok {
			continue
		}
		seen[f.Name] = struct{}{}
		out = append(out, f.Name)
	}
	return out
}

// Equal reports whether m and other hold the same fields in the same order.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.fields) != len(other.fields) {
		return false
	}
	for i := range m.fields {
		a, b := m.fields[i], other.fields[i]
		if a.Name != b.Name || a.IsMap != b.IsMap || !a.Value.Equal(b.Value) {
			return false
		}
	}
	return true
}

// ToH renders the message as a plain map[string]any. Repeated fields with
// the same name collapse into a single key holding a list, matching typical
// JSON/YAML rendering of repeated proto fields; a lone occurrence stays
// scalar. Map fields collapse into a nested object keyed by their entries'
// key.
func (m *Message) ToH() map[string]any {
	out := make(map[string]any, len(m.FieldNames()))
	for _, name := range m.FieldNames() {
		matches := m.FindFields(name)
		if matches[0].IsMap {
			entries := make(map[string]any, len(matches))
			for _, f := range matches {
				me := f.Value.MapEntry()
				entries[scalarKeyString(me.Key)] = me.Value.Native()
			}
			out[name] = entries
			continue
		}
		if len(matches) == 1 {
			out[name] = matches[0].Value.Native()
			continue
		}
		list := make([]any, len(matches))
		for i, f := range matches {
			list[i] = f.Value.Native()
		}
		out[name] = list
	}
	return out
}

func scalarKeyString(v Value) string {
	switch v.Kind() {
	case KindString:
		return v.String()
	case KindInt:
		return strconv.FormatInt(v.Int(), 10)
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// ToJSON renders the message as JSON text.
func (m *Message) ToJSON() (string, error) {
	b, err := json.MarshalIndent(m.ToH(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToYAML renders the message as YAML text, using gopkg.in/yaml.v3 so that
// key ordering and scalar styling match the rest of the ecosystem.
func (m *Message) ToYAML() (string, error) {
	b, err := yaml.Marshal(m.ToH())
	if err != nil {
		return "", err
	}
	return string(b), nil
}
