// Package value defines the generic, schema-agnostic value tree that every
// grammar and codec in this module produces and consumes: scalars, nested
// messages, repeated lists, and maps.
package value

import "fmt"

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindMessage
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindMessage:
		return "message"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// Value is a tagged variant over every shape a field can hold: a scalar
// (string, int, float, bool, or null), a nested Message, an ordered List of
// Values, or a Map from a scalar key to a Value.
//
// Value is immutable once constructed; the New* constructors are the only
// way to build one, which keeps InvalidValueError checking in one place.
type Value struct {
	kind Kind

	str string
	i   int64
	f   float64
	b   bool

	msg  *Message
	list []Value
	m    *MapValue
}

// MapValue holds a single map entry's key and value. A map field is carried
// as repeated Field entries of the same name, one entry each (see NewMap),
// rather than a native Go map, so entry order is preserved.
type MapValue struct {
	Key   Value
	Value Value
}

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// Null is the absence of a value.
func Null() Value { return Value{kind: KindNull} }

// NewString wraps a string scalar.
func NewString(s string) Value { return Value{kind: KindString, str: s} }

// NewInt wraps a signed integer scalar.
func NewInt(i int64) Value { return Value{kind: KindInt, i: i} }

// NewFloat wraps a floating point scalar.
func NewFloat(f float64) Value { return Value{kind: KindFloat, f: f} }

// NewBool wraps a boolean scalar.
func NewBool(b bool) Value { return Value{kind: KindBool, b: b} }

// NewMessageValue wraps a nested Message as a Value.
func NewMessageValue(m *Message) Value { return Value{kind: KindMessage, msg: m} }

// NewList wraps an ordered sequence of Values.
func NewList(vs []Value) Value { return Value{kind: KindList, list: vs} }

// NewMap wraps a single map entry. A "Map" field in the generic tree is
// represented as repeated Field entries of the same name, each carrying one
// NewMap value, mirroring how a proto3 map field decodes as repeated
// key/value submessages on the wire.
func NewMap(key, val Value) (Value, error) {
	if key.kind == KindNull {
		return Value{}, fmt.Errorf("map entry requires a non-null key")
	}
	switch key.kind {
	case KindString, KindInt, KindBool:
	default:
		return Value{}, fmt.Errorf("map key must be a scalar, got %s", key.kind)
	}
	return Value{kind: KindMap, m: &MapValue{Key: key, Value: val}}, nil
}

// IsScalar reports whether v holds a String/Int/Float/Bool/Null.
func (v Value) IsScalar() bool {
	switch v.kind {
	case KindString, KindInt, KindFloat, KindBool, KindNull:
		return true
	default:
		return false
	}
}

// String returns the wrapped string; callers should check Kind first.
func (v Value) String() string { return v.str }

// Int returns the wrapped integer; callers should check Kind first.
func (v Value) Int() int64 { return v.i }

// Float returns the wrapped float; callers should check Kind first.
func (v Value) Float() float64 { return v.f }

// Bool returns the wrapped boolean; callers should check Kind first.
func (v Value) Bool() bool { return v.b }

// Message returns the wrapped Message, or nil if Kind() != KindMessage.
func (v Value) Message() *Message { return v.msg }

// List returns the wrapped slice, or nil if Kind() != KindList.
func (v Value) List() []Value { return v.list }

// MapEntry returns the wrapped map entry, or nil if Kind() != KindMap.
func (v Value) MapEntry() *MapValue { return v.m }

// Equal reports whether v and other are structurally identical. Lists and
// map entries compare element-wise and are order-sensitive, matching the
// round-trip-equality invariant in the generic value model.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == other.str
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	case KindMessage:
		return v.msg.Equal(other.msg)
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Key.Equal(other.m.Key) && v.m.Value.Equal(other.m.Value)
	default:
		return false
	}
}

// Native returns v as a plain Go value (string, int64, float64, bool, nil,
// map[string]any, or []any), suitable for json/yaml marshaling.
func (v Value) Native() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.str
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindMessage:
		return v.msg.ToH()
	case KindList:
		out := make([]any, len(v.list))
		for i, e := range v.list {
			out[i] = e.Native()
		}
		return out
	case KindMap:
		return map[string]any{
			"key":   v.m.Key.Native(),
			"value": v.m.Value.Native(),
		}
	default:
		return nil
	}
}
