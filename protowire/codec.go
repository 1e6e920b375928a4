package protowire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lutaml/unibuf-go/protoschema"
	"github.com/lutaml/unibuf-go/reporter"
	"github.com/lutaml/unibuf-go/source"
	"github.com/lutaml/unibuf-go/value"
)

// Encode serializes m as the binary wire format for msgType, following the
// encoder algorithm: fields are emitted in the Message's own order, and a
// Field with no matching FieldDef is skipped rather than erroring, matching
// the decoder's unknown-field leniency.
func Encode(m *value.Message, schema *protoschema.Schema, msgType string) ([]byte, error) {
	md, ok := schema.FindMessage(msgType)
	if !ok {
		return nil, reporter.Errorf(reporter.KindSerialization, source.Unknown(""), "unknown message type %q", msgType)
	}
	return encodeMessage(m, schema, md)
}

func encodeMessage(m *value.Message, schema *protoschema.Schema, md *protoschema.MessageDef) ([]byte, error) {
	byName := fieldsByName(md)
	var out []byte
	for _, f := range m.Fields() {
		fd, ok := byName[f.Name]
		if !ok {
			continue // unknown field: encoder leniency, matching proto's own wire-compat philosophy
		}
		enc, err := encodeField(f, fd, schema)
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

func fieldsByName(md *protoschema.MessageDef) map[string]*protoschema.FieldDef {
	out := make(map[string]*protoschema.FieldDef, len(md.Fields))
	for _, f := range md.Fields {
		out[f.Name] = f
	}
	return out
}

func fieldsByNumber(md *protoschema.MessageDef) map[uint32]*protoschema.FieldDef {
	out := make(map[uint32]*protoschema.FieldDef, len(md.Fields))
	for _, f := range md.Fields {
		out[f.Number] = f
	}
	return out
}

func encodeField(f value.Field, fd *protoschema.FieldDef, schema *protoschema.Schema) ([]byte, error) {
	if fd.IsMap() {
		return encodeMapEntry(f, fd, schema)
	}
	if wt, ok := wireTypeForScalar(fd.Type); ok {
		return encodeScalar(fd, wt, f.Value)
	}
	if enumDef, ok := schema.FindEnum(fd.Type); ok {
		return encodeEnum(fd, enumDef, f.Value)
	}
	if nested, ok := schema.FindMessage(fd.Type); ok {
		if f.Value.Kind() != value.KindMessage {
			return nil, reporter.Errorf(reporter.KindSerialization, source.Unknown(""), "field %q expects message %s, got %s", fd.Name, fd.Type, f.Value.Kind())
		}
		body, err := encodeMessage(f.Value.Message(), schema, nested)
		if err != nil {
			return nil, err
		}
		return appendLengthDelimited(nil, fd.Number, body), nil
	}
	return nil, reporter.Errorf(reporter.KindSerialization, source.Unknown(""), "field %q has unresolvable type %q", fd.Name, fd.Type)
}

func encodeMapEntry(f value.Field, fd *protoschema.FieldDef, schema *protoschema.Schema) ([]byte, error) {
	if f.Value.Kind() != value.KindMap {
		return nil, reporter.Errorf(reporter.KindSerialization, source.Unknown(""), "map field %q requires a map entry value", fd.Name)
	}
	me := f.Value.MapEntry()
	keyFD := &protoschema.FieldDef{Name: "key", Type: fd.KeyType, Number: 1}
	valFD := &protoschema.FieldDef{Name: "value", Type: fd.ValueType, Number: 2}

	var body []byte
	if enc, err := encodeField(value.Field{Name: "key", Value: me.Key}, keyFD, schema); err != nil {
		return nil, err
	} else {
		body = append(body, enc...)
	}
	if enc, err := encodeField(value.Field{Name: "value", Value: me.Value}, valFD, schema); err != nil {
		return nil, err
	} else {
		body = append(body, enc...)
	}
	return appendLengthDelimited(nil, fd.Number, body), nil
}

func encodeEnum(fd *protoschema.FieldDef, enumDef *protoschema.EnumDef, v value.Value) ([]byte, error) {
	var n int32
	switch v.Kind() {
	case value.KindString:
		num, ok := enumDef.ValueByName(v.String())
		if !ok {
			return nil, reporter.Errorf(reporter.KindSerialization, source.Unknown(""), "enum %s has no value named %q", enumDef.Name, v.String())
		}
		n = num
	case value.KindInt:
		n = int32(v.Int())
	default:
		return nil, reporter.Errorf(reporter.KindSerialization, source.Unknown(""), "field %q expects an enum value, got %s", fd.Name, v.Kind())
	}
	buf := AppendVarint(nil, EncodeTag(fd.Number, TypeVarint))
	buf = AppendVarint(buf, uint64(uint32(n)))
	return buf, nil
}

func encodeScalar(fd *protoschema.FieldDef, wt Type, v value.Value) ([]byte, error) {
	buf := AppendVarint(nil, EncodeTag(fd.Number, wt))
	switch fd.Type {
	case "bool":
		n := uint64(0)
		if v.Bool() {
			n = 1
		}
		return AppendVarint(buf, n), nil
	case "int32", "int64":
		return AppendVarint(buf, uint64(v.Int())), nil
	case "uint32", "uint64":
		return AppendVarint(buf, uint64(v.Int())), nil
	case "sint32":
		return AppendVarint(buf, uint64(EncodeZigZag32(int32(v.Int())))), nil
	case "sint64":
		return AppendVarint(buf, EncodeZigZag64(v.Int())), nil
	case "fixed32", "sfixed32":
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(v.Int()))
		return append(buf, tmp[:]...), nil
	case "float":
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(float32(v.Float())))
		return append(buf, tmp[:]...), nil
	case "fixed64", "sfixed64":
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(v.Int()))
		return append(buf, tmp[:]...), nil
	case "double":
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v.Float()))
		return append(buf, tmp[:]...), nil
	case "string", "bytes":
		raw := []byte(v.String())
		buf = AppendVarint(buf, uint64(len(raw)))
		return append(buf, raw...), nil
	default:
		return nil, fmt.Errorf("unsupported scalar type %q", fd.Type)
	}
}

// appendLengthDelimited builds tag + length-varint + body for an embedded
// message or map entry.
func appendLengthDelimited(buf []byte, fieldNumber uint32, body []byte) []byte {
	buf = AppendVarint(buf, EncodeTag(fieldNumber, TypeLen))
	buf = AppendVarint(buf, uint64(len(body)))
	return append(buf, body...)
}

// Decode parses binary wire-format data into a generic Message, following the
// decoder algorithm: unknown fields are skipped per their wire type rather
// than erroring.
func Decode(data []byte, schema *protoschema.Schema, msgType string) (*value.Message, error) {
	if len(data) == 0 {
		return nil, reporter.Errorf(reporter.KindArgument, source.Unknown(""), "empty input")
	}
	md, ok := schema.FindMessage(msgType)
	if !ok {
		return nil, reporter.Errorf(reporter.KindParse, source.Unknown(""), "unknown message type %q", msgType)
	}
	return decodeMessage(data, schema, md)
}

func decodeMessage(data []byte, schema *protoschema.Schema, md *protoschema.MessageDef) (*value.Message, error) {
	byNumber := fieldsByNumber(md)
	m := value.NewMessage()
	pos := 0
	for pos < len(data) {
		tag, n := ConsumeVarint(data[pos:])
		if n == 0 {
			return nil, parseErr("truncated or over-long tag varint")
		}
		pos += n
		fieldNumber, wt := DecodeTag(tag)

		fd, known := byNumber[fieldNumber]
		if !known {
			skipped, err := skipValue(data[pos:], wt)
			if err != nil {
				return nil, err
			}
			pos += skipped
			continue
		}

		v, consumed, err := decodeFieldValue(data[pos:], wt, fd, schema)
		if err != nil {
			return nil, err
		}
		pos += consumed

		if fd.IsMap() {
			me, err := decodeMapEntry(v, fd, schema)
			if err != nil {
				return nil, err
			}
			m.AppendMap(fd.Name, me)
			continue
		}
		m.Append(fd.Name, v)
	}
	return m, nil
}

func parseErr(msg string) error {
	return reporter.Error(reporter.KindParse, source.Unknown(""), fmt.Errorf("%s", msg))
}

// decodeFieldValue decodes one value at the front of data whose wire type is
// wt, returning the generic Value and the number of bytes consumed. For map
// fields, the LEN-delimited bytes are returned as a raw embedded message
// Value so the caller can pull out key/value.
func decodeFieldValue(data []byte, wt Type, fd *protoschema.FieldDef, schema *protoschema.Schema) (value.Value, int, error) {
	switch wt {
	case TypeVarint:
		u, n := ConsumeVarint(data)
		if n == 0 {
			return value.Value{}, 0, parseErr("truncated varint value")
		}
		return decodeVarintScalar(fd, schema, u), n, nil
	case TypeI32:
		if len(data) < 4 {
			return value.Value{}, 0, parseErr("truncated 32-bit value")
		}
		bits := binary.LittleEndian.Uint32(data[:4])
		switch fd.Type {
		case "float":
			return value.NewFloat(float64(math.Float32frombits(bits))), 4, nil
		default:
			return value.NewInt(int64(int32(bits))), 4, nil
		}
	case TypeI64:
		if len(data) < 8 {
			return value.Value{}, 0, parseErr("truncated 64-bit value")
		}
		bits := binary.LittleEndian.Uint64(data[:8])
		switch fd.Type {
		case "double":
			return value.NewFloat(math.Float64frombits(bits)), 8, nil
		default:
			return value.NewInt(int64(bits)), 8, nil
		}
	case TypeLen:
		ln, n := ConsumeVarint(data)
		if n == 0 {
			return value.Value{}, 0, parseErr("truncated length varint")
		}
		if uint64(len(data)-n) < ln {
			return value.Value{}, 0, parseErr("length-delimited value overruns buffer")
		}
		raw := data[n : n+int(ln)]
		consumed := n + int(ln)
		if fd.IsMap() {
			return value.NewMessageValue(rawMessage(raw)), consumed, nil
		}
		if fd.Type == "string" {
			return value.NewString(string(raw)), consumed, nil
		}
		if fd.Type == "bytes" {
			return value.NewString(string(raw)), consumed, nil
		}
		if nested, ok := schema.FindMessage(fd.Type); ok {
			sub, err := decodeMessage(raw, schema, nested)
			if err != nil {
				return value.Value{}, 0, err
			}
			return value.NewMessageValue(sub), consumed, nil
		}
		return value.NewMessageValue(rawMessage(raw)), consumed, nil
	default:
		return value.Value{}, 0, parseErr(fmt.Sprintf("unsupported wire type %d (groups are not supported)", wt))
	}
}

// rawMessage stores raw length-delimited bytes as a single-field Message so
// they survive until a caller (e.g. map-entry decoding) can reinterpret
// them against the correct key/value schema.
func rawMessage(raw []byte) *value.Message {
	m := value.NewMessage()
	m.Append("__raw__", value.NewString(string(raw)))
	return m
}

func decodeMapEntry(v value.Value, fd *protoschema.FieldDef, schema *protoschema.Schema) (value.Value, error) {
	raw, ok := v.Message().FindField("__raw__")
	if !ok {
		return value.Value{}, parseErr("malformed map entry")
	}
	keyFD := &protoschema.FieldDef{Name: "key", Type: fd.KeyType, Number: 1}
	valFD := &protoschema.FieldDef{Name: "value", Type: fd.ValueType, Number: 2}
	byNumber := map[uint32]*protoschema.FieldDef{1: keyFD, 2: valFD}
	m := value.NewMessage()
	data := []byte(raw.Value.String())
	pos := 0
	for pos < len(data) {
		tag, n := ConsumeVarint(data[pos:])
		if n == 0 {
			return value.Value{}, parseErr("truncated map entry tag")
		}
		pos += n
		fieldNumber, wt := DecodeTag(tag)
		efd, known := byNumber[fieldNumber]
		if !known {
			skipped, err := skipValue(data[pos:], wt)
			if err != nil {
				return value.Value{}, err
			}
			pos += skipped
			continue
		}
		ev, consumed, err := decodeFieldValue(data[pos:], wt, efd, schema)
		if err != nil {
			return value.Value{}, err
		}
		pos += consumed
		m.Append(efd.Name, ev)
	}
	keyField, _ := m.FindField("key")
	valField, _ := m.FindField("value")
	return value.NewMap(keyField.Value, valField.Value)
}

func decodeVarintScalar(fd *protoschema.FieldDef, schema *protoschema.Schema, u uint64) value.Value {
	if enumDef, ok := schema.FindEnum(fd.Type); ok {
		n := int32(uint32(u))
		if name, ok := enumDef.NameByValue(n); ok {
			return value.NewString(name)
		}
		return value.NewInt(int64(n))
	}
	switch fd.Type {
	case "bool":
		return value.NewBool(u != 0)
	case "sint32":
		return value.NewInt(int64(DecodeZigZag32(uint32(u))))
	case "sint64":
		return value.NewInt(DecodeZigZag64(u))
	case "int32":
		return value.NewInt(int64(int32(u)))
	default:
		return value.NewInt(int64(u))
	}
}

// skipValue skips one unknown field's value according to its wire type,
// returning the number of bytes consumed.
func skipValue(data []byte, wt Type) (int, error) {
	switch wt {
	case TypeVarint:
		_, n := ConsumeVarint(data)
		if n == 0 {
			return 0, parseErr("truncated varint while skipping unknown field")
		}
		return n, nil
	case TypeI32:
		if len(data) < 4 {
			return 0, parseErr("truncated 32-bit value while skipping unknown field")
		}
		return 4, nil
	case TypeI64:
		if len(data) < 8 {
			return 0, parseErr("truncated 64-bit value while skipping unknown field")
		}
		return 8, nil
	case TypeLen:
		ln, n := ConsumeVarint(data)
		if n == 0 {
			return 0, parseErr("truncated length varint while skipping unknown field")
		}
		if uint64(len(data)-n) < ln {
			return 0, parseErr("length-delimited value overruns buffer while skipping unknown field")
		}
		return n + int(ln), nil
	default:
		return 0, parseErr(fmt.Sprintf("unsupported wire type %d (groups are not supported)", wt))
	}
}
