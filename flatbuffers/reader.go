package flatbuffers

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lutaml/unibuf-go/fbsschema"
	"github.com/lutaml/unibuf-go/value"
)

// Decode parses a FlatBuffers buffer per the root table named rootType in
// schema.
func Decode(data []byte, schema *fbsschema.FbsSchema, rootType string) (*value.Message, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("flatbuffers: input too short for a root offset")
	}
	t, ok := schema.FindTable(rootType)
	if !ok {
		return nil, fmt.Errorf("flatbuffers: unknown root type %q", rootType)
	}
	tablePos := readOffset(data, 0)
	return decodeTable(data, tablePos, t, schema)
}

func decodeTable(data []byte, p int, t *fbsschema.TableDef, schema *fbsschema.FbsSchema) (*value.Message, error) {
	if p < 0 || p+4 > len(data) {
		return nil, fmt.Errorf("flatbuffers: table position %d out of bounds", p)
	}
	soffset := int32(binary.LittleEndian.Uint32(data[p:]))
	v := p - int(soffset)
	if v < 0 || v+4 > len(data) {
		return nil, fmt.Errorf("flatbuffers: vtable position %d out of bounds", v)
	}
	vtableSize := int(binary.LittleEndian.Uint16(data[v:]))
	numSlots := (vtableSize - 4) / 2

	out := value.NewMessage()
	for i, f := range t.Fields {
		if i >= numSlots {
			if f.Default != nil {
				out.Append(f.Name, defaultValueFor(f))
			}
			continue
		}
		off := int(binary.LittleEndian.Uint16(data[v+4+2*i:]))
		if off == 0 {
			if f.Default != nil {
				out.Append(f.Name, defaultValueFor(f))
			}
			continue
		}
		val, err := decodeFieldValue(data, p+off, f, schema)
		if err != nil {
			return nil, err
		}
		out.Append(f.Name, val)
	}
	return out, nil
}

func defaultValueFor(f *fbsschema.FieldDef) value.Value {
	switch d := f.Default.(type) {
	case string:
		return value.NewString(d)
	case int64:
		return value.NewInt(d)
	case float64:
		return value.NewFloat(d)
	case bool:
		return value.NewBool(d)
	default:
		return value.Null()
	}
}

func decodeFieldValue(data []byte, pos int, f *fbsschema.FieldDef, schema *fbsschema.FbsSchema) (value.Value, error) {
	switch classifyField(f, schema) {
	case fkScalar:
		if f.Type.Kind == fbsschema.KindUser {
			en, ok := schema.FindEnum(f.Type.UserType)
			if !ok {
				return value.Value{}, fmt.Errorf("flatbuffers: unknown enum type %q", f.Type.UserType)
			}
			raw := readScalarRaw(data, pos, enumUnderlyingSize(en))
			if name, ok := en.NameByValue(int64(raw)); ok {
				return value.NewString(name), nil
			}
			return value.NewInt(int64(raw)), nil
		}
		return decodeScalarValue(data, pos, f.Type.ScalarName)
	case fkString:
		sp := readOffset(data, pos)
		return value.NewString(readString(data, sp)), nil
	case fkTable:
		nested, ok := schema.FindTable(f.Type.UserType)
		if !ok {
			return value.Value{}, fmt.Errorf("flatbuffers: unknown table type %q", f.Type.UserType)
		}
		tp := readOffset(data, pos)
		m, err := decodeTable(data, tp, nested, schema)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewMessageValue(m), nil
	case fkStruct:
		nested, ok := schema.FindStruct(f.Type.UserType)
		if !ok {
			return value.Value{}, fmt.Errorf("flatbuffers: unknown struct type %q", f.Type.UserType)
		}
		m, err := decodeStructInline(data, pos, nested, schema)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewMessageValue(m), nil
	case fkVector:
		vp := readOffset(data, pos)
		return decodeVector(data, vp, *f.Type.ElementType, schema)
	default:
		return value.Null(), nil
	}
}

func decodeScalarValue(data []byte, pos int, name string) (value.Value, error) {
	switch name {
	case "bool":
		return value.NewBool(data[pos] != 0), nil
	case "byte":
		return value.NewInt(int64(int8(data[pos]))), nil
	case "ubyte":
		return value.NewInt(int64(data[pos])), nil
	case "short":
		return value.NewInt(int64(int16(binary.LittleEndian.Uint16(data[pos:])))), nil
	case "ushort":
		return value.NewInt(int64(binary.LittleEndian.Uint16(data[pos:]))), nil
	case "int":
		return value.NewInt(int64(int32(binary.LittleEndian.Uint32(data[pos:])))), nil
	case "uint":
		return value.NewInt(int64(binary.LittleEndian.Uint32(data[pos:]))), nil
	case "float":
		return value.NewFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(data[pos:])))), nil
	case "long", "ulong":
		return value.NewInt(int64(binary.LittleEndian.Uint64(data[pos:]))), nil
	case "double":
		return value.NewFloat(math.Float64frombits(binary.LittleEndian.Uint64(data[pos:]))), nil
	default:
		return value.Value{}, fmt.Errorf("flatbuffers: unsupported scalar type %q", name)
	}
}

func readScalarRaw(data []byte, pos, size int) uint64 {
	switch size {
	case 1:
		return uint64(data[pos])
	case 2:
		return uint64(binary.LittleEndian.Uint16(data[pos:]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(data[pos:]))
	default:
		return binary.LittleEndian.Uint64(data[pos:])
	}
}

func readString(data []byte, pos int) string {
	length := int(binary.LittleEndian.Uint32(data[pos:]))
	return string(data[pos+4 : pos+4+length])
}

func decodeStructInline(data []byte, pos int, st *fbsschema.StructDef, schema *fbsschema.FbsSchema) (*value.Message, error) {
	out := value.NewMessage()
	off := pos
	for _, f := range st.Fields {
		if classifyField(f, schema) == fkStruct {
			nested, ok := schema.FindStruct(f.Type.UserType)
			if !ok {
				return nil, fmt.Errorf("flatbuffers: unknown struct type %q", f.Type.UserType)
			}
			m, err := decodeStructInline(data, off, nested, schema)
			if err != nil {
				return nil, err
			}
			out.Append(f.Name, value.NewMessageValue(m))
			off += structSize(nested, schema)
			continue
		}
		val, err := decodeFieldValue(data, off, f, schema)
		if err != nil {
			return nil, err
		}
		out.Append(f.Name, val)
		off += fieldSize(f, schema)
	}
	return out, nil
}

func decodeVector(data []byte, pos int, elemType fbsschema.FieldType, schema *fbsschema.FbsSchema) (value.Value, error) {
	count := int(binary.LittleEndian.Uint32(data[pos:]))
	stride := vectorElementStride(elemType, schema)
	synthetic := &fbsschema.FieldDef{Type: elemType}
	kind := classifyField(synthetic, schema)
	base := pos + 4

	var items []value.Value
	for i := 0; i < count; i++ {
		slot := base + i*stride
		switch kind {
		case fkString:
			sp := readOffset(data, slot)
			items = append(items, value.NewString(readString(data, sp)))
		case fkTable:
			nested, ok := schema.FindTable(elemType.UserType)
			if !ok {
				return value.Value{}, fmt.Errorf("flatbuffers: unknown table type %q", elemType.UserType)
			}
			tp := readOffset(data, slot)
			m, err := decodeTable(data, tp, nested, schema)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, value.NewMessageValue(m))
		case fkStruct:
			nested, ok := schema.FindStruct(elemType.UserType)
			if !ok {
				return value.Value{}, fmt.Errorf("flatbuffers: unknown struct type %q", elemType.UserType)
			}
			m, err := decodeStructInline(data, slot, nested, schema)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, value.NewMessageValue(m))
		default:
			v, err := decodeFieldValue(data, slot, synthetic, schema)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
	}
	return value.NewList(items), nil
}
