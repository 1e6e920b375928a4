package flatbuffers

import (
	"fmt"
	"math"

	"github.com/lutaml/unibuf-go/fbsschema"
	"github.com/lutaml/unibuf-go/value"
)

// Encode serializes msg as a FlatBuffers buffer per the root table named
// rootType in schema.
func Encode(msg *value.Message, schema *fbsschema.FbsSchema, rootType string) ([]byte, error) {
	t, ok := schema.FindTable(rootType)
	if !ok {
		return nil, fmt.Errorf("flatbuffers: unknown root type %q", rootType)
	}
	b := &builder{}
	rootSlot := b.reserve(4)
	tablePos, err := encodeTable(b, msg, t, schema)
	if err != nil {
		return nil, err
	}
	b.putOffsetAt(rootSlot, tablePos)
	return b.buf, nil
}

// encodeTable writes a table's out-of-line field content depth-first, then
// its inline body, then its vtable, and returns the table's position.
func encodeTable(b *builder, msg *value.Message, t *fbsschema.TableDef, schema *fbsschema.FbsSchema) (int, error) {
	contentPos := map[string]int{}
	for _, f := range t.Fields {
		fld, ok := msg.FindField(f.Name)
		if !ok {
			continue
		}
		switch classifyField(f, schema) {
		case fkString:
			contentPos[f.Name] = encodeString(b, fld.Value.String())
		case fkTable:
			nested, ok := schema.FindTable(f.Type.UserType)
			if !ok {
				return 0, fmt.Errorf("flatbuffers: unknown table type %q", f.Type.UserType)
			}
			if fld.Value.Kind() != value.KindMessage {
				return 0, fmt.Errorf("flatbuffers: field %s expected a message value, got %s", f.Name, fld.Value.Kind())
			}
			pos, err := encodeTable(b, fld.Value.Message(), nested, schema)
			if err != nil {
				return 0, err
			}
			contentPos[f.Name] = pos
		case fkVector:
			pos, err := encodeVector(b, *f.Type.ElementType, fld.Value.List(), schema)
			if err != nil {
				return 0, err
			}
			contentPos[f.Name] = pos
		}
	}

	p := b.pos()
	soffsetSlot := b.reserve(4)

	offsets := make([]int, len(t.Fields))
	for i, f := range t.Fields {
		fld, ok := msg.FindField(f.Name)
		if !ok {
			continue
		}
		switch classifyField(f, schema) {
		case fkScalar:
			size := fieldSize(f, schema)
			b.padTo(size)
			slot := b.reserve(size)
			if err := encodeScalarField(b, slot, f, fld.Value, schema); err != nil {
				return 0, err
			}
			offsets[i] = slot - p
		case fkStruct:
			st, ok := schema.FindStruct(f.Type.UserType)
			if !ok {
				return 0, fmt.Errorf("flatbuffers: unknown struct type %q", f.Type.UserType)
			}
			if fld.Value.Kind() != value.KindMessage {
				return 0, fmt.Errorf("flatbuffers: field %s expected a message value, got %s", f.Name, fld.Value.Kind())
			}
			slot := b.reserve(structSize(st, schema))
			if err := encodeStructInline(b, slot, fld.Value.Message(), st, schema); err != nil {
				return 0, err
			}
			offsets[i] = slot - p
		case fkString, fkTable, fkVector:
			b.padTo(4)
			slot := b.reserve(4)
			b.putOffsetAt(slot, contentPos[f.Name])
			offsets[i] = slot - p
		}
	}
	objectSize := b.pos() - p

	v := b.pos()
	vtableSize := 4 + 2*len(t.Fields)
	b.reserve(vtableSize)
	b.putUint16At(v, uint16(vtableSize))
	b.putUint16At(v+2, uint16(objectSize))
	for i, off := range offsets {
		b.putUint16At(v+4+2*i, uint16(off))
	}
	b.putUint32At(soffsetSlot, uint32(int32(p-v)))
	return p, nil
}

func encodeString(b *builder, s string) int {
	raw := []byte(s)
	b.padTo(4)
	pos := b.pos()
	b.reserve(4)
	b.putUint32At(pos, uint32(len(raw)))
	b.appendBytes(raw)
	b.appendBytes([]byte{0})
	return pos
}

func encodeStructInline(b *builder, slot int, msg *value.Message, st *fbsschema.StructDef, schema *fbsschema.FbsSchema) error {
	off := slot
	for _, f := range st.Fields {
		fld, ok := msg.FindField(f.Name)
		switch classifyField(f, schema) {
		case fkStruct:
			nested, ok2 := schema.FindStruct(f.Type.UserType)
			if !ok2 {
				return fmt.Errorf("flatbuffers: unknown struct type %q", f.Type.UserType)
			}
			if ok {
				if err := encodeStructInline(b, off, fld.Value.Message(), nested, schema); err != nil {
					return err
				}
			}
			off += structSize(nested, schema)
		default:
			size := fieldSize(f, schema)
			if ok {
				if err := encodeScalarField(b, off, f, fld.Value, schema); err != nil {
					return err
				}
			}
			off += size
		}
	}
	return nil
}

func encodeVector(b *builder, elemType fbsschema.FieldType, items []value.Value, schema *fbsschema.FbsSchema) (int, error) {
	synthetic := &fbsschema.FieldDef{Type: elemType}
	kind := classifyField(synthetic, schema)
	stride := vectorElementStride(elemType, schema)

	switch kind {
	case fkString:
		positions := make([]int, len(items))
		for i, it := range items {
			positions[i] = encodeString(b, it.String())
		}
		b.padTo(4)
		vecPos := b.pos()
		b.reserve(4)
		b.putUint32At(vecPos, uint32(len(items)))
		for i := range items {
			b.padTo(4)
			slot := b.reserve(4)
			b.putOffsetAt(slot, positions[i])
		}
		return vecPos, nil
	case fkTable:
		nested, ok := schema.FindTable(elemType.UserType)
		if !ok {
			return 0, fmt.Errorf("flatbuffers: unknown table type %q", elemType.UserType)
		}
		positions := make([]int, len(items))
		for i, it := range items {
			pos, err := encodeTable(b, it.Message(), nested, schema)
			if err != nil {
				return 0, err
			}
			positions[i] = pos
		}
		b.padTo(4)
		vecPos := b.pos()
		b.reserve(4)
		b.putUint32At(vecPos, uint32(len(items)))
		for i := range items {
			b.padTo(4)
			slot := b.reserve(4)
			b.putOffsetAt(slot, positions[i])
		}
		return vecPos, nil
	case fkStruct:
		nested, ok := schema.FindStruct(elemType.UserType)
		if !ok {
			return 0, fmt.Errorf("flatbuffers: unknown struct type %q", elemType.UserType)
		}
		b.padTo(4)
		vecPos := b.pos()
		b.reserve(4)
		b.putUint32At(vecPos, uint32(len(items)))
		for _, it := range items {
			slot := b.reserve(stride)
			if err := encodeStructInline(b, slot, it.Message(), nested, schema); err != nil {
				return 0, err
			}
		}
		return vecPos, nil
	default:
		b.padTo(4)
		vecPos := b.pos()
		b.reserve(4)
		b.putUint32At(vecPos, uint32(len(items)))
		for _, it := range items {
			slot := b.reserve(stride)
			if err := encodeScalarField(b, slot, synthetic, it, schema); err != nil {
				return 0, err
			}
		}
		return vecPos, nil
	}
}

// encodeScalarField writes a scalar or enum value at an already-reserved
// slot of the field's natural width.
func encodeScalarField(b *builder, slot int, f *fbsschema.FieldDef, v value.Value, schema *fbsschema.FbsSchema) error {
	if f.Type.Kind == fbsschema.KindUser {
		en, ok := schema.FindEnum(f.Type.UserType)
		if !ok {
			return fmt.Errorf("flatbuffers: unknown enum type %q", f.Type.UserType)
		}
		ordinal, err := enumOrdinalFor(en, v)
		if err != nil {
			return err
		}
		writeScalarRaw(b, slot, enumUnderlyingSize(en), uint64(ordinal))
		return nil
	}
	return writeScalarValue(b, slot, f.Type.ScalarName, v)
}

func enumOrdinalFor(e *fbsschema.EnumDef, v value.Value) (int64, error) {
	switch v.Kind() {
	case value.KindString:
		n, ok := e.ValueByName(v.String())
		if !ok {
			return 0, fmt.Errorf("flatbuffers: enum %s has no value named %q", e.Name, v.String())
		}
		return n, nil
	case value.KindInt:
		return v.Int(), nil
	default:
		return 0, fmt.Errorf("flatbuffers: expected enum name or ordinal, got %s", v.Kind())
	}
}

func writeScalarValue(b *builder, pos int, scalarName string, v value.Value) error {
	switch scalarName {
	case "bool":
		var x uint64
		if v.Bool() {
			x = 1
		}
		writeScalarRaw(b, pos, 1, x)
	case "byte", "ubyte":
		writeScalarRaw(b, pos, 1, uint64(v.Int()))
	case "short", "ushort":
		writeScalarRaw(b, pos, 2, uint64(v.Int()))
	case "int", "uint":
		writeScalarRaw(b, pos, 4, uint64(v.Int()))
	case "float":
		writeScalarRaw(b, pos, 4, uint64(math.Float32bits(float32(v.Float()))))
	case "long", "ulong":
		writeScalarRaw(b, pos, 8, uint64(v.Int()))
	case "double":
		writeScalarRaw(b, pos, 8, math.Float64bits(v.Float()))
	default:
		return fmt.Errorf("flatbuffers: unsupported scalar type %q", scalarName)
	}
	return nil
}

func writeScalarRaw(b *builder, pos, size int, raw uint64) {
	switch size {
	case 1:
		b.putUint8At(pos, uint8(raw))
	case 2:
		b.putUint16At(pos, uint16(raw))
	case 4:
		b.putUint32At(pos, uint32(raw))
	default:
		b.putUint64At(pos, raw)
	}
}
