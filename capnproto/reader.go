package capnproto

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lutaml/unibuf-go/capnpschema"
	"github.com/lutaml/unibuf-go/value"
)

// resolvedPointer is the result of following zero or more far pointers down
// to a struct or list body.
type resolvedPointer struct {
	kind          pointerTag // tagStruct or tagList
	segment       int
	contentOffset int // absolute word offset of the content's first word
	structInfo    structPointer
	listInfo      listPointer
}

func resolvePointer(m *Message, segment, ptrWordOffset int) (resolvedPointer, bool, error) {
	word, err := m.readWord(segment, ptrWordOffset)
	if err != nil {
		return resolvedPointer{}, false, err
	}
	if isNullPointer(word) {
		return resolvedPointer{}, true, nil
	}
	return resolvePointerWord(m, segment, ptrWordOffset, word)
}

func resolvePointerWord(m *Message, segment, ptrWordOffset int, word uint64) (resolvedPointer, bool, error) {
	switch decodeTag(word) {
	case tagStruct:
		sp := decodeStructPointer(word)
		return resolvedPointer{kind: tagStruct, segment: segment, contentOffset: ptrWordOffset + 1 + int(sp.offset), structInfo: sp}, false, nil
	case tagList:
		lp := decodeListPointer(word)
		return resolvedPointer{kind: tagList, segment: segment, contentOffset: ptrWordOffset + 1 + int(lp.offset), listInfo: lp}, false, nil
	case tagFar:
		fp := decodeFarPointer(word)
		if fp.doubleFar {
			return resolvedPointer{}, false, fmt.Errorf("capnp: double-far landing pads are not supported")
		}
		landing, err := m.readWord(int(fp.segment), int(fp.offset))
		if err != nil {
			return resolvedPointer{}, false, err
		}
		return resolvePointerWord(m, int(fp.segment), int(fp.offset), landing)
	default:
		return resolvedPointer{}, false, fmt.Errorf("capnp: capability pointers are not supported")
	}
}

// Decode parses a Cap'n Proto message per the root type named rootType in
// schema.
func Decode(data []byte, schema *capnpschema.Schema, rootType string) (*value.Message, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("capnp: empty input")
	}
	st, ok := schema.FindStruct(rootType)
	if !ok {
		return nil, fmt.Errorf("capnp: unknown root type %q", rootType)
	}
	msg, err := ReadMessage(data)
	if err != nil {
		return nil, err
	}
	if len(msg.Segments) == 0 {
		return nil, fmt.Errorf("capnp: message has no segments")
	}
	rp, isNull, err := resolvePointer(msg, 0, 0)
	if err != nil {
		return nil, err
	}
	if isNull {
		return value.NewMessage(), nil
	}
	if rp.kind != tagStruct {
		return nil, fmt.Errorf("capnp: root pointer is not a struct pointer")
	}
	return decodeStruct(msg, rp, st, schema)
}

func decodeStruct(m *Message, rp resolvedPointer, st *capnpschema.StructDef, schema *capnpschema.Schema) (*value.Message, error) {
	layout := computeLayout(st, schema)
	dataBytes := int(rp.structInfo.dataWords) * 8
	ptrWords := int(rp.structInfo.ptrWords)
	ptrSectionStart := rp.contentOffset + int(rp.structInfo.dataWords)

	data, err := m.readBytes(rp.segment, rp.contentOffset, dataBytes)
	if err != nil {
		return nil, err
	}

	out := value.NewMessage()
	for _, f := range st.AllFields() {
		kind, _ := classifyField(f, schema)
		switch kind {
		case kindVoid:
			out.Append(f.Name, value.Null())
		case kindBool:
			bit := layout.boolBit[f.Name]
			byteIdx := bit / 8
			v := false
			if byteIdx < len(data) {
				v = (data[byteIdx]>>(uint(bit)%8))&1 == 1
			}
			out.Append(f.Name, value.NewBool(v))
		case kindData:
			off := layout.byteOff[f.Name]
			val, err := decodeDataField(f, data, off, schema)
			if err != nil {
				return nil, err
			}
			out.Append(f.Name, val)
		case kindPointer:
			idx, ok := layout.ptrIdx[f.Name]
			if !ok || idx >= ptrWords {
				out.Append(f.Name, zeroValueFor(f))
				continue
			}
			val, err := decodePointerField(m, rp.segment, ptrSectionStart+idx, f, schema)
			if err != nil {
				return nil, err
			}
			out.Append(f.Name, val)
		}
	}
	return out, nil
}

func zeroValueFor(f *capnpschema.FieldDef) value.Value {
	switch {
	case f.Type.Kind == capnpschema.KindList:
		return value.NewList(nil)
	case f.Type.Kind == capnpschema.KindPrimitive && f.Type.Primitive == capnpschema.Text:
		return value.NewString("")
	case f.Type.Kind == capnpschema.KindPrimitive && f.Type.Primitive == capnpschema.Data:
		return value.NewString("")
	default:
		return value.Null()
	}
}

func decodeDataField(f *capnpschema.FieldDef, data []byte, off int, schema *capnpschema.Schema) (value.Value, error) {
	if f.Type.Kind == capnpschema.KindUser {
		en, ok := schema.FindEnum(f.Type.UserType)
		if !ok {
			return value.Value{}, fmt.Errorf("capnp: unknown enum type %q", f.Type.UserType)
		}
		var raw uint16
		if off+2 <= len(data) {
			raw = binary.LittleEndian.Uint16(data[off:])
		}
		for _, ev := range en.Values {
			if ev.Ordinal == raw {
				return value.NewString(ev.Name), nil
			}
		}
		return value.NewInt(int64(raw)), nil
	}
	size := primitiveByteSize(f.Type.Primitive)
	var raw uint64
	if off+size <= len(data) {
		buf := make([]byte, 8)
		copy(buf, data[off:off+size])
		raw = binary.LittleEndian.Uint64(buf)
	}
	switch f.Type.Primitive {
	case capnpschema.Bool:
		return value.NewBool(raw&1 == 1), nil
	case capnpschema.Int8:
		return value.NewInt(int64(int8(raw))), nil
	case capnpschema.Int16:
		return value.NewInt(int64(int16(raw))), nil
	case capnpschema.Int32:
		return value.NewInt(int64(int32(raw))), nil
	case capnpschema.Int64:
		return value.NewInt(int64(raw)), nil
	case capnpschema.UInt8, capnpschema.UInt16, capnpschema.UInt32:
		return value.NewInt(int64(raw)), nil
	case capnpschema.UInt64:
		return value.NewInt(int64(raw)), nil
	case capnpschema.Float32:
		return value.NewFloat(float64(math.Float32frombits(uint32(raw)))), nil
	case capnpschema.Float64:
		return value.NewFloat(math.Float64frombits(raw)), nil
	default:
		return value.Null(), nil
	}
}

func decodePointerField(m *Message, segment, ptrWordOffset int, f *capnpschema.FieldDef, schema *capnpschema.Schema) (value.Value, error) {
	rp, isNull, err := resolvePointer(m, segment, ptrWordOffset)
	if err != nil {
		return value.Value{}, err
	}
	if isNull {
		return zeroValueFor(f), nil
	}
	switch {
	case f.Type.Kind == capnpschema.KindPrimitive && (f.Type.Primitive == capnpschema.Text || f.Type.Primitive == capnpschema.Data):
		if rp.kind != tagList {
			return value.Value{}, fmt.Errorf("capnp: field %s expected a list pointer", f.Name)
		}
		raw, err := readByteList(m, rp)
		if err != nil {
			return value.Value{}, err
		}
		if f.Type.Primitive == capnpschema.Text && len(raw) > 0 {
			raw = raw[:len(raw)-1] // drop the NUL terminator
		}
		return value.NewString(string(raw)), nil
	case f.Type.Kind == capnpschema.KindList:
		if rp.kind != tagList {
			return value.Value{}, fmt.Errorf("capnp: field %s expected a list pointer", f.Name)
		}
		return decodeList(m, rp, *f.Type.ElementType, schema)
	case f.Type.Kind == capnpschema.KindUser:
		if rp.kind != tagStruct {
			return value.Value{}, fmt.Errorf("capnp: field %s expected a struct pointer", f.Name)
		}
		nested, ok := schema.FindStruct(f.Type.UserType)
		if !ok {
			return value.Value{}, fmt.Errorf("capnp: unknown struct type %q", f.Type.UserType)
		}
		msg, err := decodeStruct(m, rp, nested, schema)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewMessageValue(msg), nil
	default:
		return value.Null(), nil
	}
}

func readByteList(m *Message, rp resolvedPointer) ([]byte, error) {
	if rp.listInfo.size != eszByte {
		return nil, fmt.Errorf("capnp: expected a byte list, got element size tag %d", rp.listInfo.size)
	}
	return m.readBytes(rp.segment, rp.contentOffset, int(rp.listInfo.count))
}

func decodeList(m *Message, rp resolvedPointer, elemType capnpschema.FieldType, schema *capnpschema.Schema) (value.Value, error) {
	lp := rp.listInfo
	var items []value.Value

	if lp.size == eszComposite {
		tagWord, err := m.readWord(rp.segment, rp.contentOffset)
		if err != nil {
			return value.Value{}, err
		}
		tag := decodeStructPointer(tagWord)
		elemWords := int(tag.dataWords) + int(tag.ptrWords)
		count := int(tag.offset) // for the tag word, the "offset" field holds element count
		elemStart := rp.contentOffset + 1
		for i := 0; i < count; i++ {
			elemRP := resolvedPointer{
				kind:          tagStruct,
				segment:       rp.segment,
				contentOffset: elemStart + i*elemWords,
				structInfo:    structPointer{dataWords: tag.dataWords, ptrWords: tag.ptrWords},
			}
			nested, ok := schema.FindStruct(elemType.UserType)
			if !ok {
				return value.Value{}, fmt.Errorf("capnp: unknown element struct type %q", elemType.UserType)
			}
			nm, err := decodeStruct(m, elemRP, nested, schema)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, value.NewMessageValue(nm))
		}
		return value.NewList(items), nil
	}

	if lp.size == eszEightBytesPtr {
		for i := uint32(0); i < lp.count; i++ {
			v, err := decodePointerField(m, rp.segment, rp.contentOffset+int(i), &capnpschema.FieldDef{Name: "<elem>", Type: elemType}, schema)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.NewList(items), nil
	}

	byteWidth, err := byteSizeOf(lp.size)
	if err != nil {
		return value.Value{}, err
	}
	raw, err := m.readBytes(rp.segment, rp.contentOffset, byteWidth*int(lp.count))
	if err != nil {
		return value.Value{}, err
	}
	for i := uint32(0); i < lp.count; i++ {
		off := int(i) * byteWidth
		v, err := decodeDataField(&capnpschema.FieldDef{Name: "<elem>", Type: elemType}, raw, off, schema)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
	}
	return value.NewList(items), nil
}

func (m *Message) readBytes(segment, wordOffset, numBytes int) ([]byte, error) {
	if numBytes == 0 {
		return nil, nil
	}
	wc, ok := m.wordCount(segment)
	if !ok {
		return nil, fmt.Errorf("capnp: segment %d does not exist", segment)
	}
	neededWords := (numBytes + 7) / 8
	if wordOffset < 0 || wordOffset+neededWords > wc {
		return nil, fmt.Errorf("capnp: byte range out of bounds in segment %d", segment)
	}
	start := wordOffset * 8
	return m.Segments[segment][start : start+numBytes], nil
}
