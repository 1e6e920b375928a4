package capnproto

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/lutaml/unibuf-go/capnpschema"
	"github.com/lutaml/unibuf-go/value"
)

// Encode serializes msg as a Cap'n Proto message per the root type named
// rootType in schema. The result is always a single segment.
func Encode(msg *value.Message, schema *capnpschema.Schema, rootType string) ([]byte, error) {
	st, ok := schema.FindStruct(rootType)
	if !ok {
		return nil, fmt.Errorf("capnp: unknown root type %q", rootType)
	}
	b := &builder{}
	rootPtrIdx := b.alloc(1)
	dataStart, dataWords, ptrWords, err := encodeStructContent(b, msg, st, schema)
	if err != nil {
		return nil, err
	}
	offset := int32(dataStart - (rootPtrIdx + 1))
	b.setWord(rootPtrIdx, encodeStructPointer(offset, dataWords, ptrWords))
	return WriteMessage(b.buf), nil
}

// encodeStructContent reserves and fills a struct's data and pointer
// sections and recursively encodes the content each pointer field refers
// to. It returns the word index of the data section's first word, along
// with the section sizes needed to build the pointer word that refers to it.
func encodeStructContent(b *builder, msg *value.Message, st *capnpschema.StructDef, schema *capnpschema.Schema) (int, uint16, uint16, error) {
	layout := computeLayout(st, schema)
	dataWordCount := dataWordsFor(layout)
	ptrWordCount := layout.ptrCount
	dataStart := b.alloc(int(dataWordCount) + ptrWordCount)
	if err := fillStructContent(b, dataStart, layout, msg, st, schema); err != nil {
		return 0, 0, 0, err
	}
	return dataStart, dataWordCount, uint16(ptrWordCount), nil
}

// fillStructContent fills a struct's data and pointer sections at an
// already-reserved location (dataStart, spanning dataWords+ptrWords words).
// Splitting reservation from filling lets composite lists reserve every
// element's section contiguously before any element's pointer-field
// content is appended.
func fillStructContent(b *builder, dataStart int, layout structLayout, msg *value.Message, st *capnpschema.StructDef, schema *capnpschema.Schema) error {
	dataWordCount := dataWordsFor(layout)
	ptrStart := dataStart + int(dataWordCount)

	dataBytes := make([]byte, int(dataWordCount)*8)
	fields := st.AllFields()

	for _, f := range fields {
		fld, ok := msg.FindField(f.Name)
		kind, _ := classifyField(f, schema)
		switch kind {
		case kindVoid:
			// nothing to write
		case kindBool:
			if ok && fld.Value.Kind() == value.KindBool && fld.Value.Bool() {
				bit := layout.boolBit[f.Name]
				dataBytes[bit/8] |= 1 << (uint(bit) % 8)
			}
		case kindData:
			if ok {
				if err := encodeDataField(f, fld.Value, dataBytes, layout.byteOff[f.Name], schema); err != nil {
					return err
				}
			}
		case kindPointer:
			if !ok || fld.Value.Kind() == value.KindNull {
				continue
			}
			ptrWordIdx := ptrStart + layout.ptrIdx[f.Name]
			if err := encodePointerField(b, ptrWordIdx, f, fld.Value, schema); err != nil {
				return err
			}
		}
	}
	b.writeBytesAt(dataStart, dataBytes)
	return nil
}

func encodeDataField(f *capnpschema.FieldDef, v value.Value, dataBytes []byte, off int, schema *capnpschema.Schema) error {
	if f.Type.Kind == capnpschema.KindUser {
		en, ok := schema.FindEnum(f.Type.UserType)
		if !ok {
			return fmt.Errorf("capnp: unknown enum type %q", f.Type.UserType)
		}
		var ordinal uint16
		switch v.Kind() {
		case value.KindString:
			found := false
			for _, ev := range en.Values {
				if ev.Name == v.String() {
					ordinal = ev.Ordinal
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("capnp: enum %s has no value named %q", en.Name, v.String())
			}
		case value.KindInt:
			ordinal = uint16(v.Int())
		default:
			return fmt.Errorf("capnp: field %s: expected enum name or ordinal, got %s", f.Name, v.Kind())
		}
		binary.LittleEndian.PutUint16(dataBytes[off:], ordinal)
		return nil
	}

	var raw uint64
	switch f.Type.Primitive {
	case capnpschema.Void:
		return nil
	case capnpschema.Bool:
		if v.Bool() {
			raw = 1
		}
	case capnpschema.Int8, capnpschema.Int16, capnpschema.Int32, capnpschema.Int64,
		capnpschema.UInt8, capnpschema.UInt16, capnpschema.UInt32, capnpschema.UInt64:
		raw = uint64(v.Int())
	case capnpschema.Float32:
		raw = uint64(math.Float32bits(float32(v.Float())))
	case capnpschema.Float64:
		raw = math.Float64bits(v.Float())
	default:
		return fmt.Errorf("capnp: field %s has unsupported scalar type %s", f.Name, f.Type.Primitive)
	}
	size := primitiveByteSize(f.Type.Primitive)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], raw)
	copy(dataBytes[off:off+size], buf[:size])
	return nil
}

// encodePointerField encodes the content a pointer field refers to and
// patches the pointer word at ptrWordIdx to reference it.
func encodePointerField(b *builder, ptrWordIdx int, f *capnpschema.FieldDef, v value.Value, schema *capnpschema.Schema) error {
	switch {
	case f.Type.Kind == capnpschema.KindPrimitive && (f.Type.Primitive == capnpschema.Text || f.Type.Primitive == capnpschema.Data):
		raw := []byte(v.String())
		if f.Type.Primitive == capnpschema.Text {
			raw = append(raw, 0)
		}
		start := b.allocBytes(len(raw))
		b.writeBytesAt(start, raw)
		offset := int32(start - (ptrWordIdx + 1))
		b.setWord(ptrWordIdx, encodeListPointer(offset, eszByte, uint32(len(raw))))
		return nil
	case f.Type.Kind == capnpschema.KindList:
		return encodeListField(b, ptrWordIdx, *f.Type.ElementType, v.List(), schema)
	case f.Type.Kind == capnpschema.KindUser:
		nested, ok := schema.FindStruct(f.Type.UserType)
		if !ok {
			return fmt.Errorf("capnp: unknown struct type %q", f.Type.UserType)
		}
		if v.Kind() != value.KindMessage {
			return fmt.Errorf("capnp: field %s expected a message value, got %s", f.Name, v.Kind())
		}
		dataStart, dataWords, ptrWords, err := encodeStructContent(b, v.Message(), nested, schema)
		if err != nil {
			return err
		}
		offset := int32(dataStart - (ptrWordIdx + 1))
		b.setWord(ptrWordIdx, encodeStructPointer(offset, dataWords, ptrWords))
		return nil
	default:
		return fmt.Errorf("capnp: field %s: AnyPointer fields are not supported for encoding", f.Name)
	}
}

func encodeListField(b *builder, ptrWordIdx int, elemType capnpschema.FieldType, items []value.Value, schema *capnpschema.Schema) error {
	if elemType.Kind == capnpschema.KindUser {
		if _, isEnum := schema.FindEnum(elemType.UserType); !isEnum {
			return encodeCompositeList(b, ptrWordIdx, elemType, items, schema)
		}
	}
	if elemType.Kind == capnpschema.KindList ||
		(elemType.Kind == capnpschema.KindPrimitive && (elemType.Primitive == capnpschema.Text || elemType.Primitive == capnpschema.Data)) {
		return encodePointerList(b, ptrWordIdx, elemType, items, schema)
	}

	size, sz := dataElementSize(elemType, schema)
	start := b.allocBytes(size * len(items))
	buf := make([]byte, size*len(items))
	for i, it := range items {
		synthetic := &capnpschema.FieldDef{Name: "<elem>", Type: elemType}
		if err := encodeDataField(synthetic, it, buf, i*size, schema); err != nil {
			return err
		}
	}
	b.writeBytesAt(start, buf)
	offset := int32(start - (ptrWordIdx + 1))
	b.setWord(ptrWordIdx, encodeListPointer(offset, sz, uint32(len(items))))
	return nil
}

// dataElementSize returns the byte width and element-size tag for a
// fixed-width (non-pointer, non-composite) list element type.
func dataElementSize(t capnpschema.FieldType, schema *capnpschema.Schema) (int, elementSize) {
	if t.Kind == capnpschema.KindUser {
		if _, ok := schema.FindEnum(t.UserType); ok {
			return 2, eszTwoBytes
		}
	}
	switch t.Primitive {
	case capnpschema.Void:
		return 0, eszVoid
	case capnpschema.Bool:
		return 1, eszByte // bit-packed lists are encoded byte-per-element for simplicity
	case capnpschema.Int8, capnpschema.UInt8:
		return 1, eszByte
	case capnpschema.Int16, capnpschema.UInt16:
		return 2, eszTwoBytes
	case capnpschema.Int32, capnpschema.UInt32, capnpschema.Float32:
		return 4, eszFourBytes
	default:
		return 8, eszEightBytesNonPtr
	}
}

func encodePointerList(b *builder, ptrWordIdx int, elemType capnpschema.FieldType, items []value.Value, schema *capnpschema.Schema) error {
	start := b.alloc(len(items))
	for i, it := range items {
		synthetic := &capnpschema.FieldDef{Name: "<elem>", Type: elemType}
		if err := encodePointerField(b, start+i, synthetic, it, schema); err != nil {
			return err
		}
	}
	offset := int32(start - (ptrWordIdx + 1))
	b.setWord(ptrWordIdx, encodeListPointer(offset, eszEightBytesPtr, uint32(len(items))))
	return nil
}

func encodeCompositeList(b *builder, ptrWordIdx int, elemType capnpschema.FieldType, items []value.Value, schema *capnpschema.Schema) error {
	nested, ok := schema.FindStruct(elemType.UserType)
	if !ok {
		return fmt.Errorf("capnp: unknown element struct type %q", elemType.UserType)
	}
	layout := computeLayout(nested, schema)
	dataWords := dataWordsFor(layout)
	ptrWords := uint16(layout.ptrCount)
	elemWords := int(dataWords) + int(ptrWords)

	// Reserve the tag word and every element's data+pointer section
	// contiguously before filling any of them, so that a filled element's
	// own pointer-field content (appended afterward) never lands between
	// two element sections.
	tagIdx := b.alloc(1)
	elemStarts := make([]int, len(items))
	for i := range items {
		elemStarts[i] = b.alloc(elemWords)
	}
	for i, it := range items {
		if it.Kind() != value.KindMessage {
			return fmt.Errorf("capnp: composite list element: expected a message value, got %s", it.Kind())
		}
		if err := fillStructContent(b, elemStarts[i], layout, it.Message(), nested, schema); err != nil {
			return err
		}
	}
	tagWord := encodeStructPointer(int32(len(items)), dataWords, ptrWords)
	b.setWord(tagIdx, tagWord)

	offset := int32(tagIdx - (ptrWordIdx + 1))
	b.setWord(ptrWordIdx, encodeListPointer(offset, eszComposite, uint32(len(items)*elemWords)))
	return nil
}
