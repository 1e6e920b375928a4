package capnproto

import "github.com/lutaml/unibuf-go/capnpschema"

// fieldKind classifies where a field's value lives on the wire.
type fieldKind int

const (
	kindVoid fieldKind = iota
	kindBool
	kindData   // fixed-size scalar or enum (UInt16) in the data section
	kindPointer
)

// structLayout assigns each field of a struct a concrete slot in the data
// or pointer section. Real Cap'n Proto compilers pack fields to reuse holes
// left by schema evolution; this codec instead lays out fields
// deterministically in declaration order, which is sufficient for
// self-consistent round-tripping and is documented as a simplification.
type structLayout struct {
	dataBytes int
	ptrCount  int

	boolBit map[string]int // field name -> bit index within the data section
	byteOff map[string]int // field name -> byte offset within the data section
	ptrIdx  map[string]int // field name -> pointer-section word index
}

// classifyField determines where a field lives on the wire: a struct/enum
// reference in Kind==KindUser resolves against schema, since enums are
// packed as a 2-byte data value while struct references are pointers.
func classifyField(f *capnpschema.FieldDef, schema *capnpschema.Schema) (fieldKind, int) {
	switch f.Type.Kind {
	case capnpschema.KindList:
		return kindPointer, 0
	case capnpschema.KindUser:
		if _, ok := schema.FindEnum(f.Type.UserType); ok {
			return kindData, 2
		}
		return kindPointer, 0
	case capnpschema.KindPrimitive:
		switch f.Type.Primitive {
		case capnpschema.Void:
			return kindVoid, 0
		case capnpschema.Bool:
			return kindBool, 0
		case capnpschema.Text, capnpschema.Data, capnpschema.AnyPointer:
			return kindPointer, 0
		default:
			return kindData, primitiveByteSize(f.Type.Primitive)
		}
	default:
		return kindVoid, 0
	}
}

func computeLayout(st *capnpschema.StructDef, schema *capnpschema.Schema) structLayout {
	l := structLayout{
		boolBit: map[string]int{},
		byteOff: map[string]int{},
		ptrIdx:  map[string]int{},
	}
	fields := st.AllFields()

	var boolCount int
	for _, f := range fields {
		if k, _ := classifyField(f, schema); k == kindBool {
			boolCount++
		}
	}
	cursor := (boolCount + 7) / 8
	bitCursor := 0
	ptrCount := 0

	for _, f := range fields {
		kind, size := classifyField(f, schema)
		switch kind {
		case kindPointer:
			l.ptrIdx[f.Name] = ptrCount
			ptrCount++
		case kindBool:
			l.boolBit[f.Name] = bitCursor
			bitCursor++
		case kindData:
			cursor = alignUp(cursor, size)
			l.byteOff[f.Name] = cursor
			cursor += size
		case kindVoid:
			// occupies no space
		}
	}

	l.dataBytes = cursor
	l.ptrCount = ptrCount
	return l
}

func alignUp(offset, size int) int {
	if size <= 1 {
		return offset
	}
	if rem := offset % size; rem != 0 {
		return offset + (size - rem)
	}
	return offset
}

func primitiveByteSize(p capnpschema.Primitive) int {
	switch p {
	case capnpschema.Bool:
		return 1 // list elements only; struct Bool fields are bit-packed via kindBool
	case capnpschema.Int8, capnpschema.UInt8:
		return 1
	case capnpschema.Int16, capnpschema.UInt16:
		return 2
	case capnpschema.Int32, capnpschema.UInt32, capnpschema.Float32:
		return 4
	case capnpschema.Int64, capnpschema.UInt64, capnpschema.Float64:
		return 8
	default:
		return 0
	}
}

func dataWordsFor(l structLayout) uint16 {
	return uint16((l.dataBytes + 7) / 8)
}
