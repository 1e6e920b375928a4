package flatbuffers

import "encoding/binary"

// builder accumulates buffer bytes in write order: children (strings,
// vectors, nested tables/structs) are always appended before the table that
// references them, so a referencing uoffset always has a known target
// position by the time it is written.
type builder struct {
	buf []byte
}

func (b *builder) pos() int { return len(b.buf) }

func (b *builder) padTo(align int) {
	for len(b.buf)%align != 0 {
		b.buf = append(b.buf, 0)
	}
}

func (b *builder) reserve(n int) int {
	start := len(b.buf)
	b.buf = append(b.buf, make([]byte, n)...)
	return start
}

func (b *builder) appendBytes(data []byte) int {
	start := len(b.buf)
	b.buf = append(b.buf, data...)
	return start
}

func (b *builder) putUint8At(pos int, v uint8)   { b.buf[pos] = v }
func (b *builder) putUint16At(pos int, v uint16) { binary.LittleEndian.PutUint16(b.buf[pos:], v) }
func (b *builder) putUint32At(pos int, v uint32) { binary.LittleEndian.PutUint32(b.buf[pos:], v) }
func (b *builder) putUint64At(pos int, v uint64) { binary.LittleEndian.PutUint64(b.buf[pos:], v) }

// putOffsetAt stores the signed delta from slot (where the uoffset itself
// lives) to target, letting a single relative-offset convention serve both
// forward references (target written after slot, as for the root pointer)
// and backward references (target written before slot, as for string/vector
// /table fields written depth-first ahead of their containing table).
func (b *builder) putOffsetAt(slot, target int) {
	b.putUint32At(slot, uint32(int32(target-slot)))
}

func readOffset(data []byte, slot int) int {
	delta := int32(binary.LittleEndian.Uint32(data[slot:]))
	return slot + int(delta)
}
