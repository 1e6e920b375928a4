package capnproto

import "encoding/binary"

// builder accumulates a single segment's bytes during encoding. Content is
// allocated depth-first in call order: a struct's data/pointer section is
// reserved first, then each of its pointer-typed fields' content is
// allocated afterward, in field order.
type builder struct {
	buf []byte // always a multiple of wordSize
}

// alloc reserves n zeroed words and returns the word index of the first one.
func (b *builder) alloc(n int) int {
	start := len(b.buf) / wordSize
	b.buf = append(b.buf, make([]byte, n*wordSize)...)
	return start
}

// allocBytes reserves enough whole words to hold n bytes (zero-padded) and
// returns the word index of the first one.
func (b *builder) allocBytes(n int) int {
	words := (n + wordSize - 1) / wordSize
	return b.alloc(words)
}

func (b *builder) setWord(wordIdx int, v uint64) {
	binary.LittleEndian.PutUint64(b.buf[wordIdx*wordSize:], v)
}

func (b *builder) writeBytesAt(wordIdx int, data []byte) {
	copy(b.buf[wordIdx*wordSize:], data)
}

// wordLen returns the current segment length in words.
func (b *builder) wordLen() int { return len(b.buf) / wordSize }
