package capnproto

import (
	"encoding/binary"
	"fmt"

	"github.com/tidwall/btree"
)

const wordSize = 8

// Message is a decoded Cap'n Proto message: one or more segments of raw
// word-aligned bytes, matching Cap'n Proto's stream framing.
type Message struct {
	Segments [][]byte

	// bounds indexes each segment's valid [0, len) word-offset range so
	// pointer arithmetic can reject an out-of-range offset in O(log n)
	// rather than a linear scan, grounded on compiler.go's use of a
	// sorted/tree index for fast range membership checks.
	bounds *btree.Map[int, int]
}

// ReadMessage parses the standard single-segment/multi-segment stream
// framing: a u32 segment-count-minus-one, followed by one u32 word-count
// per segment (padded to a word boundary), followed by the segment data.
func ReadMessage(data []byte) (*Message, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("capnp: message too short for segment table header")
	}
	segCountMinus1 := binary.LittleEndian.Uint32(data[0:4])
	segCount := int(segCountMinus1) + 1

	headerLen := 4 + 4*segCount
	if headerLen%8 != 0 {
		headerLen += 4 // pad to 8-byte boundary
	}
	if len(data) < headerLen {
		return nil, fmt.Errorf("capnp: message too short for %d segment headers", segCount)
	}

	wordCounts := make([]int, segCount)
	for i := 0; i < segCount; i++ {
		wordCounts[i] = int(binary.LittleEndian.Uint32(data[4+4*i : 8+4*i]))
	}

	m := &Message{bounds: &btree.Map[int, int]{}}
	pos := headerLen
	for i, wc := range wordCounts {
		byteLen := wc * wordSize
		if pos+byteLen > len(data) {
			return nil, fmt.Errorf("capnp: segment %d truncated: need %d bytes, have %d", i, byteLen, len(data)-pos)
		}
		seg := data[pos : pos+byteLen]
		m.Segments = append(m.Segments, seg)
		m.bounds.Set(i, wc)
		pos += byteLen
	}
	return m, nil
}

// WriteMessage serializes a single-segment message with the standard stream
// framing header.
func WriteMessage(segment []byte) []byte {
	if len(segment)%wordSize != 0 {
		panic("capnp: segment length must be a multiple of the word size")
	}
	wordCount := len(segment) / wordSize
	headerLen := 8 // 1 segment: 4 (count-1) + 4 (word count), already 8-aligned
	out := make([]byte, 0, headerLen+len(segment))
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], 0) // segCount - 1 == 0
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(wordCount))
	out = append(out, hdr[:]...)
	out = append(out, segment...)
	return out
}

// wordCount returns the number of words in segment idx, or false if idx is
// out of range.
func (m *Message) wordCount(idx int) (int, bool) {
	return m.bounds.Get(idx)
}

func (m *Message) readWord(segment, wordOffset int) (uint64, error) {
	wc, ok := m.wordCount(segment)
	if !ok || wordOffset < 0 || wordOffset >= wc {
		return 0, fmt.Errorf("capnp: word offset %d out of range in segment %d", wordOffset, segment)
	}
	b := m.Segments[segment][wordOffset*wordSize : wordOffset*wordSize+wordSize]
	return binary.LittleEndian.Uint64(b), nil
}
