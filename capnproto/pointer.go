package capnproto

import "fmt"

// pointerTag is the low 2 bits of a Cap'n Proto pointer word.
type pointerTag uint8

const (
	tagStruct pointerTag = 0
	tagList   pointerTag = 1
	tagFar    pointerTag = 2
	tagCap    pointerTag = 3
)

// elementSize is the 3-bit list element-size tag.
type elementSize uint8

const (
	eszVoid      elementSize = 0
	eszBit       elementSize = 1
	eszByte      elementSize = 2
	eszTwoBytes  elementSize = 3
	eszFourBytes elementSize = 4
	eszEightBytesNonPtr elementSize = 5
	eszEightBytesPtr    elementSize = 6
	eszComposite elementSize = 7
)

func decodeTag(word uint64) pointerTag { return pointerTag(word & 0x3) }

func isNullPointer(word uint64) bool { return word == 0 }

// structPointer decodes a struct-pointer word into its offset (words,
// relative to the word immediately following the pointer itself),
// data-section word count, and pointer-section word count.
type structPointer struct {
	offset     int32
	dataWords  uint16
	ptrWords   uint16
}

func decodeStructPointer(word uint64) structPointer {
	offset := int32(word) >> 2 // arithmetic shift sign-extends
	return structPointer{
		offset:    offset,
		dataWords: uint16(word >> 32),
		ptrWords:  uint16(word >> 48),
	}
}

func encodeStructPointer(offset int32, dataWords, ptrWords uint16) uint64 {
	return uint64(uint32(offset<<2)) | uint64(dataWords)<<32 | uint64(ptrWords)<<48 | uint64(tagStruct)
}

// listPointer decodes a list-pointer word.
type listPointer struct {
	offset  int32
	size    elementSize
	count   uint32 // element count, or (for composite) word count of the tagged body
}

func decodeListPointer(word uint64) listPointer {
	offset := int32(word) >> 2
	return listPointer{
		offset: offset,
		size:   elementSize((word >> 32) & 0x7),
		count:  uint32(word >> 35),
	}
}

func encodeListPointer(offset int32, size elementSize, count uint32) uint64 {
	return uint64(uint32(offset<<2)) | uint64(size)<<32 | uint64(count)<<35 | uint64(tagList)
}

// farPointer decodes a single-far pointer word (the double-far landing-pad
// variant, tag bit 2 set, is not supported: capability/RPC content spanning
// a dedicated landing-pad segment is out of scope per the interface
// Non-goal).
type farPointer struct {
	doubleFar bool
	offset    uint32 // word offset within the target segment
	segment   uint32
}

func decodeFarPointer(word uint64) farPointer {
	return farPointer{
		doubleFar: (word>>2)&1 == 1,
		offset:    uint32(word>>3) & 0x1FFFFFFF,
		segment:   uint32(word >> 32),
	}
}

func encodeFarPointer(offset uint32, segment uint32) uint64 {
	return uint64(offset&0x1FFFFFFF)<<3 | uint64(segment)<<32 | uint64(tagFar)
}

// byteSizeOf returns the byte width of a non-composite, non-bit,
// non-pointer list element size tag.
func byteSizeOf(sz elementSize) (int, error) {
	switch sz {
	case eszVoid:
		return 0, nil
	case eszByte:
		return 1, nil
	case eszTwoBytes:
		return 2, nil
	case eszFourBytes:
		return 4, nil
	case eszEightBytesNonPtr, eszEightBytesPtr:
		return 8, nil
	default:
		return 0, fmt.Errorf("capnp: element size tag %d has no fixed byte width", sz)
	}
}
