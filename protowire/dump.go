package protowire

import (
	"fmt"
	"strings"
)

// Dump renders a schema-free, human-readable disassembly of raw wire-format
// bytes: one line per field, showing its tag, field number, wire type, and
// decoded scalar (or the raw byte length for length-delimited values). It is
// a debugging aid, not a codec path, and does not require a schema.
func Dump(data []byte) string {
	var b strings.Builder
	dump(&b, data, 0)
	return b.String()
}

func dump(b *strings.Builder, data []byte, indent int) {
	pad := strings.Repeat("  ", indent)
	pos := 0
	for pos < len(data) {
		tag, n := ConsumeVarint(data[pos:])
		if n == 0 {
			fmt.Fprintf(b, "%s<truncated tag>\n", pad)
			return
		}
		pos += n
		fieldNumber, wt := DecodeTag(tag)
		switch wt {
		case TypeVarint:
			u, vn := ConsumeVarint(data[pos:])
			if vn == 0 {
				fmt.Fprintf(b, "%s%d: <truncated varint>\n", pad, fieldNumber)
				return
			}
			pos += vn
			fmt.Fprintf(b, "%s%d: VARINT %d\n", pad, fieldNumber, u)
		case TypeI32:
			if pos+4 > len(data) {
				fmt.Fprintf(b, "%s%d: <truncated i32>\n", pad, fieldNumber)
				return
			}
			fmt.Fprintf(b, "%s%d: I32 %x\n", pad, fieldNumber, data[pos:pos+4])
			pos += 4
		case TypeI64:
			if pos+8 > len(data) {
				fmt.Fprintf(b, "%s%d: <truncated i64>\n", pad, fieldNumber)
				return
			}
			fmt.Fprintf(b, "%s%d: I64 %x\n", pad, fieldNumber, data[pos:pos+8])
			pos += 8
		case TypeLen:
			ln, vn := ConsumeVarint(data[pos:])
			if vn == 0 || uint64(len(data)-pos-vn) < ln {
				fmt.Fprintf(b, "%s%d: <truncated len>\n", pad, fieldNumber)
				return
			}
			pos += vn
			fmt.Fprintf(b, "%s%d: LEN %d bytes\n", pad, fieldNumber, ln)
			pos += int(ln)
		default:
			fmt.Fprintf(b, "%s%d: <unsupported wire type %d>\n", pad, fieldNumber, wt)
			return
		}
	}
}
