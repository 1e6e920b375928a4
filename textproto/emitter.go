package textproto

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/lutaml/unibuf-go/value"
)

// inlineListThreshold is the scalar-list length below which Emit renders the
// list inline (`[a, b]`) instead of one element per line. A list with a
// string element longer than 40 grapheme clusters is never inline (see
// scalarListIsShort).
const inlineListThreshold = 5

// Emit renders m as text-format source, following these emitter rules:
// two-space indentation per level, quoted/escaped strings, verbatim
// numbers/booleans, repeated fields as repeated lines, and short scalar
// lists rendered inline.
func Emit(m *value.Message) string {
	var b strings.Builder
	emitFields(&b, m, 0)
	return b.String()
}

func emitFields(b *strings.Builder, m *value.Message, indent int) {
	for _, f := range m.Fields() {
		emitField(b, f, indent)
	}
}

func emitField(b *strings.Builder, f value.Field, indent int) {
	pad := strings.Repeat("  ", indent)
	switch f.Value.Kind() {
	case value.KindMessage:
		fmt.Fprintf(b, "%s%s {\n", pad, f.Name)
		emitFields(b, f.Value.Message(), indent+1)
		fmt.Fprintf(b, "%s}\n", pad)
	case value.KindList:
		emitList(b, f.Name, f.Value.List(), indent)
	case value.KindMap:
		me := f.Value.MapEntry()
		fmt.Fprintf(b, "%s%s {\n", pad, f.Name)
		fmt.Fprintf(b, "%s  key: %s\n", pad, emitScalar(me.Key))
		fmt.Fprintf(b, "%s  value: %s\n", pad, emitScalar(me.Value))
		fmt.Fprintf(b, "%s}\n", pad)
	default:
		fmt.Fprintf(b, "%s%s: %s\n", pad, f.Name, emitScalar(f.Value))
	}
}

func emitList(b *strings.Builder, name string, elems []value.Value, indent int) {
	pad := strings.Repeat("  ", indent)
	if len(elems) == 0 {
		fmt.Fprintf(b, "%s%s: []\n", pad, name)
		return
	}
	if len(elems) > 0 && elems[0].Kind() == value.KindMessage {
		for _, e := range elems {
			fmt.Fprintf(b, "%s%s {\n", pad, name)
			emitFields(b, e.Message(), indent+1)
			fmt.Fprintf(b, "%s}\n", pad)
		}
		return
	}
	if scalarListIsShort(elems) {
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = emitScalar(e)
		}
		fmt.Fprintf(b, "%s%s: [%s]\n", pad, name, strings.Join(parts, ", "))
		return
	}
	fmt.Fprintf(b, "%s%s: [\n", pad, name)
	inner := strings.Repeat("  ", indent+1)
	for i, e := range elems {
		sep := ","
		if i == len(elems)-1 {
			sep = ""
		}
		fmt.Fprintf(b, "%s%s%s\n", inner, emitScalar(e), sep)
	}
	fmt.Fprintf(b, "%s]\n", pad)
}

// scalarListIsShort measures string elements in grapheme clusters (via
// uniseg) rather than bytes, so multi-byte UTF-8 literals don't distort the
// inline-vs-multiline threshold.
func scalarListIsShort(elems []value.Value) bool {
	if len(elems) >= inlineListThreshold {
		return false
	}
	for _, e := range elems {
		if e.Kind() == value.KindString && uniseg.GraphemeClusterCount(e.String()) > 40 {
			return false
		}
	}
	return true
}

func emitScalar(v value.Value) string {
	switch v.Kind() {
	case value.KindNull:
		return `""`
	case value.KindString:
		return quoteString(v.String())
	case value.KindInt:
		return strconv.FormatInt(v.Int(), 10)
	case value.KindFloat:
		return strconv.FormatFloat(v.Float(), 'g', -1, 64)
	case value.KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	default:
		return `""`
	}
}

// quoteString escapes \\ \" \n \t \r and wraps the result in double quotes.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
