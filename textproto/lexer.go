// Package textproto implements the Protocol Buffers text-format grammar,
// processor, and emitter.
package textproto

import (
	"strings"
	"unicode/utf8"

	"github.com/lutaml/unibuf-go/reporter"
	"github.com/lutaml/unibuf-go/source"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokFloat
	tokString
	tokSymbol
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

// lexer scans textproto source, grounded on the same runeReader-style
// scanning idiom used by proto3's lexer.
type lexer struct {
	data    []byte
	pos     int
	file    *source.File
	handler *reporter.Handler
}

func newLexer(filename string, data []byte, h *reporter.Handler) *lexer {
	return &lexer{data: data, file: source.NewFile(filename, data), handler: h}
}

func (l *lexer) errorf(offset int, format string, args ...any) error {
	pos := l.file.Pos(offset)
	window := l.file.Window(pos.Line, pos.Col)
	return l.handler.HandleError(reporter.WithWindow(reporter.Errorf(reporter.KindParse, pos, format, args...), window))
}

func (l *lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
			l.pos++
			continue
		}
		if b == '#' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		if b == '/' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '/' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		break
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (l *lexer) next() (token, error) {
	l.skipWhitespaceAndComments()
	if l.pos >= len(l.data) {
		return token{kind: tokEOF, offset: l.pos}, nil
	}
	start := l.pos
	b := l.data[l.pos]

	switch {
	case b == '"' || b == '\'':
		return l.scanString(b)
	case isIdentStart(b):
		for l.pos < len(l.data) && isIdentCont(l.data[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: string(l.data[start:l.pos]), offset: start}, nil
	case isDigit(b) || ((b == '-' || b == '+') && l.pos+1 < len(l.data) && (isDigit(l.data[l.pos+1]) || l.data[l.pos+1] == '.')) || (b == '.' && l.pos+1 < len(l.data) && isDigit(l.data[l.pos+1])):
		return l.scanNumber()
	case strings.ContainsRune(":{}<>[];,", rune(b)):
		l.pos++
		return token{kind: tokSymbol, text: string(b), offset: start}, nil
	default:
		r, sz := utf8.DecodeRune(l.data[l.pos:])
		l.pos += sz
		return token{}, l.errorf(start, "unexpected character %q", r)
	}
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	if l.data[l.pos] == '-' || l.data[l.pos] == '+' {
		l.pos++
	}
	if l.pos+1 < len(l.data) && l.data[l.pos] == '0' && (l.data[l.pos+1] == 'x' || l.data[l.pos+1] == 'X') {
		l.pos += 2
		for l.pos < len(l.data) && isHexDigit(l.data[l.pos]) {
			l.pos++
		}
		return token{kind: tokInt, text: string(l.data[start:l.pos]), offset: start}, nil
	}
	for l.pos < len(l.data) && isDigit(l.data[l.pos]) {
		l.pos++
	}
	isFloat := false
	if l.pos < len(l.data) && l.data[l.pos] == '.' {
		isFloat = true
		l.pos++
		for l.pos < len(l.data) && isDigit(l.data[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.data) && (l.data[l.pos] == 'e' || l.data[l.pos] == 'E') {
		isFloat = true
		l.pos++
		if l.pos < len(l.data) && (l.data[l.pos] == '+' || l.data[l.pos] == '-') {
			l.pos++
		}
		for l.pos < len(l.data) && isDigit(l.data[l.pos]) {
			l.pos++
		}
	}
	// trailing 'f'/'F' float suffix
	if l.pos < len(l.data) && (l.data[l.pos] == 'f' || l.data[l.pos] == 'F') {
		isFloat = true
		l.pos++
	}
	kind := tokInt
	if isFloat {
		kind = tokFloat
	}
	return token{kind: kind, text: string(l.data[start:l.pos]), offset: start}, nil
}

func (l *lexer) scanString(quote byte) (token, error) {
	start := l.pos
	l.pos++
	var b strings.Builder
	for {
		if l.pos >= len(l.data) {
			return token{}, l.errorf(start, "unterminated string literal")
		}
		c := l.data[l.pos]
		if c == quote {
			l.pos++
			break
		}
		if c == '\n' {
			return token{}, l.errorf(start, "unterminated string literal (newline in string)")
		}
		if c == '\\' {
			l.pos++
			if l.pos >= len(l.data) {
				return token{}, l.errorf(start, "unterminated escape sequence")
			}
			r, err := decodeEscape(l)
			if err != nil {
				return token{}, err
			}
			b.WriteRune(r)
			continue
		}
		r, sz := utf8.DecodeRune(l.data[l.pos:])
		b.WriteRune(r)
		l.pos += sz
	}
	return token{kind: tokString, text: b.String(), offset: start}, nil
}

// decodeEscape decodes one C-style escape: \a \b \f \n \r \t \v \? \\ \' \"
// \ooo \xhh.
func decodeEscape(l *lexer) (rune, error) {
	start := l.pos
	c := l.data[l.pos]
	switch c {
	case 'a':
		l.pos++
		return '\a', nil
	case 'b':
		l.pos++
		return '\b', nil
	case 'f':
		l.pos++
		return '\f', nil
	case 'n':
		l.pos++
		return '\n', nil
	case 'r':
		l.pos++
		return '\r', nil
	case 't':
		l.pos++
		return '\t', nil
	case 'v':
		l.pos++
		return '\v', nil
	case '?':
		l.pos++
		return '?', nil
	case '\\', '\'', '"':
		l.pos++
		return rune(c), nil
	case 'x':
		l.pos++
		hstart := l.pos
		for l.pos < len(l.data) && l.pos < hstart+2 && isHex(l.data[l.pos]) {
			l.pos++
		}
		if l.pos == hstart {
			return 0, l.errorf(start, `invalid \x escape: no hex digits`)
		}
		n := parseRadix(string(l.data[hstart:l.pos]), 16)
		return rune(n), nil
	default:
		if c >= '0' && c <= '7' {
			ostart := l.pos
			for l.pos < len(l.data) && l.pos < ostart+3 && l.data[l.pos] >= '0' && l.data[l.pos] <= '7' {
				l.pos++
			}
			n := parseRadix(string(l.data[ostart:l.pos]), 8)
			return rune(n), nil
		}
		return 0, l.errorf(start, "unknown escape sequence \\%c", c)
	}
}

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func parseRadix(s string, radix int64) int64 {
	var n int64
	for _, c := range s {
		var d int64
		switch {
		case c >= '0' && c <= '9':
			d = int64(c - '0')
		case c >= 'a' && c <= 'f':
			d = int64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int64(c-'A') + 10
		}
		n = n*radix + d
	}
	return n
}
