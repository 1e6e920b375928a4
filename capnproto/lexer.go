package capnproto

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
	tokInt   // decimal or 0x-prefixed hex
	tokFloat
	tokString
	tokSymbol // : ; @ $ ( ) [ ] { } , = . * - >
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

// lexer scans .capnp source into tokens, grounded on the rune-scanning idiom
// shared with proto3/lexer.go.
type lexer struct {
	data    []byte
	pos     int
	file    *source.File
	handler *reporter.Handler
}

func newLexer(filename string, data []byte, h *reporter.Handler) *lexer {
	return &lexer{data: data, file: source.NewFile(filename, data), handler: h}
}

func (l *lexer) posAt(offset int) source.Pos { return l.file.Pos(offset) }

func (l *lexer) errorf(offset int, format string, args ...any) error {
	pos := l.posAt(offset)
	window := l.file.Window(pos.Line, pos.Col)
	err := reporter.WithWindow(reporter.Errorf(reporter.KindParse, pos, format, args...), window)
	return l.handler.HandleError(err)
}

func (l *lexer) skipWhitespaceAndComments() error {
	for {
		for l.pos < len(l.data) {
			b := l.data[l.pos]
			if b == ' ' || b == '\t' || b == '\r' || b == '\n' {
				l.pos++
				continue
			}
			break
		}
		if l.pos < len(l.data) && l.data[l.pos] == '#' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		return nil
	}
}

func (l *lexer) next() (token, error) {
	if err := l.skipWhitespaceAndComments(); err != nil {
		return token{}, err
	}
	if l.pos >= len(l.data) {
		return token{kind: tokEOF, offset: l.pos}, nil
	}
	start := l.pos
	b := l.data[l.pos]

	switch {
	case b == '"':
		return l.scanString()
	case isIdentStart(b):
		for l.pos < len(l.data) && isIdentCont(l.data[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: string(l.data[start:l.pos]), offset: start}, nil
	case isDigit(b) || (b == '-' && l.pos+1 < len(l.data) && isDigit(l.data[l.pos+1])):
		return l.scanNumber()
	case strings.ContainsRune(":;@$()[]{},=.*->", rune(b)):
		l.pos++
		return token{kind: tokSymbol, text: string(b), offset: start}, nil
	default:
		r, sz := utf8.DecodeRune(l.data[l.pos:])
		l.pos += sz
		return token{}, l.errorf(start, "unexpected character %q", r)
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool { return isIdentStart(b) || isDigit(b) }

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	if l.data[l.pos] == '-' {
		l.pos++
	}
	if l.pos+1 < len(l.data) && l.data[l.pos] == '0' && (l.data[l.pos+1] == 'x' || l.data[l.pos+1] == 'X') {
		l.pos += 2
		for l.pos < len(l.data) && isHexDigit(l.data[l.pos]) {
			l.pos++
		}
		return token{kind: tokInt, text: string(l.data[start:l.pos]), offset: start}, nil
	}
	isFloat := false
	for l.pos < len(l.data) && isDigit(l.data[l.pos]) {
		l.pos++
	}
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
	kind := tokInt
	if isFloat {
		kind = tokFloat
	}
	return token{kind: kind, text: string(l.data[start:l.pos]), offset: start}, nil
}

func (l *lexer) scanString() (token, error) {
	start := l.pos
	l.pos++
	var b strings.Builder
	for {
		if l.pos >= len(l.data) {
			return token{}, l.errorf(start, "unterminated string literal")
		}
		c := l.data[l.pos]
		if c == '"' {
			l.pos++
			break
		}
		if c == '\n' {
			return token{}, l.errorf(start, "unterminated string literal (newline in string)")
		}
		if c == '\\' && l.pos+1 < len(l.data) {
			l.pos++
			esc := l.data[l.pos]
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"', '\\':
				b.WriteByte(esc)
			default:
				b.WriteByte(esc)
			}
			l.pos++
			continue
		}
		r, sz := utf8.DecodeRune(l.data[l.pos:])
		b.WriteRune(r)
		l.pos += sz
	}
	return token{kind: tokString, text: b.String(), offset: start}, nil
}
