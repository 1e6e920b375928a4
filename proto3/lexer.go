package proto3

import (
	"fmt"
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
	tokSymbol // punctuation: { } ( ) [ ] ; , = . < >
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

// lexer scans proto3 source into tokens one at a time, grounded on the
// runeReader scanning idiom used throughout this corpus's hand-written
// scanners.
type lexer struct {
	data    []byte
	pos     int
	file    *source.File
	handler *reporter.Handler
}

func newLexer(filename string, data []byte, h *reporter.Handler) *lexer {
	return &lexer{data: data, file: source.NewFile(filename, data), handler: h}
}

func (l *lexer) posAt(offset int) source.Pos {
	return l.file.Pos(offset)
}

func (l *lexer) errorf(offset int, format string, args ...any) error {
	pos := l.posAt(offset)
	window := l.file.Window(pos.Line, pos.Col)
	err := reporter.WithWindow(reporter.Errorf(reporter.KindParse, pos, format, args...), window)
	return l.handler.HandleError(err)
}

func (l *lexer) peekByte() (byte, bool) {
	if l.pos >= len(l.data) {
		return 0, false
	}
	return l.data[l.pos], true
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
		if l.pos+1 < len(l.data) && l.data[l.pos] == '/' && l.data[l.pos+1] == '/' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		if l.pos+1 < len(l.data) && l.data[l.pos] == '/' && l.data[l.pos+1] == '*' {
			start := l.pos
			l.pos += 2
			closed := false
			for l.pos+1 < len(l.data) {
				if l.data[l.pos] == '*' && l.data[l.pos+1] == '/' {
					l.pos += 2
					closed = true
					break
				}
				l.pos++
			}
			if !closed {
				return l.errorf(start, "unterminated block comment")
			}
			continue
		}
		return nil
	}
}

// next returns the next token, or a tokEOF token at end of input.
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
	case b == '"' || b == '\'':
		return l.scanString(b)
	case isIdentStart(b):
		for l.pos < len(l.data) && isIdentCont(l.data[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: string(l.data[start:l.pos]), offset: start}, nil
	case isDigit(b) || (b == '-' && l.pos+1 < len(l.data) && isDigit(l.data[l.pos+1])) || (b == '.' && l.pos+1 < len(l.data) && isDigit(l.data[l.pos+1])):
		return l.scanNumber()
	case strings.ContainsRune("{}()[];,=.<>", rune(b)):
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

func isIdentCont(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	if l.data[l.pos] == '-' {
		l.pos++
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
	kind := tokInt
	if isFloat {
		kind = tokFloat
	}
	return token{kind: kind, text: string(l.data[start:l.pos]), offset: start}, nil
}

func (l *lexer) scanString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // opening quote
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
			esc, err := decodeEscape(l)
			if err != nil {
				return token{}, err
			}
			b.WriteRune(esc)
			continue
		}
		r, sz := utf8.DecodeRune(l.data[l.pos:])
		b.WriteRune(r)
		l.pos += sz
	}
	return token{kind: tokString, text: b.String(), offset: start}, nil
}

// decodeEscape decodes one C-style escape sequence: \a \b \f \n
// \r \t \v \? \\ \' \" \ooo \xhh. The caller has already consumed the
// leading backslash.
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
		var n int64
		fmt.Sscanf(string(l.data[hstart:l.pos]), "%x", &n)
		return rune(n), nil
	default:
		if c >= '0' && c <= '7' {
			ostart := l.pos
			for l.pos < len(l.data) && l.pos < ostart+3 && l.data[l.pos] >= '0' && l.data[l.pos] <= '7' {
				l.pos++
			}
			var n int64
			fmt.Sscanf(string(l.data[ostart:l.pos]), "%o", &n)
			return rune(n), nil
		}
		return 0, l.errorf(start, "unknown escape sequence \\%c", c)
	}
}

func isHex(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
