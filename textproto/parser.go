package textproto

import (
	"strconv"
	"strings"

	"github.com/lutaml/unibuf-go/reporter"
	"github.com/lutaml/unibuf-go/value"
)

// parser is a hand-written recursive-descent parser over the text-format
// grammar.
type parser struct {
	lex *lexer
	cur token
	h   *reporter.Handler
}

func newParser(l *lexer) (*parser, error) {
	p := &parser{lex: l, h: l.handler}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *parser) atSymbol(s string) bool {
	return p.cur.kind == tokSymbol && p.cur.text == s
}

// parseDocument parses the whole file: a sequence of fields, each "a
// document is a sequence of fields".
func (p *parser) parseDocument() (*value.Message, error) {
	m := value.NewMessage()
	for p.cur.kind != tokEOF {
		if err := p.parseField(m); err != nil {
			return nil, err
		}
		if p.atSymbol(";") || p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// parseField parses one `name: scalar` or `name [':'] (message | message
// list)` entry and appends it to m.
func (p *parser) parseField(m *value.Message) error {
	if p.cur.kind != tokIdent {
		return p.lex.errorf(p.cur.offset, "expected field name, found %q", p.cur.text)
	}
	name := p.cur.text
	if err := p.advance(); err != nil {
		return err
	}

	if p.atSymbol(":") {
		if err := p.advance(); err != nil {
			return err
		}
		if p.atSymbol("[") {
			return p.parseBracketedValue(m, name)
		}
		v, err := p.parseScalar()
		if err != nil {
			return err
		}
		m.Append(name, v)
		return nil
	}

	// No colon: must be a message value (braces required, colon optional
	// ) or a bracketed list of message values.
	switch {
	case p.atSymbol("{") || p.atSymbol("<"):
		sub, err := p.parseMessageValue()
		if err != nil {
			return err
		}
		m.Append(name, value.NewMessageValue(sub))
		return nil
	case p.atSymbol("["):
		return p.parseBracketedValue(m, name)
	default:
		return p.lex.errorf(p.cur.offset, "expected ':' or '{' after field name %q, found %q", name, p.cur.text)
	}
}

// parseBracketedValue parses `[ ... ]` after a field name, dispatching to a
// scalar list or a message-value list depending on the first element.
func (p *parser) parseBracketedValue(m *value.Message, name string) error {
	if err := p.advance(); err != nil { // consume '['
		return err
	}
	if p.atSymbol("]") {
		m.Append(name, value.NewList(nil))
		return p.advance()
	}
	if p.atSymbol("{") || p.atSymbol("<") {
		for {
			sub, err := p.parseMessageValue()
			if err != nil {
				return err
			}
			m.Append(name, value.NewMessageValue(sub))
			if p.atSymbol(",") {
				if err := p.advance(); err != nil {
					return err
				}
				continue
			}
			break
		}
		return p.expectSymbol("]")
	}
	var vals []value.Value
	for {
		v, err := p.parseScalar()
		if err != nil {
			return err
		}
		vals = append(vals, v)
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return err
			}
			continue
		}
		break
	}
	if err := p.expectSymbol("]"); err != nil {
		return err
	}
	m.Append(name, value.NewList(vals))
	return nil
}

func (p *parser) expectSymbol(s string) error {
	if !p.atSymbol(s) {
		return p.lex.errorf(p.cur.offset, "expected %q, found %q", s, p.cur.text)
	}
	return p.advance()
}

func (p *parser) parseMessageValue() (*value.Message, error) {
	closeSym := "}"
	if p.atSymbol("<") {
		closeSym = ">"
	}
	if err := p.advance(); err != nil { // consume '{' or '<'
		return nil, err
	}
	sub := value.NewMessage()
	for !p.atSymbol(closeSym) {
		if err := p.parseField(sub); err != nil {
			return nil, err
		}
		if p.atSymbol(";") || p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return sub, p.expectSymbol(closeSym)
}

// parseScalar parses one scalar_value: string (with adjacent concatenation),
// number (with optional leading '-'), or identifier (bool/enum symbol).
func (p *parser) parseScalar() (value.Value, error) {
	switch p.cur.kind {
	case tokString:
		var b strings.Builder
		b.WriteString(p.cur.text)
		if err := p.advance(); err != nil {
			return value.Value{}, err
		}
		for p.cur.kind == tokString {
			b.WriteString(p.cur.text)
			if err := p.advance(); err != nil {
				return value.Value{}, err
			}
		}
		return value.NewString(b.String()), nil
	case tokInt:
		n, err := strconv.ParseInt(p.cur.text, 0, 64)
		if err != nil {
			return value.Value{}, p.lex.errorf(p.cur.offset, "invalid integer literal %q: %v", p.cur.text, err)
		}
		return value.NewInt(n), p.advance()
	case tokFloat:
		text := strings.TrimRight(p.cur.text, "fF")
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return value.Value{}, p.lex.errorf(p.cur.offset, "invalid float literal %q: %v", p.cur.text, err)
		}
		return value.NewFloat(f), p.advance()
	case tokIdent:
		text := p.cur.text
		lower := strings.ToLower(text)
		if err := p.advance(); err != nil {
			return value.Value{}, err
		}
		switch lower {
		case "true", "t":
			return value.NewBool(true), nil
		case "false", "f":
			return value.NewBool(false), nil
		default:
			return value.NewString(text), nil
		}
	default:
		return value.Value{}, p.lex.errorf(p.cur.offset, "expected scalar value, found %q", p.cur.text)
	}
}
