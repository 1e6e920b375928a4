package proto3

import (
	"strconv"
	"strings"

	"github.com/lutaml/unibuf-go/reporter"
)

// parser is a hand-written recursive-descent parser over the proto3
// grammar. It holds one token of lookahead.
type parser struct {
	lex  *lexer
	cur  token
	h    *reporter.Handler
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

func (p *parser) atIdent(s string) bool {
	return p.cur.kind == tokIdent && p.cur.text == s
}

func (p *parser) expectSymbol(s string) error {
	if !p.atSymbol(s) {
		return p.lex.errorf(p.cur.offset, "expected %q, found %q", s, p.cur.text)
	}
	return p.advance()
}

func (p *parser) expectIdent() (string, error) {
	if p.cur.kind != tokIdent {
		return "", p.lex.errorf(p.cur.offset, "expected identifier, found %q", p.cur.text)
	}
	s := p.cur.text
	return s, p.advance()
}

func (p *parser) expectString() (string, error) {
	if p.cur.kind != tokString {
		return "", p.lex.errorf(p.cur.offset, "expected string literal, found %q", p.cur.text)
	}
	s := p.cur.text
	return s, p.advance()
}

func (p *parser) expectInt() (int64, error) {
	if p.cur.kind != tokInt {
		return 0, p.lex.errorf(p.cur.offset, "expected integer literal, found %q", p.cur.text)
	}
	n, err := strconv.ParseInt(p.cur.text, 10, 64)
	if err != nil {
		return 0, p.lex.errorf(p.cur.offset, "invalid integer literal %q: %v", p.cur.text, err)
	}
	return n, p.advance()
}

// parseFile parses an entire .proto document: the top-level
// "Top-level productions".
func (p *parser) parseFile() (*fileNode, error) {
	f := &fileNode{syntax: "proto3"}
	for p.cur.kind != tokEOF {
		switch {
		case p.atIdent("syntax"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.expectSymbol("="); err != nil {
				return nil, err
			}
			syn, err := p.expectString()
			if err != nil {
				return nil, err
			}
			if syn != "proto3" {
				return nil, p.lex.errorf(p.cur.offset, "unsupported syntax %q, only \"proto3\" is supported", syn)
			}
			f.syntax = syn
			if err := p.expectSymbol(";"); err != nil {
				return nil, err
			}
		case p.atIdent("package"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.parseDottedName()
			if err != nil {
				return nil, err
			}
			f.pkg = name
			if err := p.expectSymbol(";"); err != nil {
				return nil, err
			}
		case p.atIdent("import"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			path, err := p.expectString()
			if err != nil {
				return nil, err
			}
			f.imports = append(f.imports, path)
			if err := p.expectSymbol(";"); err != nil {
				return nil, err
			}
		case p.atIdent("message"):
			m, err := p.parseMessage()
			if err != nil {
				return nil, err
			}
			f.decls = append(f.decls, m)
		case p.atIdent("enum"):
			e, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			f.decls = append(f.decls, e)
		case p.atSymbol(";"):
			if err := p.advance(); err != nil {
				return nil, err
			}
		default:
			return nil, p.lex.errorf(p.cur.offset, "unexpected top-level token %q", p.cur.text)
		}
	}
	return f, nil
}

func (p *parser) parseDottedName() (string, error) {
	var parts []string
	part, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	parts = append(parts, part)
	for p.atSymbol(".") {
		if err := p.advance(); err != nil {
			return "", err
		}
		part, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, "."), nil
}

func (p *parser) parseMessage() (*messageNode, error) {
	if err := p.advance(); err != nil { // consume "message"
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	m := &messageNode{name: name}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	for !p.atSymbol("}") {
		decl, err := p.parseMessageDecl()
		if err != nil {
			return nil, err
		}
		if decl != nil {
			m.decls = append(m.decls, decl)
		}
	}
	return m, p.expectSymbol("}")
}

func (p *parser) parseMessageDecl() (messageDecl, error) {
	switch {
	case p.atSymbol(";"):
		return nil, p.advance()
	case p.atIdent("message"):
		return p.parseMessage()
	case p.atIdent("enum"):
		return p.parseEnum()
	case p.atIdent("map"):
		return p.parseMapField()
	case p.atIdent("repeated"), p.atIdent("optional"):
		label := p.cur.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		return p.parseField(label)
	default:
		return p.parseField("")
	}
}

func (p *parser) parseField(label string) (*fieldNode, error) {
	typ, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("="); err != nil {
		return nil, err
	}
	num, err := p.expectInt()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &fieldNode{label: label, typ: typ, name: name, number: uint32(num)}, nil
}

func (p *parser) parseMapField() (*mapFieldNode, error) {
	if err := p.advance(); err != nil { // consume "map"
		return nil, err
	}
	if err := p.expectSymbol("<"); err != nil {
		return nil, err
	}
	keyType, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(","); err != nil {
		return nil, err
	}
	valueType, err := p.parseDottedName()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(">"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("="); err != nil {
		return nil, err
	}
	num, err := p.expectInt()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}
	return &mapFieldNode{keyType: keyType, valueType: valueType, name: name, number: uint32(num)}, nil
}

func (p *parser) parseEnum() (*enumNode, error) {
	if err := p.advance(); err != nil { // consume "enum"
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	e := &enumNode{name: name}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	for !p.atSymbol("}") {
		if p.atSymbol(";") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		vname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("="); err != nil {
			return nil, err
		}
		n, err := p.expectInt()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		e.values = append(e.values, enumValueNode{name: vname, number: int32(n)})
	}
	return e, p.expectSymbol("}")
}
