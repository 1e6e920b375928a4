package capnproto

import (
	"strconv"

	"github.com/lutaml/unibuf-go/reporter"
)

// parser is a hand-written recursive-descent parser over the .capnp grammar
// sharing the single-token-lookahead shape of proto3's parser.
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

func (p *parser) atSymbol(s string) bool { return p.cur.kind == tokSymbol && p.cur.text == s }
func (p *parser) atIdent(s string) bool  { return p.cur.kind == tokIdent && p.cur.text == s }

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

func (p *parser) expectOrdinal() (uint16, error) {
	if err := p.expectSymbol("@"); err != nil {
		return 0, err
	}
	if p.cur.kind != tokInt {
		return 0, p.lex.errorf(p.cur.offset, "expected ordinal integer, found %q", p.cur.text)
	}
	n, err := strconv.ParseUint(p.cur.text, 0, 16)
	if err != nil {
		return 0, p.lex.errorf(p.cur.offset, "invalid ordinal %q: %v", p.cur.text, err)
	}
	return uint16(n), p.advance()
}

// parseFile parses an entire .capnp document: a mandatory file id followed
// by using/struct/enum/interface/const declarations.
func (p *parser) parseFile() (*fileNode, error) {
	f := &fileNode{}
	if !p.atSymbol("@") {
		return nil, p.lex.errorf(p.cur.offset, "expected file id (@0x...;) at start of file")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.cur.kind != tokInt {
		return nil, p.lex.errorf(p.cur.offset, "expected hex file id, found %q", p.cur.text)
	}
	f.fileID = p.cur.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expectSymbol(";"); err != nil {
		return nil, err
	}

	for p.cur.kind != tokEOF {
		switch {
		case p.atIdent("using"):
			u, err := p.parseUsing()
			if err != nil {
				return nil, err
			}
			f.usings = append(f.usings, u)
		case p.atIdent("struct"):
			s, err := p.parseStruct()
			if err != nil {
				return nil, err
			}
			f.decls = append(f.decls, s)
		case p.atIdent("enum"):
			e, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			f.decls = append(f.decls, e)
		case p.atIdent("interface"):
			i, err := p.parseInterface()
			if err != nil {
				return nil, err
			}
			f.decls = append(f.decls, i)
		case p.atIdent("const"):
			c, err := p.parseConst()
			if err != nil {
				return nil, err
			}
			f.decls = append(f.decls, c)
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

func (p *parser) parseUsing() (usingNode, error) {
	if err := p.advance(); err != nil { // "using"
		return usingNode{}, err
	}
	alias, err := p.expectIdent()
	if err != nil {
		return usingNode{}, err
	}
	if err := p.expectSymbol("="); err != nil {
		return usingNode{}, err
	}
	if err := p.expectSymbolIdent("import"); err != nil {
		return usingNode{}, err
	}
	path, err := p.expectString()
	if err != nil {
		return usingNode{}, err
	}
	return usingNode{alias: alias, importPath: path}, p.expectSymbol(";")
}

// expectSymbolIdent consumes an identifier token with the exact given text
// (used for the contextual "import" keyword in a using declaration).
func (p *parser) expectSymbolIdent(s string) error {
	if !p.atIdent(s) {
		return p.lex.errorf(p.cur.offset, "expected %q, found %q", s, p.cur.text)
	}
	return p.advance()
}

func (p *parser) parseType() (typeNode, error) {
	name, err := p.expectIdent()
	if err != nil {
		return typeNode{}, err
	}
	if name == "List" && p.atSymbol("(") {
		if err := p.advance(); err != nil {
			return typeNode{}, err
		}
		elem, err := p.parseType()
		if err != nil {
			return typeNode{}, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return typeNode{}, err
		}
		return typeNode{isList: true, elem: &elem}, nil
	}
	return typeNode{name: name}, nil
}

func (p *parser) parseLiteral() (literalNode, error) {
	switch {
	case p.cur.kind == tokString:
		s := p.cur.text
		return literalNode{kind: literalString, str: s}, p.advance()
	case p.cur.kind == tokInt:
		n, err := strconv.ParseInt(p.cur.text, 0, 64)
		if err != nil {
			return literalNode{}, p.lex.errorf(p.cur.offset, "invalid integer literal %q: %v", p.cur.text, err)
		}
		return literalNode{kind: literalInt, i: n}, p.advance()
	case p.cur.kind == tokFloat:
		f, err := strconv.ParseFloat(p.cur.text, 64)
		if err != nil {
			return literalNode{}, p.lex.errorf(p.cur.offset, "invalid float literal %q: %v", p.cur.text, err)
		}
		return literalNode{kind: literalFloat, f: f}, p.advance()
	case p.atIdent("true"):
		return literalNode{kind: literalBool, b: true}, p.advance()
	case p.atIdent("false"):
		return literalNode{kind: literalBool, b: false}, p.advance()
	case p.cur.kind == tokIdent:
		s := p.cur.text
		return literalNode{kind: literalIdent, str: s}, p.advance()
	default:
		return literalNode{}, p.lex.errorf(p.cur.offset, "expected a literal value, found %q", p.cur.text)
	}
}

func (p *parser) parseAnnotations() ([]annotationNode, error) {
	var out []annotationNode
	for p.atSymbol("$") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		a := annotationNode{name: name}
		if p.atSymbol("(") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			lit, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			a.value = lit
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
		}
		out = append(out, a)
	}
	return out, nil
}

func (p *parser) parseStruct() (*structNode, error) {
	if err := p.advance(); err != nil { // "struct"
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	s := &structNode{name: name}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	for !p.atSymbol("}") {
		switch {
		case p.atSymbol(";"):
			if err := p.advance(); err != nil {
				return nil, err
			}
		case p.atIdent("struct"):
			nested, err := p.parseStruct()
			if err != nil {
				return nil, err
			}
			s.nested = append(s.nested, nested)
		case p.atIdent("enum"):
			nested, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			s.nested = append(s.nested, nested)
		case p.atIdent("union"):
			u, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			s.unions = append(s.unions, u)
		default:
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			ord, err := p.expectOrdinalAfterName()
			if err != nil {
				return nil, err
			}
			if err := p.expectSymbol(":"); err != nil {
				return nil, err
			}
			if p.atIdent("group") {
				g, err := p.parseGroupBody(name, ord)
				if err != nil {
					return nil, err
				}
				s.groups = append(s.groups, g)
				continue
			}
			fld, err := p.finishField(name, ord)
			if err != nil {
				return nil, err
			}
			s.fields = append(s.fields, fld)
		}
	}
	return s, p.expectSymbol("}")
}

// expectOrdinalAfterName parses the "@N" following a field/group name; the
// leading identifier has already been consumed by the caller.
func (p *parser) expectOrdinalAfterName() (uint16, error) {
	return p.expectOrdinal()
}

func (p *parser) parseGroupBody(name string, ordinal uint16) (groupNode, error) {
	if err := p.advance(); err != nil { // "group"
		return groupNode{}, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return groupNode{}, err
	}
	g := groupNode{name: name, ordinal: ordinal}
	for !p.atSymbol("}") {
		if p.atSymbol(";") {
			if err := p.advance(); err != nil {
				return groupNode{}, err
			}
			continue
		}
		fname, err := p.expectIdent()
		if err != nil {
			return groupNode{}, err
		}
		ord, err := p.expectOrdinal()
		if err != nil {
			return groupNode{}, err
		}
		if err := p.expectSymbol(":"); err != nil {
			return groupNode{}, err
		}
		fld, err := p.finishField(fname, ord)
		if err != nil {
			return groupNode{}, err
		}
		g.fields = append(g.fields, fld)
	}
	return g, p.expectSymbol("}")
}

func (p *parser) parseUnion() (unionNode, error) {
	if err := p.advance(); err != nil { // "union"
		return unionNode{}, err
	}
	if err := p.expectSymbol("{"); err != nil {
		return unionNode{}, err
	}
	u := unionNode{}
	for !p.atSymbol("}") {
		if p.atSymbol(";") {
			if err := p.advance(); err != nil {
				return unionNode{}, err
			}
			continue
		}
		fname, err := p.expectIdent()
		if err != nil {
			return unionNode{}, err
		}
		ord, err := p.expectOrdinal()
		if err != nil {
			return unionNode{}, err
		}
		if err := p.expectSymbol(":"); err != nil {
			return unionNode{}, err
		}
		fld, err := p.finishField(fname, ord)
		if err != nil {
			return unionNode{}, err
		}
		u.fields = append(u.fields, fld)
	}
	return u, p.expectSymbol("}")
}

// finishField parses a field's type, optional default value, and optional
// annotations, given that "name @ordinal :" has already been consumed.
func (p *parser) finishField(name string, ordinal uint16) (fieldNode, error) {
	typ, err := p.parseType()
	if err != nil {
		return fieldNode{}, err
	}
	f := fieldNode{name: name, ordinal: ordinal, typ: typ}
	if p.atSymbol("=") {
		if err := p.advance(); err != nil {
			return fieldNode{}, err
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return fieldNode{}, err
		}
		f.def = lit
	}
	annots, err := p.parseAnnotations()
	if err != nil {
		return fieldNode{}, err
	}
	f.annots = annots
	return f, p.expectSymbol(";")
}

func (p *parser) parseEnum() (*enumNode, error) {
	if err := p.advance(); err != nil { // "enum"
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
		ord, err := p.expectOrdinal()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		e.values = append(e.values, enumValueNode{name: vname, ordinal: ord})
	}
	return e, p.expectSymbol("}")
}

func (p *parser) parseInterface() (*interfaceNode, error) {
	if err := p.advance(); err != nil { // "interface"
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	i := &interfaceNode{name: name}
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
		mname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		ord, err := p.expectOrdinal()
		if err != nil {
			return nil, err
		}
		m := methodNode{name: mname, ordinal: ord}
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		if !p.atSymbol(")") {
			pt, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			m.paramType = pt
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		if p.atSymbol("-") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.expectSymbolIdentArrow(); err != nil {
				return nil, err
			}
			if err := p.expectSymbol("("); err != nil {
				return nil, err
			}
			if !p.atSymbol(")") {
				rt, err := p.expectIdent()
				if err != nil {
					return nil, err
				}
				m.resultType = rt
			}
			if err := p.expectSymbol(")"); err != nil {
				return nil, err
			}
		}
		if err := p.expectSymbol(";"); err != nil {
			return nil, err
		}
		i.methods = append(i.methods, m)
	}
	return i, p.expectSymbol("}")
}

// expectSymbolIdentArrow consumes the ">" completing a "->" method-result
// arrow; the leading "-" has already been consumed by the caller.
func (p *parser) expectSymbolIdentArrow() error {
	return p.expectSymbol(">")
}

func (p *parser) parseConst() (*constNode, error) {
	if err := p.advance(); err != nil { // "const"
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("="); err != nil {
		return nil, err
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return &constNode{name: name, typ: typ, value: lit}, p.expectSymbol(";")
}
