package flatbuffers

import (
	"strconv"

	"github.com/lutaml/unibuf-go/reporter"
)

// parser is a hand-written recursive-descent parser over the .fbs grammar
// sharing the single-token-lookahead shape of proto3's parser and
// capnproto/parser.go.
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

// parseFile parses an entire .fbs document.
func (p *parser) parseFile() (*fileNode, error) {
	f := &fileNode{}
	for p.cur.kind != tokEOF {
		switch {
		case p.atIdent("namespace"):
			ns, err := p.parseNamespace()
			if err != nil {
				return nil, err
			}
			f.namespace = ns
		case p.atIdent("include"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			path, err := p.expectString()
			if err != nil {
				return nil, err
			}
			f.includes = append(f.includes, path)
			if err := p.expectSymbol(";"); err != nil {
				return nil, err
			}
		case p.atIdent("attribute"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expectString()
			if err != nil {
				return nil, err
			}
			f.attributes = append(f.attributes, name)
			if err := p.expectSymbol(";"); err != nil {
				return nil, err
			}
		case p.atIdent("table"):
			t, err := p.parseTable()
			if err != nil {
				return nil, err
			}
			f.decls = append(f.decls, t)
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
		case p.atIdent("union"):
			u, err := p.parseUnion()
			if err != nil {
				return nil, err
			}
			f.decls = append(f.decls, u)
		case p.atIdent("root_type"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			f.rootType = name
			if err := p.expectSymbol(";"); err != nil {
				return nil, err
			}
		case p.atIdent("file_identifier"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			s, err := p.expectString()
			if err != nil {
				return nil, err
			}
			f.fileIdentifier = s
			if err := p.expectSymbol(";"); err != nil {
				return nil, err
			}
		case p.atIdent("file_extension"):
			if err := p.advance(); err != nil {
				return nil, err
			}
			s, err := p.expectString()
			if err != nil {
				return nil, err
			}
			f.fileExtension = s
			if err := p.expectSymbol(";"); err != nil {
				return nil, err
			}
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

func (p *parser) parseNamespace() (string, error) {
	if err := p.advance(); err != nil { // "namespace"
		return "", err
	}
	var parts []string
	name, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	parts = append(parts, name)
	for p.atSymbol(".") {
		if err := p.advance(); err != nil {
			return "", err
		}
		name, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		parts = append(parts, name)
	}
	if err := p.expectSymbol(";"); err != nil {
		return "", err
	}
	dotted := parts[0]
	for _, s := range parts[1:] {
		dotted += "." + s
	}
	return dotted, nil
}

func (p *parser) parseType() (typeNode, error) {
	if p.atSymbol("[") {
		if err := p.advance(); err != nil {
			return typeNode{}, err
		}
		elem, err := p.parseType()
		if err != nil {
			return typeNode{}, err
		}
		if err := p.expectSymbol("]"); err != nil {
			return typeNode{}, err
		}
		return typeNode{isVector: true, elem: &elem}, nil
	}
	name, err := p.expectIdent()
	if err != nil {
		return typeNode{}, err
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

// parseMetadata parses an optional `(key:value, flag, ...)` attribute list.
func (p *parser) parseMetadata() (metadataNode, error) {
	var m metadataNode
	if !p.atSymbol("(") {
		return m, nil
	}
	if err := p.advance(); err != nil {
		return m, err
	}
	for !p.atSymbol(")") {
		key, err := p.expectIdent()
		if err != nil {
			return m, err
		}
		e := metadataEntry{key: key}
		if p.atSymbol(":") {
			if err := p.advance(); err != nil {
				return m, err
			}
			lit, err := p.parseLiteral()
			if err != nil {
				return m, err
			}
			e.value = literalText(lit)
			e.isSet = true
		}
		m.entries = append(m.entries, e)
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return m, err
			}
			continue
		}
		break
	}
	return m, p.expectSymbol(")")
}

func literalText(l literalNode) string {
	switch l.kind {
	case literalString, literalIdent:
		return l.str
	case literalInt:
		return strconv.FormatInt(l.i, 10)
	case literalFloat:
		return strconv.FormatFloat(l.f, 'g', -1, 64)
	case literalBool:
		return strconv.FormatBool(l.b)
	default:
		return ""
	}
}

func (p *parser) parseField() (fieldNode, error) {
	name, err := p.expectIdent()
	if err != nil {
		return fieldNode{}, err
	}
	if err := p.expectSymbol(":"); err != nil {
		return fieldNode{}, err
	}
	typ, err := p.parseType()
	if err != nil {
		return fieldNode{}, err
	}
	f := fieldNode{name: name, typ: typ}
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
	meta, err := p.parseMetadata()
	if err != nil {
		return fieldNode{}, err
	}
	f.metadata = meta
	return f, p.expectSymbol(";")
}

func (p *parser) parseTable() (*tableNode, error) {
	if err := p.advance(); err != nil { // "table"
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	t := &tableNode{name: name}
	meta, err := p.parseMetadata()
	if err != nil {
		return nil, err
	}
	t.metadata = meta
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
		fld, err := p.parseField()
		if err != nil {
			return nil, err
		}
		t.fields = append(t.fields, fld)
	}
	return t, p.expectSymbol("}")
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
	meta, err := p.parseMetadata()
	if err != nil {
		return nil, err
	}
	s.metadata = meta
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
		fld, err := p.parseField()
		if err != nil {
			return nil, err
		}
		s.fields = append(s.fields, fld)
	}
	return s, p.expectSymbol("}")
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
	if p.atSymbol(":") {
		if err := p.advance(); err != nil {
			return nil, err
		}
		u, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		e.underlying = u
	}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	for !p.atSymbol("}") {
		vname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		ev := enumValueNode{name: vname}
		if p.atSymbol("=") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.cur.kind != tokInt {
				return nil, p.lex.errorf(p.cur.offset, "expected integer enum value, found %q", p.cur.text)
			}
			n, err := strconv.ParseInt(p.cur.text, 0, 64)
			if err != nil {
				return nil, p.lex.errorf(p.cur.offset, "invalid enum value %q: %v", p.cur.text, err)
			}
			ev.value = n
			ev.hasExpl = true
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		e.values = append(e.values, ev)
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return e, p.expectSymbol("}")
}

func (p *parser) parseUnion() (*unionNode, error) {
	if err := p.advance(); err != nil { // "union"
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	u := &unionNode{name: name}
	if err := p.expectSymbol("{"); err != nil {
		return nil, err
	}
	for !p.atSymbol("}") {
		mname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		u.members = append(u.members, mname)
		if p.atSymbol(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	return u, p.expectSymbol("}")
}
