package capnproto

import (
	"github.com/lutaml/unibuf-go/capnpschema"
)

// process converts a parsed AST into the resolved schema model. Ordinal
// uniqueness is checked afterwards by capnpschema.Schema.Validate, called by
// ParseSchema; user type names are not checked against the schema's
// declarations.
func process(f *fileNode) *capnpschema.Schema {
	s := &capnpschema.Schema{FileID: f.fileID}
	for _, u := range f.usings {
		s.Usings = append(s.Usings, capnpschema.Using{Alias: u.alias, ImportPath: u.importPath})
	}
	for _, d := range f.decls {
		switch n := d.(type) {
		case *structNode:
			s.Structs = append(s.Structs, processStruct(n))
		case *enumNode:
			s.Enums = append(s.Enums, processEnum(n))
		case *interfaceNode:
			s.Interfaces = append(s.Interfaces, processInterface(n))
		case *constNode:
			s.Constants = append(s.Constants, processConst(n))
		}
	}
	return s
}

func processType(t typeNode) capnpschema.FieldType {
	if t.isList {
		elem := processType(*t.elem)
		return capnpschema.FieldType{Kind: capnpschema.KindList, ElementType: &elem}
	}
	if capnpschema.IsPrimitiveName(t.name) {
		return capnpschema.FieldType{Kind: capnpschema.KindPrimitive, Primitive: capnpschema.Primitive(t.name)}
	}
	return capnpschema.FieldType{Kind: capnpschema.KindUser, UserType: t.name}
}

func processLiteral(l literalNode) any {
	switch l.kind {
	case literalString, literalIdent:
		return l.str
	case literalInt:
		return l.i
	case literalFloat:
		return l.f
	case literalBool:
		return l.b
	default:
		return nil
	}
}

func processAnnotations(in []annotationNode) []capnpschema.Annotation {
	var out []capnpschema.Annotation
	for _, a := range in {
		out = append(out, capnpschema.Annotation{Name: a.name, Value: processLiteral(a.value)})
	}
	return out
}

func processField(f fieldNode) *capnpschema.FieldDef {
	return &capnpschema.FieldDef{
		Name:    f.name,
		Ordinal: f.ordinal,
		Type:    processType(f.typ),
		Default: processLiteral(f.def),
	}
}

func processStruct(n *structNode) *capnpschema.StructDef {
	st := &capnpschema.StructDef{Name: n.name, Annotations: processAnnotations(n.annots)}
	for _, f := range n.fields {
		st.Fields = append(st.Fields, processField(f))
	}
	for _, u := range n.unions {
		ud := &capnpschema.UnionDef{}
		for _, f := range u.fields {
			ud.Fields = append(ud.Fields, processField(f))
		}
		st.Unions = append(st.Unions, ud)
	}
	for _, g := range n.groups {
		gd := &capnpschema.GroupDef{Name: g.name, Ordinal: g.ordinal}
		for _, f := range g.fields {
			gd.Fields = append(gd.Fields, processField(f))
		}
		st.Groups = append(st.Groups, gd)
	}
	for _, nd := range n.nested {
		switch nn := nd.(type) {
		case *structNode:
			st.NestedStructs = append(st.NestedStructs, processStruct(nn))
		case *enumNode:
			st.NestedEnums = append(st.NestedEnums, processEnum(nn))
		}
	}
	return st
}

func processEnum(n *enumNode) *capnpschema.EnumDef {
	e := &capnpschema.EnumDef{Name: n.name}
	for _, v := range n.values {
		e.Values = append(e.Values, capnpschema.EnumValue{Name: v.name, Ordinal: v.ordinal})
	}
	return e
}

func processInterface(n *interfaceNode) *capnpschema.InterfaceDef {
	i := &capnpschema.InterfaceDef{Name: n.name}
	for _, m := range n.methods {
		i.Methods = append(i.Methods, &capnpschema.MethodDef{
			Name: m.name, Ordinal: m.ordinal, ParamType: m.paramType, ResultType: m.resultType,
		})
	}
	return i
}

func processConst(n *constNode) *capnpschema.ConstDef {
	return &capnpschema.ConstDef{Name: n.name, Type: processType(n.typ), Value: processLiteral(n.value)}
}
