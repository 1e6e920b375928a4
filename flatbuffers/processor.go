package flatbuffers

import (
	"github.com/lutaml/unibuf-go/fbsschema"
)

// process converts a parsed AST into the resolved schema model. Enum value
// auto-numbering (previous+1, starting at 0) is resolved here.
func process(f *fileNode) *fbsschema.FbsSchema {
	s := &fbsschema.FbsSchema{
		Namespace:      f.namespace,
		Includes:       f.includes,
		Attributes:     f.attributes,
		RootType:       f.rootType,
		FileIdentifier: f.fileIdentifier,
		FileExtension:  f.fileExtension,
	}
	for _, d := range f.decls {
		switch n := d.(type) {
		case *tableNode:
			s.Tables = append(s.Tables, processTable(n))
		case *structNode:
			s.Structs = append(s.Structs, processStruct(n))
		case *enumNode:
			s.Enums = append(s.Enums, processEnum(n))
		case *unionNode:
			s.Unions = append(s.Unions, &fbsschema.UnionDef{Name: n.name, Members: n.members})
		}
	}
	return s
}

func processType(t typeNode) fbsschema.FieldType {
	if t.isVector {
		elem := processType(*t.elem)
		return fbsschema.FieldType{Kind: fbsschema.KindVector, ElementType: &elem}
	}
	if fbsschema.IsScalarName(t.name) || t.name == "string" {
		return fbsschema.FieldType{Kind: fbsschema.KindScalar, ScalarName: t.name}
	}
	return fbsschema.FieldType{Kind: fbsschema.KindUser, UserType: t.name}
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

func processMetadata(m metadataNode) fbsschema.Metadata {
	if len(m.entries) == 0 {
		return nil
	}
	out := fbsschema.Metadata{}
	for _, e := range m.entries {
		out[e.key] = e.value
	}
	return out
}

func processField(f fieldNode) *fbsschema.FieldDef {
	return &fbsschema.FieldDef{
		Name:     f.name,
		Type:     processType(f.typ),
		Default:  processLiteral(f.def),
		Metadata: processMetadata(f.metadata),
	}
}

func processTable(n *tableNode) *fbsschema.TableDef {
	t := &fbsschema.TableDef{Name: n.name, Metadata: processMetadata(n.metadata)}
	for _, f := range n.fields {
		t.Fields = append(t.Fields, processField(f))
	}
	return t
}

func processStruct(n *structNode) *fbsschema.StructDef {
	st := &fbsschema.StructDef{Name: n.name, Metadata: processMetadata(n.metadata)}
	for _, f := range n.fields {
		st.Fields = append(st.Fields, processField(f))
	}
	return st
}

// processEnum resolves auto-numbered enum values: a value with no explicit
// number is previous+1, and the first defaults to 0.
func processEnum(n *enumNode) *fbsschema.EnumDef {
	e := &fbsschema.EnumDef{Name: n.name, Underlying: n.underlying}
	var next int64
	for _, v := range n.values {
		val := next
		if v.hasExpl {
			val = v.value
		}
		e.Values = append(e.Values, fbsschema.EnumValue{Name: v.name, Value: val})
		next = val + 1
	}
	return e
}
