package proto3

import "github.com/lutaml/unibuf-go/protoschema"

// process lowers a parsed fileNode into a protoschema.Schema, following the
// "Processor builds ProtoSchema" description.
func process(f *fileNode) *protoschema.Schema {
	s := &protoschema.Schema{Syntax: f.syntax, Imports: f.imports}
	if f.pkg != "" {
		s.Package = f.pkg
	}
	for _, d := range f.decls {
		switch n := d.(type) {
		case *messageNode:
			s.Messages = append(s.Messages, processMessage(n))
		case *enumNode:
			s.Enums = append(s.Enums, processEnum(n))
		}
	}
	return s
}

func processMessage(n *messageNode) *protoschema.MessageDef {
	m := &protoschema.MessageDef{Name: n.name}
	for _, d := range n.decls {
		switch dn := d.(type) {
		case *fieldNode:
			m.Fields = append(m.Fields, &protoschema.FieldDef{
				Name:   dn.name,
				Type:   dn.typ,
				Number: dn.number,
				Label:  dn.label,
			})
		case *mapFieldNode:
			m.Fields = append(m.Fields, &protoschema.FieldDef{
				Name:      dn.name,
				Type:      "map",
				Number:    dn.number,
				KeyType:   dn.keyType,
				ValueType: dn.valueType,
			})
		case *messageNode:
			m.NestedMessages = append(m.NestedMessages, processMessage(dn))
		case *enumNode:
			m.NestedEnums = append(m.NestedEnums, processEnum(dn))
		}
	}
	return m
}

func processEnum(n *enumNode) *protoschema.EnumDef {
	e := &protoschema.EnumDef{Name: n.name}
	for _, v := range n.values {
		e.Values = append(e.Values, protoschema.EnumValue{Name: v.name, Number: v.number})
	}
	return e
}
