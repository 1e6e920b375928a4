package proto3

// The parser's output is a lightweight syntax tree, kept deliberately close
// to the proto3 grammar productions; the processor (processor.go) lowers
// this into a protoschema.Schema.

type fileNode struct {
	syntax  string
	pkg     string
	imports []string
	decls   []topLevelDecl
}

type topLevelDecl interface{ isTopLevelDecl() }

type messageNode struct {
	name  string
	decls []messageDecl
}

func (*messageNode) isTopLevelDecl() {}

type enumNode struct {
	name   string
	values []enumValueNode
}

func (*enumNode) isTopLevelDecl() {}

type enumValueNode struct {
	name   string
	number int32
}

type messageDecl interface{ isMessageDecl() }

func (*fieldNode) isMessageDecl()   {}
func (*mapFieldNode) isMessageDecl() {}
func (*messageNode) isMessageDecl() {}
func (*enumNode) isMessageDecl()   {}

type fieldNode struct {
	label  string // "repeated", "optional", or ""
	typ    string
	name   string
	number uint32
}

type mapFieldNode struct {
	keyType   string
	valueType string
	name      string
	number    uint32
}
