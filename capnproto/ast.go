package capnproto

// The AST nodes below are the direct output of the parser, one step removed
// from capnpschema's resolved model: ordinals are already parsed into
// integers and type names are carried as written; processor.go classifies
// each type name as a primitive or a user type without looking it up.
// Ordinal uniqueness is checked later by capnpschema.Schema.Validate.

type fileNode struct {
	fileID  string
	usings  []usingNode
	decls   []topDecl
}

type usingNode struct {
	alias      string
	importPath string
}

// topDecl is implemented by struct/enum/interface/const declarations that
// may appear at file scope or nested inside a struct.
type topDecl interface{ declName() string }

type structNode struct {
	name    string
	ordinal uint16
	fields  []fieldNode
	unions  []unionNode
	groups  []groupNode
	nested  []topDecl
	annots  []annotationNode
}

func (s *structNode) declName() string { return s.name }

type unionNode struct {
	name    string
	ordinal uint16
	fields  []fieldNode
}

type groupNode struct {
	name    string
	ordinal uint16
	fields  []fieldNode
}

type fieldNode struct {
	name    string
	ordinal uint16
	typ     typeNode
	def     literalNode
	annots  []annotationNode
}

// typeNode mirrors capnpschema.FieldType before name resolution.
type typeNode struct {
	isList bool
	name   string   // primitive or user type name, unset when isList
	elem   *typeNode // set when isList
}

type annotationNode struct {
	name  string
	value literalNode
}

type enumNode struct {
	name   string
	values []enumValueNode
}

func (e *enumNode) declName() string { return e.name }

type enumValueNode struct {
	name    string
	ordinal uint16
}

type interfaceNode struct {
	name    string
	methods []methodNode
}

func (i *interfaceNode) declName() string { return i.name }

type methodNode struct {
	name       string
	ordinal    uint16
	paramType  string
	resultType string
}

type constNode struct {
	name  string
	typ   typeNode
	value literalNode
}

func (c *constNode) declName() string { return c.name }

// literalNode is a loosely typed literal value: string, int64, float64,
// bool, or nil (absent).
type literalNode struct {
	kind  literalKind
	str   string
	i     int64
	f     float64
	b     bool
}

type literalKind int

const (
	literalNone literalKind = iota
	literalString
	literalInt
	literalFloat
	literalBool
	literalIdent // bare identifier, e.g. an enum value name used as a default
)
