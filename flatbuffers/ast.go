package flatbuffers

// The AST nodes below are the direct output of the parser, one step removed
// from fbsschema's resolved model: type names are carried as raw tokens here
// and resolved (scalar vs. user-type lookup) by processor.go.

type fileNode struct {
	namespace      string
	includes       []string
	attributes     []string
	decls          []topDecl
	rootType       string
	fileIdentifier string
	fileExtension  string
}

// topDecl is implemented by table/struct/enum/union declarations.
type topDecl interface{ declName() string }

type tableNode struct {
	name     string
	fields   []fieldNode
	metadata metadataNode
}

func (t *tableNode) declName() string { return t.name }

type structNode struct {
	name     string
	fields   []fieldNode
	metadata metadataNode
}

func (s *structNode) declName() string { return s.name }

type fieldNode struct {
	name     string
	typ      typeNode
	def      literalNode
	metadata metadataNode
}

// typeNode mirrors fbsschema.FieldType before name resolution.
type typeNode struct {
	isVector bool
	name     string    // scalar or user type name, unset when isVector
	elem     *typeNode // set when isVector
}

// metadataNode is a `(key:value, flag)` attribute list, in declaration order.
type metadataNode struct {
	entries []metadataEntry
}

type metadataEntry struct {
	key   string
	value string
	isSet bool
}

type enumNode struct {
	name       string
	underlying string
	values     []enumValueNode
}

func (e *enumNode) declName() string { return e.name }

type enumValueNode struct {
	name    string
	value   int64
	hasExpl bool
}

type unionNode struct {
	name    string
	members []string
}

func (u *unionNode) declName() string { return u.name }

// literalNode is a loosely typed literal value: string, int64, float64,
// bool, or nil (absent).
type literalNode struct {
	kind literalKind
	str  string
	i    int64
	f    float64
	b    bool
}

type literalKind int

const (
	literalNone literalKind = iota
	literalString
	literalInt
	literalFloat
	literalBool
	literalIdent
)
