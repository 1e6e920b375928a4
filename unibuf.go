// Package unibuf is the entry point for parsing and serializing textproto,
// Protocol Buffers binary, Cap'n Proto binary, and FlatBuffers binary
// messages, and for loading the three schema grammars (proto3, Cap'n Proto,
// FlatBuffers) that describe them.
//
// Every Parse*/Serialize* function here is a thin dispatcher over one of the
// grammar/codec packages (proto3, textproto, protowire, capnproto,
// flatbuffers); it does no work of its own beyond routing and, for the path
// and extension-sniffing helpers, reading the file into memory. Schemas are
// immutable once parsed and may be reused across any number of calls.
package unibuf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lutaml/unibuf-go/capnproto"
	"github.com/lutaml/unibuf-go/capnpschema"
	"github.com/lutaml/unibuf-go/fbsschema"
	"github.com/lutaml/unibuf-go/flatbuffers"
	"github.com/lutaml/unibuf-go/proto3"
	"github.com/lutaml/unibuf-go/protoschema"
	"github.com/lutaml/unibuf-go/protowire"
	"github.com/lutaml/unibuf-go/textproto"
	"github.com/lutaml/unibuf-go/value"
)

// ParseTextproto parses a textproto document.
func ParseTextproto(content []byte) (*value.Message, error) {
	return textproto.Parse("<content>", content, nil)
}

// ParseTextprotoFile reads and parses a textproto document from path.
func ParseTextprotoFile(path string) (*value.Message, error) {
	return textproto.ParseFile(path, nil)
}

// ParseBinary decodes a Protocol Buffers binary message of the given type.
func ParseBinary(content []byte, schema *protoschema.Schema, msgType string) (*value.Message, error) {
	return protowire.Decode(content, schema, msgType)
}

// ParseBinaryFile reads and decodes a Protocol Buffers binary message from
// path.
func ParseBinaryFile(path string, schema *protoschema.Schema, msgType string) (*value.Message, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBinary(content, schema, msgType)
}

// SerializeBinary encodes msg as a Protocol Buffers binary message of the
// given type.
func SerializeBinary(msg *value.Message, schema *protoschema.Schema, msgType string) ([]byte, error) {
	return protowire.Encode(msg, schema, msgType)
}

// ParseSchema parses a proto3 schema file.
func ParseSchema(path string) (*protoschema.Schema, error) {
	return proto3.ParseFile(path, nil)
}

// ParseFlatbuffersSchema parses a FlatBuffers .fbs schema file.
func ParseFlatbuffersSchema(path string) (*fbsschema.FbsSchema, error) {
	return flatbuffers.ParseSchemaFile(path, nil)
}

// ParseFlatbuffersBinary decodes a FlatBuffers buffer against the named root
// table in schema.
func ParseFlatbuffersBinary(content []byte, schema *fbsschema.FbsSchema, rootType string) (*value.Message, error) {
	return flatbuffers.Decode(content, schema, rootType)
}

// SerializeFlatbuffersBinary encodes msg as a FlatBuffers buffer against the
// named root table in schema.
func SerializeFlatbuffersBinary(msg *value.Message, schema *fbsschema.FbsSchema, rootType string) ([]byte, error) {
	return flatbuffers.Encode(msg, schema, rootType)
}

// ParseCapnprotoSchema parses a Cap'n Proto .capnp schema file.
func ParseCapnprotoSchema(path string) (*capnpschema.Schema, error) {
	return capnproto.ParseSchemaFile(path, nil)
}

// CapnpBinaryParser decodes Cap'n Proto binary messages against a fixed
// schema, mirroring a schema-bound parser/serializer pair.
type CapnpBinaryParser struct {
	Schema *capnpschema.Schema
}

// NewCapnpBinaryParser builds a parser bound to schema.
func NewCapnpBinaryParser(schema *capnpschema.Schema) *CapnpBinaryParser {
	return &CapnpBinaryParser{Schema: schema}
}

// Parse decodes data as the named root struct type.
func (p *CapnpBinaryParser) Parse(data []byte, rootType string) (*value.Message, error) {
	return capnproto.Decode(data, p.Schema, rootType)
}

// CapnpBinarySerializer encodes Cap'n Proto binary messages against a fixed
// schema.
type CapnpBinarySerializer struct {
	Schema *capnpschema.Schema
}

// NewCapnpBinarySerializer builds a serializer bound to schema.
func NewCapnpBinarySerializer(schema *capnpschema.Schema) *CapnpBinarySerializer {
	return &CapnpBinarySerializer{Schema: schema}
}

// Serialize encodes msg as the named root struct type.
func (s *CapnpBinarySerializer) Serialize(msg *value.Message, rootType string) ([]byte, error) {
	return capnproto.Encode(msg, s.Schema, rootType)
}

// Parse dispatches on pathOrContent's file extension: ".txtpb"/".textproto"
// parses as textproto; ".binpb" parses as Protocol Buffers binary and
// requires schema/msgType; ".proto" and ".fbs" are schema files, not data,
// and are rejected; ".pb" is content-sniffed (it decodes as textproto first,
// falling back to binary, since the extension alone is ambiguous).
//
// pathOrContent is always treated as a filesystem path; callers holding raw
// content should call ParseTextproto/ParseBinary directly.
func Parse(pathOrContent string, schema *protoschema.Schema, msgType string) (*value.Message, error) {
	ext := strings.ToLower(filepath.Ext(pathOrContent))
	switch ext {
	case ".txtpb", ".textproto":
		return ParseTextprotoFile(pathOrContent)
	case ".binpb":
		if schema == nil {
			return nil, fmt.Errorf("unibuf: parsing %q requires a schema", pathOrContent)
		}
		return ParseBinaryFile(pathOrContent, schema, msgType)
	case ".proto", ".fbs":
		return nil, fmt.Errorf("unibuf: %q is a schema file, not data", pathOrContent)
	case ".pb":
		content, err := os.ReadFile(pathOrContent)
		if err != nil {
			return nil, err
		}
		if msg, textErr := textproto.Parse(pathOrContent, content, nil); textErr == nil {
			return msg, nil
		}
		if schema == nil {
			return nil, fmt.Errorf("unibuf: parsing %q as binary requires a schema", pathOrContent)
		}
		return ParseBinary(content, schema, msgType)
	default:
		return nil, fmt.Errorf("unibuf: unrecognized extension %q", ext)
	}
}
