// Package flatbuffers implements the FlatBuffers IDL grammar and processor
// plus the vtable/offset binary codec.
package flatbuffers

import (
	"os"

	"github.com/lutaml/unibuf-go/fbsschema"
	"github.com/lutaml/unibuf-go/reporter"
)

// ParseSchema parses .fbs source text into an FbsSchema. filename is used
// only for error messages and position reporting.
func ParseSchema(filename string, content []byte, rep reporter.Reporter) (*fbsschema.FbsSchema, error) {
	h := reporter.NewHandler(rep)
	l := newLexer(filename, content, h)
	p, err := newParser(l)
	if err != nil {
		return nil, err
	}
	f, err := p.parseFile()
	if err != nil {
		return nil, err
	}
	if err := h.Error(); err != nil {
		return nil, err
	}
	schema := process(f)
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}

// ParseSchemaFile reads path from disk and parses it as a .fbs schema.
func ParseSchemaFile(path string, rep reporter.Reporter) (*fbsschema.FbsSchema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSchema(path, content, rep)
}
