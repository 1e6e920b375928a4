// Package proto3 implements the Proto3 IDL grammar and processor: a
// hand-written recursive-descent parser turns .proto source into a
// protoschema.Schema.
package proto3

import (
	"os"

	"github.com/lutaml/unibuf-go/protoschema"
	"github.com/lutaml/unibuf-go/reporter"
)

// Parse parses proto3 source text into a Schema. filename is used only for
// error messages and position reporting.
func Parse(filename string, content []byte, rep reporter.Reporter) (*protoschema.Schema, error) {
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

// ParseFile reads path from disk and parses it as a proto3 schema.
func ParseFile(path string, rep reporter.Reporter) (*protoschema.Schema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, content, rep)
}
