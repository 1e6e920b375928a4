// Package capnproto implements the Cap'n Proto IDL grammar and processor
// plus the binary segment/pointer codec.
package capnproto

import (
	"os"

	"github.com/lutaml/unibuf-go/capnpschema"
	"github.com/lutaml/unibuf-go/reporter"
)

// ParseSchema parses .capnp source text into a Schema. filename is used
// only for error messages and position reporting.
func ParseSchema(filename string, content []byte, rep reporter.Reporter) (*capnpschema.Schema, error) {
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

// ParseSchemaFile reads path from disk and parses it as a .capnp schema.
func ParseSchemaFile(path string, rep reporter.Reporter) (*capnpschema.Schema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSchema(path, content, rep)
}
