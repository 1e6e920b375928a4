package textproto

import (
	"os"

	"github.com/lutaml/unibuf-go/reporter"
	"github.com/lutaml/unibuf-go/value"
)

// Parse parses text-format source into a generic Message. filename is used
// only for error messages and position reporting.
func Parse(filename string, content []byte, rep reporter.Reporter) (*value.Message, error) {
	h := reporter.NewHandler(rep)
	l := newLexer(filename, content, h)
	p, err := newParser(l)
	if err != nil {
		return nil, err
	}
	m, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	if err := h.Error(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseFile reads path from disk and parses it as text-format source.
func ParseFile(path string, rep reporter.Reporter) (*value.Message, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, content, rep)
}
