// Package schemapath resolves the import/include paths named by a Cap'n
// Proto `using Alias = import "path";` or a FlatBuffers `include "x.fbs";`
// directive against a list of schema search roots.
package schemapath

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolver joins an import path against a fixed list of search roots, each
// of which may itself be a doublestar glob (e.g. "vendor/**/schemas") that
// is expanded once at construction time.
type Resolver struct {
	roots []string
}

// NewResolver expands each entry of rootPatterns (plain directories or
// doublestar globs) into a flat list of candidate search roots.
func NewResolver(rootPatterns []string) (*Resolver, error) {
	var roots []string
	for _, pat := range rootPatterns {
		if !containsMeta(pat) {
			roots = append(roots, pat)
			continue
		}
		matches, err := doublestar.FilepathGlob(pat)
		if err != nil {
			return nil, err
		}
		roots = append(roots, matches...)
	}
	return &Resolver{roots: roots}, nil
}

func containsMeta(pat string) bool {
	for _, r := range pat {
		switch r {
		case '*', '?', '[':
			return true
		}
	}
	return false
}

// Resolve returns the first existing file obtained by joining importPath
// against each search root in order, probing roots the way an import-path
// resolver with a multi-root search list typically does.
func (r *Resolver) Resolve(importPath string) (string, error) {
	if len(r.roots) == 0 {
		if _, err := os.Stat(importPath); err != nil {
			return "", err
		}
		return importPath, nil
	}
	var firstErr error
	for _, root := range r.roots {
		candidate := filepath.Join(root, importPath)
		if _, err := os.Stat(candidate); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		return candidate, nil
	}
	return "", firstErr
}
