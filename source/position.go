// Package source provides position tracking shared by every schema and data
// grammar in this module: a byte offset into a file is turned into a
// line/column pair, and a short window of surrounding source can be rendered
// for error messages.
package source

import (
	"fmt"
	"sort"
	"strings"
)

// Pos identifies a location within a named source file.
type Pos struct {
	Filename string
	Line     int // 1-based
	Col      int // 1-based, in runes
	Offset   int // 0-based byte offset
}

// String renders "file:line:col", or just the filename if the position is
// unknown (Line or Col <= 0).
func (p Pos) String() string {
	if p.Line <= 0 || p.Col <= 0 {
		return p.Filename
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Col)
}

// Unknown returns a position that carries only a filename, used when no
// finer-grained location is available.
func Unknown(filename string) Pos {
	return Pos{Filename: filename}
}

// File indexes the newline offsets of a source buffer so that byte offsets
// can be converted into line/column positions without rescanning.
type File struct {
	name     string
	contents []byte
	lines    []int // byte offset of the start of each line
}

// NewFile builds a File index over contents.
func NewFile(name string, contents []byte) *File {
	f := &File{name: name, contents: contents, lines: []int{0}}
	for i, b := range contents {
		if b == '\n' {
			f.lines = append(f.lines, i+1)
		}
	}
	return f
}

// Name returns the file name this index was built for.
func (f *File) Name() string {
	return f.name
}

// Pos converts a byte offset into a Pos. Columns are counted in runes, so a
// multi-byte UTF-8 rune still advances the column by one.
func (f *File) Pos(offset int) Pos {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.contents) {
		offset = len(f.contents)
	}
	line := sort.Search(len(f.lines), func(n int) bool {
		return f.lines[n] > offset
	}) - 1
	if line < 0 {
		line = 0
	}
	lineStart := f.lines[line]
	col := 1
	for _, r := range string(f.contents[lineStart:offset]) {
		_ = r
		col++
	}
	return Pos{Filename: f.name, Line: line + 1, Col: col, Offset: offset}
}

// Window renders a short block of source centered on line, for use in error
// messages: up to two lines of leading context, the offending line, and up
// to two lines of trailing context, with a caret under the given column.
func (f *File) Window(line, col int) string {
	first := line - 3
	if first < 0 {
		first = 0
	}
	last := line + 2
	if last > len(f.lines) {
		last = len(f.lines)
	}

	var b strings.Builder
	for n := first; n < last; n++ {
		start := f.lines[n]
		end := len(f.contents)
		if n+1 < len(f.lines) {
			end = f.lines[n+1] - 1
		}
		if end < start {
			end = start
		}
		text := strings.TrimRight(string(f.contents[start:end]), "\r")
		fmt.Fprintf(&b, "%5d | %s\n", n+1, text)
		if n+1 == line {
			fmt.Fprintf(&b, "      | %s^\n", strings.Repeat(" ", col-1))
		}
	}
	return b.String()
}
