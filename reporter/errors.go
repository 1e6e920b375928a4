// Package reporter contains the error and warning types shared by every
// grammar and codec in this module, plus a Handler that collects them during
// a single parse or serialize call.
package reporter

import (
	"errors"
	"fmt"

	"github.com/lutaml/unibuf-go/source"
)

// ErrInvalidSource is returned when parsing failed but the configured
// Reporter swallowed every individual error (by always returning nil).
var ErrInvalidSource = errors.New("parse failed: invalid source")

// Kind classifies an error per the taxonomy in the error-handling design:
// parse, serialization, validation or value-construction failures.
type Kind int

const (
	// KindParse covers malformed bytes or tokens, truncated buffers, and
	// grammar mismatches.
	KindParse Kind = iota
	// KindSerialization covers unknown root/embedded types and values that
	// cannot be represented in the declared wire type.
	KindSerialization
	// KindValidation covers declared-type mismatches, duplicate field
	// numbers/ordinals, and missing required schema metadata.
	KindValidation
	// KindInvalidValue covers constructing a Value from a malformed raw
	// shape (e.g. a map entry missing its value).
	KindInvalidValue
	// KindTypeCoercion covers a narrowing conversion that does not succeed.
	KindTypeCoercion
	// KindArgument covers boundary errors such as nil/empty input.
	KindArgument
)

func (k Kind) String() string {
	switch k {
	case KindParse:
		return "ParseError"
	case KindSerialization:
		return "SerializationError"
	case KindValidation:
		return "ValidationError"
	case KindInvalidValue:
		return "InvalidValueError"
	case KindTypeCoercion:
		return "TypeCoercionError"
	case KindArgument:
		return "InvalidArgumentError"
	default:
		return "Error"
	}
}

// ErrorWithPos is an error tied to a location in a source file. Error()
// renders both the position and the underlying error; Unwrap() exposes only
// the underlying error.
type ErrorWithPos interface {
	error
	Kind() Kind
	Pos() source.Pos
	Unwrap() error
}

// Error builds an ErrorWithPos of the given kind.
func Error(kind Kind, pos source.Pos, err error) ErrorWithPos {
	return errorWithPos{kind: kind, pos: pos, underlying: err}
}

// Errorf builds an ErrorWithPos of the given kind from a format string.
func Errorf(kind Kind, pos source.Pos, format string, args ...any) ErrorWithPos {
	return errorWithPos{kind: kind, pos: pos, underlying: fmt.Errorf(format, args...)}
}

type errorWithPos struct {
	kind       Kind
	pos        source.Pos
	underlying error
}

func (e errorWithPos) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.pos, e.kind, e.underlying)
}

func (e errorWithPos) Kind() Kind      { return e.kind }
func (e errorWithPos) Pos() source.Pos { return e.pos }
func (e errorWithPos) Unwrap() error   { return e.underlying }

var _ ErrorWithPos = errorWithPos{}

// WithWindow wraps an ErrorWithPos so that Error() also includes a short
// rendering of the surrounding source, per the 5-line window the textproto
// and schema grammars attach to parse failures.
func WithWindow(err ErrorWithPos, window string) ErrorWithPos {
	return windowedError{ErrorWithPos: err, window: window}
}

type windowedError struct {
	ErrorWithPos
	window string
}

func (e windowedError) Error() string {
	return e.ErrorWithPos.Error() + "\n" + e.window
}
