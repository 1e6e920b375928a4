// Package validate implements a schema validator: a
// thin pass over a generic value.Message that checks each field against its
// declared FieldDef, in the style of protoschema.Schema.Validate's own
// invariant checks.
package validate

import (
	"fmt"
	"math"

	"github.com/lutaml/unibuf-go/protoschema"
	"github.com/lutaml/unibuf-go/value"
)

// Issue is one validation finding: an unknown field, a type mismatch, or a
// missing required field.
type Issue struct {
	Path string // dotted field path, e.g. "address.zip"
	Kind string // "unknown_field", "type_error", "missing_required"
	Msg  string
}

func (i Issue) String() string { return fmt.Sprintf("%s: %s (%s)", i.Path, i.Msg, i.Kind) }

// Validate checks msg against the message type named msgType in schema and
// returns every issue found; a nil/empty result means msg is valid.
func Validate(msg *value.Message, schema *protoschema.Schema, msgType string) []Issue {
	md, ok := schema.FindMessage(msgType)
	if !ok {
		return []Issue{{Path: msgType, Kind: "unknown_field", Msg: fmt.Sprintf("message type %q is not declared in schema", msgType)}}
	}
	return validateMessage(msg, schema, md, msgType)
}

func validateMessage(msg *value.Message, schema *protoschema.Schema, md *protoschema.MessageDef, path string) []Issue {
	var issues []Issue
	byName := map[string]*protoschema.FieldDef{}
	for _, f := range md.Fields {
		byName[f.Name] = f
	}

	for _, fld := range msg.Fields() {
		fd, ok := byName[fld.Name]
		if !ok {
			issues = append(issues, Issue{
				Path: path + "." + fld.Name,
				Kind: "unknown_field",
				Msg:  fmt.Sprintf("unknown field %q", fld.Name),
			})
			continue
		}
		issues = append(issues, validateField(fld.Value, schema, fd, path+"."+fld.Name)...)
	}

	// Proto3 treats all fields as optional; only a field explicitly marked
	// "required" (carried for forward compatibility, never emitted by the
	// proto3 parser itself) triggers a presence check.
	for _, f := range md.Fields {
		if f.Label != "required" {
			continue
		}
		if _, ok := msg.FindField(f.Name); !ok {
			issues = append(issues, Issue{
				Path: path + "." + f.Name,
				Kind: "missing_required",
				Msg:  fmt.Sprintf("required field %q is absent", f.Name),
			})
		}
	}
	return issues
}

func validateField(v value.Value, schema *protoschema.Schema, fd *protoschema.FieldDef, path string) []Issue {
	if fd.IsMap() {
		if v.Kind() != value.KindMap {
			return []Issue{typeError(path, fd.Type, v)}
		}
		return nil
	}
	if v.Kind() == value.KindList {
		var issues []Issue
		for i, elem := range v.List() {
			issues = append(issues, validateScalarOrMessage(elem, schema, fd, fmt.Sprintf("%s[%d]", path, i))...)
		}
		return issues
	}
	return validateScalarOrMessage(v, schema, fd, path)
}

func validateScalarOrMessage(v value.Value, schema *protoschema.Schema, fd *protoschema.FieldDef, path string) []Issue {
	if _, ok := schema.FindMessage(fd.Type); ok {
		if v.Kind() != value.KindMessage {
			return []Issue{typeError(path, fd.Type, v)}
		}
		nested, _ := schema.FindMessage(fd.Type)
		return validateMessage(v.Message(), schema, nested, path)
	}
	if en, ok := schema.FindEnum(fd.Type); ok {
		return validateEnumValue(v, en, path)
	}
	return validateScalar(v, fd.Type, path)
}

func validateEnumValue(v value.Value, en *protoschema.EnumDef, path string) []Issue {
	switch v.Kind() {
	case value.KindString:
		if _, ok := en.ValueByName(v.String()); !ok {
			return []Issue{{Path: path, Kind: "type_error", Msg: fmt.Sprintf("enum %s has no value named %q", en.Name, v.String())}}
		}
	case value.KindInt:
		if _, ok := en.NameByValue(int32(v.Int())); !ok {
			return []Issue{{Path: path, Kind: "type_error", Msg: fmt.Sprintf("enum %s has no value numbered %d", en.Name, v.Int())}}
		}
	default:
		return []Issue{{Path: path, Kind: "type_error", Msg: fmt.Sprintf("enum field expects a name or number, got %s", v.Kind())}}
	}
	return nil
}

// validateScalar range-checks integers against their declared bit width and
// signedness and checks that strings/bools/floats carry the matching Kind.
func validateScalar(v value.Value, scalarType, path string) []Issue {
	switch scalarType {
	case "string", "bytes":
		if v.Kind() != value.KindString {
			return []Issue{typeError(path, scalarType, v)}
		}
	case "bool":
		if v.Kind() != value.KindBool {
			return []Issue{typeError(path, scalarType, v)}
		}
	case "float", "double":
		if v.Kind() != value.KindFloat && v.Kind() != value.KindInt {
			return []Issue{typeError(path, scalarType, v)}
		}
	case "int32", "sint32", "sfixed32":
		return rangeCheck(v, scalarType, path, math.MinInt32, math.MaxInt32, false)
	case "int64", "sint64", "sfixed64":
		return rangeCheck(v, scalarType, path, math.MinInt64, math.MaxInt64, false)
	case "uint32", "fixed32":
		return rangeCheck(v, scalarType, path, 0, math.MaxUint32, true)
	case "uint64", "fixed64":
		return rangeCheck(v, scalarType, path, 0, math.MaxInt64, true)
	default:
		// Unrecognized scalar names are reported by schema.Validate, not here.
	}
	return nil
}

func rangeCheck(v value.Value, scalarType, path string, min, max int64, unsigned bool) []Issue {
	if v.Kind() != value.KindInt {
		return []Issue{typeError(path, scalarType, v)}
	}
	n := v.Int()
	if n < min || n > max {
		return []Issue{{Path: path, Kind: "type_error", Msg: fmt.Sprintf("value %d out of range for %s", n, scalarType)}}
	}
	return nil
}

func typeError(path, declared string, v value.Value) Issue {
	return Issue{Path: path, Kind: "type_error", Msg: fmt.Sprintf("field declared %s but value is %s", declared, v.Kind())}
}
