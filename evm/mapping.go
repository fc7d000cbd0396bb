package evm

import (
	"github.com/chainforms/contract-framework/fields"
)

// maxSafeInteger is the largest integer the host can represent exactly in a
// plain numeric field (2^53 - 1).
const maxSafeInteger = int64(1)<<53 - 1

// primitiveFieldTypes is the exact-match table consulted before any
// composite pattern.
var primitiveFieldTypes = map[string]fields.FieldType{
	"address": fields.FieldAddress,
	"bool":    fields.FieldCheckbox,
	"string":  fields.FieldText,
	"bytes":   fields.FieldBytes,
	"tuple":   fields.FieldObject,
}

// NewMapper builds the EVM type mapper: the primitive table plus composite
// matchers in fixed priority order (array, tuple, integer width, fixed
// bytes). An array-wrapped tuple resolves to array-object rather than a
// plain array.
func NewMapper() *fields.Mapper {
	return fields.NewMapper(primitiveFieldTypes, []fields.Matcher{
		matchArray,
		matchInteger,
		matchFixedBytes,
	})
}

func matchArray(typ string) (fields.Resolution, bool) {
	m := arrayPattern.FindStringSubmatch(typ)
	if m == nil {
		return fields.Resolution{}, false
	}
	if m[1] == "tuple" {
		return fields.Resolution{Type: fields.FieldArrayObject, ElementType: m[1]}, true
	}
	return fields.Resolution{Type: fields.FieldArray, ElementType: m[1]}, true
}

// matchInteger applies the numeric-width policy: any width whose maximum
// magnitude can exceed the host's safe-integer range maps to the
// arbitrary-precision field kind, never plain numeric.
func matchInteger(typ string) (fields.Resolution, bool) {
	signed, bits, ok := parseIntType(typ)
	if !ok {
		return fields.Resolution{}, false
	}
	if withinSafeRange(bits, signed) {
		return fields.Resolution{Type: fields.FieldNumber}, true
	}
	return fields.Resolution{Type: fields.FieldBigInt}, true
}

func matchFixedBytes(typ string) (fields.Resolution, bool) {
	if bytesPattern.MatchString(typ) {
		return fields.Resolution{Type: fields.FieldBytes}, true
	}
	return fields.Resolution{}, false
}

// IntBounds is the numeric-bounds table: it vouches only for fixed-width
// integer types that remain within safe range.
func IntBounds(typ string) (fields.Bounds, bool) {
	signed, bits, ok := parseIntType(typ)
	if !ok || !withinSafeRange(bits, signed) {
		return fields.Bounds{}, false
	}
	if signed {
		return fields.Bounds{Min: -(int64(1) << (bits - 1)), Max: int64(1)<<(bits-1) - 1}, true
	}
	return fields.Bounds{Min: 0, Max: int64(1)<<bits - 1}, true
}

func withinSafeRange(bits int, signed bool) bool {
	if bits <= 0 || bits > 62 {
		return false
	}
	if signed {
		return int64(1)<<(bits-1)-1 <= maxSafeInteger
	}
	return int64(1)<<bits-1 <= maxSafeInteger
}
