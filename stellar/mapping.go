package stellar

import (
	"github.com/chainforms/contract-framework/fields"
)

var primitiveFieldTypes = map[string]fields.FieldType{
	"address":   fields.FieldAddress,
	"bool":      fields.FieldCheckbox,
	"string":    fields.FieldText,
	"symbol":    fields.FieldText,
	"bytes":     fields.FieldBytes,
	"u32":       fields.FieldNumber,
	"i32":       fields.FieldNumber,
	"u64":       fields.FieldBigInt,
	"i64":       fields.FieldBigInt,
	"u128":      fields.FieldBigInt,
	"i128":      fields.FieldBigInt,
	"u256":      fields.FieldBigInt,
	"i256":      fields.FieldBigInt,
	"timepoint": fields.FieldBigInt,
	"duration":  fields.FieldBigInt,
}

// NewMapper builds the Soroban type mapper. Matcher priority: vec, tuple,
// registered enum, map, fixed bytes, then option unwrapping to its inner
// type's resolution.
func (m *Module) NewMapper() *fields.Mapper {
	var mp *fields.Mapper

	matchVec := func(typ string) (fields.Resolution, bool) {
		el, ok := angleInner(typ, "vec")
		if !ok {
			return fields.Resolution{}, false
		}
		if _, isTuple := angleInner(el, "tuple"); isTuple {
			return fields.Resolution{Type: fields.FieldArrayObject, ElementType: el}, true
		}
		return fields.Resolution{Type: fields.FieldArray, ElementType: el}, true
	}
	matchTuple := func(typ string) (fields.Resolution, bool) {
		if _, ok := angleInner(typ, "tuple"); ok {
			return fields.Resolution{Type: fields.FieldObject}, true
		}
		return fields.Resolution{}, false
	}
	matchEnum := func(typ string) (fields.Resolution, bool) {
		if _, ok := m.enums[typ]; ok {
			return fields.Resolution{Type: fields.FieldEnum}, true
		}
		return fields.Resolution{}, false
	}
	matchMap := func(typ string) (fields.Resolution, bool) {
		inner, ok := angleInner(typ, "map")
		if !ok {
			return fields.Resolution{}, false
		}
		k, v, ok := splitTopLevel(inner)
		if !ok {
			return fields.Resolution{}, false
		}
		return fields.Resolution{Type: fields.FieldMap, KeyType: k, ValueType: v}, true
	}
	matchBytesN := func(typ string) (fields.Resolution, bool) {
		if bytesNPattern.MatchString(typ) {
			return fields.Resolution{Type: fields.FieldBytes}, true
		}
		return fields.Resolution{}, false
	}
	matchOption := func(typ string) (fields.Resolution, bool) {
		el, ok := angleInner(typ, "option")
		if !ok {
			return fields.Resolution{}, false
		}
		return mp.Resolve(el)
	}

	mp = fields.NewMapper(primitiveFieldTypes, []fields.Matcher{
		matchVec,
		matchTuple,
		matchEnum,
		matchMap,
		matchBytesN,
		matchOption,
	})
	return mp
}

// IntBounds vouches only for the 32-bit types; everything wider can exceed
// the safe-integer range.
func IntBounds(typ string) (fields.Bounds, bool) {
	switch typ {
	case "u32":
		return fields.Bounds{Min: 0, Max: 1<<32 - 1}, true
	case "i32":
		return fields.Bounds{Min: -(1 << 31), Max: 1<<31 - 1}, true
	}
	return fields.Bounds{}, false
}
