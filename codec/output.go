package codec

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"

	"github.com/chainforms/contract-framework/schema"
)

// NilPlaceholder is rendered for null/undefined results so a missing value
// never displays as an empty string.
const NilPlaceholder = "<nil>"

// FormatResult converts a decoded native result plus the function's declared
// outputs into a display string. A single-element collection for a function
// with exactly one declared output is unwrapped to the inner value first,
// since chains commonly wrap single returns.
//
// Formatting never propagates a failure: any panic is converted into a
// bracketed diagnostic embedded in the output.
func FormatResult(eco Ecosystem, outputs []schema.FunctionParameter, decoded any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("[unformattable: %v]", r)
		}
	}()

	if len(outputs) == 1 {
		if unwrapped, ok := unwrapSingle(decoded); ok {
			return formatValue(eco, outputs[0].Type, unwrapped)
		}
		return formatValue(eco, outputs[0].Type, decoded)
	}
	return formatValue(eco, "", decoded)
}

// unwrapSingle extracts the inner value of a single-element collection.
func unwrapSingle(decoded any) (any, bool) {
	if decoded == nil {
		return nil, false
	}
	rv := reflect.ValueOf(decoded)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Len() == 1 {
		// []byte is a leaf value, not a result collection.
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		return rv.Index(0).Interface(), true
	}
	return nil, false
}

func formatValue(eco Ecosystem, typ string, v any) string {
	if v == nil {
		return NilPlaceholder
	}

	if typ != "" {
		if s, ok := eco.FormatLeaf(typ, v); ok {
			return s
		}
	}

	switch val := v.(type) {
	case *big.Int:
		if val == nil {
			return NilPlaceholder
		}
		return val.String()
	case big.Int:
		return val.String()
	case []byte:
		return "0x" + fmt.Sprintf("%x", val)
	case string:
		return val
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%v", val)
	case float32, float64:
		return fmt.Sprintf("%v", val)
	case fmt.Stringer:
		return val.String()
	}

	// Nested arrays/objects render via a stable structured serialization.
	// *big.Int marshals to its exact decimal form, so nested
	// arbitrary-precision values are never truncated.
	b, err := json.Marshal(hexifyBytes(v))
	if err != nil {
		return fmt.Sprintf("[unformattable: %v]", err)
	}
	return string(b)
}

// hexifyBytes rewrites byte slices inside a structured value to 0x-hex
// strings, so a nested byte value displays the same way a leaf does instead
// of as base64.
func hexifyBytes(v any) any {
	switch val := v.(type) {
	case nil, *big.Int, big.Int, string, bool:
		return v
	case []byte:
		return "0x" + fmt.Sprintf("%x", val)
	case MapEntry:
		return MapEntry{Key: hexifyBytes(val.Key), Value: hexifyBytes(val.Value)}
	case EnumValue:
		out := EnumValue{Variant: val.Variant}
		for _, p := range val.Values {
			out.Values = append(out.Values, hexifyBytes(p))
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return fmt.Sprintf("0x%x", v)
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = hexifyBytes(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprintf("%v", iter.Key().Interface())] = hexifyBytes(iter.Value().Interface())
		}
		return out
	}
	return v
}
