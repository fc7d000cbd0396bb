package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/chainforms/contract-framework/schema"
)

// ParameterParseError annotates a parse failure with the parameter's name and
// declared type. Nested parses wrap their component errors in further
// ParameterParseErrors, so a failure deep inside composite data remains
// attributable to the top-level field the user edited.
type ParameterParseError struct {
	Parameter string
	Type      string
	Err       error
}

func (e *ParameterParseError) Error() string {
	return fmt.Sprintf("parameter %q (%s): %v", e.Parameter, e.Type, e.Err)
}

func (e *ParameterParseError) Unwrap() error { return e.Err }

// MapEntry is one key/value pair of a parsed map-typed parameter. Entries are
// ordered by their raw key so repeated parses are deterministic.
type MapEntry struct {
	Key   any
	Value any
}

// EnumValue is the parsed form of an enum-typed parameter: a variant name
// plus its payload values (empty for unit variants).
type EnumValue struct {
	Variant string
	Values  []any
}

// ParseInput converts a raw submitted value into the representation expected
// by native encoding for one parameter. Composite top-level values arrive as
// JSON-encoded strings from the form layer; recursive calls receive
// already-structured values.
func ParseInput(eco Ecosystem, param schema.FunctionParameter, raw any, diag Diagnostics) (any, error) {
	if diag == nil {
		diag = NopDiagnostics{}
	}
	v, err := parseValue(eco, param.Name, param.Type, param.Components, raw, false, diag)
	if err != nil {
		diag.ParseError(param.Name, param.Type)
		return nil, err
	}
	return v, nil
}

// parseValue is the single recursive entry point, keyed by the structured
// flag: false means raw came straight from the form (composites are JSON
// strings), true means raw was already decoded by an enclosing parse.
func parseValue(eco Ecosystem, name, typ string, components []schema.FunctionParameter, raw any, structured bool, diag Diagnostics) (any, error) {
	v, err := parseByKind(eco, name, typ, components, raw, structured, diag)
	if err != nil {
		return nil, &ParameterParseError{Parameter: name, Type: typ, Err: err}
	}
	return v, nil
}

func parseByKind(eco Ecosystem, name, typ string, components []schema.FunctionParameter, raw any, structured bool, diag Diagnostics) (any, error) {
	info := eco.TypeInfo(typ)
	switch info.Kind {
	case KindArray:
		return parseArray(eco, name, info, components, raw, structured, diag)
	case KindTuple:
		return parseTuple(eco, name, components, raw, structured, diag)
	case KindEnum:
		return parseEnum(eco, name, typ, raw, structured, diag)
	case KindMap:
		return parseMap(eco, name, info, raw, structured, diag)
	case KindBytes:
		return parseBytes(info, raw)
	case KindInteger:
		return parseInteger(raw)
	case KindAddress:
		return parseAddress(eco, raw)
	case KindBool:
		return parseBool(raw), nil
	case KindString:
		return coerceString(raw), nil
	default:
		diag.UnknownType(name, typ, raw)
		return raw, nil
	}
}

func parseArray(eco Ecosystem, name string, info TypeInfo, components []schema.FunctionParameter, raw any, structured bool, diag Diagnostics) (any, error) {
	var elems []any
	if structured {
		var ok bool
		elems, ok = raw.([]any)
		if !ok {
			return nil, errors.Errorf("expected an array, got %T", raw)
		}
	} else {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Errorf("expected a JSON-encoded array string, got %T", raw)
		}
		if err := json.Unmarshal([]byte(s), &elems); err != nil {
			return nil, errors.Wrap(err, "invalid JSON array")
		}
	}
	out := make([]any, len(elems))
	for i, e := range elems {
		v, err := parseValue(eco, fmt.Sprintf("%s[%d]", name, i), info.ElementType, components, e, true, diag)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseTuple(eco Ecosystem, name string, components []schema.FunctionParameter, raw any, structured bool, diag Diagnostics) (any, error) {
	var obj map[string]any
	if structured {
		var ok bool
		obj, ok = raw.(map[string]any)
		if !ok {
			return nil, errors.Errorf("expected an object, got %T", raw)
		}
	} else {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Errorf("expected a JSON-encoded object string, got %T", raw)
		}
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return nil, errors.Wrap(err, "invalid JSON object")
		}
	}

	if len(obj) != len(components) {
		known := make(map[string]bool, len(components))
		var missing []string
		for _, c := range components {
			known[c.Name] = true
			if _, ok := obj[c.Name]; !ok {
				missing = append(missing, c.Name)
			}
		}
		var extra []string
		for k := range obj {
			if !known[k] {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		return nil, errors.Errorf("expected %d keys, got %d (extra: %v, missing: %v)", len(components), len(obj), extra, missing)
	}

	out := make(map[string]any, len(components))
	for _, c := range components {
		cv, ok := obj[c.Name]
		if !ok {
			return nil, errors.Errorf("missing key %q", c.Name)
		}
		v, err := parseValue(eco, fmt.Sprintf("%s.%s", name, c.Name), c.Type, c.Components, cv, true, diag)
		if err != nil {
			return nil, err
		}
		out[c.Name] = v
	}
	return out, nil
}

func parseEnum(eco Ecosystem, name, typ string, raw any, structured bool, diag Diagnostics) (any, error) {
	variants := eco.EnumVariants(typ)
	variantByName := make(map[string]schema.EnumVariantMetadata, len(variants))
	for _, v := range variants {
		variantByName[v.Name] = v
	}

	// A bare string selects a unit variant.
	if s, ok := raw.(string); ok && !strings.HasPrefix(strings.TrimSpace(s), "{") {
		if len(variants) > 0 {
			if _, ok := variantByName[s]; !ok {
				return nil, errors.Errorf("unknown variant %q", s)
			}
		}
		return EnumValue{Variant: s}, nil
	}

	var obj map[string]any
	switch v := raw.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &obj); err != nil {
			return nil, errors.Wrap(err, "invalid JSON object")
		}
	case map[string]any:
		obj = v
	default:
		return nil, errors.Errorf("expected a variant name or object, got %T", raw)
	}

	variant, _ := obj["variant"].(string)
	if variant == "" {
		return nil, errors.New("enum object is missing a variant name")
	}
	meta, haveMeta := variantByName[variant]
	if len(variants) > 0 && !haveMeta {
		return nil, errors.Errorf("unknown variant %q", variant)
	}

	values, _ := obj["values"].([]any)
	if haveMeta && len(values) != len(meta.PayloadTypes) {
		return nil, errors.Errorf("variant %q expects %d values, got %d", variant, len(meta.PayloadTypes), len(values))
	}
	out := EnumValue{Variant: variant}
	for i, v := range values {
		var payloadType string
		if haveMeta {
			payloadType = meta.PayloadTypes[i]
		}
		pv, err := parseValue(eco, fmt.Sprintf("%s.%s[%d]", name, variant, i), payloadType, nil, v, true, diag)
		if err != nil {
			return nil, err
		}
		out.Values = append(out.Values, pv)
	}
	return out, nil
}

func parseMap(eco Ecosystem, name string, info TypeInfo, raw any, structured bool, diag Diagnostics) (any, error) {
	var obj map[string]any
	if structured {
		var ok bool
		obj, ok = raw.(map[string]any)
		if !ok {
			return nil, errors.Errorf("expected an object, got %T", raw)
		}
	} else {
		s, ok := raw.(string)
		if !ok {
			return nil, errors.Errorf("expected a JSON-encoded object string, got %T", raw)
		}
		if err := json.Unmarshal([]byte(s), &obj); err != nil {
			return nil, errors.Wrap(err, "invalid JSON object")
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]MapEntry, 0, len(obj))
	for _, k := range keys {
		kv, err := parseValue(eco, fmt.Sprintf("%s{%s}", name, k), info.KeyType, nil, k, true, diag)
		if err != nil {
			return nil, err
		}
		vv, err := parseValue(eco, fmt.Sprintf("%s[%s]", name, k), info.ValueType, nil, obj[k], true, diag)
		if err != nil {
			return nil, err
		}
		out = append(out, MapEntry{Key: kv, Value: vv})
	}
	return out, nil
}

func parseBytes(info TypeInfo, raw any) ([]byte, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, errors.Errorf("expected a hex string, got %T", raw)
	}
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Errorf("invalid hex string %q", s)
	}
	if info.ByteLength > 0 && len(b) != info.ByteLength {
		return nil, errors.Errorf("expected %d bytes, got %d", info.ByteLength, len(b))
	}
	return b, nil
}

// parseInteger converts to arbitrary-precision form. Every integer-typed
// parameter parses to *big.Int regardless of width; the native encoder
// narrows as needed.
func parseInteger(raw any) (*big.Int, error) {
	switch v := raw.(type) {
	case nil:
		return nil, errors.New("value is empty")
	case *big.Int:
		return v, nil
	case string:
		return bigFromString(v)
	case json.Number:
		return bigFromString(v.String())
	case float64:
		f := new(big.Float).SetFloat64(v)
		i, acc := f.Int(nil)
		if acc != big.Exact {
			return nil, errors.Errorf("value %v is not an integer", v)
		}
		return i, nil
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, errors.Errorf("cannot convert %T to an integer", raw)
	}
}

func bigFromString(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("value is empty")
	}
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") || strings.HasPrefix(s, "-0x") {
		base = 0
	}
	i, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Errorf("cannot parse %q as an integer", s)
	}
	return i, nil
}

func parseAddress(eco Ecosystem, raw any) (string, error) {
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", errors.Errorf("expected a non-empty address string, got %v", raw)
	}
	return eco.CanonicalAddress(strings.TrimSpace(s))
}

// parseBool accepts booleans and case-insensitive "true"/"false" strings;
// anything else falls back to lenient truthy coercion.
func parseBool(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true
		case "false":
			return false
		}
		return v != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	case nil:
		return false
	default:
		return true
	}
}

func coerceString(raw any) string {
	if raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", raw)
}
