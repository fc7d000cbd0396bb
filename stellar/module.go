// Package stellar is the Soroban ecosystem module. Its type grammar is
// angle-bracketed (vec<T>, map<K,V>, tuple<...>), addresses are strkeys, and
// contract-defined enum types are registered by name with their variant
// metadata.
package stellar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/chainforms/contract-framework/codec"
	"github.com/chainforms/contract-framework/schema"
)

var (
	bytesNPattern = regexp.MustCompile(`^bytesn<(\d+)>$`)
	strkeyPattern = regexp.MustCompile(`^[GC][A-Z2-7]{55}$`)
)

// integer widths per primitive type name; parse always goes through
// arbitrary precision regardless of width.
var intWidths = map[string]struct {
	bits   int
	signed bool
}{
	"u32":       {32, false},
	"i32":       {32, true},
	"u64":       {64, false},
	"i64":       {64, true},
	"u128":      {128, false},
	"i128":      {128, true},
	"u256":      {256, false},
	"i256":      {256, true},
	"timepoint": {64, false},
	"duration":  {64, false},
}

// Module implements the shared ecosystem contract for Soroban contracts.
// Enum-shaped contract types are registered by name before use.
type Module struct {
	enums map[string][]schema.EnumVariantMetadata
}

var _ codec.Ecosystem = (*Module)(nil)

func NewModule() *Module {
	return &Module{enums: make(map[string][]schema.EnumVariantMetadata)}
}

// RegisterEnum records the variant metadata of a contract-defined enum type.
func (m *Module) RegisterEnum(name string, variants []schema.EnumVariantMetadata) {
	m.enums[name] = variants
}

func (m *Module) Name() string { return "stellar" }

func (m *Module) TypeInfo(typ string) codec.TypeInfo {
	switch typ {
	case "address":
		return codec.TypeInfo{Kind: codec.KindAddress}
	case "bool":
		return codec.TypeInfo{Kind: codec.KindBool}
	case "string", "symbol":
		return codec.TypeInfo{Kind: codec.KindString}
	case "bytes":
		return codec.TypeInfo{Kind: codec.KindBytes}
	}
	if w, ok := intWidths[typ]; ok {
		return codec.TypeInfo{Kind: codec.KindInteger, Bits: w.bits, Signed: w.signed}
	}
	if el, ok := angleInner(typ, "vec"); ok {
		return codec.TypeInfo{Kind: codec.KindArray, ElementType: el}
	}
	if inner, ok := angleInner(typ, "map"); ok {
		if k, v, ok := splitTopLevel(inner); ok {
			return codec.TypeInfo{Kind: codec.KindMap, KeyType: k, ValueType: v}
		}
	}
	if _, ok := angleInner(typ, "tuple"); ok {
		return codec.TypeInfo{Kind: codec.KindTuple}
	}
	if el, ok := angleInner(typ, "option"); ok {
		return m.TypeInfo(el)
	}
	if mm := bytesNPattern.FindStringSubmatch(typ); mm != nil {
		n, _ := strconv.Atoi(mm[1])
		return codec.TypeInfo{Kind: codec.KindBytes, ByteLength: n}
	}
	if _, ok := m.enums[typ]; ok {
		return codec.TypeInfo{Kind: codec.KindEnum}
	}
	return codec.TypeInfo{Kind: codec.KindUnknown}
}

// CanonicalAddress validates a strkey: 56 base32 characters starting with G
// (account) or C (contract). Lowercase input is canonicalized to uppercase.
func (m *Module) CanonicalAddress(raw string) (string, error) {
	canon := strings.ToUpper(raw)
	if !strkeyPattern.MatchString(canon) {
		return "", errors.Errorf("invalid strkey address %q", raw)
	}
	return canon, nil
}

func (m *Module) EnumVariants(typ string) []schema.EnumVariantMetadata {
	return m.enums[typ]
}

func (m *Module) FormatLeaf(string, any) (string, bool) { return "", false }

// angleInner extracts T from prefix<T>, tolerating nested angle brackets.
func angleInner(typ, prefix string) (string, bool) {
	open := prefix + "<"
	if !strings.HasPrefix(typ, open) || !strings.HasSuffix(typ, ">") {
		return "", false
	}
	inner := typ[len(open) : len(typ)-1]
	if inner == "" {
		return "", false
	}
	return strings.TrimSpace(inner), true
}

// splitTopLevel splits "K, V" on the first comma outside angle brackets.
func splitTopLevel(inner string) (string, string, bool) {
	depth := 0
	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				return strings.TrimSpace(inner[:i]), strings.TrimSpace(inner[i+1:]), true
			}
		}
	}
	return "", "", false
}
