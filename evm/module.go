// Package evm is the EVM ecosystem module: the Solidity type grammar, the
// field type table and bounds for form generation, and the leaf rules the
// codec dispatches through.
package evm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/chainforms/contract-framework/codec"
	"github.com/chainforms/contract-framework/schema"
)

var (
	arrayPattern = regexp.MustCompile(`^(.+)\[(\d*)\]$`)
	intPattern   = regexp.MustCompile(`^(u?int)(8|16|24|32|40|48|56|64|72|80|88|96|104|112|120|128|136|144|152|160|168|176|184|192|200|208|216|224|232|240|248|256)?$`)
	bytesPattern = regexp.MustCompile(`^bytes([1-9]|[12][0-9]|3[0-2])$`)
	fixedPattern = regexp.MustCompile(`^(u?)fixed(\d+)x(\d+)$`)
	addrPattern  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// Module implements the shared ecosystem contract for EVM chains.
type Module struct{}

var _ codec.Ecosystem = Module{}

func (Module) Name() string { return "evm" }

func (Module) TypeInfo(typ string) codec.TypeInfo {
	switch typ {
	case "address":
		return codec.TypeInfo{Kind: codec.KindAddress}
	case "bool":
		return codec.TypeInfo{Kind: codec.KindBool}
	case "string":
		return codec.TypeInfo{Kind: codec.KindString}
	case "bytes":
		return codec.TypeInfo{Kind: codec.KindBytes}
	case "tuple":
		return codec.TypeInfo{Kind: codec.KindTuple}
	}
	if m := arrayPattern.FindStringSubmatch(typ); m != nil {
		return codec.TypeInfo{Kind: codec.KindArray, ElementType: m[1]}
	}
	if m := bytesPattern.FindStringSubmatch(typ); m != nil {
		n, _ := strconv.Atoi(m[1])
		return codec.TypeInfo{Kind: codec.KindBytes, ByteLength: n}
	}
	if signed, bits, ok := parseIntType(typ); ok {
		return codec.TypeInfo{Kind: codec.KindInteger, Bits: bits, Signed: signed}
	}
	return codec.TypeInfo{Kind: codec.KindUnknown}
}

// CanonicalAddress validates an address and returns its EIP-55 checksummed
// form. Mixed-case input must already carry a correct checksum; uniformly
// cased input is canonicalized without a checksum check.
func (Module) CanonicalAddress(raw string) (string, error) {
	if !addrPattern.MatchString(raw) {
		return "", errors.Errorf("invalid address %q", raw)
	}
	checksummed := common.HexToAddress(raw).Hex()
	hexPart := raw[2:]
	if hexPart != strings.ToLower(hexPart) && hexPart != strings.ToUpper(hexPart) && raw != checksummed {
		return "", errors.Errorf("address %q fails checksum validation", raw)
	}
	return checksummed, nil
}

// EnumVariants always returns nil; the Solidity ABI has no enum-shaped
// parameter encoding (enums surface as uint8).
func (Module) EnumVariants(string) []schema.EnumVariantMetadata { return nil }

// FormatLeaf renders fixed-point values scaled to their declared fractional
// digits. Everything else defers to the generic formatter.
func (Module) FormatLeaf(typ string, v any) (string, bool) {
	m := fixedPattern.FindStringSubmatch(typ)
	if m == nil {
		return "", false
	}
	frac, err := strconv.Atoi(m[3])
	if err != nil {
		return "", false
	}
	switch val := v.(type) {
	case interface{ String() string }:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return "", false
		}
		return d.Shift(int32(-frac)).String(), true
	default:
		return "", false
	}
}

// parseIntType reports the signedness and bit width of a uintN/intN type.
// A bare uint/int defaults to 256 bits.
func parseIntType(typ string) (signed bool, bits int, ok bool) {
	m := intPattern.FindStringSubmatch(typ)
	if m == nil {
		return false, 0, false
	}
	signed = m[1] == "int"
	if m[2] == "" {
		return signed, 256, true
	}
	bits, err := strconv.Atoi(m[2])
	if err != nil {
		return false, 0, false
	}
	return signed, bits, true
}
