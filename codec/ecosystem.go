// Package codec converts user-submitted form values into natively typed call
// arguments and formats decoded call results back into display strings.
//
// The recursion framework here is ecosystem-agnostic. Everything that differs
// between native type systems (type string grammar, address canonicalization,
// leaf display rules) is supplied by an Ecosystem module.
package codec

import (
	"github.com/chainforms/contract-framework/schema"
)

// TypeKind classifies a native type string for codec dispatch.
type TypeKind int

const (
	KindUnknown TypeKind = iota
	KindArray
	KindTuple
	KindEnum
	KindMap
	KindBytes
	KindInteger
	KindAddress
	KindBool
	KindString
)

// TypeInfo is the parsed shape of one native type string.
type TypeInfo struct {
	Kind        TypeKind
	ElementType string // arrays
	KeyType     string // maps
	ValueType   string // maps
	ByteLength  int    // fixed byte types; 0 means dynamic
	Bits        int    // integer width; 0 means unbounded
	Signed      bool
}

// Ecosystem is the per-chain capability module the codec and field layers
// dispatch through. One implementation exists per supported type system.
type Ecosystem interface {
	Name() string

	// TypeInfo classifies a native type string. Unrecognized types must
	// return KindUnknown rather than an error.
	TypeInfo(typ string) TypeInfo

	// CanonicalAddress validates an address string and returns its
	// canonical (e.g. checksummed) form.
	CanonicalAddress(raw string) (string, error)

	// EnumVariants returns variant metadata for an enum-shaped type, or nil
	// when the type is not enum-shaped or its variants are unknown.
	EnumVariants(typ string) []schema.EnumVariantMetadata

	// FormatLeaf renders an ecosystem-specific display form for a decoded
	// leaf value. Returning ok=false defers to the generic formatter.
	FormatLeaf(typ string, v any) (string, bool)
}

// Diagnostics receives observations made during parsing. The codec never
// fails on an unrecognized type; it reports it here and passes the value
// through. Parse failures are reported once, attributed to the top-level
// parameter, in addition to the returned error.
type Diagnostics interface {
	UnknownType(parameter, typ string, value any)
	ParseError(parameter, typ string)
}

// NopDiagnostics discards all observations.
type NopDiagnostics struct{}

func (NopDiagnostics) UnknownType(string, string, any) {}
func (NopDiagnostics) ParseError(string, string)       {}
