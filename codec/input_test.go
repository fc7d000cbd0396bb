package codec_test

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainforms/contract-framework/codec"
	"github.com/chainforms/contract-framework/evm"
	"github.com/chainforms/contract-framework/schema"
	"github.com/chainforms/contract-framework/stellar"
)

type recordingDiagnostics struct {
	mu          sync.Mutex
	unknown     []string
	parseErrors []string
}

func (d *recordingDiagnostics) UnknownType(parameter, typ string, _ any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unknown = append(d.unknown, parameter+":"+typ)
}

func (d *recordingDiagnostics) ParseError(parameter, typ string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.parseErrors = append(d.parseErrors, parameter+":"+typ)
}

func param(name, typ string, components ...schema.FunctionParameter) schema.FunctionParameter {
	return schema.FunctionParameter{Name: name, Type: typ, Components: components}
}

func TestParseInput_Integers(t *testing.T) {
	eco := evm.Module{}

	t.Run("beyond float64 precision stays exact", func(t *testing.T) {
		const raw = "123456789012345678901234"
		v, err := codec.ParseInput(eco, param("amount", "uint256"), raw, nil)
		require.NoError(t, err)
		i, ok := v.(*big.Int)
		require.True(t, ok)
		assert.Equal(t, raw, i.String())

		// Round trip: the decoded equivalent formats back to the identical
		// decimal string.
		got := codec.FormatResult(eco, []schema.FunctionParameter{{Type: "uint256"}}, []any{i})
		assert.Equal(t, raw, got)
	})

	t.Run("hex and negative values", func(t *testing.T) {
		v, err := codec.ParseInput(eco, param("n", "uint64"), "0xff", nil)
		require.NoError(t, err)
		assert.Equal(t, "255", v.(*big.Int).String())

		v, err = codec.ParseInput(eco, param("n", "int128"), "-42", nil)
		require.NoError(t, err)
		assert.Equal(t, "-42", v.(*big.Int).String())
	})

	t.Run("small widths parse to big.Int too", func(t *testing.T) {
		v, err := codec.ParseInput(eco, param("n", "uint8"), float64(7), nil)
		require.NoError(t, err)
		assert.IsType(t, (*big.Int)(nil), v)
	})

	t.Run("garbage is attributed to the parameter", func(t *testing.T) {
		_, err := codec.ParseInput(eco, param("amount", "uint256"), "not a number", nil)
		var perr *codec.ParameterParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "amount", perr.Parameter)
		assert.Equal(t, "uint256", perr.Type)
	})

	t.Run("fractional float rejected", func(t *testing.T) {
		_, err := codec.ParseInput(eco, param("n", "uint32"), 1.5, nil)
		require.Error(t, err)
	})
}

func TestParseInput_Addresses(t *testing.T) {
	eco := evm.Module{}

	t.Run("lowercase canonicalizes to checksum form", func(t *testing.T) {
		v, err := codec.ParseInput(eco, param("to", "address"), "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359", nil)
		require.NoError(t, err)
		assert.Equal(t, "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", v)
	})

	t.Run("bad checksum rejected", func(t *testing.T) {
		_, err := codec.ParseInput(eco, param("to", "address"), "0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checksum")
	})

	t.Run("empty rejected", func(t *testing.T) {
		_, err := codec.ParseInput(eco, param("to", "address"), "   ", nil)
		require.Error(t, err)
	})
}

func TestParseInput_Arrays(t *testing.T) {
	eco := evm.Module{}

	t.Run("top-level arrives as a JSON string", func(t *testing.T) {
		v, err := codec.ParseInput(eco, param("amounts", "uint256[]"), `["1","2","3"]`, nil)
		require.NoError(t, err)
		vals := v.([]any)
		require.Len(t, vals, 3)
		assert.Equal(t, "3", vals[2].(*big.Int).String())
	})

	t.Run("address elements canonicalize", func(t *testing.T) {
		raw := `["0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed","0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"]`
		v, err := codec.ParseInput(eco, param("recipients", "address[]"), raw, nil)
		require.NoError(t, err)
		vals := v.([]any)
		require.Len(t, vals, 2)
		assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", vals[0])
		assert.Equal(t, "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", vals[1])
	})

	t.Run("invalid element is named by index", func(t *testing.T) {
		raw := `["0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed","0x5aaeb6053F3E94C9b9A09f33669435E7Ef1BeAed"]`
		_, err := codec.ParseInput(eco, param("recipients", "address[]"), raw, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "recipients[1]")
	})

	t.Run("non-JSON top-level rejected", func(t *testing.T) {
		_, err := codec.ParseInput(eco, param("amounts", "uint256[]"), "1,2,3", nil)
		require.Error(t, err)
	})

	t.Run("nested arrays stay structured", func(t *testing.T) {
		v, err := codec.ParseInput(eco, param("grid", "uint8[][]"), `[[1,2],[3]]`, nil)
		require.NoError(t, err)
		rows := v.([]any)
		require.Len(t, rows, 2)
		assert.Equal(t, "3", rows[1].([]any)[0].(*big.Int).String())
	})
}

func TestParseInput_Tuples(t *testing.T) {
	eco := evm.Module{}
	order := param("order", "tuple",
		param("maker", "address"),
		param("amount", "uint256"),
	)

	t.Run("object keys map onto components", func(t *testing.T) {
		raw := `{"maker":"0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359","amount":"10"}`
		v, err := codec.ParseInput(eco, order, raw, nil)
		require.NoError(t, err)
		obj := v.(map[string]any)
		assert.Equal(t, "10", obj["amount"].(*big.Int).String())
		assert.Equal(t, "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359", obj["maker"])
	})

	t.Run("extra key is named in the error", func(t *testing.T) {
		raw := `{"maker":"0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359","amount":"10","bogus":1}`
		_, err := codec.ParseInput(eco, order, raw, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bogus")
	})

	t.Run("missing key is named in the error", func(t *testing.T) {
		_, err := codec.ParseInput(eco, order, `{"maker":"0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"}`, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "amount")
	})

	t.Run("nested failure names the full path", func(t *testing.T) {
		raw := `{"maker":"nope","amount":"10"}`
		_, err := codec.ParseInput(eco, order, raw, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "order.maker")
	})
}

func TestParseInput_Bytes(t *testing.T) {
	eco := evm.Module{}

	t.Run("0x prefix optional", func(t *testing.T) {
		v, err := codec.ParseInput(eco, param("data", "bytes"), "0xdeadbeef", nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, v)

		v, err = codec.ParseInput(eco, param("data", "bytes"), "deadbeef", nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, v)
	})

	t.Run("fixed width enforced", func(t *testing.T) {
		_, err := codec.ParseInput(eco, param("hash", "bytes32"), "0xdeadbeef", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 32 bytes, got 4")
	})
}

func TestParseInput_Bools(t *testing.T) {
	eco := evm.Module{}
	for _, tt := range []struct {
		raw  any
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"TRUE", true},
		{"false", false},
		{"", false},
		{"yes", true},
		{float64(0), false},
		{float64(1), true},
		{nil, false},
	} {
		v, err := codec.ParseInput(eco, param("flag", "bool"), tt.raw, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, v, "raw %v", tt.raw)
	}
}

func TestParseInput_FailuresAreObservable(t *testing.T) {
	eco := evm.Module{}

	t.Run("one rejection, one observation", func(t *testing.T) {
		diag := &recordingDiagnostics{}
		_, err := codec.ParseInput(eco, param("amount", "uint256"), "not a number", diag)
		require.Error(t, err)
		require.Len(t, diag.parseErrors, 1)
		assert.Equal(t, "amount:uint256", diag.parseErrors[0])
	})

	t.Run("nested failure attributes to the top-level parameter", func(t *testing.T) {
		diag := &recordingDiagnostics{}
		order := param("order", "tuple", param("maker", "address"))
		_, err := codec.ParseInput(eco, order, `{"maker":"nope"}`, diag)
		require.Error(t, err)
		require.Len(t, diag.parseErrors, 1)
		assert.Equal(t, "order:tuple", diag.parseErrors[0])
	})

	t.Run("success records nothing", func(t *testing.T) {
		diag := &recordingDiagnostics{}
		_, err := codec.ParseInput(eco, param("amount", "uint256"), "1", diag)
		require.NoError(t, err)
		assert.Empty(t, diag.parseErrors)
	})
}

func TestParseInput_UnknownTypePassesThrough(t *testing.T) {
	eco := evm.Module{}
	diag := &recordingDiagnostics{}

	v, err := codec.ParseInput(eco, param("weird", "function"), "0xabcdef", diag)
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef", v)
	require.Len(t, diag.unknown, 1)
	assert.Equal(t, "weird:function", diag.unknown[0])
}

func TestParseInput_StellarComposites(t *testing.T) {
	eco := stellar.NewModule()
	eco.RegisterEnum("OfferKind", []schema.EnumVariantMetadata{
		{Name: "Passive"},
		{Name: "Limit", PayloadTypes: []string{"u64"}, IsTuple: true},
	})

	t.Run("bare string selects a unit variant", func(t *testing.T) {
		v, err := codec.ParseInput(eco, param("kind", "OfferKind"), "Passive", nil)
		require.NoError(t, err)
		assert.Equal(t, codec.EnumValue{Variant: "Passive"}, v)
	})

	t.Run("tuple variant carries a parsed payload", func(t *testing.T) {
		v, err := codec.ParseInput(eco, param("kind", "OfferKind"), `{"variant":"Limit","values":["500"]}`, nil)
		require.NoError(t, err)
		ev := v.(codec.EnumValue)
		assert.Equal(t, "Limit", ev.Variant)
		require.Len(t, ev.Values, 1)
		assert.Equal(t, "500", ev.Values[0].(*big.Int).String())
	})

	t.Run("unknown variant rejected", func(t *testing.T) {
		_, err := codec.ParseInput(eco, param("kind", "OfferKind"), "Market", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Market")
	})

	t.Run("payload arity enforced", func(t *testing.T) {
		_, err := codec.ParseInput(eco, param("kind", "OfferKind"), `{"variant":"Limit","values":[]}`, nil)
		require.Error(t, err)
	})

	t.Run("map entries sort by key", func(t *testing.T) {
		v, err := codec.ParseInput(eco, param("weights", "map<symbol, u32>"), `{"b":"2","a":"1"}`, nil)
		require.NoError(t, err)
		entries := v.([]codec.MapEntry)
		require.Len(t, entries, 2)
		assert.Equal(t, "a", entries[0].Key)
		assert.Equal(t, "1", entries[0].Value.(*big.Int).String())
		assert.Equal(t, "b", entries[1].Key)
	})
}
