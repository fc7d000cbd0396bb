package stellar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainforms/contract-framework/codec"
	"github.com/chainforms/contract-framework/fields"
	"github.com/chainforms/contract-framework/schema"
)

func TestModule_TypeInfo(t *testing.T) {
	m := NewModule()

	info := m.TypeInfo("u128")
	assert.Equal(t, codec.KindInteger, info.Kind)
	assert.Equal(t, 128, info.Bits)
	assert.False(t, info.Signed)

	info = m.TypeInfo("vec<address>")
	assert.Equal(t, codec.KindArray, info.Kind)
	assert.Equal(t, "address", info.ElementType)

	info = m.TypeInfo("map<symbol, vec<u32>>")
	assert.Equal(t, codec.KindMap, info.Kind)
	assert.Equal(t, "symbol", info.KeyType)
	assert.Equal(t, "vec<u32>", info.ValueType)

	info = m.TypeInfo("bytesn<32>")
	assert.Equal(t, codec.KindBytes, info.Kind)
	assert.Equal(t, 32, info.ByteLength)

	// Options are transparent for codec purposes.
	assert.Equal(t, codec.KindInteger, m.TypeInfo("option<u64>").Kind)

	assert.Equal(t, codec.KindTuple, m.TypeInfo("tuple<u32, address>").Kind)
	assert.Equal(t, codec.KindUnknown, m.TypeInfo("val").Kind)

	m.RegisterEnum("Direction", []schema.EnumVariantMetadata{{Name: "Up"}, {Name: "Down"}})
	assert.Equal(t, codec.KindEnum, m.TypeInfo("Direction").Kind)
}

func TestModule_CanonicalAddress(t *testing.T) {
	m := NewModule()

	const account = "GA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJVSGZ"
	got, err := m.CanonicalAddress(account)
	require.NoError(t, err)
	assert.Equal(t, account, got)

	t.Run("lowercase canonicalizes to uppercase", func(t *testing.T) {
		got, err := m.CanonicalAddress("ga7qynf7sowq3glr2bgmzehxavirza4kvwltjjfc7mgxua74p7ujvsgz")
		require.NoError(t, err)
		assert.Equal(t, account, got)
	})

	t.Run("contract strkeys accepted", func(t *testing.T) {
		_, err := m.CanonicalAddress("CA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJVSGZ")
		assert.NoError(t, err)
	})

	t.Run("invalid strkeys rejected", func(t *testing.T) {
		for _, raw := range []string{"", "XA7QYNF7SOWQ3GLR2BGMZEHXAVIRZA4KVWLTJJFC7MGXUA74P7UJVSGZ", "GA7QYNF7", "0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359"} {
			_, err := m.CanonicalAddress(raw)
			assert.Error(t, err, "input %q", raw)
		}
	})
}

func TestMapper(t *testing.T) {
	m := NewModule()
	m.RegisterEnum("OfferKind", []schema.EnumVariantMetadata{{Name: "Passive"}})
	mapper := m.NewMapper()

	for typ, want := range map[string]fields.FieldType{
		"u32":                  fields.FieldNumber,
		"i32":                  fields.FieldNumber,
		"u64":                  fields.FieldBigInt,
		"i256":                 fields.FieldBigInt,
		"timepoint":            fields.FieldBigInt,
		"symbol":               fields.FieldText,
		"address":              fields.FieldAddress,
		"vec<u32>":             fields.FieldArray,
		"vec<tuple<u32, u32>>": fields.FieldArrayObject,
		"tuple<u32, address>":  fields.FieldObject,
		"map<symbol, u32>":     fields.FieldMap,
		"bytesn<32>":           fields.FieldBytes,
		"OfferKind":            fields.FieldEnum,
		"option<u64>":          fields.FieldBigInt,
		"option<u32>":          fields.FieldNumber,
	} {
		assert.Equal(t, want, mapper.Map(typ), "type %s", typ)
	}

	res, known := mapper.Resolve("val")
	assert.False(t, known)
	assert.Equal(t, fields.FieldText, res.Type)
}

func TestIntBounds(t *testing.T) {
	b, ok := IntBounds("u32")
	require.True(t, ok)
	assert.Equal(t, int64(0), b.Min)
	assert.Equal(t, int64(4294967295), b.Max)

	b, ok = IntBounds("i32")
	require.True(t, ok)
	assert.Equal(t, int64(-2147483648), b.Min)
	assert.Equal(t, int64(2147483647), b.Max)

	for _, typ := range []string{"u64", "i64", "u128", "i256", "timepoint", "duration"} {
		_, ok := IntBounds(typ)
		assert.False(t, ok, "type %s", typ)
	}
}
