package schema

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const itemsJSON = `[
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"Transfer","inputs":[]}
]`

func evmNet() NetworkDescriptor {
	return NetworkDescriptor{ID: "1", Ecosystem: "evm"}
}

func normalizePayload(t *testing.T, payload string) *ContractSchema {
	t.Helper()
	art := &RawProviderArtifact{Provider: "test", Payload: json.RawMessage(payload)}
	s, err := Normalize(art, evmNet(), "0x01")
	require.NoError(t, err)
	return s
}

func TestNormalize_PayloadShapes(t *testing.T) {
	encoded, err := json.Marshal(itemsJSON)
	require.NoError(t, err)

	for name, payload := range map[string]string{
		"direct array":            itemsJSON,
		"result envelope array":   fmt.Sprintf(`{"status":"1","message":"OK","result":%s}`, itemsJSON),
		"result envelope string":  fmt.Sprintf(`{"status":"1","message":"OK","result":%s}`, encoded),
		"abi key":                 fmt.Sprintf(`{"name":"Token","abi":%s}`, itemsJSON),
		"metadata output path":    fmt.Sprintf(`{"compiler":{},"output":{"abi":%s}}`, itemsJSON),
		"whole JSON-coded string": string(encoded),
	} {
		t.Run(name, func(t *testing.T) {
			s := normalizePayload(t, payload)
			require.Len(t, s.Functions, 2)
			assert.Equal(t, "balanceOf", s.Functions[0].Name)
			assert.Equal(t, "transfer", s.Functions[1].Name)
		})
	}
}

func TestNormalize_Malformed(t *testing.T) {
	for name, payload := range map[string]string{
		"object without abi":  `{"not":"an abi"}`,
		"bare string":         `"hello"`,
		"string of an object": `"{\"a\":1}"`,
		"number":              `42`,
	} {
		t.Run(name, func(t *testing.T) {
			art := &RawProviderArtifact{Provider: "test", Payload: json.RawMessage(payload)}
			_, err := Normalize(art, evmNet(), "0x01")
			var malformed *MalformedArtifactError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, "test", malformed.Provider)
		})
	}
}

func TestNormalize_Functions(t *testing.T) {
	s := normalizePayload(t, itemsJSON)

	t.Run("non-function items are dropped", func(t *testing.T) {
		require.Len(t, s.Functions, 2)
	})

	t.Run("state flags follow mutability tags", func(t *testing.T) {
		assert.False(t, s.Functions[0].ModifiesState)
		assert.True(t, s.Functions[1].ModifiesState)
	})

	t.Run("display names are humanized", func(t *testing.T) {
		assert.Equal(t, "Balance Of", s.Functions[0].DisplayName)
	})

	t.Run("nested components survive", func(t *testing.T) {
		nested := `[{"type":"function","name":"submit","stateMutability":"nonpayable",
			"inputs":[{"name":"order","type":"tuple","components":[
				{"name":"maker","type":"address"},
				{"name":"parts","type":"tuple[]","components":[{"name":"id","type":"uint32"}]}
			]}],"outputs":[]}]`
		s := normalizePayload(t, nested)
		require.Len(t, s.Functions, 1)
		in := s.Functions[0].Inputs
		require.Len(t, in, 1)
		require.Len(t, in[0].Components, 2)
		require.Len(t, in[0].Components[1].Components, 1)
		assert.Equal(t, "id", in[0].Components[1].Components[0].Name)
	})
}

func TestNormalize_OverloadIDs(t *testing.T) {
	overloaded := `[
		{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[],"outputs":[]},
		{"type":"function","name":"withdraw","stateMutability":"nonpayable",
		 "inputs":[{"name":"amount","type":"uint256"}],"outputs":[]},
		{"type":"function","name":"deposit","stateMutability":"payable","inputs":[],"outputs":[]}
	]`
	s := normalizePayload(t, overloaded)
	require.Len(t, s.Functions, 3)
	assert.Equal(t, "withdraw()", s.Functions[0].ID)
	assert.Equal(t, "withdraw(uint256)", s.Functions[1].ID)
	// Non-overloaded functions keep their plain name.
	assert.Equal(t, "deposit", s.Functions[2].ID)
}

func TestModifiesState(t *testing.T) {
	readOnly := readOnlyTags["evm"]
	truth := true

	assert.False(t, modifiesState(abiItem{StateMutability: "view"}, readOnly))
	assert.False(t, modifiesState(abiItem{StateMutability: "pure"}, readOnly))
	assert.True(t, modifiesState(abiItem{StateMutability: "nonpayable"}, readOnly))
	assert.True(t, modifiesState(abiItem{StateMutability: "payable"}, readOnly))
	assert.True(t, modifiesState(abiItem{}, readOnly))
	// Legacy artifacts mark read-only calls with constant instead.
	assert.False(t, modifiesState(abiItem{Constant: &truth}, readOnly))
}

func TestHumanizeName(t *testing.T) {
	for in, want := range map[string]string{
		"transferFrom":     "Transfer From",
		"balance_of":       "Balance Of",
		"safeTransferFrom": "Safe Transfer From",
		"submit":           "Submit",
		"DOMAIN_SEPARATOR": "DOMAIN SEPARATOR",
		"tokenURI":         "Token URI",
		"ERC20Token":       "ERC20 Token",
		"":                 "",
	} {
		assert.Equal(t, want, HumanizeName(in), "input %q", in)
	}
}
