package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Capability is a bitmask of services a network exposes. Provider adapters
// declare which capabilities they need; candidates whose requirements the
// network lacks are skipped during resolution without counting as failures.
type Capability uint32

const (
	CapabilityExplorerAPI Capability = 1 << iota
	CapabilityVerifierAPI
	CapabilityRPC
)

// Well-known service endpoint keys on a NetworkDescriptor.
const (
	ServiceExplorer   = "explorer"
	ServiceVerifier   = "verifier"
	ServiceBlockscout = "blockscout"
	ServiceRPC        = "rpc"
)

// NetworkDescriptor identifies one chain/network. It is supplied by the
// network registry and treated as immutable here.
type NetworkDescriptor struct {
	ID           string
	Name         string
	Ecosystem    string
	Capabilities Capability
	// Endpoints maps a service key (explorer, verifier, rpc) to its base URL.
	Endpoints map[string]string
}

func (n NetworkDescriptor) Has(c Capability) bool {
	return n.Capabilities&c == c
}

func (n NetworkDescriptor) Endpoint(service string) string {
	return n.Endpoints[service]
}

// ContractArtifactSource describes one load request. An inline artifact, if
// present, bypasses fetching entirely. A forced provider disables fallback.
type ContractArtifactSource struct {
	Address        string
	ForcedProvider string
	Inline         json.RawMessage
}

// RawProviderArtifact is one provider's response, opaque until normalized.
// It is never mutated after fetch.
type RawProviderArtifact struct {
	Provider string
	URL      string
	Payload  json.RawMessage
}

// ContractSchema is the canonical, ecosystem-agnostic contract interface.
// It is built once per load and never mutated afterwards.
type ContractSchema struct {
	Ecosystem string             `json:"ecosystem"`
	Name      string             `json:"name,omitempty"`
	Address   string             `json:"address"`
	Functions []ContractFunction `json:"functions"`
	Metadata  map[string]string  `json:"metadata,omitempty"`
}

// ContractFunction is one callable entry of a schema. Overloaded functions
// sharing a name carry distinct IDs derived from their full signature.
type ContractFunction struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	DisplayName     string              `json:"displayName"`
	Inputs          []FunctionParameter `json:"inputs"`
	Outputs         []FunctionParameter `json:"outputs"`
	StateMutability string              `json:"stateMutability,omitempty"`
	ModifiesState   bool                `json:"modifiesState"`
}

// Signature returns the function's full signature, e.g. "transfer(address,uint256)".
func (f ContractFunction) Signature() string {
	types := make([]string, len(f.Inputs))
	for i, in := range f.Inputs {
		types[i] = in.Type
	}
	return fmt.Sprintf("%s(%s)", f.Name, strings.Join(types, ","))
}

// FunctionParameter is one argument or return slot. Composite types retain
// their full nested component fidelity.
type FunctionParameter struct {
	Name        string              `json:"name"`
	Type        string              `json:"type"`
	Components  []FunctionParameter `json:"components,omitempty"`
	Description string              `json:"description,omitempty"`
}

// EnumVariantMetadata describes one variant of an enum-shaped parameter type.
// A unit variant carries no payload; a tuple variant carries PayloadTypes.
type EnumVariantMetadata struct {
	Name         string   `json:"name"`
	PayloadTypes []string `json:"payloadTypes,omitempty"`
	IsTuple      bool     `json:"isTuple"`
}
