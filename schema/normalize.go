package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// MalformedArtifactError indicates a fetched payload that could not be
// normalized into a ContractSchema. It is fatal to the load.
type MalformedArtifactError struct {
	Provider string
	Reason   string
}

func (e *MalformedArtifactError) Error() string {
	return fmt.Sprintf("malformed artifact from provider %q: %s", e.Provider, e.Reason)
}

// readOnlyTags lists, per ecosystem, the mutability tags that designate a
// call as read-only. Anything else is assumed to modify state.
var readOnlyTags = map[string]map[string]bool{
	"evm":     {"view": true, "pure": true},
	"stellar": {"view": true, "read": true},
}

// shapeMatcher attempts to unwrap a provider payload into the raw interface
// item array. It declines (ok=false) when the payload is not its shape.
// Matchers are tried in order; the first producing an array wins.
type shapeMatcher func(payload json.RawMessage) (items json.RawMessage, ok bool)

var shapeMatchers = []shapeMatcher{
	matchDirectArray,
	matchResultEnvelope,
	matchABIKey,
	matchMetadataOutput,
	matchEncodedString,
}

// matchDirectArray accepts a payload that already is the item array.
func matchDirectArray(payload json.RawMessage) (json.RawMessage, bool) {
	if isJSONArray(payload) {
		return payload, true
	}
	return nil, false
}

// matchResultEnvelope unwraps the explorer response envelope
// {"status": ..., "result": <array or JSON-encoded string>}.
func matchResultEnvelope(payload json.RawMessage) (json.RawMessage, bool) {
	var env struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(payload, &env); err != nil || len(env.Result) == 0 {
		return nil, false
	}
	if isJSONArray(env.Result) {
		return env.Result, true
	}
	return matchEncodedString(env.Result)
}

// matchABIKey unwraps {"abi": [...]} as returned by blockscout-style APIs
// and build artifacts.
func matchABIKey(payload json.RawMessage) (json.RawMessage, bool) {
	var obj struct {
		ABI json.RawMessage `json:"abi"`
	}
	if err := json.Unmarshal(payload, &obj); err != nil || !isJSONArray(obj.ABI) {
		return nil, false
	}
	return obj.ABI, true
}

// matchMetadataOutput unwraps the verifier metadata path {"output": {"abi": [...]}}.
func matchMetadataOutput(payload json.RawMessage) (json.RawMessage, bool) {
	var obj struct {
		Output struct {
			ABI json.RawMessage `json:"abi"`
		} `json:"output"`
	}
	if err := json.Unmarshal(payload, &obj); err != nil || !isJSONArray(obj.Output.ABI) {
		return nil, false
	}
	return obj.Output.ABI, true
}

// matchEncodedString accepts a JSON string whose content is itself the
// JSON-encoded item array.
func matchEncodedString(payload json.RawMessage) (json.RawMessage, bool) {
	var s string
	if err := json.Unmarshal(payload, &s); err != nil {
		return nil, false
	}
	inner := json.RawMessage(s)
	if isJSONArray(inner) {
		return inner, true
	}
	return nil, false
}

func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		if unicode.IsSpace(rune(b)) {
			continue
		}
		return b == '['
	}
	return false
}

// abiItem is the provider-shape of one interface entry.
type abiItem struct {
	Type            string     `json:"type"`
	Name            string     `json:"name"`
	StateMutability string     `json:"stateMutability"`
	Constant        *bool      `json:"constant"`
	Inputs          []abiParam `json:"inputs"`
	Outputs         []abiParam `json:"outputs"`
}

type abiParam struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Components []abiParam `json:"components"`
}

// Normalize converts one raw provider artifact into the canonical schema for
// the given network. The payload is unwrapped by the ordered shape-matcher
// chain; anything that does not resolve to an item array is malformed.
func Normalize(art *RawProviderArtifact, net NetworkDescriptor, address string) (*ContractSchema, error) {
	var items json.RawMessage
	matched := false
	for _, m := range shapeMatchers {
		if out, ok := m(art.Payload); ok {
			items = out
			matched = true
			break
		}
	}
	if !matched {
		return nil, &MalformedArtifactError{Provider: art.Provider, Reason: "payload does not unwrap to an interface item array"}
	}

	var raw []abiItem
	if err := json.Unmarshal(items, &raw); err != nil {
		return nil, &MalformedArtifactError{Provider: art.Provider, Reason: fmt.Sprintf("item array does not decode: %v", err)}
	}

	readOnly := readOnlyTags[net.Ecosystem]
	nameCounts := make(map[string]int)
	for _, item := range raw {
		if item.Type == "function" {
			nameCounts[item.Name]++
		}
	}

	s := &ContractSchema{
		Ecosystem: net.Ecosystem,
		Address:   address,
		Metadata:  map[string]string{"provider": art.Provider},
	}
	for _, item := range raw {
		if item.Type != "function" || item.Name == "" {
			continue
		}
		fn := ContractFunction{
			Name:            item.Name,
			DisplayName:     HumanizeName(item.Name),
			Inputs:          convertParams(item.Inputs),
			Outputs:         convertParams(item.Outputs),
			StateMutability: item.StateMutability,
			ModifiesState:   modifiesState(item, readOnly),
		}
		if nameCounts[item.Name] > 1 {
			fn.ID = fn.Signature()
		} else {
			fn.ID = fn.Name
		}
		s.Functions = append(s.Functions, fn)
	}
	return s, nil
}

func convertParams(in []abiParam) []FunctionParameter {
	if len(in) == 0 {
		return nil
	}
	out := make([]FunctionParameter, len(in))
	for i, p := range in {
		out[i] = FunctionParameter{
			Name:       p.Name,
			Type:       p.Type,
			Components: convertParams(p.Components),
		}
	}
	return out
}

// modifiesState derives the state flag from the chain's mutability tag.
// Only the ecosystem's designated read-only tags (or the legacy constant
// flag) make it false.
func modifiesState(item abiItem, readOnly map[string]bool) bool {
	if item.Constant != nil && *item.Constant {
		return false
	}
	return !readOnly[item.StateMutability]
}

// HumanizeName renders a camelCase or snake_case identifier as a
// title-cased display label, e.g. "transferFrom" -> "Transfer From".
func HumanizeName(name string) string {
	if name == "" {
		return ""
	}
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ':
			flush()
		case unicode.IsUpper(r):
			// Start a new word unless continuing an uppercase run.
			if n := len(cur); n > 0 && !unicode.IsUpper(cur[n-1]) {
				flush()
			}
			cur = append(cur, r)
		default:
			// An uppercase run followed by lowercase ends one rune early:
			// the last capital starts the next word ("HTMLParser" splits
			// before "Parser").
			if n := len(cur); unicode.IsLower(r) && n > 1 && unicode.IsUpper(cur[n-1]) && unicode.IsUpper(cur[n-2]) {
				last := cur[n-1]
				cur = cur[:n-1]
				flush()
				cur = []rune{last}
			}
			cur = append(cur, r)
		}
	}
	flush()
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
