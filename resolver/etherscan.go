package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/chainforms/contract-framework/schema"
)

// EtherscanAdapter fetches contract interfaces from an etherscan-family
// explorer API. The response envelope is {"status","message","result"} with
// the interface JSON-encoded inside result.
type EtherscanAdapter struct {
	client *http.Client
	apiKey string
}

func NewEtherscanAdapter(client *http.Client, apiKey string) *EtherscanAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &EtherscanAdapter{client: client, apiKey: apiKey}
}

func (a *EtherscanAdapter) Name() string { return "etherscan" }

func (a *EtherscanAdapter) Requires() schema.Capability { return schema.CapabilityExplorerAPI }

func (a *EtherscanAdapter) Fetch(ctx context.Context, address string, net schema.NetworkDescriptor) (*schema.RawProviderArtifact, error) {
	base := net.Endpoint(schema.ServiceExplorer)
	if base == "" {
		return nil, errors.Errorf("network %s has no explorer endpoint", net.ID)
	}
	q := url.Values{}
	q.Set("module", "contract")
	q.Set("action", "getabi")
	q.Set("address", address)
	if a.apiKey != "" {
		q.Set("apikey", a.apiKey)
	}
	fetchURL := fmt.Sprintf("%s?%s", base, q.Encode())

	body, err := fetchBody(ctx, a.client, fetchURL)
	if err != nil {
		return nil, err
	}

	// The envelope reports application-level failure with status "0" and a
	// human-readable result string ("Contract source code not verified").
	var env struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Result  json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, "decoding explorer response")
	}
	if env.Status == "0" {
		var reason string
		_ = json.Unmarshal(env.Result, &reason)
		if reason == "" {
			reason = env.Message
		}
		return nil, errors.Errorf("explorer rejected request: %s", reason)
	}

	return &schema.RawProviderArtifact{
		Provider: a.Name(),
		URL:      fetchURL,
		Payload:  body,
	}, nil
}
