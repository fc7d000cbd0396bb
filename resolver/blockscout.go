package resolver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/chainforms/contract-framework/schema"
)

// BlockscoutAdapter fetches contract interfaces from a blockscout-family v2
// API, which returns the interface under a top-level "abi" key.
type BlockscoutAdapter struct {
	client *http.Client
}

func NewBlockscoutAdapter(client *http.Client) *BlockscoutAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &BlockscoutAdapter{client: client}
}

func (a *BlockscoutAdapter) Name() string { return "blockscout" }

func (a *BlockscoutAdapter) Requires() schema.Capability { return schema.CapabilityExplorerAPI }

func (a *BlockscoutAdapter) Fetch(ctx context.Context, address string, net schema.NetworkDescriptor) (*schema.RawProviderArtifact, error) {
	base := net.Endpoint(schema.ServiceBlockscout)
	if base == "" {
		return nil, errors.Errorf("network %s has no blockscout endpoint", net.ID)
	}
	fetchURL := fmt.Sprintf("%s/v2/smart-contracts/%s", strings.TrimSuffix(base, "/"), address)

	body, err := fetchBody(ctx, a.client, fetchURL)
	if err != nil {
		return nil, err
	}
	return &schema.RawProviderArtifact{
		Provider: a.Name(),
		URL:      fetchURL,
		Payload:  body,
	}, nil
}
