package resolver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/chainforms/contract-framework/schema"
)

// SourcifyAdapter fetches verified contract metadata from a sourcify-family
// verification repository. The metadata wraps the interface under the
// output.abi path.
type SourcifyAdapter struct {
	client *http.Client
}

func NewSourcifyAdapter(client *http.Client) *SourcifyAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &SourcifyAdapter{client: client}
}

func (a *SourcifyAdapter) Name() string { return "sourcify" }

func (a *SourcifyAdapter) Requires() schema.Capability { return schema.CapabilityVerifierAPI }

func (a *SourcifyAdapter) Fetch(ctx context.Context, address string, net schema.NetworkDescriptor) (*schema.RawProviderArtifact, error) {
	base := net.Endpoint(schema.ServiceVerifier)
	if base == "" {
		return nil, errors.Errorf("network %s has no verifier endpoint", net.ID)
	}
	fetchURL := fmt.Sprintf("%s/contracts/full_match/%s/%s/metadata.json",
		strings.TrimSuffix(base, "/"), net.ID, address)

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
