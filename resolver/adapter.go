package resolver

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/chainforms/contract-framework/schema"
)

// maxArtifactBytes caps how much of a provider response is read. Interface
// artifacts are small; anything larger is a misbehaving endpoint.
const maxArtifactBytes = 4 << 20

// Adapter is one external contract-definition source. An adapter performs
// exactly one fetch attempt per call and must honor context cancellation so
// the orchestrator can abort it.
type Adapter interface {
	Name() string
	// Requires declares the network capabilities this adapter depends on.
	// Candidates whose requirements the network lacks are skipped without
	// counting as failures.
	Requires() schema.Capability
	Fetch(ctx context.Context, address string, net schema.NetworkDescriptor) (*schema.RawProviderArtifact, error)
}

// Registry holds the registered adapters in their built-in default
// precedence order.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		if _, dup := r.adapters[a.Name()]; dup {
			continue
		}
		r.adapters[a.Name()] = a
		r.order = append(r.order, a.Name())
	}
	return r
}

func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// DefaultChain returns the adapters in registration order; this is the
// built-in fallback chain consulted when no default is configured.
func (r *Registry) DefaultChain() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name])
	}
	return out
}

// fetchBody issues one context-bound GET and reads the capped response body.
func fetchBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxArtifactBytes))
	if err != nil {
		return nil, errors.Wrap(err, "reading response body")
	}
	return body, nil
}
