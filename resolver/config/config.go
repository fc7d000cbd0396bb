// Package config holds the resolver's two-tier default-provider
// configuration. Structs keep public pointer fields so partial TOML files
// merge with SetFrom; the wrapper provides the derived accessors.
package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	commonconfig "github.com/smartcontractkit/chainlink-common/pkg/config"
)

const defaultFetchTimeout = 10 * time.Second

// ResolutionConfig is a wrapper to provide required functions while keeping
// configs public.
type ResolutionConfig struct {
	Resolution
}

type Resolution struct {
	// FetchTimeout is the fixed time allowed for one provider fetch attempt.
	FetchTimeout *commonconfig.Duration

	// DefaultProvider is the application-wide default provider name.
	DefaultProvider *string

	// Networks holds per-network user overrides keyed by network ID.
	Networks map[string]*Network
}

// Network holds the user-configured per-service provider overrides for one
// network.
type Network struct {
	// Providers maps a service key to the provider to try first.
	Providers map[string]string
}

func (c *ResolutionConfig) FetchTimeout() time.Duration {
	if c.Resolution.FetchTimeout == nil {
		return defaultFetchTimeout
	}
	return c.Resolution.FetchTimeout.Duration()
}

// DefaultProvider implements the two-tier lookup: the user-configured
// override for this network/service wins, then the application-wide default.
func (c *ResolutionConfig) DefaultProvider(networkID, service string) (string, bool) {
	if n, ok := c.Networks[networkID]; ok && n != nil {
		if p, ok := n.Providers[service]; ok && p != "" {
			return p, true
		}
	}
	if c.Resolution.DefaultProvider != nil && *c.Resolution.DefaultProvider != "" {
		return *c.Resolution.DefaultProvider, true
	}
	return "", false
}

func (c *ResolutionConfig) SetFrom(f *ResolutionConfig) {
	if f.Resolution.FetchTimeout != nil {
		c.Resolution.FetchTimeout = f.Resolution.FetchTimeout
	}
	if f.Resolution.DefaultProvider != nil {
		c.Resolution.DefaultProvider = f.Resolution.DefaultProvider
	}
	for id, n := range f.Networks {
		if c.Networks == nil {
			c.Networks = make(map[string]*Network)
		}
		c.Networks[id] = n
	}
}

// Load decodes one TOML config file.
func Load(path string) (*ResolutionConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	var c ResolutionConfig
	if err := toml.Unmarshal(b, &c); err != nil {
		return nil, errors.Wrapf(err, "decoding config %s", path)
	}
	return &c, nil
}
