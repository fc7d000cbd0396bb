// schema-cli resolves a contract's callable interface from the configured
// providers and prints the canonical schema, or the default form fields
// derived from it, as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/chainforms/contract-framework/codec"
	"github.com/chainforms/contract-framework/evm"
	"github.com/chainforms/contract-framework/fields"
	"github.com/chainforms/contract-framework/metrics"
	"github.com/chainforms/contract-framework/proxy"
	"github.com/chainforms/contract-framework/resolver"
	"github.com/chainforms/contract-framework/resolver/config"
	"github.com/chainforms/contract-framework/schema"
)

var (
	flagConfig        string
	flagNetworkID     string
	flagExplorerURL   string
	flagVerifierURL   string
	flagBlockscoutURL string
	flagRPCURL        string
	flagProvider      string
	flagAPIKey        string
)

func main() {
	root := &cobra.Command{
		Use:   "schema-cli",
		Short: "Resolve contract interfaces and derive form fields",
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a TOML resolution config")
	root.PersistentFlags().StringVar(&flagNetworkID, "network", "1", "network ID")
	root.PersistentFlags().StringVar(&flagExplorerURL, "explorer-url", "https://api.etherscan.io/api", "explorer API base URL")
	root.PersistentFlags().StringVar(&flagVerifierURL, "verifier-url", "https://repo.sourcify.dev", "verifier repository base URL")
	root.PersistentFlags().StringVar(&flagBlockscoutURL, "blockscout-url", "", "blockscout API base URL")
	root.PersistentFlags().StringVar(&flagRPCURL, "rpc-url", "", "RPC endpoint for proxy detection")
	root.PersistentFlags().StringVar(&flagProvider, "provider", "", "force a single provider (disables fallback)")
	root.PersistentFlags().StringVar(&flagAPIKey, "api-key", "", "explorer API key")

	root.AddCommand(
		&cobra.Command{
			Use:   "resolve <address>",
			Short: "Print the resolved canonical schema",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(struct {
					Schema     *schema.ContractSchema `json:"schema"`
					Provenance resolver.Provenance    `json:"provenance"`
					Proxy      *resolver.ProxyInfo    `json:"proxy,omitempty"`
					Warnings   []string               `json:"warnings,omitempty"`
				}{res.Schema, res.Provenance, res.Proxy, res.Warnings})
			},
		},
		&cobra.Command{
			Use:   "fields <address>",
			Short: "Print the default form fields for every function",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				res, err := resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				lggr, err := logger.New()
				if err != nil {
					return err
				}
				gen := fields.NewGenerator(lggr, evm.NewMapper(), evm.IntBounds, nil,
					codec.NewLoggedDiagnostics(lggr, metrics.NewCodecMetrics("evm")))
				out := make(map[string][]fields.FormField, len(res.Schema.Functions))
				for _, fn := range res.Schema.Functions {
					out[fn.ID] = gen.FieldsFor(fn)
				}
				return printJSON(out)
			},
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolve(ctx context.Context, address string) (*resolver.Result, error) {
	lggr, err := logger.New()
	if err != nil {
		return nil, err
	}

	net := buildNetwork()
	registry := resolver.NewRegistry(
		resolver.NewEtherscanAdapter(nil, flagAPIKey),
		resolver.NewSourcifyAdapter(nil),
		resolver.NewBlockscoutAdapter(nil),
	)

	opts := resolver.Opts{}
	if flagConfig != "" {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		opts.Defaults = cfg
		opts.FetchTimeout = cfg.FetchTimeout()
	}
	if flagRPCURL != "" {
		reader, err := proxy.DialReader(ctx, lggr, flagRPCURL)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		opts.Detector = proxy.NewDetector(lggr, reader)
	}

	r := resolver.New(lggr, net, registry, opts)
	if err := r.Start(ctx); err != nil {
		return nil, err
	}
	defer r.Close()

	return r.Resolve(ctx, schema.ContractArtifactSource{
		Address:        address,
		ForcedProvider: flagProvider,
	})
}

func buildNetwork() schema.NetworkDescriptor {
	net := schema.NetworkDescriptor{
		ID:        flagNetworkID,
		Ecosystem: "evm",
		Endpoints: map[string]string{},
	}
	if flagExplorerURL != "" {
		net.Endpoints[schema.ServiceExplorer] = flagExplorerURL
		net.Capabilities |= schema.CapabilityExplorerAPI
	}
	if flagVerifierURL != "" {
		net.Endpoints[schema.ServiceVerifier] = flagVerifierURL
		net.Capabilities |= schema.CapabilityVerifierAPI
	}
	if flagBlockscoutURL != "" {
		net.Endpoints[schema.ServiceBlockscout] = flagBlockscoutURL
	}
	if flagRPCURL != "" {
		net.Endpoints[schema.ServiceRPC] = flagRPCURL
		net.Capabilities |= schema.CapabilityRPC
	}
	return net
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
