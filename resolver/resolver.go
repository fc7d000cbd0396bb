package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
	"github.com/smartcontractkit/chainlink-common/pkg/services"

	"github.com/chainforms/contract-framework/metrics"
	"github.com/chainforms/contract-framework/schema"
)

// ServiceContractDefinition is the service key used when consulting the
// two-tier default-provider configuration.
const ServiceContractDefinition = "contract-definition"

// maxProxyDepth caps nested implementation resolution so a cyclic delegate
// chain cannot recurse forever.
const maxProxyDepth = 3

const (
	DefaultFetchTimeout   = 10 * time.Second
	defaultReportInterval = 30 * time.Second
)

// DefaultsLookup is the read-only two-tier configuration capability: a user
// override for the network/service pair first, then the application-wide
// default. Injected rather than consulted as global state.
type DefaultsLookup interface {
	DefaultProvider(networkID, service string) (string, bool)
}

// NoDefaults is a DefaultsLookup with nothing configured.
type NoDefaults struct{}

func (NoDefaults) DefaultProvider(string, string) (string, bool) { return "", false }

// ProxyDetector determines whether a contract delegates to an implementation
// contract. Detection is best-effort: absence of signal is not an error.
type ProxyDetector interface {
	Detect(ctx context.Context, address string, net schema.NetworkDescriptor, fns []schema.ContractFunction) (impl string, mechanism string, found bool, err error)
}

// Provenance records which provider produced the resolved artifact.
type Provenance struct {
	Provider string `json:"provider"`
	URL      string `json:"url,omitempty"`
}

// ProxyInfo describes a detected delegate relationship.
type ProxyInfo struct {
	Implementation string `json:"implementation"`
	Mechanism      string `json:"mechanism"`
}

// Result is one completed resolution. Warnings carry non-fatal trouble such
// as a proxy whose implementation could not be resolved.
type Result struct {
	Schema     *schema.ContractSchema
	Provenance Provenance
	Proxy      *ProxyInfo
	Warnings   []string
}

type providerStats struct {
	Attempts  int64
	Failures  int64
	Successes int64
}

// Resolver orchestrates provider resolution for one network: it builds the
// precedence-ordered candidate chain, executes candidates strictly
// sequentially with a per-candidate timeout, and returns the first success
// or an aggregate failure. Each Resolve call is independent; no state is
// shared between concurrent loads and nothing is cached across them.
type Resolver struct {
	services.Service
	eng *services.Engine

	lggr           logger.SugaredLogger
	net            schema.NetworkDescriptor
	registry       *Registry
	defaults       DefaultsLookup
	detector       ProxyDetector
	metrics        metrics.ResolverMetrics
	fetchTimeout   time.Duration
	reportInterval time.Duration

	statsMu sync.Mutex
	stats   map[string]*providerStats
}

// Opts carries the optional collaborators of a Resolver.
type Opts struct {
	Defaults     DefaultsLookup
	Detector     ProxyDetector
	Metrics      metrics.ResolverMetrics
	FetchTimeout time.Duration
}

func New(lggr logger.Logger, net schema.NetworkDescriptor, registry *Registry, opts Opts) *Resolver {
	if opts.Defaults == nil {
		opts.Defaults = NoDefaults{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewResolverMetrics(net.ID)
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	r := &Resolver{
		net:            net,
		registry:       registry,
		defaults:       opts.Defaults,
		detector:       opts.Detector,
		metrics:        opts.Metrics,
		fetchTimeout:   opts.FetchTimeout,
		reportInterval: defaultReportInterval,
		stats:          make(map[string]*providerStats),
	}
	r.Service, r.eng = services.Config{
		Name:  "ContractResolver",
		Start: r.start,
		Close: r.close,
	}.NewServiceEngine(logger.With(lggr, "network", net.ID))
	r.lggr = r.eng.SugaredLogger
	return r
}

func (r *Resolver) start(context.Context) error {
	r.eng.Go(r.runLoop)
	return nil
}

func (r *Resolver) close() error { return nil }

// Resolve produces the canonical schema plus provenance for one artifact
// source. An inline artifact bypasses fetching entirely; a forced provider
// disables fallback.
func (r *Resolver) Resolve(ctx context.Context, src schema.ContractArtifactSource) (*Result, error) {
	var res *Result
	err := r.eng.IfNotStopped(func() error {
		var rerr error
		res, rerr = r.resolve(ctx, src, 0)
		return rerr
	})
	if err != nil {
		r.metrics.IncrementResolves("failure")
		return nil, err
	}
	r.metrics.IncrementResolves("success")
	return res, nil
}

func (r *Resolver) resolve(ctx context.Context, src schema.ContractArtifactSource, depth int) (*Result, error) {
	art, prov, err := r.resolveArtifact(ctx, src)
	if err != nil {
		return nil, err
	}

	s, err := schema.Normalize(art, r.net, src.Address)
	if err != nil {
		r.lggr.Errorw("Artifact failed normalization", "provider", art.Provider, "err", err)
		return nil, err
	}

	result := &Result{Schema: s, Provenance: prov}
	r.detectProxy(ctx, src, result, depth)
	return result, nil
}

// resolveArtifact runs the candidate chain for one address and returns the
// first successful raw artifact.
func (r *Resolver) resolveArtifact(ctx context.Context, src schema.ContractArtifactSource) (*schema.RawProviderArtifact, Provenance, error) {
	if len(src.Inline) > 0 {
		art := &schema.RawProviderArtifact{Provider: "inline", Payload: src.Inline}
		return art, Provenance{Provider: "inline"}, nil
	}

	candidates, forced, err := r.candidates(src)
	if err != nil {
		return nil, Provenance{}, err
	}

	var attempts []*ProviderFetchError
	for _, a := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, Provenance{}, err
		}
		if !r.net.Has(a.Requires()) {
			if forced {
				return nil, Provenance{}, &MissingCapabilityError{Provider: a.Name(), NetworkID: r.net.ID}
			}
			r.lggr.Debugw("Skipping provider: network lacks required capability", "provider", a.Name())
			continue
		}

		r.recordAttempt(a.Name())
		r.metrics.IncrementFetchAttempts(a.Name())
		start := time.Now()

		// Each candidate gets its own timeout-bounded context; cancel is
		// called before the next candidate starts so a timed-out fetch is
		// actively aborted, not merely ignored.
		attemptCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
		art, ferr := a.Fetch(attemptCtx, src.Address, r.net)
		timedOut := errors.Is(attemptCtx.Err(), context.DeadlineExceeded)
		cancel()
		r.metrics.RecordFetchDuration(a.Name(), time.Since(start))

		if ferr == nil {
			r.recordSuccess(a.Name())
			r.metrics.IncrementFetchSuccesses(a.Name())
			r.lggr.Debugw("Resolved artifact", "provider", a.Name(), "address", src.Address)
			return art, Provenance{Provider: art.Provider, URL: art.URL}, nil
		}

		fe := &ProviderFetchError{Provider: a.Name(), Err: ferr, TimedOut: timedOut}
		attempts = append(attempts, fe)
		r.recordFailure(a.Name())
		reason := "error"
		if timedOut {
			reason = "timeout"
		}
		r.metrics.IncrementFetchFailures(a.Name(), reason)
		r.lggr.Warnw("Provider fetch failed", "provider", a.Name(), "address", src.Address, "timedOut", timedOut, "err", ferr)

		if forced {
			return nil, Provenance{}, fe
		}
	}
	return nil, Provenance{}, &AllProvidersExhaustedError{Address: src.Address, Attempts: attempts}
}

// candidates builds the precedence-ordered chain: a forced provider yields a
// single candidate and disables fallback; otherwise the configured default
// (user override first, then application-wide) is promoted to the front of
// the registry's built-in chain.
func (r *Resolver) candidates(src schema.ContractArtifactSource) ([]Adapter, bool, error) {
	if src.ForcedProvider != "" {
		a, ok := r.registry.Get(src.ForcedProvider)
		if !ok {
			return nil, false, &UnknownProviderError{Provider: src.ForcedProvider}
		}
		return []Adapter{a}, true, nil
	}

	chain := r.registry.DefaultChain()
	name, ok := r.defaults.DefaultProvider(r.net.ID, ServiceContractDefinition)
	if !ok {
		return chain, false, nil
	}
	if _, registered := r.registry.Get(name); !registered {
		r.lggr.Warnw("Configured default provider is not registered, ignoring", "provider", name)
		return chain, false, nil
	}
	ordered := make([]Adapter, 0, len(chain))
	for _, a := range chain {
		if a.Name() == name {
			ordered = append([]Adapter{a}, ordered...)
		} else {
			ordered = append(ordered, a)
		}
	}
	return ordered, false, nil
}

// detectProxy runs best-effort delegate detection and, on a positive signal,
// re-resolves the implementation address as an independent nested run.
// Proxy-resolution trouble is never a hard failure: the caller keeps the
// proxy's own schema plus a warning.
func (r *Resolver) detectProxy(ctx context.Context, src schema.ContractArtifactSource, result *Result, depth int) {
	if r.detector == nil || depth >= maxProxyDepth || !r.net.Has(schema.CapabilityRPC) {
		return
	}
	impl, mechanism, found, err := r.detector.Detect(ctx, src.Address, r.net, result.Schema.Functions)
	if err != nil {
		r.lggr.Warnw("Proxy detection failed", "address", src.Address, "err", err)
		result.Warnings = append(result.Warnings, fmt.Sprintf("proxy detection failed: %v", err))
		return
	}
	if !found {
		return
	}

	r.metrics.IncrementProxiesDetected(mechanism)
	r.lggr.Infow("Detected delegate contract", "address", src.Address, "implementation", impl, "mechanism", mechanism)

	nested, err := r.resolve(ctx, schema.ContractArtifactSource{Address: impl}, depth+1)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("implementation %s could not be resolved: %v", impl, err))
		result.Proxy = &ProxyInfo{Implementation: impl, Mechanism: mechanism}
		return
	}

	// The implementation's interface is what callers interact with, at the
	// proxy's own address.
	merged := *nested.Schema
	merged.Address = src.Address
	result.Schema = &merged
	result.Provenance = nested.Provenance
	result.Proxy = &ProxyInfo{Implementation: impl, Mechanism: mechanism}
	result.Warnings = append(result.Warnings, nested.Warnings...)
}

func (r *Resolver) recordAttempt(provider string) {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	r.statsFor(provider).Attempts++
}

func (r *Resolver) recordFailure(provider string) {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	r.statsFor(provider).Failures++
}

func (r *Resolver) recordSuccess(provider string) {
	r.statsMu.Lock()
	defer r.statsMu.Unlock()
	r.statsFor(provider).Successes++
}

// callers must hold statsMu
func (r *Resolver) statsFor(provider string) *providerStats {
	s, ok := r.stats[provider]
	if !ok {
		s = &providerStats{}
		r.stats[provider] = s
	}
	return s
}

func (r *Resolver) runLoop(ctx context.Context) {
	monitor := services.NewTicker(r.reportInterval)
	defer monitor.Stop()

	for {
		select {
		case <-monitor.C:
			r.report()
		case <-ctx.Done():
			return
		}
	}
}

func (r *Resolver) report() {
	r.statsMu.Lock()
	snapshot := make(map[string]providerStats, len(r.stats))
	for name, s := range r.stats {
		snapshot[name] = *s
	}
	r.statsMu.Unlock()

	var attempts, failures int64
	for _, s := range snapshot {
		attempts += s.Attempts
		failures += s.Failures
	}
	r.lggr.Tracew(fmt.Sprintf("Resolver state: %d/%d fetch attempts failed", failures, attempts), "providerStats", snapshot)
}
