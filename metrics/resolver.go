package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promProviderFetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_resolver_provider_fetch_attempts",
		Help: "The total number of provider fetch attempts",
	}, []string{"network", "provider"})
	promProviderFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_resolver_provider_fetch_failures",
		Help: "The total number of failed provider fetches, by reason",
	}, []string{"network", "provider", "reason"})
	promProviderFetchSuccesses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_resolver_provider_fetch_successes",
		Help: "The total number of successful provider fetches",
	}, []string{"network", "provider"})
	promProviderFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "contract_resolver_provider_fetch_duration",
		Help: "The time one provider fetch attempt took, successful or not.",
		Buckets: []float64{
			float64(100 * time.Millisecond),
			float64(500 * time.Millisecond),
			float64(time.Second),
			float64(5 * time.Second),
			float64(10 * time.Second),
			float64(30 * time.Second),
		},
	}, []string{"network", "provider"})
	promResolves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_resolver_resolves",
		Help: "The total number of contract resolutions, by outcome",
	}, []string{"network", "outcome"})
	promProxiesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contract_resolver_proxies_detected",
		Help: "The total number of delegate contracts detected, by detection mechanism",
	}, []string{"network", "mechanism"})
)

// ResolverMetrics records provider resolution activity.
type ResolverMetrics interface {
	IncrementFetchAttempts(provider string)
	IncrementFetchFailures(provider, reason string)
	IncrementFetchSuccesses(provider string)
	RecordFetchDuration(provider string, d time.Duration)
	IncrementResolves(outcome string)
	IncrementProxiesDetected(mechanism string)
}

var _ ResolverMetrics = &resolverMetrics{}

type resolverMetrics struct {
	network string
}

func NewResolverMetrics(network string) ResolverMetrics {
	return &resolverMetrics{network: network}
}

func (m *resolverMetrics) IncrementFetchAttempts(provider string) {
	promProviderFetchAttempts.WithLabelValues(m.network, provider).Inc()
}

func (m *resolverMetrics) IncrementFetchFailures(provider, reason string) {
	promProviderFetchFailures.WithLabelValues(m.network, provider, reason).Inc()
}

func (m *resolverMetrics) IncrementFetchSuccesses(provider string) {
	promProviderFetchSuccesses.WithLabelValues(m.network, provider).Inc()
}

func (m *resolverMetrics) RecordFetchDuration(provider string, d time.Duration) {
	promProviderFetchDuration.WithLabelValues(m.network, provider).Observe(float64(d))
}

func (m *resolverMetrics) IncrementResolves(outcome string) {
	promResolves.WithLabelValues(m.network, outcome).Inc()
}

func (m *resolverMetrics) IncrementProxiesDetected(mechanism string) {
	promProxiesDetected.WithLabelValues(m.network, mechanism).Inc()
}
