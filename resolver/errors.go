package resolver

import (
	"fmt"
	"strings"
)

// ProviderFetchError is one candidate's failure. At the orchestrator level
// it is non-fatal and triggers fallback to the next candidate, unless the
// provider was forced.
type ProviderFetchError struct {
	Provider string
	URL      string
	Err      error
	TimedOut bool
}

func (e *ProviderFetchError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("provider %s timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Err)
}

func (e *ProviderFetchError) Unwrap() error { return e.Err }

// AllProvidersExhaustedError reports that every candidate failed. Attempts
// are listed in the order they were made.
type AllProvidersExhaustedError struct {
	Address  string
	Attempts []*ProviderFetchError
}

func (e *AllProvidersExhaustedError) Error() string {
	reasons := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		reasons[i] = a.Error()
	}
	return fmt.Sprintf("all providers exhausted for %s: %s", e.Address, strings.Join(reasons, "; "))
}

// UnknownProviderError reports a forced provider that no adapter is
// registered under.
type UnknownProviderError struct {
	Provider string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("no provider registered under %q", e.Provider)
}

// MissingCapabilityError reports a forced provider whose required capability
// the network does not expose. In the fallback chain such candidates are
// silently skipped; with fallback disabled the mismatch must surface.
type MissingCapabilityError struct {
	Provider  string
	NetworkID string
}

func (e *MissingCapabilityError) Error() string {
	return fmt.Sprintf("provider %q requires a capability network %s lacks", e.Provider, e.NetworkID)
}
