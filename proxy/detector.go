// Package proxy detects delegate ("proxy") contracts through well-known
// storage-slot conventions and minimal-signature matching. Detection is
// best-effort and non-binding: absence of signal is not an error, and
// callers treat detection trouble as a warning, never a hard failure.
package proxy

import (
	"bytes"
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/chainforms/contract-framework/schema"
)

// Storage slots assigned by the proxy standards; the values are fixed by the
// standards themselves (hash of the standard's marker string).
var (
	eip1967ImplSlot   = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")
	eip1967BeaconSlot = common.HexToHash("0xa3f0ad74e5423aebfd80d3ef4346578335a9a72aeaee59ff6cb3582b35133d50")
	eip1822LogicSlot  = common.HexToHash("0xc5f16f0fcc639fa48a6947836d9850f504798523bf8c9a81f33adb93091d86f0")
)

// implementation() selector, used both for signature-matched proxies and for
// asking a beacon where it points.
var implementationSelector = []byte{0x5c, 0x60, 0xda, 0x1b}

// EIP-1167 minimal proxy runtime code, split around the embedded
// implementation address.
var (
	eip1167Prefix = common.FromHex("0x363d3d373d3d3d363d73")
	eip1167Suffix = common.FromHex("0x5af43d82803e903d91602b57fd5bf3")
)

// SlotReader is the minimal chain access the detector needs. The ethclient
// implementation lives in this package; tests substitute a stub.
type SlotReader interface {
	StorageAt(ctx context.Context, address common.Address, slot common.Hash) ([]byte, error)
	CodeAt(ctx context.Context, address common.Address) ([]byte, error)
	Call(ctx context.Context, address common.Address, data []byte) ([]byte, error)
}

// Detector probes one contract for delegate behavior.
type Detector struct {
	lggr   logger.SugaredLogger
	reader SlotReader
}

func NewDetector(lggr logger.Logger, reader SlotReader) *Detector {
	return &Detector{
		lggr:   logger.Sugared(lggr).Named("ProxyDetector"),
		reader: reader,
	}
}

// Detect probes, in order: an implementation() entry on the already-fetched
// interface, the EIP-1967 implementation and beacon slots, the EIP-1822
// logic slot, and the EIP-1167 minimal-proxy bytecode pattern. The first
// positive signal wins.
func (d *Detector) Detect(ctx context.Context, address string, net schema.NetworkDescriptor, fns []schema.ContractFunction) (string, string, bool, error) {
	if !common.IsHexAddress(address) {
		return "", "", false, errors.Errorf("invalid address %q", address)
	}
	addr := common.HexToAddress(address)

	if hasImplementationGetter(fns) {
		impl, err := d.callImplementation(ctx, addr)
		if err != nil {
			return "", "", false, err
		}
		if impl != (common.Address{}) {
			return impl.Hex(), "signature", true, nil
		}
	}

	for _, probe := range []struct {
		slot      common.Hash
		mechanism string
		beacon    bool
	}{
		{eip1967ImplSlot, "eip1967", false},
		{eip1967BeaconSlot, "eip1967-beacon", true},
		{eip1822LogicSlot, "eip1822", false},
	} {
		raw, err := d.reader.StorageAt(ctx, addr, probe.slot)
		if err != nil {
			return "", "", false, errors.Wrapf(err, "reading slot %s", probe.slot)
		}
		stored := addressFromSlot(raw)
		if stored == (common.Address{}) {
			continue
		}
		if !probe.beacon {
			return stored.Hex(), probe.mechanism, true, nil
		}
		// The beacon slot holds the beacon's address; the beacon answers
		// where the implementation lives.
		impl, err := d.callImplementation(ctx, stored)
		if err != nil {
			return "", "", false, errors.Wrap(err, "querying beacon")
		}
		if impl != (common.Address{}) {
			return impl.Hex(), probe.mechanism, true, nil
		}
	}

	code, err := d.reader.CodeAt(ctx, addr)
	if err != nil {
		return "", "", false, errors.Wrap(err, "reading code")
	}
	if impl, ok := matchMinimalProxy(code); ok {
		return impl.Hex(), "eip1167", true, nil
	}

	return "", "", false, nil
}

func (d *Detector) callImplementation(ctx context.Context, addr common.Address) (common.Address, error) {
	out, err := d.reader.Call(ctx, addr, implementationSelector)
	if err != nil {
		return common.Address{}, err
	}
	return addressFromSlot(out), nil
}

func hasImplementationGetter(fns []schema.ContractFunction) bool {
	for _, fn := range fns {
		if fn.Name == "implementation" && len(fn.Inputs) == 0 {
			return true
		}
	}
	return false
}

// addressFromSlot extracts the address packed into the low 20 bytes of a
// 32-byte word. Shorter payloads are right-aligned the same way.
func addressFromSlot(raw []byte) common.Address {
	if len(raw) > 20 {
		raw = raw[len(raw)-20:]
	}
	return common.BytesToAddress(raw)
}

func matchMinimalProxy(code []byte) (common.Address, bool) {
	wantLen := len(eip1167Prefix) + 20 + len(eip1167Suffix)
	if len(code) != wantLen {
		return common.Address{}, false
	}
	if !bytes.HasPrefix(code, eip1167Prefix) || !bytes.HasSuffix(code, eip1167Suffix) {
		return common.Address{}, false
	}
	return common.BytesToAddress(code[len(eip1167Prefix) : len(eip1167Prefix)+20]), true
}
