package proxy

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/jpillora/backoff"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

const dialAttempts = 3

// RPCReader is the ethclient-backed SlotReader.
type RPCReader struct {
	client *ethclient.Client
}

var _ SlotReader = &RPCReader{}

// DialReader connects to the network's RPC endpoint, retrying transient dial
// failures with backoff. The probe is best-effort, so a handful of attempts
// is enough; persistent failure surfaces to the caller as a warning.
func DialReader(ctx context.Context, lggr logger.Logger, rawURL string) (*RPCReader, error) {
	bo := newProbeBackoff()
	var lastErr error
	for i := 0; i < dialAttempts; i++ {
		client, err := ethclient.DialContext(ctx, rawURL)
		if err == nil {
			return &RPCReader{client: client}, nil
		}
		lastErr = err
		logger.Sugared(lggr).Warnw("RPC dial failed, retrying", "url", rawURL, "attempt", i+1, "err", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(bo.Duration()):
		}
	}
	return nil, lastErr
}

func (r *RPCReader) StorageAt(ctx context.Context, address common.Address, slot common.Hash) ([]byte, error) {
	return r.client.StorageAt(ctx, address, slot, nil)
}

func (r *RPCReader) CodeAt(ctx context.Context, address common.Address) ([]byte, error) {
	return r.client.CodeAt(ctx, address, nil)
}

func (r *RPCReader) Call(ctx context.Context, address common.Address, data []byte) ([]byte, error) {
	return r.client.CallContract(ctx, ethereum.CallMsg{To: &address, Data: data}, nil)
}

func (r *RPCReader) Close() {
	r.client.Close()
}

// newProbeBackoff is a standard backoff for reconnecting to unreachable
// network endpoints.
func newProbeBackoff() backoff.Backoff {
	return backoff.Backoff{
		Min:    1 * time.Second,
		Max:    15 * time.Second,
		Jitter: true,
	}
}
