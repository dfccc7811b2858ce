package network

import (
	"context"

	"github.com/enigmaticorg/libenigmatic-go/planner"
	"github.com/enigmaticorg/libenigmatic-go/vector"
)

// ChainService is the ledger collaborator contract. The protocol core never
// talks to a node directly; encoders take coins and decoders take observed
// transactions through this interface, so the whole engine runs against the
// mock in tests and against any compatible node in production.
type ChainService interface {
	// ListSpendable returns the spendable coins of an address with at
	// least minConf confirmations. Coins are not reserved; concurrent
	// planners over the same address must coordinate externally.
	ListSpendable(ctx context.Context, address string, minConf int) ([]planner.Coin, error)

	// CurrentHeight returns the chain tip height.
	CurrentHeight(ctx context.Context) (int64, error)

	// ObservationsSince returns confirmed transactions touching the
	// watched addresses at heights strictly above sinceHeight, ordered by
	// height then time. An empty watch set returns all wallet
	// transactions.
	ObservationsSince(ctx context.Context, sinceHeight int64, watch []string) ([]vector.ObservedTx, error)

	// Broadcast submits a signed raw transaction and returns its txid.
	Broadcast(ctx context.Context, rawTxHex string) (string, error)

	// NewAddress returns a fresh receive address from the node wallet.
	NewAddress(ctx context.Context, label string) (string, error)

	// ImportAddress registers a watch-only address so ListSpendable and
	// ObservationsSince can see its traffic. Idempotent.
	ImportAddress(ctx context.Context, address string) error

	// FeePolicy returns the node's current fee floors.
	FeePolicy(ctx context.Context) (FeePolicy, error)
}

// FeePolicy holds the node's relay fee floors in minor units per kvB.
type FeePolicy struct {
	RelayFee      uint64 `json:"relay_fee"`
	MempoolMinFee uint64 `json:"mempool_min_fee"`
}

// Floor returns the effective minimum fee rate: the larger of the two
// policy values.
func (p FeePolicy) Floor() uint64 {
	if p.MempoolMinFee > p.RelayFee {
		return p.MempoolMinFee
	}
	return p.RelayFee
}
