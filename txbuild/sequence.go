package txbuild

import (
	"context"
	"fmt"

	"github.com/enigmaticorg/libenigmatic-go/encoder"
	"github.com/enigmaticorg/libenigmatic-go/planner"
)

// Broadcaster submits signed transactions. *network.RPCClient satisfies
// it.
type Broadcaster interface {
	Broadcast(ctx context.Context, rawTxHex string) (string, error)
}

// KeyResolver supplies the locking script and signing key for a coin the
// sender is about to spend. Chain change coins resolve against the change
// address key.
type KeyResolver func(coin planner.Coin) (Input, error)

// Sender renders, signs, and broadcasts encoded frames in order.
type Sender struct {
	Broadcaster Broadcaster
	Dest        Destinations
	Keys        KeyResolver

	// Confirm, when set, blocks between chain frames until the previous
	// frame is safe to build on. Optional: nodes accept chained spends of
	// mempool outputs, but a cautious operator may want a confirmation
	// between frames.
	Confirm func(ctx context.Context, txid string) error
}

// Send broadcasts the frames of one encoded symbol in order and returns
// the resulting txids. Each linked frame's placeholder input is rewritten
// to the txid the previous broadcast returned before rendering. Any failure
// aborts the sequence; already broadcast frames stay on the ledger, and the
// returned txids cover them so the caller can account for a partly emitted
// chain.
func (s *Sender) Send(ctx context.Context, frames []encoder.Frame) ([]string, error) {
	if s.Broadcaster == nil || s.Keys == nil {
		return nil, fmt.Errorf("%w: sender dependencies", ErrNilParam)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: frames", ErrNilParam)
	}

	txids := make([]string, 0, len(frames))
	prevTxID := ""
	for i, frame := range frames {
		plan := resolvePlan(frame.Plan, prevTxID)

		rendered, err := Render(plan, s.Dest)
		if err != nil {
			return txids, fmt.Errorf("txbuild: frame %d: %w", i, err)
		}

		inputs := make([]Input, len(plan.Inputs))
		for j, coin := range plan.Inputs {
			in, err := s.Keys(coin)
			if err != nil {
				return txids, fmt.Errorf("txbuild: frame %d input %d: %w", i, j, err)
			}
			in.Coin = coin
			inputs[j] = in
		}

		rawHex, err := Sign(rendered, inputs)
		if err != nil {
			return txids, fmt.Errorf("txbuild: frame %d: %w", i, err)
		}

		txid, err := s.Broadcaster.Broadcast(ctx, rawHex)
		if err != nil {
			return txids, fmt.Errorf("txbuild: frame %d broadcast: %w", i, err)
		}
		txids = append(txids, txid)
		prevTxID = txid

		if s.Confirm != nil && i < len(frames)-1 {
			if err := s.Confirm(ctx, txid); err != nil {
				return txids, fmt.Errorf("txbuild: frame %d confirmation: %w", i, err)
			}
		}
	}
	return txids, nil
}

// resolvePlan substitutes the previous broadcast txid into chain
// placeholder inputs, leaving the original plan untouched.
func resolvePlan(plan *planner.Plan, prevTxID string) *planner.Plan {
	resolved := *plan
	resolved.Inputs = append([]planner.Coin(nil), plan.Inputs...)
	for i, coin := range resolved.Inputs {
		if coin.Virtual() && prevTxID != "" {
			resolved.Inputs[i].TxID = prevTxID
		}
	}
	return &resolved
}
