package network

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/enigmaticorg/libenigmatic-go/planner"
	"github.com/enigmaticorg/libenigmatic-go/vector"
)

// Compile-time interface check.
var _ ChainService = (*RPCClient)(nil)

// coinToSat converts a coin-denominated float64 amount (as returned by the
// RPC node) to minor units. math.Round avoids float truncation on amounts
// like 0.00021 * 1e8.
func coinToSat(amount float64) uint64 {
	return uint64(math.Round(amount * 1e8))
}

// listUnspentResult maps the JSON fields of one listunspent entry.
type listUnspentResult struct {
	TxID          string  `json:"txid"`
	Vout          uint32  `json:"vout"`
	Amount        float64 `json:"amount"`
	Confirmations int64   `json:"confirmations"`
	Spendable     bool    `json:"spendable"`
}

// ListSpendable returns the spendable coins of an address via
// `listunspent minConf 9999999 ["address"]`. Watch-only entries
// (spendable=false) are filtered out since the planner cannot fund frames
// with them.
func (c *RPCClient) ListSpendable(ctx context.Context, address string, minConf int) ([]planner.Coin, error) {
	if minConf < 0 {
		minConf = 0
	}
	params := []interface{}{minConf, 9999999, []string{address}}
	var results []listUnspentResult
	if err := c.Call(ctx, "listunspent", params, &results); err != nil {
		return nil, err
	}
	coins := make([]planner.Coin, 0, len(results))
	for _, r := range results {
		if !r.Spendable {
			continue
		}
		coins = append(coins, planner.Coin{
			TxID:          r.TxID,
			Vout:          r.Vout,
			Amount:        coinToSat(r.Amount),
			Confirmations: r.Confirmations,
		})
	}
	return coins, nil
}

// CurrentHeight returns the chain tip height via `getblockcount`.
func (c *RPCClient) CurrentHeight(ctx context.Context) (int64, error) {
	var height int64
	if err := c.Call(ctx, "getblockcount", nil, &height); err != nil {
		return 0, err
	}
	return height, nil
}

// Broadcast submits a signed raw transaction via `sendrawtransaction`.
func (c *RPCClient) Broadcast(ctx context.Context, rawTxHex string) (string, error) {
	var txid string
	if err := c.Call(ctx, "sendrawtransaction", []interface{}{rawTxHex}, &txid); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBroadcastRejected, err)
	}
	return txid, nil
}

// NewAddress returns a fresh wallet address via `getnewaddress`.
func (c *RPCClient) NewAddress(ctx context.Context, label string) (string, error) {
	var address string
	if err := c.Call(ctx, "getnewaddress", []interface{}{label}, &address); err != nil {
		return "", err
	}
	return address, nil
}

// ImportAddress registers a watch-only address via `importaddress` without
// a rescan; watch channels are forward-looking.
func (c *RPCClient) ImportAddress(ctx context.Context, address string) error {
	return c.Call(ctx, "importaddress", []interface{}{address, "", false}, nil)
}

// mempoolInfoResult maps the fee fields of `getmempoolinfo`.
type mempoolInfoResult struct {
	MempoolMinFee float64 `json:"mempoolminfee"`
}

// networkInfoResult maps the fee fields of `getnetworkinfo`.
type networkInfoResult struct {
	RelayFee float64 `json:"relayfee"`
}

// FeePolicy queries the node's fee floors from `getmempoolinfo` and
// `getnetworkinfo`.
func (c *RPCClient) FeePolicy(ctx context.Context) (FeePolicy, error) {
	var mempool mempoolInfoResult
	if err := c.Call(ctx, "getmempoolinfo", nil, &mempool); err != nil {
		return FeePolicy{}, err
	}
	var netinfo networkInfoResult
	if err := c.Call(ctx, "getnetworkinfo", nil, &netinfo); err != nil {
		return FeePolicy{}, err
	}
	return FeePolicy{
		RelayFee:      coinToSat(netinfo.RelayFee),
		MempoolMinFee: coinToSat(mempool.MempoolMinFee),
	}, nil
}

// listSinceBlockResult maps the JSON fields of `listsinceblock`.
type listSinceBlockResult struct {
	Transactions []struct {
		TxID        string  `json:"txid"`
		Address     string  `json:"address"`
		Category    string  `json:"category"`
		Fee         float64 `json:"fee"` // negative, sends only
		BlockHeight int64   `json:"blockheight"`
		BlockTime   int64   `json:"blocktime"`
	} `json:"transactions"`
}

// verboseTxResult maps the JSON fields of `getrawtransaction` verbose.
type verboseTxResult struct {
	TxID string `json:"txid"`
	Vin  []struct {
		TxID string `json:"txid"`
		Vout uint32 `json:"vout"`
	} `json:"vin"`
	Vout []struct {
		Value        float64 `json:"value"`
		N            uint32  `json:"n"`
		ScriptPubKey struct {
			Hex string `json:"hex"`
		} `json:"scriptPubKey"`
	} `json:"vout"`
}

// ObservationsSince lists confirmed wallet transactions above sinceHeight
// via `listsinceblock` and inflates each into a full observation with
// `getrawtransaction`. The fee comes from the wallet entry when the node
// knows it (our own sends) and is otherwise recomputed from the spent
// outputs, since the fee plane needs it for every observed transaction.
func (c *RPCClient) ObservationsSince(ctx context.Context, sinceHeight int64, watch []string) ([]vector.ObservedTx, error) {
	params := []interface{}{}
	if sinceHeight > 0 {
		var blockHash string
		if err := c.Call(ctx, "getblockhash", []interface{}{sinceHeight}, &blockHash); err != nil {
			return nil, err
		}
		params = []interface{}{blockHash, 1, true}
	}
	var since listSinceBlockResult
	if err := c.Call(ctx, "listsinceblock", params, &since); err != nil {
		return nil, err
	}

	watched := make(map[string]bool, len(watch))
	for _, a := range watch {
		watched[a] = true
	}

	type walletEntry struct {
		fee       uint64
		hasFee    bool
		height    int64
		blockTime int64
	}
	entries := make(map[string]walletEntry)
	for _, t := range since.Transactions {
		if t.BlockHeight <= sinceHeight {
			continue // unconfirmed or already seen
		}
		if len(watched) > 0 && !watched[t.Address] {
			continue
		}
		e, seen := entries[t.TxID]
		if !seen {
			e = walletEntry{height: t.BlockHeight, blockTime: t.BlockTime}
		}
		if t.Fee != 0 {
			e.fee = coinToSat(-t.Fee)
			e.hasFee = true
		}
		entries[t.TxID] = e
	}

	observations := make([]vector.ObservedTx, 0, len(entries))
	for txid, e := range entries {
		obs, err := c.observation(ctx, txid, e.height, e.blockTime)
		if err != nil {
			return nil, err
		}
		if e.hasFee {
			obs.Fee = e.fee
		} else {
			fee, err := c.computeFee(ctx, obs)
			if err != nil {
				return nil, err
			}
			obs.Fee = fee
		}
		observations = append(observations, obs)
	}

	sort.Slice(observations, func(i, j int) bool {
		if observations[i].Height != observations[j].Height {
			return observations[i].Height < observations[j].Height
		}
		return observations[i].Timestamp.Before(observations[j].Timestamp)
	})
	return observations, nil
}

// observation inflates a txid into an ObservedTx via getrawtransaction.
func (c *RPCClient) observation(ctx context.Context, txid string, height, blockTime int64) (vector.ObservedTx, error) {
	var raw verboseTxResult
	if err := c.Call(ctx, "getrawtransaction", []interface{}{txid, true}, &raw); err != nil {
		return vector.ObservedTx{}, err
	}
	obs := vector.ObservedTx{
		TxID:      txid,
		Height:    height,
		Timestamp: time.Unix(blockTime, 0).UTC(),
	}
	for _, in := range raw.Vin {
		if in.TxID == "" {
			continue // coinbase
		}
		obs.Inputs = append(obs.Inputs, vector.InputRef{TxID: in.TxID, Vout: in.Vout})
	}
	for _, out := range raw.Vout {
		obs.Outputs = append(obs.Outputs, vector.Output{
			Amount:    coinToSat(out.Value),
			ScriptRef: out.ScriptPubKey.Hex,
		})
	}
	return obs, nil
}

// computeFee derives sum(inputs) - sum(outputs) by resolving each spent
// output's value.
func (c *RPCClient) computeFee(ctx context.Context, obs vector.ObservedTx) (uint64, error) {
	var inSum uint64
	for _, in := range obs.Inputs {
		var prev verboseTxResult
		if err := c.Call(ctx, "getrawtransaction", []interface{}{in.TxID, true}, &prev); err != nil {
			return 0, fmt.Errorf("%w: resolving input %s:%d: %v", ErrTxNotFound, in.TxID, in.Vout, err)
		}
		if int(in.Vout) >= len(prev.Vout) {
			return 0, fmt.Errorf("%w: input %s:%d out of range", ErrInvalidResponse, in.TxID, in.Vout)
		}
		inSum += coinToSat(prev.Vout[in.Vout].Value)
	}
	var outSum uint64
	for _, out := range obs.Outputs {
		outSum += out.Amount
	}
	if inSum < outSum {
		return 0, fmt.Errorf("%w: %s outputs exceed inputs", ErrInvalidResponse, obs.TxID)
	}
	return inSum - outSum, nil
}
