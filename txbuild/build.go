// Package txbuild renders spend plans as ledger transactions. The protocol
// core stops at the plan; this package turns a plan into an unsigned
// transaction skeleton, signs it when the caller supplies keys, and
// sequences chained frames through a broadcaster, resolving each frame's
// change placeholder to the concrete txid the previous broadcast produced.
package txbuild

import (
	"encoding/hex"
	"fmt"

	"github.com/bsv-blockchain/go-sdk/chainhash"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/bsv-blockchain/go-sdk/script"
	"github.com/bsv-blockchain/go-sdk/transaction"
	"github.com/bsv-blockchain/go-sdk/transaction/template/p2pkh"

	"github.com/enigmaticorg/libenigmatic-go/planner"
)

// Destinations names where a plan's outputs pay. Pattern outputs pay the
// recipient (the watched channel address); change branches pay back into
// the sender's wallet.
type Destinations struct {
	Recipient string
	Change    string
}

// Input carries what signing needs for one spent coin.
type Input struct {
	Coin         planner.Coin
	ScriptPubKey []byte
	PrivateKey   *ec.PrivateKey
}

// Render builds an unsigned transaction from a plan. Output order follows
// the plan exactly; the planner already chose canonical or declared order.
// Chain placeholder inputs must be resolved to real txids first.
func Render(plan *planner.Plan, dest Destinations) (*transaction.Transaction, error) {
	if plan == nil {
		return nil, fmt.Errorf("%w: plan", ErrNilParam)
	}
	if dest.Recipient == "" || dest.Change == "" {
		return nil, fmt.Errorf("%w: destinations", ErrNilParam)
	}

	tx := transaction.NewTransaction()
	for _, coin := range plan.Inputs {
		if coin.Virtual() {
			return nil, fmt.Errorf("%w: %s:%d", ErrUnresolvedInput, coin.TxID, coin.Vout)
		}
		hash, err := txidHash(coin.TxID)
		if err != nil {
			return nil, err
		}
		tx.AddInput(&transaction.TransactionInput{
			SourceTXID:       hash,
			SourceTxOutIndex: coin.Vout,
		})
	}

	for _, out := range plan.Outputs {
		addr := dest.Recipient
		if out.Role == planner.RoleChange {
			addr = dest.Change
		}
		lock, err := lockForAddress(addr)
		if err != nil {
			return nil, err
		}
		tx.AddOutput(&transaction.TransactionOutput{
			Satoshis:      out.Amount,
			LockingScript: lock,
		})
	}
	return tx, nil
}

// Sign attaches source outputs and P2PKH unlockers to every input and
// signs the transaction, returning the broadcast-ready hex. Inputs are
// matched by position: inputs[i] signs transaction input i.
func Sign(tx *transaction.Transaction, inputs []Input) (string, error) {
	if tx == nil {
		return "", fmt.Errorf("%w: transaction", ErrNilParam)
	}
	if len(inputs) != len(tx.Inputs) {
		return "", fmt.Errorf("%w: have %d keys for %d inputs", ErrKeyMismatch, len(inputs), len(tx.Inputs))
	}
	for i, in := range inputs {
		if in.PrivateKey == nil {
			return "", fmt.Errorf("%w: input %d has no key", ErrKeyMismatch, i)
		}
		if len(in.ScriptPubKey) == 0 {
			return "", fmt.Errorf("%w: input %d has no locking script", ErrKeyMismatch, i)
		}
		unlocker, err := p2pkh.Unlock(in.PrivateKey, nil)
		if err != nil {
			return "", fmt.Errorf("%w: unlocker for input %d: %w", ErrSigningFailed, i, err)
		}
		tx.Inputs[i].SetSourceTxOutput(&transaction.TransactionOutput{
			Satoshis:      in.Coin.Amount,
			LockingScript: script.NewFromBytes(in.ScriptPubKey),
		})
		tx.Inputs[i].UnlockingScriptTemplate = unlocker
	}
	if err := tx.Sign(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigningFailed, err)
	}
	return tx.Hex(), nil
}

// LockingScript builds the P2PKH locking script for an address, for
// callers registering watch scripts or preparing Input.ScriptPubKey.
func LockingScript(addr string) ([]byte, error) {
	lock, err := lockForAddress(addr)
	if err != nil {
		return nil, err
	}
	return []byte(*lock), nil
}

func lockForAddress(addr string) (*script.Script, error) {
	a, err := script.NewAddressFromString(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: address %q: %w", ErrScriptBuild, addr, err)
	}
	lock, err := p2pkh.Lock(a)
	if err != nil {
		return nil, fmt.Errorf("%w: lock for %q: %w", ErrScriptBuild, addr, err)
	}
	return lock, nil
}

// txidHash parses a display-order txid hex string into a chain hash
// (internal byte order).
func txidHash(txid string) (*chainhash.Hash, error) {
	raw, err := hex.DecodeString(txid)
	if err != nil || len(raw) != chainhash.HashSize {
		return nil, fmt.Errorf("%w: %q", ErrBadTxID, txid)
	}
	for i, j := 0, len(raw)-1; i < j; i, j = i+1, j-1 {
		raw[i], raw[j] = raw[j], raw[i]
	}
	return chainhash.NewHash(raw)
}
