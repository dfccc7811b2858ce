// Package vector projects observed ledger transactions into protocol state
// vectors. A state vector is the position of one transaction across the
// signal planes (value, fee, cardinality, block interval, symmetry, aux);
// dialect matching and decoding operate on vectors, never on raw
// transactions.
package vector

import (
	"math"
	"sort"
	"time"
)

// DeltaUnknown marks the block delta of the first transaction in a stream,
// where no prior frame height exists.
const DeltaUnknown int64 = math.MinInt64

// DefaultSymmetryThreshold is the input/output count difference beyond which
// a transaction is classified asymmetric when the dialect does not declare
// its own threshold.
const DefaultSymmetryThreshold = 1

// Symmetry is the tri-state topology classification of a transaction.
type Symmetry int

const (
	// SymmetryNeutral is the default classification.
	SymmetryNeutral Symmetry = iota
	// SymmetryMirrored means input and output counts are equal and the
	// output values appear in canonical (ascending) order on the wire.
	SymmetryMirrored
	// SymmetryAsymmetric means the counts differ by more than the
	// configured threshold.
	SymmetryAsymmetric
)

// String returns the dialect-document spelling of the symmetry state.
func (s Symmetry) String() string {
	switch s {
	case SymmetryMirrored:
		return "mirrored"
	case SymmetryAsymmetric:
		return "asymmetric"
	default:
		return "neutral"
	}
}

// InputRef identifies a spent output.
type InputRef struct {
	TxID string `json:"txid"`
	Vout uint32 `json:"vout"`
}

// Output is one created output of an observed transaction.
type Output struct {
	Amount    uint64 `json:"amount"` // minor units
	ScriptRef string `json:"script_ref"`
}

// ObservedTx is one transaction as reported by a transaction observer.
// Amounts are integer minor units.
type ObservedTx struct {
	TxID      string     `json:"txid"`
	Height    int64      `json:"height"`
	Timestamp time.Time  `json:"timestamp"`
	Inputs    []InputRef `json:"inputs"`
	Outputs   []Output   `json:"outputs"`
	Fee       uint64     `json:"fee"`
	Aux       []byte     `json:"aux,omitempty"`
}

// StateVector is the immutable projection of one transaction onto the
// signal planes. Value and Fee are exact integer minor units.
type StateVector struct {
	// Value is the canonical amount header: the first output in canonical
	// (ascending) order. Zero for transactions with no outputs.
	Value uint64
	// Outputs holds every output amount in canonical order. Header
	// matching scans this list, since change branches may exceed the
	// header amount.
	Outputs    []uint64
	Fee        uint64
	InCount    int
	OutCount   int
	BlockDelta int64 // DeltaUnknown for the first frame in a stream
	Symmetry   Symmetry
	Aux        []byte
}

// ContainsAmount reports whether any output amount lies within tolerance of
// want.
func (sv StateVector) ContainsAmount(want, tolerance uint64) bool {
	for _, amt := range sv.Outputs {
		if absDiff(amt, want) <= tolerance {
			return true
		}
	}
	return false
}

// Projector derives state vectors from observed transactions.
// The zero value uses DefaultSymmetryThreshold.
type Projector struct {
	// SymmetryThreshold is the |inCount - outCount| bound beyond which a
	// transaction is asymmetric. Zero means DefaultSymmetryThreshold.
	SymmetryThreshold int
}

// Project computes the state vector for tx relative to priorHeight. Pass a
// negative priorHeight for the first transaction in a stream; the resulting
// BlockDelta is DeltaUnknown.
//
// Project is pure: the same (tx, priorHeight) always yields the same vector,
// and tx is never mutated. Garbage input (zero-valued or dust outputs from
// non-protocol traffic) projects to a vector that simply will not match any
// dialect symbol.
func (p Projector) Project(tx ObservedTx, priorHeight int64) StateVector {
	threshold := p.SymmetryThreshold
	if threshold <= 0 {
		threshold = DefaultSymmetryThreshold
	}

	observed := make([]uint64, len(tx.Outputs))
	for i, out := range tx.Outputs {
		observed[i] = out.Amount
	}
	canonical := append([]uint64(nil), observed...)
	sort.Slice(canonical, func(i, j int) bool { return canonical[i] < canonical[j] })

	sv := StateVector{
		Outputs:  canonical,
		Fee:      tx.Fee,
		InCount:  len(tx.Inputs),
		OutCount: len(tx.Outputs),
		Symmetry: classifySymmetry(len(tx.Inputs), len(tx.Outputs), observed, canonical, threshold),
		Aux:      tx.Aux,
	}
	if len(canonical) > 0 {
		sv.Value = canonical[0]
	}
	if priorHeight < 0 {
		sv.BlockDelta = DeltaUnknown
	} else {
		sv.BlockDelta = tx.Height - priorHeight
	}
	return sv
}

// Project computes a state vector with default settings. See
// Projector.Project.
func Project(tx ObservedTx, priorHeight int64) StateVector {
	return Projector{}.Project(tx, priorHeight)
}

// classifySymmetry derives the tri-state symmetry plane value.
//
// Mirrored requires equal counts and wire-order outputs already in canonical
// ascending order. Asymmetric requires a count difference beyond the
// threshold. Everything else is neutral.
func classifySymmetry(inCount, outCount int, observed, canonical []uint64, threshold int) Symmetry {
	diff := inCount - outCount
	if diff < 0 {
		diff = -diff
	}
	if diff > threshold {
		return SymmetryAsymmetric
	}
	if inCount != outCount {
		return SymmetryNeutral
	}
	for i := range observed {
		if observed[i] != canonical[i] {
			return SymmetryNeutral
		}
	}
	return SymmetryMirrored
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
