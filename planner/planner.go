// Package planner realizes target output patterns as concrete spend plans
// over an available coin set. The planner is pure: it never reserves, locks,
// or mutates coins, and holds no state across calls. Callers racing over the
// same coin set must serialize planning or re-query fresh coins.
//
// All amounts are integer minor units; every plan conserves value exactly:
// sum(inputs) == sum(outputs) + fee.
package planner

import (
	"fmt"
	"sort"
)

// DefaultDustFloor is the minimum economically valid output in minor units
// (0.0001 coins at 8 decimal places).
const DefaultDustFloor uint64 = 10_000

// PreviousChangeTxID is the placeholder transaction id used in chained
// plans for inputs that spend the previous frame's change output, which
// does not exist on the ledger until that frame is broadcast. Broadcast
// sequencing resolves it to the concrete txid.
const PreviousChangeTxID = "__previous_change__"

// Coin is one spendable unspent output, as supplied by the coin source.
type Coin struct {
	TxID          string
	Vout          uint32
	Amount        uint64
	Confirmations int64
}

// Virtual reports whether the coin is a chain-internal placeholder rather
// than a ledger output.
func (c Coin) Virtual() bool { return c.TxID == PreviousChangeTxID }

// OutputRole distinguishes pattern outputs from change branches.
type OutputRole int

const (
	// RolePrimary marks an output carrying a requested pattern amount.
	RolePrimary OutputRole = iota
	// RoleChange marks a change branch.
	RoleChange
)

// Output is one planned output.
type Output struct {
	Amount uint64
	Role   OutputRole
}

// Plan is a fully determined, unsigned spend plan.
type Plan struct {
	Inputs  []Coin
	Outputs []Output
	Fee     uint64

	// ChangeIndex is the index of the designated change output (the one
	// chain linkage spends), or -1 when the plan has no change.
	ChangeIndex int
}

// Change returns the designated change output.
func (p *Plan) Change() (Output, bool) {
	if p.ChangeIndex < 0 {
		return Output{}, false
	}
	return p.Outputs[p.ChangeIndex], true
}

// InputSum returns the total value spent by the plan.
func (p *Plan) InputSum() uint64 {
	var sum uint64
	for _, in := range p.Inputs {
		sum += in.Amount
	}
	return sum
}

// OutputSum returns the total value created by the plan.
func (p *Plan) OutputSum() uint64 {
	var sum uint64
	for _, out := range p.Outputs {
		sum += out.Amount
	}
	return sum
}

// Request describes one frame to plan.
type Request struct {
	// Coins is the available coin set. Never mutated.
	Coins []Coin

	// Targets are the pattern output amounts, in pattern order.
	Targets []uint64

	// Fee is the exact fee the transaction must pay.
	Fee uint64

	// InCount, when positive, requires exactly that many inputs (the
	// cardinality plane's m). Zero selects greedily: fewest
	// largest-first coins that cover the requirement.
	InCount int

	// OutCount is the total output count the plan should produce,
	// including change branches (the cardinality plane's n). Zero means
	// len(Targets) plus a single change output when change is non-zero.
	OutCount int

	// DustFloor is the minimum valid output amount. Zero means
	// DefaultDustFloor.
	DustFloor uint64

	// KeepOrder skips canonical output reordering, leaving outputs in
	// pattern order with change last. Used to signal exceptional states.
	KeepOrder bool

	// Reserve is extra value the selection must cover beyond targets and
	// fee (chained planning reserves downstream frames' requirements).
	Reserve uint64
}

// Build selects funding inputs and computes a change layout satisfying the
// request.
//
// Selection walks coins in descending amount order, first-fit. Change is
// split evenly across the change slots implied by OutCount; a split that
// would put any branch below the dust floor fails with ErrDustViolation
// rather than emitting it or silently dropping a branch. Exact zero change
// omits the change outputs entirely, a valid outcome that lowers the output
// count; callers requiring exact cardinality must treat it as such.
func Build(req Request) (*Plan, error) {
	dust := req.DustFloor
	if dust == 0 {
		dust = DefaultDustFloor
	}
	if len(req.Targets) == 0 {
		return nil, fmt.Errorf("%w: no target outputs", ErrBadRequest)
	}
	var targetSum uint64
	for i, t := range req.Targets {
		if t < dust {
			return nil, fmt.Errorf("%w: target %d (%d) is below %d", ErrDustViolation, i, t, dust)
		}
		targetSum += t
	}
	if req.OutCount != 0 && req.OutCount < len(req.Targets) {
		return nil, fmt.Errorf("%w: out count %d below %d pattern outputs",
			ErrBadRequest, req.OutCount, len(req.Targets))
	}

	need := targetSum + req.Fee + req.Reserve
	selected, total, err := selectCoins(req.Coins, req.InCount, need)
	if err != nil {
		return nil, err
	}

	change := total - targetSum - req.Fee

	branches := 1
	if req.OutCount != 0 {
		branches = req.OutCount - len(req.Targets)
	}
	if change > 0 && branches == 0 {
		return nil, fmt.Errorf("%w: change %d left but output count %d leaves no change slot",
			ErrCardinality, change, req.OutCount)
	}

	outputs := make([]Output, 0, len(req.Targets)+branches)
	for _, t := range req.Targets {
		outputs = append(outputs, Output{Amount: t, Role: RolePrimary})
	}

	changeIndex := -1
	if change > 0 {
		split, err := splitChange(change, branches, dust)
		if err != nil {
			return nil, err
		}
		for _, amt := range split {
			outputs = append(outputs, Output{Amount: amt, Role: RoleChange})
		}
	}

	if !req.KeepOrder {
		canonicalize(outputs)
	}
	for i, out := range outputs {
		if out.Role == RoleChange {
			// The designated change output is the last change branch
			// in final order.
			changeIndex = i
		}
	}

	return &Plan{
		Inputs:      selected,
		Outputs:     outputs,
		Fee:         req.Fee,
		ChangeIndex: changeIndex,
	}, nil
}

// selectCoins picks funding inputs from coins, sorted descending by amount.
// A positive count requires exactly count coins (largest first); count zero
// accumulates first-fit until need is covered.
func selectCoins(coins []Coin, count int, need uint64) ([]Coin, uint64, error) {
	if len(coins) == 0 {
		return nil, 0, fmt.Errorf("%w: no spendable coins", ErrInsufficientFunds)
	}
	sorted := append([]Coin(nil), coins...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })

	if count > 0 {
		if len(sorted) < count {
			return nil, 0, fmt.Errorf("%w: have %d coins, need %d inputs",
				ErrInsufficientFunds, len(sorted), count)
		}
		selected := sorted[:count]
		var total uint64
		for _, c := range selected {
			total += c.Amount
		}
		if total < need {
			return nil, 0, fmt.Errorf("%w: %d largest coins total %d, need %d",
				ErrInsufficientFunds, count, total, need)
		}
		return append([]Coin(nil), selected...), total, nil
	}

	var selected []Coin
	var total uint64
	for _, c := range sorted {
		selected = append(selected, c)
		total += c.Amount
		if total >= need {
			return selected, total, nil
		}
	}
	return nil, 0, fmt.Errorf("%w: coins total %d, need %d", ErrInsufficientFunds, total, need)
}

// splitChange divides change as evenly as possible across branches, giving
// the remainder to the last branch. Every branch must clear the dust floor.
func splitChange(change uint64, branches int, dust uint64) ([]uint64, error) {
	per := change / uint64(branches)
	if per < dust {
		return nil, fmt.Errorf("%w: change %d across %d branches yields %d per branch (floor %d)",
			ErrDustViolation, change, branches, per, dust)
	}
	split := make([]uint64, branches)
	var distributed uint64
	for i := 0; i < branches-1; i++ {
		split[i] = per
		distributed += per
	}
	split[branches-1] = change - distributed
	return split, nil
}

// canonicalize orders outputs by amount ascending, primaries before change
// on equal amounts.
func canonicalize(outputs []Output) {
	sort.SliceStable(outputs, func(i, j int) bool {
		if outputs[i].Amount != outputs[j].Amount {
			return outputs[i].Amount < outputs[j].Amount
		}
		return outputs[i].Role < outputs[j].Role
	})
}
