package planner

import "fmt"

// FrameRequest describes one frame of a chained plan. Fields mirror Request
// minus coin supply, which the chain manages.
type FrameRequest struct {
	Targets   []uint64
	Fee       uint64
	InCount   int
	OutCount  int
	KeepOrder bool
}

// ChainRequest describes a linked multi-frame plan.
type ChainRequest struct {
	Coins     []Coin
	Frames    []FrameRequest
	DustFloor uint64
}

// BuildChain plans a linked sequence of frames. The first frame selects
// real coins sized to fund the entire chain; every later frame spends the
// previous frame's designated change output, recorded with the
// PreviousChangeTxID placeholder until broadcast resolves real txids.
//
// The chain is all-or-nothing: any frame that cannot be planned (including
// an intermediate change output that would fall below the dust floor or
// fail to fund the remainder of the chain) aborts the whole chain with a
// *ChainError carrying the failing frame index.
func BuildChain(req ChainRequest) ([]*Plan, error) {
	if len(req.Frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrBadRequest)
	}
	dust := req.DustFloor
	if dust == 0 {
		dust = DefaultDustFloor
	}

	// Each non-head frame must be fully funded by the change it inherits.
	tails := make([]uint64, len(req.Frames))
	for i := len(req.Frames) - 2; i >= 0; i-- {
		next := req.Frames[i+1]
		var sum uint64
		for _, t := range next.Targets {
			sum += t
		}
		tails[i] = tails[i+1] + sum + next.Fee
	}

	plans := make([]*Plan, 0, len(req.Frames))
	carry := Coin{} // designated change of the previous frame
	for i, fr := range req.Frames {
		var r Request
		if i == 0 {
			r = Request{
				Coins:     req.Coins,
				Targets:   fr.Targets,
				Fee:       fr.Fee,
				InCount:   fr.InCount,
				OutCount:  fr.OutCount,
				DustFloor: dust,
				KeepOrder: fr.KeepOrder,
				Reserve:   tails[0],
			}
		} else {
			r = Request{
				Coins:     []Coin{carry},
				Targets:   fr.Targets,
				Fee:       fr.Fee,
				InCount:   1,
				OutCount:  fr.OutCount,
				DustFloor: dust,
				KeepOrder: fr.KeepOrder,
				Reserve:   tails[i],
			}
		}
		plan, err := Build(r)
		if err != nil {
			return nil, &ChainError{Frame: i, Err: err}
		}

		if i < len(req.Frames)-1 {
			change, ok := plan.Change()
			if !ok {
				return nil, &ChainError{Frame: i, Err: fmt.Errorf(
					"%w: frame leaves no change to link the next frame", ErrCardinality)}
			}
			if change.Amount < tails[i] {
				return nil, &ChainError{Frame: i, Err: fmt.Errorf(
					"%w: change %d cannot fund remaining frames (%d needed)",
					ErrInsufficientFunds, change.Amount, tails[i])}
			}
			carry = Coin{
				TxID:   PreviousChangeTxID,
				Vout:   uint32(plan.ChangeIndex),
				Amount: change.Amount,
			}
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
