// Package encoder turns dialect symbols into unsigned frame plans. It joins
// the dialect model (what a symbol promises on each plane) with the planner
// (how to realize those promises from an available coin set). Signing and
// broadcast stay with the caller.
package encoder

import (
	"fmt"
	"math/rand/v2"

	"github.com/enigmaticorg/libenigmatic-go/dialect"
	"github.com/enigmaticorg/libenigmatic-go/planner"
)

// Frame is one unsigned transaction plan of an encoded symbol.
type Frame struct {
	// Symbol is the encoded symbol's name.
	Symbol string
	// Index is the zero-based frame position (always 0 for single-frame
	// symbols).
	Index int
	// Linked reports whether this frame must spend the previous frame's
	// designated change output at broadcast time.
	Linked bool

	Plan *planner.Plan
}

// Encoder realizes symbols of a single dialect. The zero value is not
// usable; construct with New.
type Encoder struct {
	dialect *dialect.Dialect

	// FeeFloor is the policy minimum fee in minor units. Emitted fees
	// never fall below it.
	FeeFloor uint64

	// DustFloor overrides planner.DefaultDustFloor when non-zero.
	DustFloor uint64

	// jitter draws a uniform value in [0, n). Replaceable for
	// deterministic tests.
	jitter func(n uint64) uint64
}

// New returns an encoder for d.
func New(d *dialect.Dialect) *Encoder {
	return &Encoder{dialect: d, jitter: rand.Uint64N}
}

// Encode realizes the named symbol against the supplied coins, returning
// one frame per pattern frame. Frames of a chain are ordered and, when the
// symbol declares linkage, each frame after the first spends the previous
// frame's designated change output.
//
// The fee actually emitted is drawn uniformly from the symbol's declared
// band rather than pinned at its center, so repeated uses of a symbol do
// not produce byte-identical fee fingerprints. The draw is clamped to the
// policy floor; a floor above the whole band is an error since the result
// could never decode.
func (e *Encoder) Encode(symbol string, coins []planner.Coin) ([]Frame, error) {
	sym, err := e.dialect.Symbol(symbol)
	if err != nil {
		return nil, err
	}
	if sym.IsChain() {
		return e.encodeChain(sym, coins)
	}
	return e.encodeSingle(sym, coins)
}

func (e *Encoder) encodeSingle(sym *dialect.Symbol, coins []planner.Coin) ([]Frame, error) {
	req, err := e.frameRequest(sym.Name, 0, sym.Pattern, sym.KeepOrder)
	if err != nil {
		return nil, err
	}
	plan, err := planner.Build(planner.Request{
		Coins:     coins,
		Targets:   req.Targets,
		Fee:       req.Fee,
		InCount:   req.InCount,
		OutCount:  req.OutCount,
		DustFloor: e.DustFloor,
		KeepOrder: req.KeepOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrEncode, sym.Name, err)
	}
	return []Frame{{Symbol: sym.Name, Index: 0, Plan: plan}}, nil
}

func (e *Encoder) encodeChain(sym *dialect.Symbol, coins []planner.Coin) ([]Frame, error) {
	reqs := make([]planner.FrameRequest, 0, len(sym.Frames))
	for i, fp := range sym.Frames {
		req, err := e.frameRequest(sym.Name, i, fp, sym.KeepOrder)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, req)
	}
	plans, err := planner.BuildChain(planner.ChainRequest{
		Coins:     coins,
		Frames:    reqs,
		DustFloor: e.DustFloor,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrEncode, sym.Name, err)
	}
	frames := make([]Frame, len(plans))
	for i, plan := range plans {
		frames[i] = Frame{
			Symbol: sym.Name,
			Index:  i,
			Linked: sym.Linked && i > 0,
			Plan:   plan,
		}
	}
	return frames, nil
}

// frameRequest converts one frame pattern into planner inputs. A frame
// needs at least a value header to emit and a fee band to draw from.
func (e *Encoder) frameRequest(symbol string, index int, fp *dialect.FramePattern, keepOrder bool) (planner.FrameRequest, error) {
	if fp.Value == nil {
		return planner.FrameRequest{}, fmt.Errorf(
			"%w: %q frame %d has no value header", ErrNotEncodable, symbol, index)
	}
	if fp.Fee == nil {
		return planner.FrameRequest{}, fmt.Errorf(
			"%w: %q frame %d has no fee band", ErrNotEncodable, symbol, index)
	}
	fee, err := e.drawFee(fp.Fee.Band)
	if err != nil {
		return planner.FrameRequest{}, fmt.Errorf("%w: symbol %q frame %d", err, symbol, index)
	}
	req := planner.FrameRequest{
		Targets:   []uint64{fp.Value.Header},
		Fee:       fee,
		KeepOrder: keepOrder,
	}
	if fp.Cardinality != nil {
		req.InCount = fp.Cardinality.Inputs
		req.OutCount = fp.Cardinality.Outputs
	}
	return req, nil
}

// drawFee picks a fee uniformly from the band, clamped to the policy
// floor.
func (e *Encoder) drawFee(band dialect.FeeBand) (uint64, error) {
	lo := band.Center - band.Tolerance // load-time validation keeps tolerance <= center
	hi := band.Center + band.Tolerance
	if e.FeeFloor > hi {
		return 0, fmt.Errorf("%w: floor %d, band %q tops out at %d", ErrFeeFloor, e.FeeFloor, band.Name, hi)
	}
	if e.FeeFloor > lo {
		lo = e.FeeFloor
	}
	if lo == hi {
		return lo, nil
	}
	return lo + e.jitter(hi-lo+1), nil
}
