package decoder

import (
	"github.com/enigmaticorg/libenigmatic-go/dialect"
	"github.com/enigmaticorg/libenigmatic-go/vector"
)

// chainMatcher tracks one in-progress chain symbol occurrence. Deltas are
// measured between matched frames, not between adjacent packet
// transactions, so unrelated traffic interleaved with a chain does not
// disturb its cadence.
type chainMatcher struct {
	sym  *dialect.Symbol
	next int // index of the next expected frame

	txids   []string
	vectors []vector.StateVector

	lastHeight int64
	lastLink   vector.InputRef // designated change of the last matched frame
}

func newChainMatcher(sym *dialect.Symbol) *chainMatcher {
	return &chainMatcher{sym: sym, lastHeight: -1}
}

func (m *chainMatcher) started() bool  { return m.next > 0 }
func (m *chainMatcher) complete() bool { return m.next >= len(m.sym.Frames) }

// overshot reports whether tx arrives too late for the next expected
// frame: its delta from the last matched frame exceeds the frame's cadence
// window, so the chain can never complete and the matcher must be
// abandoned rather than force-fit.
func (m *chainMatcher) overshot(tx vector.ObservedTx) bool {
	if !m.started() || m.complete() {
		return false
	}
	fp := m.sym.Frames[m.next]
	if fp.Delta == nil {
		return false
	}
	return tx.Height-m.lastHeight > fp.Delta.Delta+fp.Delta.Jitter
}

// advance attempts to match tx as the next expected frame. The vector is
// projected against the last matched frame's height so the delta plane
// reflects chain cadence.
func (m *chainMatcher) advance(proj vector.Projector, tx vector.ObservedTx) bool {
	fp := m.sym.Frames[m.next]
	sv := proj.Project(tx, m.lastHeight)
	if !fp.Matches(sv) {
		return false
	}
	if m.started() && m.sym.Linked && !spends(tx, m.lastLink) {
		return false
	}

	m.txids = append(m.txids, tx.TxID)
	m.vectors = append(m.vectors, sv)
	m.lastHeight = tx.Height
	m.lastLink = designatedChange(tx, fp)
	m.next++
	return true
}

func (m *chainMatcher) message() Message {
	return Message{
		Symbol:  m.sym.Name,
		Intent:  m.sym.Intent,
		Chain:   true,
		TxIDs:   m.txids,
		Vectors: m.vectors,
	}
}

func (m *chainMatcher) partial() Partial {
	return Partial{
		Symbol:   m.sym.Name,
		Matched:  m.next,
		Expected: len(m.sym.Frames),
		TxIDs:    m.txids,
	}
}

// spends reports whether tx consumes the referenced output.
func spends(tx vector.ObservedTx, ref vector.InputRef) bool {
	for _, in := range tx.Inputs {
		if in.TxID == ref.TxID && in.Vout == ref.Vout {
			return true
		}
	}
	return false
}

// designatedChange infers which output of a matched frame the next frame is
// expected to spend: the largest output that is not the frame's value
// header. With no such output (exact-zero change) the largest output
// stands in, which simply makes the linkage check fail for chains that in
// fact left no change.
func designatedChange(tx vector.ObservedTx, fp *dialect.FramePattern) vector.InputRef {
	best := -1
	fallback := -1
	var bestAmt, fallbackAmt uint64
	for i, out := range tx.Outputs {
		if fallback < 0 || out.Amount > fallbackAmt {
			fallback, fallbackAmt = i, out.Amount
		}
		if fp.Value != nil && absDiff(out.Amount, fp.Value.Header) <= fp.Value.Tolerance {
			continue
		}
		if best < 0 || out.Amount > bestAmt {
			best, bestAmt = i, out.Amount
		}
	}
	if best < 0 {
		best = fallback
	}
	if best < 0 {
		return vector.InputRef{}
	}
	return vector.InputRef{TxID: tx.TxID, Vout: uint32(best)}
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
