// Package decoder parses packets of observed transactions into dialect
// symbols. Decoding is pure and synchronous: it holds no connection to the
// ledger and reports unmatched or ambiguous traffic as data, never as
// errors, so a long-running observation stream survives noise.
package decoder

import (
	"github.com/enigmaticorg/libenigmatic-go/dialect"
	"github.com/enigmaticorg/libenigmatic-go/packet"
	"github.com/enigmaticorg/libenigmatic-go/vector"
)

// Decoder decodes packets against a single dialect.
type Decoder struct {
	dialect *dialect.Dialect
	proj    vector.Projector
}

// New returns a decoder for d.
func New(d *dialect.Dialect) *Decoder {
	return &Decoder{dialect: d, proj: d.Projector()}
}

// Decode parses one packet. Transactions are walked in packet (stream)
// order; each may either advance a chain in progress or match a
// single-frame symbol. Chain matchers take precedence: a transaction
// consumed by a chain frame is not re-evaluated against single-frame
// symbols, since the chain's per-frame predicates already claimed it.
//
// A matcher whose next frame's cadence window is overshot is abandoned and
// surfaced as a Partial, as is any chain still in progress when the packet
// ends.
func (d *Decoder) Decode(p packet.Packet) Result {
	var res Result

	// One prospective matcher per chain symbol; replaced after starting
	// so a later occurrence of the same chain can begin fresh.
	var matchers []*chainMatcher
	for _, sym := range d.dialect.Symbols {
		if sym.IsChain() {
			matchers = append(matchers, newChainMatcher(sym))
		}
	}

	priorHeight := int64(-1)
	for _, tx := range p.Txs {
		// Cadence overshoot abandons matchers before anything else sees
		// the transaction.
		for i, m := range matchers {
			if m.overshot(tx) {
				res.Partials = append(res.Partials, m.partial())
				matchers[i] = newChainMatcher(m.sym)
			}
		}

		consumed := false
		for i, m := range matchers {
			if !m.advance(d.proj, tx) {
				continue
			}
			consumed = true
			if m.complete() {
				res.Messages = append(res.Messages, m.message())
				matchers[i] = newChainMatcher(m.sym)
			}
		}

		if !consumed {
			sv := d.proj.Project(tx, priorHeight)
			switch match := d.dialect.Match(sv); match.Kind {
			case dialect.MatchSymbol:
				res.Messages = append(res.Messages, Message{
					Symbol:  match.Symbol.Name,
					Intent:  match.Symbol.Intent,
					TxIDs:   []string{tx.TxID},
					Vectors: []vector.StateVector{sv},
				})
			case dialect.MatchAmbiguous:
				names := make([]string, len(match.Candidates))
				for i, c := range match.Candidates {
					names[i] = c.Name
				}
				res.Ambiguities = append(res.Ambiguities, Ambiguity{
					TxID:       tx.TxID,
					Candidates: names,
				})
			}
		}
		priorHeight = tx.Height
	}

	// Chains cut off by the end of the packet.
	for _, m := range matchers {
		if m.started() {
			res.Partials = append(res.Partials, m.partial())
		}
	}

	switch {
	case len(res.Messages) > 0:
		res.Kind = KindMatch
	case len(res.Ambiguities) > 0:
		res.Kind = KindAmbiguous
	default:
		res.Kind = KindNoMatch
	}
	return res
}

// DecodeAll decodes a finite batch of packets in order.
func (d *Decoder) DecodeAll(packets []packet.Packet) []Result {
	results := make([]Result, len(packets))
	for i, p := range packets {
		results[i] = d.Decode(p)
	}
	return results
}
