package decoder

import (
	"github.com/enigmaticorg/libenigmatic-go/vector"
)

// Kind classifies the overall outcome of decoding one packet.
type Kind int

const (
	// KindNoMatch means the packet completed no chain and matched no
	// single-frame symbol.
	KindNoMatch Kind = iota
	// KindMatch means at least one message was decoded.
	KindMatch
	// KindAmbiguous means no message was decoded but at least one
	// transaction satisfied two or more non-disjoint symbols.
	KindAmbiguous
)

// Message is one decoded symbol occurrence.
type Message struct {
	Symbol string
	Intent string

	// Chain reports whether the message was assembled from a multi-frame
	// chain.
	Chain bool

	// TxIDs lists the contributing transactions in frame order (one entry
	// for single-frame symbols).
	TxIDs []string

	// Vectors holds the per-frame state vectors, aligned with TxIDs.
	Vectors []vector.StateVector
}

// Ambiguity reports a transaction that satisfied two or more non-disjoint
// symbols of a dialect that forbids order-based resolution. It is data, not
// an error; decoding continues past it.
type Ambiguity struct {
	TxID       string
	Candidates []string
}

// Partial reports a chain matcher abandoned mid-sequence: the stream
// violated the chain's block cadence, or the packet ended before the chain
// completed. Partial recovery has operational value (a peer may have
// stalled mid-message), so the frames matched so far are surfaced.
type Partial struct {
	Symbol string
	// Matched is how many frames were matched before abandonment.
	Matched int
	// Expected is the chain's full frame count.
	Expected int
	TxIDs    []string
}

// Result is the decoded view of one packet. NoMatch, ambiguity, and partial
// chains are data outcomes: a decoder working a long observation stream
// keeps going after any of them.
type Result struct {
	Kind        Kind
	Messages    []Message
	Ambiguities []Ambiguity
	Partials    []Partial
}
