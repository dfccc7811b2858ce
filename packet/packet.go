// Package packet partitions an ordered stream of observed transactions into
// packets, the unit the decoder parses. Two consecutive observations belong
// to the same packet while their spacing stays at or under a configured gap
// threshold; one unit beyond the threshold starts a new packet.
//
// The grouper consumes an abstract ordered sequence, so it serves a finite
// replay (batch decode, tests) and an unbounded live feed (a polling
// watcher) with the same code. Push-style sources never signal "stream
// end", so idle flushing is explicit: the channel form flushes when the
// input closes, and the incremental Builder exposes Flush for
// caller-driven timeouts.
package packet

import (
	"context"

	"github.com/enigmaticorg/libenigmatic-go/vector"
)

// GapUnit selects how observation spacing is measured.
type GapUnit int

const (
	// GapHeight measures spacing in block heights.
	GapHeight GapUnit = iota
	// GapTime measures spacing in seconds between observation timestamps.
	GapTime
)

// Packet is a maximal gap-free run of observed transactions, in stream
// order.
type Packet struct {
	Txs []vector.ObservedTx
}

// First returns the earliest transaction of the packet.
func (p Packet) First() vector.ObservedTx { return p.Txs[0] }

// Last returns the latest transaction of the packet.
func (p Packet) Last() vector.ObservedTx { return p.Txs[len(p.Txs)-1] }

// Len returns the number of transactions in the packet.
func (p Packet) Len() int { return len(p.Txs) }

// Builder is the incremental grouping state machine. It holds at most one
// open packet; Add returns a completed packet whenever a new observation
// exceeds the gap from the previous one. Not safe for concurrent use.
type Builder struct {
	// Gap is the inclusive spacing threshold. Zero means consecutive
	// units only.
	Gap uint64
	// Unit selects height or time spacing.
	Unit GapUnit

	open []vector.ObservedTx
}

// Add feeds one observation. When the observation exceeds the gap from the
// open packet's tail, the open packet is returned complete and a new one is
// started; otherwise the observation is appended and ok is false.
func (b *Builder) Add(tx vector.ObservedTx) (done Packet, ok bool) {
	if len(b.open) == 0 {
		b.open = []vector.ObservedTx{tx}
		return Packet{}, false
	}
	if b.spacing(b.open[len(b.open)-1], tx) > b.Gap {
		done = Packet{Txs: b.open}
		b.open = []vector.ObservedTx{tx}
		return done, true
	}
	b.open = append(b.open, tx)
	return Packet{}, false
}

// Flush closes and returns the open packet, if any. Callers flush on stream
// end or on an idle timeout of their choosing.
func (b *Builder) Flush() (Packet, bool) {
	if len(b.open) == 0 {
		return Packet{}, false
	}
	done := Packet{Txs: b.open}
	b.open = nil
	return done, true
}

// Pending returns the number of observations in the open packet.
func (b *Builder) Pending() int { return len(b.open) }

func (b *Builder) spacing(prev, next vector.ObservedTx) uint64 {
	switch b.Unit {
	case GapTime:
		d := next.Timestamp.Sub(prev.Timestamp).Seconds()
		if d < 0 {
			return 0
		}
		return uint64(d)
	default:
		d := next.Height - prev.Height
		if d < 0 {
			return 0
		}
		return uint64(d)
	}
}

// Group consumes observations from in until it closes or ctx is cancelled,
// sending completed packets on the returned channel. Closing the input
// flushes the open packet; cancellation abandons it (the caller is tearing
// the stream down and a half-built packet would decode as noise). The
// output channel is closed afterwards. Re-subscribing means calling Group
// again with a fresh input channel.
func Group(ctx context.Context, gap uint64, unit GapUnit, in <-chan vector.ObservedTx) <-chan Packet {
	out := make(chan Packet)
	go func() {
		defer close(out)
		b := Builder{Gap: gap, Unit: unit}
		for {
			select {
			case <-ctx.Done():
				return
			case tx, open := <-in:
				if !open {
					if p, ok := b.Flush(); ok {
						select {
						case out <- p:
						case <-ctx.Done():
						}
					}
					return
				}
				if p, ok := b.Add(tx); ok {
					select {
					case out <- p:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return out
}

// GroupAll partitions a finite, ordered observation slice. The trailing
// packet is always flushed.
func GroupAll(gap uint64, unit GapUnit, txs []vector.ObservedTx) []Packet {
	b := Builder{Gap: gap, Unit: unit}
	var packets []Packet
	for _, tx := range txs {
		if p, ok := b.Add(tx); ok {
			packets = append(packets, p)
		}
	}
	if p, ok := b.Flush(); ok {
		packets = append(packets, p)
	}
	return packets
}
