// Package watcher drives the decode side of the protocol against a live
// ledger: it polls an observation source on a fixed cadence, groups new
// transactions into packets, decodes each packet, and hands results to a
// caller-supplied sink. The poll cadence and stop condition belong to the
// caller via the context; the watcher owns no global state and can run once
// per watched channel.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/enigmaticorg/libenigmatic-go/decoder"
	"github.com/enigmaticorg/libenigmatic-go/packet"
	"github.com/enigmaticorg/libenigmatic-go/vector"
)

// DefaultInterval is the poll cadence when none is configured.
const DefaultInterval = 30 * time.Second

// DefaultIdleFlush is how many consecutive empty polls close the open
// packet. A push-style source never says "stream end", so idleness is the
// only end-of-packet signal between gaps.
const DefaultIdleFlush = 3

// Observer supplies new confirmed observations. *network.RPCClient and the
// network mock satisfy it.
type Observer interface {
	ObservationsSince(ctx context.Context, sinceHeight int64, watch []string) ([]vector.ObservedTx, error)
}

// Sink receives decode results. Called synchronously from the poll loop.
type Sink func(decoder.Result)

// Watcher polls an observer and decodes what it sees.
type Watcher struct {
	Observer Observer
	Decoder  *decoder.Decoder
	Store    Store

	// Watch is the address set handed to the observer. Empty watches the
	// whole wallet.
	Watch []string

	// Gap and Unit configure packet grouping.
	Gap  uint64
	Unit packet.GapUnit

	// Interval is the poll cadence. Zero means DefaultInterval.
	Interval time.Duration

	// IdleFlush is the number of consecutive empty polls after which the
	// open packet is flushed. Zero means DefaultIdleFlush.
	IdleFlush int

	// OnError, when set, observes transient poll errors. The loop keeps
	// running; a long watch must survive a node restart.
	OnError func(error)
}

// Run polls until ctx is cancelled, delivering every decoded packet to
// sink. The open packet is flushed and decoded before returning, so a
// graceful shutdown loses nothing already observed. Returns ctx.Err().
func (w *Watcher) Run(ctx context.Context, sink Sink) error {
	if w.Decoder == nil {
		return ErrNoDecoder
	}
	if w.Observer == nil {
		return ErrNoObserver
	}
	store := w.Store
	if store == nil {
		store = NewMemStore()
	}
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	idleFlush := w.IdleFlush
	if idleFlush <= 0 {
		idleFlush = DefaultIdleFlush
	}

	builder := packet.Builder{Gap: w.Gap, Unit: w.Unit}
	idle := 0

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if p, ok := builder.Flush(); ok {
				sink(w.Decoder.Decode(p))
			}
			return ctx.Err()
		case <-ticker.C:
			fresh, err := w.poll(ctx, store, &builder, sink)
			if err != nil {
				if w.OnError != nil {
					w.OnError(err)
				}
				continue
			}
			if fresh {
				idle = 0
				continue
			}
			idle++
			if idle >= idleFlush {
				if p, ok := builder.Flush(); ok {
					sink(w.Decoder.Decode(p))
				}
				idle = 0
			}
		}
	}
}

// poll fetches observations past the cursor, feeds them to the grouper,
// and decodes any packets the new observations completed. It reports
// whether anything new arrived.
func (w *Watcher) poll(ctx context.Context, store Store, builder *packet.Builder, sink Sink) (bool, error) {
	cursor, err := store.Cursor()
	if err != nil {
		return false, fmt.Errorf("watcher: read cursor: %w", err)
	}
	observations, err := w.Observer.ObservationsSince(ctx, cursor, w.Watch)
	if err != nil {
		return false, fmt.Errorf("watcher: poll: %w", err)
	}

	fresh := false
	maxHeight := cursor
	for _, obs := range observations {
		seen, err := store.Seen(obs.TxID)
		if err != nil {
			return fresh, fmt.Errorf("watcher: seen lookup: %w", err)
		}
		if seen {
			continue
		}
		fresh = true
		if p, ok := builder.Add(obs); ok {
			sink(w.Decoder.Decode(p))
		}
		if err := store.MarkSeen(obs.TxID, obs.Height); err != nil {
			return fresh, fmt.Errorf("watcher: mark seen: %w", err)
		}
		if obs.Height > maxHeight {
			maxHeight = obs.Height
		}
	}

	// The cursor trails by one height so a block's stragglers are picked
	// up next poll; the seen set keeps them from decoding twice.
	if maxHeight > cursor+1 {
		if err := store.SetCursor(maxHeight - 1); err != nil {
			return fresh, fmt.Errorf("watcher: advance cursor: %w", err)
		}
	}
	return fresh, nil
}
