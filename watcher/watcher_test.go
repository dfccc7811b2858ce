package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enigmaticorg/libenigmatic-go/decoder"
	"github.com/enigmaticorg/libenigmatic-go/dialect"
	"github.com/enigmaticorg/libenigmatic-go/vector"
)

const testDialect = `
name: watch-test
planes:
  value:
    tolerance: 0
    headers:
      - { amount: 100000000, label: one }
  fee:
    bands:
      - { name: standard, center: 21000, tolerance: 1000 }
symbols:
  - name: PING
    intent: probe
    match: { value: 100000000, fee: standard }
`

func testDecoder(t *testing.T) *decoder.Decoder {
	t.Helper()
	d, err := dialect.Load([]byte(testDialect))
	require.NoError(t, err)
	return decoder.New(d)
}

func pingTx(txid string, height int64) vector.ObservedTx {
	return vector.ObservedTx{
		TxID:      txid,
		Height:    height,
		Timestamp: time.Unix(1_700_000_000+height*15, 0),
		Fee:       21_000,
		Inputs:    []vector.InputRef{{TxID: "prev", Vout: 0}},
		Outputs:   []vector.Output{{Amount: 100_000_000}, {Amount: 250_000_000}},
	}
}

// stubObserver replays a fixed observation set on every poll, the way a
// node keeps answering listsinceblock with the same confirmed history.
type stubObserver struct {
	mu    sync.Mutex
	txs   []vector.ObservedTx
	err   error
	polls int
}

func (s *stubObserver) ObservationsSince(_ context.Context, sinceHeight int64, _ []string) ([]vector.ObservedTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if s.err != nil {
		return nil, s.err
	}
	var out []vector.ObservedTx
	for _, tx := range s.txs {
		if tx.Height > sinceHeight {
			out = append(out, tx)
		}
	}
	return out, nil
}

type resultSink struct {
	mu      sync.Mutex
	results []decoder.Result
}

func (s *resultSink) add(r decoder.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

func (s *resultSink) snapshot() []decoder.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]decoder.Result(nil), s.results...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestRunDecodesAndDeduplicates(t *testing.T) {
	obs := &stubObserver{txs: []vector.ObservedTx{pingTx("p1", 5000)}}
	sink := &resultSink{}

	w := &Watcher{
		Observer:  obs,
		Decoder:   testDecoder(t),
		Gap:       3,
		Interval:  5 * time.Millisecond,
		IdleFlush: 2,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, sink.add) }()

	waitFor(t, func() bool { return len(sink.snapshot()) >= 1 })

	// Let several more polls happen; the seen set must prevent a second
	// decode of the same transaction.
	waitFor(t, func() bool {
		obs.mu.Lock()
		defer obs.mu.Unlock()
		return obs.polls > 10
	})
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	results := sink.snapshot()
	require.Len(t, results, 1)
	require.Equal(t, decoder.KindMatch, results[0].Kind)
	assert.Equal(t, "PING", results[0].Messages[0].Symbol)
}

func TestRunFlushesOnShutdown(t *testing.T) {
	obs := &stubObserver{txs: []vector.ObservedTx{pingTx("p1", 5000)}}
	sink := &resultSink{}

	w := &Watcher{
		Observer: obs,
		Decoder:  testDecoder(t),
		Gap:      3,
		Interval: 5 * time.Millisecond,
		// IdleFlush left high so only shutdown can flush.
		IdleFlush: 1 << 30,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, sink.add) }()

	waitFor(t, func() bool {
		obs.mu.Lock()
		defer obs.mu.Unlock()
		return obs.polls >= 2
	})
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	results := sink.snapshot()
	require.Len(t, results, 1, "open packet must be flushed on shutdown")
	assert.Equal(t, decoder.KindMatch, results[0].Kind)
}

func TestRunSurvivesObserverErrors(t *testing.T) {
	obs := &stubObserver{err: errors.New("node restarting")}
	sink := &resultSink{}

	var errsMu sync.Mutex
	var seen []error

	w := &Watcher{
		Observer: obs,
		Decoder:  testDecoder(t),
		Interval: 5 * time.Millisecond,
		OnError: func(err error) {
			errsMu.Lock()
			defer errsMu.Unlock()
			seen = append(seen, err)
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, sink.add) }()

	waitFor(t, func() bool {
		errsMu.Lock()
		defer errsMu.Unlock()
		return len(seen) >= 3
	})
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	assert.Empty(t, sink.snapshot())
}

func TestRunRequiresDependencies(t *testing.T) {
	err := (&Watcher{Observer: &stubObserver{}}).Run(context.Background(), func(decoder.Result) {})
	assert.ErrorIs(t, err, ErrNoDecoder)

	err = (&Watcher{Decoder: testDecoder(t)}).Run(context.Background(), func(decoder.Result) {})
	assert.ErrorIs(t, err, ErrNoObserver)
}

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "watch.db")
	store, err := OpenBoltStore(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	// Fresh store starts at zero.
	cursor, err := store.Cursor()
	require.NoError(t, err)
	assert.Zero(t, cursor)

	require.NoError(t, store.SetCursor(5002))
	cursor, err = store.Cursor()
	require.NoError(t, err)
	assert.Equal(t, int64(5002), cursor)

	seen, err := store.Seen("t1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, store.MarkSeen("t1", 4000))
	require.NoError(t, store.MarkSeen("t2", 5000))
	seen, err = store.Seen("t1")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, store.PruneSeen(4500))
	seen, err = store.Seen("t1")
	require.NoError(t, err)
	assert.False(t, seen, "pruned below 4500")
	seen, err = store.Seen("t2")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watch.db")

	store, err := OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetCursor(777))
	require.NoError(t, store.MarkSeen("t9", 777))
	require.NoError(t, store.Close())

	store, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	cursor, err := store.Cursor()
	require.NoError(t, err)
	assert.Equal(t, int64(777), cursor)
	seen, err := store.Seen("t9")
	require.NoError(t, err)
	assert.True(t, seen)
}
