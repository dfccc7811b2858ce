package packet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enigmaticorg/libenigmatic-go/vector"
)

func txAt(height int64) vector.ObservedTx {
	return vector.ObservedTx{
		TxID:      "tx-" + string(rune('a'+height%26)),
		Height:    height,
		Timestamp: time.Unix(1_700_000_000+height*60, 0),
	}
}

func heights(p Packet) []int64 {
	out := make([]int64, 0, p.Len())
	for _, tx := range p.Txs {
		out = append(out, tx.Height)
	}
	return out
}

func TestGroupAllGapLaw(t *testing.T) {
	// Spacing exactly at the threshold stays in the packet; one unit
	// beyond starts a new one.
	txs := []vector.ObservedTx{txAt(100), txAt(103), txAt(107)}
	packets := GroupAll(3, GapHeight, txs)
	require.Len(t, packets, 2)
	assert.Equal(t, []int64{100, 103}, heights(packets[0]))
	assert.Equal(t, []int64{107}, heights(packets[1]))
}

func TestGroupAll(t *testing.T) {
	tests := []struct {
		name string
		gap  uint64
		txs  []vector.ObservedTx
		want [][]int64
	}{
		{
			name: "empty stream",
			gap:  3,
			txs:  nil,
			want: nil,
		},
		{
			name: "single observation is a one-element packet",
			gap:  3,
			txs:  []vector.ObservedTx{txAt(50)},
			want: [][]int64{{50}},
		},
		{
			name: "one unbroken run",
			gap:  5,
			txs:  []vector.ObservedTx{txAt(10), txAt(13), txAt(18), txAt(20)},
			want: [][]int64{{10, 13, 18, 20}},
		},
		{
			name: "every observation isolated",
			gap:  1,
			txs:  []vector.ObservedTx{txAt(10), txAt(20), txAt(30)},
			want: [][]int64{{10}, {20}, {30}},
		},
		{
			name: "same height never splits",
			gap:  0,
			txs:  []vector.ObservedTx{txAt(10), txAt(10), txAt(11)},
			want: [][]int64{{10, 10}, {11}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			packets := GroupAll(tt.gap, GapHeight, tt.txs)
			require.Len(t, packets, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, want, heights(packets[i]))
			}
		})
	}
}

func TestGroupAllTimeUnit(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	at := func(offset time.Duration) vector.ObservedTx {
		return vector.ObservedTx{Height: 100, Timestamp: base.Add(offset)}
	}
	txs := []vector.ObservedTx{at(0), at(90 * time.Second), at(300 * time.Second)}
	packets := GroupAll(120, GapTime, txs)
	require.Len(t, packets, 2)
	assert.Equal(t, 2, packets[0].Len())
	assert.Equal(t, 1, packets[1].Len())
}

func TestBuilderFlush(t *testing.T) {
	b := Builder{Gap: 3, Unit: GapHeight}

	_, ok := b.Add(txAt(10))
	assert.False(t, ok)
	_, ok = b.Add(txAt(12))
	assert.False(t, ok)
	assert.Equal(t, 2, b.Pending())

	p, ok := b.Flush()
	require.True(t, ok)
	assert.Equal(t, []int64{10, 12}, heights(p))
	assert.Equal(t, 0, b.Pending())

	_, ok = b.Flush()
	assert.False(t, ok)
}

func TestGroupChannelFlushesOnClose(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	in := make(chan vector.ObservedTx)
	out := Group(ctx, 3, GapHeight, in)

	go func() {
		for _, h := range []int64{100, 102, 110, 111} {
			in <- txAt(h)
		}
		close(in)
	}()

	var packets []Packet
	for p := range out {
		packets = append(packets, p)
	}
	require.Len(t, packets, 2)
	assert.Equal(t, []int64{100, 102}, heights(packets[0]))
	assert.Equal(t, []int64{110, 111}, heights(packets[1]))
}

func TestGroupChannelCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan vector.ObservedTx)
	out := Group(ctx, 3, GapHeight, in)

	in <- txAt(100)
	cancel()

	// Cancellation abandons the open packet and closes the output.
	var packets []Packet
	for p := range out {
		packets = append(packets, p)
	}
	assert.Empty(t, packets)
}
