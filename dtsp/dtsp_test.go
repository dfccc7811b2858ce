package dtsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountCodePoints(t *testing.T) {
	tests := []struct {
		symbol string
		want   uint64
	}{
		{"A", 22_659},
		{"B", 22_660},
		{"Z", 22_684},
		{"0", 22_648},
		{"9", 22_657},
		{" ", 22_688},
		{"_", 22_699},
		{Start, 22_611},
		{End, 22_621},
		{Accept, 22_631},
	}
	for _, tc := range tests {
		t.Run(tc.symbol, func(t *testing.T) {
			got, ok := Amount(tc.symbol)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	_, ok := Amount("a")
	assert.False(t, ok, "alphabet is uppercase only")
}

func TestClosest(t *testing.T) {
	sym, dist, ok := Closest(22_659, 0)
	require.True(t, ok)
	assert.Equal(t, "A", sym)
	assert.Zero(t, dist)

	// One unit off with zero tolerance: nearest symbol is reported but
	// not accepted.
	sym, dist, ok = Closest(22_658, 0)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), dist)
	assert.NotEmpty(t, sym)

	// The same amount within tolerance 1 is ambiguous between 9 (22657)
	// and A (22659); deterministic scan order picks "9".
	sym, _, ok = Closest(22_658, 1)
	require.True(t, ok)
	assert.Equal(t, "9", sym)

	// Far off the alphabet entirely.
	_, dist, ok = Closest(1_000_000, 5)
	assert.False(t, ok)
	assert.Greater(t, dist, uint64(900_000))
}

func TestEncodeMessage(t *testing.T) {
	seq, err := EncodeMessage("Hi!", true)
	require.NoError(t, err)
	require.Len(t, seq, 5)
	assert.Equal(t, uint64(22_611), seq[0], "START first")
	assert.Equal(t, uint64(22_666), seq[1], "H")
	assert.Equal(t, uint64(22_667), seq[2], "lowercase i normalized to I")
	assert.Equal(t, uint64(22_691), seq[3], "!")
	assert.Equal(t, uint64(22_621), seq[4], "END last")

	seq, err = EncodeMessage("OK", false)
	require.NoError(t, err)
	assert.Equal(t, []uint64{22_673, 22_669}, seq)
}

func TestEncodeMessageUnsupported(t *testing.T) {
	_, err := EncodeMessage("A;B", true)
	assert.ErrorIs(t, err, ErrUnsupportedChar)

	_, err = EncodeMessage("héllo", false)
	assert.ErrorIs(t, err, ErrUnsupportedChar)
}

func TestRoundTrip(t *testing.T) {
	msg := "MEET AT 9, BRING +1!"
	seq, err := EncodeMessage(msg, true)
	require.NoError(t, err)

	got, err := DecodeSequence(seq, true, DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestDecodeSequence(t *testing.T) {
	t.Run("unknown amounts decode as question marks", func(t *testing.T) {
		seq, err := EncodeMessage("AB", false)
		require.NoError(t, err)
		seq[1] = 5_000_000

		got, err := DecodeSequence(seq, false, 0)
		require.NoError(t, err)
		assert.Equal(t, "A?", got)
	})

	t.Run("control code in body is kept lowercased", func(t *testing.T) {
		accept, _ := Amount(Accept)
		a, _ := Amount("A")
		got, err := DecodeSequence([]uint64{a, accept, a}, false, 0)
		require.NoError(t, err)
		assert.Equal(t, "AacceptA", got)
	})

	t.Run("missing markers rejected", func(t *testing.T) {
		seq, err := EncodeMessage("AB", false)
		require.NoError(t, err)
		_, err = DecodeSequence(seq, true, 0)
		assert.ErrorIs(t, err, ErrMissingControls)

		_, err = DecodeSequence(nil, true, 0)
		assert.ErrorIs(t, err, ErrMissingControls)
	})

	t.Run("tolerance recovers drifted amounts", func(t *testing.T) {
		seq, err := EncodeMessage("ZO", true)
		require.NoError(t, err)
		// Z (22684) drifts into the gap below the punctuation block.
		seq[1] = 22_685

		got, err := DecodeSequence(seq, true, 0)
		require.NoError(t, err)
		assert.Equal(t, "?O", got)

		got, err = DecodeSequence(seq, true, 1)
		require.NoError(t, err)
		assert.Equal(t, "ZO", got)
	})
}

func TestTable(t *testing.T) {
	table := Table()
	assert.True(t, strings.HasPrefix(table, "symbol | amount"))
	assert.Contains(t, table, "A | 22659")
	assert.Contains(t, table, "START | 22611")
	// Header plus 51 symbols.
	assert.Len(t, strings.Split(table, "\n"), 52)
}
