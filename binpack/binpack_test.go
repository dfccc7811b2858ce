package binpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	packets, err := DefaultCodec().Encode("Hi")
	require.NoError(t, err)
	require.Len(t, packets, 2)

	// 'H' is 72 = 01001000.
	assert.Equal(t, 'H', packets[0].Char)
	assert.Equal(t, "01001000", packets[0].Bits)
	assert.Equal(t, uint64(10_000+1_001_000), packets[0].Amount)

	// 'i' is 105 = 01101001.
	assert.Equal(t, "01101001", packets[1].Bits)
	assert.Equal(t, uint64(10_000+1_101_001), packets[1].Amount)
}

func TestEncodeBaseCarriesIntoBitDigit(t *testing.T) {
	// '`' is 96 = 01100000; its fifth-from-last digit is 0, and the
	// base amount (10_000) lands exactly there, producing a digit that
	// is only binary again after the base is stripped.
	packets, err := DefaultCodec().Encode("`")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_110_000), packets[0].Amount)

	got, err := DefaultCodec().Decode([]uint64{packets[0].Amount})
	require.NoError(t, err)
	assert.Equal(t, "`", got)
}

func TestRoundTrip(t *testing.T) {
	codec := DefaultCodec()
	for _, text := range []string{"A", "Hello, world!", "x0_9~", ""} {
		amounts, err := codec.Amounts(text)
		require.NoError(t, err)

		got, err := codec.Decode(amounts)
		require.NoError(t, err)
		assert.Equal(t, text, got)
	}
}

func TestNarrowWidth(t *testing.T) {
	codec := Codec{BaseAmount: 10_000, BitsPerChar: 7}

	amounts, err := codec.Amounts("OK")
	require.NoError(t, err)
	// 'O' is 79 = 1001111 over seven digits.
	assert.Equal(t, uint64(10_000+1_001_111), amounts[0])

	got, err := codec.Decode(amounts)
	require.NoError(t, err)
	assert.Equal(t, "OK", got)

	// Latin-1 high half needs the eighth bit.
	_, err = codec.Encode("é")
	assert.ErrorIs(t, err, ErrUnencodable)
}

func TestEncodeErrors(t *testing.T) {
	_, err := DefaultCodec().Encode("日")
	assert.ErrorIs(t, err, ErrUnencodable)

	_, err = Codec{BaseAmount: 10_000}.Encode("A")
	assert.ErrorIs(t, err, ErrBadWidth)

	_, err = Codec{BaseAmount: 10_000, BitsPerChar: 9}.Encode("A")
	assert.ErrorIs(t, err, ErrBadWidth)
}

func TestDecodeErrors(t *testing.T) {
	codec := DefaultCodec()

	t.Run("below base", func(t *testing.T) {
		_, err := codec.Decode([]uint64{9_999})
		assert.ErrorIs(t, err, ErrBadAmount)
	})

	t.Run("too many digits", func(t *testing.T) {
		_, err := codec.Decode([]uint64{10_000 + 100_000_000})
		assert.ErrorIs(t, err, ErrBadAmount)
	})

	t.Run("non-binary digit", func(t *testing.T) {
		_, err := codec.Decode([]uint64{10_000 + 1_002_000})
		assert.ErrorIs(t, err, ErrBadAmount)
	})

	t.Run("bad width", func(t *testing.T) {
		_, err := Codec{}.Decode([]uint64{10_000})
		assert.ErrorIs(t, err, ErrBadWidth)
	})
}
