// Package binpack encodes text as binary decimal amounts: each character's
// bit pattern becomes the trailing decimal digits of an output amount, every
// digit a 0 or a 1, offset by a base amount. An eight-bit character occupies
// exactly the eight decimal digits of one coin's minor-unit fraction.
//
// All arithmetic is integer minor units; there is no rounding.
package binpack

import "fmt"

// Defaults for the codec. The base amount keeps every packet above the
// planner's dust floor.
const (
	DefaultBaseAmount  uint64 = 10_000
	DefaultBitsPerChar        = 8
)

// maxBitsPerChar bounds the bit width to the decimal digits of one coin's
// minor-unit fraction.
const maxBitsPerChar = 8

// Packet is one encoded character and the amount that carries it.
type Packet struct {
	Char   rune
	Bits   string
	Amount uint64
}

// Codec converts between text and binary decimal amounts. The zero value is
// not usable; construct with DefaultCodec or fill both fields.
type Codec struct {
	// BaseAmount is added to every packed amount and stripped on decode.
	BaseAmount uint64

	// BitsPerChar is the character bit width, 1 to 8.
	BitsPerChar int
}

// DefaultCodec returns the standard eight-bit codec.
func DefaultCodec() Codec {
	return Codec{BaseAmount: DefaultBaseAmount, BitsPerChar: DefaultBitsPerChar}
}

func (c Codec) check() error {
	if c.BitsPerChar <= 0 || c.BitsPerChar > maxBitsPerChar {
		return fmt.Errorf("%w: bits per char must be 1..%d, got %d", ErrBadWidth, maxBitsPerChar, c.BitsPerChar)
	}
	return nil
}

// span returns 10^BitsPerChar, the decimal space the bit digits occupy.
func (c Codec) span() uint64 {
	n := uint64(1)
	for i := 0; i < c.BitsPerChar; i++ {
		n *= 10
	}
	return n
}

// Encode converts text into packets. A character must fit the codec's bit
// width; eight bits covers Latin-1.
func (c Codec) Encode(text string) ([]Packet, error) {
	if err := c.check(); err != nil {
		return nil, err
	}

	packets := make([]Packet, 0, len(text))
	for _, r := range text {
		if r < 0 || r >= 1<<c.BitsPerChar {
			return nil, fmt.Errorf("%w: %q needs more than %d bits", ErrUnencodable, r, c.BitsPerChar)
		}
		bits := make([]byte, c.BitsPerChar)
		packed := uint64(0)
		for i := 0; i < c.BitsPerChar; i++ {
			packed *= 10
			if r&(1<<(c.BitsPerChar-1-i)) != 0 {
				bits[i] = '1'
				packed++
			} else {
				bits[i] = '0'
			}
		}
		packets = append(packets, Packet{
			Char:   r,
			Bits:   string(bits),
			Amount: c.BaseAmount + packed,
		})
	}
	return packets, nil
}

// Amounts is a convenience wrapper returning just the encoded amounts in
// order.
func (c Codec) Amounts(text string) ([]uint64, error) {
	packets, err := c.Encode(text)
	if err != nil {
		return nil, err
	}
	amounts := make([]uint64, len(packets))
	for i, p := range packets {
		amounts[i] = p.Amount
	}
	return amounts, nil
}

// Decode converts packet amounts back into text. Every amount must carry
// the base offset and decode to pure binary digits.
func (c Codec) Decode(amounts []uint64) (string, error) {
	if err := c.check(); err != nil {
		return "", err
	}

	span := c.span()
	out := make([]rune, 0, len(amounts))
	for _, amount := range amounts {
		if amount < c.BaseAmount {
			return "", fmt.Errorf("%w: %d is below the base amount", ErrBadAmount, amount)
		}
		packed := amount - c.BaseAmount
		if packed >= span {
			return "", fmt.Errorf("%w: %d does not fit %d decimal digits", ErrBadAmount, amount, c.BitsPerChar)
		}

		codepoint := rune(0)
		for i := c.BitsPerChar - 1; i >= 0; i-- {
			digit := packed % 10
			packed /= 10
			switch digit {
			case 1:
				codepoint |= 1 << (c.BitsPerChar - 1 - i)
			case 0:
			default:
				return "", fmt.Errorf("%w: %d contains non-binary digit %d", ErrBadAmount, amount, digit)
			}
		}
		out = append(out, codepoint)
	}
	return string(out), nil
}
