// Package dtsp implements the DTSP character alphabet: upper-case letters,
// digits, punctuation, and handshake control codes mapped to exact minor-unit
// amounts. The mapping is intentionally static; matching an observed amount
// back to a symbol allows an integer tolerance.
//
// DTSP symbols are usually carried on the fee plane, but the codec is pure
// and works for value-plane encodings as well.
package dtsp

import (
	"fmt"
	"sort"
	"strings"
)

// Control symbol names.
const (
	Start  = "START"
	Accept = "ACCEPT"
	End    = "END"
)

// DefaultTolerance is the default matching tolerance in minor units. The
// alphabet's code points are one unit apart, so exact matching is the
// default.
const DefaultTolerance uint64 = 0

// alphabet maps every DTSP symbol to its minor-unit amount. Letters A-Z
// occupy 22659-22684, digits 0-9 occupy 22648-22657, punctuation sits at
// 22688-22699, and the handshake controls below the printable range.
var alphabet = buildAlphabet()

// ordered holds the alphabet entries sorted by symbol name so closest-match
// scans are deterministic.
var ordered = orderAlphabet()

type entry struct {
	symbol string
	amount uint64
}

func buildAlphabet() map[string]uint64 {
	m := make(map[string]uint64, 51)
	for i := 0; i < 26; i++ {
		m[string(rune('A'+i))] = 22_659 + uint64(i)
	}
	for i := 0; i < 10; i++ {
		m[string(rune('0'+i))] = 22_648 + uint64(i)
	}
	specials := []struct {
		sym    string
		amount uint64
	}{
		{" ", 22_688}, {".", 22_689}, {",", 22_690}, {"!", 22_691},
		{"?", 22_692}, {":", 22_693}, {"=", 22_694}, {"+", 22_695},
		{"-", 22_696}, {"*", 22_697}, {"/", 22_698}, {"_", 22_699},
	}
	for _, s := range specials {
		m[s.sym] = s.amount
	}
	m[Start] = 22_611
	m[Accept] = 22_631
	m[End] = 22_621
	return m
}

func orderAlphabet() []entry {
	out := make([]entry, 0, len(alphabet))
	for sym, amount := range alphabet {
		out = append(out, entry{sym, amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].symbol < out[j].symbol })
	return out
}

// Amount returns the minor-unit amount for a DTSP symbol.
func Amount(symbol string) (uint64, bool) {
	amount, ok := alphabet[symbol]
	return amount, ok
}

// IsControl reports whether a symbol is a handshake control code.
func IsControl(symbol string) bool {
	return symbol == Start || symbol == Accept || symbol == End
}

// Closest returns the DTSP symbol nearest to an observed amount and the
// absolute distance to it. ok is false when the distance exceeds the
// tolerance; the nearest symbol and distance are still returned so callers
// can report near misses.
func Closest(amount, tolerance uint64) (symbol string, distance uint64, ok bool) {
	first := true
	for _, e := range ordered {
		d := absDistance(amount, e.amount)
		if first || d < distance {
			first = false
			symbol = e.symbol
			distance = d
		}
	}
	return symbol, distance, distance <= tolerance
}

func absDistance(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

// EncodeMessage converts plaintext into an ordered amount sequence.
// Lowercase letters are normalized to uppercase. When withControls is set
// the sequence is framed by START and END. Characters outside the alphabet
// fail with ErrUnsupportedChar.
func EncodeMessage(message string, withControls bool) ([]uint64, error) {
	var out []uint64
	if withControls {
		out = append(out, alphabet[Start])
	}
	for _, r := range message {
		sym := strings.ToUpper(string(r))
		amount, ok := alphabet[sym]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedChar, r)
		}
		out = append(out, amount)
	}
	if withControls {
		out = append(out, alphabet[End])
	}
	return out, nil
}

// DecodeSequence converts an amount sequence back into plaintext. Amounts
// with no symbol within the tolerance decode as "?". Control codes inside
// the body are kept, lowercased, so operators can spot malformed or
// multi-part exchanges. When requireControls is set the sequence must start
// with START and end with END; the markers are stripped from the output.
func DecodeSequence(amounts []uint64, requireControls bool, tolerance uint64) (string, error) {
	if requireControls {
		if len(amounts) == 0 {
			return "", fmt.Errorf("%w: empty sequence", ErrMissingControls)
		}
		first, _, okFirst := Closest(amounts[0], tolerance)
		last, _, okLast := Closest(amounts[len(amounts)-1], tolerance)
		if !okFirst || !okLast || first != Start || last != End {
			return "", ErrMissingControls
		}
		amounts = amounts[1 : len(amounts)-1]
	}

	var b strings.Builder
	for _, amount := range amounts {
		sym, _, ok := Closest(amount, tolerance)
		switch {
		case !ok:
			b.WriteByte('?')
		case IsControl(sym):
			b.WriteString(strings.ToLower(sym))
		default:
			b.WriteString(sym)
		}
	}
	return b.String(), nil
}

// Table renders the full symbol mapping for operators, one symbol per line
// in symbol order.
func Table() string {
	var b strings.Builder
	b.WriteString("symbol | amount\n")
	for _, e := range ordered {
		fmt.Fprintf(&b, "%s | %d\n", e.symbol, e.amount)
	}
	return strings.TrimRight(b.String(), "\n")
}
