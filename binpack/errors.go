package binpack

import "errors"

var (
	// ErrBadWidth indicates a bit width outside the supported range.
	ErrBadWidth = errors.New("binpack: invalid bit width")

	// ErrUnencodable indicates a character that does not fit the codec's
	// bit width.
	ErrUnencodable = errors.New("binpack: character does not fit bit width")

	// ErrBadAmount indicates an amount that does not decode to a binary
	// digit pattern.
	ErrBadAmount = errors.New("binpack: amount is not a binary packet")
)
