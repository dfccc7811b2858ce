package encoder

import "errors"

var (
	// ErrEncode indicates a symbol could not be realized as frames. It
	// wraps the underlying planning error when planning failed.
	ErrEncode = errors.New("encoder: cannot encode symbol")

	// ErrNotEncodable indicates the symbol's predicate is under-specified
	// for emission (no value header or no fee band to target).
	ErrNotEncodable = errors.New("encoder: symbol is not encodable")

	// ErrFeeFloor indicates the policy fee floor lies above the symbol's
	// declared fee band, so no emitted fee could both satisfy policy and
	// remain recognizable.
	ErrFeeFloor = errors.New("encoder: fee floor exceeds the declared band")
)
