package txbuild

import "errors"

var (
	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("txbuild: required parameter is nil")

	// ErrBadTxID indicates a transaction id that is not valid hex of the
	// right length.
	ErrBadTxID = errors.New("txbuild: invalid transaction id")

	// ErrUnresolvedInput indicates a chain placeholder input was not
	// resolved to a concrete txid before rendering or signing.
	ErrUnresolvedInput = errors.New("txbuild: unresolved chain input")

	// ErrScriptBuild indicates locking script construction failed.
	ErrScriptBuild = errors.New("txbuild: script build failed")

	// ErrSigningFailed indicates transaction signing failed.
	ErrSigningFailed = errors.New("txbuild: signing failed")

	// ErrKeyMismatch indicates the supplied keys do not cover the plan's
	// inputs.
	ErrKeyMismatch = errors.New("txbuild: keys do not cover inputs")
)
