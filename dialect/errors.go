package dialect

import "errors"

var (
	// ErrInvalidDocument indicates the dialect document is structurally
	// malformed (bad YAML, missing required sections).
	ErrInvalidDocument = errors.New("dialect: invalid dialect document")

	// ErrNoSymbols indicates the dialect declares no symbols.
	ErrNoSymbols = errors.New("dialect: dialect must declare at least one symbol")

	// ErrBadValuePlane indicates an invalid value plane declaration.
	ErrBadValuePlane = errors.New("dialect: invalid value plane")

	// ErrBadFeeBand indicates an invalid fee band declaration.
	ErrBadFeeBand = errors.New("dialect: invalid fee band")

	// ErrBadCardinality indicates an invalid cardinality rule (m and n must
	// both be at least 1).
	ErrBadCardinality = errors.New("dialect: invalid cardinality rule")

	// ErrBadCadence indicates an invalid block cadence (delta must be
	// non-negative).
	ErrBadCadence = errors.New("dialect: invalid block cadence")

	// ErrUndeclaredPlane indicates a symbol predicate references a plane
	// entry the dialect never declared.
	ErrUndeclaredPlane = errors.New("dialect: predicate references undeclared plane entry")

	// ErrAmbiguousSymbols indicates two symbol predicates can match the
	// same state vector and the dialect did not opt into declaration-order
	// tie-breaking.
	ErrAmbiguousSymbols = errors.New("dialect: overlapping symbol predicates")

	// ErrUnknownSymbol indicates a requested symbol name is absent from
	// the dialect.
	ErrUnknownSymbol = errors.New("dialect: unknown symbol")
)
