// Package dialect models the shared ruleset that maps symbol names to state
// vector constraints. Dialects are loaded from YAML documents, validated
// eagerly, and are immutable afterwards: a loaded *Dialect may be shared
// read-only across concurrent encode and decode sessions.
package dialect

import (
	"github.com/enigmaticorg/libenigmatic-go/vector"
)

// Role classifies a declared value header.
type Role int

const (
	// RoleAnchor marks a structurally significant whole-unit header.
	RoleAnchor Role = iota
	// RoleMicro marks a sub-unit modifier header.
	RoleMicro
)

// String returns the document spelling of the role.
func (r Role) String() string {
	if r == RoleMicro {
		return "micro"
	}
	return "anchor"
}

// ValueHeader is one recognized amount header on the value plane.
type ValueHeader struct {
	Amount uint64
	Role   Role
	Label  string
}

// ValuePlane declares the recognized amount headers and the matching
// tolerance applied to observed output amounts.
type ValuePlane struct {
	Headers   []ValueHeader
	Tolerance uint64
}

// Header returns the declared header with the given amount.
func (p ValuePlane) Header(amount uint64) (ValueHeader, bool) {
	for _, h := range p.Headers {
		if h.Amount == amount {
			return h, true
		}
	}
	return ValueHeader{}, false
}

// FeeBand is a named fee center with a symmetric tolerance.
type FeeBand struct {
	Name      string
	Center    uint64
	Tolerance uint64
}

// Contains reports whether fee lies inside the band.
func (b FeeBand) Contains(fee uint64) bool {
	return absDiff(fee, b.Center) <= b.Tolerance
}

// FeePlane declares the fee bands the dialect recognizes.
type FeePlane struct {
	Bands []FeeBand
}

// Band returns the declared band with the given name.
func (p FeePlane) Band(name string) (FeeBand, bool) {
	for _, b := range p.Bands {
		if b.Name == name {
			return b, true
		}
	}
	return FeeBand{}, false
}

// CardinalityRule is a named input/output count pair.
type CardinalityRule struct {
	Name    string
	Inputs  int // m
	Outputs int // n
}

// CardinalityPlane declares count rules and the symmetry threshold used by
// the projector.
type CardinalityPlane struct {
	Rules []CardinalityRule
	// SymmetryThreshold is the |m-n| bound beyond which a transaction is
	// asymmetric. Zero falls back to vector.DefaultSymmetryThreshold.
	SymmetryThreshold int
}

// Rule returns the declared rule with the given name.
func (p CardinalityPlane) Rule(name string) (CardinalityRule, bool) {
	for _, r := range p.Rules {
		if r.Name == name {
			return r, true
		}
	}
	return CardinalityRule{}, false
}

// BlockPlane declares the block-interval cadence and the jitter tolerance
// applied when matching observed deltas.
type BlockPlane struct {
	Delta  int64
	Jitter int64
}

// The per-plane constraint types below form a closed set of predicate
// variants: a frame pattern holds at most one constraint per plane, and
// evaluation is exhaustive over the five planes. A nil constraint leaves the
// plane unconstrained.

// ValueConstraint requires some output amount to equal Header within the
// value plane tolerance.
type ValueConstraint struct {
	Header    uint64
	Tolerance uint64
}

// FeeConstraint requires the transaction fee to lie inside the band.
type FeeConstraint struct {
	Band FeeBand
}

// CardinalityConstraint requires exact input and output counts.
type CardinalityConstraint struct {
	Inputs  int
	Outputs int
}

// DeltaConstraint requires the block delta relative to the previous frame to
// lie within Jitter of Delta. It is vacuously satisfied for the first frame
// of a stream (unknown delta).
type DeltaConstraint struct {
	Delta  int64
	Jitter int64
}

// SymmetryConstraint requires an exact symmetry classification.
type SymmetryConstraint struct {
	Want vector.Symmetry
}

// FramePattern is the predicate one frame of a symbol places on a state
// vector. Nil fields are unconstrained planes.
type FramePattern struct {
	Value       *ValueConstraint
	Fee         *FeeConstraint
	Cardinality *CardinalityConstraint
	Delta       *DeltaConstraint
	Symmetry    *SymmetryConstraint
}

// Matches reports whether sv satisfies every constrained plane of the
// pattern.
func (fp *FramePattern) Matches(sv vector.StateVector) bool {
	if fp.Value != nil && !sv.ContainsAmount(fp.Value.Header, fp.Value.Tolerance) {
		return false
	}
	if fp.Fee != nil && !fp.Fee.Band.Contains(sv.Fee) {
		return false
	}
	if fp.Cardinality != nil {
		if sv.InCount != fp.Cardinality.Inputs || sv.OutCount != fp.Cardinality.Outputs {
			return false
		}
	}
	if fp.Delta != nil && sv.BlockDelta != vector.DeltaUnknown {
		if absDiffInt64(sv.BlockDelta, fp.Delta.Delta) > fp.Delta.Jitter {
			return false
		}
	}
	if fp.Symmetry != nil && sv.Symmetry != fp.Symmetry.Want {
		return false
	}
	return true
}

// Symbol is one named semantic intent recognized by the dialect. Single
// frame symbols carry Pattern; chain symbols carry an ordered Frames list
// and a linkage flag.
type Symbol struct {
	Name        string
	Description string
	Intent      string

	// Pattern is the predicate of a single-frame symbol (nil for chains).
	Pattern *FramePattern

	// Frames holds the ordered per-frame predicates of a chain symbol
	// (nil for single-frame symbols).
	Frames []*FramePattern

	// Linked requires each chain frame to spend the previous frame's
	// designated change output.
	Linked bool

	// KeepOrder requests non-canonical output ordering when encoding,
	// used to signal exceptional states.
	KeepOrder bool
}

// IsChain reports whether the symbol is a multi-frame chain.
func (s *Symbol) IsChain() bool { return len(s.Frames) > 0 }

// Dialect is a validated, immutable ruleset.
type Dialect struct {
	Name        string
	Version     string
	Description string

	// OrderTiebreak permits overlapping predicates to be resolved by
	// declaration order (first declared wins). When false, overlap is a
	// load-time validation error.
	OrderTiebreak bool

	Value       ValuePlane
	Fee         FeePlane
	Cardinality CardinalityPlane
	Block       BlockPlane

	// Symbols preserves declaration order, which is the tie-break order
	// when OrderTiebreak is set.
	Symbols []*Symbol

	byName map[string]*Symbol
}

// Symbol returns the named symbol, or ErrUnknownSymbol.
func (d *Dialect) Symbol(name string) (*Symbol, error) {
	if s, ok := d.byName[name]; ok {
		return s, nil
	}
	return nil, wrapName(ErrUnknownSymbol, name)
}

// Projector returns a vector projector configured with the dialect's
// symmetry threshold.
func (d *Dialect) Projector() vector.Projector {
	return vector.Projector{SymmetryThreshold: d.Cardinality.SymmetryThreshold}
}

// MatchKind classifies the outcome of matching a state vector.
type MatchKind int

const (
	// MatchNone means no single-frame symbol predicate was satisfied.
	MatchNone MatchKind = iota
	// MatchSymbol means exactly one symbol (or, with order tie-breaking,
	// the first declared of several) was satisfied.
	MatchSymbol
	// MatchAmbiguous means two or more non-disjoint symbols were
	// satisfied and the dialect forbids order-based resolution.
	MatchAmbiguous
)

// MatchResult is the outcome of Dialect.Match.
type MatchResult struct {
	Kind   MatchKind
	Symbol *Symbol
	// Candidates lists every satisfied symbol when Kind is
	// MatchAmbiguous.
	Candidates []*Symbol
}

// Match evaluates the single-frame symbol predicates against sv in
// declaration order. Chain symbols are not considered; chain assembly is the
// decoder's job. Ambiguity is surfaced, never silently resolved, unless the
// dialect explicitly opted into declaration-order tie-breaking.
func (d *Dialect) Match(sv vector.StateVector) MatchResult {
	var hits []*Symbol
	for _, s := range d.Symbols {
		if s.IsChain() {
			continue
		}
		if s.Pattern.Matches(sv) {
			if d.OrderTiebreak {
				return MatchResult{Kind: MatchSymbol, Symbol: s}
			}
			hits = append(hits, s)
		}
	}
	switch len(hits) {
	case 0:
		return MatchResult{Kind: MatchNone}
	case 1:
		return MatchResult{Kind: MatchSymbol, Symbol: hits[0]}
	default:
		return MatchResult{Kind: MatchAmbiguous, Candidates: hits}
	}
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

func absDiffInt64(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
