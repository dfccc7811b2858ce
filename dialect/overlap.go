package dialect

import "fmt"

// detectOverlap rejects dialects whose symbol predicates are not pairwise
// disjoint. Relying on declaration order to resolve overlap is easy to get
// wrong across dialect revisions, so overlap is a load-time error unless the
// document sets order_tiebreak.
//
// Two single-frame patterns overlap when every constrained plane is
// simultaneously satisfiable: value intervals intersect, fee bands
// intersect, counts are equal, delta windows intersect, and symmetry states
// agree. An unconstrained plane intersects everything. Chain symbols are
// compared frame-wise against chains of the same length; a chain and a
// single-frame symbol produce different result kinds and cannot collide at
// match time.
func detectOverlap(d *Dialect) error {
	for i := 0; i < len(d.Symbols); i++ {
		for j := i + 1; j < len(d.Symbols); j++ {
			a, b := d.Symbols[i], d.Symbols[j]
			if symbolsOverlap(a, b) {
				return fmt.Errorf("%w: %q and %q can match the same vector (set order_tiebreak to resolve by declaration order)",
					ErrAmbiguousSymbols, a.Name, b.Name)
			}
		}
	}
	return nil
}

func symbolsOverlap(a, b *Symbol) bool {
	switch {
	case !a.IsChain() && !b.IsChain():
		return patternsOverlap(a.Pattern, b.Pattern)
	case a.IsChain() && b.IsChain():
		if len(a.Frames) != len(b.Frames) {
			return false
		}
		for i := range a.Frames {
			if !patternsOverlap(a.Frames[i], b.Frames[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func patternsOverlap(a, b *FramePattern) bool {
	if a.Value != nil && b.Value != nil {
		lo1, hi1 := span(a.Value.Header, a.Value.Tolerance)
		lo2, hi2 := span(b.Value.Header, b.Value.Tolerance)
		if hi1 < lo2 || hi2 < lo1 {
			return false
		}
	}
	if a.Fee != nil && b.Fee != nil {
		lo1, hi1 := span(a.Fee.Band.Center, a.Fee.Band.Tolerance)
		lo2, hi2 := span(b.Fee.Band.Center, b.Fee.Band.Tolerance)
		if hi1 < lo2 || hi2 < lo1 {
			return false
		}
	}
	if a.Cardinality != nil && b.Cardinality != nil {
		if a.Cardinality.Inputs != b.Cardinality.Inputs ||
			a.Cardinality.Outputs != b.Cardinality.Outputs {
			return false
		}
	}
	if a.Delta != nil && b.Delta != nil {
		lo1, hi1 := a.Delta.Delta-a.Delta.Jitter, a.Delta.Delta+a.Delta.Jitter
		lo2, hi2 := b.Delta.Delta-b.Delta.Jitter, b.Delta.Delta+b.Delta.Jitter
		if hi1 < lo2 || hi2 < lo1 {
			return false
		}
	}
	if a.Symmetry != nil && b.Symmetry != nil {
		if a.Symmetry.Want != b.Symmetry.Want {
			return false
		}
	}
	return true
}

// span returns the closed interval [center-tol, center+tol], clamped at
// zero.
func span(center, tol uint64) (uint64, uint64) {
	lo := uint64(0)
	if center > tol {
		lo = center - tol
	}
	return lo, center + tol
}
