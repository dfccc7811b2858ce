package dialect

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/enigmaticorg/libenigmatic-go/vector"
)

// The raw* types mirror the YAML document layout. They exist only during
// loading; the validated model uses the typed constraint variants.

type rawDocument struct {
	Name          string      `yaml:"name"`
	Version       string      `yaml:"version"`
	Description   string      `yaml:"description"`
	OrderTiebreak bool        `yaml:"order_tiebreak"`
	Planes        rawPlanes   `yaml:"planes"`
	Symbols       []rawSymbol `yaml:"symbols"`
}

type rawPlanes struct {
	Value       rawValuePlane       `yaml:"value"`
	Fee         rawFeePlane         `yaml:"fee"`
	Cardinality rawCardinalityPlane `yaml:"cardinality"`
	Block       rawBlockPlane       `yaml:"block"`
}

type rawValuePlane struct {
	Tolerance uint64           `yaml:"tolerance"`
	Headers   []rawValueHeader `yaml:"headers"`
}

type rawValueHeader struct {
	Amount uint64 `yaml:"amount"`
	Role   string `yaml:"role"`
	Label  string `yaml:"label"`
}

type rawFeePlane struct {
	Bands []rawFeeBand `yaml:"bands"`
}

type rawFeeBand struct {
	Name      string `yaml:"name"`
	Center    uint64 `yaml:"center"`
	Tolerance int64  `yaml:"tolerance"`
}

type rawCardinalityPlane struct {
	SymmetryThreshold int       `yaml:"symmetry_threshold"`
	Rules             []rawRule `yaml:"rules"`
}

type rawRule struct {
	Name    string `yaml:"name"`
	Inputs  int    `yaml:"m"`
	Outputs int    `yaml:"n"`
}

type rawBlockPlane struct {
	Delta  int64 `yaml:"delta"`
	Jitter int64 `yaml:"jitter"`
}

type rawSymbol struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Intent      string     `yaml:"intent"`
	Linked      bool       `yaml:"linked"`
	KeepOrder   bool       `yaml:"keep_order"`
	Match       *rawMatch  `yaml:"match"`
	Frames      []rawMatch `yaml:"frames"`
}

type rawMatch struct {
	Value       *uint64 `yaml:"value"`
	Fee         string  `yaml:"fee"`
	Cardinality string  `yaml:"cardinality"`
	Delta       *int64  `yaml:"delta"`
	Symmetry    string  `yaml:"symmetry"`
}

// LoadFile loads and validates a dialect document from path.
func LoadFile(path string) (*Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrInvalidDocument, path, err)
	}
	return Load(data)
}

// Load parses and validates a YAML dialect document. Validation is eager:
// malformed or ambiguous dialects are rejected here, never at decode time.
func Load(data []byte) (*Dialect, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	if raw.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrInvalidDocument)
	}
	if len(raw.Symbols) == 0 {
		return nil, wrapName(ErrNoSymbols, raw.Name)
	}

	d := &Dialect{
		Name:          raw.Name,
		Version:       raw.Version,
		Description:   raw.Description,
		OrderTiebreak: raw.OrderTiebreak,
		byName:        make(map[string]*Symbol, len(raw.Symbols)),
	}

	if err := compilePlanes(d, raw.Planes); err != nil {
		return nil, err
	}

	for _, rs := range raw.Symbols {
		sym, err := compileSymbol(d, rs)
		if err != nil {
			return nil, err
		}
		if _, dup := d.byName[sym.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %q", ErrInvalidDocument, sym.Name)
		}
		d.Symbols = append(d.Symbols, sym)
		d.byName[sym.Name] = sym
	}

	if !d.OrderTiebreak {
		if err := detectOverlap(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func compilePlanes(d *Dialect, raw rawPlanes) error {
	d.Value = ValuePlane{Tolerance: raw.Value.Tolerance}
	for _, h := range raw.Value.Headers {
		if h.Amount == 0 {
			return fmt.Errorf("%w: header %q has zero amount", ErrBadValuePlane, h.Label)
		}
		role := RoleAnchor
		switch h.Role {
		case "", "anchor":
		case "micro":
			role = RoleMicro
		default:
			return fmt.Errorf("%w: header %q has unknown role %q", ErrBadValuePlane, h.Label, h.Role)
		}
		d.Value.Headers = append(d.Value.Headers, ValueHeader{
			Amount: h.Amount,
			Role:   role,
			Label:  h.Label,
		})
	}

	for _, b := range raw.Fee.Bands {
		if b.Name == "" {
			return fmt.Errorf("%w: band without a name", ErrBadFeeBand)
		}
		if b.Tolerance < 0 {
			return fmt.Errorf("%w: band %q has negative tolerance", ErrBadFeeBand, b.Name)
		}
		if b.Center == 0 {
			return fmt.Errorf("%w: band %q has zero center", ErrBadFeeBand, b.Name)
		}
		if uint64(b.Tolerance) > b.Center {
			return fmt.Errorf("%w: band %q tolerance exceeds its center", ErrBadFeeBand, b.Name)
		}
		d.Fee.Bands = append(d.Fee.Bands, FeeBand{
			Name:      b.Name,
			Center:    b.Center,
			Tolerance: uint64(b.Tolerance),
		})
	}

	d.Cardinality.SymmetryThreshold = raw.Cardinality.SymmetryThreshold
	if d.Cardinality.SymmetryThreshold < 0 {
		return fmt.Errorf("%w: negative symmetry threshold", ErrBadCardinality)
	}
	for _, r := range raw.Cardinality.Rules {
		if r.Name == "" {
			return fmt.Errorf("%w: rule without a name", ErrBadCardinality)
		}
		if r.Inputs < 1 || r.Outputs < 1 {
			return fmt.Errorf("%w: rule %q requires m,n >= 1 (got m=%d n=%d)",
				ErrBadCardinality, r.Name, r.Inputs, r.Outputs)
		}
		d.Cardinality.Rules = append(d.Cardinality.Rules, CardinalityRule{
			Name:    r.Name,
			Inputs:  r.Inputs,
			Outputs: r.Outputs,
		})
	}

	if raw.Block.Delta < 0 {
		return fmt.Errorf("%w: delta must be non-negative", ErrBadCadence)
	}
	if raw.Block.Jitter < 0 {
		return fmt.Errorf("%w: jitter must be non-negative", ErrBadCadence)
	}
	d.Block = BlockPlane{Delta: raw.Block.Delta, Jitter: raw.Block.Jitter}
	return nil
}

func compileSymbol(d *Dialect, rs rawSymbol) (*Symbol, error) {
	if rs.Name == "" {
		return nil, fmt.Errorf("%w: symbol without a name", ErrInvalidDocument)
	}
	sym := &Symbol{
		Name:        rs.Name,
		Description: rs.Description,
		Intent:      rs.Intent,
		Linked:      rs.Linked,
		KeepOrder:   rs.KeepOrder,
	}

	switch {
	case rs.Match != nil && len(rs.Frames) > 0:
		return nil, fmt.Errorf("%w: symbol %q declares both match and frames", ErrInvalidDocument, rs.Name)
	case rs.Match != nil:
		fp, err := compilePattern(d, rs.Name, *rs.Match)
		if err != nil {
			return nil, err
		}
		sym.Pattern = fp
	case len(rs.Frames) > 0:
		for i, rm := range rs.Frames {
			fp, err := compilePattern(d, fmt.Sprintf("%s frame %d", rs.Name, i+1), rm)
			if err != nil {
				return nil, err
			}
			if fp.Value == nil {
				return nil, fmt.Errorf("%w: symbol %q frame %d missing value", ErrInvalidDocument, rs.Name, i+1)
			}
			sym.Frames = append(sym.Frames, fp)
		}
		normalizeChain(sym)
	default:
		return nil, fmt.Errorf("%w: symbol %q has neither match nor frames", ErrInvalidDocument, rs.Name)
	}
	return sym, nil
}

// compilePattern resolves a raw predicate into typed constraints. Every
// reference must resolve to a declared plane entry; literal values that the
// planes never declared are load-time errors.
func compilePattern(d *Dialect, where string, rm rawMatch) (*FramePattern, error) {
	fp := &FramePattern{}

	if rm.Value != nil {
		if _, ok := d.Value.Header(*rm.Value); !ok {
			return nil, fmt.Errorf("%w: %s: value header %d not declared on the value plane",
				ErrUndeclaredPlane, where, *rm.Value)
		}
		fp.Value = &ValueConstraint{Header: *rm.Value, Tolerance: d.Value.Tolerance}
	}
	if rm.Fee != "" {
		band, ok := d.Fee.Band(rm.Fee)
		if !ok {
			return nil, fmt.Errorf("%w: %s: fee band %q not declared on the fee plane",
				ErrUndeclaredPlane, where, rm.Fee)
		}
		fp.Fee = &FeeConstraint{Band: band}
	}
	if rm.Cardinality != "" {
		rule, ok := d.Cardinality.Rule(rm.Cardinality)
		if !ok {
			return nil, fmt.Errorf("%w: %s: cardinality rule %q not declared",
				ErrUndeclaredPlane, where, rm.Cardinality)
		}
		fp.Cardinality = &CardinalityConstraint{Inputs: rule.Inputs, Outputs: rule.Outputs}
	}
	if rm.Delta != nil {
		if *rm.Delta < 0 {
			return nil, fmt.Errorf("%w: %s: negative delta", ErrBadCadence, where)
		}
		fp.Delta = &DeltaConstraint{Delta: *rm.Delta, Jitter: d.Block.Jitter}
	}
	switch rm.Symmetry {
	case "":
	case "mirrored":
		fp.Symmetry = &SymmetryConstraint{Want: vector.SymmetryMirrored}
	case "neutral":
		fp.Symmetry = &SymmetryConstraint{Want: vector.SymmetryNeutral}
	case "asymmetric":
		fp.Symmetry = &SymmetryConstraint{Want: vector.SymmetryAsymmetric}
	default:
		return nil, fmt.Errorf("%w: %s: unknown symmetry %q", ErrInvalidDocument, where, rm.Symmetry)
	}
	return fp, nil
}

// normalizeChain inherits fee and cardinality constraints from the first
// frame into later frames that leave them unset, so every planned frame has
// a concrete fee and count target. Value and delta stay per-frame.
func normalizeChain(sym *Symbol) {
	if len(sym.Frames) < 2 {
		return
	}
	head := sym.Frames[0]
	for _, fp := range sym.Frames[1:] {
		if fp.Fee == nil {
			fp.Fee = head.Fee
		}
		if fp.Cardinality == nil && head.Cardinality != nil {
			// Later chain frames spend a single change output, so
			// only the output count is inherited.
			fp.Cardinality = &CardinalityConstraint{Inputs: 1, Outputs: head.Cardinality.Outputs}
		}
	}
}

func wrapName(err error, name string) error {
	return fmt.Errorf("%w: %q", err, name)
}
