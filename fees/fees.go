// Package fees selects fee rates for emitted frames. Rates are integer
// minor units per kvB. The node's relay policy sets the floor; an explicit
// override (operator configuration or the ENIGMATIC_FEE_RATE environment
// variable) wins over everything, and a fallback covers nodes that report
// no policy at all.
package fees

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/enigmaticorg/libenigmatic-go/network"
)

// DefaultFallbackRate is used when the node reports no fee policy, in
// minor units per kvB.
const DefaultFallbackRate uint64 = 1000

// EnvRate is the environment variable holding an explicit rate override.
const EnvRate = "ENIGMATIC_FEE_RATE"

// ErrBadRate indicates an unparseable or zero explicit rate.
var ErrBadRate = errors.New("fees: invalid fee rate")

// PolicySource supplies the node's current fee floors.
// *network.RPCClient satisfies it.
type PolicySource interface {
	FeePolicy(ctx context.Context) (network.FeePolicy, error)
}

// Selector picks the effective fee rate.
type Selector struct {
	Source PolicySource

	// Override, when non-zero, is used verbatim (still floor-checked).
	Override uint64

	// Fallback replaces DefaultFallbackRate when non-zero.
	Fallback uint64
}

// Rate returns the fee rate to use, in minor units per kvB: the override if
// set, otherwise the larger of the node's policy floor and the fallback. An
// override below the node floor is rejected rather than silently raised,
// since the operator asked for a rate the network would not relay.
func (s *Selector) Rate(ctx context.Context) (uint64, error) {
	var floor uint64
	if s.Source != nil {
		policy, err := s.Source.FeePolicy(ctx)
		if err != nil {
			return 0, fmt.Errorf("fees: query policy: %w", err)
		}
		floor = policy.Floor()
	}

	if s.Override != 0 {
		if s.Override < floor {
			return 0, fmt.Errorf("%w: override %d below node floor %d", ErrBadRate, s.Override, floor)
		}
		return s.Override, nil
	}

	fallback := s.Fallback
	if fallback == 0 {
		fallback = DefaultFallbackRate
	}
	if floor > fallback {
		return floor, nil
	}
	return fallback, nil
}

// ForSize converts a rate to an absolute fee for a transaction of the given
// virtual size, rounding up so the result never undercuts the rate.
func ForSize(rate uint64, vbytes int) uint64 {
	if vbytes <= 0 {
		return 0
	}
	return (rate*uint64(vbytes) + 999) / 1000
}

// RateFromEnv parses an explicit rate override from the environment map.
// Absent or empty is not an error; a present but malformed or zero value
// is.
func RateFromEnv(env map[string]string) (uint64, error) {
	v, ok := env[EnvRate]
	if !ok || v == "" {
		return 0, nil
	}
	rate, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadRate, v)
	}
	if rate == 0 {
		return 0, fmt.Errorf("%w: zero", ErrBadRate)
	}
	return rate, nil
}
