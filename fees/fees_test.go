package fees

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enigmaticorg/libenigmatic-go/network"
)

type stubSource struct {
	policy network.FeePolicy
	err    error
}

func (s stubSource) FeePolicy(context.Context) (network.FeePolicy, error) {
	return s.policy, s.err
}

func TestRate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		selector Selector
		want     uint64
		wantErr  error
	}{
		{
			name:     "no source uses fallback",
			selector: Selector{},
			want:     DefaultFallbackRate,
		},
		{
			name:     "node floor above fallback wins",
			selector: Selector{Source: stubSource{policy: network.FeePolicy{RelayFee: 4000}}},
			want:     4000,
		},
		{
			name:     "fallback above node floor wins",
			selector: Selector{Source: stubSource{policy: network.FeePolicy{RelayFee: 500}}, Fallback: 2000},
			want:     2000,
		},
		{
			name:     "mempool min fee counts as floor",
			selector: Selector{Source: stubSource{policy: network.FeePolicy{RelayFee: 500, MempoolMinFee: 9000}}},
			want:     9000,
		},
		{
			name:     "override wins",
			selector: Selector{Source: stubSource{policy: network.FeePolicy{RelayFee: 500}}, Override: 7777},
			want:     7777,
		},
		{
			name:     "override below node floor rejected",
			selector: Selector{Source: stubSource{policy: network.FeePolicy{RelayFee: 9000}}, Override: 500},
			wantErr:  ErrBadRate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := tt.selector.Rate(ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, rate)
		})
	}
}

func TestRateSourceError(t *testing.T) {
	boom := errors.New("node down")
	s := Selector{Source: stubSource{err: boom}}
	_, err := s.Rate(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestForSize(t *testing.T) {
	assert.Equal(t, uint64(0), ForSize(1000, 0))
	assert.Equal(t, uint64(1000), ForSize(1000, 1000))
	assert.Equal(t, uint64(250), ForSize(1000, 250))
	// Rounds up, never undercutting the rate.
	assert.Equal(t, uint64(1), ForSize(1000, 1))
	assert.Equal(t, uint64(226), ForSize(1000, 226))
	assert.Equal(t, uint64(2260), ForSize(10_000, 226))
}

func TestRateFromEnv(t *testing.T) {
	rate, err := RateFromEnv(map[string]string{})
	require.NoError(t, err)
	assert.Zero(t, rate)

	rate, err = RateFromEnv(map[string]string{EnvRate: "2500"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), rate)

	_, err = RateFromEnv(map[string]string{EnvRate: "0.0001"})
	assert.ErrorIs(t, err, ErrBadRate)

	_, err = RateFromEnv(map[string]string{EnvRate: "0"})
	assert.ErrorIs(t, err, ErrBadRate)
}
