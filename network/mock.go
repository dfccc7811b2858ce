package network

import (
	"context"

	"github.com/enigmaticorg/libenigmatic-go/planner"
	"github.com/enigmaticorg/libenigmatic-go/vector"
)

// MockChainService is a test double for ChainService. All function fields
// must be set before the corresponding method is called.
type MockChainService struct {
	ListSpendableFn     func(ctx context.Context, address string, minConf int) ([]planner.Coin, error)
	CurrentHeightFn     func(ctx context.Context) (int64, error)
	ObservationsSinceFn func(ctx context.Context, sinceHeight int64, watch []string) ([]vector.ObservedTx, error)
	BroadcastFn         func(ctx context.Context, rawTxHex string) (string, error)
	NewAddressFn        func(ctx context.Context, label string) (string, error)
	ImportAddressFn     func(ctx context.Context, address string) error
	FeePolicyFn         func(ctx context.Context) (FeePolicy, error)
}

var _ ChainService = (*MockChainService)(nil)

func (m *MockChainService) ListSpendable(ctx context.Context, address string, minConf int) ([]planner.Coin, error) {
	return m.ListSpendableFn(ctx, address, minConf)
}
func (m *MockChainService) CurrentHeight(ctx context.Context) (int64, error) {
	return m.CurrentHeightFn(ctx)
}
func (m *MockChainService) ObservationsSince(ctx context.Context, sinceHeight int64, watch []string) ([]vector.ObservedTx, error) {
	return m.ObservationsSinceFn(ctx, sinceHeight, watch)
}
func (m *MockChainService) Broadcast(ctx context.Context, rawTxHex string) (string, error) {
	return m.BroadcastFn(ctx, rawTxHex)
}
func (m *MockChainService) NewAddress(ctx context.Context, label string) (string, error) {
	return m.NewAddressFn(ctx, label)
}
func (m *MockChainService) ImportAddress(ctx context.Context, address string) error {
	return m.ImportAddressFn(ctx, address)
}
func (m *MockChainService) FeePolicy(ctx context.Context) (FeePolicy, error) {
	return m.FeePolicyFn(ctx)
}
