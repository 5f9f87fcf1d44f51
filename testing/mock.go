// Package rollapptest provides test utilities for dapp Model
// development: a configurable mock Model, a harness that drives full
// cycles through the interaction loop without networking, and a
// protocol compliance suite.
package rollapptest

import (
	"context"
	"sync/atomic"

	"github.com/blockberries/rollapp"
	"github.com/blockberries/rollapp/types"
)

// Compile-time interface check.
var _ rollapp.Model = (*MockModel)(nil)

// MockModel is a configurable mock Model for loop and harness testing.
// Unconfigured handlers accept every request without emitting anything.
type MockModel struct {
	// Configurable handlers. If nil, defaults are used.
	HandleAdvanceFn func(context.Context, *types.AdvanceRequest, rollapp.Emitter) (types.Verdict, error)
	HandleInspectFn func(context.Context, *types.InspectRequest, rollapp.Emitter) (types.Verdict, error)

	// Call counters.
	AdvanceCalls atomic.Int64
	InspectCalls atomic.Int64
}

func (m *MockModel) HandleAdvance(ctx context.Context, req *types.AdvanceRequest, em rollapp.Emitter) (types.Verdict, error) {
	m.AdvanceCalls.Add(1)
	if m.HandleAdvanceFn != nil {
		return m.HandleAdvanceFn(ctx, req, em)
	}
	return types.VerdictAccept, nil
}

func (m *MockModel) HandleInspect(ctx context.Context, req *types.InspectRequest, em rollapp.Emitter) (types.Verdict, error) {
	m.InspectCalls.Add(1)
	if m.HandleInspectFn != nil {
		return m.HandleInspectFn(ctx, req, em)
	}
	return types.VerdictAccept, nil
}
