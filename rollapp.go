// Package rollapp defines the Rollup Application Programming Interface —
// the contract between a deterministic rollup application ("dapp") and
// the rollup HTTP dispatcher that feeds it requests.
//
// The core [Model] interface is required. The [GIO] interface is an
// optional dispatcher capability discovered via Go type assertion.
package rollapp

import (
	"context"
	"errors"

	"github.com/blockberries/rollapp/types"
)

// Model is the pluggable business logic of a dapp. The interaction
// loop depends only on this interface, never on a concrete variant.
//
// The loop guarantees the following call order:
//  1. Exactly one Handle* call runs at a time (no concurrent cycles).
//  2. HandleAdvance is called once per advance request, HandleInspect
//     once per inspect request, strictly in arrival order.
//  3. The Emitter passed in is valid only for the duration of the call.
//
// A returned error is mapped to [types.VerdictReject] by the loop; a
// cycle therefore always terminates with a verdict. Domain-level
// rejections should be expressed by returning VerdictReject with a nil
// error.
type Model interface {
	// HandleAdvance processes a state-mutating request derived from an
	// on-chain input. It may emit vouchers, notices, and reports.
	HandleAdvance(ctx context.Context, req *types.AdvanceRequest, em Emitter) (types.Verdict, error)

	// HandleInspect answers a read-only query. It may emit reports
	// only; the emitter fails voucher and notice calls with an
	// InvalidContextError.
	HandleInspect(ctx context.Context, req *types.InspectRequest, em Emitter) (types.Verdict, error)
}

// Emitter produces the output artifacts of the cycle in progress.
// Every call is a synchronous exchange with the dispatcher; the
// returned index is the artifact's position in this cycle's emission
// sequence for its kind, starting at 0.
type Emitter interface {
	// EmitVoucher emits a deferred on-chain call. Advance cycles only.
	EmitVoucher(ctx context.Context, destination types.Address, payload types.Payload) (uint64, error)

	// EmitNotice emits an attested, provable statement. Advance cycles only.
	EmitNotice(ctx context.Context, payload types.Payload) (uint64, error)

	// EmitReport emits an advisory diagnostic. Valid in every cycle.
	EmitReport(ctx context.Context, payload types.Payload) (uint64, error)
}

// Dispatcher is the dapp-side view of the rollup dispatcher. The HTTP
// client and the in-process adapter in local/ both implement it.
type Dispatcher interface {
	// Finish reports the verdict of the previous cycle and blocks until
	// the dispatcher has a new request available. The verdict of the
	// very first call acknowledges no prior cycle and is ignored by the
	// dispatcher.
	Finish(ctx context.Context, verdict types.Verdict) (types.Request, error)

	// Voucher, Notice, and Report transmit one artifact each and return
	// the dispatcher-assigned index. Report may answer with an empty
	// acknowledgment body, signaled by acked; the caller then assigns
	// the index.
	Voucher(ctx context.Context, v types.Voucher) (uint64, error)
	Notice(ctx context.Context, n types.Notice) (uint64, error)
	Report(ctx context.Context, r types.Report) (index uint64, acked bool, err error)

	// Exception tells the dispatcher the dapp cannot proceed. It is the
	// last call a dapp makes; the dispatcher does not supply further
	// requests afterwards.
	Exception(ctx context.Context, payload types.Payload) error
}

// GIO is the optional generic IO extension of the dispatcher. Models
// that need it assert it from their Emitter:
//
//	if gio, ok := em.(rollapp.GIO); ok { ... }
type GIO interface {
	GIO(ctx context.Context, domain uint32, id types.Payload) (types.GIOResponse, error)
}

// ErrShutdown is returned by a dispatcher whose request supply has been
// deliberately exhausted (in-process dispatchers only). The loop treats
// it as a clean stop rather than a transport failure.
var ErrShutdown = errors.New("rollapp: dispatcher shut down")
