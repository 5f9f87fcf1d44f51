package loop

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blockberries/rollapp"
	"github.com/blockberries/rollapp/types"
)

// Compile-time interface checks.
var (
	_ rollapp.Emitter = (*cycleEmitter)(nil)
	_ rollapp.GIO     = (*cycleEmitter)(nil)
)

// cycleEmitter is the Emitter handed to the Model for exactly one
// cycle. It gates voucher and notice emission on the request kind,
// journals every artifact in emission order, and tracks the expected
// per-kind index sequence.
type cycleEmitter struct {
	disp rollapp.Dispatcher
	kind types.RequestKind
	log  zerolog.Logger

	next    [4]uint64 // indexed by types.ArtifactKind
	journal []types.Artifact
}

func newCycleEmitter(disp rollapp.Dispatcher, kind types.RequestKind, log zerolog.Logger) *cycleEmitter {
	return &cycleEmitter{disp: disp, kind: kind, log: log}
}

func (e *cycleEmitter) EmitVoucher(ctx context.Context, destination types.Address, payload types.Payload) (uint64, error) {
	if e.kind != types.KindAdvance {
		return 0, rollapp.NewInvalidContextError("voucher", e.kind)
	}
	index, err := e.disp.Voucher(ctx, types.Voucher{Destination: destination, Payload: payload})
	if err != nil {
		return 0, err
	}
	dest := destination
	e.record(types.Artifact{
		Kind:        types.ArtifactVoucher,
		Index:       index,
		Destination: &dest,
		Payload:     payload,
	})
	return index, nil
}

func (e *cycleEmitter) EmitNotice(ctx context.Context, payload types.Payload) (uint64, error) {
	if e.kind != types.KindAdvance {
		return 0, rollapp.NewInvalidContextError("notice", e.kind)
	}
	index, err := e.disp.Notice(ctx, types.Notice{Payload: payload})
	if err != nil {
		return 0, err
	}
	e.record(types.Artifact{Kind: types.ArtifactNotice, Index: index, Payload: payload})
	return index, nil
}

func (e *cycleEmitter) EmitReport(ctx context.Context, payload types.Payload) (uint64, error) {
	index, acked, err := e.disp.Report(ctx, types.Report{Payload: payload})
	if err != nil {
		return 0, err
	}
	if acked {
		// Empty acknowledgment: the dispatcher assigns indices in
		// emission order, so the local counter is authoritative.
		index = e.next[types.ArtifactReport]
	}
	e.record(types.Artifact{Kind: types.ArtifactReport, Index: index, Payload: payload})
	return index, nil
}

// GIO forwards a generic IO request when the dispatcher supports the
// extension.
func (e *cycleEmitter) GIO(ctx context.Context, domain uint32, id types.Payload) (types.GIOResponse, error) {
	gio, ok := e.disp.(rollapp.GIO)
	if !ok {
		return types.GIOResponse{}, fmt.Errorf("dispatcher does not support GIO")
	}
	return gio.GIO(ctx, domain, id)
}

func (e *cycleEmitter) record(a types.Artifact) {
	if want := e.next[a.Kind]; a.Index != want {
		e.log.Warn().
			Stringer("kind", a.Kind).
			Uint64("index", a.Index).
			Uint64("expected", want).
			Msg("dispatcher index out of sequence")
	}
	e.next[a.Kind] = a.Index + 1
	e.journal = append(e.journal, a)
}
