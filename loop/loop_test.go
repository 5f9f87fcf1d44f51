package loop

import (
	"context"
	"errors"
	"testing"

	"github.com/blockberries/rollapp"
	"github.com/blockberries/rollapp/local"
	"github.com/blockberries/rollapp/types"
)

// testModel is a minimal configurable Model, defined here to avoid an
// import cycle with rollapp/testing.
type testModel struct {
	advanceFn func(context.Context, *types.AdvanceRequest, rollapp.Emitter) (types.Verdict, error)
	inspectFn func(context.Context, *types.InspectRequest, rollapp.Emitter) (types.Verdict, error)

	advanceCalls int
	inspectCalls int
}

var _ rollapp.Model = (*testModel)(nil)

func (m *testModel) HandleAdvance(ctx context.Context, req *types.AdvanceRequest, em rollapp.Emitter) (types.Verdict, error) {
	m.advanceCalls++
	if m.advanceFn != nil {
		return m.advanceFn(ctx, req, em)
	}
	return types.VerdictAccept, nil
}

func (m *testModel) HandleInspect(ctx context.Context, req *types.InspectRequest, em rollapp.Emitter) (types.Verdict, error) {
	m.inspectCalls++
	if m.inspectFn != nil {
		return m.inspectFn(ctx, req, em)
	}
	return types.VerdictAccept, nil
}

func testMetadata() types.Metadata {
	return types.Metadata{
		Sender:      types.Address{0xaa},
		EpochIndex:  0,
		InputIndex:  0,
		BlockNumber: 1,
		Timestamp:   1700000000,
	}
}

func TestLoop_AdvanceCycle(t *testing.T) {
	disp := local.New()
	disp.PushAdvance(testMetadata(), types.Payload{0x01, 0x02})

	model := &testModel{
		advanceFn: func(ctx context.Context, req *types.AdvanceRequest, em rollapp.Emitter) (types.Verdict, error) {
			if _, err := em.EmitVoucher(ctx, req.Metadata.Sender, req.Payload); err != nil {
				return types.VerdictReject, err
			}
			if _, err := em.EmitNotice(ctx, req.Payload); err != nil {
				return types.VerdictReject, err
			}
			if _, err := em.EmitReport(ctx, req.Payload); err != nil {
				return types.VerdictReject, err
			}
			return types.VerdictAccept, nil
		},
	}

	l := New(disp, model)
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if model.advanceCalls != 1 {
		t.Errorf("expected 1 advance call, got %d", model.advanceCalls)
	}
	if l.Cycles() != 1 {
		t.Errorf("expected 1 cycle, got %d", l.Cycles())
	}

	// Initial no-op acknowledgment plus the cycle's verdict.
	verdicts := disp.Verdicts()
	if len(verdicts) != 2 {
		t.Fatalf("expected 2 finish calls, got %d", len(verdicts))
	}
	if verdicts[1] != types.VerdictAccept {
		t.Errorf("expected accept verdict, got %s", verdicts[1])
	}

	cycle := l.LastCycle()
	if cycle == nil {
		t.Fatal("expected a recorded cycle")
	}
	if len(cycle.Artifacts) != 3 {
		t.Fatalf("expected 3 artifacts, got %d", len(cycle.Artifacts))
	}
	order := []types.ArtifactKind{types.ArtifactVoucher, types.ArtifactNotice, types.ArtifactReport}
	for i, a := range cycle.Artifacts {
		if a.Kind != order[i] {
			t.Errorf("artifact %d: expected %s, got %s", i, order[i], a.Kind)
		}
		if a.Index != 0 {
			t.Errorf("artifact %d: expected index 0, got %d", i, a.Index)
		}
	}
}

func TestLoop_OneFinishPerCycle(t *testing.T) {
	disp := local.New()
	for i := uint64(0); i < 3; i++ {
		md := testMetadata()
		md.InputIndex = i
		disp.PushAdvance(md, types.Payload{byte(i)})
	}

	l := New(disp, &testModel{})
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if l.Cycles() != 3 {
		t.Errorf("expected 3 cycles, got %d", l.Cycles())
	}
	// One finish per processed request plus the initial acknowledgment:
	// the loop never calls finish twice without an intervening request
	// and never skips the verdict after processing one.
	if got := len(disp.Verdicts()); got != 4 {
		t.Errorf("expected 4 finish calls, got %d", got)
	}
	if l.State() != "AwaitingRequest" {
		t.Errorf("expected loop back in AwaitingRequest, got %s", l.State())
	}
}

func TestLoop_InspectForbidsVouchersAndNotices(t *testing.T) {
	disp := local.New()
	disp.PushInspect(types.Payload("q"))

	var voucherErr, noticeErr error
	model := &testModel{
		inspectFn: func(ctx context.Context, req *types.InspectRequest, em rollapp.Emitter) (types.Verdict, error) {
			_, voucherErr = em.EmitVoucher(ctx, types.Address{}, req.Payload)
			_, noticeErr = em.EmitNotice(ctx, req.Payload)
			if _, err := em.EmitReport(ctx, req.Payload); err != nil {
				return types.VerdictReject, err
			}
			return types.VerdictAccept, nil
		},
	}

	l := New(disp, model)
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := rollapp.IsInvalidContext(voucherErr); !ok {
		t.Errorf("expected InvalidContextError for voucher, got %v", voucherErr)
	}
	if _, ok := rollapp.IsInvalidContext(noticeErr); !ok {
		t.Errorf("expected InvalidContextError for notice, got %v", noticeErr)
	}
	if n := len(disp.Vouchers()); n != 0 {
		t.Errorf("expected no vouchers transmitted, got %d", n)
	}
	if n := len(disp.Notices()); n != 0 {
		t.Errorf("expected no notices transmitted, got %d", n)
	}
	if n := len(disp.Reports()); n != 1 {
		t.Errorf("expected 1 report transmitted, got %d", n)
	}
}

func TestLoop_ModelErrorMapsToReject(t *testing.T) {
	disp := local.New()
	disp.PushAdvance(testMetadata(), types.Payload{0x01})

	model := &testModel{
		advanceFn: func(context.Context, *types.AdvanceRequest, rollapp.Emitter) (types.Verdict, error) {
			return 0, errors.New("domain validation failed")
		},
	}

	l := New(disp, model)
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("model errors must not stop the loop: %v", err)
	}

	verdicts := disp.Verdicts()
	if verdicts[len(verdicts)-1] != types.VerdictReject {
		t.Errorf("expected reject verdict, got %s", verdicts[len(verdicts)-1])
	}
}

func TestLoop_InvalidVerdictMapsToReject(t *testing.T) {
	disp := local.New()
	disp.PushInspect(types.Payload("q"))

	model := &testModel{
		inspectFn: func(context.Context, *types.InspectRequest, rollapp.Emitter) (types.Verdict, error) {
			return types.Verdict(7), nil
		},
	}

	l := New(disp, model)
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if l.LastCycle().Verdict != types.VerdictReject {
		t.Errorf("expected reject verdict, got %s", l.LastCycle().Verdict)
	}
}

func TestLoop_MalformedRequestIsFatal(t *testing.T) {
	disp := local.New()
	disp.Push(types.Request{Kind: types.KindAdvance}) // nil body

	model := &testModel{}
	l := New(disp, model)

	err := l.Run(context.Background())
	if _, ok := rollapp.IsMalformedRequest(err); !ok {
		t.Fatalf("expected MalformedRequestError, got %v", err)
	}
	if model.advanceCalls != 0 {
		t.Error("malformed request must not reach the model")
	}
	if l.Cycles() != 0 {
		t.Errorf("expected no completed cycles, got %d", l.Cycles())
	}
	// The loop raises a best-effort exception before terminating.
	if len(disp.Exceptions()) != 1 {
		t.Errorf("expected 1 exception, got %d", len(disp.Exceptions()))
	}
}

// failingDispatcher fails every finish with a transport error.
type failingDispatcher struct {
	local.Dispatcher
}

func (d *failingDispatcher) Finish(context.Context, types.Verdict) (types.Request, error) {
	return types.Request{}, rollapp.NewTransportError("finish", errors.New("connection reset"))
}

func TestLoop_TransportFailureIsFatal(t *testing.T) {
	l := New(&failingDispatcher{}, &testModel{})

	err := l.Run(context.Background())
	if _, ok := rollapp.IsTransport(err); !ok {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

// brokenEmitDispatcher accepts requests but fails notice emission.
type brokenEmitDispatcher struct {
	*local.Dispatcher
}

func (d *brokenEmitDispatcher) Notice(context.Context, types.Notice) (uint64, error) {
	return 0, rollapp.NewTransportError("notice", errors.New("connection reset"))
}

func TestLoop_EmitTransportFailureIsFatal(t *testing.T) {
	inner := local.New()
	inner.PushAdvance(testMetadata(), types.Payload{0x01})
	disp := &brokenEmitDispatcher{Dispatcher: inner}

	model := &testModel{
		advanceFn: func(ctx context.Context, req *types.AdvanceRequest, em rollapp.Emitter) (types.Verdict, error) {
			_, err := em.EmitNotice(ctx, req.Payload)
			return types.VerdictReject, err
		},
	}

	l := New(disp, model)
	err := l.Run(context.Background())
	if _, ok := rollapp.IsTransport(err); !ok {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestLoop_ContextCancellationStopsCleanly(t *testing.T) {
	disp := local.New()
	disp.PushInspect(types.Payload("q"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New(disp, &testModel{})
	err := l.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoop_ReportIndicesWithEmptyAcks(t *testing.T) {
	disp := local.New()
	disp.AckReports = true
	disp.PushInspect(types.Payload("q"))

	model := &testModel{
		inspectFn: func(ctx context.Context, req *types.InspectRequest, em rollapp.Emitter) (types.Verdict, error) {
			for i := 0; i < 3; i++ {
				index, err := em.EmitReport(ctx, req.Payload)
				if err != nil {
					return types.VerdictReject, err
				}
				if index != uint64(i) {
					return types.VerdictReject, errors.New("index out of sequence")
				}
			}
			return types.VerdictAccept, nil
		},
	}

	l := New(disp, model)
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if l.LastCycle().Verdict != types.VerdictAccept {
		t.Fatalf("expected accept, got %s", l.LastCycle().Verdict)
	}

	for i, a := range l.LastCycle().Artifacts {
		if a.Index != uint64(i) {
			t.Errorf("artifact %d: expected index %d, got %d", i, i, a.Index)
		}
	}
}

func TestLoop_IndicesResetPerCycle(t *testing.T) {
	disp := local.New()
	disp.PushAdvance(testMetadata(), types.Payload{0x01})
	disp.PushAdvance(testMetadata(), types.Payload{0x02})

	model := &testModel{
		advanceFn: func(ctx context.Context, req *types.AdvanceRequest, em rollapp.Emitter) (types.Verdict, error) {
			for i := 0; i < 2; i++ {
				if _, err := em.EmitNotice(ctx, req.Payload); err != nil {
					return types.VerdictReject, err
				}
			}
			return types.VerdictAccept, nil
		},
	}

	l := New(disp, model)
	if err := l.Run(context.Background()); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Second cycle's notices must start over at index 0.
	last := l.LastCycle()
	if len(last.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts in last cycle, got %d", len(last.Artifacts))
	}
	if last.Artifacts[0].Index != 0 || last.Artifacts[1].Index != 1 {
		t.Errorf("expected indices 0,1 in second cycle, got %d,%d",
			last.Artifacts[0].Index, last.Artifacts[1].Index)
	}
}
