// Package local provides an in-process dispatcher.
//
// For simulation and tests the dapp can be driven without a rollup
// machine or HTTP transport: requests are fed from a queue, every
// finish verdict and emitted artifact is recorded, and indices are
// assigned the way the real dispatcher assigns them — per artifact
// kind, starting at 0, reset each cycle.
package local

import (
	"context"
	"fmt"

	"github.com/blockberries/rollapp"
	"github.com/blockberries/rollapp/types"
)

// Compile-time interface checks.
var (
	_ rollapp.Dispatcher = (*Dispatcher)(nil)
	_ rollapp.GIO        = (*Dispatcher)(nil)
)

// Dispatcher implements rollapp.Dispatcher from an in-memory request
// queue. When the queue drains, Finish returns rollapp.ErrShutdown and
// the loop stops cleanly.
//
// Like the device it stands in for, it serves exactly one cycle at a
// time and is not safe for concurrent use.
type Dispatcher struct {
	// AckReports makes Report answer with an empty acknowledgment
	// instead of an index, as the reference dispatcher does.
	AckReports bool

	// GIOFn, if set, serves generic IO requests.
	GIOFn func(domain uint32, id types.Payload) (types.GIOResponse, error)

	queue    []types.Request
	verdicts []types.Verdict

	cycleCounts [4]uint64 // per types.ArtifactKind, reset each cycle

	vouchers   []types.Voucher
	notices    []types.Notice
	reports    []types.Report
	exceptions []types.Payload
}

// New creates an empty in-process dispatcher.
func New() *Dispatcher {
	return &Dispatcher{}
}

// Push appends a request to the queue.
func (d *Dispatcher) Push(req types.Request) {
	d.queue = append(d.queue, req)
}

// PushAdvance enqueues an advance request.
func (d *Dispatcher) PushAdvance(md types.Metadata, payload types.Payload) {
	d.Push(types.Request{
		Kind:    types.KindAdvance,
		Advance: &types.AdvanceRequest{Metadata: md, Payload: payload},
	})
}

// PushInspect enqueues an inspect request.
func (d *Dispatcher) PushInspect(payload types.Payload) {
	d.Push(types.Request{
		Kind:    types.KindInspect,
		Inspect: &types.InspectRequest{Payload: payload},
	})
}

func (d *Dispatcher) Finish(ctx context.Context, verdict types.Verdict) (types.Request, error) {
	if !verdict.Valid() {
		return types.Request{}, fmt.Errorf("finish: verdict must be accept or reject, got %d", uint8(verdict))
	}
	if err := ctx.Err(); err != nil {
		return types.Request{}, rollapp.NewTransportError("finish", err)
	}
	d.verdicts = append(d.verdicts, verdict)
	if len(d.queue) == 0 {
		return types.Request{}, rollapp.ErrShutdown
	}
	d.cycleCounts = [4]uint64{}
	req := d.queue[0]
	d.queue = d.queue[1:]
	return req, nil
}

func (d *Dispatcher) Voucher(_ context.Context, v types.Voucher) (uint64, error) {
	d.vouchers = append(d.vouchers, v)
	return d.nextIndex(types.ArtifactVoucher), nil
}

func (d *Dispatcher) Notice(_ context.Context, n types.Notice) (uint64, error) {
	d.notices = append(d.notices, n)
	return d.nextIndex(types.ArtifactNotice), nil
}

func (d *Dispatcher) Report(_ context.Context, r types.Report) (uint64, bool, error) {
	d.reports = append(d.reports, r)
	index := d.nextIndex(types.ArtifactReport)
	if d.AckReports {
		return 0, true, nil
	}
	return index, false, nil
}

func (d *Dispatcher) Exception(_ context.Context, payload types.Payload) error {
	d.exceptions = append(d.exceptions, payload)
	return nil
}

func (d *Dispatcher) GIO(_ context.Context, domain uint32, id types.Payload) (types.GIOResponse, error) {
	if d.GIOFn == nil {
		return types.GIOResponse{}, fmt.Errorf("gio domain %d: no handler configured", domain)
	}
	return d.GIOFn(domain, id)
}

func (d *Dispatcher) nextIndex(kind types.ArtifactKind) uint64 {
	index := d.cycleCounts[kind]
	d.cycleCounts[kind]++
	return index
}

// Verdicts returns every finish status received, including the initial
// no-prior-cycle acknowledgment.
func (d *Dispatcher) Verdicts() []types.Verdict { return d.verdicts }

// Vouchers returns every voucher received, across all cycles.
func (d *Dispatcher) Vouchers() []types.Voucher { return d.vouchers }

// Notices returns every notice received, across all cycles.
func (d *Dispatcher) Notices() []types.Notice { return d.notices }

// Reports returns every report received, across all cycles.
func (d *Dispatcher) Reports() []types.Report { return d.reports }

// Exceptions returns every exception payload received.
func (d *Dispatcher) Exceptions() []types.Payload { return d.exceptions }

// Pending returns the number of queued requests not yet delivered.
func (d *Dispatcher) Pending() int { return len(d.queue) }
