package rollapptest

import (
	"context"
	"testing"

	"github.com/blockberries/rollapp"
	"github.com/blockberries/rollapp/local"
	"github.com/blockberries/rollapp/loop"
	"github.com/blockberries/rollapp/types"
)

// Harness drives a Model through complete cycles — finish, route,
// handle, finish with verdict — against an in-process dispatcher, so
// Model behavior is testable without a rollup machine or HTTP.
type Harness struct {
	t    *testing.T
	disp *local.Dispatcher
	l    *loop.Loop
}

// NewHarness creates a harness around the given Model.
func NewHarness(t *testing.T, model rollapp.Model) *Harness {
	t.Helper()
	disp := local.New()
	return &Harness{
		t:    t,
		disp: disp,
		l:    loop.New(disp, model),
	}
}

// Dispatcher returns the underlying in-process dispatcher for direct
// inspection of recorded artifacts and verdicts.
func (h *Harness) Dispatcher() *local.Dispatcher { return h.disp }

// Loop returns the underlying loop for direct access.
func (h *Harness) Loop() *loop.Loop { return h.l }

// Advance runs one full advance cycle and returns its record.
func (h *Harness) Advance(md types.Metadata, payload types.Payload) *loop.Cycle {
	h.t.Helper()
	h.disp.PushAdvance(md, payload)
	return h.runOne()
}

// Inspect runs one full inspect cycle and returns its record.
func (h *Harness) Inspect(payload types.Payload) *loop.Cycle {
	h.t.Helper()
	h.disp.PushInspect(payload)
	return h.runOne()
}

func (h *Harness) runOne() *loop.Cycle {
	h.t.Helper()
	before := h.l.Cycles()
	if err := h.l.Run(context.Background()); err != nil {
		h.t.Fatalf("loop run failed: %v", err)
	}
	if got := h.l.Cycles(); got != before+1 {
		h.t.Fatalf("expected exactly one completed cycle, got %d", got-before)
	}
	return h.l.LastCycle()
}

// MustAccept asserts that a cycle finished with the accept verdict.
func (h *Harness) MustAccept(c *loop.Cycle) {
	h.t.Helper()
	if c.Verdict != types.VerdictAccept {
		h.t.Fatalf("expected accept verdict, got %s", c.Verdict)
	}
}

// MustReject asserts that a cycle finished with the reject verdict.
func (h *Harness) MustReject(c *loop.Cycle) {
	h.t.Helper()
	if c.Verdict != types.VerdictReject {
		h.t.Fatalf("expected reject verdict, got %s", c.Verdict)
	}
}

// --- Helper Factories ---

// DefaultSender is the sender address used by DefaultMetadata.
var DefaultSender = types.Address{0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa,
	0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa, 0xaa}

// DefaultMetadata returns advance metadata for the given input index,
// suitable for tests that do not care about provenance details.
func DefaultMetadata(inputIndex uint64) types.Metadata {
	return types.Metadata{
		Sender:      DefaultSender,
		EpochIndex:  0,
		InputIndex:  inputIndex,
		BlockNumber: 100 + inputIndex,
		Timestamp:   1700000000 + 5*inputIndex,
	}
}
