package rollapptest

import (
	"testing"

	"github.com/blockberries/rollapp"
	"github.com/blockberries/rollapp/loop"
	"github.com/blockberries/rollapp/types"
)

// RunComplianceSuite runs a standard compliance test suite against a
// dapp Model to verify correct protocol behavior.
//
// The factory function should return a fresh Model instance for each
// test.
func RunComplianceSuite(t *testing.T, factory func() rollapp.Model) {
	t.Helper()

	t.Run("advance_produces_verdict", func(t *testing.T) {
		h := NewHarness(t, factory())
		c := h.Advance(DefaultMetadata(0), types.Payload("compliance"))
		if !c.Verdict.Valid() {
			t.Errorf("advance cycle finished without a valid verdict: %s", c.Verdict)
		}
	})

	t.Run("inspect_produces_verdict", func(t *testing.T) {
		h := NewHarness(t, factory())
		c := h.Inspect(types.Payload("compliance"))
		if !c.Verdict.Valid() {
			t.Errorf("inspect cycle finished without a valid verdict: %s", c.Verdict)
		}
	})

	t.Run("inspect_emits_reports_only", func(t *testing.T) {
		h := NewHarness(t, factory())
		h.Inspect(types.Payload("compliance"))
		if n := len(h.Dispatcher().Vouchers()); n != 0 {
			t.Errorf("inspect cycle emitted %d vouchers", n)
		}
		if n := len(h.Dispatcher().Notices()); n != 0 {
			t.Errorf("inspect cycle emitted %d notices", n)
		}
	})

	t.Run("empty_payload_produces_verdict", func(t *testing.T) {
		h := NewHarness(t, factory())
		c := h.Advance(DefaultMetadata(0), types.Payload{})
		if !c.Verdict.Valid() {
			t.Errorf("empty advance payload finished without a valid verdict: %s", c.Verdict)
		}
	})

	t.Run("deterministic_artifacts", func(t *testing.T) {
		// Identical request streams on two fresh instances must
		// produce identical artifact streams — the machine replays
		// execution and diverging output breaks reproducibility.
		run := func() []*loop.Cycle {
			h := NewHarness(t, factory())
			md := DefaultMetadata(0)
			return []*loop.Cycle{
				h.Advance(md, types.Payload{0x01, 0x02}),
				h.Inspect(types.Payload("q")),
			}
		}
		a, b := run(), run()
		for i := range a {
			if a[i].Verdict != b[i].Verdict {
				t.Errorf("cycle %d: verdict diverged: %s != %s", i, a[i].Verdict, b[i].Verdict)
			}
			if len(a[i].Artifacts) != len(b[i].Artifacts) {
				t.Fatalf("cycle %d: artifact count diverged: %d != %d",
					i, len(a[i].Artifacts), len(b[i].Artifacts))
			}
			for j, art := range a[i].Artifacts {
				other := b[i].Artifacts[j]
				if art.Kind != other.Kind || art.Index != other.Index ||
					art.Payload.String() != other.Payload.String() {
					t.Errorf("cycle %d artifact %d diverged: %+v != %+v", i, j, art, other)
				}
			}
		}
	})

	t.Run("indices_start_at_zero_per_cycle", func(t *testing.T) {
		h := NewHarness(t, factory())
		first := h.Advance(DefaultMetadata(0), types.Payload("one"))
		second := h.Advance(DefaultMetadata(1), types.Payload("two"))
		for _, c := range []*loop.Cycle{first, second} {
			seen := map[types.ArtifactKind]uint64{}
			for _, a := range c.Artifacts {
				if a.Index != seen[a.Kind] {
					t.Errorf("%s index %d out of sequence (expected %d)", a.Kind, a.Index, seen[a.Kind])
				}
				seen[a.Kind] = a.Index + 1
			}
		}
	})
}
