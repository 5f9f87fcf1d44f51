package echo

import (
	"testing"

	"github.com/blockberries/rollapp"
	rollapptest "github.com/blockberries/rollapp/testing"
	"github.com/blockberries/rollapp/types"
)

func TestEcho_Compliance(t *testing.T) {
	rollapptest.RunComplianceSuite(t, func() rollapp.Model {
		return New(Config{Vouchers: 2, Notices: 1, Reports: 1})
	})
}

func TestEcho_Advance(t *testing.T) {
	// N=3 vouchers, M=2 notices, K=1 report.
	h := rollapptest.NewHarness(t, New(Config{Vouchers: 3, Notices: 2, Reports: 1}))

	payload := types.Payload{0xde, 0xad, 0xbe, 0xef}
	cycle := h.Advance(rollapptest.DefaultMetadata(0), payload)
	h.MustAccept(cycle)

	disp := h.Dispatcher()
	if got := len(disp.Vouchers()); got != 3 {
		t.Fatalf("expected 3 vouchers, got %d", got)
	}
	for i, v := range disp.Vouchers() {
		if v.Destination != rollapptest.DefaultSender {
			t.Errorf("voucher %d: expected destination %s, got %s",
				i, rollapptest.DefaultSender, v.Destination)
		}
		if v.Payload.String() != payload.String() {
			t.Errorf("voucher %d: expected payload %s, got %s", i, payload, v.Payload)
		}
	}

	if got := len(disp.Notices()); got != 2 {
		t.Fatalf("expected 2 notices, got %d", got)
	}
	for i, n := range disp.Notices() {
		if n.Payload.String() != payload.String() {
			t.Errorf("notice %d: expected payload %s, got %s", i, payload, n.Payload)
		}
	}

	if got := len(disp.Reports()); got != 1 {
		t.Fatalf("expected 1 report, got %d", got)
	}
	if disp.Reports()[0].Payload.String() != payload.String() {
		t.Errorf("report: expected payload %s, got %s", payload, disp.Reports()[0].Payload)
	}
}

func TestEcho_Inspect(t *testing.T) {
	// K=1 report per cycle.
	h := rollapptest.NewHarness(t, New(Config{Vouchers: 3, Notices: 2, Reports: 1}))

	query := types.Payload("testquery")
	cycle := h.Inspect(query)
	h.MustAccept(cycle)

	disp := h.Dispatcher()
	if got := len(disp.Reports()); got != 1 {
		t.Fatalf("expected 1 report, got %d", got)
	}
	if string(disp.Reports()[0].Payload) != "testquery" {
		t.Errorf("expected report payload testquery, got %q", disp.Reports()[0].Payload)
	}
	if len(disp.Vouchers()) != 0 || len(disp.Notices()) != 0 {
		t.Errorf("inspect cycle emitted vouchers or notices: %d/%d",
			len(disp.Vouchers()), len(disp.Notices()))
	}
}

func TestEcho_ZeroCounts(t *testing.T) {
	h := rollapptest.NewHarness(t, New(Config{}))

	cycle := h.Advance(rollapptest.DefaultMetadata(0), types.Payload{0x01})
	h.MustAccept(cycle)
	if got := len(cycle.Artifacts); got != 0 {
		t.Errorf("expected no artifacts, got %d", got)
	}
}

func TestEcho_RejectEvery(t *testing.T) {
	h := rollapptest.NewHarness(t, New(Config{Reports: 1, RejectEvery: 2}))

	h.MustAccept(h.Advance(rollapptest.DefaultMetadata(0), types.Payload{0x01}))
	h.MustReject(h.Advance(rollapptest.DefaultMetadata(1), types.Payload{0x02}))
	h.MustAccept(h.Advance(rollapptest.DefaultMetadata(2), types.Payload{0x03}))
	h.MustReject(h.Advance(rollapptest.DefaultMetadata(3), types.Payload{0x04}))

	// Rejection applies to advance cycles only.
	h.MustAccept(h.Inspect(types.Payload("q")))
}

func TestEcho_VoucherIndicesIncrease(t *testing.T) {
	h := rollapptest.NewHarness(t, New(Config{Vouchers: 4}))

	cycle := h.Advance(rollapptest.DefaultMetadata(0), types.Payload{0x01})
	if got := len(cycle.Artifacts); got != 4 {
		t.Fatalf("expected 4 artifacts, got %d", got)
	}
	for i, a := range cycle.Artifacts {
		if a.Kind != types.ArtifactVoucher {
			t.Errorf("artifact %d: expected voucher, got %s", i, a.Kind)
		}
		if a.Index != uint64(i) {
			t.Errorf("voucher %d: expected index %d, got %d", i, i, a.Index)
		}
	}
}
