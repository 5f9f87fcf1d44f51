// Package echo implements the reference dapp Model: it echoes every
// payload back as a configurable number of vouchers, notices, and
// reports. It demonstrates the Model contract with no domain logic.
package echo

import (
	"context"

	"github.com/blockberries/rollapp"
	"github.com/blockberries/rollapp/types"
)

// Compile-time interface check.
var _ rollapp.Model = (*App)(nil)

// Config fixes the artifact counts per cycle. It is immutable after
// process start.
type Config struct {
	// Vouchers and Notices are emitted per advance cycle.
	Vouchers int `env:"ECHO_VOUCHERS" envDefault:"0"`
	Notices  int `env:"ECHO_NOTICES" envDefault:"0"`
	// Reports are emitted per cycle of either kind.
	Reports int `env:"ECHO_REPORTS" envDefault:"1"`
	// RejectEvery, when positive, rejects every n-th advance cycle
	// (artifacts are still emitted; finalization is the rollup's
	// concern, not the dapp's).
	RejectEvery int `env:"ECHO_REJECT_EVERY" envDefault:"0"`
}

// App echoes request payloads back as artifacts.
type App struct {
	cfg      Config
	advances uint64
}

// New creates an echo application with the given artifact counts.
func New(cfg Config) *App {
	return &App{cfg: cfg}
}

// HandleAdvance emits cfg.Vouchers vouchers addressed to the sender,
// cfg.Notices notices, and cfg.Reports reports, each carrying the
// input payload verbatim.
func (app *App) HandleAdvance(ctx context.Context, req *types.AdvanceRequest, em rollapp.Emitter) (types.Verdict, error) {
	app.advances++

	for i := 0; i < app.cfg.Vouchers; i++ {
		if _, err := em.EmitVoucher(ctx, req.Metadata.Sender, req.Payload); err != nil {
			return types.VerdictReject, err
		}
	}
	for i := 0; i < app.cfg.Notices; i++ {
		if _, err := em.EmitNotice(ctx, req.Payload); err != nil {
			return types.VerdictReject, err
		}
	}
	for i := 0; i < app.cfg.Reports; i++ {
		if _, err := em.EmitReport(ctx, req.Payload); err != nil {
			return types.VerdictReject, err
		}
	}

	if app.cfg.RejectEvery > 0 && app.advances%uint64(app.cfg.RejectEvery) == 0 {
		return types.VerdictReject, nil
	}
	return types.VerdictAccept, nil
}

// HandleInspect answers the query with cfg.Reports copies of its own
// payload.
func (app *App) HandleInspect(ctx context.Context, req *types.InspectRequest, em rollapp.Emitter) (types.Verdict, error) {
	for i := 0; i < app.cfg.Reports; i++ {
		if _, err := em.EmitReport(ctx, req.Payload); err != nil {
			return types.VerdictReject, err
		}
	}
	return types.VerdictAccept, nil
}
