package loop

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/blockberries/rollapp"
	"github.com/blockberries/rollapp/types"
)

// Cycle is the record of one completed iteration: the request, the
// artifacts emitted while handling it (in emission order), and the
// verdict it finished with. The journal exists for logging and tests;
// each artifact was already transmitted when it was emitted.
type Cycle struct {
	Request   types.Request
	Artifacts []types.Artifact
	Verdict   types.Verdict
}

// Loop ties dispatcher, router, and Model into the unbounded request
// cycle. It owns all in-flight state for the duration of one cycle and
// runs strictly single-threaded: one request is fully processed before
// the next finish call is issued.
type Loop struct {
	disp  rollapp.Dispatcher
	model rollapp.Model
	guard *Guard
	log   zerolog.Logger

	cycles uint64
	last   *Cycle
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger attaches a logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Loop) { l.log = log }
}

// New creates a loop driving the given Model against the given
// dispatcher.
func New(disp rollapp.Dispatcher, model rollapp.Model, opts ...Option) *Loop {
	l := &Loop{
		disp:  disp,
		model: model,
		guard: NewGuard(),
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes the interaction cycle until the context is canceled,
// the dispatcher shuts down deliberately, or a fatal transport or
// protocol error occurs. Only the first two return nil.
func (l *Loop) Run(ctx context.Context) error {
	// The first finish acknowledges no prior cycle; the dispatcher
	// ignores its status.
	verdict := types.VerdictAccept

	for {
		req, err := l.disp.Finish(ctx, verdict)
		if err != nil {
			if errors.Is(err, rollapp.ErrShutdown) {
				l.log.Info().Uint64("cycles", l.cycles).Msg("dispatcher shut down")
				return nil
			}
			if ctx.Err() != nil {
				l.log.Info().Uint64("cycles", l.cycles).Msg("interaction loop canceled")
				return ctx.Err()
			}
			return l.fatal(ctx, err)
		}

		l.guard.BeginRouting()
		if err := req.Validate(); err != nil {
			l.guard.FailRouting()
			return l.fatal(ctx, rollapp.NewMalformedRequestError(err.Error()))
		}
		l.guard.BeginProcessing()

		verdict, err = l.process(ctx, req)
		l.guard.CompleteCycle()
		if err != nil {
			return l.fatal(ctx, err)
		}
	}
}

// process runs the Model for one routed request and returns the
// verdict to finish the cycle with. Domain failures (a Model error)
// map to reject; a transport failure during emission is fatal.
func (l *Loop) process(ctx context.Context, req types.Request) (types.Verdict, error) {
	em := newCycleEmitter(l.disp, req.Kind, l.log)

	var (
		verdict types.Verdict
		err     error
	)
	switch req.Kind {
	case types.KindAdvance:
		md := req.Advance.Metadata
		l.log.Info().
			Stringer("sender", md.Sender).
			Uint64("epoch", md.EpochIndex).
			Uint64("input", md.InputIndex).
			Msg("handling advance request")
		verdict, err = l.model.HandleAdvance(ctx, req.Advance, em)
	case types.KindInspect:
		l.log.Info().Int("query_bytes", len(req.Inspect.Payload)).Msg("handling inspect request")
		verdict, err = l.model.HandleInspect(ctx, req.Inspect, em)
	}

	if err != nil {
		if _, ok := rollapp.IsTransport(err); ok {
			return verdict, err
		}
		l.log.Error().Err(err).Stringer("kind", req.Kind).Msg("model failed, rejecting cycle")
		verdict = types.VerdictReject
	}
	if !verdict.Valid() {
		l.log.Error().Stringer("kind", req.Kind).Msg("model produced no verdict, rejecting cycle")
		verdict = types.VerdictReject
	}

	l.cycles++
	l.last = &Cycle{Request: req, Artifacts: em.journal, Verdict: verdict}
	l.log.Debug().
		Stringer("verdict", verdict).
		Int("artifacts", len(em.journal)).
		Uint64("cycle", l.cycles).
		Msg("cycle complete")
	return verdict, nil
}

// fatal logs a terminal error and, for protocol violations, raises a
// best-effort exception so the dispatcher learns why the dapp stopped.
func (l *Loop) fatal(ctx context.Context, err error) error {
	l.log.Error().Err(err).Msg("interaction loop terminating")
	_, malformedReq := rollapp.IsMalformedRequest(err)
	_, malformedResp := rollapp.IsMalformedResponse(err)
	if malformedReq || malformedResp {
		if exErr := l.disp.Exception(ctx, types.Payload(err.Error())); exErr != nil {
			l.log.Warn().Err(exErr).Msg("exception could not be delivered")
		}
	}
	return err
}

// Cycles returns the number of completed cycles.
func (l *Loop) Cycles() uint64 { return l.cycles }

// LastCycle returns the most recently completed cycle, or nil if no
// cycle has completed yet.
func (l *Loop) LastCycle() *Cycle { return l.last }

// State returns the loop's current cycle state.
func (l *Loop) State() string { return l.guard.State() }
