// Package loop drives the dapp's interaction cycle: finish the
// previous cycle, receive a request, route it, invoke the Model, and
// finish with its verdict — strictly sequentially, forever.
package loop

import "fmt"

// cycleState is a state in the interaction cycle state machine.
type cycleState uint32

const (
	// stateAwaitingRequest: the finish call is (or is about to be) in
	// flight; no request is being processed.
	stateAwaitingRequest cycleState = iota
	// stateRouting: a raw request has arrived and is being classified
	// and validated.
	stateRouting
	// stateProcessing: the Model is handling the routed request and
	// may be emitting artifacts.
	stateProcessing
)

func (s cycleState) String() string {
	switch s {
	case stateAwaitingRequest:
		return "AwaitingRequest"
	case stateRouting:
		return "Routing"
	case stateProcessing:
		return "Processing"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Guard makes the cycle state machine explicit and enforces its
// transitions, so the one-finish-per-cycle property is checkable
// independently of networking. The loop is single-threaded; a wrong
// transition is a programming error and panics.
type Guard struct {
	state cycleState
}

// NewGuard creates a guard in the AwaitingRequest state.
func NewGuard() *Guard {
	return &Guard{state: stateAwaitingRequest}
}

// State returns the current cycle state.
func (g *Guard) State() string {
	return g.state.String()
}

// BeginRouting transitions AwaitingRequest → Routing once a raw
// request has been received.
func (g *Guard) BeginRouting() {
	if g.state != stateAwaitingRequest {
		panic(fmt.Sprintf("github.com/blockberries/rollapp: request received in state %s (expected AwaitingRequest)", g.state))
	}
	g.state = stateRouting
}

// BeginProcessing transitions Routing → Processing once the request
// has been classified and validated.
func (g *Guard) BeginProcessing() {
	if g.state != stateRouting {
		panic(fmt.Sprintf("github.com/blockberries/rollapp: processing started in state %s (expected Routing)", g.state))
	}
	g.state = stateProcessing
}

// FailRouting rolls back Routing → AwaitingRequest when the received
// request does not validate.
func (g *Guard) FailRouting() {
	if g.state != stateRouting {
		panic(fmt.Sprintf("github.com/blockberries/rollapp: routing failed in state %s (expected Routing)", g.state))
	}
	g.state = stateAwaitingRequest
}

// CompleteCycle transitions Processing → AwaitingRequest once the
// Model has produced a verdict.
func (g *Guard) CompleteCycle() {
	if g.state != stateProcessing {
		panic(fmt.Sprintf("github.com/blockberries/rollapp: cycle completed in state %s (expected Processing)", g.state))
	}
	g.state = stateAwaitingRequest
}
