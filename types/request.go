package types

import "fmt"

// RequestKind discriminates the two request variants of the protocol.
type RequestKind uint8

const (
	// KindAdvance: a state-mutating request derived from an accepted
	// on-chain input.
	KindAdvance RequestKind = iota + 1
	// KindInspect: a read-only query. Never mutates state; answered
	// with reports only.
	KindInspect
)

func (k RequestKind) String() string {
	switch k {
	case KindAdvance:
		return "advance"
	case KindInspect:
		return "inspect"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Metadata carries the on-chain provenance of an advance request.
type Metadata struct {
	// Sender is the identity that submitted the input on-chain.
	Sender Address `json:"msg_sender"`
	// EpochIndex and InputIndex locate the input in the rollup.
	EpochIndex uint64 `json:"epoch_index"`
	InputIndex uint64 `json:"input_index"`
	// BlockNumber and Timestamp describe the L1 block that carried it.
	BlockNumber uint64 `json:"block_number"`
	Timestamp   uint64 `json:"timestamp"`
}

// AdvanceRequest is produced once per accepted on-chain input and
// triggers state mutation.
type AdvanceRequest struct {
	Metadata Metadata `json:"metadata"`
	Payload  Payload  `json:"payload"`
}

// InspectRequest carries an opaque query payload.
type InspectRequest struct {
	Payload Payload `json:"payload"`
}

// Request is the tagged union delivered by the dispatcher on each
// finish call. Exactly one of Advance and Inspect is non-nil, matching
// Kind. A Request never outlives its cycle.
type Request struct {
	Kind    RequestKind
	Advance *AdvanceRequest
	Inspect *InspectRequest
}

// Validate checks that the union is consistently tagged.
func (r Request) Validate() error {
	switch r.Kind {
	case KindAdvance:
		if r.Advance == nil {
			return fmt.Errorf("advance request with nil body")
		}
		if r.Inspect != nil {
			return fmt.Errorf("advance request with inspect body attached")
		}
	case KindInspect:
		if r.Inspect == nil {
			return fmt.Errorf("inspect request with nil body")
		}
		if r.Advance != nil {
			return fmt.Errorf("inspect request with advance body attached")
		}
	default:
		return fmt.Errorf("unknown request kind %d", r.Kind)
	}
	return nil
}
