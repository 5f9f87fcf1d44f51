// Package wire defines the JSON bodies exchanged with the rollup HTTP
// dispatcher. Domain types from rollapp/types carry json tags and are
// embedded directly; the shapes here exist only where the wire format
// does not map to a single domain type.
package wire

import (
	"encoding/json"

	"github.com/blockberries/rollapp/types"
)

// Discriminator values of the finish response envelope.
const (
	RequestTypeAdvance = "advance_state"
	RequestTypeInspect = "inspect_state"
)

// FinishRequest is the body of POST /finish.
type FinishRequest struct {
	Status types.Verdict `json:"status"`
}

// Envelope is the tagged union returned by POST /finish. Data is left
// undecoded until the router classifies RequestType.
type Envelope struct {
	RequestType string          `json:"request_type"`
	Data        json.RawMessage `json:"data"`
}

// IndexResponse is the body returned by the voucher and notice
// endpoints (and optionally by report).
type IndexResponse struct {
	Index uint64 `json:"index"`
}

// ExceptionRequest is the body of POST /exception.
type ExceptionRequest struct {
	Payload types.Payload `json:"payload"`
}

// GIORequest is the body of POST /gio.
type GIORequest struct {
	Domain uint32        `json:"domain"`
	ID     types.Payload `json:"id"`
}
