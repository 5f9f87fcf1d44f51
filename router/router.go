// Package router classifies decoded dispatcher responses into typed
// requests. Route is a pure function: no side effects, no network
// access, so classification failures are testable without a dispatcher.
package router

import (
	"encoding/json"

	"github.com/blockberries/rollapp"
	"github.com/blockberries/rollapp/types"
	"github.com/blockberries/rollapp/wire"
)

// advanceBody mirrors types.AdvanceRequest with pointer fields so that
// absent required fields are distinguishable from zero values.
type advanceBody struct {
	Metadata *struct {
		Sender      *types.Address `json:"msg_sender"`
		EpochIndex  *uint64        `json:"epoch_index"`
		InputIndex  *uint64        `json:"input_index"`
		BlockNumber *uint64        `json:"block_number"`
		Timestamp   *uint64        `json:"timestamp"`
	} `json:"metadata"`
	Payload *types.Payload `json:"payload"`
}

type inspectBody struct {
	Payload *types.Payload `json:"payload"`
}

// Route inspects the envelope's discriminator and constructs the
// matching request variant, validating that all variant-specific
// fields are present. Fails with a MalformedRequestError if the
// discriminator is absent or unrecognized, or a required field is
// missing for the indicated variant.
func Route(env wire.Envelope) (types.Request, error) {
	switch env.RequestType {
	case wire.RequestTypeAdvance:
		return routeAdvance(env.Data)
	case wire.RequestTypeInspect:
		return routeInspect(env.Data)
	case "":
		return types.Request{}, rollapp.NewMalformedRequestError("missing request_type discriminator")
	default:
		return types.Request{}, rollapp.NewMalformedRequestError("unrecognized request_type " + env.RequestType)
	}
}

func routeAdvance(data json.RawMessage) (types.Request, error) {
	var body advanceBody
	if err := json.Unmarshal(data, &body); err != nil {
		return types.Request{}, rollapp.NewMalformedRequestError("advance data: " + err.Error())
	}
	if body.Payload == nil {
		return types.Request{}, rollapp.NewMalformedRequestError("advance data: missing payload")
	}
	md := body.Metadata
	switch {
	case md == nil:
		return types.Request{}, rollapp.NewMalformedRequestError("advance data: missing metadata")
	case md.Sender == nil:
		return types.Request{}, rollapp.NewMalformedRequestError("advance metadata: missing msg_sender")
	case md.EpochIndex == nil:
		return types.Request{}, rollapp.NewMalformedRequestError("advance metadata: missing epoch_index")
	case md.InputIndex == nil:
		return types.Request{}, rollapp.NewMalformedRequestError("advance metadata: missing input_index")
	case md.BlockNumber == nil:
		return types.Request{}, rollapp.NewMalformedRequestError("advance metadata: missing block_number")
	case md.Timestamp == nil:
		return types.Request{}, rollapp.NewMalformedRequestError("advance metadata: missing timestamp")
	}
	return types.Request{
		Kind: types.KindAdvance,
		Advance: &types.AdvanceRequest{
			Metadata: types.Metadata{
				Sender:      *md.Sender,
				EpochIndex:  *md.EpochIndex,
				InputIndex:  *md.InputIndex,
				BlockNumber: *md.BlockNumber,
				Timestamp:   *md.Timestamp,
			},
			Payload: *body.Payload,
		},
	}, nil
}

func routeInspect(data json.RawMessage) (types.Request, error) {
	var body inspectBody
	if err := json.Unmarshal(data, &body); err != nil {
		return types.Request{}, rollapp.NewMalformedRequestError("inspect data: " + err.Error())
	}
	if body.Payload == nil {
		return types.Request{}, rollapp.NewMalformedRequestError("inspect data: missing payload")
	}
	return types.Request{
		Kind:    types.KindInspect,
		Inspect: &types.InspectRequest{Payload: *body.Payload},
	}, nil
}
