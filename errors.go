package rollapp

import (
	"errors"
	"fmt"

	"github.com/blockberries/rollapp/types"
)

// TransportError signals a failure of the channel to the dispatcher:
// connection reset, timeout, or a non-success HTTP status. It is fatal
// for the process — there is no safe retry point inside a partially
// delivered verdict, so the supervising environment is expected to
// restart the dapp.
type TransportError struct {
	Op  string // the call that failed: "finish", "voucher", ...
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError creates a new TransportError.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// IsTransport checks whether an error is a TransportError and returns it.
func IsTransport(err error) (*TransportError, bool) {
	var t *TransportError
	if errors.As(err, &t) {
		return t, true
	}
	return nil, false
}

// MalformedResponseError signals that the dispatcher sent a payload
// that cannot be decoded into one of the two known request shapes.
// It indicates a protocol mismatch and is fatal.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed dispatcher response: %s", e.Reason)
}

// NewMalformedResponseError creates a new MalformedResponseError.
func NewMalformedResponseError(reason string) *MalformedResponseError {
	return &MalformedResponseError{Reason: reason}
}

// IsMalformedResponse checks whether an error is a MalformedResponseError.
func IsMalformedResponse(err error) (*MalformedResponseError, bool) {
	var m *MalformedResponseError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

// MalformedRequestError signals that a decoded dispatcher response does
// not classify as a valid request: the discriminator is absent or
// unrecognized, or a required variant field is missing. Fatal — the
// loop has no defined state to continue from.
type MalformedRequestError struct {
	Reason string
}

func (e *MalformedRequestError) Error() string {
	return fmt.Sprintf("malformed request: %s", e.Reason)
}

// NewMalformedRequestError creates a new MalformedRequestError.
func NewMalformedRequestError(reason string) *MalformedRequestError {
	return &MalformedRequestError{Reason: reason}
}

// IsMalformedRequest checks whether an error is a MalformedRequestError.
func IsMalformedRequest(err error) (*MalformedRequestError, bool) {
	var m *MalformedRequestError
	if errors.As(err, &m) {
		return m, true
	}
	return nil, false
}

// InvalidContextError signals that a Model attempted an artifact
// emission not permitted by the current request kind (a voucher or
// notice during inspect handling). This is a programming error in the
// Model and should fail loudly during development rather than be
// silently tolerated.
type InvalidContextError struct {
	Call string            // "voucher" or "notice"
	Kind types.RequestKind // the kind being handled
}

func (e *InvalidContextError) Error() string {
	return fmt.Sprintf("%s emission not permitted while handling %s request", e.Call, e.Kind)
}

// NewInvalidContextError creates a new InvalidContextError.
func NewInvalidContextError(call string, kind types.RequestKind) *InvalidContextError {
	return &InvalidContextError{Call: call, Kind: kind}
}

// IsInvalidContext checks whether an error is an InvalidContextError.
func IsInvalidContext(err error) (*InvalidContextError, bool) {
	var c *InvalidContextError
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}
