// Package types defines the core data types of the rollup dapp
// protocol.
//
// These are plain Go structs with json struct tags matching the rollup
// HTTP dispatcher's wire format. Binary fields travel as 0x-prefixed
// lowercase hex strings; the Payload and Address types handle the
// conversion. Transport concerns live in the transport packages.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// AddressSize is the length of an on-chain address in bytes.
const AddressSize = 20

// Address is a 20-byte on-chain address, serialized as a 0x-prefixed
// hex string.
type Address [AddressSize]byte

// ParseAddress decodes a 0x-prefixed hex string into an Address.
func ParseAddress(s string) (Address, error) {
	var a Address
	if !strings.HasPrefix(s, "0x") {
		return a, fmt.Errorf("address %q: missing 0x prefix", s)
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return a, fmt.Errorf("address %q: %w", s, err)
	}
	if len(raw) != AddressSize {
		return a, fmt.Errorf("address %q: expected %d bytes, got %d", s, AddressSize, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// String returns the 0x-prefixed lowercase hex form.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Payload is an opaque byte string, serialized as a 0x-prefixed hex
// string. The dapp never interprets payloads on behalf of the Model.
type Payload []byte

// ParsePayload decodes a 0x-prefixed hex string into a Payload.
func ParsePayload(s string) (Payload, error) {
	if !strings.HasPrefix(s, "0x") {
		return nil, fmt.Errorf("payload %q: missing 0x prefix", s)
	}
	raw, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	return raw, nil
}

// String returns the 0x-prefixed lowercase hex form.
func (p Payload) String() string {
	return "0x" + hex.EncodeToString(p)
}

func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePayload(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
