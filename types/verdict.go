package types

import (
	"encoding/json"
	"fmt"
)

// Verdict is the accept/reject outcome of one cycle. Accept commits
// any emitted vouchers and notices; Reject leaves their finalization
// to the outer rollup. The dapp's only obligation is to report the
// correct value.
type Verdict uint8

const (
	VerdictAccept Verdict = iota + 1
	VerdictReject
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccept:
		return "accept"
	case VerdictReject:
		return "reject"
	default:
		return fmt.Sprintf("unknown(%d)", v)
	}
}

// Valid reports whether v is one of the two protocol verdicts.
func (v Verdict) Valid() bool {
	return v == VerdictAccept || v == VerdictReject
}

func (v Verdict) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("verdict must be accept or reject, got %d", uint8(v))
	}
	return json.Marshal(v.String())
}

func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "accept":
		*v = VerdictAccept
	case "reject":
		*v = VerdictReject
	default:
		return fmt.Errorf("verdict must be 'accept' or 'reject', got %q", s)
	}
	return nil
}
