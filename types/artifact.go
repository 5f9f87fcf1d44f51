package types

import "fmt"

// Voucher is a deferred on-chain call: destination address plus opaque
// call payload. Only meaningful for advance cycles.
type Voucher struct {
	Destination Address `json:"destination"`
	Payload     Payload `json:"payload"`
}

// Notice is an attested, provable statement. Only meaningful for
// advance cycles.
type Notice struct {
	Payload Payload `json:"payload"`
}

// Report is an advisory, non-provable diagnostic output. Valid for
// both advance and inspect cycles.
type Report struct {
	Payload Payload `json:"payload"`
}

// GIOResponse is the dispatcher's answer to a generic IO request.
type GIOResponse struct {
	Code uint16  `json:"code"`
	Data Payload `json:"data"`
}

// ArtifactKind identifies one of the three output artifact kinds.
type ArtifactKind uint8

const (
	ArtifactVoucher ArtifactKind = iota + 1
	ArtifactNotice
	ArtifactReport
)

func (k ArtifactKind) String() string {
	switch k {
	case ArtifactVoucher:
		return "voucher"
	case ArtifactNotice:
		return "notice"
	case ArtifactReport:
		return "report"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Artifact is one emitted output as recorded in a cycle's journal.
// Destination is nil except for vouchers. Index is the position in the
// cycle's emission sequence for this kind, starting at 0.
type Artifact struct {
	Kind        ArtifactKind
	Index       uint64
	Destination *Address
	Payload     Payload
}
