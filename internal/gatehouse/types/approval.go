package types

// ApprovalStatus is the lifecycle state of an approval request.  PENDING is
// the only non-terminal state; once a request reaches APPROVED, REJECTED, or
// EXPIRED it never transitions again.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "PENDING"
	StatusApproved ApprovalStatus = "APPROVED"
	StatusRejected ApprovalStatus = "REJECTED"
	StatusExpired  ApprovalStatus = "EXPIRED"

	// StatusUnknown is returned to pollers asking about an id the ledger
	// has never seen.  It is a query result, never a stored state.
	StatusUnknown ApprovalStatus = "UNKNOWN"
)

// Terminal reports whether s admits no further transitions.
func (s ApprovalStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusExpired
}

type CreateVisitRequest struct {
	RequestID    string `json:"request_id,omitempty"` // generated when empty
	VisitorName  string `json:"visitor_name"`
	VisitorPhone string `json:"visitor_phone"`
	HostContact  string `json:"host_contact"`
	GateTime     string `json:"gate_time,omitempty"` // display string from the gate client
	PhotoRef     string `json:"photo_ref,omitempty"`
}

type CreateVisitResponse struct {
	OK         bool           `json:"ok"`
	RequestID  string         `json:"request_id"`
	Status     ApprovalStatus `json:"status"`
	ExpiresAt  string         `json:"expires_at"`
	ServerTime string         `json:"server_time"`
}

type StatusResponse struct {
	Status ApprovalStatus `json:"status"`
}

// InboundMessage is a message received on the shared inbound channel.  Body
// and ButtonPayload arrive as the transport delivered them; the coordinator
// owns parsing.
type InboundMessage struct {
	Body          string
	ButtonPayload string
	From          string
}
