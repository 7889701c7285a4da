package service

import (
	"strings"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
)

// MessageKind tags the result of parsing an inbound message.  The zero
// value is Unrecognized, so a bare ParsedMessage{} is a safe "drop this".
type MessageKind int

const (
	MessageUnrecognized MessageKind = iota
	MessageDecision
	MessagePreApproval
)

// ParsedMessage is the tagged variant an inbound webhook body/payload is
// reduced to before any business logic runs.
type ParsedMessage struct {
	Kind MessageKind

	// Decision fields.
	Decision  types.ApprovalStatus // StatusApproved or StatusRejected
	RequestID string

	// Pre-approval fields.
	VisitorName  string
	VisitorPhone string
	Window       string // raw HH:MM-HH:MM, parsed by the registry
}

// ParseInbound recognizes two grammars on the shared inbound channel:
//
//	PREAPPROVE <name> <phone> <HH:MM-HH:MM>   (free text)
//	<APPROVE|REJECT>_<requestID>              (button payload)
//	<APPROVE|REJECT> <requestID>              (free text)
//
// A button payload takes precedence over body text when both are present.
// Anything else is Unrecognized and the caller drops it silently — the
// channel carries other traffic too.
func ParseInbound(body, buttonPayload string) ParsedMessage {
	body = strings.TrimSpace(body)

	if strings.HasPrefix(body, "PREAPPROVE") {
		fields := strings.Fields(body)
		if len(fields) != 4 || !strings.Contains(fields[3], "-") {
			return ParsedMessage{}
		}
		return ParsedMessage{
			Kind:         MessagePreApproval,
			VisitorName:  fields[1],
			VisitorPhone: fields[2],
			Window:       fields[3],
		}
	}

	var action, requestID string
	switch {
	case buttonPayload != "":
		action, requestID, _ = strings.Cut(buttonPayload, "_")
	case body != "":
		action, requestID, _ = strings.Cut(body, " ")
	default:
		return ParsedMessage{}
	}

	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ParsedMessage{}
	}

	switch action {
	case "APPROVE":
		return ParsedMessage{Kind: MessageDecision, Decision: types.StatusApproved, RequestID: requestID}
	case "REJECT":
		return ParsedMessage{Kind: MessageDecision, Decision: types.StatusRejected, RequestID: requestID}
	}
	return ParsedMessage{}
}
