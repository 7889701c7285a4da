package types

// VisitType records which admission path put a visitor on site.
type VisitType string

const (
	VisitTypeApproval    VisitType = "APPROVAL"
	VisitTypePreApproved VisitType = "PRE-APPROVED"
)

type ActiveVisitView struct {
	VisitorName  string    `json:"visitor_name"`
	VisitorPhone string    `json:"visitor_phone"`
	VisitType    VisitType `json:"visit_type"`
	PhotoRef     string    `json:"photo_ref,omitempty"`
	CheckInTime  string    `json:"check_in_time"`
}

type HistoryEntryView struct {
	VisitorName  string    `json:"visitor_name"`
	VisitorPhone string    `json:"visitor_phone"`
	VisitType    VisitType `json:"visit_type"`
	PhotoRef     string    `json:"photo_ref,omitempty"`
	CheckInTime  string    `json:"check_in_time"`
	CheckOutTime string    `json:"check_out_time"`
}

type CheckoutRequest struct {
	VisitorPhone string `json:"visitor_phone"`
}

type CheckoutResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type PreApprovalLookupResponse struct {
	Valid bool   `json:"valid"`
	Name  string `json:"name,omitempty"`
}
