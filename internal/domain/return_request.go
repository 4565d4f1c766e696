package domain

import "time"

type ReturnRequestStatus string

const (
	ReturnRequestStatusProcessing      ReturnRequestStatus = "PROCESSING"
	ReturnRequestStatusApproved        ReturnRequestStatus = "APPROVED"
	ReturnRequestStatusRejected        ReturnRequestStatus = "REJECTED"
	ReturnRequestStatusAutoRefunded    ReturnRequestStatus = "AUTO_REFUNDED"
	ReturnRequestStatusResolved        ReturnRequestStatus = "RESOLVED"
	ReturnRequestStatusClosedByDispute ReturnRequestStatus = "CLOSED_BY_DISPUTE"
)

// Terminal reports whether the request can no longer change.
func (s ReturnRequestStatus) Terminal() bool {
	return s != ReturnRequestStatusProcessing
}

type ReturnReason string

const (
	ReturnReasonWrongDescription ReturnReason = "WRONG_DESCRIPTION"
	ReturnReasonMissingParts     ReturnReason = "MISSING_PARTS"
	ReturnReasonChangedMind      ReturnReason = "CHANGED_MIND"
	ReturnReasonOther            ReturnReason = "OTHER"
)

// PenalizesLessor reports whether an approved request with this reason also
// bans the item and docks the lessor's trust score.
func (r ReturnReason) PenalizesLessor() bool {
	return r == ReturnReasonWrongDescription || r == ReturnReasonMissingParts
}

// ReturnRequest starts the lessee-initiated refund path: the lessee submits
// a reason with evidence, adds packing evidence, the lessor confirms receipt,
// and an admin decision (or the auto-refund sweep) produces the settlement.
// At most one open request per booking.
type ReturnRequest struct {
	ID                    int32               `json:"id"`
	BookingID             int32               `json:"booking_id"`
	Reason                ReturnReason        `json:"reason"`
	Detail                string              `json:"detail"`
	Evidence              []Evidence          `json:"evidence"`
	PackingEvidence       []Evidence          `json:"packing_evidence"`
	LessorConfirmedOn     *time.Time          `json:"lessor_confirmed_on,omitempty"`
	RefundAmountCents     *int32              `json:"refund_amount_cents,omitempty"` // admin override; nil means default full refund
	Status                ReturnRequestStatus `json:"status"`
	CreatedOn             time.Time           `json:"created_on"`
	UpdatedOn             time.Time           `json:"updated_on"`
}
