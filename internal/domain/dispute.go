package domain

import "time"

type DisputeStatus string

const (
	DisputeStatusPendingReview DisputeStatus = "PENDING_REVIEW"
	DisputeStatusResolved      DisputeStatus = "RESOLVED"
)

type AdminDecision string

const (
	AdminDecisionApproved AdminDecision = "APPROVED"
	AdminDecisionRejected AdminDecision = "REJECTED"
)

// DamageType is a catalog entry describing a class of damage and the share
// of the deposit paid out as compensation when an admin approves a dispute.
// The rate is stored in basis points (10000 = 100%).
type DamageType struct {
	ID                    int32  `json:"id"`
	Name                  string `json:"name"`
	CompensationRateBps   int32  `json:"compensation_rate_bps"`
}

// Dispute is a lessor-initiated damage claim that preempts the normal return
// flow: creating one force-closes any open ReturnRequest on the booking and
// bans the item pending admin review.
type Dispute struct {
	ID                    int32         `json:"id"`
	BookingID             int32         `json:"booking_id"`
	ReporterID            int32         `json:"reporter_id"` // lessor
	DefenderID            int32         `json:"defender_id"` // lessee
	DamageTypeID          int32         `json:"damage_type_id"`
	Detail                string        `json:"detail"`
	Evidence              []Evidence    `json:"evidence"`
	CompensationAmountCents int32       `json:"compensation_amount_cents"`
	Status                DisputeStatus `json:"status"`
	AdminDecision         AdminDecision `json:"admin_decision,omitempty"`
	ResolvedOn            *time.Time    `json:"resolved_on,omitempty"`
	CreatedOn             time.Time     `json:"created_on"`
	UpdatedOn             time.Time     `json:"updated_on"`
}
