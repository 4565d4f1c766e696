package domain

import "time"

type ExtensionStatus string

const (
	ExtensionStatusPending   ExtensionStatus = "PENDING"
	ExtensionStatusApproved  ExtensionStatus = "APPROVED"
	ExtensionStatusRejected  ExtensionStatus = "REJECTED"
	ExtensionStatusCancelled ExtensionStatus = "CANCELLED"
	ExtensionStatusExpired   ExtensionStatus = "EXPIRED"
)

// ExtensionRequest asks to push a booking's end date out by additionalDays
// for an additional fee. At most one pending request per booking at a time.
type ExtensionRequest struct {
	ID                 int32           `json:"id"`
	BookingID          int32           `json:"booking_id"`
	AdditionalDays     int32           `json:"additional_days"`
	AdditionalFeeCents int32           `json:"additional_fee_cents"`
	Status             ExtensionStatus `json:"status"`
	CreatedOn          time.Time       `json:"created_on"`
	UpdatedOn          time.Time       `json:"updated_on"`
}
