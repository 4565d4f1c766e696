package domain

import "time"

type ItemStatus string

const (
	ItemStatusPendingApproval    ItemStatus = "PENDING_APPROVAL"
	ItemStatusAvailable          ItemStatus = "AVAILABLE"
	ItemStatusRejected           ItemStatus = "REJECTED"
	ItemStatusRentedPendingConfirm ItemStatus = "RENTED_PENDING_CONFIRM"
	ItemStatusRented             ItemStatus = "RENTED"
	ItemStatusReturnPendingCheck ItemStatus = "RETURN_PENDING_CHECK"
	ItemStatusBanned             ItemStatus = "BANNED"
	ItemStatusDeleted            ItemStatus = "DELETED"
	ItemStatusMissing            ItemStatus = "MISSING"
)

// Item is a rentable good. Quantity and status are mutated only by booking
// transitions; concurrent checkouts must go through the repository's atomic
// check-and-decrement, never read-then-write.
type Item struct {
	ID                 int32      `json:"id"`
	OwnerID            int32      `json:"owner_id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Quantity           int32      `json:"quantity"` // units currently available
	PricePerDayCents   int32      `json:"price_per_day_cents"`
	DepositAmountCents int32      `json:"deposit_amount_cents"`
	Status             ItemStatus `json:"status"`
	CreatedOn          time.Time  `json:"created_on"`
	UpdatedOn          time.Time  `json:"updated_on"`
}

// Rentable reports whether a checkout may target this item.
func (i *Item) Rentable() bool {
	switch i.Status {
	case ItemStatusRented, ItemStatusBanned, ItemStatusDeleted, ItemStatusMissing,
		ItemStatusPendingApproval, ItemStatusRejected:
		return false
	}
	return i.Quantity > 0
}
