package domain

import "time"

type ItemLogAction string

const (
	ItemLogActionRent          ItemLogAction = "RENT"
	ItemLogActionApproveRental ItemLogAction = "APPROVE_RENTAL"
	ItemLogActionRejectRental  ItemLogAction = "REJECT_RENTAL"
	ItemLogActionReturn        ItemLogAction = "RETURN"
	ItemLogActionCheckReturn   ItemLogAction = "CHECK_RETURN"
	ItemLogActionRefund        ItemLogAction = "REFUND"
	ItemLogActionUnreturned    ItemLogAction = "UNRETURNED"
	ItemLogActionReturnRequest ItemLogAction = "RETURN_REQUEST"
	ItemLogActionDispute       ItemLogAction = "DISPUTE"
	ItemLogActionExtension     ItemLogAction = "EXTENSION"
	ItemLogActionSweep         ItemLogAction = "SWEEP"
)

// Evidence is an externally stored media reference. The core never
// transports file bytes, only these triples.
type Evidence struct {
	URL  string `json:"url"`
	Type string `json:"type"`
	Hash string `json:"hash"`
}

// ItemLog is the append-only audit trail. Every booking transition writes
// exactly one entry, in the same transaction as the transition itself;
// branches that leave the item status unchanged record prev == current.
type ItemLog struct {
	ID             int32         `json:"id"`
	ItemID         int32         `json:"item_id"`
	AccountID      int32         `json:"account_id"` // actor; escrow account id for system actions
	Action         ItemLogAction `json:"action"`
	PreviousStatus ItemStatus    `json:"previous_status"`
	CurrentStatus  ItemStatus    `json:"current_status"`
	Note           string        `json:"note"`
	Evidence       []Evidence    `json:"evidence"`
	CreatedOn      time.Time     `json:"created_on"`
}
