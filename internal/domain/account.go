package domain

import "time"

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "ACTIVE"
	AccountStatusBanned AccountStatus = "BANNED"
)

type AccountRole string

const (
	AccountRoleUser   AccountRole = "USER"
	AccountRoleAdmin  AccountRole = "ADMIN"
	AccountRoleSystem AccountRole = "SYSTEM"
)

// Account holds a closed-loop coin balance. Balances are mutated only by
// ledger settlements, inside the same transaction as the settlement record.
// One distinguished account (IsEscrow) is the system escrow wallet that every
// booking payment and refund routes through.
type Account struct {
	ID               int32         `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	CoinBalanceCents int32         `json:"coin_balance_cents"`
	TrustScore       int32         `json:"trust_score"` // 0-100, decays on policy violations
	Status           AccountStatus `json:"status"`
	Role             AccountRole   `json:"role"`
	IsEscrow         bool          `json:"is_escrow"`
	CreatedOn        time.Time     `json:"created_on"`
	UpdatedOn        time.Time     `json:"updated_on"`
}

// DockTrust lowers the trust score by penalty, flooring at zero.
func (a *Account) DockTrust(penalty int32) {
	a.TrustScore -= penalty
	if a.TrustScore < 0 {
		a.TrustScore = 0
	}
}
