// Package pricing holds the money math shared by checkout, extensions,
// refunds and dispute compensation. All amounts are coin cents (1 coin =
// 100 cents) and all rates are basis points (10000 = 100%), so every
// computation stays in integer arithmetic.
package pricing

import (
	"time"

	"peerrent-backend/internal/domain"
)

// RentalDays returns the number of chargeable days between two dates.
// The end date must be strictly after the start date.
func RentalDays(startDate, endDate time.Time) (int32, error) {
	if !endDate.After(startDate) {
		return 0, domain.ErrInvalidDateRange
	}
	days := int32(endDate.Sub(startDate) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	return days, nil
}

// CheckoutAmountCents is the full charge taken from the lessee at checkout:
// rental fee for the whole period plus the refundable deposit, both scaled
// by quantity.
func CheckoutAmountCents(pricePerDayCents, depositCents, quantity, days int32) int32 {
	return pricePerDayCents*quantity*days + depositCents*quantity
}

// DaysLate counts whole or partial days elapsed past the booking end date.
// Returns 0 when the return is on time.
func DaysLate(endDate, returnedAt time.Time) int32 {
	if !returnedAt.After(endDate) {
		return 0
	}
	elapsed := returnedAt.Sub(endDate)
	days := int32(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// ApplyRateBps applies a basis-point rate to an amount, truncating toward
// zero. The int64 intermediate keeps deposit x rate from overflowing.
func ApplyRateBps(amountCents, rateBps int32) int32 {
	return int32(int64(amountCents) * int64(rateBps) / 10000)
}

// LatePenaltyCents returns the deposit share withheld for a late return.
// tiersBps[0] covers one day late, tiersBps[1] two days, and so on. Days
// beyond the tier table belong to forfeiture, not penalty math; callers
// must branch before asking for a penalty.
func LatePenaltyCents(depositCents, daysLate int32, tiersBps []int32) int32 {
	if daysLate <= 0 {
		return 0
	}
	if daysLate > int32(len(tiersBps)) {
		daysLate = int32(len(tiersBps))
	}
	return ApplyRateBps(depositCents, tiersBps[daysLate-1])
}
