package settlement

import (
	"math"

	"github.com/BruksfildServices01/barber-marketplace/internal/httperr"
)

// ComputeSplit divides price between the platform and the barber. The fee is
// rounded to cents and the payout takes the remainder, so
// fee + payout == price always holds.
func ComputeSplit(price float64, feePercent float64) (fee float64, payout float64) {
	if price <= 0 {
		return 0, 0
	}
	fee = math.Round(price*feePercent) / 100
	if fee > price {
		fee = price
	}
	payout = price - fee
	return fee, payout
}

// ValidateSplit checks an explicitly supplied fee/payout pair against the
// price. Pairs that do not sum to the price are rejected instead of stored;
// the price is never silently adjusted to fit them.
func ValidateSplit(price, fee, payout float64) error {
	if fee < 0 {
		return httperr.ErrValidation("platform_fee", "negative")
	}
	if payout < 0 {
		return httperr.ErrValidation("barber_payout", "negative")
	}
	if math.Abs(fee+payout-price) > 0.005 {
		return httperr.ErrValidation("platform_fee", "split_does_not_sum_to_price")
	}
	return nil
}
