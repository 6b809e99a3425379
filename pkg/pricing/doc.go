// Package pricing computes subscription prices for gas cylinder plans.
//
// # Overview
//
// A plan carries a per-kilogram price and the option set a customer may pick
// from. The total for a selection is
//
//	round(sizeKg * pricePerKg * frequencyMultiplier * subscriptionPeriod)
//
// in whole Naira. Frequency multipliers are Daily=30, Weekly=4, Bi-weekly=2 and
// 1 for every other label (Monthly, One-Time, Emergency, "<N> days").
//
// # Usage Example
//
//	price, err := pricing.CalculatePrice(plan, "12kg", pricing.FrequencyBiWeekly, 2)
//	if errors.Is(err, pricing.ErrInvalidSize) {
//		// size label had no digits
//	}
//
// Validate a selection before submitting it:
//
//	if err := pricing.ValidateSelection(plan, sel); err != nil {
//		var verr *pricing.ValidationError
//		errors.As(err, &verr) // verr.Field names the offending input
//	}
//
// # Related Packages
//
//   - pkg/client: Fetches plans from the platform
//   - pkg/gateway: Serves quotes over HTTP
package pricing
