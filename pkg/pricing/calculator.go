package pricing

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidSize is returned when a size label carries no leading integer
var ErrInvalidSize = errors.New("cylinder size has no numeric value")

// CalculatePrice returns the total price in whole Naira:
// round(sizeKg * pricePerKg * frequencyMultiplier * period).
//
// A nil plan or a plan without a per-kg price yields 0.
func CalculatePrice(plan *Plan, size string, frequency Frequency, period int) (int64, error) {
	if plan == nil || plan.PricePerKg == 0 {
		return 0, nil
	}

	kg, err := ParseSizeKg(size)
	if err != nil {
		return 0, err
	}

	total := decimal.NewFromInt(kg).
		Mul(decimal.NewFromFloat(plan.PricePerKg)).
		Mul(decimal.NewFromInt(frequency.Multiplier())).
		Mul(decimal.NewFromInt(int64(period)))

	return total.Round(0).IntPart(), nil
}

// ParseSizeKg extracts the kilogram value from labels such as "12kg", "12KG"
// or "12". A trailing "kg" in any case is removed and the leading integer
// parsed; when that yields no digits the whole label is parsed instead.
func ParseSizeKg(size string) (int64, error) {
	if kg, ok := leadingInt(stripKg(size)); ok {
		return kg, nil
	}
	if kg, ok := leadingInt(size); ok {
		return kg, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSize, size)
}

func stripKg(size string) string {
	trimmed := strings.TrimRight(size, " \t\n\r")
	if n := len(trimmed); n >= 2 && strings.EqualFold(trimmed[n-2:], "kg") {
		return trimmed[:n-2]
	}
	return size
}

// leadingInt parses an optionally signed run of digits after leading whitespace
func leadingInt(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ValidationError describes a selection field that the plan does not allow
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateSelection checks a selection against the plan's option set.
// CalculatePrice does not call it; callers validate before submitting.
func ValidateSelection(plan *Plan, sel Selection) error {
	if plan == nil {
		return &ValidationError{Field: "plan", Message: "plan is required"}
	}
	if sel.Size == "" {
		return &ValidationError{Field: "size", Message: "size is required"}
	}
	if sel.Frequency == "" {
		return &ValidationError{Field: "frequency", Message: "frequency is required"}
	}

	kg, err := ParseSizeKg(sel.Size)
	if err != nil {
		return &ValidationError{Field: "size", Message: "size must be a number of kilograms"}
	}

	switch {
	case plan.CylinderSizeRange != nil:
		if !plan.CylinderSizeRange.Contains(int(kg)) {
			return &ValidationError{
				Field:   "size",
				Message: fmt.Sprintf("size must be between %dkg and %dkg", plan.CylinderSizeRange.Min, plan.CylinderSizeRange.Max),
			}
		}
	default:
		opts := Options(plan)
		if len(opts.Sizes) > 0 && !slices.Contains(opts.Sizes, sel.Size) {
			return &ValidationError{Field: "size", Message: fmt.Sprintf("size %s is not offered by this plan", sel.Size)}
		}
	}

	if err := validateFrequency(plan, sel.Frequency); err != nil {
		return err
	}

	period := sel.Period()
	if period <= 0 {
		return &ValidationError{Field: "subscriptionPeriod", Message: "subscription period must be positive"}
	}
	if len(plan.SubscriptionPeriod) > 0 && !slices.Contains(plan.SubscriptionPeriod, period) {
		return &ValidationError{Field: "subscriptionPeriod", Message: fmt.Sprintf("%d month period is not offered by this plan", period)}
	}

	return nil
}

func validateFrequency(plan *Plan, f Frequency) error {
	if plan.Type == PlanTypeCustom && plan.DeliveryFrequencyRange != nil && len(plan.DeliveryFrequency) == 0 {
		days, ok := f.IntervalDays()
		if !ok {
			return &ValidationError{Field: "frequency", Message: "frequency must be given as \"<N> days\""}
		}
		if !plan.DeliveryFrequencyRange.Contains(days) {
			return &ValidationError{
				Field:   "frequency",
				Message: fmt.Sprintf("frequency must be every %d to %d days", plan.DeliveryFrequencyRange.Min, plan.DeliveryFrequencyRange.Max),
			}
		}
		return nil
	}

	allowed := Options(plan).Frequencies
	if len(allowed) > 0 && !slices.Contains(allowed, f) {
		return &ValidationError{Field: "frequency", Message: fmt.Sprintf("frequency %s is not offered by this plan", f)}
	}
	return nil
}
