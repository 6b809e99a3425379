package pricing

import (
	"fmt"
	"strconv"
	"strings"
)

// PlanType identifies how a plan constrains its options
type PlanType string

const (
	PlanTypePreset    PlanType = "preset"
	PlanTypeCustom    PlanType = "custom"
	PlanTypeOneTime   PlanType = "one-time"
	PlanTypeEmergency PlanType = "emergency"
)

// Frequency is a delivery cadence label as sent by the platform
type Frequency string

const (
	FrequencyDaily     Frequency = "Daily"
	FrequencyWeekly    Frequency = "Weekly"
	FrequencyBiWeekly  Frequency = "Bi-weekly"
	FrequencyMonthly   Frequency = "Monthly"
	FrequencyOneTime   Frequency = "One-Time"
	FrequencyEmergency Frequency = "Emergency"
)

// DefaultSubscriptionPeriod is used when a selection leaves the period unset
const DefaultSubscriptionPeriod = 1

// EveryNDays returns the custom-plan frequency label for an interval in days
func EveryNDays(n int) Frequency {
	return Frequency(fmt.Sprintf("%d days", n))
}

// Multiplier returns the number of deliveries per month for the frequency.
// Matching is exact; unknown labels count as one delivery.
func (f Frequency) Multiplier() int64 {
	switch f {
	case FrequencyDaily:
		return 30
	case FrequencyWeekly:
		return 4
	case FrequencyBiWeekly:
		return 2
	default:
		return 1
	}
}

// IntervalDays parses a custom "<N> days" label
func (f Frequency) IntervalDays() (int, bool) {
	s := strings.TrimSpace(string(f))
	num, ok := strings.CutSuffix(s, " days")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// Range is an inclusive numeric bound
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether v lies within the range
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// Plan is a subscription offering defined by the platform
type Plan struct {
	ID                     string      `json:"_id"`
	Name                   string      `json:"name"`
	Description            string      `json:"description,omitempty"`
	Type                   PlanType    `json:"type"`
	PricePerKg             float64     `json:"pricePerKg"`
	BaseSize               string      `json:"baseSize,omitempty"`
	CylinderSizeRange      *Range      `json:"cylinderSizeRange,omitempty"`
	CylinderSizes          []string    `json:"cylinderSizes,omitempty"`
	DeliveryFrequency      []Frequency `json:"deliveryFrequency,omitempty"`
	DeliveryFrequencyRange *Range      `json:"deliveryFrequencyRange,omitempty"`
	SubscriptionPeriod     []int       `json:"subscriptionPeriod,omitempty"`
	IsActive               bool        `json:"isActive"`
}

// Selection is the customer's choice of options for a plan
type Selection struct {
	Size               string    `json:"size"`
	Frequency          Frequency `json:"frequency"`
	SubscriptionPeriod int       `json:"subscriptionPeriod,omitempty"`
}

// Period returns the selected period in months, applying the default when unset
func (s Selection) Period() int {
	if s.SubscriptionPeriod == 0 {
		return DefaultSubscriptionPeriod
	}
	return s.SubscriptionPeriod
}

// Price computes the total price of the selection against plan
func (s Selection) Price(plan *Plan) (int64, error) {
	return CalculatePrice(plan, s.Size, s.Frequency, s.Period())
}

// PlanOptions lists the values a customer may pick for a plan
type PlanOptions struct {
	Sizes       []string    `json:"sizes"`
	Frequencies []Frequency `json:"frequencies"`
	Periods     []int       `json:"periods"`
}

// Options expands a plan's constraints into concrete option lists
func Options(plan *Plan) PlanOptions {
	var opts PlanOptions
	if plan == nil {
		return opts
	}

	switch {
	case len(plan.CylinderSizes) > 0:
		opts.Sizes = append(opts.Sizes, plan.CylinderSizes...)
	case plan.CylinderSizeRange != nil:
		for kg := plan.CylinderSizeRange.Min; kg <= plan.CylinderSizeRange.Max; kg++ {
			opts.Sizes = append(opts.Sizes, fmt.Sprintf("%dkg", kg))
		}
	case plan.BaseSize != "":
		opts.Sizes = []string{plan.BaseSize}
	}

	switch plan.Type {
	case PlanTypeOneTime:
		opts.Frequencies = []Frequency{FrequencyOneTime}
	case PlanTypeEmergency:
		opts.Frequencies = []Frequency{FrequencyEmergency}
	default:
		if len(plan.DeliveryFrequency) > 0 {
			opts.Frequencies = append(opts.Frequencies, plan.DeliveryFrequency...)
		} else if plan.DeliveryFrequencyRange != nil {
			for d := plan.DeliveryFrequencyRange.Min; d <= plan.DeliveryFrequencyRange.Max; d++ {
				opts.Frequencies = append(opts.Frequencies, EveryNDays(d))
			}
		}
	}

	if len(plan.SubscriptionPeriod) > 0 {
		opts.Periods = append(opts.Periods, plan.SubscriptionPeriod...)
	} else {
		opts.Periods = []int{DefaultSubscriptionPeriod}
	}

	return opts
}
