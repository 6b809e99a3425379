package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrequencyMultiplier(t *testing.T) {
	assert.Equal(t, int64(30), FrequencyDaily.Multiplier())
	assert.Equal(t, int64(4), FrequencyWeekly.Multiplier())
	assert.Equal(t, int64(2), FrequencyBiWeekly.Multiplier())
	assert.Equal(t, int64(1), FrequencyMonthly.Multiplier())
	assert.Equal(t, int64(1), FrequencyOneTime.Multiplier())
	assert.Equal(t, int64(1), FrequencyEmergency.Multiplier())
	assert.Equal(t, int64(1), Frequency("DAILY").Multiplier())
}

func TestFrequencyIntervalDays(t *testing.T) {
	days, ok := EveryNDays(10).IntervalDays()
	assert.True(t, ok)
	assert.Equal(t, 10, days)

	_, ok = FrequencyWeekly.IntervalDays()
	assert.False(t, ok)

	_, ok = Frequency("0 days").IntervalDays()
	assert.False(t, ok)
}

func TestOptions(t *testing.T) {
	t.Run("custom ranges expand", func(t *testing.T) {
		opts := Options(&Plan{
			Type:                   PlanTypeCustom,
			CylinderSizeRange:      &Range{Min: 5, Max: 7},
			DeliveryFrequencyRange: &Range{Min: 3, Max: 4},
		})
		assert.Equal(t, []string{"5kg", "6kg", "7kg"}, opts.Sizes)
		assert.Equal(t, []Frequency{"3 days", "4 days"}, opts.Frequencies)
		assert.Equal(t, []int{1}, opts.Periods)
	})

	t.Run("preset uses base size", func(t *testing.T) {
		opts := Options(&Plan{
			Type:               PlanTypePreset,
			BaseSize:           "12kg",
			DeliveryFrequency:  []Frequency{FrequencyMonthly},
			SubscriptionPeriod: []int{1, 6, 12},
		})
		assert.Equal(t, []string{"12kg"}, opts.Sizes)
		assert.Equal(t, []Frequency{FrequencyMonthly}, opts.Frequencies)
		assert.Equal(t, []int{1, 6, 12}, opts.Periods)
	})

	t.Run("one-time is fixed", func(t *testing.T) {
		opts := Options(&Plan{Type: PlanTypeOneTime, CylinderSizes: []string{"3kg"}})
		assert.Equal(t, []Frequency{FrequencyOneTime}, opts.Frequencies)
	})

	t.Run("nil plan", func(t *testing.T) {
		assert.Empty(t, Options(nil).Sizes)
	})
}

func TestPlanJSON(t *testing.T) {
	payload := `{
		"_id": "p1",
		"name": "Family",
		"type": "preset",
		"pricePerKg": 950,
		"baseSize": "12kg",
		"deliveryFrequency": ["Weekly", "Monthly"],
		"subscriptionPeriod": [1, 3],
		"isActive": true
	}`

	var plan Plan
	require.NoError(t, json.Unmarshal([]byte(payload), &plan))
	assert.Equal(t, PlanTypePreset, plan.Type)
	assert.Equal(t, 950.0, plan.PricePerKg)
	assert.Equal(t, []Frequency{FrequencyWeekly, FrequencyMonthly}, plan.DeliveryFrequency)
}
