package depreciation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "asset-system/pkg/errors"
)

func policy(method Method) Policy {
	return Policy{Method: method, UsefulLifeYears: 5, SalvageValue: decimal.NewFromInt(20000)}
}

var cost = decimal.NewFromInt(120000)

func TestCalculate_StraightLineHalfLife(t *testing.T) {
	got := Calculate(policy(MethodStraightLine), cost, 2.5)
	assert.True(t, got.Equal(decimal.NewFromInt(70000)), "got %s", got)
}

func TestCalculate_ReducingBalanceFirstYear(t *testing.T) {
	got := Calculate(policy(MethodReducingBalance), cost, 1)
	assert.InDelta(t, 83820, got.InexactFloat64(), 50)
	assert.InDelta(t, 0.3015, Rate(policy(MethodReducingBalance), cost), 0.001)
}

func TestCalculate_ReachesSalvageAndStays(t *testing.T) {
	for _, m := range []Method{MethodStraightLine, MethodReducingBalance} {
		p := policy(m)
		assert.True(t, Calculate(p, cost, 5).Equal(p.SalvageValue), "method %s at end of life", m)
		assert.True(t, Calculate(p, cost, 12).Equal(p.SalvageValue), "method %s after end of life", m)
	}
}

func TestCalculate_NegativeElapsedIsPurchaseCost(t *testing.T) {
	assert.True(t, Calculate(policy(MethodStraightLine), cost, -3).Equal(cost))
	assert.True(t, Calculate(policy(MethodReducingBalance), cost, 0).Equal(cost))
}

func TestCalculate_NoneKeepsCost(t *testing.T) {
	p := Policy{Method: MethodNone}
	assert.True(t, Calculate(p, cost, 3).Equal(cost))
}

func TestCalculate_ReducingBalanceZeroCost(t *testing.T) {
	p := Policy{Method: MethodReducingBalance, UsefulLifeYears: 3, SalvageValue: decimal.Zero}
	assert.True(t, Calculate(p, decimal.Zero, 1).IsZero())
}

func TestCalculate_BoundsAndMonotonicity(t *testing.T) {
	for _, m := range []Method{MethodStraightLine, MethodReducingBalance} {
		p := policy(m)
		prev := cost
		for step := 0; step <= 80; step++ {
			elapsed := float64(step) * 0.1
			v := Calculate(p, cost, elapsed)

			assert.False(t, v.LessThan(p.SalvageValue), "%s below salvage at %.1f", m, elapsed)
			assert.False(t, v.GreaterThan(cost), "%s above cost at %.1f", m, elapsed)
			assert.False(t, v.GreaterThan(prev), "%s increased at %.1f", m, elapsed)
			prev = v
		}
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	p := policy(MethodReducingBalance)
	first := Calculate(p, cost, 2.37)
	second := Calculate(p, cost, 2.37)
	assert.True(t, first.Equal(second))
}

func TestElapsedYears(t *testing.T) {
	purchase := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.0, ElapsedYears(purchase, purchase.AddDate(0, 0, -10)))
	assert.InDelta(t, 366/365.25, ElapsedYears(purchase, time.Date(2025, 1, 1, 15, 30, 0, 0, time.UTC)), 1e-9)
}

func TestValueAsOf_RefreshDoesNotDrift(t *testing.T) {
	p := policy(MethodStraightLine)
	purchase := time.Date(2022, 3, 10, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)

	once := ValueAsOf(p, cost, purchase, asOf)
	again := ValueAsOf(p, cost, purchase, asOf)
	assert.True(t, once.Equal(again))
	assert.True(t, once.LessThan(cost))
}

func TestPercentage(t *testing.T) {
	assert.True(t, Percentage(cost, decimal.NewFromInt(70000)).Equal(decimal.RequireFromString("41.67")))
	assert.True(t, Percentage(decimal.Zero, decimal.Zero).IsZero())
}

func TestValidatePolicy(t *testing.T) {
	cases := []struct {
		name  string
		p     Policy
		cost  decimal.Decimal
		field string
	}{
		{"zero life", Policy{Method: MethodStraightLine, UsefulLifeYears: 0}, cost, "useful_life_years"},
		{"negative salvage", Policy{Method: MethodStraightLine, UsefulLifeYears: 3, SalvageValue: decimal.NewFromInt(-1)}, cost, "salvage_value"},
		{"salvage above cost", Policy{Method: MethodStraightLine, UsefulLifeYears: 3, SalvageValue: decimal.NewFromInt(200000)}, cost, "salvage_value"},
		{"reducing balance without salvage", Policy{Method: MethodReducingBalance, UsefulLifeYears: 3}, cost, "salvage_value"},
		{"unknown method", Policy{Method: "sum_of_years", UsefulLifeYears: 3}, cost, "depreciation_method"},
		{"negative cost", Policy{Method: MethodStraightLine, UsefulLifeYears: 3}, decimal.NewFromInt(-5), "purchase_cost"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePolicy(tc.p, tc.cost)
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}

	assert.NoError(t, ValidatePolicy(policy(MethodReducingBalance), cost))
	assert.NoError(t, ValidatePolicy(Policy{Method: MethodStraightLine, UsefulLifeYears: 4}, cost))
}

func TestSchedule(t *testing.T) {
	p := policy(MethodStraightLine)
	lines := Schedule(p, cost, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	require.Len(t, lines, 5)
	assert.True(t, lines[0].Depreciation.Equal(decimal.NewFromInt(20000)))
	assert.True(t, lines[4].ClosingValue.Equal(p.SalvageValue))
	assert.Equal(t, 2025, lines[0].Date.Year())

	assert.Nil(t, Schedule(Policy{Method: MethodNone}, cost, time.Now()))
}
