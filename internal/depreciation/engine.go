// Package depreciation считает балансовую стоимость актива по политике амортизации.
// Пакет чистый: никаких обращений к БД, времени "сейчас" или логгеру.
package depreciation

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	apperrors "asset-system/pkg/errors"
)

type Method string

const (
	MethodNone            Method = "none"
	MethodStraightLine    Method = "straight_line"
	MethodReducingBalance Method = "reducing_balance"
)

const (
	daysPerYear         = 365.25
	moneyPlaces   int32 = 2
	percentPlaces int32 = 2
)

func (m Method) Valid() bool {
	switch m {
	case MethodNone, MethodStraightLine, MethodReducingBalance:
		return true
	}
	return false
}

type Policy struct {
	Method          Method
	UsefulLifeYears int
	SalvageValue    decimal.Decimal
}

// ValidatePolicy отсекает политики, на которых расчёт теряет смысл.
func ValidatePolicy(p Policy, purchaseCost decimal.Decimal) error {
	if purchaseCost.IsNegative() {
		return apperrors.NewValidationError("purchase_cost", "стоимость не может быть отрицательной")
	}
	if !p.Method.Valid() {
		return apperrors.NewValidationError("depreciation_method", "неизвестный метод '%s'", p.Method)
	}
	if p.SalvageValue.IsNegative() {
		return apperrors.NewValidationError("salvage_value", "ликвидационная стоимость не может быть отрицательной")
	}
	if p.SalvageValue.GreaterThan(purchaseCost) {
		return apperrors.NewValidationError("salvage_value", "ликвидационная стоимость больше стоимости покупки")
	}
	if p.Method == MethodNone {
		return nil
	}
	if p.UsefulLifeYears <= 0 {
		return apperrors.NewValidationError("useful_life_years", "срок полезного использования должен быть больше нуля")
	}
	// при нулевом остатке ставка равна 1 и актив списывается за первый же год
	if p.Method == MethodReducingBalance && !p.SalvageValue.IsPositive() {
		return apperrors.NewValidationError("salvage_value", "для уменьшаемого остатка ликвидационная стоимость должна быть больше нуля")
	}
	return nil
}

// ElapsedYears - дробное число лет между датами (дни / 365.25), не меньше нуля.
func ElapsedYears(from, to time.Time) float64 {
	days := math.Floor(dayStart(to).Sub(dayStart(from)).Hours() / 24)
	if days <= 0 {
		return 0
	}
	return days / daysPerYear
}

// Calculate возвращает текущую стоимость, округлённую до копеек и зажатую в [salvage, cost].
func Calculate(p Policy, purchaseCost decimal.Decimal, elapsedYears float64) decimal.Decimal {
	if p.Method == MethodNone || p.Method == "" || p.UsefulLifeYears <= 0 {
		return purchaseCost.Round(moneyPlaces)
	}

	life := float64(p.UsefulLifeYears)
	t := math.Min(math.Max(elapsedYears, 0), life)

	var value decimal.Decimal
	switch p.Method {
	case MethodStraightLine:
		depreciable := purchaseCost.Sub(p.SalvageValue)
		value = purchaseCost.Sub(depreciable.Mul(decimal.NewFromFloat(t / life)))
	case MethodReducingBalance:
		if purchaseCost.IsZero() {
			return decimal.Zero
		}
		// cost * (1 - r)^t == cost * (salvage/cost)^(t/n)
		ratio := p.SalvageValue.Div(purchaseCost).InexactFloat64()
		value = purchaseCost.Mul(decimal.NewFromFloat(math.Pow(ratio, t/life)))
	default:
		return purchaseCost.Round(moneyPlaces)
	}

	return clamp(value.Round(moneyPlaces), p.SalvageValue, purchaseCost)
}

// ValueAsOf - стоимость на дату, всегда от даты покупки, поэтому повторный расчёт не накапливает ошибку.
func ValueAsOf(p Policy, purchaseCost decimal.Decimal, purchaseDate, asOf time.Time) decimal.Decimal {
	return Calculate(p, purchaseCost, ElapsedYears(purchaseDate, asOf))
}

// Rate - годовая ставка: 1/n для линейного метода, 1-(s/c)^(1/n) для уменьшаемого остатка.
func Rate(p Policy, purchaseCost decimal.Decimal) float64 {
	if p.UsefulLifeYears <= 0 {
		return 0
	}
	switch p.Method {
	case MethodStraightLine:
		return 1 / float64(p.UsefulLifeYears)
	case MethodReducingBalance:
		if purchaseCost.IsZero() {
			return 0
		}
		ratio := p.SalvageValue.Div(purchaseCost).InexactFloat64()
		return 1 - math.Pow(ratio, 1/float64(p.UsefulLifeYears))
	}
	return 0
}

// Percentage - доля списанной стоимости в процентах.
func Percentage(purchaseCost, currentValue decimal.Decimal) decimal.Decimal {
	if purchaseCost.IsZero() {
		return decimal.Zero
	}
	return purchaseCost.Sub(currentValue).
		Div(purchaseCost).
		Mul(decimal.NewFromInt(100)).
		Round(percentPlaces)
}

func NeedsRefresh(lastCalculated, asOf time.Time) bool {
	return dayStart(lastCalculated).Before(dayStart(asOf))
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
