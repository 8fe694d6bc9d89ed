package depreciation

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScheduleLine - строка графика амортизации на конец очередного года эксплуатации.
type ScheduleLine struct {
	Year         int             `json:"year"`
	Date         time.Time       `json:"date"`
	OpeningValue decimal.Decimal `json:"opening_value"`
	Depreciation decimal.Decimal `json:"depreciation"`
	ClosingValue decimal.Decimal `json:"closing_value"`
}

// Schedule строит годовой график от даты покупки до конца срока полезного использования.
func Schedule(p Policy, purchaseCost decimal.Decimal, purchaseDate time.Time) []ScheduleLine {
	if p.Method == MethodNone || p.UsefulLifeYears <= 0 {
		return nil
	}

	lines := make([]ScheduleLine, 0, p.UsefulLifeYears)
	opening := purchaseCost.Round(moneyPlaces)
	for year := 1; year <= p.UsefulLifeYears; year++ {
		closing := Calculate(p, purchaseCost, float64(year))
		lines = append(lines, ScheduleLine{
			Year:         year,
			Date:         dayStart(purchaseDate).AddDate(year, 0, 0),
			OpeningValue: opening,
			Depreciation: opening.Sub(closing),
			ClosingValue: closing,
		})
		opening = closing
	}
	return lines
}
