package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"asset-system/internal/depreciation"
)

// AssetDepreciation - политика и последняя рассчитанная стоимость, 1:1 с активом.
type AssetDepreciation struct {
	AssetID            uint64              `db:"asset_id"`
	Method             depreciation.Method `db:"method"`
	UsefulLifeYears    int                 `db:"useful_life_years"`
	SalvageValue       decimal.Decimal     `db:"salvage_value"`
	CurrentValue       decimal.Decimal     `db:"current_value"`
	LastCalculatedDate time.Time           `db:"last_calculated_date"`
	UpdatedAt          time.Time           `db:"updated_at"`
}

func (d *AssetDepreciation) Policy() depreciation.Policy {
	return depreciation.Policy{
		Method:          d.Method,
		UsefulLifeYears: d.UsefulLifeYears,
		SalvageValue:    d.SalvageValue,
	}
}
