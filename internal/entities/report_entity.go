package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportFilter - фильтры отчёта по амортизации.
type ReportFilter struct {
	TenantID     uint64
	Statuses     []AssetStatus
	AssetTypeIDs []uint64
	Location     string
	DateFrom     *time.Time
	DateTo       *time.Time
	Page         int
	PerPage      int
}

// DepreciationReportItem - строка табличной модели, из которой строятся xlsx/pdf выгрузки.
type DepreciationReportItem struct {
	AssetID            uint64
	AssetCode          string
	Name               string
	AssetTypeName      *string
	Status             AssetStatus
	Location           *string
	PurchaseDate       time.Time
	PurchaseCost       decimal.Decimal
	Method             *string
	UsefulLifeYears    *int
	SalvageValue       decimal.NullDecimal
	CurrentValue       decimal.Decimal
	LastCalculatedDate *time.Time
}

type StatusCount struct {
	Status AssetStatus
	Count  int64
}

type TypeDistribution struct {
	AssetTypeID   uint64
	AssetTypeName string
	Count         int64
	TotalCost     decimal.Decimal
	TotalValue    decimal.Decimal
}

type ValueTotals struct {
	AssetCount   int64
	PurchaseCost decimal.Decimal
	CurrentValue decimal.Decimal
}

type UpcomingMaintenance struct {
	MaintenanceID   uint64
	AssetID         uint64
	AssetName       string
	MaintenanceType string
	StartDate       time.Time
}

type ExpiringWarranty struct {
	AssetID            uint64
	AssetName          string
	AssetCode          string
	WarrantyExpiryDate time.Time
}
