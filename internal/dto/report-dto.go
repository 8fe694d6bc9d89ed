package dto

import (
	"github.com/shopspring/decimal"
)

type DashboardFilter struct {
	HorizonDays int `query:"horizon_days" validate:"omitempty,gte=1,lte=365"`
}

type TypeDistributionDTO struct {
	AssetTypeID   uint64          `json:"asset_type_id"`
	AssetTypeName string          `json:"asset_type_name"`
	Count         int64           `json:"count"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	TotalValue    decimal.Decimal `json:"total_value"`
}

type UpcomingMaintenanceDTO struct {
	MaintenanceID   uint64 `json:"maintenance_id"`
	AssetID         uint64 `json:"asset_id"`
	AssetName       string `json:"asset_name"`
	MaintenanceType string `json:"maintenance_type"`
	StartDate       string `json:"start_date"`
}

type ExpiringWarrantyDTO struct {
	AssetID            uint64 `json:"asset_id"`
	AssetName          string `json:"asset_name"`
	AssetCode          string `json:"asset_code"`
	WarrantyExpiryDate string `json:"warranty_expiry_date"`
	DaysLeft           int    `json:"days_left"`
}

type DashboardSummaryDTO struct {
	TotalAssets         int64                    `json:"total_assets"`
	CountsByStatus      map[string]int64         `json:"counts_by_status"`
	TotalPurchaseCost   decimal.Decimal          `json:"total_purchase_cost"`
	TotalCurrentValue   decimal.Decimal          `json:"total_current_value"`
	TotalDepreciation   decimal.Decimal          `json:"total_depreciation"`
	DepreciationPercent decimal.Decimal          `json:"depreciation_percent"`
	ByType              []TypeDistributionDTO    `json:"by_type"`
	UpcomingMaintenance []UpcomingMaintenanceDTO `json:"upcoming_maintenance"`
	ExpiringWarranties  []ExpiringWarrantyDTO    `json:"expiring_warranties"`
	OverdueAssignments  int64                    `json:"overdue_assignments"`
	HorizonDays         int                      `json:"horizon_days"`
	GeneratedAt         string                   `json:"generated_at"`
}

type DepreciationReportItemDTO struct {
	AssetID             uint64          `json:"asset_id"`
	AssetCode           string          `json:"asset_code"`
	Name                string          `json:"name"`
	AssetTypeName       string          `json:"asset_type_name"`
	Status              string          `json:"status"`
	Location            string          `json:"location"`
	PurchaseDate        string          `json:"purchase_date"`
	PurchaseCost        decimal.Decimal `json:"purchase_cost"`
	Method              string          `json:"method"`
	UsefulLifeYears     int             `json:"useful_life_years"`
	SalvageValue        decimal.Decimal `json:"salvage_value"`
	CurrentValue        decimal.Decimal `json:"current_value"`
	Depreciation        decimal.Decimal `json:"depreciation"`
	DepreciationPercent decimal.Decimal `json:"depreciation_percent"`
}

type ImportRowErrorDTO struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResultDTO struct {
	Created int                 `json:"created"`
	Skipped int                 `json:"skipped"`
	Failed  int                 `json:"failed"`
	Errors  []ImportRowErrorDTO `json:"errors,omitempty"`
}
