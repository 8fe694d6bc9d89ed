package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"

	"asset-system/pkg/types"
)

type ScheduleMaintenanceDTO struct {
	MaintenanceType string              `json:"maintenance_type" validate:"required,min=2,max=100"`
	StartDate       types.Date          `json:"start_date" validate:"required"`
	Cost            decimal.NullDecimal `json:"cost,omitempty" validate:"omitempty,gte=0"`
	Supplier        null.String         `json:"supplier,omitempty" validate:"omitempty,max=255"`
	Details         null.String         `json:"details,omitempty" validate:"omitempty,max=2000"`
}

type UpdateMaintenanceStatusDTO struct {
	Status          string              `json:"status" validate:"required,maintenance_status"`
	EndDate         *types.Date         `json:"end_date,omitempty"`
	Cost            decimal.NullDecimal `json:"cost,omitempty" validate:"omitempty,gte=0"`
	CompletionNotes null.String         `json:"completion_notes,omitempty" validate:"omitempty,max=2000"`
}

type MaintenanceDTO struct {
	ID              uint64          `json:"id"`
	AssetID         uint64          `json:"asset_id"`
	MaintenanceType string          `json:"maintenance_type"`
	StartDate       string          `json:"start_date"`
	EndDate         *string         `json:"end_date"`
	Status          string          `json:"status"`
	Cost            decimal.Decimal `json:"cost"`
	Supplier        *string         `json:"supplier"`
	Details         *string         `json:"details"`
	CompletionNotes *string         `json:"completion_notes"`
	CreatedBy       uint64          `json:"created_by"`
}
