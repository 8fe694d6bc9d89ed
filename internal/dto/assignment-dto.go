package dto

import (
	"github.com/aarondl/null/v8"

	"asset-system/pkg/types"
)

type AssignAssetDTO struct {
	EmployeeID         uint64      `json:"employee_id" validate:"required,gt=0"`
	CheckoutDate       types.Date  `json:"checkout_date" validate:"required"`
	ExpectedReturnDate *types.Date `json:"expected_return_date,omitempty"`
	CheckoutCondition  string      `json:"checkout_condition,omitempty" validate:"omitempty,asset_condition"`
	Notes              null.String `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type ReturnAssetDTO struct {
	CheckinDate      types.Date  `json:"checkin_date" validate:"required"`
	CheckinCondition string      `json:"checkin_condition,omitempty" validate:"omitempty,asset_condition"`
	Notes            null.String `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type AssignmentDTO struct {
	ID                 uint64  `json:"id"`
	AssetID            uint64  `json:"asset_id"`
	EmployeeID         uint64  `json:"employee_id"`
	EmployeeName       *string `json:"employee_name,omitempty"`
	AssignedBy         uint64  `json:"assigned_by"`
	CheckoutDate       string  `json:"checkout_date"`
	ExpectedReturnDate *string `json:"expected_return_date"`
	CheckinDate        *string `json:"checkin_date"`
	CheckoutCondition  string  `json:"checkout_condition"`
	CheckinCondition   *string `json:"checkin_condition"`
	Notes              *string `json:"notes"`
	IsOpen             bool    `json:"is_open"`
	IsOverdue          bool    `json:"is_overdue"`
}
