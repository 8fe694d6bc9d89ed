package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"

	"asset-system/pkg/types"
)

type DepreciationPolicyDTO struct {
	Method          string          `json:"method" validate:"required,depreciation_method"`
	UsefulLifeYears int             `json:"useful_life_years" validate:"gte=0"`
	SalvageValue    decimal.Decimal `json:"salvage_value"`
}

// InitialAssignmentDTO - актив при импорте уже числится за сотрудником.
type InitialAssignmentDTO struct {
	EmployeeID         uint64      `json:"employee_id" validate:"required,gt=0"`
	CheckoutDate       *types.Date `json:"checkout_date,omitempty"`
	ExpectedReturnDate *types.Date `json:"expected_return_date,omitempty"`
	Notes              null.String `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type CreateAssetDTO struct {
	Name               string                 `json:"name" validate:"required,min=2,max=255"`
	AssetTypeID        uint64                 `json:"asset_type_id" validate:"required,gt=0"`
	SerialNumber       null.String            `json:"serial_number,omitempty" validate:"omitempty,max=100"`
	AssetCode          null.String            `json:"asset_code,omitempty" validate:"omitempty,min=2,max=64"`
	PurchaseDate       types.Date             `json:"purchase_date" validate:"required"`
	PurchaseCost       decimal.Decimal        `json:"purchase_cost" validate:"gte=0"`
	Condition          string                 `json:"condition,omitempty" validate:"omitempty,asset_condition"`
	Location           null.String            `json:"location,omitempty" validate:"omitempty,max=255"`
	Supplier           null.String            `json:"supplier,omitempty" validate:"omitempty,max=255"`
	WarrantyExpiryDate *types.Date            `json:"warranty_expiry_date,omitempty"`
	Notes              null.String            `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Depreciation       *DepreciationPolicyDTO `json:"depreciation,omitempty"`
	InitialAssignment  *InitialAssignmentDTO  `json:"initial_assignment,omitempty"`
}

// UpdateAssetDTO - частичное обновление. Статус этим запросом не меняется.
type UpdateAssetDTO struct {
	Name               null.String            `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	AssetTypeID        null.Uint64            `json:"asset_type_id,omitempty" validate:"omitempty,gt=0"`
	SerialNumber       null.String            `json:"serial_number,omitempty" validate:"omitempty,max=100"`
	AssetCode          null.String            `json:"asset_code,omitempty" validate:"omitempty,min=2,max=64"`
	PurchaseDate       *types.Date            `json:"purchase_date,omitempty"`
	PurchaseCost       decimal.NullDecimal    `json:"purchase_cost,omitempty"`
	Condition          null.String            `json:"condition,omitempty" validate:"omitempty,asset_condition"`
	Location           null.String            `json:"location,omitempty" validate:"omitempty,max=255"`
	Supplier           null.String            `json:"supplier,omitempty" validate:"omitempty,max=255"`
	WarrantyExpiryDate *types.Date            `json:"warranty_expiry_date,omitempty"`
	Notes              null.String            `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Depreciation       *DepreciationPolicyDTO `json:"depreciation,omitempty"`
	RemoveDepreciation bool                   `json:"remove_depreciation,omitempty"`

	// Принимается только чтобы явно отклонить попытку сменить статус напрямую.
	Status *string `json:"status,omitempty"`
}

type DisposeAssetDTO struct {
	Reason       null.String `json:"reason,omitempty" validate:"omitempty,max=1000"`
	DisposalDate *types.Date `json:"disposal_date,omitempty"`
}

type ShortAssetTypeDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type DepreciationDTO struct {
	Method              string          `json:"method"`
	UsefulLifeYears     int             `json:"useful_life_years"`
	SalvageValue        decimal.Decimal `json:"salvage_value"`
	CurrentValue        decimal.Decimal `json:"current_value"`
	LastCalculatedDate  string          `json:"last_calculated_date"`
	DepreciationPercent decimal.Decimal `json:"depreciation_percent"`
	AnnualRate          float64         `json:"annual_rate"`
}

type AssetDTO struct {
	ID                 uint64            `json:"id"`
	Name               string            `json:"name"`
	AssetType          ShortAssetTypeDTO `json:"asset_type"`
	SerialNumber       *string           `json:"serial_number"`
	AssetCode          string            `json:"asset_code"`
	PurchaseDate       string            `json:"purchase_date"`
	PurchaseCost       decimal.Decimal   `json:"purchase_cost"`
	CurrentValue       decimal.Decimal   `json:"current_value"`
	Status             string            `json:"status"`
	Condition          string            `json:"condition"`
	Location           *string           `json:"location"`
	Supplier           *string           `json:"supplier"`
	WarrantyExpiryDate *string           `json:"warranty_expiry_date"`
	ImageRef           *string           `json:"image_ref"`
	DocumentRef        *string           `json:"document_ref"`
	QRCodeRef          *string           `json:"qr_code_ref"`
	Notes              *string           `json:"notes"`
	Depreciation       *DepreciationDTO  `json:"depreciation,omitempty"`
	OpenAssignment     *AssignmentDTO    `json:"open_assignment,omitempty"`
	ActiveMaintenance  *MaintenanceDTO   `json:"active_maintenance,omitempty"`
	CreatedBy          uint64            `json:"created_by"`
	CreatedAt          string            `json:"created_at"`
	UpdatedAt          string            `json:"updated_at"`
}

type AssetHistoryDTO struct {
	ID        uint64  `json:"id"`
	UserID    uint64  `json:"user_id"`
	EventType string  `json:"event_type"`
	OldValue  *string `json:"old_value"`
	NewValue  *string `json:"new_value"`
	Comment   *string `json:"comment"`
	CreatedAt string  `json:"created_at"`
}

type AttachmentKind string

const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentDocument AttachmentKind = "document"
)
