package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"asset-system/pkg/types"
)

type AssetStatus string

const (
	AssetStatusAvailable        AssetStatus = "available"
	AssetStatusAssigned         AssetStatus = "assigned"
	AssetStatusUnderMaintenance AssetStatus = "under_maintenance"
	AssetStatusDisposed         AssetStatus = "disposed"
)

func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusAvailable, AssetStatusAssigned, AssetStatusUnderMaintenance, AssetStatusDisposed:
		return true
	}
	return false
}

type AssetCondition string

const (
	ConditionNew  AssetCondition = "new"
	ConditionGood AssetCondition = "good"
	ConditionFair AssetCondition = "fair"
	ConditionPoor AssetCondition = "poor"
)

func (c AssetCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

type Asset struct {
	ID                 uint64          `db:"id"`
	TenantID           uint64          `db:"tenant_id"`
	Name               string          `db:"name"`
	AssetTypeID        uint64          `db:"asset_type_id"`
	SerialNumber       *string         `db:"serial_number"`
	AssetCode          string          `db:"asset_code"`
	PurchaseDate       time.Time       `db:"purchase_date"`
	PurchaseCost       decimal.Decimal `db:"purchase_cost"`
	Status             AssetStatus     `db:"status"`
	Condition          AssetCondition  `db:"condition"`
	Location           *string         `db:"location"`
	Supplier           *string         `db:"supplier"`
	WarrantyExpiryDate *time.Time      `db:"warranty_expiry_date"`
	ImageRef           *string         `db:"image_ref"`
	DocumentRef        *string         `db:"document_ref"`
	QRCodeRef          *string         `db:"qr_code_ref"`
	Notes              *string         `db:"notes"`
	CreatedBy          uint64          `db:"created_by"`

	types.BaseEntity
	types.SoftDelete

	// Связанные данные (не колонки таблицы)
	AssetTypeName *string          `db:"-"`
	CurrentValue  *decimal.Decimal `db:"-"`
}

func (a *Asset) IsDisposed() bool {
	return a.Status == AssetStatusDisposed
}
