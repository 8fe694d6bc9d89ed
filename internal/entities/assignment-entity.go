package entities

import (
	"time"

	"asset-system/pkg/types"
)

// AssetAssignment - выдача актива сотруднику. Открыта, пока CheckinDate == nil.
type AssetAssignment struct {
	ID                 uint64          `db:"id"`
	AssetID            uint64          `db:"asset_id"`
	EmployeeID         uint64          `db:"employee_id"`
	AssignedBy         uint64          `db:"assigned_by"`
	CheckoutDate       time.Time       `db:"checkout_date"`
	ExpectedReturnDate *time.Time      `db:"expected_return_date"`
	CheckinDate        *time.Time      `db:"checkin_date"`
	CheckoutCondition  AssetCondition  `db:"checkout_condition"`
	CheckinCondition   *AssetCondition `db:"checkin_condition"`
	Notes              *string         `db:"notes"`

	types.BaseEntity
}

func (a *AssetAssignment) IsOpen() bool {
	return a.CheckinDate == nil
}

// IsOverdue - открыта и ожидаемая дата возврата уже прошла.
func (a *AssetAssignment) IsOverdue(asOf time.Time) bool {
	return a.IsOpen() && a.ExpectedReturnDate != nil && a.ExpectedReturnDate.Before(asOf)
}
