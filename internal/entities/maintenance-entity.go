package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"asset-system/pkg/types"
)

type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

var maintenanceTransitions = map[MaintenanceStatus][]MaintenanceStatus{
	MaintenanceScheduled:  {MaintenanceInProgress, MaintenanceCancelled},
	MaintenanceInProgress: {MaintenanceCompleted, MaintenanceCancelled},
}

func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenanceScheduled, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled:
		return true
	}
	return false
}

// IsActive - запись ещё держит актив в обслуживании.
func (s MaintenanceStatus) IsActive() bool {
	return s == MaintenanceScheduled || s == MaintenanceInProgress
}

func (s MaintenanceStatus) IsFinal() bool {
	return s == MaintenanceCompleted || s == MaintenanceCancelled
}

func (s MaintenanceStatus) CanTransitionTo(next MaintenanceStatus) bool {
	for _, allowed := range maintenanceTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type AssetMaintenance struct {
	ID              uint64            `db:"id"`
	AssetID         uint64            `db:"asset_id"`
	MaintenanceType string            `db:"maintenance_type"`
	StartDate       time.Time         `db:"start_date"`
	EndDate         *time.Time        `db:"end_date"`
	Status          MaintenanceStatus `db:"status"`
	Cost            decimal.Decimal   `db:"cost"`
	Supplier        *string           `db:"supplier"`
	Details         *string           `db:"details"`
	CompletionNotes *string           `db:"completion_notes"`
	CreatedBy       uint64            `db:"created_by"`

	types.BaseEntity
}
