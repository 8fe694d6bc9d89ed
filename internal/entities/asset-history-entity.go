package entities

import "time"

const (
	HistoryCreated             = "CREATED"
	HistoryUpdated             = "UPDATED"
	HistoryStatusChange        = "STATUS_CHANGE"
	HistoryAssigned            = "ASSIGNED"
	HistoryReturned            = "RETURNED"
	HistoryMaintenanceSchedule = "MAINTENANCE_SCHEDULED"
	HistoryMaintenanceStatus   = "MAINTENANCE_STATUS"
	HistoryDepreciation        = "DEPRECIATION"
	HistoryDisposed            = "DISPOSED"
	HistoryDeleted             = "DELETED"
	HistoryDocument            = "DOCUMENT"
)

type AssetHistory struct {
	ID        uint64    `db:"id"`
	AssetID   uint64    `db:"asset_id"`
	UserID    uint64    `db:"user_id"`
	EventType string    `db:"event_type"`
	OldValue  *string   `db:"old_value"`
	NewValue  *string   `db:"new_value"`
	Comment   *string   `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}
