package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
)

const maintenanceFields = `m.id, m.asset_id, m.maintenance_type, m.start_date, m.end_date, m.status, m.cost,
	m.supplier, m.details, m.completion_notes, m.created_by, m.created_at, m.updated_at`

type MaintenanceRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, maintenance *entities.AssetMaintenance) (uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.AssetMaintenance, error)
	FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.AssetMaintenance, error)
	FindActiveByAsset(ctx context.Context, tx pgx.Tx, assetID uint64) (*entities.AssetMaintenance, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, maintenance *entities.AssetMaintenance, from entities.MaintenanceStatus) error
	ListByAsset(ctx context.Context, tx pgx.Tx, assetID uint64) ([]entities.AssetMaintenance, error)
	ListUpcoming(ctx context.Context, tx pgx.Tx, tenantID uint64, from, to time.Time) ([]entities.UpcomingMaintenance, error)
}

type MaintenanceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewMaintenanceRepository(storage *pgxpool.Pool, logger *zap.Logger) MaintenanceRepositoryInterface {
	return &MaintenanceRepository{storage: storage, logger: logger}
}

func scanMaintenance(row pgx.Row) (*entities.AssetMaintenance, error) {
	var m entities.AssetMaintenance
	err := row.Scan(
		&m.ID, &m.AssetID, &m.MaintenanceType, &m.StartDate, &m.EndDate, &m.Status, &m.Cost,
		&m.Supplier, &m.Details, &m.CompletionNotes, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create падает с ConcurrencyConflictError, если у актива уже есть активное обслуживание.
func (r *MaintenanceRepository) Create(ctx context.Context, tx pgx.Tx, m *entities.AssetMaintenance) (uint64, error) {
	query := `
		INSERT INTO asset_maintenances (asset_id, maintenance_type, start_date, end_date, status, cost,
			supplier, details, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := pick(r.storage, tx).QueryRow(ctx, query,
		m.AssetID, m.MaintenanceType, m.StartDate, m.EndDate, m.Status, m.Cost, m.Supplier, m.Details, m.CreatedBy,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "asset", m.AssetID)
	}
	return m.ID, nil
}

func (r *MaintenanceRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.AssetMaintenance, error) {
	query := `SELECT ` + maintenanceFields + ` FROM asset_maintenances m WHERE m.id = $1`
	m, err := scanMaintenance(pick(r.storage, tx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "maintenance", id)
	}
	return m, nil
}

func (r *MaintenanceRepository) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.AssetMaintenance, error) {
	query := `SELECT ` + maintenanceFields + ` FROM asset_maintenances m WHERE m.id = $1 FOR UPDATE`
	m, err := scanMaintenance(pick(r.storage, tx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "maintenance", id)
	}
	return m, nil
}

// FindActiveByAsset возвращает nil, nil, если активного обслуживания нет.
func (r *MaintenanceRepository) FindActiveByAsset(ctx context.Context, tx pgx.Tx, assetID uint64) (*entities.AssetMaintenance, error) {
	query := `SELECT ` + maintenanceFields + `
		FROM asset_maintenances m
		WHERE m.asset_id = $1 AND m.status IN ('scheduled', 'in_progress')`
	m, err := scanMaintenance(pick(r.storage, tx).QueryRow(ctx, query, assetID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// UpdateStatus - compare-and-swap по статусу: запись меняется, только если статус всё ещё равен from.
func (r *MaintenanceRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, m *entities.AssetMaintenance, from entities.MaintenanceStatus) error {
	query := `
		UPDATE asset_maintenances
		SET status = $3, end_date = $4, cost = $5, completion_notes = COALESCE($6, completion_notes), updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at`

	err := pick(r.storage, tx).QueryRow(ctx, query,
		m.ID, from, m.Status, m.EndDate, m.Cost, m.CompletionNotes,
	).Scan(&m.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Warn("UpdateStatus: статус обслуживания изменился параллельно",
				zap.Uint64("maintenanceID", m.ID), zap.String("from", string(from)))
			return apperrors.NewConcurrencyConflictError("maintenance", m.ID)
		}
		return err
	}
	return nil
}

func (r *MaintenanceRepository) ListByAsset(ctx context.Context, tx pgx.Tx, assetID uint64) ([]entities.AssetMaintenance, error) {
	query := `SELECT ` + maintenanceFields + ` FROM asset_maintenances m WHERE m.asset_id = $1 ORDER BY m.start_date DESC, m.id DESC`
	rows, err := pick(r.storage, tx).Query(ctx, query, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]entities.AssetMaintenance, 0)
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

// ListUpcoming - запланированные обслуживания с датой начала в [from, to].
func (r *MaintenanceRepository) ListUpcoming(ctx context.Context, tx pgx.Tx, tenantID uint64, from, to time.Time) ([]entities.UpcomingMaintenance, error) {
	query := `
		SELECT m.id, m.asset_id, a.name, m.maintenance_type, m.start_date
		FROM asset_maintenances m
			JOIN assets a ON a.id = m.asset_id
		WHERE a.tenant_id = $1 AND a.deleted_at IS NULL
			AND m.status = 'scheduled' AND m.start_date BETWEEN $2 AND $3
		ORDER BY m.start_date, m.id`

	rows, err := pick(r.storage, tx).Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]entities.UpcomingMaintenance, 0)
	for rows.Next() {
		var u entities.UpcomingMaintenance
		if err := rows.Scan(&u.MaintenanceID, &u.AssetID, &u.AssetName, &u.MaintenanceType, &u.StartDate); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
