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

const assignmentFields = `s.id, s.asset_id, s.employee_id, s.assigned_by, s.checkout_date, s.expected_return_date,
	s.checkin_date, s.checkout_condition, s.checkin_condition, s.notes, s.created_at, s.updated_at`

type AssignmentRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, assignment *entities.AssetAssignment) (uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.AssetAssignment, error)
	FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.AssetAssignment, error)
	FindOpenByAsset(ctx context.Context, tx pgx.Tx, assetID uint64) (*entities.AssetAssignment, error)
	Close(ctx context.Context, tx pgx.Tx, assignment *entities.AssetAssignment) error
	ListByAsset(ctx context.Context, tx pgx.Tx, assetID uint64) ([]entities.AssetAssignment, error)
	ListOpenByEmployee(ctx context.Context, tenantID, employeeID uint64) ([]entities.AssetAssignment, error)
	ListOverdue(ctx context.Context, tenantID uint64, asOf time.Time) ([]entities.AssetAssignment, error)
}

type AssignmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAssignmentRepository(storage *pgxpool.Pool, logger *zap.Logger) AssignmentRepositoryInterface {
	return &AssignmentRepository{storage: storage, logger: logger}
}

func scanAssignment(row pgx.Row) (*entities.AssetAssignment, error) {
	var a entities.AssetAssignment
	err := row.Scan(
		&a.ID, &a.AssetID, &a.EmployeeID, &a.AssignedBy, &a.CheckoutDate, &a.ExpectedReturnDate,
		&a.CheckinDate, &a.CheckoutCondition, &a.CheckinCondition, &a.Notes, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAssignments(rows pgx.Rows) ([]entities.AssetAssignment, error) {
	defer rows.Close()
	list := make([]entities.AssetAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *a)
	}
	return list, rows.Err()
}

// Create падает с ConcurrencyConflictError, если у актива уже есть открытая выдача (частичный уникальный индекс).
func (r *AssignmentRepository) Create(ctx context.Context, tx pgx.Tx, a *entities.AssetAssignment) (uint64, error) {
	query := `
		INSERT INTO asset_assignments (asset_id, employee_id, assigned_by, checkout_date, expected_return_date,
			checkout_condition, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := pick(r.storage, tx).QueryRow(ctx, query,
		a.AssetID, a.EmployeeID, a.AssignedBy, a.CheckoutDate, a.ExpectedReturnDate, a.CheckoutCondition, a.Notes,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return 0, mapWriteError(err, "asset", a.AssetID)
	}
	return a.ID, nil
}

func (r *AssignmentRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.AssetAssignment, error) {
	query := `SELECT ` + assignmentFields + ` FROM asset_assignments s WHERE s.id = $1`
	a, err := scanAssignment(pick(r.storage, tx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "assignment", id)
	}
	return a, nil
}

func (r *AssignmentRepository) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.AssetAssignment, error) {
	query := `SELECT ` + assignmentFields + ` FROM asset_assignments s WHERE s.id = $1 FOR UPDATE`
	a, err := scanAssignment(pick(r.storage, tx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "assignment", id)
	}
	return a, nil
}

// FindOpenByAsset возвращает nil, nil, если открытой выдачи нет.
func (r *AssignmentRepository) FindOpenByAsset(ctx context.Context, tx pgx.Tx, assetID uint64) (*entities.AssetAssignment, error) {
	query := `SELECT ` + assignmentFields + ` FROM asset_assignments s WHERE s.asset_id = $1 AND s.checkin_date IS NULL`
	a, err := scanAssignment(pick(r.storage, tx).QueryRow(ctx, query, assetID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// Close закрывает выдачу; закрытая запись больше не меняется.
func (r *AssignmentRepository) Close(ctx context.Context, tx pgx.Tx, a *entities.AssetAssignment) error {
	query := `
		UPDATE asset_assignments
		SET checkin_date = $2, checkin_condition = $3, notes = COALESCE($4, notes), updated_at = NOW()
		WHERE id = $1 AND checkin_date IS NULL`

	result, err := pick(r.storage, tx).Exec(ctx, query, a.ID, a.CheckinDate, a.CheckinCondition, a.Notes)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewConcurrencyConflictError("assignment", a.ID)
	}
	return nil
}

func (r *AssignmentRepository) ListByAsset(ctx context.Context, tx pgx.Tx, assetID uint64) ([]entities.AssetAssignment, error) {
	query := `SELECT ` + assignmentFields + ` FROM asset_assignments s WHERE s.asset_id = $1 ORDER BY s.checkout_date DESC, s.id DESC`
	rows, err := pick(r.storage, tx).Query(ctx, query, assetID)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func (r *AssignmentRepository) ListOpenByEmployee(ctx context.Context, tenantID, employeeID uint64) ([]entities.AssetAssignment, error) {
	query := `
		SELECT ` + assignmentFields + `
		FROM asset_assignments s
			JOIN assets a ON a.id = s.asset_id
		WHERE a.tenant_id = $1 AND s.employee_id = $2 AND s.checkin_date IS NULL AND a.deleted_at IS NULL
		ORDER BY s.checkout_date`
	rows, err := r.storage.Query(ctx, query, tenantID, employeeID)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

func (r *AssignmentRepository) ListOverdue(ctx context.Context, tenantID uint64, asOf time.Time) ([]entities.AssetAssignment, error) {
	query := `
		SELECT ` + assignmentFields + `
		FROM asset_assignments s
			JOIN assets a ON a.id = s.asset_id
		WHERE a.tenant_id = $1 AND s.checkin_date IS NULL AND s.expected_return_date < $2 AND a.deleted_at IS NULL
		ORDER BY s.expected_return_date`
	rows, err := r.storage.Query(ctx, query, tenantID, asOf)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}
