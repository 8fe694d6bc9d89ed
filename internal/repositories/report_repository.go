package repositories

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"asset-system/internal/entities"
)

// Все методы читают через переданную транзакцию, чтобы отчёт собирался из одного снимка.
type ReportRepositoryInterface interface {
	CountByStatus(ctx context.Context, tx pgx.Tx, tenantID uint64) ([]entities.StatusCount, error)
	GetValueTotals(ctx context.Context, tx pgx.Tx, tenantID uint64) (*entities.ValueTotals, error)
	GetTypeDistribution(ctx context.Context, tx pgx.Tx, tenantID uint64) ([]entities.TypeDistribution, error)
	GetExpiringWarranties(ctx context.Context, tx pgx.Tx, tenantID uint64, from, to time.Time) ([]entities.ExpiringWarranty, error)
	CountOverdueAssignments(ctx context.Context, tx pgx.Tx, tenantID uint64, asOf time.Time) (int64, error)
	GetDepreciationReport(ctx context.Context, tx pgx.Tx, filter entities.ReportFilter) ([]entities.DepreciationReportItem, uint64, error)
}

type reportRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewReportRepository(db *pgxpool.Pool, logger *zap.Logger) ReportRepositoryInterface {
	return &reportRepository{db: db, logger: logger}
}

func tenantAssets(tenantID uint64) sq.SelectBuilder {
	return sq.Select().
		From("assets a").
		Where(sq.Eq{"a.tenant_id": tenantID}).
		Where(sq.Eq{"a.deleted_at": nil}).
		PlaceholderFormat(sq.Dollar)
}

func (r *reportRepository) CountByStatus(ctx context.Context, tx pgx.Tx, tenantID uint64) ([]entities.StatusCount, error) {
	query, args, err := tenantAssets(tenantID).
		Columns("a.status", "COUNT(*)").
		GroupBy("a.status").
		OrderBy("a.status").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := pick(r.db, tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта по статусам: %w", err)
	}
	defer rows.Close()

	var result []entities.StatusCount
	for rows.Next() {
		var item entities.StatusCount
		if err := rows.Scan(&item.Status, &item.Count); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// GetValueTotals считает только действующие (не списанные) активы. Без политики стоимость = цена покупки.
func (r *reportRepository) GetValueTotals(ctx context.Context, tx pgx.Tx, tenantID uint64) (*entities.ValueTotals, error) {
	query, args, err := tenantAssets(tenantID).
		Columns(
			"COUNT(*)",
			"COALESCE(SUM(a.purchase_cost), 0)",
			"COALESCE(SUM(COALESCE(d.current_value, a.purchase_cost)), 0)",
		).
		LeftJoin("asset_depreciations d ON d.asset_id = a.id").
		Where(sq.NotEq{"a.status": string(entities.AssetStatusDisposed)}).
		ToSql()
	if err != nil {
		return nil, err
	}

	totals := &entities.ValueTotals{}
	err = pick(r.db, tx).QueryRow(ctx, query, args...).Scan(&totals.AssetCount, &totals.PurchaseCost, &totals.CurrentValue)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта стоимости: %w", err)
	}
	return totals, nil
}

func (r *reportRepository) GetTypeDistribution(ctx context.Context, tx pgx.Tx, tenantID uint64) ([]entities.TypeDistribution, error) {
	query, args, err := tenantAssets(tenantID).
		Columns(
			"at.id", "at.name", "COUNT(a.id)",
			"COALESCE(SUM(a.purchase_cost), 0)",
			"COALESCE(SUM(COALESCE(d.current_value, a.purchase_cost)), 0)",
		).
		Join("asset_types at ON at.id = a.asset_type_id").
		LeftJoin("asset_depreciations d ON d.asset_id = a.id").
		Where(sq.NotEq{"a.status": string(entities.AssetStatusDisposed)}).
		GroupBy("at.id", "at.name").
		OrderBy("COUNT(a.id) DESC", "at.name").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := pick(r.db, tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка распределения по типам: %w", err)
	}
	defer rows.Close()

	var result []entities.TypeDistribution
	for rows.Next() {
		var item entities.TypeDistribution
		if err := rows.Scan(&item.AssetTypeID, &item.AssetTypeName, &item.Count, &item.TotalCost, &item.TotalValue); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *reportRepository) GetExpiringWarranties(ctx context.Context, tx pgx.Tx, tenantID uint64, from, to time.Time) ([]entities.ExpiringWarranty, error) {
	query, args, err := tenantAssets(tenantID).
		Columns("a.id", "a.name", "a.asset_code", "a.warranty_expiry_date").
		Where(sq.NotEq{"a.status": string(entities.AssetStatusDisposed)}).
		Where(sq.GtOrEq{"a.warranty_expiry_date": from}).
		Where(sq.LtOrEq{"a.warranty_expiry_date": to}).
		OrderBy("a.warranty_expiry_date", "a.id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := pick(r.db, tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки гарантий: %w", err)
	}
	defer rows.Close()

	var result []entities.ExpiringWarranty
	for rows.Next() {
		var item entities.ExpiringWarranty
		if err := rows.Scan(&item.AssetID, &item.AssetName, &item.AssetCode, &item.WarrantyExpiryDate); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *reportRepository) CountOverdueAssignments(ctx context.Context, tx pgx.Tx, tenantID uint64, asOf time.Time) (int64, error) {
	query, args, err := tenantAssets(tenantID).
		Columns("COUNT(*)").
		Join("asset_assignments s ON s.asset_id = a.id").
		Where(sq.Eq{"s.checkin_date": nil}).
		Where(sq.Lt{"s.expected_return_date": asOf}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := pick(r.db, tx).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта просроченных выдач: %w", err)
	}
	return count, nil
}

func (r *reportRepository) GetDepreciationReport(ctx context.Context, tx pgx.Tx, filter entities.ReportFilter) ([]entities.DepreciationReportItem, uint64, error) {
	base := tenantAssets(filter.TenantID).
		LeftJoin("asset_types at ON at.id = a.asset_type_id").
		LeftJoin("asset_depreciations d ON d.asset_id = a.id")

	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		base = base.Where(sq.Eq{"a.status": statuses})
	}
	if len(filter.AssetTypeIDs) > 0 {
		base = base.Where(sq.Eq{"a.asset_type_id": filter.AssetTypeIDs})
	}
	if filter.Location != "" {
		base = base.Where(sq.ILike{"a.location": "%" + filter.Location + "%"})
	}
	if filter.DateFrom != nil {
		base = base.Where(sq.GtOrEq{"a.purchase_date": filter.DateFrom})
	}
	if filter.DateTo != nil {
		base = base.Where(sq.LtOrEq{"a.purchase_date": filter.DateTo})
	}

	countQuery, countArgs, err := base.Columns("COUNT(a.id)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT-запроса: %w", err)
	}
	var totalCount uint64
	if err = pick(r.db, tx).QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения COUNT-запроса: %w", err)
	}
	if totalCount == 0 {
		return []entities.DepreciationReportItem{}, 0, nil
	}

	mainBuilder := base.Columns(
		"a.id", "a.asset_code", "a.name", "at.name", "a.status", "a.location",
		"a.purchase_date", "a.purchase_cost",
		"d.method", "d.useful_life_years", "d.salvage_value",
		"COALESCE(d.current_value, a.purchase_cost)", "d.last_calculated_date",
	).OrderBy("a.id")

	if filter.PerPage > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		mainBuilder = mainBuilder.Limit(uint64(filter.PerPage)).Offset(uint64((page - 1) * filter.PerPage))
	}

	query, args, err := mainBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки основного запроса: %w", err)
	}
	rows, err := pick(r.db, tx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выполнения основного запроса: %w", err)
	}
	defer rows.Close()

	items := make([]entities.DepreciationReportItem, 0)
	for rows.Next() {
		var item entities.DepreciationReportItem
		err := rows.Scan(
			&item.AssetID, &item.AssetCode, &item.Name, &item.AssetTypeName, &item.Status, &item.Location,
			&item.PurchaseDate, &item.PurchaseCost,
			&item.Method, &item.UsefulLifeYears, &item.SalvageValue,
			&item.CurrentValue, &item.LastCalculatedDate,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, totalCount, nil
}
