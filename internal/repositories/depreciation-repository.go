package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"asset-system/internal/entities"
)

const depreciationFields = `d.asset_id, d.method, d.useful_life_years, d.salvage_value, d.current_value,
	d.last_calculated_date, d.updated_at`

// DueDepreciation - запись, которую пора пересчитать, вместе с данными покупки актива.
type DueDepreciation struct {
	entities.AssetDepreciation
	TenantID     uint64
	PurchaseCost decimal.Decimal
	PurchaseDate time.Time
}

type DepreciationRepositoryInterface interface {
	FindByAsset(ctx context.Context, tx pgx.Tx, assetID uint64) (*entities.AssetDepreciation, error)
	Upsert(ctx context.Context, tx pgx.Tx, d *entities.AssetDepreciation) error
	UpdateValue(ctx context.Context, tx pgx.Tx, assetID uint64, value decimal.Decimal, calculatedAt time.Time) error
	Delete(ctx context.Context, tx pgx.Tx, assetID uint64) error
	ListDue(ctx context.Context, asOf time.Time, limit int) ([]DueDepreciation, error)
}

type DepreciationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDepreciationRepository(storage *pgxpool.Pool, logger *zap.Logger) DepreciationRepositoryInterface {
	return &DepreciationRepository{storage: storage, logger: logger}
}

func scanDepreciation(row pgx.Row, extra ...any) (*entities.AssetDepreciation, error) {
	var d entities.AssetDepreciation
	dest := []any{
		&d.AssetID, &d.Method, &d.UsefulLifeYears, &d.SalvageValue, &d.CurrentValue,
		&d.LastCalculatedDate, &d.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByAsset возвращает nil, nil, если у актива нет политики амортизации.
func (r *DepreciationRepository) FindByAsset(ctx context.Context, tx pgx.Tx, assetID uint64) (*entities.AssetDepreciation, error) {
	query := `SELECT ` + depreciationFields + ` FROM asset_depreciations d WHERE d.asset_id = $1`
	d, err := scanDepreciation(pick(r.storage, tx).QueryRow(ctx, query, assetID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return d, nil
}

func (r *DepreciationRepository) Upsert(ctx context.Context, tx pgx.Tx, d *entities.AssetDepreciation) error {
	query := `
		INSERT INTO asset_depreciations (asset_id, method, useful_life_years, salvage_value, current_value, last_calculated_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (asset_id) DO UPDATE
		SET method = EXCLUDED.method,
			useful_life_years = EXCLUDED.useful_life_years,
			salvage_value = EXCLUDED.salvage_value,
			current_value = EXCLUDED.current_value,
			last_calculated_date = EXCLUDED.last_calculated_date,
			updated_at = NOW()
		RETURNING updated_at`

	return pick(r.storage, tx).QueryRow(ctx, query,
		d.AssetID, d.Method, d.UsefulLifeYears, d.SalvageValue, d.CurrentValue, d.LastCalculatedDate,
	).Scan(&d.UpdatedAt)
}

// UpdateValue не трогает запись, если она уже посчитана на эту или более позднюю дату.
// Значение за тот же день мог записать UpdateAsset по новой стоимости, его не перезаписываем.
func (r *DepreciationRepository) UpdateValue(ctx context.Context, tx pgx.Tx, assetID uint64, value decimal.Decimal, calculatedAt time.Time) error {
	query := `
		UPDATE asset_depreciations
		SET current_value = $2, last_calculated_date = $3, updated_at = NOW()
		WHERE asset_id = $1 AND last_calculated_date < $3`

	_, err := pick(r.storage, tx).Exec(ctx, query, assetID, value, calculatedAt)
	return err
}

func (r *DepreciationRepository) Delete(ctx context.Context, tx pgx.Tx, assetID uint64) error {
	_, err := pick(r.storage, tx).Exec(ctx, `DELETE FROM asset_depreciations WHERE asset_id = $1`, assetID)
	return err
}

// ListDue - записи, не пересчитанные на дату asOf. Списанные и удалённые активы не попадают.
func (r *DepreciationRepository) ListDue(ctx context.Context, asOf time.Time, limit int) ([]DueDepreciation, error) {
	query := `
		SELECT ` + depreciationFields + `, a.tenant_id, a.purchase_cost, a.purchase_date
		FROM asset_depreciations d
			JOIN assets a ON a.id = d.asset_id
		WHERE d.last_calculated_date < $1
			AND a.status <> 'disposed' AND a.deleted_at IS NULL
		ORDER BY d.asset_id
		LIMIT $2`

	rows, err := r.storage.Query(ctx, query, asOf, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]DueDepreciation, 0)
	for rows.Next() {
		var item DueDepreciation
		d, err := scanDepreciation(rows, &item.TenantID, &item.PurchaseCost, &item.PurchaseDate)
		if err != nil {
			return nil, err
		}
		item.AssetDepreciation = *d
		list = append(list, item)
	}
	return list, rows.Err()
}
