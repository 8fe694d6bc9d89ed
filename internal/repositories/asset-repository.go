package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

const assetTable = "assets"
const assetFields = "a.id, a.tenant_id, a.name, a.asset_type_id, a.serial_number, a.asset_code, a.purchase_date, a.purchase_cost, a.status, a.condition, a.location, a.supplier, a.warranty_expiry_date, a.image_ref, a.document_ref, a.qr_code_ref, a.notes, a.created_by, a.created_at, a.updated_at, a.deleted_at"
const assetTypeJoinField = "at.name"

var assetAllowedFilters = map[string]string{
	"status":        "a.status",
	"condition":     "a.condition",
	"asset_type_id": "a.asset_type_id",
	"location":      "a.location",
}

var assetAllowedSort = map[string]string{
	"name":          "a.name",
	"purchase_date": "a.purchase_date",
	"purchase_cost": "a.purchase_cost",
	"created_at":    "a.created_at",
	"status":        "a.status",
}

type AssetRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, asset *entities.Asset) (uint64, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Asset, error)
	FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Asset, error)
	Update(ctx context.Context, tx pgx.Tx, asset *entities.Asset) error
	TransitionStatus(ctx context.Context, tx pgx.Tx, id uint64, from, to entities.AssetStatus) error
	SoftDelete(ctx context.Context, tx pgx.Tx, id uint64) error
	List(ctx context.Context, tenantID uint64, filter types.Filter) ([]entities.Asset, uint64, error)
	ExistsWithType(ctx context.Context, assetTypeID uint64) (bool, error)
}

type AssetRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAssetRepository(storage *pgxpool.Pool, logger *zap.Logger) AssetRepositoryInterface {
	return &AssetRepository{storage: storage, logger: logger}
}

func scanAsset(row pgx.Row, withValue bool) (*entities.Asset, error) {
	var a entities.Asset
	dest := []any{
		&a.ID, &a.TenantID, &a.Name, &a.AssetTypeID, &a.SerialNumber, &a.AssetCode,
		&a.PurchaseDate, &a.PurchaseCost, &a.Status, &a.Condition, &a.Location, &a.Supplier,
		&a.WarrantyExpiryDate, &a.ImageRef, &a.DocumentRef, &a.QRCodeRef, &a.Notes, &a.CreatedBy,
		&a.CreatedAt, &a.UpdatedAt, &a.DeletedAt,
		&a.AssetTypeName,
	}
	if withValue {
		dest = append(dest, &a.CurrentValue)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssetRepository) Create(ctx context.Context, tx pgx.Tx, asset *entities.Asset) (uint64, error) {
	query := `
		INSERT INTO assets (tenant_id, name, asset_type_id, serial_number, asset_code, purchase_date, purchase_cost,
			status, condition, location, supplier, warranty_expiry_date, image_ref, document_ref, qr_code_ref, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at`

	err := pick(r.storage, tx).QueryRow(ctx, query,
		asset.TenantID, asset.Name, asset.AssetTypeID, asset.SerialNumber, asset.AssetCode,
		asset.PurchaseDate, asset.PurchaseCost, asset.Status, asset.Condition, asset.Location,
		asset.Supplier, asset.WarrantyExpiryDate, asset.ImageRef, asset.DocumentRef, asset.QRCodeRef,
		asset.Notes, asset.CreatedBy,
	).Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.NewDuplicateError("asset_code", "код '%s' уже используется", asset.AssetCode)
		}
		return 0, err
	}
	return asset.ID, nil
}

func (r *AssetRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s a
			LEFT JOIN asset_types at ON at.id = a.asset_type_id
		WHERE a.id = $1 AND a.deleted_at IS NULL`,
		assetFields, assetTypeJoinField, assetTable)

	asset, err := scanAsset(pick(r.storage, tx).QueryRow(ctx, query, id), false)
	if err != nil {
		return nil, notFound(err, "asset", id)
	}
	return asset, nil
}

// FindForUpdate блокирует строку актива до конца транзакции.
func (r *AssetRepository) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Asset, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s
		FROM %s a
			LEFT JOIN asset_types at ON at.id = a.asset_type_id
		WHERE a.id = $1 AND a.deleted_at IS NULL
		FOR UPDATE OF a`,
		assetFields, assetTypeJoinField, assetTable)

	asset, err := scanAsset(pick(r.storage, tx).QueryRow(ctx, query, id), false)
	if err != nil {
		return nil, notFound(err, "asset", id)
	}
	return asset, nil
}

// Update пишет все поля, кроме статуса. Статус меняется только через TransitionStatus.
func (r *AssetRepository) Update(ctx context.Context, tx pgx.Tx, asset *entities.Asset) error {
	query := `
		UPDATE assets
		SET name = $2, asset_type_id = $3, serial_number = $4, asset_code = $5, purchase_date = $6,
			purchase_cost = $7, condition = $8, location = $9, supplier = $10, warranty_expiry_date = $11,
			image_ref = $12, document_ref = $13, qr_code_ref = $14, notes = $15, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := pick(r.storage, tx).Exec(ctx, query,
		asset.ID, asset.Name, asset.AssetTypeID, asset.SerialNumber, asset.AssetCode, asset.PurchaseDate,
		asset.PurchaseCost, asset.Condition, asset.Location, asset.Supplier, asset.WarrantyExpiryDate,
		asset.ImageRef, asset.DocumentRef, asset.QRCodeRef, asset.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewDuplicateError("asset_code", "код '%s' уже используется", asset.AssetCode)
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("asset", asset.ID)
	}
	return nil
}

// TransitionStatus - compare-and-swap: обновляет статус, только если он всё ещё равен from.
func (r *AssetRepository) TransitionStatus(ctx context.Context, tx pgx.Tx, id uint64, from, to entities.AssetStatus) error {
	query := `
		UPDATE assets SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2 AND deleted_at IS NULL`

	result, err := pick(r.storage, tx).Exec(ctx, query, id, from, to)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		r.logger.Warn("TransitionStatus: статус актива изменился параллельно",
			zap.Uint64("assetID", id), zap.String("from", string(from)), zap.String("to", string(to)))
		return apperrors.NewConcurrencyConflictError("asset", id)
	}
	return nil
}

func (r *AssetRepository) SoftDelete(ctx context.Context, tx pgx.Tx, id uint64) error {
	query := `UPDATE assets SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`

	result, err := pick(r.storage, tx).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("asset", id)
	}
	return nil
}

func (r *AssetRepository) List(ctx context.Context, tenantID uint64, filter types.Filter) ([]entities.Asset, uint64, error) {
	base := sq.Select().
		From(assetTable+" a").
		LeftJoin("asset_types at ON at.id = a.asset_type_id").
		Where(sq.Eq{"a.tenant_id": tenantID}).
		Where("a.deleted_at IS NULL").
		PlaceholderFormat(sq.Dollar)

	base = applyAssetFilter(base, filter)

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("count ToSql: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count query failed: %w", err)
	}
	if total == 0 {
		return []entities.Asset{}, 0, nil
	}

	// стоимость из последнего расчёта, без политики - цена покупки
	dataBuilder := base.Columns(assetFields, assetTypeJoinField, "COALESCE(d.current_value, a.purchase_cost)").
		LeftJoin("asset_depreciations d ON d.asset_id = a.id")
	dataBuilder = applyAssetSort(dataBuilder, filter.Sort)
	if filter.WithPagination && filter.Limit > 0 {
		dataBuilder = dataBuilder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	sqlQuery, args, err := dataBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ToSql for assets: %w", err)
	}
	r.logger.Debug("AssetRepository.List", zap.String("query", sqlQuery))

	rows, err := r.storage.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	assets := make([]entities.Asset, 0, filter.Limit)
	for rows.Next() {
		asset, err := scanAsset(rows, true)
		if err != nil {
			return nil, 0, err
		}
		assets = append(assets, *asset)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return assets, total, nil
}

func applyAssetFilter(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	for key, raw := range filter.Filter {
		column, ok := assetAllowedFilters[key]
		if !ok {
			continue
		}
		values := strings.Split(fmt.Sprint(raw), ",")
		if key == "asset_type_id" {
			ids := make([]uint64, 0, len(values))
			for _, v := range values {
				if id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
					ids = append(ids, id)
				}
			}
			builder = builder.Where(sq.Eq{column: ids})
			continue
		}
		if len(values) == 1 {
			builder = builder.Where(sq.Eq{column: values[0]})
		} else {
			builder = builder.Where(sq.Eq{column: values})
		}
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"a.name": pattern},
			sq.ILike{"a.serial_number": pattern},
			sq.ILike{"a.asset_code": pattern},
		})
	}
	return builder
}

func applyAssetSort(builder sq.SelectBuilder, sort map[string]string) sq.SelectBuilder {
	if len(sort) == 0 {
		return builder.OrderBy("a.id DESC")
	}
	for field, direction := range sort {
		if column, ok := assetAllowedSort[field]; ok {
			builder = builder.OrderBy(column + " " + strings.ToUpper(direction))
		}
	}
	return builder.OrderBy("a.id DESC")
}

func (r *AssetRepository) ExistsWithType(ctx context.Context, assetTypeID uint64) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM assets WHERE asset_type_id = $1 AND deleted_at IS NULL)`,
		assetTypeID,
	).Scan(&exists)
	return exists, err
}
