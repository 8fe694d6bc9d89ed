package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"asset-system/internal/entities"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

const (
	assetTypeTable  = "asset_types"
	assetTypeFields = "id, name, description, created_at, updated_at"
)

type AssetTypeRepositoryInterface interface {
	GetAssetTypes(ctx context.Context, filter types.Filter) ([]entities.AssetType, uint64, error)
	FindAssetType(ctx context.Context, id uint64) (*entities.AssetType, error)
	FindByName(ctx context.Context, tx pgx.Tx, name string) (*entities.AssetType, error)
	CreateAssetType(ctx context.Context, tx pgx.Tx, assetType *entities.AssetType) (uint64, error)
	UpdateAssetType(ctx context.Context, assetType *entities.AssetType) error
	DeleteAssetType(ctx context.Context, id uint64) error
}

type AssetTypeRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAssetTypeRepository(storage *pgxpool.Pool, logger *zap.Logger) AssetTypeRepositoryInterface {
	return &AssetTypeRepository{storage: storage, logger: logger}
}

func scanAssetType(row pgx.Row) (*entities.AssetType, error) {
	var t entities.AssetType
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *AssetTypeRepository) GetAssetTypes(ctx context.Context, filter types.Filter) ([]entities.AssetType, uint64, error) {
	base := sq.Select().From(assetTypeTable).PlaceholderFormat(sq.Dollar)
	if filter.Search != "" {
		base = base.Where(sq.ILike{"name": "%" + filter.Search + "%"})
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("count ToSql: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.AssetType{}, 0, nil
	}

	builder := base.Columns(assetTypeFields).OrderBy("name ASC")
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]entities.AssetType, 0)
	for rows.Next() {
		t, err := scanAssetType(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *t)
	}
	return list, total, rows.Err()
}

func (r *AssetTypeRepository) FindAssetType(ctx context.Context, id uint64) (*entities.AssetType, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, assetTypeFields, assetTypeTable)
	t, err := scanAssetType(r.storage.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "asset_type", id)
	}
	return t, nil
}

// FindByName ищет без учёта регистра; nil, nil - такого типа нет.
func (r *AssetTypeRepository) FindByName(ctx context.Context, tx pgx.Tx, name string) (*entities.AssetType, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE LOWER(name) = LOWER($1)`, assetTypeFields, assetTypeTable)
	t, err := scanAssetType(pick(r.storage, tx).QueryRow(ctx, query, name))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (r *AssetTypeRepository) CreateAssetType(ctx context.Context, tx pgx.Tx, t *entities.AssetType) (uint64, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`, assetTypeTable)

	err := pick(r.storage, tx).QueryRow(ctx, query, t.Name, t.Description).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.NewValidationError("name", "тип '%s' уже существует", t.Name)
		}
		return 0, err
	}
	return t.ID, nil
}

func (r *AssetTypeRepository) UpdateAssetType(ctx context.Context, t *entities.AssetType) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`, assetTypeTable)

	err := r.storage.QueryRow(ctx, query, t.ID, t.Name, t.Description).Scan(&t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewValidationError("name", "тип '%s' уже существует", t.Name)
		}
		return notFound(err, "asset_type", t.ID)
	}
	return nil
}

func (r *AssetTypeRepository) DeleteAssetType(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, assetTypeTable), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("asset_type", id)
	}
	return nil
}
