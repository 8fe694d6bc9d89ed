package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"asset-system/internal/entities"
)

type AssetHistoryRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.AssetHistory) error
	FindByAssetID(ctx context.Context, assetID uint64, limit, offset int) ([]entities.AssetHistory, uint64, error)
}

type AssetHistoryRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAssetHistoryRepository(storage *pgxpool.Pool, logger *zap.Logger) AssetHistoryRepositoryInterface {
	return &AssetHistoryRepository{storage: storage, logger: logger}
}

// CreateInTx пишет событие в журнал. История только дополняется.
func (r *AssetHistoryRepository) CreateInTx(ctx context.Context, tx pgx.Tx, h *entities.AssetHistory) error {
	query := `
		INSERT INTO asset_history (asset_id, user_id, event_type, old_value, new_value, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := pick(r.storage, tx).QueryRow(ctx, query,
		h.AssetID, h.UserID, h.EventType, h.OldValue, h.NewValue, h.Comment,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		r.logger.Error("Ошибка записи истории актива", zap.Uint64("assetID", h.AssetID),
			zap.String("event", h.EventType), zap.Error(err))
		return err
	}
	return nil
}

func (r *AssetHistoryRepository) FindByAssetID(ctx context.Context, assetID uint64, limit, offset int) ([]entities.AssetHistory, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM asset_history WHERE asset_id = $1`, assetID).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.AssetHistory{}, 0, nil
	}

	query := `
		SELECT id, asset_id, user_id, event_type, old_value, new_value, comment, created_at
		FROM asset_history
		WHERE asset_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.storage.Query(ctx, query, assetID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]entities.AssetHistory, 0, limit)
	for rows.Next() {
		var h entities.AssetHistory
		if err := rows.Scan(&h.ID, &h.AssetID, &h.UserID, &h.EventType, &h.OldValue, &h.NewValue, &h.Comment, &h.CreatedAt); err != nil {
			return nil, 0, err
		}
		list = append(list, h)
	}
	return list, total, rows.Err()
}
