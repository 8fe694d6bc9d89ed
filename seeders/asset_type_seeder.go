package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// КЛЮЧИК: true - полностью очистить таблицу и записать типы с нуля.
// false - только добавить новые типы, не трогая существующие.
const fullSyncAssetTypes = false

func seedAssetTypes(ctx context.Context, db *pgxpool.Pool) error {
	log.Println("  - Наполнение таблицы 'asset_types'...")

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if fullSyncAssetTypes {
		log.Println("    - Стратегия: Полная перезапись (TRUNCATE)")
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE asset_types RESTART IDENTITY CASCADE"); err != nil {
			return err
		}
	} else {
		log.Println("    - Стратегия: Только добавление новых типов (ADDITIVE)")
	}

	query := `INSERT INTO asset_types (name, description) VALUES ($1, NULLIF($2, ''))
			  ON CONFLICT (name) DO NOTHING`

	for _, item := range assetTypesData {
		if _, err := tx.Exec(ctx, query, item.Name, item.Description); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
