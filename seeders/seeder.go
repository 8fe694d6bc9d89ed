package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"asset-system/pkg/types"
)

// SeedDictionaries наполняет справочник типов активов.
func SeedDictionaries(db *pgxpool.Pool) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения справочников...")

	if err := seedAssetTypes(ctx, db); err != nil {
		log.Fatalf("❌ Ошибка наполнения Типов активов (AssetTypes): %v", err)
	}
	log.Println("✅ Наполнение справочников завершено!")
}

// SeedDemo создаёт демонстрационные активы от имени пользователя actor.
func SeedDemo(db *pgxpool.Pool, actor types.Actor) {
	ctx := context.Background()
	log.Println("▶️  Запуск создания демо-данных...")

	if err := seedDemoAssets(ctx, db, actor); err != nil {
		log.Fatalf("❌ Ошибка создания демо-активов: %v", err)
	}
	log.Println("✅ Демо-данные готовы!")
}
