package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"asset-system/migrations"
	"asset-system/pkg/config"
	"asset-system/pkg/database/postgresql"
	"asset-system/pkg/service"
	"asset-system/pkg/types"
	"asset-system/seeders"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runTypes := flag.Bool("types", false, "Наполнить справочник типов активов")
	runDemo := flag.Bool("demo", false, "Создать демо-активы (нужен -types)")
	runAll := flag.Bool("all", false, "Запустить все сидеры (эквивалентно -types -demo)")
	issueToken := flag.Bool("token", false, "Выпустить access-токен для пользователя -user в тенанте -tenant")
	userID := flag.Uint64("user", 1, "ID пользователя для -demo и -token")
	tenantID := flag.Uint64("tenant", 1, "ID тенанта для -demo и -token")

	flag.Parse()

	if !*runTypes && !*runDemo && !*runAll && !*issueToken {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Примеры использования:")
		log.Println("  go run ./seeders/cmd/seed -types")
		log.Println("  go run ./seeders/cmd/seed -all -tenant 2")
		log.Println("  go run ./seeders/cmd/seed -token -user 1 -tenant 1")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	actor := types.Actor{UserID: *userID, TenantID: *tenantID}

	if *issueToken {
		jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL, zap.NewNop())
		access, _, err := jwtSvc.GenerateTokens(actor.UserID, actor.TenantID)
		if err != nil {
			log.Fatalf("❌ Не удалось выпустить токен: %v", err)
		}
		log.Println("🔑 Access-токен:")
		log.Println(access)
		if !*runTypes && !*runDemo && !*runAll {
			return
		}
	}

	ctx := context.Background()
	logger := zap.NewNop()
	log.Println("📦 Используется DSN:", cfg.Postgres.DSN)
	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer dbPool.Close()

	// сидеры работают и на пустой базе
	if err := migrations.Up(ctx, dbPool, logger); err != nil {
		log.Fatalf("❌ %v", err)
	}

	log.Println("======================================================")

	if *runAll || *runTypes {
		seeders.SeedDictionaries(dbPool)
		log.Println("======================================================")
	}

	if *runAll || *runDemo {
		seeders.SeedDemo(dbPool, actor)
		log.Println("======================================================")
	}

	log.Println("✅ Все указанные операции сидирования успешно завершены.")
	log.Println("======================================================")
}
