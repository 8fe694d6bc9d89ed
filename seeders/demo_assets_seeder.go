package seeders

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/integrations/static"
	"asset-system/internal/repositories"
	"asset-system/internal/services"
	"asset-system/pkg/types"
)

// seedDemoAssets заводит несколько активов через обычный сервис, со всеми проверками и историей.
// Повторный запуск ничего не дублирует: коды активов фиксированы.
func seedDemoAssets(ctx context.Context, db *pgxpool.Pool, actor types.Actor) error {
	log.Println("  - Демо-активы для тенанта", actor.TenantID)

	logger := zap.NewNop()
	typeRepo := repositories.NewAssetTypeRepository(db, logger)
	assetService := services.NewAssetService(
		repositories.NewTxManager(db),
		repositories.NewAssetRepository(db, logger),
		typeRepo,
		repositories.NewAssignmentRepository(db, logger),
		repositories.NewMaintenanceRepository(db, logger),
		repositories.NewDepreciationRepository(db, logger),
		repositories.NewAssetHistoryRepository(db, logger),
		nil, nil, static.New(), nil, 0, logger,
	)

	laptopType, err := typeRepo.FindByName(ctx, nil, "Ноутбук")
	if err != nil {
		return err
	}
	furnitureType, err := typeRepo.FindByName(ctx, nil, "Мебель")
	if err != nil {
		return err
	}
	if laptopType == nil || furnitureType == nil {
		return fmt.Errorf("сначала запустите сидер типов (-types)")
	}

	date := func(s string) types.Date {
		t, _ := time.Parse("2006-01-02", s)
		return types.NewDate(t)
	}

	demo := []dto.CreateAssetDTO{
		{
			Name: "Ноутбук Lenovo ThinkPad T14", AssetTypeID: laptopType.ID, AssetCode: null.StringFrom("DEMO-0001"),
			SerialNumber: null.StringFrom("PF3K9Z1"), PurchaseDate: date("2023-03-01"),
			PurchaseCost: decimal.NewFromInt(145000), Condition: "good", Location: null.StringFrom("Офис 301"),
			Depreciation: &dto.DepreciationPolicyDTO{Method: "straight_line", UsefulLifeYears: 4, SalvageValue: decimal.NewFromInt(15000)},
			InitialAssignment: &dto.InitialAssignmentDTO{EmployeeID: 1},
		},
		{
			Name: "Ноутбук Apple MacBook Air", AssetTypeID: laptopType.ID, AssetCode: null.StringFrom("DEMO-0002"),
			PurchaseDate: date("2024-09-10"), PurchaseCost: decimal.NewFromInt(160000), Condition: "new",
			Depreciation: &dto.DepreciationPolicyDTO{Method: "reducing_balance", UsefulLifeYears: 5, SalvageValue: decimal.NewFromInt(20000)},
		},
		{
			Name: "Стол письменный", AssetTypeID: furnitureType.ID, AssetCode: null.StringFrom("DEMO-0003"),
			PurchaseDate: date("2022-01-15"), PurchaseCost: decimal.NewFromInt(18000), Condition: "fair",
		},
	}

	created := 0
	for _, req := range demo {
		if _, err := assetService.CreateAsset(ctx, actor, req); err != nil {
			log.Printf("    - %s: пропущен (%v)", req.AssetCode.String, err)
			continue
		}
		created++
	}
	log.Printf("    - Создано демо-активов: %d", created)
	return nil
}
