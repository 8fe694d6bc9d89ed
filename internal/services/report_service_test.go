package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
)

type stubReportRepo struct {
	calls  int
	items  []entities.DepreciationReportItem
	filter entities.ReportFilter
}

func (r *stubReportRepo) CountByStatus(_ context.Context, _ pgx.Tx, _ uint64) ([]entities.StatusCount, error) {
	r.calls++
	return []entities.StatusCount{
		{Status: entities.AssetStatusAvailable, Count: 3},
		{Status: entities.AssetStatusAssigned, Count: 2},
	}, nil
}

func (r *stubReportRepo) GetValueTotals(_ context.Context, _ pgx.Tx, _ uint64) (*entities.ValueTotals, error) {
	return &entities.ValueTotals{AssetCount: 5, PurchaseCost: decimal.NewFromInt(1000), CurrentValue: decimal.NewFromInt(750)}, nil
}

func (r *stubReportRepo) GetTypeDistribution(_ context.Context, _ pgx.Tx, _ uint64) ([]entities.TypeDistribution, error) {
	return []entities.TypeDistribution{{AssetTypeID: 1, AssetTypeName: "Ноутбук", Count: 5}}, nil
}

func (r *stubReportRepo) GetExpiringWarranties(_ context.Context, _ pgx.Tx, _ uint64, from, _ time.Time) ([]entities.ExpiringWarranty, error) {
	return []entities.ExpiringWarranty{{AssetID: 4, AssetName: "Сервер", WarrantyExpiryDate: from.AddDate(0, 0, 10)}}, nil
}

func (r *stubReportRepo) CountOverdueAssignments(_ context.Context, _ pgx.Tx, _ uint64, _ time.Time) (int64, error) {
	return 1, nil
}

func (r *stubReportRepo) GetDepreciationReport(_ context.Context, _ pgx.Tx, filter entities.ReportFilter) ([]entities.DepreciationReportItem, uint64, error) {
	r.filter = filter
	return r.items, uint64(len(r.items)), nil
}

func newReportFixture(repo *stubReportRepo, cache *fakeCache) *reportService {
	store := newMemStore()
	logger := zap.NewNop()
	var cacheRepo repositories.CacheRepositoryInterface
	if cache != nil {
		cacheRepo = cache
	}
	svc := NewReportService(NewBaseService(cacheRepo, logger), fakeTx{}, repo, fakeMaintenanceRepo{store}, time.Minute, 30, logger).(*reportService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestGetDashboardSummary(t *testing.T) {
	repo := &stubReportRepo{}
	cache := newFakeCache()
	svc := newReportFixture(repo, cache)
	ctx := context.Background()

	summary, err := svc.GetDashboardSummary(ctx, testActor, dto.DashboardFilter{})
	require.NoError(t, err)

	assert.Equal(t, int64(5), summary.TotalAssets)
	assert.Equal(t, int64(0), summary.CountsByStatus[string(entities.AssetStatusDisposed)])
	assert.True(t, summary.TotalDepreciation.Equal(decimal.NewFromInt(250)))
	assert.True(t, summary.DepreciationPercent.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, 30, summary.HorizonDays)
	require.Len(t, summary.ExpiringWarranties, 1)
	assert.Equal(t, 10, summary.ExpiringWarranties[0].DaysLeft)
	assert.Equal(t, int64(1), summary.OverdueAssignments)

	t.Run("второй запрос из кеша", func(t *testing.T) {
		_, err := svc.GetDashboardSummary(ctx, testActor, dto.DashboardFilter{})
		require.NoError(t, err)
		assert.Equal(t, 1, repo.calls)
	})

	t.Run("инвалидация по тенанту", func(t *testing.T) {
		require.NoError(t, svc.InvalidateDashboard(ctx, testActor.TenantID))
		_, err := svc.GetDashboardSummary(ctx, testActor, dto.DashboardFilter{})
		require.NoError(t, err)
		assert.Equal(t, 2, repo.calls)
	})
}

func TestGetDashboardSummary_WithoutCache(t *testing.T) {
	repo := &stubReportRepo{}
	svc := newReportFixture(repo, nil)

	for i := 0; i < 2; i++ {
		_, err := svc.GetDashboardSummary(context.Background(), testActor, dto.DashboardFilter{HorizonDays: 7})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, repo.calls)
}

func TestGetDepreciationReport_RecomputesStaleRows(t *testing.T) {
	method := "straight_line"
	life := 5
	lastCalc := fixedNow.AddDate(0, -3, 0)
	repo := &stubReportRepo{items: []entities.DepreciationReportItem{
		{
			AssetID: 1, AssetCode: "AST-1", Name: "Ноутбук", Status: entities.AssetStatusAvailable,
			PurchaseDate: date("2023-01-01").Time, PurchaseCost: decimal.NewFromInt(120000),
			Method: &method, UsefulLifeYears: &life, SalvageValue: decimal.NewNullDecimal(decimal.NewFromInt(20000)),
			CurrentValue: decimal.NewFromInt(80000), LastCalculatedDate: &lastCalc,
		},
		{
			AssetID: 2, AssetCode: "AST-2", Name: "Стол", Status: entities.AssetStatusAvailable,
			PurchaseDate: date("2024-01-01").Time, PurchaseCost: decimal.NewFromInt(15000),
			CurrentValue: decimal.NewFromInt(15000),
		},
		{
			AssetID: 3, AssetCode: "AST-3", Name: "Принтер", Status: entities.AssetStatusDisposed,
			PurchaseDate: date("2020-01-01").Time, PurchaseCost: decimal.NewFromInt(10000),
			Method: &method, UsefulLifeYears: &life, SalvageValue: decimal.NewNullDecimal(decimal.NewFromInt(1000)),
			CurrentValue: decimal.NewFromInt(4000), LastCalculatedDate: &lastCalc,
		},
	}}
	svc := newReportFixture(repo, nil)

	items, total, err := svc.GetDepreciationReport(context.Background(), testActor, entities.ReportFilter{TenantID: 999})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	assert.Equal(t, testActor.TenantID, repo.filter.TenantID, "тенант берётся только из actor")

	assert.True(t, items[0].CurrentValue.LessThan(decimal.NewFromInt(80000)), "устаревшая строка пересчитана на сегодня")
	assert.True(t, items[0].Depreciation.Equal(items[0].PurchaseCost.Sub(items[0].CurrentValue)))

	assert.Equal(t, "none", items[1].Method)
	assert.True(t, items[1].Depreciation.IsZero())

	assert.True(t, items[2].CurrentValue.Equal(decimal.NewFromInt(4000)), "списанный актив не пересчитывается")
	assert.True(t, items[2].DepreciationPercent.Equal(decimal.NewFromInt(60)))
}
