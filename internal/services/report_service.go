package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"asset-system/internal/depreciation"
	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	"asset-system/pkg/types"
	"asset-system/pkg/utils"
)

const dashboardCachePrefix = "dashboard:summary:"

type ReportServiceInterface interface {
	GetDashboardSummary(ctx context.Context, actor types.Actor, filter dto.DashboardFilter) (*dto.DashboardSummaryDTO, error)
	GetDepreciationReport(ctx context.Context, actor types.Actor, filter entities.ReportFilter) ([]dto.DepreciationReportItemDTO, uint64, error)
	InvalidateDashboard(ctx context.Context, tenantID uint64) error
}

type reportService struct {
	*BaseService
	txManager  repositories.TxManagerInterface
	reportRepo repositories.ReportRepositoryInterface
	maintRepo  repositories.MaintenanceRepositoryInterface
	logger     *zap.Logger

	cacheTTL       time.Duration
	defaultHorizon int
	now            func() time.Time
}

func NewReportService(
	base *BaseService,
	txManager repositories.TxManagerInterface,
	reportRepo repositories.ReportRepositoryInterface,
	maintRepo repositories.MaintenanceRepositoryInterface,
	cacheTTL time.Duration,
	defaultHorizon int,
	logger *zap.Logger,
) ReportServiceInterface {
	if defaultHorizon <= 0 {
		defaultHorizon = 30
	}
	return &reportService{
		BaseService:    base,
		txManager:      txManager,
		reportRepo:     reportRepo,
		maintRepo:      maintRepo,
		logger:         logger,
		cacheTTL:       cacheTTL,
		defaultHorizon: defaultHorizon,
		now:            time.Now,
	}
}

func dashboardCacheKey(tenantID uint64, horizon int) string {
	return fmt.Sprintf("%s%d:%d", dashboardCachePrefix, tenantID, horizon)
}

// GetDashboardSummary читает все показатели в одной read-only транзакции, чтобы цифры были согласованы.
func (s *reportService) GetDashboardSummary(ctx context.Context, actor types.Actor, filter dto.DashboardFilter) (*dto.DashboardSummaryDTO, error) {
	horizon := clampHorizon(filter.HorizonDays, s.defaultHorizon)
	key := dashboardCacheKey(actor.TenantID, horizon)

	var cached dto.DashboardSummaryDTO
	if s.CacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	today := utils.TruncateToDay(s.now())
	until := today.AddDate(0, 0, horizon)

	var (
		statuses   []entities.StatusCount
		totals     *entities.ValueTotals
		byType     []entities.TypeDistribution
		upcoming   []entities.UpcomingMaintenance
		warranties []entities.ExpiringWarranty
		overdue    int64
	)
	// pgx.Tx нельзя использовать из нескольких горутин, поэтому запросы идут последовательно
	err := s.txManager.RunInSnapshot(ctx, func(tx pgx.Tx) (err error) {
		if statuses, err = s.reportRepo.CountByStatus(ctx, tx, actor.TenantID); err != nil {
			return err
		}
		if totals, err = s.reportRepo.GetValueTotals(ctx, tx, actor.TenantID); err != nil {
			return err
		}
		if byType, err = s.reportRepo.GetTypeDistribution(ctx, tx, actor.TenantID); err != nil {
			return err
		}
		if upcoming, err = s.maintRepo.ListUpcoming(ctx, tx, actor.TenantID, today, until); err != nil {
			return err
		}
		if warranties, err = s.reportRepo.GetExpiringWarranties(ctx, tx, actor.TenantID, today, until); err != nil {
			return err
		}
		overdue, err = s.reportRepo.CountOverdueAssignments(ctx, tx, actor.TenantID, today)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка сборки дашборда", zap.Uint64("tenantID", actor.TenantID), zap.Error(err))
		return nil, err
	}

	summary := &dto.DashboardSummaryDTO{
		CountsByStatus:      make(map[string]int64, 4),
		TotalPurchaseCost:   totals.PurchaseCost,
		TotalCurrentValue:   totals.CurrentValue,
		TotalDepreciation:   totals.PurchaseCost.Sub(totals.CurrentValue),
		DepreciationPercent: depreciation.Percentage(totals.PurchaseCost, totals.CurrentValue),
		ByType:              make([]dto.TypeDistributionDTO, 0, len(byType)),
		UpcomingMaintenance: upcomingToDTOs(upcoming),
		ExpiringWarranties:  warrantiesToDTOs(warranties, today),
		OverdueAssignments:  overdue,
		HorizonDays:         horizon,
		GeneratedAt:         s.now().Local().Format(timestampLayout),
	}
	for _, st := range []entities.AssetStatus{
		entities.AssetStatusAvailable, entities.AssetStatusAssigned,
		entities.AssetStatusUnderMaintenance, entities.AssetStatusDisposed,
	} {
		summary.CountsByStatus[string(st)] = 0
	}
	for _, c := range statuses {
		summary.CountsByStatus[string(c.Status)] = c.Count
		summary.TotalAssets += c.Count
	}
	for _, t := range byType {
		summary.ByType = append(summary.ByType, dto.TypeDistributionDTO{
			AssetTypeID:   t.AssetTypeID,
			AssetTypeName: t.AssetTypeName,
			Count:         t.Count,
			TotalCost:     t.TotalCost,
			TotalValue:    t.TotalValue,
		})
	}

	s.CacheSet(ctx, key, summary, s.cacheTTL)
	return summary, nil
}

func (s *reportService) InvalidateDashboard(ctx context.Context, tenantID uint64) error {
	return s.CacheInvalidate(ctx, fmt.Sprintf("%s%d:", dashboardCachePrefix, tenantID))
}

// GetDepreciationReport отдаёт значения на сегодня. Устаревшие записи пересчитываются в памяти, без записи в БД.
func (s *reportService) GetDepreciationReport(ctx context.Context, actor types.Actor, filter entities.ReportFilter) ([]dto.DepreciationReportItemDTO, uint64, error) {
	filter.TenantID = actor.TenantID

	var (
		items []entities.DepreciationReportItem
		total uint64
	)
	err := s.txManager.RunInSnapshot(ctx, func(tx pgx.Tx) (err error) {
		items, total, err = s.reportRepo.GetDepreciationReport(ctx, tx, filter)
		return err
	})
	if err != nil {
		s.logger.Error("Ошибка формирования отчёта по амортизации", zap.Error(err))
		return nil, 0, err
	}

	today := utils.TruncateToDay(s.now())
	result := make([]dto.DepreciationReportItemDTO, 0, len(items))
	for _, item := range items {
		result = append(result, reportItemToDTO(item, today))
	}
	return result, total, nil
}

func reportItemToDTO(item entities.DepreciationReportItem, today time.Time) dto.DepreciationReportItemDTO {
	current := item.CurrentValue
	method := string(depreciation.MethodNone)
	var (
		life    int
		salvage decimal.Decimal
	)
	if item.Method != nil {
		method = *item.Method
		life = utils.SafeDeref(item.UsefulLifeYears)
		if item.SalvageValue.Valid {
			salvage = item.SalvageValue.Decimal
		}
		stale := item.LastCalculatedDate == nil || depreciation.NeedsRefresh(*item.LastCalculatedDate, today)
		if stale && item.Status != entities.AssetStatusDisposed {
			policy := depreciation.Policy{Method: depreciation.Method(method), UsefulLifeYears: life, SalvageValue: salvage}
			current = depreciation.ValueAsOf(policy, item.PurchaseCost, item.PurchaseDate, today)
		}
	}

	return dto.DepreciationReportItemDTO{
		AssetID:             item.AssetID,
		AssetCode:           item.AssetCode,
		Name:                item.Name,
		AssetTypeName:       utils.SafeDeref(item.AssetTypeName),
		Status:              string(item.Status),
		Location:            utils.SafeDeref(item.Location),
		PurchaseDate:        utils.FormatDate(item.PurchaseDate),
		PurchaseCost:        item.PurchaseCost,
		Method:              method,
		UsefulLifeYears:     life,
		SalvageValue:        salvage,
		CurrentValue:        current,
		Depreciation:        item.PurchaseCost.Sub(current),
		DepreciationPercent: depreciation.Percentage(item.PurchaseCost, current),
	}
}
