package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"asset-system/pkg/utils"
)

type DepreciationRefresher interface {
	RefreshDepreciation(ctx context.Context, asOf time.Time) (int, error)
}

// NewDepreciationJob - ежедневный пересчёт остаточной стоимости всех активов с политикой амортизации.
func NewDepreciationJob(cronSpec string, refresher DepreciationRefresher, timeout time.Duration, logger *zap.Logger) (*ScheduledTask, error) {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return NewScheduledTask("depreciation_refresh", cronSpec, func(ctx context.Context) {
		runCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		asOf := utils.Today()
		start := time.Now()
		logger.Info("Пересчёт амортизации: старт", zap.String("asOf", utils.FormatDate(asOf)))

		updated, err := refresher.RefreshDepreciation(runCtx, asOf)
		if err != nil {
			logger.Error("Пересчёт амортизации завершился с ошибкой",
				zap.Int("updated", updated),
				zap.Error(err),
			)
			return
		}
		logger.Info("Пересчёт амортизации: готово",
			zap.Int("updated", updated),
			zap.Duration("duration", time.Since(start)),
		)
	}, logger)
}
