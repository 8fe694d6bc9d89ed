package listeners

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"asset-system/internal/events"
	"asset-system/pkg/eventbus"
)

// DashboardInvalidator - то, что умеет сбросить кешированную сводку тенанта.
type DashboardInvalidator interface {
	InvalidateDashboard(ctx context.Context, tenantID uint64) error
}

// DashboardCacheListener сбрасывает кеш дашборда после изменений активов.
// Серия событий одного тенанта в пределах window схлопывается в один сброс.
type DashboardCacheListener struct {
	invalidator DashboardInvalidator
	window      time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	pending map[uint64]*time.Timer
}

func NewDashboardCacheListener(invalidator DashboardInvalidator, window time.Duration, logger *zap.Logger) *DashboardCacheListener {
	return &DashboardCacheListener{
		invalidator: invalidator,
		window:      window,
		logger:      logger,
		pending:     make(map[uint64]*time.Timer),
	}
}

func (l *DashboardCacheListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.AssetChangedEventName, l.handleAssetChanged)
	bus.Subscribe(events.DepreciationRefreshedName, l.handleDepreciationRefreshed)
	l.logger.Info("DashboardCacheListener подписан на события активов")
}

func (l *DashboardCacheListener) handleAssetChanged(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.AssetChangedEvent)
	if !ok {
		return fmt.Errorf("неверный тип события: %T", event)
	}
	return l.schedule(ctx, e.TenantID)
}

func (l *DashboardCacheListener) handleDepreciationRefreshed(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.DepreciationRefreshedEvent)
	if !ok {
		return fmt.Errorf("неверный тип события: %T", event)
	}
	for _, tenantID := range e.TenantIDs {
		if err := l.schedule(ctx, tenantID); err != nil {
			return err
		}
	}
	return nil
}

func (l *DashboardCacheListener) schedule(ctx context.Context, tenantID uint64) error {
	if l.window <= 0 {
		return l.invalidate(ctx, tenantID)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Stop == false: таймер уже сработал и его обработчик ждёт мьютекс, нужен новый
	if timer, ok := l.pending[tenantID]; ok && timer.Stop() {
		timer.Reset(l.window)
		return nil
	}
	var timer *time.Timer
	timer = time.AfterFunc(l.window, func() { l.fire(tenantID, timer) })
	l.pending[tenantID] = timer
	return nil
}

// fire выполняет отложенный сброс. Запись в pending удаляется, только если это всё ещё этот таймер.
func (l *DashboardCacheListener) fire(tenantID uint64, timer *time.Timer) {
	l.mu.Lock()
	if l.pending[tenantID] == timer {
		delete(l.pending, tenantID)
	}
	l.mu.Unlock()

	// контекст обработчика к этому моменту уже закрыт
	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := l.invalidate(flushCtx, tenantID); err != nil {
		l.logger.Error("Не удалось сбросить кеш дашборда", zap.Uint64("tenantID", tenantID), zap.Error(err))
	}
}

func (l *DashboardCacheListener) invalidate(ctx context.Context, tenantID uint64) error {
	if err := l.invalidator.InvalidateDashboard(ctx, tenantID); err != nil {
		return err
	}
	l.logger.Debug("Кеш дашборда сброшен", zap.Uint64("tenantID", tenantID))
	return nil
}

// Flush немедленно выполняет все отложенные сбросы (остановка сервера).
func (l *DashboardCacheListener) Flush(ctx context.Context) {
	l.mu.Lock()
	tenants := make([]uint64, 0, len(l.pending))
	for tenantID, timer := range l.pending {
		if timer.Stop() {
			tenants = append(tenants, tenantID)
		}
		delete(l.pending, tenantID)
	}
	l.mu.Unlock()

	for _, tenantID := range tenants {
		if err := l.invalidate(ctx, tenantID); err != nil {
			l.logger.Error("Не удалось сбросить кеш дашборда", zap.Uint64("tenantID", tenantID), zap.Error(err))
		}
	}
}
