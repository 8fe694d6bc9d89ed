package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/eventbus"
	"asset-system/pkg/types"
	"asset-system/pkg/utils"
)

const maxHorizonDays = 365

type MaintenanceServiceInterface interface {
	Schedule(ctx context.Context, actor types.Actor, assetID uint64, req dto.ScheduleMaintenanceDTO) (*dto.MaintenanceDTO, error)
	UpdateStatus(ctx context.Context, actor types.Actor, maintenanceID uint64, req dto.UpdateMaintenanceStatusDTO) (*dto.MaintenanceDTO, error)
	ListByAsset(ctx context.Context, actor types.Actor, assetID uint64) ([]dto.MaintenanceDTO, error)
	ListUpcoming(ctx context.Context, actor types.Actor, horizonDays int) ([]dto.UpcomingMaintenanceDTO, error)
}

type MaintenanceService struct {
	txManager       repositories.TxManagerInterface
	assetRepo       repositories.AssetRepositoryInterface
	assignmentRepo  repositories.AssignmentRepositoryInterface
	maintenanceRepo repositories.MaintenanceRepositoryInterface
	historyRepo     repositories.AssetHistoryRepositoryInterface
	bus             *eventbus.Bus
	logger          *zap.Logger

	defaultHorizon int
	now            func() time.Time
}

func NewMaintenanceService(
	txManager repositories.TxManagerInterface,
	assetRepo repositories.AssetRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	maintenanceRepo repositories.MaintenanceRepositoryInterface,
	historyRepo repositories.AssetHistoryRepositoryInterface,
	bus *eventbus.Bus,
	defaultHorizon int,
	logger *zap.Logger,
) *MaintenanceService {
	if defaultHorizon <= 0 {
		defaultHorizon = 30
	}
	return &MaintenanceService{
		txManager:       txManager,
		assetRepo:       assetRepo,
		assignmentRepo:  assignmentRepo,
		maintenanceRepo: maintenanceRepo,
		historyRepo:     historyRepo,
		bus:             bus,
		logger:          logger,
		defaultHorizon:  defaultHorizon,
		now:             time.Now,
	}
}

// Schedule ставит актив на обслуживание. Выданный актив можно отправить на обслуживание, выдача остаётся открытой.
func (s *MaintenanceService) Schedule(ctx context.Context, actor types.Actor, assetID uint64, req dto.ScheduleMaintenanceDTO) (*dto.MaintenanceDTO, error) {
	if req.StartDate.IsZero() {
		return nil, apperrors.NewValidationError("start_date", "дата начала обязательна")
	}
	if req.Cost.Valid && req.Cost.Decimal.IsNegative() {
		return nil, apperrors.NewValidationError("cost", "стоимость не может быть отрицательной")
	}

	m := &entities.AssetMaintenance{
		AssetID:         assetID,
		MaintenanceType: req.MaintenanceType,
		StartDate:       req.StartDate.Time,
		Status:          entities.MaintenanceScheduled,
		Supplier:        req.Supplier.Ptr(),
		Details:         req.Details.Ptr(),
		CreatedBy:       actor.UserID,
	}
	if req.Cost.Valid {
		m.Cost = req.Cost.Decimal.Round(2)
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		asset, err := lockAsset(ctx, s.assetRepo, tx, actor, assetID)
		if err != nil {
			return err
		}
		if asset.IsDisposed() || asset.Status == entities.AssetStatusUnderMaintenance {
			return apperrors.NewInvalidStateError("asset", assetID, string(asset.Status), "schedule_maintenance")
		}
		active, err := s.maintenanceRepo.FindActiveByAsset(ctx, tx, assetID)
		if err != nil {
			return err
		}
		if active != nil {
			return apperrors.NewInvalidStateError("asset", assetID, string(asset.Status), "schedule_maintenance")
		}

		if _, err := s.maintenanceRepo.Create(ctx, tx, m); err != nil {
			return err
		}
		if err := recordHistory(ctx, s.historyRepo, tx, assetID, actor.UserID, entities.HistoryMaintenanceSchedule,
			nil, strPtr(m.MaintenanceType), m.Details); err != nil {
			return err
		}
		return transitionAsset(ctx, s.assetRepo, s.historyRepo, tx, actor, asset, entities.AssetStatusUnderMaintenance, "")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Обслуживание запланировано", zap.Uint64("assetID", assetID), zap.Uint64("maintenanceID", m.ID))
	publishAssetChanged(ctx, s.bus, actor, assetID, entities.HistoryMaintenanceSchedule)
	return maintenanceEntityToDTO(m), nil
}

func (s *MaintenanceService) UpdateStatus(ctx context.Context, actor types.Actor, maintenanceID uint64, req dto.UpdateMaintenanceStatusDTO) (*dto.MaintenanceDTO, error) {
	next := entities.MaintenanceStatus(req.Status)
	if !next.Valid() {
		return nil, apperrors.NewValidationError("status", "неизвестный статус '%s'", req.Status)
	}
	endDate := datePtr(req.EndDate)
	if next.IsFinal() && endDate == nil {
		return nil, apperrors.NewValidationError("end_date", "дата окончания обязательна для статуса '%s'", next)
	}
	if req.Cost.Valid && req.Cost.Decimal.IsNegative() {
		return nil, apperrors.NewValidationError("cost", "стоимость не может быть отрицательной")
	}

	probe, err := s.maintenanceRepo.FindByID(ctx, nil, maintenanceID)
	if err != nil {
		return nil, err
	}

	var (
		m       *entities.AssetMaintenance
		assetID = probe.AssetID
	)
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		asset, err := lockAsset(ctx, s.assetRepo, tx, actor, assetID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewNotFoundError("maintenance", maintenanceID)
			}
			return err
		}
		m, err = s.maintenanceRepo.FindForUpdate(ctx, tx, maintenanceID)
		if err != nil {
			return err
		}
		from := m.Status
		if !from.CanTransitionTo(next) {
			return apperrors.NewInvalidStateError("maintenance", maintenanceID, string(from), string(next))
		}
		if endDate != nil && endDate.Before(m.StartDate) {
			return apperrors.NewValidationError("end_date", "дата окончания раньше даты начала")
		}

		m.Status = next
		if endDate != nil {
			m.EndDate = endDate
		}
		if req.Cost.Valid {
			m.Cost = req.Cost.Decimal.Round(2)
		}
		if req.CompletionNotes.Valid {
			m.CompletionNotes = req.CompletionNotes.Ptr()
		}
		if err := s.maintenanceRepo.UpdateStatus(ctx, tx, m, from); err != nil {
			return err
		}
		if err := recordHistory(ctx, s.historyRepo, tx, assetID, actor.UserID, entities.HistoryMaintenanceStatus,
			strPtr(string(from)), strPtr(string(next)), req.CompletionNotes.Ptr()); err != nil {
			return err
		}

		if !next.IsFinal() {
			return nil
		}
		// актив мог быть списан или сменить статус вне этого обслуживания - тогда его не трогаем
		if asset.Status != entities.AssetStatusUnderMaintenance {
			s.logger.Info("Статус актива не изменён после обслуживания", zap.Uint64("assetID", assetID),
				zap.String("status", string(asset.Status)))
			return nil
		}
		open, err := s.assignmentRepo.FindOpenByAsset(ctx, tx, assetID)
		if err != nil {
			return err
		}
		target := entities.AssetStatusAvailable
		if open != nil {
			target = entities.AssetStatusAssigned
		}
		return transitionAsset(ctx, s.assetRepo, s.historyRepo, tx, actor, asset, target, "обслуживание завершено")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Статус обслуживания изменён", zap.Uint64("maintenanceID", maintenanceID), zap.String("status", req.Status))
	publishAssetChanged(ctx, s.bus, actor, assetID, entities.HistoryMaintenanceStatus)
	return maintenanceEntityToDTO(m), nil
}

func (s *MaintenanceService) ListByAsset(ctx context.Context, actor types.Actor, assetID uint64) ([]dto.MaintenanceDTO, error) {
	if _, err := findAsset(ctx, s.assetRepo, actor, assetID); err != nil {
		return nil, err
	}
	list, err := s.maintenanceRepo.ListByAsset(ctx, nil, assetID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.MaintenanceDTO, 0, len(list))
	for i := range list {
		result = append(result, *maintenanceEntityToDTO(&list[i]))
	}
	return result, nil
}

// ListUpcoming - запланированные работы с датой начала в пределах horizonDays от сегодня.
func (s *MaintenanceService) ListUpcoming(ctx context.Context, actor types.Actor, horizonDays int) ([]dto.UpcomingMaintenanceDTO, error) {
	horizonDays = clampHorizon(horizonDays, s.defaultHorizon)
	from := utils.TruncateToDay(s.now())
	list, err := s.maintenanceRepo.ListUpcoming(ctx, nil, actor.TenantID, from, from.AddDate(0, 0, horizonDays))
	if err != nil {
		return nil, err
	}
	return upcomingToDTOs(list), nil
}

func clampHorizon(days, fallback int) int {
	if days <= 0 {
		return fallback
	}
	if days > maxHorizonDays {
		return maxHorizonDays
	}
	return days
}
