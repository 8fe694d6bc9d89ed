package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/integrations"
	"asset-system/internal/repositories"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/eventbus"
	"asset-system/pkg/types"
	"asset-system/pkg/utils"
)

type AssignmentServiceInterface interface {
	Assign(ctx context.Context, actor types.Actor, assetID uint64, req dto.AssignAssetDTO) (*dto.AssignmentDTO, error)
	Return(ctx context.Context, actor types.Actor, assignmentID uint64, req dto.ReturnAssetDTO) (*dto.AssignmentDTO, error)
	ListByAsset(ctx context.Context, actor types.Actor, assetID uint64) ([]dto.AssignmentDTO, error)
	ListOpenByEmployee(ctx context.Context, actor types.Actor, employeeID uint64) ([]dto.AssignmentDTO, error)
	ListOverdue(ctx context.Context, actor types.Actor, asOf time.Time) ([]dto.AssignmentDTO, error)
}

type AssignmentService struct {
	txManager       repositories.TxManagerInterface
	assetRepo       repositories.AssetRepositoryInterface
	assignmentRepo  repositories.AssignmentRepositoryInterface
	maintenanceRepo repositories.MaintenanceRepositoryInterface
	historyRepo     repositories.AssetHistoryRepositoryInterface
	employees       integrations.EmployeeDirectory
	bus             *eventbus.Bus
	logger          *zap.Logger

	now func() time.Time
}

func NewAssignmentService(
	txManager repositories.TxManagerInterface,
	assetRepo repositories.AssetRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	maintenanceRepo repositories.MaintenanceRepositoryInterface,
	historyRepo repositories.AssetHistoryRepositoryInterface,
	employees integrations.EmployeeDirectory,
	bus *eventbus.Bus,
	logger *zap.Logger,
) *AssignmentService {
	return &AssignmentService{
		txManager:       txManager,
		assetRepo:       assetRepo,
		assignmentRepo:  assignmentRepo,
		maintenanceRepo: maintenanceRepo,
		historyRepo:     historyRepo,
		employees:       employees,
		bus:             bus,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *AssignmentService) Assign(ctx context.Context, actor types.Actor, assetID uint64, req dto.AssignAssetDTO) (*dto.AssignmentDTO, error) {
	if req.CheckoutDate.IsZero() {
		return nil, apperrors.NewValidationError("checkout_date", "дата выдачи обязательна")
	}
	expected := datePtr(req.ExpectedReturnDate)
	if expected != nil && expected.Before(req.CheckoutDate.Time) {
		return nil, apperrors.NewValidationError("expected_return_date", "ожидаемая дата возврата раньше даты выдачи")
	}
	var condition entities.AssetCondition
	if req.CheckoutCondition != "" {
		condition = entities.AssetCondition(req.CheckoutCondition)
		if !condition.Valid() {
			return nil, apperrors.NewValidationError("checkout_condition", "неизвестное состояние '%s'", req.CheckoutCondition)
		}
	}
	if err := checkEmployee(ctx, s.employees, actor, req.EmployeeID); err != nil {
		return nil, err
	}

	assignment := &entities.AssetAssignment{
		AssetID:            assetID,
		EmployeeID:         req.EmployeeID,
		AssignedBy:         actor.UserID,
		CheckoutDate:       req.CheckoutDate.Time,
		ExpectedReturnDate: expected,
		Notes:              req.Notes.Ptr(),
	}

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		asset, err := lockAsset(ctx, s.assetRepo, tx, actor, assetID)
		if err != nil {
			return err
		}
		if asset.Status != entities.AssetStatusAvailable {
			return apperrors.NewInvalidStateError("asset", assetID, string(asset.Status), "assign")
		}
		if req.CheckoutDate.Time.Before(asset.PurchaseDate) {
			return apperrors.NewValidationError("checkout_date", "дата выдачи раньше даты покупки")
		}

		assignment.CheckoutCondition = condition
		if assignment.CheckoutCondition == "" {
			assignment.CheckoutCondition = asset.Condition
		}
		if _, err := s.assignmentRepo.Create(ctx, tx, assignment); err != nil {
			return err
		}
		if err := transitionAsset(ctx, s.assetRepo, s.historyRepo, tx, actor, asset, entities.AssetStatusAssigned, ""); err != nil {
			return err
		}
		employee := fmt.Sprintf("%d", assignment.EmployeeID)
		return recordHistory(ctx, s.historyRepo, tx, assetID, actor.UserID, entities.HistoryAssigned,
			nil, &employee, assignment.Notes)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Актив выдан", zap.Uint64("assetID", assetID), zap.Uint64("employeeID", req.EmployeeID),
		zap.Uint64("assignmentID", assignment.ID))
	publishAssetChanged(ctx, s.bus, actor, assetID, entities.HistoryAssigned)
	return assignmentEntityToDTO(assignment, utils.TruncateToDay(s.now())), nil
}

// Return закрывает выдачу. Если актив в это время на обслуживании, он там и остаётся.
func (s *AssignmentService) Return(ctx context.Context, actor types.Actor, assignmentID uint64, req dto.ReturnAssetDTO) (*dto.AssignmentDTO, error) {
	if req.CheckinDate.IsZero() {
		return nil, apperrors.NewValidationError("checkin_date", "дата возврата обязательна")
	}
	var checkinCondition *entities.AssetCondition
	if req.CheckinCondition != "" {
		c := entities.AssetCondition(req.CheckinCondition)
		if !c.Valid() {
			return nil, apperrors.NewValidationError("checkin_condition", "неизвестное состояние '%s'", req.CheckinCondition)
		}
		checkinCondition = &c
	}

	// без блокировки узнаём актив, чтобы брать блокировки в порядке актив -> выдача
	probe, err := s.assignmentRepo.FindByID(ctx, nil, assignmentID)
	if err != nil {
		return nil, err
	}

	var assignment *entities.AssetAssignment
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		asset, err := lockAsset(ctx, s.assetRepo, tx, actor, probe.AssetID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewNotFoundError("assignment", assignmentID)
			}
			return err
		}
		assignment, err = s.assignmentRepo.FindForUpdate(ctx, tx, assignmentID)
		if err != nil {
			return err
		}
		if !assignment.IsOpen() {
			return apperrors.NewNotFoundError("assignment", assignmentID)
		}
		if req.CheckinDate.Time.Before(assignment.CheckoutDate) {
			return apperrors.NewValidationError("checkin_date", "дата возврата раньше даты выдачи")
		}

		checkin := req.CheckinDate.Time
		assignment.CheckinDate = &checkin
		assignment.CheckinCondition = checkinCondition
		if req.Notes.Valid {
			assignment.Notes = req.Notes.Ptr()
		}
		if err := s.assignmentRepo.Close(ctx, tx, assignment); err != nil {
			return err
		}

		if checkinCondition != nil && *checkinCondition != asset.Condition {
			asset.Condition = *checkinCondition
			if err := s.assetRepo.Update(ctx, tx, asset); err != nil {
				return err
			}
		}

		employee := fmt.Sprintf("%d", assignment.EmployeeID)
		if err := recordHistory(ctx, s.historyRepo, tx, asset.ID, actor.UserID, entities.HistoryReturned,
			&employee, nil, assignment.Notes); err != nil {
			return err
		}

		active, err := s.maintenanceRepo.FindActiveByAsset(ctx, tx, asset.ID)
		if err != nil {
			return err
		}
		switch {
		case asset.Status == entities.AssetStatusUnderMaintenance:
			return nil
		case active != nil:
			return transitionAsset(ctx, s.assetRepo, s.historyRepo, tx, actor, asset, entities.AssetStatusUnderMaintenance, "возврат во время обслуживания")
		case asset.Status == entities.AssetStatusAssigned:
			return transitionAsset(ctx, s.assetRepo, s.historyRepo, tx, actor, asset, entities.AssetStatusAvailable, "")
		default:
			s.logger.Warn("Возврат актива в неожиданном статусе", zap.Uint64("assetID", asset.ID),
				zap.String("status", string(asset.Status)))
			return nil
		}
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Актив возвращён", zap.Uint64("assetID", assignment.AssetID), zap.Uint64("assignmentID", assignmentID))
	publishAssetChanged(ctx, s.bus, actor, assignment.AssetID, entities.HistoryReturned)
	return assignmentEntityToDTO(assignment, utils.TruncateToDay(s.now())), nil
}

func (s *AssignmentService) ListByAsset(ctx context.Context, actor types.Actor, assetID uint64) ([]dto.AssignmentDTO, error) {
	if _, err := findAsset(ctx, s.assetRepo, actor, assetID); err != nil {
		return nil, err
	}
	list, err := s.assignmentRepo.ListByAsset(ctx, nil, assetID)
	if err != nil {
		return nil, err
	}
	return assignmentsToDTOs(list, utils.TruncateToDay(s.now())), nil
}

func (s *AssignmentService) ListOpenByEmployee(ctx context.Context, actor types.Actor, employeeID uint64) ([]dto.AssignmentDTO, error) {
	list, err := s.assignmentRepo.ListOpenByEmployee(ctx, actor.TenantID, employeeID)
	if err != nil {
		return nil, err
	}
	return assignmentsToDTOs(list, utils.TruncateToDay(s.now())), nil
}

// ListOverdue - открытые выдачи, у которых ожидаемая дата возврата раньше asOf.
func (s *AssignmentService) ListOverdue(ctx context.Context, actor types.Actor, asOf time.Time) ([]dto.AssignmentDTO, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	asOf = utils.TruncateToDay(asOf)
	list, err := s.assignmentRepo.ListOverdue(ctx, actor.TenantID, asOf)
	if err != nil {
		return nil, err
	}
	return assignmentsToDTOs(list, asOf), nil
}
