package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"asset-system/internal/entities"
	"asset-system/internal/events"
	"asset-system/internal/integrations"
	"asset-system/internal/repositories"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/eventbus"
	"asset-system/pkg/types"
)

// lockAsset берёт строку актива под FOR UPDATE. Чужой тенант неотличим от отсутствующей записи.
func lockAsset(ctx context.Context, repo repositories.AssetRepositoryInterface, tx pgx.Tx, actor types.Actor, id uint64) (*entities.Asset, error) {
	asset, err := repo.FindForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if asset.TenantID != actor.TenantID {
		return nil, apperrors.NewNotFoundError("asset", id)
	}
	return asset, nil
}

func findAsset(ctx context.Context, repo repositories.AssetRepositoryInterface, actor types.Actor, id uint64) (*entities.Asset, error) {
	asset, err := repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if asset.TenantID != actor.TenantID {
		return nil, apperrors.NewNotFoundError("asset", id)
	}
	return asset, nil
}

// transitionAsset меняет статус через CAS и пишет STATUS_CHANGE в журнал в той же транзакции.
func transitionAsset(
	ctx context.Context,
	assetRepo repositories.AssetRepositoryInterface,
	historyRepo repositories.AssetHistoryRepositoryInterface,
	tx pgx.Tx,
	actor types.Actor,
	asset *entities.Asset,
	to entities.AssetStatus,
	comment string,
) error {
	if asset.Status == to {
		return nil
	}
	if err := assetRepo.TransitionStatus(ctx, tx, asset.ID, asset.Status, to); err != nil {
		return err
	}
	from := string(asset.Status)
	asset.Status = to
	return recordHistory(ctx, historyRepo, tx, asset.ID, actor.UserID, entities.HistoryStatusChange, &from, strPtr(string(to)), strPtrOrNil(comment))
}

func recordHistory(
	ctx context.Context,
	repo repositories.AssetHistoryRepositoryInterface,
	tx pgx.Tx,
	assetID, userID uint64,
	eventType string,
	oldValue, newValue, comment *string,
) error {
	return repo.CreateInTx(ctx, tx, &entities.AssetHistory{
		AssetID:   assetID,
		UserID:    userID,
		EventType: eventType,
		OldValue:  oldValue,
		NewValue:  newValue,
		Comment:   comment,
	})
}

func publishAssetChanged(ctx context.Context, bus *eventbus.Bus, actor types.Actor, assetID uint64, eventType string) {
	if bus == nil {
		return
	}
	bus.Publish(ctx, events.AssetChangedEvent{
		TenantID:  actor.TenantID,
		AssetID:   assetID,
		ActorID:   actor.UserID,
		EventType: eventType,
	})
}

func strPtr(s string) *string {
	return &s
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// checkEmployee - без справочника сотрудников проверка пропускается.
func checkEmployee(ctx context.Context, directory integrations.EmployeeDirectory, actor types.Actor, employeeID uint64) error {
	if employeeID == 0 {
		return apperrors.NewValidationError("employee_id", "сотрудник не указан")
	}
	if directory == nil {
		return nil
	}
	employee, err := directory.GetEmployee(ctx, actor.TenantID, employeeID)
	if err != nil {
		return fmt.Errorf("справочник сотрудников недоступен: %w", err)
	}
	if employee == nil {
		return apperrors.NewValidationError("employee_id", "сотрудник #%d не найден", employeeID)
	}
	if !employee.IsActive {
		return apperrors.NewValidationError("employee_id", "сотрудник #%d уволен", employeeID)
	}
	return nil
}
