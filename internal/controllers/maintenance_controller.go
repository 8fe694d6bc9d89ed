package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/services"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/utils"
)

type MaintenanceController struct {
	maintenanceService services.MaintenanceServiceInterface
	logger             *zap.Logger
}

func NewMaintenanceController(service services.MaintenanceServiceInterface, logger *zap.Logger) *MaintenanceController {
	return &MaintenanceController{maintenanceService: service, logger: logger}
}

func (c *MaintenanceController) ScheduleMaintenance(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	assetID, err := parseIDParam(ctx, "id", "актив")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.ScheduleMaintenanceDTO
	if err := bindAndValidate(ctx, &req, "ScheduleMaintenance", c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.maintenanceService.Schedule(ctx.Request().Context(), actor, assetID, req)
	if err != nil {
		c.logger.Error("ScheduleMaintenance: не удалось запланировать обслуживание", zap.Uint64("assetID", assetID), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось запланировать обслуживание", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Обслуживание запланировано", http.StatusCreated)
}

func (c *MaintenanceController) UpdateMaintenanceStatus(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	maintenanceID, err := parseIDParam(ctx, "id", "обслуживание")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.UpdateMaintenanceStatusDTO
	if err := bindAndValidate(ctx, &req, "UpdateMaintenanceStatus", c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.maintenanceService.UpdateStatus(ctx.Request().Context(), actor, maintenanceID, req)
	if err != nil {
		c.logger.Error("UpdateMaintenanceStatus: не удалось сменить статус",
			zap.Uint64("maintenanceID", maintenanceID),
			zap.String("status", req.Status),
			zap.Error(err),
		)
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось сменить статус обслуживания", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Статус обслуживания обновлён", http.StatusOK)
}

func (c *MaintenanceController) GetAssetMaintenances(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	assetID, err := parseIDParam(ctx, "id", "актив")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.maintenanceService.ListByAsset(ctx.Request().Context(), actor, assetID)
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить обслуживания актива", err, nil),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, res, "Обслуживания актива получены", http.StatusOK)
}

func (c *MaintenanceController) GetUpcoming(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.maintenanceService.ListUpcoming(ctx.Request().Context(), actor, queryInt(ctx, "horizon_days", 0))
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить предстоящие обслуживания", err, nil),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, res, "Предстоящие обслуживания получены", http.StatusOK)
}
