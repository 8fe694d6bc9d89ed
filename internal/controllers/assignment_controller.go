package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/services"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
	"asset-system/pkg/utils"
)

type AssignmentController struct {
	assignmentService services.AssignmentServiceInterface
	logger            *zap.Logger
}

func NewAssignmentController(service services.AssignmentServiceInterface, logger *zap.Logger) *AssignmentController {
	return &AssignmentController{assignmentService: service, logger: logger}
}

func (c *AssignmentController) AssignAsset(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	assetID, err := parseIDParam(ctx, "id", "актив")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.AssignAssetDTO
	if err := bindAndValidate(ctx, &req, "AssignAsset", c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assignmentService.Assign(ctx.Request().Context(), actor, assetID, req)
	if err != nil {
		c.logger.Error("AssignAsset: не удалось выдать актив",
			zap.Uint64("assetID", assetID),
			zap.Uint64("employeeID", req.EmployeeID),
			zap.Error(err),
		)
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось выдать актив", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Актив выдан сотруднику", http.StatusCreated)
}

func (c *AssignmentController) ReturnAsset(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	assignmentID, err := parseIDParam(ctx, "id", "выдача")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.ReturnAssetDTO
	if err := bindAndValidate(ctx, &req, "ReturnAsset", c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assignmentService.Return(ctx.Request().Context(), actor, assignmentID, req)
	if err != nil {
		c.logger.Error("ReturnAsset: не удалось принять актив", zap.Uint64("assignmentID", assignmentID), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось оформить возврат", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Возврат оформлен", http.StatusOK)
}

func (c *AssignmentController) GetAssetAssignments(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	assetID, err := parseIDParam(ctx, "id", "актив")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assignmentService.ListByAsset(ctx.Request().Context(), actor, assetID)
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить историю выдач", err, nil),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, res, "История выдач получена", http.StatusOK)
}

func (c *AssignmentController) GetEmployeeAssignments(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	employeeID, err := parseIDParam(ctx, "id", "сотрудник")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assignmentService.ListOpenByEmployee(ctx.Request().Context(), actor, employeeID)
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить активы сотрудника", err, nil),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, res, "Активы сотрудника получены", http.StatusOK)
}

// GetOverdue - открытые выдачи с истёкшим сроком возврата. ?as_of=YYYY-MM-DD, по умолчанию сегодня.
func (c *AssignmentController) GetOverdue(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var asOf time.Time
	if raw := ctx.QueryParam("as_of"); raw != "" {
		d, err := types.ParseDate(raw)
		if err != nil {
			return utils.ErrorResponse(ctx, apperrors.NewValidationError("as_of", "%s", err.Error()), c.logger)
		}
		asOf = d.Time
	}

	res, err := c.assignmentService.ListOverdue(ctx.Request().Context(), actor, asOf)
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить просроченные выдачи", err, nil),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, res, "Просроченные выдачи получены", http.StatusOK)
}
