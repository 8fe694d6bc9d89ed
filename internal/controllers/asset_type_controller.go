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

type AssetTypeController struct {
	assetTypeService services.AssetTypeServiceInterface
	logger           *zap.Logger
}

func NewAssetTypeController(service services.AssetTypeServiceInterface, logger *zap.Logger) *AssetTypeController {
	return &AssetTypeController{assetTypeService: service, logger: logger}
}

func (c *AssetTypeController) GetAssetTypes(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.assetTypeService.GetAssetTypes(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetAssetTypes: ошибка при получении типов активов", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить типы активов", err, nil),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, res, "Типы активов получены", http.StatusOK, total)
}

func (c *AssetTypeController) FindAssetType(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id", "тип актива")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetTypeService.FindAssetType(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось найти тип актива", err, nil),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, res, "Тип актива найден", http.StatusOK)
}

func (c *AssetTypeController) CreateAssetType(ctx echo.Context) error {
	var req dto.CreateAssetTypeDTO
	if err := bindAndValidate(ctx, &req, "CreateAssetType", c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetTypeService.CreateAssetType(ctx.Request().Context(), req)
	if err != nil {
		c.logger.Error("CreateAssetType: ошибка при создании типа", zap.String("name", req.Name), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось создать тип актива", err, nil),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, res, "Тип актива создан", http.StatusCreated)
}

func (c *AssetTypeController) UpdateAssetType(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id", "тип актива")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.UpdateAssetTypeDTO
	if err := bindAndValidate(ctx, &req, "UpdateAssetType", c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetTypeService.UpdateAssetType(ctx.Request().Context(), id, req)
	if err != nil {
		c.logger.Error("UpdateAssetType: ошибка при обновлении типа", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось обновить тип актива", err, nil),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, res, "Тип актива обновлён", http.StatusOK)
}

func (c *AssetTypeController) DeleteAssetType(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id", "тип актива")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.assetTypeService.DeleteAssetType(ctx.Request().Context(), id); err != nil {
		c.logger.Error("DeleteAssetType: ошибка при удалении типа", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось удалить тип актива", err, nil),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Тип актива удалён", http.StatusOK)
}
