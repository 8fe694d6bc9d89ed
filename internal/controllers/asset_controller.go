package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"asset-system/config"
	"asset-system/internal/dto"
	"asset-system/internal/services"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/utils"
	"asset-system/pkg/validation"
)

type AssetController struct {
	assetService  services.AssetServiceInterface
	importService services.AssetImportServiceInterface
	logger        *zap.Logger
}

func NewAssetController(
	assetService services.AssetServiceInterface,
	importService services.AssetImportServiceInterface,
	logger *zap.Logger,
) *AssetController {
	return &AssetController{
		assetService:  assetService,
		importService: importService,
		logger:        logger,
	}
}

func (c *AssetController) GetAssets(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.assetService.ListAssets(ctx.Request().Context(), actor, filter)
	if err != nil {
		c.logger.Error("GetAssets: ошибка при получении списка активов", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить список активов", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Список активов успешно получен", http.StatusOK, total)
}

func (c *AssetController) FindAsset(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id", "актив")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetService.GetAsset(ctx.Request().Context(), actor, id)
	if err != nil {
		c.logger.Error("FindAsset: ошибка при поиске актива", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось найти актив", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Актив успешно найден", http.StatusOK)
}

func (c *AssetController) CreateAsset(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.CreateAssetDTO
	if err := bindAndValidate(ctx, &req, "CreateAsset", c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetService.CreateAsset(ctx.Request().Context(), actor, req)
	if err != nil {
		c.logger.Error("CreateAsset: ошибка при создании актива", zap.Any("payload", req), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось создать актив", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Актив успешно создан", http.StatusCreated)
}

func (c *AssetController) UpdateAsset(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id", "актив")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var req dto.UpdateAssetDTO
	if err := bindAndValidate(ctx, &req, "UpdateAsset", c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetService.UpdateAsset(ctx.Request().Context(), actor, id, req)
	if err != nil {
		c.logger.Error("UpdateAsset: ошибка при обновлении актива", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось обновить актив", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Актив успешно обновлён", http.StatusOK)
}

func (c *AssetController) DisposeAsset(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id", "актив")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	// тело необязательно: пустой запрос списывает сегодняшним числом
	var req dto.DisposeAssetDTO
	if err := bindAndValidate(ctx, &req, "DisposeAsset", c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetService.DisposeAsset(ctx.Request().Context(), actor, id, req)
	if err != nil {
		c.logger.Error("DisposeAsset: ошибка при списании актива", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось списать актив", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Актив списан", http.StatusOK)
}

func (c *AssetController) DeleteAsset(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id", "актив")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.assetService.DeleteAsset(ctx.Request().Context(), actor, id); err != nil {
		c.logger.Error("DeleteAsset: ошибка при удалении актива", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось удалить актив", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, struct{}{}, "Актив успешно удалён", http.StatusOK)
}

func (c *AssetController) GetAssetHistory(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id", "актив")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	res, total, err := c.assetService.GetHistory(ctx.Request().Context(), actor, id, filter.Limit, filter.Offset)
	if err != nil {
		c.logger.Error("GetAssetHistory: ошибка при получении истории", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить историю актива", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "История актива получена", http.StatusOK, total)
}

func (c *AssetController) GetDepreciationSchedule(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id", "актив")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetService.GetDepreciationSchedule(ctx.Request().Context(), actor, id)
	if err != nil {
		c.logger.Error("GetDepreciationSchedule: ошибка построения графика", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось построить график амортизации", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "График амортизации построен", http.StatusOK)
}

// UploadDocument принимает multipart: file + kind (image|document).
func (c *AssetController) UploadDocument(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	id, err := parseIDParam(ctx, "id", "актив")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	kind := dto.AttachmentKind(ctx.FormValue("kind"))
	uploadContext := config.UploadAssetDocument
	switch kind {
	case dto.AttachmentImage:
		uploadContext = config.UploadAssetImage
	case dto.AttachmentDocument, "":
		kind = dto.AttachmentDocument
	default:
		return utils.ErrorResponse(ctx, apperrors.NewValidationError("kind", "ожидается image или document"), c.logger)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Файл не был передан", apperrors.ErrBadRequest, nil),
			c.logger,
		)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Ошибка обработки файла", err, nil),
			c.logger,
		)
	}
	defer src.Close()

	if err := validation.ValidateFile(fileHeader, src, uploadContext); err != nil {
		c.logger.Warn("файл не прошёл проверку", zap.String("file", fileHeader.Filename), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.assetService.AttachDocument(ctx.Request().Context(), actor, id, kind, src, fileHeader.Filename)
	if err != nil {
		c.logger.Error("UploadDocument: не удалось прикрепить файл", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось прикрепить файл", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Файл прикреплён к активу", http.StatusOK)
}

// ImportAssets - загрузка реестра активов из xlsx.
func (c *AssetController) ImportAssets(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Файл не был передан", apperrors.ErrBadRequest, nil),
			c.logger,
		)
	}
	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Ошибка обработки файла", err, nil),
			c.logger,
		)
	}
	defer src.Close()

	if err := validation.ValidateFile(fileHeader, src, config.UploadAssetImport); err != nil {
		c.logger.Warn("файл не прошёл проверку", zap.String("file", fileHeader.Filename), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	c.logger.Info("ImportAssets: импорт реестра", zap.String("file", fileHeader.Filename), zap.Uint64("userID", actor.UserID))
	res, err := c.importService.ImportFromExcel(ctx.Request().Context(), actor, src)
	if err != nil {
		c.logger.Error("ImportAssets: ошибка импорта", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось импортировать активы", err, nil),
			c.logger,
		)
	}

	return utils.SuccessResponse(ctx, res, "Импорт завершён", http.StatusOK)
}
