package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
	"asset-system/pkg/utils"
)

// parseIDParam читает числовой path-параметр. Ошибка уже в виде HttpError для ErrorResponse.
func parseIDParam(ctx echo.Context, name, entity string) (uint64, error) {
	raw := ctx.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewHttpError(
			http.StatusBadRequest,
			"Неверный формат ID: "+entity,
			apperrors.ErrBadRequest,
			map[string]interface{}{"param": raw},
		)
	}
	return id, nil
}

func actorFromRequest(ctx echo.Context) (types.Actor, error) {
	actor, err := utils.ActorFromCtx(ctx.Request().Context())
	if err != nil {
		return types.Actor{}, apperrors.NewHttpError(http.StatusUnauthorized, "Пользователь не аутентифицирован", apperrors.ErrUnauthorized, nil)
	}
	return actor, nil
}

// bindAndValidate - Bind + Validate с логированием, как во всех обработчиках с телом запроса.
func bindAndValidate(ctx echo.Context, dst interface{}, op string, logger *zap.Logger) error {
	if err := ctx.Bind(dst); err != nil {
		logger.Warn(op+": ошибка привязки данных", zap.Error(err))
		return apperrors.NewHttpError(
			http.StatusBadRequest,
			"Неверный формат данных в теле запроса",
			apperrors.ErrBadRequest,
			map[string]interface{}{"error": err.Error()},
		)
	}
	if err := ctx.Validate(dst); err != nil {
		logger.Warn(op+": ошибка валидации данных", zap.Error(err))
		return err
	}
	return nil
}

func queryInt(ctx echo.Context, name string, fallback int) int {
	if raw := ctx.QueryParam(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
