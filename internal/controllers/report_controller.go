package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/services"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
	"asset-system/pkg/utils"
)

const reportTimeout = 2 * time.Minute

type ReportController struct {
	reportService services.ReportServiceInterface
	exporter      *DepreciationExporter
	exportLimit   int
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, exporter *DepreciationExporter, exportLimit int, logger *zap.Logger) *ReportController {
	if exportLimit <= 0 {
		exportLimit = 100000
	}
	return &ReportController{reportService: reportService, exporter: exporter, exportLimit: exportLimit, logger: logger}
}

func (c *ReportController) GetDashboard(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var filter dto.DashboardFilter
	if err := bindAndValidate(ctx, &filter, "GetDashboard", c.logger); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.reportService.GetDashboardSummary(ctx.Request().Context(), actor, filter)
	if err != nil {
		c.logger.Error("GetDashboard: ошибка построения сводки", zap.Error(err))
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось получить данные для дашборда", err, nil),
			c.logger,
		)
	}
	return utils.SuccessResponse(ctx, res, "Данные для дашборда получены", http.StatusOK)
}

func (c *ReportController) GetDepreciationReport(ctx echo.Context) error {
	actor, err := actorFromRequest(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	filter, format, err := c.parseFilters(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Debug("Запрос на отчёт по амортизации", zap.Any("filters", filter), zap.String("format", format))

	reqCtx, cancel := utils.ContextWithTimeout(ctx, reportTimeout)
	defer cancel()

	data, total, err := c.reportService.GetDepreciationReport(reqCtx, actor, filter)
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось сформировать отчёт", err, nil),
			c.logger,
		)
	}

	switch format {
	case "xlsx":
		c.setAttachmentHeaders(ctx, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx")
		return c.exporter.WriteXLSX(ctx.Response().Writer, data)
	case "pdf":
		c.setAttachmentHeaders(ctx, "application/pdf", "pdf")
		return c.exporter.WritePDF(ctx.Response().Writer, data)
	}

	return utils.SuccessResponse(ctx, data, "Отчёт успешно сформирован", http.StatusOK, total)
}

func (c *ReportController) setAttachmentHeaders(ctx echo.Context, contentType, ext string) {
	fileName := fmt.Sprintf("depreciation_%s.%s", time.Now().Format("2006-01-02"), ext)
	ctx.Response().Header().Set(echo.HeaderContentType, contentType)
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
}

func (c *ReportController) parseFilters(ctx echo.Context) (entities.ReportFilter, string, error) {
	stdFilter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	filter := entities.ReportFilter{
		Page:     stdFilter.Page,
		PerPage:  stdFilter.Limit,
		Location: strings.TrimSpace(ctx.QueryParam("location")),
	}

	format := strings.ToLower(ctx.QueryParam("format"))
	switch format {
	case "", "json":
		format = "json"
	case "xlsx", "pdf":
		// выгружаем всё
		filter.Page = 1
		filter.PerPage = c.exportLimit
	default:
		return filter, "", apperrors.NewValidationError("format", "ожидается json, xlsx или pdf")
	}

	for _, raw := range splitQueryList(ctx, "status") {
		status := entities.AssetStatus(raw)
		if !status.Valid() {
			return filter, "", apperrors.NewValidationError("status", "неизвестный статус '%s'", raw)
		}
		filter.Statuses = append(filter.Statuses, status)
	}

	ids, err := utils.ParseUint64Slice(splitQueryList(ctx, "asset_type_ids"))
	if err != nil {
		return filter, "", apperrors.NewValidationError("asset_type_ids", "ожидается список чисел")
	}
	filter.AssetTypeIDs = ids

	for name, dst := range map[string]**time.Time{"date_from": &filter.DateFrom, "date_to": &filter.DateTo} {
		raw := ctx.QueryParam(name)
		if raw == "" {
			continue
		}
		d, err := types.ParseDate(raw)
		if err != nil {
			return filter, "", apperrors.NewValidationError(name, "%s", err.Error())
		}
		t := d.Time
		*dst = &t
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return filter, "", apperrors.NewValidationError("date_to", "конец периода раньше начала")
	}

	return filter, format, nil
}

// splitQueryList понимает и name[]=a&name[]=b, и name=a,b.
func splitQueryList(ctx echo.Context, name string) []string {
	var values []string
	if arr, ok := ctx.QueryParams()[name+"[]"]; ok {
		values = arr
	} else if s := ctx.QueryParam(name); s != "" {
		values = strings.Split(s, ",")
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
