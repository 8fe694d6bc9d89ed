package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/entities"
	"asset-system/internal/repositories"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

const (
	colName = iota
	colSerial
	colCode
	colType
	colCost
	colDate
	colLocation
	colEmployee
	colCount
)

// ключевые слова заголовков, по которым находится шапка таблицы
var importHeaders = [colCount][]string{
	colName:     {"наименование", "название", "name"},
	colSerial:   {"серийный", "serial", "s/n"},
	colCode:     {"инвентарный", "код", "code"},
	colType:     {"тип", "type", "категория"},
	colCost:     {"стоимость", "цена", "cost"},
	colDate:     {"дата", "date"},
	colLocation: {"расположение", "место", "адрес", "location"},
	colEmployee: {"сотрудник", "табельный", "employee"},
}

var importDateLayouts = []string{"2006-01-02", "02.01.2006", "01-02-06", "1/2/06", "02/01/2006"}

type AssetImportServiceInterface interface {
	ImportFromExcel(ctx context.Context, actor types.Actor, file io.Reader) (*dto.ImportResultDTO, error)
}

// AssetImportService загружает активы из xlsx. Каждая строка проходит через CreateAsset со всеми проверками.
type AssetImportService struct {
	assets   AssetServiceInterface
	typeRepo repositories.AssetTypeRepositoryInterface
	logger   *zap.Logger
}

func NewAssetImportService(
	assets AssetServiceInterface,
	typeRepo repositories.AssetTypeRepositoryInterface,
	logger *zap.Logger,
) *AssetImportService {
	return &AssetImportService{assets: assets, typeRepo: typeRepo, logger: logger}
}

func (s *AssetImportService) ImportFromExcel(ctx context.Context, actor types.Actor, file io.Reader) (*dto.ImportResultDTO, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, apperrors.NewValidationError("file", "не удалось прочитать xlsx: %v", err)
	}
	defer f.Close()

	rows, header, idx, err := findImportHeader(f)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Импорт активов: найдена шапка", zap.Int("row", header+1), zap.Int("rows", len(rows)))

	typeCache := make(map[string]uint64)
	result := &dto.ImportResultDTO{}
	for i := header + 1; i < len(rows); i++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		row := rows[i]
		lineNum := i + 1

		name := safeCell(row, idx[colName])
		if name == "" || isTotalRow(name) {
			result.Skipped++
			continue
		}

		req, err := s.buildRow(ctx, row, idx, typeCache)
		if err == nil {
			req.Name = name
			_, err = s.assets.CreateAsset(ctx, actor, *req)
		}
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, apperrors.ErrDuplicate):
			// такой инвентарный код уже есть
			result.Skipped++
			result.Errors = append(result.Errors, dto.ImportRowErrorDTO{Row: lineNum, Message: "дубликат: " + err.Error()})
		default:
			result.Failed++
			result.Errors = append(result.Errors, dto.ImportRowErrorDTO{Row: lineNum, Message: err.Error()})
			s.logger.Warn("Импорт активов: строка не загружена", zap.Int("row", lineNum), zap.String("name", name), zap.Error(err))
		}
	}

	s.logger.Info("Импорт активов завершён",
		zap.Int("created", result.Created), zap.Int("skipped", result.Skipped), zap.Int("failed", result.Failed))
	return result, nil
}

func (s *AssetImportService) buildRow(ctx context.Context, row []string, idx [colCount]int, typeCache map[string]uint64) (*dto.CreateAssetDTO, error) {
	typeID, err := s.resolveType(ctx, safeCell(row, idx[colType]), typeCache)
	if err != nil {
		return nil, err
	}
	cost, err := parseImportCost(safeCell(row, idx[colCost]))
	if err != nil {
		return nil, err
	}
	purchaseDate, err := parseImportDate(safeCell(row, idx[colDate]))
	if err != nil {
		return nil, err
	}

	req := &dto.CreateAssetDTO{
		AssetTypeID:  typeID,
		PurchaseDate: purchaseDate,
		PurchaseCost: cost,
	}
	if v := safeCell(row, idx[colSerial]); v != "" {
		req.SerialNumber = null.StringFrom(v)
	}
	if v := safeCell(row, idx[colCode]); v != "" {
		req.AssetCode = null.StringFrom(v)
	}
	if v := safeCell(row, idx[colLocation]); v != "" {
		req.Location = null.StringFrom(v)
	}
	if v := safeCell(row, idx[colEmployee]); v != "" {
		employeeID, err := strconv.ParseUint(v, 10, 64)
		if err != nil || employeeID == 0 {
			return nil, apperrors.NewValidationError("employee_id", "неверный идентификатор сотрудника '%s'", v)
		}
		// актив уже числится за сотрудником
		req.InitialAssignment = &dto.InitialAssignmentDTO{EmployeeID: employeeID}
	}
	return req, nil
}

// resolveType находит тип по имени или создаёт новый.
func (s *AssetImportService) resolveType(ctx context.Context, name string, cache map[string]uint64) (uint64, error) {
	if name == "" {
		return 0, apperrors.NewValidationError("asset_type", "тип актива не указан")
	}
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id, nil
	}

	t, err := s.typeRepo.FindByName(ctx, nil, name)
	if err != nil {
		return 0, err
	}
	if t == nil {
		t = &entities.AssetType{Name: name}
		if _, err := s.typeRepo.CreateAssetType(ctx, nil, t); err != nil {
			return 0, fmt.Errorf("не удалось создать тип '%s': %w", name, err)
		}
		s.logger.Info("Импорт активов: создан тип", zap.String("name", name), zap.Uint64("id", t.ID))
	}
	cache[key] = t.ID
	return t.ID, nil
}

func findImportHeader(f *excelize.File) ([][]string, int, [colCount]int, error) {
	var idx [colCount]int
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, 0, idx, fmt.Errorf("ошибка чтения листа '%s': %w", sheet, err)
		}
		for rIdx, row := range rows {
			idx = matchHeader(row)
			if idx[colName] != -1 && idx[colCost] != -1 && idx[colDate] != -1 && idx[colType] != -1 {
				return rows, rIdx, idx, nil
			}
		}
	}
	return nil, 0, idx, apperrors.NewValidationError("file",
		"не найдена шапка таблицы: нужны колонки наименование, тип, стоимость и дата покупки")
}

func matchHeader(row []string) [colCount]int {
	var idx [colCount]int
	for i := range idx {
		idx[i] = -1
	}
	for cIdx, cell := range row {
		cell = strings.ToLower(strings.TrimSpace(cell))
		if cell == "" {
			continue
		}
		for col, keys := range importHeaders {
			if idx[col] != -1 {
				continue
			}
			if containsAny(cell, keys) {
				idx[col] = cIdx
				break
			}
		}
	}
	return idx
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func isTotalRow(val string) bool {
	v := strings.ToLower(val)
	return strings.Contains(v, "итого") || strings.Contains(v, "всего") || strings.Contains(v, "total")
}

func safeCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseImportCost(raw string) (decimal.Decimal, error) {
	clean := strings.NewReplacer(" ", "", "\u00a0", "", ",", ".").Replace(raw)
	if clean == "" {
		return decimal.Zero, apperrors.NewValidationError("purchase_cost", "стоимость не указана")
	}
	cost, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, apperrors.NewValidationError("purchase_cost", "неверная стоимость '%s'", raw)
	}
	return cost, nil
}

func parseImportDate(raw string) (types.Date, error) {
	if raw == "" {
		return types.Date{}, apperrors.NewValidationError("purchase_date", "дата покупки не указана")
	}
	for _, layout := range importDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return types.NewDate(t), nil
		}
	}
	// неотформатированная ячейка приходит серийным номером дня
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return types.NewDate(t), nil
		}
	}
	return types.Date{}, apperrors.NewValidationError("purchase_date", "неверная дата '%s'", raw)
}
