package controllers

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/pkg/utils"
)

var depreciationHeaders = []string{
	"№", "Инв. код", "Наименование", "Тип", "Статус", "Расположение", "Дата покупки",
	"Стоимость покупки", "Метод", "Срок (лет)", "Ликвидационная", "Остаточная", "Амортизация", "Износ, %",
}

var statusTitles = map[string]string{
	"available":         "Свободен",
	"assigned":          "Выдан",
	"under_maintenance": "На обслуживании",
	"disposed":          "Списан",
}

var methodTitles = map[string]string{
	"none":             "Нет",
	"straight_line":    "Линейный",
	"reducing_balance": "Уменьшаемого остатка",
}

func titleOr(m map[string]string, key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return key
}

// DepreciationExporter строит xlsx и pdf выгрузки из строк отчёта по амортизации.
type DepreciationExporter struct {
	fontPath string
	logger   *zap.Logger
	now      func() time.Time
}

func NewDepreciationExporter(fontPath string, logger *zap.Logger) *DepreciationExporter {
	return &DepreciationExporter{fontPath: fontPath, logger: logger, now: time.Now}
}

type reportTotals struct {
	cost, value, depreciation decimal.Decimal
}

func sumReport(items []dto.DepreciationReportItemDTO) reportTotals {
	var t reportTotals
	for _, item := range items {
		t.cost = t.cost.Add(item.PurchaseCost)
		t.value = t.value.Add(item.CurrentValue)
		t.depreciation = t.depreciation.Add(item.Depreciation)
	}
	return t
}

func (e *DepreciationExporter) WriteXLSX(w io.Writer, items []dto.DepreciationReportItemDTO) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Амортизация"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &depreciationHeaders); err != nil {
		return err
	}
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})
	lastCol, _ := excelize.ColumnNumberToName(len(depreciationHeaders))
	_ = f.SetCellStyle(sheet, "A1", lastCol+"1", boldStyle)

	for i, item := range items {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{
			i + 1, item.AssetCode, item.Name, item.AssetTypeName, titleOr(statusTitles, item.Status), item.Location,
			item.PurchaseDate, item.PurchaseCost.InexactFloat64(), titleOr(methodTitles, item.Method), item.UsefulLifeYears,
			item.SalvageValue.InexactFloat64(), item.CurrentValue.InexactFloat64(), item.Depreciation.InexactFloat64(),
			item.DepreciationPercent.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	totalRow := len(items) + 2
	totals := sumReport(items)
	totalCell, _ := excelize.CoordinatesToCellName(1, totalRow)
	_ = f.SetSheetRow(sheet, totalCell, &[]interface{}{
		"", "", "Итого", "", "", "", "", totals.cost.InexactFloat64(), "", "", "",
		totals.value.InexactFloat64(), totals.depreciation.InexactFloat64(),
	})
	_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("%s%d", lastCol, totalRow), boldStyle)
	_ = f.SetCellStyle(sheet, "H2", fmt.Sprintf("H%d", totalRow), moneyStyle)
	_ = f.SetCellStyle(sheet, "K2", fmt.Sprintf("M%d", totalRow), moneyStyle)

	_ = f.SetColWidth(sheet, "B", "B", 16)
	_ = f.SetColWidth(sheet, "C", "C", 36)
	_ = f.SetColWidth(sheet, "D", "F", 20)
	_ = f.SetColWidth(sheet, "G", "N", 16)

	return f.Write(w)
}

func (e *DepreciationExporter) WritePDF(w io.Writer, items []dto.DepreciationReportItemDTO) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	text := e.setupFont(pdf)

	pdf.SetTitle(text("Отчёт по амортизации активов"), true)
	pdf.AddPage()

	pdf.SetFontSize(14)
	pdf.CellFormat(0, 10, text("Отчёт по амортизации активов"), "", 1, "L", false, 0, "")
	pdf.SetFontSize(9)
	pdf.CellFormat(0, 6, text("Сформирован: ")+e.now().Format("02.01.2006 15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	// без колонок "№", "Расположение" и "Срок" - не влезают в альбомный A4
	widths := []float64{24, 58, 30, 26, 22, 26, 30, 24, 24, 14}
	headers := []string{"Инв. код", "Наименование", "Тип", "Статус", "Дата покупки", "Стоимость", "Метод", "Остаточная", "Амортизация", "%"}

	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, text(h), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	for _, item := range items {
		cells := []string{
			item.AssetCode, item.Name, item.AssetTypeName, titleOr(statusTitles, item.Status), item.PurchaseDate,
			item.PurchaseCost.StringFixed(2), titleOr(methodTitles, item.Method), item.CurrentValue.StringFixed(2),
			item.Depreciation.StringFixed(2), item.DepreciationPercent.StringFixed(1),
		}
		for i, cell := range cells {
			align := "L"
			if i >= 5 && i != 6 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, truncateRunes(text(cell), int(widths[i]/1.8)), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	totals := sumReport(items)
	pdf.SetFontSize(10)
	pdf.Ln(2)
	pdf.CellFormat(0, 6, text(fmt.Sprintf("Итого: стоимость %s, остаточная %s, амортизация %s",
		totals.cost.StringFixed(2), totals.value.StringFixed(2), totals.depreciation.StringFixed(2))), "", 1, "L", false, 0, "")

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("ошибка построения pdf: %w", err)
	}
	return pdf.Output(w)
}

// setupFont подключает TTF с кириллицей, иначе возвращает транслитерацию для встроенного шрифта.
func (e *DepreciationExporter) setupFont(pdf *gofpdf.Fpdf) func(string) string {
	if e.fontPath != "" {
		pdf.AddUTF8Font("report", "", e.fontPath)
		if pdf.Err() {
			e.logger.Warn("Не удалось подключить шрифт для pdf, текст будет транслитерирован",
				zap.String("font", e.fontPath), zap.Error(pdf.Error()))
			pdf.ClearError()
		} else {
			pdf.SetFont("report", "", 9)
			return func(s string) string { return s }
		}
	}
	pdf.SetFont("Helvetica", "", 9)
	return utils.Transliterate
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if max <= 1 || len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "."
}
