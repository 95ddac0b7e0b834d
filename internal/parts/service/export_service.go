package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ExportService 组件目录导出
type ExportService struct {
	repos *repository.Repositories
}

func NewExportService(repos *repository.Repositories) *ExportService {
	return &ExportService{repos: repos}
}

const (
	componentSheet = "Components"
	summarySheet   = "Summary"
)

// componentColumns is the export column order; the import understands every header.
var componentColumns = []string{
	"uuid", "number", "name", "description", "revision", "lifecycle_state", "owner",
	"material", "mass", "dimension_x", "dimension_y", "dimension_z", "quantity",
	"lead_time", "make_or_buy", "manufacturer_number", "unit_price", "currency", "supplier",
}

var componentColumnWidths = []float64{38, 14, 28, 36, 9, 14, 12, 16, 8, 11, 11, 11, 9, 9, 11, 20, 10, 9, 20}

func headerStyle(f *excelize.File) int {
	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	return style
}

func writeHeader(f *excelize.File, sheet string, columns []string, widths []float64) error {
	style := headerStyle(f)
	for i, h := range columns {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, style)
		if i < len(widths) {
			f.SetColWidth(sheet, col, col, widths[i])
		}
	}
	return nil
}

// Export 导出组件目录为xlsx，第二个工作表为汇总
func (s *ExportService) Export(ctx context.Context, includeArchived bool) (*excelize.File, string, error) {
	items, err := s.repos.Component.ListAll(ctx, includeArchived)
	if err != nil {
		return nil, "", fmt.Errorf("list components: %w", err)
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", componentSheet)
	if err := writeHeader(f, componentSheet, componentColumns, componentColumnWidths); err != nil {
		return nil, "", err
	}

	total := decimal.Zero
	for i := range items {
		c := &items[i]
		row := i + 2
		values := componentRow(c)
		for j, v := range values {
			if v == nil {
				continue
			}
			col, _ := excelize.ColumnNumberToName(j + 1)
			f.SetCellValue(componentSheet, fmt.Sprintf("%s%d", col, row), v)
		}
		if !c.Archived && c.UnitPrice.Valid {
			total = total.Add(c.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(c.Quantity))))
		}
	}
	f.SetPanes(componentSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	// 汇总
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, "", err
	}
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	summary := [][]interface{}{
		{"components", len(items)},
		{"total_value", total.StringFixed(2)},
		{"exported_at", time.Now().Format(time.RFC3339)},
	}
	for i, row := range summary {
		f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), row[1])
	}
	f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold)
	f.SetColWidth(summarySheet, "A", "B", 20)

	filename := fmt.Sprintf("components_%s.xlsx", time.Now().Format("20060102_150405"))
	return f, filename, nil
}

func componentRow(c *entity.Component) []interface{} {
	row := []interface{}{
		c.ID, c.Number, c.Name, c.Description, c.Revision, c.LifecycleState, c.Owner,
		c.Material, floatOrNil(c.Mass), floatOrNil(c.DimensionX), floatOrNil(c.DimensionY), floatOrNil(c.DimensionZ),
		c.Quantity, intOrNil(c.LeadTime), string(c.MakeOrBuy), c.ManufacturerNumber, nil, c.Currency, nil,
	}
	if c.UnitPrice.Valid {
		row[16] = c.UnitPrice.Decimal.StringFixed(2)
	}
	if c.Supplier != nil {
		row[18] = c.Supplier.Name
	}
	return row
}

func floatOrNil(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intOrNil(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// Template 生成导入模板xlsx
func (s *ExportService) Template() (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", componentSheet)
	if err := writeHeader(f, componentSheet, componentColumns, componentColumnWidths); err != nil {
		return nil, err
	}

	sample := []interface{}{
		"3f2c9a52-0b7e-4d0c-9d8e-5c1f4c7a1e01", "SCR-M3-10", "Socket head screw M3x10", "ISO 4762, A2 stainless",
		"1", "In Work", "System", "A2-70", 1.1, 10, 3, 3, 100, 5, "buy", "ISO4762-M3x10", "0.10", "EUR", "",
	}
	for j, v := range sample {
		col, _ := excelize.ColumnNumberToName(j + 1)
		f.SetCellValue(componentSheet, col+"2", v)
	}

	helpSheet := "Help"
	if _, err := f.NewSheet(helpSheet); err != nil {
		return nil, err
	}
	help := [][]string{
		{"column", "meaning", "required"},
		{"uuid", "component identifier, unique", "yes"},
		{"number", "part number, unique", "yes"},
		{"name", "component name", "yes"},
		{"description", "defaults to \"No description\"", "no"},
		{"revision", "defaults to 1", "no"},
		{"lifecycle_state", "defaults to In Work", "no"},
		{"owner", "defaults to the configured owner", "no"},
		{"quantity", "units in stock, integer", "no"},
		{"lead_time", "days, integer", "no"},
		{"make_or_buy", "make or buy", "no"},
		{"unit_price", "decimal, two places", "no"},
		{"currency", "ISO 4217 code, defaults to the configured currency", "no"},
		{"supplier", "supplier name; unknown names are kept as an attribute", "no"},
		{"(other)", "any other column is stored in the component attributes", "no"},
	}
	for i, row := range help {
		for j, val := range row {
			col, _ := excelize.ColumnNumberToName(j + 1)
			f.SetCellValue(helpSheet, fmt.Sprintf("%s%d", col, i+1), val)
		}
	}
	f.SetColWidth(helpSheet, "A", "A", 18)
	f.SetColWidth(helpSheet, "B", "B", 56)
	f.SetColWidth(helpSheet, "C", "C", 10)
	return f, nil
}
