package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"github.com/bitfantasy/partslib/internal/parts/events"
	"github.com/bitfantasy/partslib/internal/parts/metrics"
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// ImportService 从电子表格批量导入组件
type ImportService struct {
	repos  *repository.Repositories
	notify *notifier
	logger *zap.Logger
	opts   Options
}

func NewImportService(repos *repository.Repositories, notify *notifier, logger *zap.Logger, opts Options) *ImportService {
	return &ImportService{repos: repos, notify: notify, logger: logger, opts: opts}
}

// RowError 单行导入失败原因，Row 为表格中的行号（从1开始，含表头）
type RowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportSummary 导入结果
type ImportSummary struct {
	Sheet    string     `json:"sheet"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`

	Components []entity.Component `json:"-"`
}

// requiredColumns must all be present in the header row and non-empty in every imported row.
var requiredColumns = []string{"uuid", "number", "name"}

// columnAliases maps alternative header spellings onto canonical column names.
var columnAliases = map[string]string{
	"id":              "uuid",
	"part_number":     "number",
	"lifecycle":       "lifecycle_state",
	"state":           "lifecycle_state",
	"price":           "unit_price",
	"manufacturer_pn": "manufacturer_number",
	"mpn":             "manufacturer_number",
	"make_buy":        "make_or_buy",
	"supplier_name":   "supplier",
	"stock":           "quantity",
	"qty":             "quantity",
}

// knownColumns are mapped onto Component fields; any other header lands in Attributes.
var knownColumns = map[string]bool{
	"uuid": true, "number": true, "name": true, "description": true, "revision": true,
	"lifecycle_state": true, "owner": true, "material": true, "mass": true,
	"dimension_x": true, "dimension_y": true, "dimension_z": true, "quantity": true,
	"lead_time": true, "make_or_buy": true, "manufacturer_number": true,
	"unit_price": true, "currency": true, "supplier": true,
}

// rowDefaults returns the value applied to each optional column left blank in a row.
func (s *ImportService) rowDefaults() map[string]string {
	return map[string]string{
		"description":     "No description",
		"revision":        "1",
		"lifecycle_state": "In Work",
		"owner":           s.opts.DefaultOwner,
		"currency":        s.opts.DefaultCurrency,
	}
}

// ImportFile 从文件路径导入；sheet 为空时取第一个工作表
func (s *ImportService) ImportFile(ctx context.Context, path, sheet string) (*ImportSummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return s.ImportWorkbook(ctx, f, sheet)
}

// Import 从数据流导入
func (s *ImportService) Import(ctx context.Context, r io.Reader, sheet string) (*ImportSummary, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	defer f.Close()
	return s.ImportWorkbook(ctx, f, sheet)
}

// ImportWorkbook 导入已打开的工作簿。
// Rows missing uuid, number or name are skipped and reported; the valid rows
// are inserted in one transaction, so a constraint violation rejects the whole batch.
func (s *ImportService) ImportWorkbook(ctx context.Context, f *excelize.File, sheet string) (*ImportSummary, error) {
	start := time.Now()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fieldError("sheet", "sheet %q not found", sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	summary := &ImportSummary{Sheet: sheet, Errors: []RowError{}}
	if len(rows) == 0 {
		return summary, nil
	}

	header := s.parseHeader(rows[0])
	var missing []string
	for _, col := range requiredColumns {
		if _, ok := header.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fieldError("header", "missing required columns: %s", strings.Join(missing, ", "))
	}

	suppliers := map[string]*string{}
	now := time.Now()
	defaults := s.rowDefaults()

	for i, raw := range rows[1:] {
		rowNum := i + 2
		values := header.values(raw)
		if len(values) == 0 {
			continue
		}
		c, reason := s.buildComponent(values, defaults, now)
		if reason != "" {
			summary.Skipped++
			summary.Errors = append(summary.Errors, RowError{Row: rowNum, Reason: reason})
			s.logger.Warn("Import row skipped", zap.String("sheet", sheet), zap.Int("row", rowNum), zap.String("reason", reason))
			continue
		}
		if name := values["supplier"]; name != "" {
			id, err := s.lookupSupplier(ctx, suppliers, name)
			if err != nil {
				return nil, err
			}
			if id != nil {
				c.SupplierID = id
			} else {
				c.Attributes["supplier"] = name
			}
		}
		summary.Components = append(summary.Components, *c)
	}

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		return tx.Component.CreateBatch(ctx, summary.Components)
	})
	if err != nil {
		metrics.ImportRows.WithLabelValues("failed").Add(float64(len(summary.Components)))
		s.logger.Error("Import batch rejected", zap.String("sheet", sheet), zap.Int("rows", len(summary.Components)), zap.Error(err))
		return nil, fmt.Errorf("import batch of %d rows: %w", len(summary.Components), err)
	}

	summary.Imported = len(summary.Components)
	metrics.ImportRows.WithLabelValues("imported").Add(float64(summary.Imported))
	metrics.ImportRows.WithLabelValues("skipped").Add(float64(summary.Skipped))
	metrics.ImportDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("Import completed",
		zap.String("sheet", sheet),
		zap.Int("imported", summary.Imported),
		zap.Int("skipped", summary.Skipped))
	s.notify.emit(ctx, events.ImportCompleted, map[string]interface{}{
		"sheet":    sheet,
		"imported": summary.Imported,
		"skipped":  summary.Skipped,
	})
	return summary, nil
}

type sheetHeader struct {
	names []string
	index map[string]int
}

// parseHeader folds header cells: case-insensitive, spaces and dashes become underscores.
func (s *ImportService) parseHeader(row []string) sheetHeader {
	h := sheetHeader{names: make([]string, len(row)), index: map[string]int{}}
	fold := cases.Fold()
	for i, cell := range row {
		name := fold.String(strings.TrimSpace(cell))
		name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		h.names[i] = name
		if name == "" {
			continue
		}
		if _, dup := h.index[name]; !dup {
			h.index[name] = i
		}
	}
	return h
}

// values returns the non-empty cells of a row keyed by column name.
func (h sheetHeader) values(row []string) map[string]string {
	out := map[string]string{}
	for i, cell := range row {
		if i >= len(h.names) || h.names[i] == "" {
			continue
		}
		v := strings.TrimSpace(cell)
		if v == "" {
			continue
		}
		if _, set := out[h.names[i]]; !set {
			out[h.names[i]] = v
		}
	}
	return out
}

// buildComponent converts one row. A non-empty reason means the row is skipped.
func (s *ImportService) buildComponent(values map[string]string, defaults map[string]string, now time.Time) (*entity.Component, string) {
	for _, col := range requiredColumns {
		if values[col] == "" {
			return nil, "missing " + col
		}
	}
	if len(values["uuid"]) > 36 {
		return nil, "uuid longer than 36 characters"
	}
	for col, def := range defaults {
		if values[col] == "" {
			values[col] = def
		}
	}

	c := &entity.Component{
		ID:                 values["uuid"],
		Number:             values["number"],
		Name:               values["name"],
		Description:        values["description"],
		Revision:           values["revision"],
		LifecycleState:     values["lifecycle_state"],
		Owner:              values["owner"],
		Material:           values["material"],
		ManufacturerNumber: values["manufacturer_number"],
		Currency:           strings.ToUpper(values["currency"]),
		Attributes:         map[string]interface{}{},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if len(c.Currency) != 3 {
		return nil, fmt.Sprintf("currency %q is not a 3-letter code", c.Currency)
	}

	var err error
	if c.Mass, err = parseFloat(values, "mass"); err != nil {
		return nil, err.Error()
	}
	if c.DimensionX, err = parseFloat(values, "dimension_x"); err != nil {
		return nil, err.Error()
	}
	if c.DimensionY, err = parseFloat(values, "dimension_y"); err != nil {
		return nil, err.Error()
	}
	if c.DimensionZ, err = parseFloat(values, "dimension_z"); err != nil {
		return nil, err.Error()
	}
	if q, err := parseInt(values, "quantity"); err != nil {
		return nil, err.Error()
	} else if q != nil {
		if *q < 0 {
			return nil, "quantity must be >= 0"
		}
		c.Quantity = *q
	}
	if c.LeadTime, err = parseInt(values, "lead_time"); err != nil {
		return nil, err.Error()
	}
	if v := values["make_or_buy"]; v != "" {
		c.MakeOrBuy = entity.MakeOrBuy(strings.ToLower(v))
		if !c.MakeOrBuy.Valid() {
			return nil, fmt.Sprintf("make_or_buy %q must be make or buy", v)
		}
	}
	if v := values["unit_price"]; v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Sprintf("unit_price %q is not a decimal", v)
		}
		if verr := checkPrice(&p); verr != nil {
			return nil, "unit_price out of range"
		}
		c.UnitPrice = decimal.NewNullDecimal(p.Round(2))
	}

	for col, v := range values {
		if !knownColumns[col] {
			c.Attributes[col] = v
		}
	}
	return c, ""
}

func (s *ImportService) lookupSupplier(ctx context.Context, cache map[string]*string, name string) (*string, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}
	sup, err := s.repos.Supplier.FindByName(ctx, name)
	switch {
	case err == nil:
		cache[name] = &sup.ID
	case errors.Is(err, repository.ErrNotFound):
		cache[name] = nil
	default:
		return nil, fmt.Errorf("lookup supplier %q: %w", name, err)
	}
	return cache[name], nil
}

func parseFloat(values map[string]string, col string) (*float64, error) {
	v, ok := values[col]
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return nil, fmt.Errorf("%s %q is not a number", col, v)
	}
	return &f, nil
}

func parseInt(values map[string]string, col string) (*int, error) {
	v, ok := values[col]
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		// spreadsheets frequently store integers as 10.0
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int(f)) {
			return nil, fmt.Errorf("%s %q is not an integer", col, v)
		}
		n = int(f)
	}
	return &n, nil
}
