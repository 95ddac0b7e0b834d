package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/partslib/internal/parts/events"
	"github.com/bitfantasy/partslib/internal/parts/metrics"
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/bitfantasy/partslib/internal/parts/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Library 零件库门面：库级聚合查询与整体重置
type Library struct {
	repos      *repository.Repositories
	store      storage.Store
	notify     *notifier
	logger     *zap.Logger
	components *ComponentService
	hierarchy  *HierarchyService
	suppliers  *SupplierService
}

func NewLibrary(repos *repository.Repositories, store storage.Store, notify *notifier, logger *zap.Logger,
	components *ComponentService, hierarchy *HierarchyService, suppliers *SupplierService) *Library {
	return &Library{
		repos:      repos,
		store:      store,
		notify:     notify,
		logger:     logger,
		components: components,
		hierarchy:  hierarchy,
		suppliers:  suppliers,
	}
}

// TotalValue sums unit_price × quantity over non-archived components.
// Components without a unit price contribute nothing.
func (l *Library) TotalValue(ctx context.Context) (decimal.Decimal, error) {
	rows, err := l.repos.Component.ListPricedQuantities(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load prices: %w", err)
	}
	total := decimal.Zero
	for _, r := range rows {
		if !r.UnitPrice.Valid {
			continue
		}
		total = total.Add(r.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(r.Quantity))))
	}
	return total, nil
}

// ClearResult 清空结果：各表删除行数
type ClearResult struct {
	HierarchyEdges int64 `json:"hierarchy_edges"`
	FileLinks      int64 `json:"file_links"`
	Components     int64 `json:"components"`
	Files          int64 `json:"files"`
	Suppliers      int64 `json:"suppliers"`
	Materials      int64 `json:"materials"`
	Requirements   int64 `json:"requirements"`
	StoredObjects  int   `json:"stored_objects"`
}

// ClearAll 清空整个零件库（不可恢复）。
// Join rows go first, then base entities, all in one transaction. The storage
// area is purged after commit, keeping only the reserved marker file.
func (l *Library) ClearAll(ctx context.Context) (*ClearResult, error) {
	res := &ClearResult{}
	err := l.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		steps := []struct {
			name string
			n    *int64
			fn   func(context.Context) (int64, error)
		}{
			{"component_components", &res.HierarchyEdges, tx.Hierarchy.DeleteAll},
			{"component_files", &res.FileLinks, tx.Component.DeleteAllFileLinks},
			{"components", &res.Components, tx.Component.DeleteAll},
			{"files", &res.Files, tx.File.DeleteAll},
			{"suppliers", &res.Suppliers, tx.Supplier.DeleteAll},
			{"materials", &res.Materials, tx.Material.DeleteAll},
			{"requirements", &res.Requirements, tx.Requirement.DeleteAll},
		}
		for _, step := range steps {
			n, err := step.fn(ctx)
			if err != nil {
				return fmt.Errorf("clear %s: %w", step.name, err)
			}
			*step.n = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if l.store != nil {
		n, err := l.store.Purge(ctx)
		res.StoredObjects = n
		if err != nil {
			return res, fmt.Errorf("purge storage: %v: %w", err, ErrStorageIO)
		}
	}

	metrics.LibraryClears.Inc()
	l.logger.Info("Library cleared",
		zap.Int64("components", res.Components),
		zap.Int64("hierarchy_edges", res.HierarchyEdges),
		zap.Int64("files", res.Files),
		zap.Int64("suppliers", res.Suppliers),
		zap.Int("stored_objects", res.StoredObjects))
	l.notify.emit(ctx, events.LibraryCleared, res)
	return res, nil
}

// LibrarySummary 库概览
type LibrarySummary struct {
	Components         int64  `json:"components"`
	ArchivedComponents int64  `json:"archived_components"`
	HierarchyEdges     int64  `json:"hierarchy_edges"`
	Suppliers          int64  `json:"suppliers"`
	Files              int64  `json:"files"`
	Materials          int64  `json:"materials"`
	Requirements       int64  `json:"requirements"`
	TotalValue         string `json:"total_value"`
}

// Summary 统计各实体数量与库存总值
func (l *Library) Summary(ctx context.Context) (*LibrarySummary, error) {
	active, err := l.repos.Component.Count(ctx, false)
	if err != nil {
		return nil, err
	}
	all, err := l.repos.Component.Count(ctx, true)
	if err != nil {
		return nil, err
	}
	out := &LibrarySummary{Components: active, ArchivedComponents: all - active}
	counters := []struct {
		dst *int64
		fn  func(context.Context) (int64, error)
	}{
		{&out.HierarchyEdges, l.repos.Hierarchy.Count},
		{&out.Suppliers, l.repos.Supplier.Count},
		{&out.Files, l.repos.File.Count},
		{&out.Materials, l.repos.Material.Count},
		{&out.Requirements, l.repos.Requirement.Count},
	}
	for _, c := range counters {
		if *c.dst, err = c.fn(ctx); err != nil {
			return nil, err
		}
	}
	total, err := l.TotalValue(ctx)
	if err != nil {
		return nil, err
	}
	out.TotalValue = total.StringFixed(2)
	return out, nil
}

// SeedSample 写入示例数据：一个供应商和一个由螺钉与螺母组成的支架组件
func (l *Library) SeedSample(ctx context.Context) error {
	if _, err := l.repos.Component.FindByNumber(ctx, "ASM-BRK-001"); err == nil {
		return fmt.Errorf("sample data already present: %w", ErrDuplicateKey)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	supplier, err := l.suppliers.Create(ctx, &SupplierInput{
		Name:        "Würth",
		Description: "Fasteners",
		Street:      "Reinhold-Würth-Straße",
		HouseNumber: "12",
		PostalCode:  "74653",
		City:        "Künzelsau",
		Country:     "Germany",
	})
	if err != nil {
		return fmt.Errorf("seed supplier: %w", err)
	}

	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	mass := func(v float64) *float64 { return &v }

	screw, err := l.components.Create(ctx, &CreateComponentInput{
		Number:             "SCR-M3-10",
		Name:               "Socket head screw M3x10",
		Description:        "ISO 4762, A2 stainless",
		Material:           "A2-70",
		Mass:               mass(1.1),
		Quantity:           100,
		MakeOrBuy:          "buy",
		ManufacturerNumber: "ISO4762-M3x10",
		UnitPrice:          price("0.10"),
		SupplierID:         &supplier.ID,
	})
	if err != nil {
		return fmt.Errorf("seed screw: %w", err)
	}
	nut, err := l.components.Create(ctx, &CreateComponentInput{
		Number:             "NUT-M3",
		Name:               "Hex nut M3",
		Description:        "ISO 4032, A2 stainless",
		Material:           "A2-70",
		Mass:               mass(0.4),
		Quantity:           150,
		MakeOrBuy:          "buy",
		ManufacturerNumber: "ISO4032-M3",
		UnitPrice:          price("0.15"),
		SupplierID:         &supplier.ID,
	})
	if err != nil {
		return fmt.Errorf("seed nut: %w", err)
	}
	bracket, err := l.components.Create(ctx, &CreateComponentInput{
		Number:      "ASM-BRK-001",
		Name:        "Mounting bracket assembly",
		Description: "Bent sheet bracket with fasteners",
		Material:    "S235",
		MakeOrBuy:   "make",
	})
	if err != nil {
		return fmt.Errorf("seed bracket: %w", err)
	}

	for _, child := range []string{screw.ID, nut.ID} {
		if _, err := l.hierarchy.AddChild(ctx, bracket.ID, child, 4); err != nil {
			return fmt.Errorf("seed hierarchy: %w", err)
		}
	}
	l.logger.Info("Sample data seeded", zap.String("assembly", bracket.Number))
	return nil
}
