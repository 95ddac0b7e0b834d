package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ComponentRepository 组件仓库
type ComponentRepository struct {
	db *gorm.DB
}

func NewComponentRepository(db *gorm.DB) *ComponentRepository {
	return &ComponentRepository{db: db}
}

// ComponentFilter 组件列表筛选
type ComponentFilter struct {
	ListFilter
	SupplierID     string
	LifecycleState string
	MakeOrBuy      string
}

// Create 创建组件
func (r *ComponentRepository) Create(ctx context.Context, c *entity.Component) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

// CreateBatch 批量创建组件（单条INSERT语句分批执行）
func (r *ComponentRepository) CreateBatch(ctx context.Context, items []entity.Component) error {
	if len(items) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(&items, 100).Error)
}

// FindByID 根据ID查找组件（含供应商、CAD文件、附件）
func (r *ComponentRepository) FindByID(ctx context.Context, id string) (*entity.Component, error) {
	var c entity.Component
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("CADFile").
		First(&c, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	files, err := r.ListFiles(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Files = files
	return &c, nil
}

// FindByNumber 根据编号查找组件
func (r *ComponentRepository) FindByNumber(ctx context.Context, number string) (*entity.Component, error) {
	var c entity.Component
	if err := r.db.WithContext(ctx).First(&c, "number = ?", number).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// Exists reports whether a component row with id exists, archived or not.
func (r *ComponentRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Component{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// List 组件列表
func (r *ComponentRepository) List(ctx context.Context, f ComponentFilter) ([]entity.Component, int64, error) {
	f.ListFilter = f.ListFilter.normalized()
	var items []entity.Component
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Component{})
	if !f.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	if f.Search != "" {
		like := likePattern(f.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(number) LIKE ? OR LOWER(description) LIKE ?", like, like, like)
	}
	if f.SupplierID != "" {
		query = query.Where("supplier_id = ?", f.SupplierID)
	}
	if f.LifecycleState != "" {
		query = query.Where("lifecycle_state = ?", f.LifecycleState)
	}
	if f.MakeOrBuy != "" {
		query = query.Where("make_or_buy = ?", f.MakeOrBuy)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("number ASC").
		Offset(f.offset()).
		Limit(f.PageSize).
		Find(&items).Error
	return items, total, err
}

// ListAll returns every component ordered by number, for exports.
func (r *ComponentRepository) ListAll(ctx context.Context, includeArchived bool) ([]entity.Component, error) {
	var items []entity.Component
	query := r.db.WithContext(ctx).Preload("Supplier")
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}
	err := query.Order("number ASC").Find(&items).Error
	return items, err
}

// Update 更新组件
func (r *ComponentRepository) Update(ctx context.Context, c *entity.Component) error {
	return translate(r.db.WithContext(ctx).Omit("Supplier", "CADFile").Save(c).Error)
}

// SetArchived 设置归档标记
func (r *ComponentRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	res := r.db.WithContext(ctx).Model(&entity.Component{}).Where("id = ?", id).
		Updates(map[string]interface{}{"archived": archived, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除组件行（不处理关联）
func (r *ComponentRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.Component{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll 删除全部组件
func (r *ComponentRepository) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.db, &entity.Component{})
}

// Count 统计组件数
func (r *ComponentRepository) Count(ctx context.Context, includeArchived bool) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entity.Component{})
	if !includeArchived {
		query = query.Where("archived = ?", false)
	}
	err := query.Count(&count).Error
	return count, err
}

// PricedQuantity is the unit price and stock quantity of one component.
type PricedQuantity struct {
	UnitPrice decimal.NullDecimal
	Quantity  int
}

// ListPricedQuantities returns price and quantity for every non-archived component.
func (r *ComponentRepository) ListPricedQuantities(ctx context.Context) ([]PricedQuantity, error) {
	var rows []PricedQuantity
	err := r.db.WithContext(ctx).Model(&entity.Component{}).
		Select("unit_price, quantity").
		Where("archived = ?", false).
		Scan(&rows).Error
	return rows, err
}

// ClearSupplier 解除供应商关联
func (r *ComponentRepository) ClearSupplier(ctx context.Context, supplierID string) error {
	return r.db.WithContext(ctx).Model(&entity.Component{}).
		Where("supplier_id = ?", supplierID).
		Update("supplier_id", nil).Error
}

// ClearCADFile 解除CAD文件关联
func (r *ComponentRepository) ClearCADFile(ctx context.Context, fileID string) error {
	return r.db.WithContext(ctx).Model(&entity.Component{}).
		Where("cad_file_id = ?", fileID).
		Update("cad_file_id", nil).Error
}

// ListFiles 组件附件列表
func (r *ComponentRepository) ListFiles(ctx context.Context, componentID string) ([]entity.File, error) {
	var files []entity.File
	err := r.db.WithContext(ctx).
		Joins("JOIN component_files ON component_files.file_id = files.id").
		Where("component_files.component_id = ?", componentID).
		Order("files.created_at ASC").
		Find(&files).Error
	return files, err
}

// AttachFile 关联附件
func (r *ComponentRepository) AttachFile(ctx context.Context, componentID, fileID string) error {
	link := &entity.ComponentFile{ComponentID: componentID, FileID: fileID, CreatedAt: time.Now()}
	return translate(r.db.WithContext(ctx).Create(link).Error)
}

// DetachFile 解除附件关联
func (r *ComponentRepository) DetachFile(ctx context.Context, componentID, fileID string) error {
	res := r.db.WithContext(ctx).Delete(&entity.ComponentFile{}, "component_id = ? AND file_id = ?", componentID, fileID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFileLinksByComponent 删除组件的全部附件关联
func (r *ComponentRepository) DeleteFileLinksByComponent(ctx context.Context, componentID string) error {
	return r.db.WithContext(ctx).Delete(&entity.ComponentFile{}, "component_id = ?", componentID).Error
}

// DeleteFileLinksByFile 删除文件的全部组件关联
func (r *ComponentRepository) DeleteFileLinksByFile(ctx context.Context, fileID string) error {
	return r.db.WithContext(ctx).Delete(&entity.ComponentFile{}, "file_id = ?", fileID).Error
}

// DeleteAllFileLinks 删除全部附件关联
func (r *ComponentRepository) DeleteAllFileLinks(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.db, &entity.ComponentFile{})
}
