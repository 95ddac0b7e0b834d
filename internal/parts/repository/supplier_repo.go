package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"gorm.io/gorm"
)

// SupplierRepository 供应商仓库
type SupplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// FindAll 查询供应商列表
func (r *SupplierRepository) FindAll(ctx context.Context, f ListFilter) ([]entity.Supplier, int64, error) {
	f = f.normalized()
	var items []entity.Supplier
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Supplier{})
	if !f.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	if f.Search != "" {
		like := likePattern(f.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(city) LIKE ? OR LOWER(country) LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("name ASC").
		Offset(f.offset()).
		Limit(f.PageSize).
		Find(&items).Error
	return items, total, err
}

// FindByID 根据ID查找供应商
func (r *SupplierRepository) FindByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var supplier entity.Supplier
	err := r.db.WithContext(ctx).
		Preload("Components", "archived = ?", false).
		Where("id = ?", id).
		First(&supplier).Error
	if err != nil {
		return nil, translate(err)
	}
	return &supplier, nil
}

// FindByName 按名称查找供应商
func (r *SupplierRepository) FindByName(ctx context.Context, name string) (*entity.Supplier, error) {
	var supplier entity.Supplier
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&supplier).Error; err != nil {
		return nil, translate(err)
	}
	return &supplier, nil
}

// Create 创建供应商
func (r *SupplierRepository) Create(ctx context.Context, supplier *entity.Supplier) error {
	return translate(r.db.WithContext(ctx).Create(supplier).Error)
}

// Update 更新供应商
func (r *SupplierRepository) Update(ctx context.Context, supplier *entity.Supplier) error {
	return translate(r.db.WithContext(ctx).Omit("Components").Save(supplier).Error)
}

// SetArchived 设置归档标记
func (r *SupplierRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	res := r.db.WithContext(ctx).Model(&entity.Supplier{}).Where("id = ?", id).
		Updates(map[string]interface{}{"archived": archived, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除供应商
func (r *SupplierRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.Supplier{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll 删除全部供应商
func (r *SupplierRepository) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.db, &entity.Supplier{})
}

// Count 统计供应商数
func (r *SupplierRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Supplier{}).Where("archived = ?", false).Count(&count).Error
	return count, err
}
