package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"gorm.io/gorm"
)

// MaterialRepository 材料仓库
type MaterialRepository struct {
	db *gorm.DB
}

func NewMaterialRepository(db *gorm.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create 创建材料
func (r *MaterialRepository) Create(ctx context.Context, m *entity.Material) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

// FindByID 根据ID查找材料
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*entity.Material, error) {
	var m entity.Material
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// FindAll 材料列表，可按分类筛选
func (r *MaterialRepository) FindAll(ctx context.Context, f ListFilter, category string) ([]entity.Material, int64, error) {
	f = f.normalized()
	var items []entity.Material
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Material{})
	if !f.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	if f.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(f.Search))
	}
	if category != "" {
		query = query.Where("category = ?", category)
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

// Update 更新材料
func (r *MaterialRepository) Update(ctx context.Context, m *entity.Material) error {
	return translate(r.db.WithContext(ctx).Save(m).Error)
}

// SetArchived 设置归档标记
func (r *MaterialRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	res := r.db.WithContext(ctx).Model(&entity.Material{}).Where("id = ?", id).
		Updates(map[string]interface{}{"archived": archived, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除材料
func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.Material{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll 删除全部材料
func (r *MaterialRepository) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.db, &entity.Material{})
}

// Count 统计材料数
func (r *MaterialRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Material{}).Where("archived = ?", false).Count(&count).Error
	return count, err
}
