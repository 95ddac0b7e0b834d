package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"gorm.io/gorm"
)

// FileRepository 文件记录仓库
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create 创建文件记录
func (r *FileRepository) Create(ctx context.Context, f *entity.File) error {
	return translate(r.db.WithContext(ctx).Create(f).Error)
}

// FindByID 根据ID查找文件
func (r *FileRepository) FindByID(ctx context.Context, id string) (*entity.File, error) {
	var f entity.File
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &f, nil
}

// FindAll 文件列表
func (r *FileRepository) FindAll(ctx context.Context, f ListFilter) ([]entity.File, int64, error) {
	f = f.normalized()
	var items []entity.File
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.File{})
	if !f.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	if f.Search != "" {
		like := likePattern(f.Search)
		query = query.Where("LOWER(original_name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.
		Order("created_at DESC").
		Offset(f.offset()).
		Limit(f.PageSize).
		Find(&items).Error
	return items, total, err
}

// Update 更新文件描述信息
func (r *FileRepository) Update(ctx context.Context, f *entity.File) error {
	return translate(r.db.WithContext(ctx).Save(f).Error)
}

// SetArchived 设置归档标记
func (r *FileRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	res := r.db.WithContext(ctx).Model(&entity.File{}).Where("id = ?", id).
		Updates(map[string]interface{}{"archived": archived, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除文件记录
func (r *FileRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.File{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll 删除全部文件记录
func (r *FileRepository) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.db, &entity.File{})
}

// Count 统计文件数
func (r *FileRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.File{}).Where("archived = ?", false).Count(&count).Error
	return count, err
}
