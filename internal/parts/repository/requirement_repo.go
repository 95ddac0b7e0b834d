package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"gorm.io/gorm"
)

// RequirementRepository 需求仓库
type RequirementRepository struct {
	db *gorm.DB
}

func NewRequirementRepository(db *gorm.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

func (r *RequirementRepository) Create(ctx context.Context, req *entity.Requirement) error {
	return translate(r.db.WithContext(ctx).Create(req).Error)
}

func (r *RequirementRepository) FindByID(ctx context.Context, id string) (*entity.Requirement, error) {
	var req entity.Requirement
	if err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &req, nil
}

func (r *RequirementRepository) FindAll(ctx context.Context, f ListFilter) ([]entity.Requirement, int64, error) {
	f = f.normalized()
	var items []entity.Requirement
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Requirement{})
	if !f.IncludeArchived {
		query = query.Where("archived = ?", false)
	}
	if f.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", likePattern(f.Search))
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

func (r *RequirementRepository) Update(ctx context.Context, req *entity.Requirement) error {
	return translate(r.db.WithContext(ctx).Save(req).Error)
}

func (r *RequirementRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	res := r.db.WithContext(ctx).Model(&entity.Requirement{}).Where("id = ?", id).
		Updates(map[string]interface{}{"archived": archived, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RequirementRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&entity.Requirement{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RequirementRepository) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.db, &entity.Requirement{})
}

func (r *RequirementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Requirement{}).Where("archived = ?", false).Count(&count).Error
	return count, err
}
