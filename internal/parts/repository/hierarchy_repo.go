package repository

import (
	"context"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"gorm.io/gorm"
)

// HierarchyRepository 组件层级边仓库（component_components）
type HierarchyRepository struct {
	db *gorm.DB
}

func NewHierarchyRepository(db *gorm.DB) *HierarchyRepository {
	return &HierarchyRepository{db: db}
}

// Create 新增层级边
func (r *HierarchyRepository) Create(ctx context.Context, edge *entity.ComponentComponent) error {
	return translate(r.db.WithContext(ctx).Create(edge).Error)
}

// Find 查找指定父子边
func (r *HierarchyRepository) Find(ctx context.Context, parentID, childID string) (*entity.ComponentComponent, error) {
	var edge entity.ComponentComponent
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND child_id = ?", parentID, childID).
		First(&edge).Error
	if err != nil {
		return nil, translate(err)
	}
	return &edge, nil
}

// UpdateQuantity 更新边上的用量
func (r *HierarchyRepository) UpdateQuantity(ctx context.Context, parentID, childID string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&entity.ComponentComponent{}).
		Where("parent_id = ? AND child_id = ?", parentID, childID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete 删除父子边，返回删除行数
func (r *HierarchyRepository) Delete(ctx context.Context, parentID, childID string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&entity.ComponentComponent{}, "parent_id = ? AND child_id = ?", parentID, childID)
	return res.RowsAffected, res.Error
}

// ChildIDs returns the distinct direct children of any of the given parents.
// Archived components are included: they still take part in the graph.
func (r *HierarchyRepository) ChildIDs(ctx context.Context, parentIDs []string) ([]string, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.ComponentComponent{}).
		Distinct("child_id").
		Where("parent_id IN ?", parentIDs).
		Pluck("child_id", &ids).Error
	return ids, err
}

// ListChildren 直接子组件边（含子组件）
func (r *HierarchyRepository) ListChildren(ctx context.Context, parentID string, includeArchived bool) ([]entity.ComponentComponent, error) {
	var edges []entity.ComponentComponent
	query := r.db.WithContext(ctx).
		Preload("Child").
		Joins("JOIN components ON components.id = component_components.child_id").
		Where("component_components.parent_id = ?", parentID)
	if !includeArchived {
		query = query.Where("components.archived = ?", false)
	}
	err := query.Order("components.number ASC").Find(&edges).Error
	return edges, err
}

// ListParents 直接父组件边（含父组件）
func (r *HierarchyRepository) ListParents(ctx context.Context, childID string, includeArchived bool) ([]entity.ComponentComponent, error) {
	var edges []entity.ComponentComponent
	query := r.db.WithContext(ctx).
		Preload("Parent").
		Joins("JOIN components ON components.id = component_components.parent_id").
		Where("component_components.child_id = ?", childID)
	if !includeArchived {
		query = query.Where("components.archived = ?", false)
	}
	err := query.Order("components.number ASC").Find(&edges).Error
	return edges, err
}

// CountByComponent 统计与组件相关的边（作为父或子）
func (r *HierarchyRepository) CountByComponent(ctx context.Context, componentID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ComponentComponent{}).
		Where("parent_id = ? OR child_id = ?", componentID, componentID).
		Count(&count).Error
	return count, err
}

// DeleteByComponent 删除与组件相关的全部边
func (r *HierarchyRepository) DeleteByComponent(ctx context.Context, componentID string) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&entity.ComponentComponent{}, "parent_id = ? OR child_id = ?", componentID, componentID)
	return res.RowsAffected, res.Error
}

// Count 边总数
func (r *HierarchyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.ComponentComponent{}).Count(&count).Error
	return count, err
}

// DeleteAll 删除全部边
func (r *HierarchyRepository) DeleteAll(ctx context.Context) (int64, error) {
	return deleteAll(ctx, r.db, &entity.ComponentComponent{})
}
