package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Repositories 仓库集合
type Repositories struct {
	db          *gorm.DB
	Component   *ComponentRepository
	Hierarchy   *HierarchyRepository
	Supplier    *SupplierRepository
	File        *FileRepository
	Material    *MaterialRepository
	Requirement *RequirementRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:          db,
		Component:   NewComponentRepository(db),
		Hierarchy:   NewHierarchyRepository(db),
		Supplier:    NewSupplierRepository(db),
		File:        NewFileRepository(db),
		Material:    NewMaterialRepository(db),
		Requirement: NewRequirementRepository(db),
	}
}

// DB returns the underlying handle.
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

// Transaction runs fn with a repository set bound to one database transaction.
// Any error returned by fn rolls the transaction back.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// ListFilter 列表查询条件
type ListFilter struct {
	Search          string
	IncludeArchived bool
	Page            int
	PageSize        int
}

func (f ListFilter) normalized() ListFilter {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 500 {
		f.PageSize = 20
	}
	return f
}

func (f ListFilter) offset() int {
	return (f.Page - 1) * f.PageSize
}

// likePattern builds a case-insensitive LIKE pattern usable on both postgres and sqlite.
func likePattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// deleteAll removes every row of model inside the given handle.
func deleteAll(ctx context.Context, db *gorm.DB, model interface{}) (int64, error) {
	res := db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model)
	return res.RowsAffected, res.Error
}
