package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/google/uuid"
)

// SupplierService 供应商服务
type SupplierService struct {
	repos *repository.Repositories
}

func NewSupplierService(repos *repository.Repositories) *SupplierService {
	return &SupplierService{repos: repos}
}

// SupplierInput 供应商创建/更新请求
type SupplierInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	Street      string `json:"street" validate:"max=200"`
	HouseNumber string `json:"house_number" validate:"max=20"`
	PostalCode  string `json:"postal_code" validate:"max=20"`
	City        string `json:"city" validate:"max=100"`
	Country     string `json:"country" validate:"max=100"`
}

func (in *SupplierInput) apply(s *entity.Supplier) {
	s.Name = in.Name
	s.Description = in.Description
	s.Street = in.Street
	s.HouseNumber = in.HouseNumber
	s.PostalCode = in.PostalCode
	s.City = in.City
	s.Country = in.Country
}

func (s *SupplierService) Create(ctx context.Context, input *SupplierInput) (*entity.Supplier, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	now := time.Now()
	sup := &entity.Supplier{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	input.apply(sup)
	if err := s.repos.Supplier.Create(ctx, sup); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return sup, nil
}

// Get 供应商详情（含其非归档组件）
func (s *SupplierService) Get(ctx context.Context, id string) (*entity.Supplier, error) {
	sup, err := s.repos.Supplier.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("supplier", id)
		}
		return nil, err
	}
	return sup, nil
}

func (s *SupplierService) List(ctx context.Context, filter repository.ListFilter) ([]entity.Supplier, int64, error) {
	return s.repos.Supplier.FindAll(ctx, filter)
}

// Update 整体替换供应商字段
func (s *SupplierService) Update(ctx context.Context, id string, input *SupplierInput) (*entity.Supplier, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	sup, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(sup)
	sup.UpdatedAt = time.Now()
	sup.Components = nil
	if err := s.repos.Supplier.Update(ctx, sup); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	return sup, nil
}

func (s *SupplierService) SetArchived(ctx context.Context, id string, archived bool) error {
	if err := s.repos.Supplier.SetArchived(ctx, id, archived); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("supplier", id)
		}
		return err
	}
	return nil
}

// Delete 删除供应商，其组件的供应商引用被清空
func (s *SupplierService) Delete(ctx context.Context, id string) error {
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Component.ClearSupplier(ctx, id); err != nil {
			return err
		}
		if err := tx.Supplier.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("supplier", id)
			}
			return err
		}
		return nil
	})
}
