package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bitfantasy/partslib/internal/parts/entity"
	"github.com/bitfantasy/partslib/internal/parts/events"
	"github.com/bitfantasy/partslib/internal/parts/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ComponentService 组件服务
type ComponentService struct {
	repos  *repository.Repositories
	notify *notifier
	logger *zap.Logger
	opts   Options
}

func NewComponentService(repos *repository.Repositories, notify *notifier, logger *zap.Logger, opts Options) *ComponentService {
	return &ComponentService{repos: repos, notify: notify, logger: logger, opts: opts}
}

// CreateComponentInput 创建组件请求
type CreateComponentInput struct {
	Number             string                 `json:"number" validate:"required,notblank,max=50"`
	Name               string                 `json:"name" validate:"required,notblank,max=200"`
	Description        string                 `json:"description" validate:"max=1000"`
	Revision           string                 `json:"revision" validate:"max=10"`
	LifecycleState     string                 `json:"lifecycle_state" validate:"max=50"`
	Owner              string                 `json:"owner" validate:"max=100"`
	Material           string                 `json:"material" validate:"max=100"`
	Mass               *float64               `json:"mass" validate:"omitempty,gte=0"`
	DimensionX         *float64               `json:"dimension_x" validate:"omitempty,gte=0"`
	DimensionY         *float64               `json:"dimension_y" validate:"omitempty,gte=0"`
	DimensionZ         *float64               `json:"dimension_z" validate:"omitempty,gte=0"`
	Quantity           int                    `json:"quantity" validate:"gte=0"`
	LeadTime           *int                   `json:"lead_time" validate:"omitempty,gte=0"`
	MakeOrBuy          string                 `json:"make_or_buy" validate:"omitempty,oneof=make buy"`
	ManufacturerNumber string                 `json:"manufacturer_number" validate:"max=100"`
	UnitPrice          *decimal.Decimal       `json:"unit_price"`
	Currency           string                 `json:"currency" validate:"omitempty,len=3"`
	SupplierID         *string                `json:"supplier_id"`
	Attributes         map[string]interface{} `json:"attributes"`
}

// UpdateComponentInput 更新组件请求，nil 字段保持不变
type UpdateComponentInput struct {
	Number             *string                `json:"number" validate:"omitempty,notblank,max=50"`
	Name               *string                `json:"name" validate:"omitempty,notblank,max=200"`
	Description        *string                `json:"description" validate:"omitempty,max=1000"`
	Revision           *string                `json:"revision" validate:"omitempty,max=10"`
	LifecycleState     *string                `json:"lifecycle_state" validate:"omitempty,max=50"`
	Owner              *string                `json:"owner" validate:"omitempty,max=100"`
	Material           *string                `json:"material" validate:"omitempty,max=100"`
	Mass               *float64               `json:"mass" validate:"omitempty,gte=0"`
	DimensionX         *float64               `json:"dimension_x" validate:"omitempty,gte=0"`
	DimensionY         *float64               `json:"dimension_y" validate:"omitempty,gte=0"`
	DimensionZ         *float64               `json:"dimension_z" validate:"omitempty,gte=0"`
	Quantity           *int                   `json:"quantity" validate:"omitempty,gte=0"`
	LeadTime           *int                   `json:"lead_time" validate:"omitempty,gte=0"`
	MakeOrBuy          *string                `json:"make_or_buy" validate:"omitempty,oneof=make buy"`
	ManufacturerNumber *string                `json:"manufacturer_number" validate:"omitempty,max=100"`
	UnitPrice          *decimal.Decimal       `json:"unit_price"`
	Currency           *string                `json:"currency" validate:"omitempty,len=3"`
	SupplierID         *string                `json:"supplier_id"`
	Attributes         map[string]interface{} `json:"attributes"`
}

// Create 创建组件
func (s *ComponentService) Create(ctx context.Context, input *CreateComponentInput) (*entity.Component, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkPrice(input.UnitPrice); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, input.SupplierID); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &entity.Component{
		ID:                 uuid.New().String(),
		Number:             strings.TrimSpace(input.Number),
		Name:               strings.TrimSpace(input.Name),
		Description:        input.Description,
		Revision:           orDefault(input.Revision, "1"),
		LifecycleState:     orDefault(input.LifecycleState, "In Work"),
		Owner:              orDefault(input.Owner, s.opts.DefaultOwner),
		Material:           input.Material,
		Mass:               input.Mass,
		DimensionX:         input.DimensionX,
		DimensionY:         input.DimensionY,
		DimensionZ:         input.DimensionZ,
		Quantity:           input.Quantity,
		LeadTime:           input.LeadTime,
		MakeOrBuy:          entity.MakeOrBuy(input.MakeOrBuy),
		ManufacturerNumber: input.ManufacturerNumber,
		Currency:           strings.ToUpper(orDefault(input.Currency, s.opts.DefaultCurrency)),
		SupplierID:         emptyToNil(input.SupplierID),
		Attributes:         input.Attributes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if input.UnitPrice != nil {
		c.UnitPrice = decimal.NewNullDecimal(input.UnitPrice.Round(2))
	}

	if err := s.repos.Component.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create component %s: %w", c.Number, err)
	}
	s.notify.emit(ctx, events.ComponentCreated, componentRef(c))
	return c, nil
}

// Get 获取组件详情，归档组件同样可查
func (s *ComponentService) Get(ctx context.Context, id string) (*entity.Component, error) {
	c, err := s.repos.Component.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("component", id)
		}
		return nil, err
	}
	return c, nil
}

// GetByNumber 按编号获取组件
func (s *ComponentService) GetByNumber(ctx context.Context, number string) (*entity.Component, error) {
	c, err := s.repos.Component.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("component number", number)
		}
		return nil, err
	}
	return c, nil
}

// List 组件列表，默认不含归档
func (s *ComponentService) List(ctx context.Context, filter repository.ComponentFilter) ([]entity.Component, int64, error) {
	return s.repos.Component.List(ctx, filter)
}

// Update 更新组件
func (s *ComponentService) Update(ctx context.Context, id string, input *UpdateComponentInput) (*entity.Component, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := checkPrice(input.UnitPrice); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.SupplierID != nil {
		if err := s.checkSupplier(ctx, input.SupplierID); err != nil {
			return nil, err
		}
		c.SupplierID = emptyToNil(input.SupplierID)
	}

	setTrimmed(&c.Number, input.Number)
	setTrimmed(&c.Name, input.Name)
	setString(&c.Description, input.Description)
	setString(&c.Revision, input.Revision)
	setString(&c.LifecycleState, input.LifecycleState)
	setString(&c.Owner, input.Owner)
	setString(&c.Material, input.Material)
	setString(&c.ManufacturerNumber, input.ManufacturerNumber)
	if input.Mass != nil {
		c.Mass = input.Mass
	}
	if input.DimensionX != nil {
		c.DimensionX = input.DimensionX
	}
	if input.DimensionY != nil {
		c.DimensionY = input.DimensionY
	}
	if input.DimensionZ != nil {
		c.DimensionZ = input.DimensionZ
	}
	if input.Quantity != nil {
		c.Quantity = *input.Quantity
	}
	if input.LeadTime != nil {
		c.LeadTime = input.LeadTime
	}
	if input.MakeOrBuy != nil {
		c.MakeOrBuy = entity.MakeOrBuy(*input.MakeOrBuy)
	}
	if input.UnitPrice != nil {
		c.UnitPrice = decimal.NewNullDecimal(input.UnitPrice.Round(2))
	}
	if input.Currency != nil {
		c.Currency = strings.ToUpper(*input.Currency)
	}
	if input.Attributes != nil {
		c.Attributes = input.Attributes
	}
	c.UpdatedAt = time.Now()

	// associations are loaded for display only; the foreign keys are authoritative
	c.Supplier, c.CADFile, c.Files = nil, nil, nil
	if err := s.repos.Component.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update component %s: %w", id, err)
	}
	s.notify.emit(ctx, events.ComponentUpdated, componentRef(c))
	return s.Get(ctx, id)
}

// Archive 归档组件（软删除）
func (s *ComponentService) Archive(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, true)
}

// Unarchive 取消归档
func (s *ComponentService) Unarchive(ctx context.Context, id string) error {
	return s.setArchived(ctx, id, false)
}

func (s *ComponentService) setArchived(ctx context.Context, id string, archived bool) error {
	if err := s.repos.Component.SetArchived(ctx, id, archived); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("component", id)
		}
		return err
	}
	eventType := events.ComponentArchived
	if !archived {
		eventType = events.ComponentRestored
	}
	s.notify.emit(ctx, eventType, map[string]string{"id": id})
	return nil
}

// Delete 硬删除组件。policy 为空时使用配置的默认策略。
// File links are always removed with the row; hierarchy edges follow the policy.
func (s *ComponentService) Delete(ctx context.Context, id string, policy DeletePolicy) error {
	if policy == "" {
		policy = s.opts.DeletePolicy
	}
	var detached int64
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := requireComponents(ctx, tx, id); err != nil {
			return err
		}
		switch policy {
		case DeleteReject:
			n, err := tx.Hierarchy.CountByComponent(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return fmt.Errorf("component %s has %d hierarchy edges: %w", id, n, ErrHasRelations)
			}
		case DeleteDetach:
			n, err := tx.Hierarchy.DeleteByComponent(ctx, id)
			if err != nil {
				return err
			}
			detached = n
		default:
			return fieldError("policy", "unknown delete policy %q", policy)
		}
		if err := tx.Component.DeleteFileLinksByComponent(ctx, id); err != nil {
			return err
		}
		return tx.Component.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Component deleted",
		zap.String("id", id),
		zap.String("policy", string(policy)),
		zap.Int64("detached_edges", detached))
	s.notify.emit(ctx, events.ComponentDeleted, map[string]string{"id": id})
	return nil
}

// AttachFile 关联附件
func (s *ComponentService) AttachFile(ctx context.Context, componentID, fileID string) error {
	return s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := requireComponents(ctx, tx, componentID); err != nil {
			return err
		}
		if _, err := tx.File.FindByID(ctx, fileID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("file", fileID)
			}
			return err
		}
		if err := tx.Component.AttachFile(ctx, componentID, fileID); err != nil {
			return fmt.Errorf("attach file %s: %w", fileID, err)
		}
		return nil
	})
}

// DetachFile 解除附件关联
func (s *ComponentService) DetachFile(ctx context.Context, componentID, fileID string) error {
	if err := s.repos.Component.DetachFile(ctx, componentID, fileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("file link", componentID+"/"+fileID)
		}
		return err
	}
	return nil
}

// SetCADFile 设置或清除组件的CAD文件。一个文件最多作为一个组件的CAD模型。
func (s *ComponentService) SetCADFile(ctx context.Context, componentID string, fileID *string) (*entity.Component, error) {
	c, err := s.Get(ctx, componentID)
	if err != nil {
		return nil, err
	}
	fileID = emptyToNil(fileID)
	if fileID != nil {
		if _, err := s.repos.File.FindByID(ctx, *fileID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, notFound("file", *fileID)
			}
			return nil, err
		}
	}
	c.CADFileID = fileID
	c.UpdatedAt = time.Now()
	c.Supplier, c.CADFile, c.Files = nil, nil, nil
	if err := s.repos.Component.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("set cad file: %w", err)
	}
	s.notify.emit(ctx, events.ComponentUpdated, componentRef(c))
	return s.Get(ctx, componentID)
}

func (s *ComponentService) checkSupplier(ctx context.Context, supplierID *string) error {
	if supplierID == nil || *supplierID == "" {
		return nil
	}
	if _, err := s.repos.Supplier.FindByID(ctx, *supplierID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("supplier", *supplierID)
		}
		return err
	}
	return nil
}

func checkPrice(p *decimal.Decimal) error {
	if p == nil {
		return nil
	}
	if p.IsNegative() {
		return fieldError("unit_price", "must be >= 0")
	}
	// numeric(10,2)
	if p.Round(2).Abs().GreaterThanOrEqual(decimal.New(1, 8)) {
		return fieldError("unit_price", "must be below 100000000")
	}
	return nil
}

type componentEvent struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Name   string `json:"name"`
}

func componentRef(c *entity.Component) componentEvent {
	return componentEvent{ID: c.ID, Number: c.Number, Name: c.Name}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func emptyToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
