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

// MaterialService 材料服务
type MaterialService struct {
	repo *repository.MaterialRepository
}

func NewMaterialService(repo *repository.MaterialRepository) *MaterialService {
	return &MaterialService{repo: repo}
}

// MaterialInput carries the editable material fields. Property values are SI units.
type MaterialInput struct {
	Name                   string   `json:"name" validate:"required,max=100"`
	Category               string   `json:"category" validate:"max=50"`
	Density                *float64 `json:"density" validate:"omitempty,gt=0"`
	YoungsModulus          *float64 `json:"youngs_modulus" validate:"omitempty,gte=0"`
	ShearModulus           *float64 `json:"shear_modulus" validate:"omitempty,gte=0"`
	PoissonRatio           *float64 `json:"poisson_ratio" validate:"omitempty,gte=-1,lte=0.5"`
	TensileStrength        *float64 `json:"tensile_strength" validate:"omitempty,gte=0"`
	YieldStrength          *float64 `json:"yield_strength" validate:"omitempty,gte=0"`
	CompressiveStrength    *float64 `json:"compressive_strength" validate:"omitempty,gte=0"`
	ElongationAtBreak      *float64 `json:"elongation_at_break" validate:"omitempty,gte=0"`
	Hardness               *float64 `json:"hardness" validate:"omitempty,gte=0"`
	ThermalConductivity    *float64 `json:"thermal_conductivity" validate:"omitempty,gte=0"`
	SpecificHeat           *float64 `json:"specific_heat" validate:"omitempty,gte=0"`
	ThermalExpansion       *float64 `json:"thermal_expansion"`
	MeltingPoint           *float64 `json:"melting_point"`
	MaxServiceTemperature  *float64 `json:"max_service_temperature"`
	ElectricalConductivity *float64 `json:"electrical_conductivity" validate:"omitempty,gte=0"`
}

func (in *MaterialInput) apply(m *entity.Material) {
	m.Name = in.Name
	m.Category = in.Category
	m.Density = in.Density
	m.YoungsModulus = in.YoungsModulus
	m.ShearModulus = in.ShearModulus
	m.PoissonRatio = in.PoissonRatio
	m.TensileStrength = in.TensileStrength
	m.YieldStrength = in.YieldStrength
	m.CompressiveStrength = in.CompressiveStrength
	m.ElongationAtBreak = in.ElongationAtBreak
	m.Hardness = in.Hardness
	m.ThermalConductivity = in.ThermalConductivity
	m.SpecificHeat = in.SpecificHeat
	m.ThermalExpansion = in.ThermalExpansion
	m.MeltingPoint = in.MeltingPoint
	m.MaxServiceTemperature = in.MaxServiceTemperature
	m.ElectricalConductivity = in.ElectricalConductivity
}

func (s *MaterialService) Create(ctx context.Context, input *MaterialInput) (*entity.Material, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	now := time.Now()
	m := &entity.Material{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	input.apply(m)
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create material %s: %w", m.Name, err)
	}
	return m, nil
}

func (s *MaterialService) Get(ctx context.Context, id string) (*entity.Material, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("material", id)
		}
		return nil, err
	}
	return m, nil
}

func (s *MaterialService) List(ctx context.Context, filter repository.ListFilter, category string) ([]entity.Material, int64, error) {
	return s.repo.FindAll(ctx, filter, category)
}

func (s *MaterialService) Update(ctx context.Context, id string, input *MaterialInput) (*entity.Material, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(m)
	m.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("update material: %w", err)
	}
	return m, nil
}

func (s *MaterialService) SetArchived(ctx context.Context, id string, archived bool) error {
	if err := s.repo.SetArchived(ctx, id, archived); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("material", id)
		}
		return err
	}
	return nil
}

func (s *MaterialService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("material", id)
		}
		return err
	}
	return nil
}
