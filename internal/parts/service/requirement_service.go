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

type RequirementService struct {
	repo *repository.RequirementRepository
}

func NewRequirementService(repo *repository.RequirementRepository) *RequirementService {
	return &RequirementService{repo: repo}
}

type RequirementInput struct {
	Title              string `json:"title" validate:"required,max=200"`
	Description        string `json:"description"`
	Type               string `json:"type" validate:"omitempty,oneof=mandatory minimum desirable"`
	AcceptanceCriteria string `json:"acceptance_criteria"`
	Owner              string `json:"owner" validate:"max=100"`
	Source             string `json:"source" validate:"max=200"`
}

func (in *RequirementInput) apply(r *entity.Requirement) {
	r.Title = in.Title
	r.Description = in.Description
	r.Type = entity.RequirementType(in.Type)
	if r.Type == "" {
		r.Type = entity.RequirementDesirable
	}
	r.AcceptanceCriteria = in.AcceptanceCriteria
	r.Owner = in.Owner
	r.Source = in.Source
}

func (s *RequirementService) Create(ctx context.Context, input *RequirementInput) (*entity.Requirement, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	now := time.Now()
	r := &entity.Requirement{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}
	input.apply(r)
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create requirement: %w", err)
	}
	return r, nil
}

func (s *RequirementService) Get(ctx context.Context, id string) (*entity.Requirement, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("requirement", id)
		}
		return nil, err
	}
	return r, nil
}

func (s *RequirementService) List(ctx context.Context, filter repository.ListFilter) ([]entity.Requirement, int64, error) {
	return s.repo.FindAll(ctx, filter)
}

func (s *RequirementService) Update(ctx context.Context, id string, input *RequirementInput) (*entity.Requirement, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(r)
	r.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, fmt.Errorf("update requirement: %w", err)
	}
	return r, nil
}

func (s *RequirementService) SetArchived(ctx context.Context, id string, archived bool) error {
	if err := s.repo.SetArchived(ctx, id, archived); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("requirement", id)
		}
		return err
	}
	return nil
}

func (s *RequirementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("requirement", id)
		}
		return err
	}
	return nil
}
